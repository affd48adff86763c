package model

import "github.com/google/uuid"

// ensureID проставляет идентификатор до вставки.
// Генерируем на стороне приложения, чтобы схема работала и в sqlite/mysql.
func ensureID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}
