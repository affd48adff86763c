package access

import (
	"context"

	"github.com/google/uuid"

	"github.com/Leganyst/booking-engine/internal/apperror"
)

// Target — специалист, над чьими бронированиями выполняется действие.
type Target struct {
	SpecialistID   uuid.UUID
	OrganisationID uuid.UUID
}

// WorkPlaceChecker отвечает, работает ли специалист в филиале
// (есть хотя бы одна строка недельной программы).
type WorkPlaceChecker interface {
	WorksAt(ctx context.Context, specialistID, workPointID uuid.UUID) (bool, error)
}

// Gate — проверка прав на изменение бронирований.
type Gate struct {
	places WorkPlaceChecker
}

func NewGate(places WorkPlaceChecker) *Gate {
	return &Gate{places: places}
}

// CanMutate: первое совпавшее правило разрешает, иначе — отказ.
func (g *Gate) CanMutate(ctx context.Context, actor AuthContext, target Target) (bool, error) {
	switch actor.Role {
	case RoleAdmin:
		return true, nil
	case RoleSpecialist:
		return actor.ScopeID == target.SpecialistID, nil
	case RoleWorkPointSupervisor:
		if actor.ScopeID == uuid.Nil {
			return false, nil
		}
		return g.places.WorksAt(ctx, target.SpecialistID, actor.ScopeID)
	case RoleOrganisationUser:
		return actor.ScopeID != uuid.Nil && actor.ScopeID == target.OrganisationID, nil
	default:
		return false, nil
	}
}

// Authorize — то же, но отказ возвращается как PermissionError.
func (g *Gate) Authorize(ctx context.Context, actor AuthContext, target Target) error {
	ok, err := g.CanMutate(ctx, actor, target)
	if err != nil {
		return apperror.Database(err, "Failed to check permissions")
	}
	if !ok {
		return apperror.Permission("You do not have permission to manage bookings for this specialist")
	}
	return nil
}
