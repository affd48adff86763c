package access

import (
	"fmt"

	"github.com/google/uuid"
)

// Role — роль актора. Значения совпадают с ролями веб-сессии.
type Role string

const (
	RoleAdmin               Role = "admin_user"
	RoleSpecialist          Role = "specialist_user"
	RoleWorkPointSupervisor Role = "workpoint_user"
	RoleOrganisationUser    Role = "organisation_user"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleSpecialist, RoleWorkPointSupervisor, RoleOrganisationUser:
		return true
	}
	return false
}

// AuthContext — кто выполняет операцию. Строится один раз на запрос
// на границе транспорта и передаётся в ядро явным параметром.
type AuthContext struct {
	Role Role
	// ScopeID — specialist_id, work_point_id или organisation_id в зависимости от роли.
	ScopeID uuid.UUID
	// Username — логин пользователя.
	Username string
	// ScopeName — имя специалиста/филиала/организации для подписей.
	ScopeName string
}

func (a AuthContext) Validate() error {
	if !a.Role.Valid() {
		return fmt.Errorf("unknown role %q", a.Role)
	}
	if a.Role != RoleAdmin && a.ScopeID == uuid.Nil {
		return fmt.Errorf("role %s requires scope id", a.Role)
	}
	return nil
}

func (a AuthContext) IsAdmin() bool {
	return a.Role == RoleAdmin
}

func (a AuthContext) username() string {
	if a.Username == "" {
		return "unknown"
	}
	return a.Username
}

// DisplayName — короткая подпись для source_channel.
func (a AuthContext) DisplayName() string {
	switch a.Role {
	case RoleAdmin:
		return "Admin"
	case RoleSpecialist:
		return orDefault(a.ScopeName, "Specialist")
	case RoleOrganisationUser:
		return orDefault(a.ScopeName, "Org")
	case RoleWorkPointSupervisor:
		return orDefault(a.ScopeName, "WP")
	default:
		return "User"
	}
}

// FullName — подпись для made_by.
func (a AuthContext) FullName() string {
	if a.Role == RoleAdmin {
		return a.username()
	}
	return orDefault(a.ScopeName, a.username())
}

// SourceChannel — "Web-UI <display> / <user>", обрезанное до maxLen рун.
func (a AuthContext) SourceChannel(maxLen int) string {
	return truncate(fmt.Sprintf("Web-UI %s / %s", a.DisplayName(), a.username()), maxLen)
}

// MadeBy — описание актора для архива отмен, обрезанное до maxLen рун.
func (a AuthContext) MadeBy(maxLen int) string {
	return truncate(fmt.Sprintf("WEB-PAGE (user=%s / %s)", a.username(), a.FullName()), maxLen)
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
