// Package model provides domain models and DTOs for the user module.
package model

// Role is the role assigned to a user account.
type Role string

// Known account roles.
const (
	RoleAdmin       Role = "admin"
	RoleStudent     Role = "student"
	RoleAlumni      Role = "alumni"
	RoleCoordinator Role = "coordinator"
	RoleVolunteer   Role = "volunteer"
	RoleUser        Role = "user"
)

// Valid reports whether the role is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleStudent, RoleAlumni, RoleCoordinator, RoleVolunteer, RoleUser:
		return true
	}
	return false
}

// User represents a user account as returned by the backend.
type User struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Mobile string `json:"mobile"`
	Email  string `json:"email,omitempty"`
	Role   Role   `json:"role"`
}
