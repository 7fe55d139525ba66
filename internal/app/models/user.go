package models

import "github.com/google/uuid"

// User is an account known to the identity store
type User struct {
	Audit
	FullName      string `json:"fullName" db:"full_name" example:"Ayşe Yılmaz"`
	Email         string `json:"email" db:"email" example:"ayse@uni.edu.tr"`
	StudentNumber string `json:"studentNumber" db:"student_number" example:"20201234"`
	PasswordHash  string `json:"-" db:"password_hash"`
	IsActive      bool   `json:"isActive" db:"is_active"`
	Roles         []Role `json:"roles,omitempty"` // Loaded from user_roles, no db tag
}

// HasRole reports whether the role is in the user's loaded role set
func (u *User) HasRole(role Role) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// UserRole is a row of the user_roles join table
type UserRole struct {
	UserID uuid.UUID `db:"user_id"`
	Role   Role      `db:"role"`
}
