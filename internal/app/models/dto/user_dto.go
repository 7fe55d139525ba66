package dto

// UpdateProfileRequest represents the editable profile fields of the current user
type UpdateProfileRequest struct {
	FullName      string `json:"fullName" binding:"required,max=150" validate:"required,max=150"`
	StudentNumber string `json:"studentNumber" binding:"max=20" validate:"max=20"`
}

// ChangePasswordRequest represents a password change of the current user
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required" validate:"required"`
	NewPassword     string `json:"newPassword" binding:"required,min=8,max=72" validate:"required,min=8,max=72"`
	ConfirmPassword string `json:"confirmPassword" binding:"required,eqfield=NewPassword" validate:"required,eqfield=NewPassword"`
}
