package dto

import (
	"time"

	"github.com/noah-isme/internship-api/internal/models"
)

// UserResponse is the public view of an identity. The password hash never leaves the service layer.
type UserResponse struct {
	ID        uint       `json:"id"`
	Email     string     `json:"email"`
	FullName  string     `json:"full_name"`
	Phone     string     `json:"phone"`
	Role      string     `json:"user_type"`
	IsActive  bool       `json:"is_active"`
	CreatedAt time.Time  `json:"created_at"`
	LastLogin *time.Time `json:"last_login"`
}

// NewUserResponse converts a user model into its DTO.
func NewUserResponse(user models.User) UserResponse {
	return UserResponse{
		ID:        user.ID,
		Email:     user.Email,
		FullName:  user.FullName,
		Phone:     user.Phone,
		Role:      user.Role.String(),
		IsActive:  user.IsActive,
		CreatedAt: user.CreatedAt,
		LastLogin: user.LastLogin,
	}
}

// ProfileUpdateRequest lets a user edit their own contact details.
type ProfileUpdateRequest struct {
	FullName *string `json:"full_name" validate:"omitempty,min=1,max=255"`
	Phone    *string `json:"phone" validate:"omitempty,max=32"`
}

// Fields returns the columns present in the request.
func (r ProfileUpdateRequest) Fields() map[string]interface{} {
	fields := map[string]interface{}{}
	if r.FullName != nil {
		fields["full_name"] = *r.FullName
	}
	if r.Phone != nil {
		fields["phone"] = *r.Phone
	}
	return fields
}

// AdminUserUpdateRequest captures partial updates an administrator may apply to any user.
type AdminUserUpdateRequest struct {
	FullName *string `json:"full_name" validate:"omitempty,min=1,max=255"`
	Phone    *string `json:"phone" validate:"omitempty,max=32"`
	IsActive *bool   `json:"is_active"`
}

// Fields returns the columns present in the request.
func (r AdminUserUpdateRequest) Fields() map[string]interface{} {
	fields := ProfileUpdateRequest{FullName: r.FullName, Phone: r.Phone}.Fields()
	if r.IsActive != nil {
		fields["is_active"] = *r.IsActive
	}
	return fields
}

// PasswordChangeRequest is submitted by a user changing their own password.
type PasswordChangeRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=6,max=72"`
}

// AdminUserCreateRequest provisions a user together with the profile for its role.
type AdminUserCreateRequest struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=6,max=72"`
	FullName string `json:"full_name" validate:"required,min=1,max=255"`
	Phone    string `json:"phone" validate:"omitempty,max=32"`
	Role     string `json:"user_type" validate:"required,oneof=student hod supervisor admin"`

	Department          string `json:"department" validate:"omitempty,max=255"`
	StudentID           string `json:"student_id" validate:"omitempty,max=64"`
	Level               string `json:"level" validate:"omitempty,max=16"`
	MatriculationNumber string `json:"matriculation_number" validate:"omitempty,max=64"`
	StaffID             string `json:"staff_id" validate:"omitempty,max=64"`
	Designation         string `json:"designation" validate:"omitempty,max=255"`
	OrganizationName    string `json:"organization_name" validate:"omitempty,max=255"`
	OrganizationAddress string `json:"organization_address" validate:"omitempty,max=512"`
	Position            string `json:"position" validate:"omitempty,max=255"`
}

// ProfileResponse wraps the role-specific profile of a user. Kind is empty when the user has none.
type ProfileResponse struct {
	Kind    string      `json:"kind"`
	Profile interface{} `json:"profile"`
}
