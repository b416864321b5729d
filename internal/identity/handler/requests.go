package handler

import (
	"strings"

	id "ballotbox/pkg/domain"
	dErrors "ballotbox/pkg/domain-errors"
)

// RegisterRequest is the HTTP request body for POST /auth/register.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
	Role     string `json:"role"`

	parsedRole id.Role
}

func (r *RegisterRequest) Validate() error {
	r.Name = strings.TrimSpace(r.Name)
	if r.Name == "" {
		return dErrors.New(dErrors.CodeValidation, "name is required")
	}
	r.Email = strings.TrimSpace(r.Email)
	if r.Email == "" || !strings.Contains(r.Email, "@") {
		return dErrors.New(dErrors.CodeValidation, "a valid email is required")
	}
	if strings.TrimSpace(r.Phone) == "" {
		return dErrors.New(dErrors.CodeValidation, "phone is required")
	}
	if len(r.Password) < 8 {
		return dErrors.New(dErrors.CodeValidation, "password must be at least 8 characters")
	}
	role, err := id.ParseRegistrationRole(r.Role)
	if err != nil {
		return err
	}
	r.parsedRole = role
	return nil
}

// ParsedRole returns the validated registration role.
func (r *RegisterRequest) ParsedRole() id.Role { return r.parsedRole }

// VerifyOTPRequest is the HTTP request body for POST /auth/verify-otp.
type VerifyOTPRequest struct {
	Phone string `json:"phone"`
	Code  string `json:"code"`
}

func (r *VerifyOTPRequest) Validate() error {
	if strings.TrimSpace(r.Phone) == "" {
		return dErrors.New(dErrors.CodeValidation, "phone is required")
	}
	r.Code = strings.TrimSpace(r.Code)
	if r.Code == "" {
		return dErrors.New(dErrors.CodeValidation, "code is required")
	}
	return nil
}

// ResendOTPRequest is the HTTP request body for POST /auth/resend-otp.
type ResendOTPRequest struct {
	Phone string `json:"phone"`
}

func (r *ResendOTPRequest) Validate() error {
	if strings.TrimSpace(r.Phone) == "" {
		return dErrors.New(dErrors.CodeValidation, "phone is required")
	}
	return nil
}

// LoginRequest is the HTTP request body for POST /auth/login.
type LoginRequest struct {
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

func (r *LoginRequest) Validate() error {
	if strings.TrimSpace(r.Phone) == "" {
		return dErrors.New(dErrors.CodeValidation, "phone is required")
	}
	if r.Password == "" {
		return dErrors.New(dErrors.CodeValidation, "password is required")
	}
	return nil
}

// ApproveUserRequest is the HTTP request body for POST /admin/approve-user.
type ApproveUserRequest struct {
	UserID string `json:"userId"`

	parsedUserID id.UserID
}

func (r *ApproveUserRequest) Validate() error {
	userID, err := id.ParseUserID(r.UserID)
	if err != nil {
		return err
	}
	r.parsedUserID = userID
	return nil
}

// ParsedUserID returns the validated user ID.
func (r *ApproveUserRequest) ParsedUserID() id.UserID { return r.parsedUserID }
