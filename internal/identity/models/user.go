package models

import (
	"strings"
	"time"

	id "ballotbox/pkg/domain"
	dErrors "ballotbox/pkg/domain-errors"
)

// User is the aggregate root for a registered identity.
//
// Invariants:
//   - Phone is the canonical identifier: digits only, unique across users.
//   - IsPhoneVerified is set exactly once, by OTP confirmation.
//   - IsVerified is set exactly once, by admin approval.
//   - A user may vote or be nominated only when both flags are true
//     (ADMIN is implicitly fully verified).
//   - ADMIN users are never deleted; other users only while they hold no votes.
type User struct {
	ID              id.UserID `json:"id"`
	Name            string    `json:"name"`
	Email           string    `json:"email"`
	Phone           string    `json:"phone"`
	PasswordHash    string    `json:"-"`
	Role            id.Role   `json:"role"`
	IsPhoneVerified bool      `json:"isPhoneVerified"`
	IsVerified      bool      `json:"isVerified"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// FullyVerified reports whether the user has passed both verification stages.
// Admins are implicitly fully verified.
func (u *User) FullyVerified() bool {
	if u.Role == id.RoleAdmin {
		return true
	}
	return u.IsPhoneVerified && u.IsVerified
}

// EligibleVoter reports whether the user counts toward the electorate:
// role VOTER or CANDIDATE with admin approval.
func (u *User) EligibleVoter() bool {
	return (u.Role == id.RoleVoter || u.Role == id.RoleCandidate) && u.IsVerified
}

// NewUser constructs a freshly registered, unverified user.
func NewUser(userID id.UserID, name, email, phone, passwordHash string, role id.Role, now time.Time) (*User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "name is required")
	}
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "email is required")
	}
	if phone == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "phone is required")
	}
	if passwordHash == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "password is required")
	}
	return &User{
		ID:           userID,
		Name:         name,
		Email:        email,
		Phone:        phone,
		PasswordHash: passwordHash,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// NormalizePhone reduces a phone number to its canonical stored form: digits
// only, with a leading 91 (India) or 1 (US) country code stripped.
func NormalizePhone(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if len(digits) == 12 && strings.HasPrefix(digits, "91") {
		return digits[2:]
	}
	if len(digits) == 11 && strings.HasPrefix(digits, "1") {
		return digits[1:]
	}
	return digits
}
