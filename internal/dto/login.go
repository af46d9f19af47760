package dto

import "asafe-api/internal/domain"

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r LoginRequest) Validate() error {
	v := &domain.ValidationError{}
	if !validEmail(r.Email) {
		v.Add("email", "Invalid email")
	}
	if r.Password == "" {
		v.Add("password", "Password is required")
	}
	return v.Err()
}

// LoginResult is a soft-fail outcome: Token is nil and Message explains why
// when the credentials were not accepted.
type LoginResult struct {
	Token   *string         `json:"token"`
	User    *UserProjection `json:"user,omitempty"`
	Message string          `json:"message,omitempty"`
}

func (r *LoginResult) OK() bool { return r != nil && r.Token != nil }
