package dto

import "asafe-api/internal/domain"

const (
	NameMin     = 2
	NameMax     = 100
	PasswordMin = 8
	PasswordMax = 255
)

type RegisterRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

func (r RegisterRequest) Validate() error {
	v := &domain.ValidationError{}
	if !validEmail(r.Email) {
		v.Add("email", "Invalid email")
	}
	if msg := lengthMessage(r.Name, NameMin, NameMax); msg != "" {
		v.Add("name", msg)
	}
	if msg := lengthMessage(r.Password, PasswordMin, PasswordMax); msg != "" {
		v.Add("password", msg)
	}
	return v.Err()
}

type ResetPasswordRequest struct {
	Email string `json:"email"`
}

func (r ResetPasswordRequest) Validate() error {
	if !validEmail(r.Email) {
		return invalid("email", "Invalid email")
	}
	return nil
}

type ConfirmResetRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

func (r ConfirmResetRequest) Validate() error {
	v := &domain.ValidationError{}
	if _, err := ParseID("token", r.Token); err != nil {
		v.Add("token", "Invalid token")
	}
	if msg := lengthMessage(r.Password, PasswordMin, PasswordMax); msg != "" {
		v.Add("password", msg)
	}
	return v.Err()
}

type MessageResponse struct {
	Message string `json:"message"`
}

func invalid(field, message string) error {
	v := &domain.ValidationError{}
	v.Add(field, message)
	return v
}
