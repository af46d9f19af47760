package dto

import "asafe-api/internal/domain"

// UserProjection is the client-safe view of a user.
type UserProjection struct {
	ID    string      `json:"id"`
	Email string      `json:"email"`
	Name  string      `json:"name"`
	Role  domain.Role `json:"role"`
}

func NewUserProjection(u *domain.User) *UserProjection {
	if u == nil {
		return nil
	}
	return &UserProjection{ID: u.ID.String(), Email: u.Email, Name: u.Name, Role: u.Role}
}

// UpdateUserRequest applies only the fields that are present.
type UpdateUserRequest struct {
	Email    *string `json:"email,omitempty"`
	Name     *string `json:"name,omitempty"`
	Password *string `json:"password,omitempty"`
}

func (r UpdateUserRequest) Validate() error {
	v := &domain.ValidationError{}
	if r.Email != nil && !validEmail(*r.Email) {
		v.Add("email", "Invalid email")
	}
	if r.Name != nil {
		if msg := lengthMessage(*r.Name, NameMin, NameMax); msg != "" {
			v.Add("name", msg)
		}
	}
	if r.Password != nil {
		if msg := lengthMessage(*r.Password, PasswordMin, PasswordMax); msg != "" {
			v.Add("password", msg)
		}
	}
	return v.Err()
}

func (r UpdateUserRequest) Empty() bool {
	return r.Email == nil && r.Name == nil && r.Password == nil
}
