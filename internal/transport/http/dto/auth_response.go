package dto

import (
	"time"

	"github.com/northbeam/accounts-service/internal/domain"
)

// UserView is the account payload endpoints return. The password hash
// and pending tokens never leave the service.
type UserView struct {
	ID         string     `json:"id"`
	Email      string     `json:"email"`
	Name       string     `json:"name"`
	IsVerified bool       `json:"isVerified"`
	LastLogin  *time.Time `json:"lastLogin,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
}

func NewUserView(a domain.Account) UserView {
	v := UserView{
		ID:         a.ID,
		Email:      a.Email,
		Name:       a.Name,
		IsVerified: a.IsVerified,
		CreatedAt:  a.CreatedAt,
		UpdatedAt:  a.UpdatedAt,
	}
	if !a.LastLogin.IsZero() {
		t := a.LastLogin
		v.LastLogin = &t
	}
	return v
}
