package model

import (
	"strings"
	"time"

	"github.com/nimasrn/marketplace/pkg/apperr"
)

type Admin struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	IsSuperAdmin bool      `json:"isSuperAdmin"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

type AdminCreateRequest struct {
	Email        string `json:"email"`
	Name         string `json:"name"`
	Password     string `json:"password"`
	IsSuperAdmin bool   `json:"isSuperAdmin"`
}

func (p AdminCreateRequest) Validate() error {
	if err := required("email", p.Email); err != nil {
		return err
	}
	if !strings.Contains(p.Email, "@") {
		return apperr.New(apperr.KindValidation, "email is invalid")
	}
	if err := required("name", p.Name); err != nil {
		return err
	}
	if len(p.Password) < 8 {
		return apperr.New(apperr.KindValidation, "password must be at least 8 characters")
	}
	return nil
}

type AdminUpdateRequest struct {
	Name         *string `json:"name"`
	Password     *string `json:"password"`
	IsSuperAdmin *bool   `json:"isSuperAdmin"`
}

func (p AdminUpdateRequest) Validate() error {
	if p.Password != nil && len(*p.Password) < 8 {
		return apperr.New(apperr.KindValidation, "password must be at least 8 characters")
	}
	return nil
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResult struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	Admin     *Admin    `json:"admin"`
}
