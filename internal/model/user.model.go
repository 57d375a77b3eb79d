package model

import (
	"slices"
	"strings"
	"time"

	"github.com/nimasrn/marketplace/pkg/apperr"
	"github.com/shopspring/decimal"
)

type UserStatus string

const (
	UserStatusPending  UserStatus = "PENDING"
	UserStatusApproved UserStatus = "APPROVED"
	UserStatusRejected UserStatus = "REJECTED"
	UserStatusInactive UserStatus = "INACTIVE"
)

// Roles a user can declare at signup. Approval creates the matching child rows.
const (
	RoleAgent        = "Agent"
	RoleManufacturer = "Manufacturer"
	RoleEmployee     = "Employee"
	RoleTruckOwner   = "Truck Owner"
	RoleDriver       = "Driver"
	RoleAdmin        = "Admin"
)

type User struct {
	ID              int64           `json:"id"`
	PhoneNumber     string          `json:"phoneNumber"`
	UserType        string          `json:"userType"`
	Roles           []string        `json:"roles"`
	Status          UserStatus      `json:"status"`
	Balance         decimal.Decimal `json:"balance"`
	HasPin          bool            `json:"hasPin"`
	PinHash         string          `json:"-"`
	PinAttempts     int             `json:"pinAttempts"`
	PinLockedUntil  *time.Time      `json:"pinLockedUntil,omitempty"`
	LastLogin       *time.Time      `json:"lastLogin,omitempty"`
	ApprovedAt      *time.Time      `json:"approvedAt,omitempty"`
	RejectionReason string          `json:"rejectionReason,omitempty"`
	Profile         *UserProfile    `json:"profile,omitempty"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

// IsActive reports whether the user may spend balance.
func (u *User) IsActive() bool {
	return u.Status == UserStatusApproved
}

func (u *User) HasRole(role string) bool {
	return slices.ContainsFunc(u.Roles, func(r string) bool { return strings.EqualFold(r, role) })
}

// PinLocked reports whether PIN verification is refused at the given instant.
func (u *User) PinLocked(now time.Time) bool {
	return u.PinLockedUntil != nil && now.Before(*u.PinLockedUntil)
}

type UserProfile struct {
	UserID  int64  `json:"userId"`
	Name    string `json:"name"`
	Email   string `json:"email,omitempty"`
	Address string `json:"address,omitempty"`
	Avatar  string `json:"avatar,omitempty"`
}

type UserCreateRequest struct {
	PhoneNumber string   `json:"phoneNumber"`
	UserType    string   `json:"userType"`
	Roles       []string `json:"roles"`
	Name        string   `json:"name"`
	Email       string   `json:"email"`
	Address     string   `json:"address"`
}

func (p UserCreateRequest) Validate() error {
	if err := required("phoneNumber", p.PhoneNumber); err != nil {
		return err
	}
	if err := required("name", p.Name); err != nil {
		return err
	}
	if len(p.Roles) == 0 && p.UserType == "" {
		return apperr.New(apperr.KindValidation, "roles or userType is required")
	}
	if p.Email != "" && !strings.Contains(p.Email, "@") {
		return apperr.New(apperr.KindValidation, "email is invalid")
	}
	return nil
}

// UserUpdateRequest carries the mutable profile fields; nil means unchanged.
type UserUpdateRequest struct {
	UserType *string   `json:"userType"`
	Roles    *[]string `json:"roles"`
	Name     *string   `json:"name"`
	Email    *string   `json:"email"`
	Address  *string   `json:"address"`
	Avatar   *string   `json:"avatar"`
}

func (p UserUpdateRequest) Validate() error {
	if p.Name != nil && strings.TrimSpace(*p.Name) == "" {
		return apperr.New(apperr.KindValidation, "name cannot be empty")
	}
	if p.Email != nil && *p.Email != "" && !strings.Contains(*p.Email, "@") {
		return apperr.New(apperr.KindValidation, "email is invalid")
	}
	return nil
}

type UserFilter struct {
	Status   *UserStatus
	UserType *string
	Role     *string
	Phone    *string
	Page
}

type BalanceOperation string

const (
	BalanceAdd      BalanceOperation = "add"
	BalanceSubtract BalanceOperation = "subtract"
)

type BalanceUpdateRequest struct {
	UserID      int64            `json:"-"`
	Amount      decimal.Decimal  `json:"amount"`
	Operation   BalanceOperation `json:"operation"`
	Description string           `json:"description"`
}

func (p BalanceUpdateRequest) Validate() error {
	if err := positiveID("userId", p.UserID); err != nil {
		return err
	}
	if !p.Amount.IsPositive() {
		return apperr.New(apperr.KindValidation, "amount must be greater than 0")
	}
	if p.Operation != BalanceAdd && p.Operation != BalanceSubtract {
		return apperr.New(apperr.KindValidation, "operation must be add or subtract")
	}
	return nil
}

type RejectRequest struct {
	Reason string `json:"reason"`
}

type PinRequest struct {
	Pin string `json:"pin"`
}

// ValidatePin accepts 4 to 6 digits.
func ValidatePin(pin string) error {
	if len(pin) < 4 || len(pin) > 6 {
		return apperr.New(apperr.KindValidation, "pin must be 4 to 6 digits")
	}
	for _, c := range pin {
		if c < '0' || c > '9' {
			return apperr.New(apperr.KindValidation, "pin must be 4 to 6 digits")
		}
	}
	return nil
}
