package model

import (
	"time"

	"github.com/nimasrn/marketplace/pkg/apperr"
	"github.com/shopspring/decimal"
)

type Product struct {
	ID             int64           `json:"id"`
	ManufacturerID int64           `json:"manufacturerId"`
	Name           string          `json:"name"`
	Category       string          `json:"category"`
	Description    string          `json:"description,omitempty"`
	Price          decimal.Decimal `json:"price"`
	Stock          int             `json:"stock"`
	IsActive       bool            `json:"isActive"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}

type ProductCreateRequest struct {
	ManufacturerID int64           `json:"manufacturerId"`
	Name           string          `json:"name"`
	Category       string          `json:"category"`
	Description    string          `json:"description"`
	Price          decimal.Decimal `json:"price"`
	Stock          int             `json:"stock"`
}

func (p ProductCreateRequest) Validate() error {
	if err := positiveID("manufacturerId", p.ManufacturerID); err != nil {
		return err
	}
	if err := required("name", p.Name); err != nil {
		return err
	}
	if p.Price.IsNegative() {
		return apperr.New(apperr.KindValidation, "price cannot be negative")
	}
	if p.Stock < 0 {
		return apperr.New(apperr.KindValidation, "stock cannot be negative")
	}
	return nil
}

type ProductUpdateRequest struct {
	Name        *string          `json:"name"`
	Category    *string          `json:"category"`
	Description *string          `json:"description"`
	Price       *decimal.Decimal `json:"price"`
	Stock       *int             `json:"stock"`
	IsActive    *bool            `json:"isActive"`
}

func (p ProductUpdateRequest) Validate() error {
	if p.Name != nil && *p.Name == "" {
		return apperr.New(apperr.KindValidation, "name cannot be empty")
	}
	if p.Price != nil && p.Price.IsNegative() {
		return apperr.New(apperr.KindValidation, "price cannot be negative")
	}
	if p.Stock != nil && *p.Stock < 0 {
		return apperr.New(apperr.KindValidation, "stock cannot be negative")
	}
	return nil
}

type ProductFilter struct {
	Query          string // case-insensitive match on name or description
	Category       string
	ManufacturerID *int64
	MinPrice       *decimal.Decimal
	MaxPrice       *decimal.Decimal
	ActiveOnly     bool
	Page
}
