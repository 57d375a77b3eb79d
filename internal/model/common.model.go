package model

import (
	"math"
	"strings"

	"github.com/nimasrn/marketplace/pkg/apperr"
	"github.com/shopspring/decimal"
)

const (
	DefaultLimit = 50
	MaxLimit     = 500

	// MaxQuantity is the largest quantity an INT column stores.
	MaxQuantity = math.MaxInt32
)

// MaxAmount is the largest value a NUMERIC(14,2) column stores.
var MaxAmount = decimal.RequireFromString("999999999999.99")

// Page controls List queries.
type Page struct {
	Limit  int // default 50
	Offset int
}

func (p Page) Normalize() Page {
	if p.Limit <= 0 {
		p.Limit = DefaultLimit
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	return p
}

func required(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return apperr.Newf(apperr.KindValidation, "%s is required", field)
	}
	return nil
}

func positiveID(field string, id int64) error {
	if id <= 0 {
		return apperr.Newf(apperr.KindValidation, "%s is required", field)
	}
	return nil
}

func validQuantity(q int) error {
	if q <= 0 {
		return apperr.New(apperr.KindValidation, "quantity must be greater than 0")
	}
	if q > MaxQuantity {
		return apperr.Newf(apperr.KindValidation, "quantity cannot exceed %d", MaxQuantity)
	}
	return nil
}
