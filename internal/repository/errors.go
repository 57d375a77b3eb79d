package repository

import (
	"errors"
	"strings"

	"github.com/nimasrn/marketplace/pkg/apperr"
	"github.com/nimasrn/marketplace/pkg/pg"
	"gorm.io/gorm"
)

var (
	ErrUserNotFound         = apperr.New(apperr.KindNotFound, "user not found")
	ErrProductNotFound      = apperr.New(apperr.KindNotFound, "product not found")
	ErrManufacturerNotFound = apperr.New(apperr.KindNotFound, "manufacturer not found")
	ErrAgentNotFound        = apperr.New(apperr.KindNotFound, "agent not found")
	ErrEmployeeNotFound     = apperr.New(apperr.KindNotFound, "employee not found")
	ErrOrderNotFound        = apperr.New(apperr.KindNotFound, "order not found")
	ErrTransactionNotFound  = apperr.New(apperr.KindNotFound, "transaction not found")
	ErrLabourNotFound       = apperr.New(apperr.KindNotFound, "acting labour not found")
	ErrTruckNotFound        = apperr.New(apperr.KindNotFound, "truck not found")
	ErrTripNotFound         = apperr.New(apperr.KindNotFound, "trip not found")
	ErrAdminNotFound        = apperr.New(apperr.KindNotFound, "admin not found")

	ErrDuplicateUser         = apperr.New(apperr.KindConflict, "phone number or email already exists")
	ErrDuplicateRole         = apperr.New(apperr.KindConflict, "role record already exists for user")
	ErrDuplicateTruck        = apperr.New(apperr.KindConflict, "truck number already exists")
	ErrDuplicateAdmin        = apperr.New(apperr.KindConflict, "admin email already exists")
	ErrDuplicateReference    = apperr.New(apperr.KindConflict, "transaction reference already used")
	ErrDuplicateLabourPhone  = apperr.New(apperr.KindConflict, "acting labour phone number already exists")
	ErrConcurrentUpdate      = apperr.New(apperr.KindConflict, "concurrent update detected")
	ErrOutOfStock            = apperr.New(apperr.KindOutOfStock, "product out of stock")
	ErrLabourUnavailable     = apperr.New(apperr.KindInvalidTransition, "acting labour is not available")
	ErrStatusChanged         = apperr.New(apperr.KindInvalidTransition, "status changed concurrently")
	ErrReferencedByOtherRows = apperr.New(apperr.KindConflict, "record is referenced by other rows")
)

// translate maps driver errors to the repository sentinels.
func translate(err error, notFound, duplicate *apperr.Error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound) && notFound != nil:
		return notFound
	case pg.IsUniqueViolation(err) && duplicate != nil:
		return duplicate
	case errors.Is(err, gorm.ErrForeignKeyViolated), isForeignKeyViolation(err):
		return ErrReferencedByOtherRows
	}
	return err
}

func isForeignKeyViolation(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "FOREIGN KEY constraint failed") || strings.Contains(msg, "violates foreign key constraint")
}

func paginate(q *gorm.DB, limit, offset int) *gorm.DB {
	return q.Limit(limit).Offset(offset)
}
