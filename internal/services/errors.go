package services

import "github.com/nimasrn/marketplace/pkg/apperr"

var (
	ErrInactiveUser        = apperr.New(apperr.KindInactiveUser, "user account is not active")
	ErrInsufficientBalance = apperr.New(apperr.KindInsufficientBalance, "insufficient balance")
	ErrProductUnavailable  = apperr.New(apperr.KindOutOfStock, "product is not available")
	ErrUnknownProduct      = apperr.New(apperr.KindValidation, "product does not exist")
	ErrIdempotencyMismatch = apperr.New(apperr.KindConflict, "idempotency key was used for a different request")
	ErrQuantityTooLarge    = apperr.New(apperr.KindValidation, "quantity is too large")
	ErrAmountTooLarge      = apperr.New(apperr.KindValidation, "amount is too large")

	ErrPinNotSet    = apperr.New(apperr.KindValidation, "pin is not set")
	ErrInvalidPin   = apperr.New(apperr.KindUnauthorized, "invalid pin")
	ErrPinLocked    = apperr.New(apperr.KindLocked, "pin is locked")
	ErrPinExists    = apperr.New(apperr.KindConflict, "pin already set, reset it first")
	ErrCannotReject = apperr.New(apperr.KindInvalidTransition, "approved users cannot be rejected")

	ErrAlreadyApproved     = apperr.New(apperr.KindInvalidTransition, "user is already approved")
	ErrAlreadyRejected     = apperr.New(apperr.KindInvalidTransition, "user is already rejected")
	ErrInactiveAccount     = apperr.New(apperr.KindInvalidTransition, "inactive users cannot change status")
	ErrInvalidOrderStatus  = apperr.New(apperr.KindInvalidTransition, "order status transition not allowed")
	ErrInvalidTripStatus   = apperr.New(apperr.KindInvalidTransition, "trip status transition not allowed")
	ErrNotTruckOwner       = apperr.New(apperr.KindInvalidTarget, "target employee is not a truck owner")
	ErrUnverifiedTarget    = apperr.New(apperr.KindInvalidTarget, "target manufacturer is not verified")
	ErrDriverNotAssigned   = apperr.New(apperr.KindInvalidTarget, "driver is not assigned to this truck owner")
	ErrOrderNotAssigned    = apperr.New(apperr.KindInvalidTarget, "order is not assigned to this truck owner")
	ErrTruckUnavailable    = apperr.New(apperr.KindInvalidTransition, "truck is not available")
	ErrNotPortalUser       = apperr.New(apperr.KindForbidden, "caller is not a truck owner")
	ErrInvalidCredentials  = apperr.New(apperr.KindUnauthorized, "invalid email or password")
	ErrLastSuperAdmin      = apperr.New(apperr.KindConflict, "cannot remove the last super admin")
	ErrTokenLoginDisabled  = apperr.New(apperr.KindForbidden, "admin login requires AUTH_MODE=jwt")
	ErrOrderItemsImmutable = apperr.New(apperr.KindInvalidTransition, "only pending orders can be edited")
)
