package models

import "errors"

// Error kinds returned by dbhelper and checked by the HTTP layer. Each kind
// maps to exactly one status code in utils.WriteError.
var (
	ErrUnauthenticated       = errors.New("unauthenticated")
	ErrPermissionDenied      = errors.New("permission denied")
	ErrNotFound              = errors.New("not found")
	ErrValidation            = errors.New("validation failed")
	ErrConflict              = errors.New("conflict")
	ErrEmptyCart             = errors.New("cart is empty")
	ErrInsufficientInventory = errors.New("insufficient inventory")
)

// ErrorKind returns the wire name for an error kind, or "internal" when the
// error is none of the known kinds.
func ErrorKind(err error) string {
	switch {
	case errors.Is(err, ErrUnauthenticated):
		return "unauthenticated"
	case errors.Is(err, ErrPermissionDenied):
		return "permission_denied"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrEmptyCart):
		return "empty_cart"
	case errors.Is(err, ErrInsufficientInventory):
		return "insufficient_inventory"
	case errors.Is(err, ErrValidation):
		return "validation_error"
	case errors.Is(err, ErrConflict):
		return "conflict"
	}
	return "internal"
}
