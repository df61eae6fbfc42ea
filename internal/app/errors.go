package app

import "errors"

// Application-level errors of the reminder engine.
var (
	ErrStoreUnavailable   = errors.New("entity store unavailable")
	ErrDeliveryFailed     = errors.New("reminder delivery failed")
	ErrTickInProgress     = errors.New("previous tick still running")
	ErrUnknownPolicy      = errors.New("unknown reminder policy")
	ErrAdminNotAuthorized = errors.New("performing user is not authorized as an admin")
)
