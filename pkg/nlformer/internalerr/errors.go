package internalerr

import "errors"

// Sentinel errors for common cases
var (
	ErrInvalidInput         = errors.New("invalid input")
	ErrDuplicate            = errors.New("duplicate entry")
	ErrInvalidConfig        = errors.New("invalid configuration")
	ErrMalformedPattern     = errors.New("malformed pattern")
	ErrUngroundedConsequent = errors.New("ungrounded consequent")
	ErrSerialization        = errors.New("serialization error")
	ErrStoreUnavailable     = errors.New("store unavailable")
)
