package errorz

import "errors"

var (
	NotFound          = errors.New("not found")
	Conflict          = errors.New("conflict")
	AlreadyRegistered = errors.New("already registered")
	AlreadyRated      = errors.New("already rated")
	AlreadyInvited    = errors.New("already invited")
	AtCapacity        = errors.New("at capacity")
	CapacityExceeded  = errors.New("capacity exceeded")
	Forbidden         = errors.New("forbidden")
	NotEligible       = errors.New("not eligible")
	Expired           = errors.New("expired")
	Invalid           = errors.New("invalid")
)
