package store

import "errors"

// Sentinel errors returned by store operations. Services translate these
// into domain errors before they reach handlers.
var (
	// ErrNotFound is returned when an entity cannot be found.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists is returned when creating an entity whose ID or
	// unique index value is already taken.
	ErrAlreadyExists = errors.New("already exists")
	// ErrTokenDead is returned when redeeming a share token that has
	// expired or reached its usage cap.
	ErrTokenDead = errors.New("share token dead")
)
