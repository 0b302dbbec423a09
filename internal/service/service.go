// Package service implements Simmer's business logic on top of the store.
// Services validate input, enforce ownership, and translate store errors
// into domain errors; HTTP concerns stay in the api package.
package service

import (
	"github.com/simmerapp/simmer-server/internal/validation"
)

// validate is the shared validator for request structs.
var validate = validation.New()
