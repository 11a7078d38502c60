// Copyright © 2014-2017 Lawrence E. Bakst. All rights reserved.

package dcuckoo

import "github.com/pkg/errors"

// Errors returned by the table and its configuration. They are wrapped with
// context, use errors.Is to test for them.
var (
	ErrInvalidSize  = errors.New("dcuckoo: size must be a natural number")
	ErrInvalidKey   = errors.New("dcuckoo: keys must be strings")
	ErrInvalidValue = errors.New("dcuckoo: values can't be nil")
	ErrUnknownHash  = errors.New("dcuckoo: unknown hash function")
	ErrBadConfig    = errors.New("dcuckoo: bad config")
)
