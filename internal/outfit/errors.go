// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package outfit

import (
	"errors"
	"fmt"
)

// Caller errors. These are returned before any write happens.
var (
	ErrUnauthenticated = errors.New("outfit: caller is not authenticated")
	ErrNotFound        = errors.New("outfit: not found")
	ErrForbidden       = errors.New("outfit: caller does not own this outfit")
)

// ValidationError reports a malformed payload.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}
