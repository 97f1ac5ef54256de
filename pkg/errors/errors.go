// Package errors holds sentinel errors shared between the repository and
// service layers, so services can classify storage failures without
// depending on driver error types.
package errors

import (
	"errors"
	"fmt"
)

// ErrNotFound marks a lookup that matched no row. Repositories wrap it
// with the resource name; anything not matching this sentinel is an
// infrastructure failure.
var ErrNotFound = errors.New("not found")

// NotFoundError wraps ErrNotFound with the missing resource's name
func NotFoundError(resource string) error {
	return fmt.Errorf("%s %w", resource, ErrNotFound)
}
