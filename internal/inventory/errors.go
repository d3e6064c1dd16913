package inventory

import (
	"errors"
	"fmt"
)

// Sentinel errors matched by the typed errors below via errors.Is.
var (
	ErrInvalidFormat      = errors.New("invalid schema version format")
	ErrSchemaIncompatible = errors.New("incompatible schema version")
)

// InvalidFormatError is returned when a schema version string does not parse.
type InvalidFormatError struct {
	Value string
}

func (e *InvalidFormatError) Error() string {
	return fmt.Sprintf("%s: %q", ErrInvalidFormat, e.Value)
}

// Is matches ErrInvalidFormat.
func (e *InvalidFormatError) Is(target error) bool {
	return target == ErrInvalidFormat
}

// SchemaIncompatibleError is returned when a document's major version differs
// from the one the reader expects.
type SchemaIncompatibleError struct {
	Expected SchemaVersion
	Actual   SchemaVersion
}

func (e *SchemaIncompatibleError) Error() string {
	return fmt.Sprintf("%s: expected %s, found %s", ErrSchemaIncompatible, e.Expected, e.Actual)
}

// Is matches ErrSchemaIncompatible.
func (e *SchemaIncompatibleError) Is(target error) bool {
	return target == ErrSchemaIncompatible
}
