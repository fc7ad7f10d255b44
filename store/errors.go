package store

import (
	"errors"
	"fmt"
)

// Sentinel errors for use with errors.Is.
var (
	ErrNotFound     = errors.New("resource not found")
	ErrConflict     = errors.New("resource already exists")
	ErrInvalidQuery = errors.New("invalid query")
	ErrInvalidInput = errors.New("invalid input")
)

// NotFound wraps ErrNotFound with the entity and id that were looked up.
func NotFound(entity, id string) error {
	return fmt.Errorf("%s %q: %w", entity, id, ErrNotFound)
}

// Conflict wraps ErrConflict with the entity and the duplicated key.
func Conflict(entity, key string) error {
	return fmt.Errorf("%s %q: %w", entity, key, ErrConflict)
}

// InvalidInput wraps ErrInvalidInput with a description of the bad field.
func InvalidInput(msg string) error {
	return fmt.Errorf("%s: %w", msg, ErrInvalidInput)
}

func invalidQuery(format string, args ...interface{}) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrInvalidQuery)
}
