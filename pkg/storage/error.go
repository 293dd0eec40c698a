package storage

import "errors"

// NotFoundError is returned when a snapshot doesn't exist in the store.
type NotFoundError struct {
	Name string
}

func (e NotFoundError) Error() string {
	if e.Name == "" {
		return "snapshot not found"
	}

	return "snapshot not found: " + e.Name
}

// ExistsError is returned when storing a snapshot under a taken name.
type ExistsError struct {
	Name string
}

func (e ExistsError) Error() string {
	return "snapshot already exists: " + e.Name
}

// IsNotFound reports whether err is or wraps a NotFoundError.
func IsNotFound(err error) bool {
	var nf NotFoundError
	return errors.As(err, &nf)
}

// IsExists reports whether err is or wraps an ExistsError.
func IsExists(err error) bool {
	var ex ExistsError
	return errors.As(err, &ex)
}
