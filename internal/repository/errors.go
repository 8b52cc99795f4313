package repository

import "errors"

var (
	// ErrNotFound is returned when a requested entity doesn't exist
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned when an entity with the same identity already exists
	ErrConflict = errors.New("conflict: entity already exists")
)
