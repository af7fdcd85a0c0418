package services

import "errors"

var (
	// ErrValidation indicates malformed or missing caller input.
	ErrValidation = errors.New("invalid input")
	// ErrUnauthorized indicates a credential or session failure.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrDependency indicates an external collaborator could not complete.
	ErrDependency = errors.New("dependency failure")
)
