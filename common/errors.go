// Package common holds the sentinel errors shared by the repository, usecase and
// handler layers. Callers match them with errors.Is / errors.As.
package common

import (
	"errors"
	"strings"
)

var (
	// Client errors.
	ErrInvalidInput       = errors.New("invalid input")
	ErrDuplicateUser      = errors.New("username already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("username not found")
	ErrUserNotRegistered  = errors.New("user not registered")
	ErrConsentRequired    = errors.New("user consent required")

	// Store errors.
	ErrStoreBusy = errors.New("store busy")
	ErrExport    = errors.New("export failed")
)

// MissingFieldsError reports which required telemetry fields were absent.
// It matches ErrInvalidInput.
type MissingFieldsError struct {
	Fields []string
}

func (e *MissingFieldsError) Error() string {
	return "missing fields: " + strings.Join(e.Fields, ", ")
}

func (e *MissingFieldsError) Is(target error) bool {
	return target == ErrInvalidInput
}
