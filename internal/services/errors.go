package services

import (
	"errors"
	"fmt"

	"github.com/smartforge/landing/internal/repositories"
	"github.com/smartforge/landing/internal/wallet"
)

// ErrDuplicateEmail is returned when the address is already subscribed.
var ErrDuplicateEmail = repositories.ErrDuplicateEmail

const (
	RuleRequired = "required"
	RuleFormat   = "format"
)

// ValidationError reports a rejected input field.
type ValidationError struct {
	Field string
	Rule  string
}

func (e *ValidationError) Error() string {
	switch e.Rule {
	case RuleRequired:
		return fmt.Sprintf("%s is required", e.Field)
	case RuleFormat:
		return fmt.Sprintf("%s is invalid", e.Field)
	}
	return fmt.Sprintf("%s failed %s validation", e.Field, e.Rule)
}

// StorageError wraps a persistence failure other than a duplicate.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

var (
	ErrSessionNotFound  = errors.New("wallet session not found")
	ErrAlreadyConnected = wallet.ErrAlreadyConnected
)
