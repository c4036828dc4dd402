// ABOUTME: Error kinds produced while reconciling form submissions
// ABOUTME: Typed errors wrap their cause and are matched with errors.As
package onboarding

import (
	"errors"
	"fmt"
)

var (
	ErrNoLastName  = errors.New("name has no last name")
	ErrUnknownForm = errors.New("unknown form")

	// ErrIdentityUnresolved means a submission named a user id that does not exist.
	ErrIdentityUnresolved = errors.New("identity could not be resolved")
)

// MissingFieldError reports a required submission field that is empty.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("missing required field %q", e.Field)
}

// IdentityCreationError is returned when the user store rejects a new identity.
type IdentityCreationError struct {
	Email string
	Err   error
}

func (e *IdentityCreationError) Error() string {
	return fmt.Sprintf("failed to create identity for %s: %v", e.Email, e.Err)
}

func (e *IdentityCreationError) Unwrap() error { return e.Err }

// RecordUpsertError is returned when a contact or client write fails.
type RecordUpsertError struct {
	Kind string
	ID   int64
	Err  error
}

func (e *RecordUpsertError) Error() string {
	if e.ID == 0 {
		return fmt.Sprintf("failed to insert %s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("failed to update %s %d: %v", e.Kind, e.ID, e.Err)
}

func (e *RecordUpsertError) Unwrap() error { return e.Err }

// InvalidAmountError rejects a monetary field that is not a finite number.
type InvalidAmountError struct {
	Value string
	Err   error
}

func (e *InvalidAmountError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid amount %q: %v", e.Value, e.Err)
	}
	return fmt.Sprintf("invalid amount %q", e.Value)
}

func (e *InvalidAmountError) Unwrap() error { return e.Err }
