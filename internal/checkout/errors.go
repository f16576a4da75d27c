package checkout

import (
	"errors"

	pkgerrors "github.com/angelmondragon/storefront/pkg/errors"
)

// BlockingError marks a checkout failure the UI must raise as an alert.
type BlockingError struct {
	err error
}

func (e *BlockingError) Error() string { return e.err.Error() }

func (e *BlockingError) Unwrap() error { return e.err }

// IsBlocking reports whether err should interrupt the shopper.
func IsBlocking(err error) bool {
	var b *BlockingError
	return errors.As(err, &b)
}

// Message returns the user-facing text for a checkout error.
func Message(err error) string {
	return pkgerrors.UserMessage(err)
}

// Blocking lets response writers flag the error without importing checkout.
func (e *BlockingError) Blocking() bool { return true }
