package providers

import "errors"

// ErrNotFound is returned when the provider does not know the requested batch.
var ErrNotFound = errors.New("batch not found")

type authError struct {
	message string
}

func (e *authError) Error() string {
	return "authentication error: " + e.message
}

// IsAuthError checks if an error is an authentication error.
func IsAuthError(err error) bool {
	var ae *authError
	return errors.As(err, &ae)
}
