// Package validation marks errors caused by bad caller input.
package validation

import (
	"errors"
	"fmt"
)

type validationError struct {
	msg string
}

func (e validationError) Error() string { return e.msg }

// Errorf returns an error that IsValidation reports as true.
func Errorf(format string, args ...any) error {
	return validationError{msg: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err, or anything it wraps, came from Errorf.
func IsValidation(err error) bool {
	var v validationError
	return errors.As(err, &v)
}
