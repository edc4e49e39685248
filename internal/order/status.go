package order

import (
	"errors"
	"fmt"
)

type Status string

const (
	StatusNew       Status = "new"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
)

var ErrInvalidTransition = errors.New("invalid status transition")

func (s Status) Valid() bool {
	switch s {
	case StatusNew, StatusConfirmed, StatusCancelled:
		return true
	}
	return false
}

// Next checks a move from s to `to`. Repeating the current status is allowed and reports changed=false.
func (s Status) Next(to Status) (changed bool, err error) {
	if s == to {
		return false, nil
	}
	if s == StatusNew && (to == StatusConfirmed || to == StatusCancelled) {
		return true, nil
	}
	return false, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, s, to)
}
