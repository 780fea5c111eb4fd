package ppr

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownFrequency  = errors.New("unknown frequency")
	ErrGoalNotFound      = errors.New("goal not found")
	ErrLaunchNotFound    = errors.New("launch not found")
	ErrQuotaExceeded     = errors.New("launch quota exceeded")
	ErrLaunchLocked      = errors.New("launch can only be edited while rejected")
	ErrInvalidTransition = errors.New("invalid launch transition")
	ErrGoalCanceled      = errors.New("goal is canceled")
	ErrGoalNotEditable   = errors.New("goal can only be edited while pending")
)

type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}
