package domain

import "errors"

var (
	ErrNotFound             = errors.New("not found")
	ErrVersionCollision     = errors.New("cv version already exists for this job role level")
	ErrLastActiveCV         = errors.New("cannot deactivate the talent's only active cv")
	ErrActiveDeletion       = errors.New("cannot delete an active cv")
	ErrInvalidTransition    = errors.New("action not allowed in current workflow state")
	ErrConfirmationRequired = errors.New("analysis must be explicitly confirmed")
	ErrNothingToConfirm     = errors.New("comparison has no basic info changes to confirm")
	ErrExternalService      = errors.New("external service failure")
)
