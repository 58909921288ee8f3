package service

import (
	"errors"

	"petition-service/internal/workflow"
)

var (
	ErrPermissionDenied   = workflow.ErrForbidden
	ErrInvalidStatus      = workflow.ErrInvalidTransition
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrNotFound           = errors.New("not found")
	ErrInvalidInput       = errors.New("invalid input")
	ErrConflict           = errors.New("conflict")
	ErrIncompleteDecision = errors.New("decision outcome and remarks are required")
	ErrTooManyAssignees   = errors.New("a petition can have at most 3 enquiry officers")
)
