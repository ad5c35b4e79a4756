package model

import "errors"

// Common errors used across the application
var (
	// Login errors
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNetworkFailure     = errors.New("network failure")
	ErrEmptyCredentials   = errors.New("email and password are required")

	// Orchestrator errors
	ErrOrchestratorClosed = errors.New("login orchestrator is closed")

	// Storage errors
	ErrEmailNotFound     = errors.New("no persisted email")
	ErrHostTokenNotFound = errors.New("no host token for host")

	// Registration errors
	ErrRegistrationFailed = errors.New("registration failed")
)
