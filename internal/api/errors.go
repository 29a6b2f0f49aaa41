package api

import "errors"

// Button lookup and server operation errors.
var (
	ErrButtonNotFound           = errors.New("button not found")
	ErrServerShutdownFailed     = errors.New("server shutdown failed")
	ErrEdgeInjectionUnavailable = errors.New("edge injection is only available against the dummy driver")
)
