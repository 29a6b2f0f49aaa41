package controller

import "errors"

// Misuse errors, surfaced synchronously to the caller.
var (
	ErrPinAlreadyRegistered = errors.New("controller: pin already registered")
	ErrButtonNotOwned       = errors.New("controller: button not owned by this controller")
	ErrNotReady             = errors.New("controller: controller is not Ready")
	ErrNotRunning           = errors.New("controller: controller is not Running")
)
