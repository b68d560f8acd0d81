package model

import "errors"

var (
	// ErrCapabilityUnavailable marks a camera, model or geolocation that is denied or absent.
	ErrCapabilityUnavailable = errors.New("capability unavailable")
	// ErrTransientService marks a failed call to drafting, geocoding or the store.
	ErrTransientService = errors.New("transient service failure")
	// ErrConfigurationMissing marks absent credentials or settings.
	ErrConfigurationMissing = errors.New("configuration missing")

	ErrNotFound          = errors.New("not found")
	ErrInvalidTransition = errors.New("invalid status transition")
)
