package contracts

import "errors"

// Errors returned synchronously by connection and recording operations.
var (
	ErrInvalidDeviceID = errors.New("invalid device id")
	ErrPortUnavailable = errors.New("port unavailable")
	ErrConnection      = errors.New("error connecting to MIDI device")
	ErrNotConnected    = errors.New("track not connected")
)
