package scene

import "errors"

var (
	ErrUnknownScene = errors.New("unknown scene")
	// ErrLinkBusy is returned when a link request arrives mid-transition or
	// inside the cooldown window. Callers drop it silently.
	ErrLinkBusy   = errors.New("scene link in progress or cooling down")
	ErrNoScene    = errors.New("no scene loaded")
	ErrNotLinking = errors.New("object does not trigger scene links")
)
