package events

import "errors"

// Sentinel kinds for bus errors.
var (
	ErrTooManySubscribers = errors.New("too many subscribers for event")
)
