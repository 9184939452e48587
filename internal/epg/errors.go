package epg

import "errors"

// Domain errors for guide documents.
var (
	ErrEmptyChannelID = errors.New("epg channel id cannot be empty")
	ErrEmptyName      = errors.New("epg channel display name cannot be empty")
	ErrEmptyTimes     = errors.New("epg programme start and stop are required")
	ErrTimeOutOfRange = errors.New("timestamp is outside years 1 to 9999")
)
