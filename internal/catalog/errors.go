package catalog

import "errors"

// Domain errors
var (
	ErrMissingCredential  = errors.New("auth token is not configured")
	ErrUnsuccessful       = errors.New("upstream response indicated failure")
	ErrMissingDetailData  = errors.New("'data' key not found in detail response")
	ErrMissingPlaybackURL = errors.New("'vip_mpegts' key not found in detail response data")
	ErrMissingTimestamp   = errors.New("timestamp is missing")
	ErrInvalidTimestamp   = errors.New("timestamp is not an integer")
)
