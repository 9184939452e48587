package application

import "errors"

// ErrNoSnapshot is returned by generators before the first snapshot is published.
var ErrNoSnapshot = errors.New("no snapshot available yet")
