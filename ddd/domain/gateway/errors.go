package gateway

import "errors"

var (
	ErrObjectNotFound = errors.New("object not found")
	ErrLockHeld       = errors.New("lock held")
	ErrLockLost       = errors.New("lock lost")
)
