package engine

import "errors"

// ErrInvalidOperation marks a request that the current state does not allow,
// such as spinning a reel that is still moving. Callers get it back as a
// failure signal; nothing panics.
var ErrInvalidOperation = errors.New("invalid operation")
