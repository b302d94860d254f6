package storage

import "errors"

// ErrNotFound is returned by every storage implementation when the requested
// entity does not exist. Handlers map it to 404.
var ErrNotFound = errors.New("not found")
