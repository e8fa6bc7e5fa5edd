package metrics

import "errors"

// ErrReadOnly is returned when writing through a store that cannot write.
var ErrReadOnly = errors.New("store is read only")
