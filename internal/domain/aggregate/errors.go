package aggregate

import "errors"

// ErrUnknownPolicy is returned for a merge policy name that is not recognised.
var ErrUnknownPolicy = errors.New("unknown merge policy")
