package environment

import "errors"

// ErrIllegalAction is returned by environments when an action has the
// wrong dimensionality or is not finite
var ErrIllegalAction = errors.New("illegal action")
