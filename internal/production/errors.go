package production

import "errors"

// ErrResolution reports that a context could not be resolved into
// template fields. Errors from the resolver wrap this sentinel.
var ErrResolution = errors.New("context resolution failed")
