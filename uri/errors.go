package uri

import "github.com/ghettovoice/sipaddr/internal/errorutil"

// Error kinds reported by URI constructors and setters.
const (
	ErrInvalidArgument = errorutil.ErrInvalidArgument
	ErrMalformedValue  = errorutil.ErrMalformedValue
	ErrWrongState      = errorutil.ErrWrongState
)

// ErrCrossImplementation is reported for URIs that do not belong to this package.
// It also matches [ErrInvalidArgument].
var ErrCrossImplementation = errorutil.ErrCrossImplementation

// Error represents a URI error.
// See [errorutil.Error].
type Error = errorutil.Error
