package sipaddr

import "github.com/ghettovoice/sipaddr/internal/errorutil"

const (
	ErrInvalidArgument = errorutil.ErrInvalidArgument
	ErrMalformedValue  = errorutil.ErrMalformedValue
	ErrWrongState      = errorutil.ErrWrongState
)

// ErrCrossImplementation matches [ErrInvalidArgument] too.
var ErrCrossImplementation = errorutil.ErrCrossImplementation
