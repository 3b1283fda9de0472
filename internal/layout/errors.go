// Package layout places date-ranged events on a Sunday-first month grid.
//
// The pipeline is strictly forward:
//
//	Filter -> BuildGrid -> ResolveSpans -> Allocate -> Fit (labels)
//
// Month runs all of it for one month. Every call owns its own state, so
// several months or report kinds can be laid out in parallel.
package layout

import (
	"errors"
	"fmt"
)

// ErrInvalidInput is returned for a month outside 1..12, an event whose
// start is after its end, or a negative slot cap. It is never corrected
// silently.
var ErrInvalidInput = errors.New("invalid input")

func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrInvalidInput}, args...)...)
}
