package topk

import (
	"fmt"
)

// ErrUnsupportedShift indicates a histogram shift outside the supported
// range. Shifted histograms bucket values by (v-min)>>shift; past a shift
// of 8 a below-minimum value can alias into a valid bucket instead of
// clipping.
type ErrUnsupportedShift struct {
	Shift int
}

func (e *ErrUnsupportedShift) Error() string {
	return fmt.Sprintf("unsupported histogram shift: %d (supported range: 0..8)", e.Shift)
}

// assertf panics with the formatted message when cond is false. Guards
// caller preconditions and internal consistency; a failure is a programmer
// error, not an operational condition.
func assertf(cond bool, format string, args ...any) {
	if !cond {
		panic(fmt.Sprintf(format, args...))
	}
}
