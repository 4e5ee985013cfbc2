package attendance

import (
	"fmt"
	"time"
)

// Disposition classifies a time of day against the check-in window.
type Disposition int

const (
	TooEarly Disposition = iota
	OnTime
	Late
	TooLate
)

func (d Disposition) String() string {
	switch d {
	case TooEarly:
		return "too_early"
	case OnTime:
		return "on_time"
	case Late:
		return "late"
	case TooLate:
		return "too_late"
	default:
		return "unknown"
	}
}

// Window holds the three check-in boundaries as minutes since midnight in the
// school's local timezone. It is pure configuration: no clocks, no storage.
type Window struct {
	Earliest  int
	LateAfter int
	Latest    int
}

// NewWindow parses HH:MM boundaries and checks their ordering.
func NewWindow(earliest, lateAfter, latest string) (Window, error) {
	e, err := parseClock(earliest)
	if err != nil {
		return Window{}, fmt.Errorf("invalid earliest boundary: %w", err)
	}
	la, err := parseClock(lateAfter)
	if err != nil {
		return Window{}, fmt.Errorf("invalid late_after boundary: %w", err)
	}
	l, err := parseClock(latest)
	if err != nil {
		return Window{}, fmt.Errorf("invalid latest boundary: %w", err)
	}
	if e > la || la > l {
		return Window{}, fmt.Errorf("window boundaries out of order: %s <= %s <= %s required", earliest, lateAfter, latest)
	}
	return Window{Earliest: e, LateAfter: la, Latest: l}, nil
}

// Classify maps a minute of day to a disposition. Boundary semantics:
// earliest and latest are inclusive, the late threshold marks the first
// late minute.
func (w Window) Classify(minute int) Disposition {
	switch {
	case minute < w.Earliest:
		return TooEarly
	case minute > w.Latest:
		return TooLate
	case minute < w.LateAfter:
		return OnTime
	default:
		return Late
	}
}

// MinutesUntilOpen reports how long before the window opens. Zero once open.
func (w Window) MinutesUntilOpen(minute int) int {
	if minute >= w.Earliest {
		return 0
	}
	return w.Earliest - minute
}

// Closed reports whether the window has fully closed for the day. Absence is
// only knowable once this is true.
func (w Window) Closed(minute int) bool {
	return minute > w.Latest
}

// MinuteOf converts a wall-clock instant to minutes since midnight.
func MinuteOf(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}

func parseClock(s string) (int, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, err
	}
	return t.Hour()*60 + t.Minute(), nil
}
