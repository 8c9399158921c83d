package promo

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DefaultTimezone hosts the Early Riser window in civil time. Evaluation
// always converts through the zone so the boundary tracks DST.
const DefaultTimezone = "America/Los_Angeles"

const (
	codePrefix      = "SIERRA-"
	DiscountPercent = 10
)

// Window is a recurring daily civil-time interval, inclusive of its start
// instant and exclusive of its end.
type Window struct {
	StartHour   int
	StartMinute int
	EndHour     int
	EndMinute   int
	Location    *time.Location
}

// DefaultWindow is the Early Riser promotion: 08:00-10:00 Pacific, daily.
func DefaultWindow() (Window, error) {
	loc, err := time.LoadLocation(DefaultTimezone)
	if err != nil {
		return Window{}, fmt.Errorf("load promo timezone: %w", err)
	}
	return Window{
		StartHour: 8,
		EndHour:   10,
		Location:  loc,
	}, nil
}

// Active reports whether the instant falls inside the window on its civil
// day. It is a pure function of the supplied instant; the caller owns the
// clock.
func (w Window) Active(now time.Time) bool {
	local := now.In(w.location())
	seconds := local.Hour()*3600 + local.Minute()*60 + local.Second()
	return seconds >= w.startSeconds() && seconds < w.endSeconds()
}

// Next returns the start of the first window at or after the instant,
// expressed in the window's zone. time.Date resolves the civil time through
// the zone, so a DST jump on the target day lands correctly.
func (w Window) Next(now time.Time) time.Time {
	loc := w.location()
	local := now.In(loc)
	start := time.Date(local.Year(), local.Month(), local.Day(), w.StartHour, w.StartMinute, 0, 0, loc)
	if !local.Before(start) {
		start = time.Date(local.Year(), local.Month(), local.Day()+1, w.StartHour, w.StartMinute, 0, 0, loc)
	}
	return start
}

// Describe renders the window for user-facing replies.
func (w Window) Describe() string {
	return fmt.Sprintf("%s-%s Pacific Time", formatCivil(w.StartHour, w.StartMinute), formatCivil(w.EndHour, w.EndMinute))
}

func (w Window) location() *time.Location {
	if w.Location != nil {
		return w.Location
	}
	return time.UTC
}

func (w Window) startSeconds() int {
	return w.StartHour*3600 + w.StartMinute*60
}

func (w Window) endSeconds() int {
	return w.EndHour*3600 + w.EndMinute*60
}

func formatCivil(hour, minute int) string {
	suffix := "AM"
	display := hour
	switch {
	case hour == 0:
		display = 12
	case hour == 12:
		suffix = "PM"
	case hour > 12:
		display = hour - 12
		suffix = "PM"
	}
	if minute == 0 {
		return fmt.Sprintf("%d %s", display, suffix)
	}
	return fmt.Sprintf("%d:%02d %s", display, minute, suffix)
}

// NewCode mints a single-use Early Riser discount code.
func NewCode() string {
	return codePrefix + strings.ToUpper(uuid.NewString()[:4])
}
