// Package slots models the fixed 30-minute booking grid: times of day,
// half-open ranges, grid generation and the selection rules a booking
// must satisfy.
package slots

import (
	"fmt"
	"strings"
	"time"
)

const (
	// Granularity is the width of one bookable slot.
	Granularity = 30 * time.Minute
	// MaxSlots is the most consecutive slots one reservation may cover.
	MaxSlots = 4
	// MaxDuration is the longest reservation allowed.
	MaxDuration = MaxSlots * Granularity

	DateLayout = "2006-01-02"
	timeLayout = "15:04"
)

// TimeOfDay is a wall-clock time expressed as minutes since midnight.
type TimeOfDay int

// ParseTimeOfDay parses a zero-padded 24-hour "HH:MM" string.
func ParseTimeOfDay(raw string) (TimeOfDay, error) {
	raw = strings.TrimSpace(raw)
	if len(raw) != len(timeLayout) {
		return 0, fmt.Errorf("time must be HH:MM, got %q", raw)
	}
	parsed, err := time.Parse(timeLayout, raw)
	if err != nil {
		return 0, fmt.Errorf("time must be HH:MM, got %q", raw)
	}
	return TimeOfDay(parsed.Hour()*60 + parsed.Minute()), nil
}

// Clock returns the time of day of t in t's location.
func Clock(t time.Time) TimeOfDay {
	return TimeOfDay(t.Hour()*60 + t.Minute())
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", int(t)/60, int(t)%60)
}

// Aligned reports whether t falls on a slot boundary.
func (t TimeOfDay) Aligned() bool {
	return int(t)%int(Granularity/time.Minute) == 0
}

// Range is the half-open interval [Start, End).
type Range struct {
	Start TimeOfDay
	End   TimeOfDay
}

// ParseRange parses the "HH:MM-HH:MM" slot label form.
func ParseRange(raw string) (Range, error) {
	start, end, ok := strings.Cut(strings.TrimSpace(raw), "-")
	if !ok {
		return Range{}, fmt.Errorf("slot must be HH:MM-HH:MM, got %q", raw)
	}
	s, err := ParseTimeOfDay(start)
	if err != nil {
		return Range{}, err
	}
	e, err := ParseTimeOfDay(end)
	if err != nil {
		return Range{}, err
	}
	return Range{Start: s, End: e}, nil
}

// NewRange parses a start and end time into a Range without validating it.
func NewRange(start, end string) (Range, error) {
	s, err := ParseTimeOfDay(start)
	if err != nil {
		return Range{}, err
	}
	e, err := ParseTimeOfDay(end)
	if err != nil {
		return Range{}, err
	}
	return Range{Start: s, End: e}, nil
}

func (r Range) String() string {
	return r.Start.String() + "-" + r.End.String()
}

// Minutes returns the length of the range.
func (r Range) Minutes() int {
	return int(r.End - r.Start)
}

// Duration returns the length of the range.
func (r Range) Duration() time.Duration {
	return time.Duration(r.Minutes()) * time.Minute
}

// Within reports whether r lies entirely inside outer.
func (r Range) Within(outer Range) bool {
	return r.Start >= outer.Start && r.End <= outer.End
}

// Overlaps is the half-open overlap test. Ranges that only touch do not overlap.
func Overlaps(a, b Range) bool {
	return a.Start < b.End && b.Start < a.End
}

// GenerateSlots partitions [start, end) into consecutive windows of the given
// granularity beginning at start. A trailing remainder shorter than one
// window is dropped. A zero granularity means Granularity.
func GenerateSlots(start, end TimeOfDay, granularity time.Duration) ([]Range, error) {
	if granularity == 0 {
		granularity = Granularity
	}
	step := TimeOfDay(granularity / time.Minute)
	if step <= 0 || granularity%time.Minute != 0 {
		return nil, fmt.Errorf("granularity must be a positive whole number of minutes, got %s", granularity)
	}
	if end <= start {
		return nil, fmt.Errorf("end %s must be after start %s", end, start)
	}

	grid := make([]Range, 0, int(end-start)/int(step))
	for s := start; s+step <= end; s += step {
		grid = append(grid, Range{Start: s, End: s + step})
	}
	return grid, nil
}

// ParseDate parses a "YYYY-MM-DD" calendar date at midnight in loc.
func ParseDate(raw string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	raw = strings.TrimSpace(raw)
	parsed, err := time.ParseInLocation(DateLayout, raw, loc)
	if err != nil || len(raw) != len(DateLayout) {
		return time.Time{}, fmt.Errorf("date must be YYYY-MM-DD, got %q", raw)
	}
	return parsed, nil
}

// SameDay reports whether a and b fall on the same calendar day in a's location.
func SameDay(a, b time.Time) bool {
	b = b.In(a.Location())
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// DayBefore reports whether day a is strictly before day b, comparing in a's location.
func DayBefore(a, b time.Time) bool {
	return a.Format(DateLayout) < b.In(a.Location()).Format(DateLayout)
}
