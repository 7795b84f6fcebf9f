package slots

import (
	"fmt"
	"sort"
	"time"
)

// ValidationError describes a selection or time range the booking rules reject.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// ValidateSelection checks a set of "HH:MM-HH:MM" slot labels and returns the
// combined range. Rules are applied in order: the selection is non-empty, holds
// at most MaxSlots entries, and forms one gap-free run of grid slots.
func ValidateSelection(selected []string) (Range, error) {
	if len(selected) == 0 {
		return Range{}, invalid("slots", "at least one time slot must be selected")
	}
	if len(selected) > MaxSlots {
		return Range{}, invalid("slots", "a maximum of %d consecutive slots (%s) can be booked", MaxSlots, formatHours(MaxDuration))
	}

	ranges := make([]Range, 0, len(selected))
	for _, label := range selected {
		r, err := ParseRange(label)
		if err != nil {
			return Range{}, invalid("slots", "invalid slot %q", label)
		}
		if !r.Start.Aligned() || r.Duration() != Granularity {
			return Range{}, invalid("slots", "slot %q is not a %s grid slot", label, formatMinutes(Granularity))
		}
		ranges = append(ranges, r)
	}

	sort.Slice(ranges, func(i, j int) bool {
		return ranges[i].Start < ranges[j].Start
	})
	for i := 1; i < len(ranges); i++ {
		if ranges[i].Start != ranges[i-1].End {
			return Range{}, invalid("slots", "selected time slots must be consecutive")
		}
	}

	return Range{Start: ranges[0].Start, End: ranges[len(ranges)-1].End}, nil
}

// ValidateDuration applies the same policy to an explicit start/end pair.
func ValidateDuration(r Range) error {
	if r.End <= r.Start {
		return invalid("endTime", "end time must be after start time")
	}
	if !r.Start.Aligned() || !r.End.Aligned() {
		return invalid("startTime", "times must fall on %s boundaries", formatMinutes(Granularity))
	}
	if r.Duration() > MaxDuration {
		return invalid("endTime", "reservations cannot exceed %s", formatHours(MaxDuration))
	}
	return nil
}

func formatMinutes(d time.Duration) string {
	return fmt.Sprintf("%d-minute", int(d/time.Minute))
}

func formatHours(d time.Duration) string {
	hours := d.Hours()
	if hours == 1 {
		return "1 hour"
	}
	return fmt.Sprintf("%g hours", hours)
}
