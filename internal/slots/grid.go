package slots

import "time"

// TimeSlot is one grid cell as shown to a client choosing a booking.
type TimeSlot struct {
	StartTime     string `json:"startTime"`
	EndTime       string `json:"endTime"`
	IsReserved    bool   `json:"isReserved"`
	IsMaintenance bool   `json:"isMaintenance"`
	IsPast        bool   `json:"isPast"`
}

// Available reports whether the slot can still be selected.
func (s TimeSlot) Available() bool {
	return !s.IsReserved && !s.IsMaintenance && !s.IsPast
}

const (
	noCutoff  TimeOfDay = -1
	dayCutoff TimeOfDay = 24 * 60
)

// PastCutoff returns the latest slot start considered past for date, given the
// current instant. Both are compared in date's location.
func PastCutoff(date, now time.Time) TimeOfDay {
	switch {
	case SameDay(date, now):
		return Clock(now.In(date.Location()))
	case DayBefore(date, now):
		return dayCutoff
	default:
		return noCutoff
	}
}

// ProjectGrid marks every grid slot that overlaps a reserved or maintenance
// range, and every slot starting at or before cutoff as past.
func ProjectGrid(grid []Range, reserved, maintenance []Range, cutoff TimeOfDay) []TimeSlot {
	out := make([]TimeSlot, 0, len(grid))
	for _, cell := range grid {
		out = append(out, TimeSlot{
			StartTime:     cell.Start.String(),
			EndTime:       cell.End.String(),
			IsReserved:    overlapsAny(cell, reserved),
			IsMaintenance: overlapsAny(cell, maintenance),
			IsPast:        cell.Start <= cutoff,
		})
	}
	return out
}

func overlapsAny(r Range, others []Range) bool {
	for _, other := range others {
		if Overlaps(r, other) {
			return true
		}
	}
	return false
}
