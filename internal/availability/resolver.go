// Package availability reads the committed reservations and maintenance
// windows for a court and day, and answers whether a proposed range collides
// with either.
package availability

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/codr1/CourtReserve/internal/config"
	dbgen "github.com/codr1/CourtReserve/internal/db/generated"
	"github.com/codr1/CourtReserve/internal/slots"
)

type Kind string

const (
	KindReservation Kind = "reservation"
	KindMaintenance Kind = "maintenance"
)

var ErrCourtNotFound = errors.New("court not found")

// Entry is one occupied range on a court for a day.
type Entry struct {
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
	Type      Kind   `json:"type"`
}

type Resolver struct {
	queries  *dbgen.Queries
	facility config.FacilityConfig
	now      func() time.Time
}

func NewResolver(q *dbgen.Queries, facility config.FacilityConfig) *Resolver {
	return &Resolver{
		queries:  q,
		facility: facility,
		now:      time.Now,
	}
}

// WithClock returns a copy of the resolver that reads the current time from now.
func (r *Resolver) WithClock(now func() time.Time) *Resolver {
	cp := *r
	cp.now = now
	return &cp
}

// GetAvailability lists every confirmed reservation and every maintenance
// window that applies to courtID on date, ordered by start time. Entries are
// not merged; two adjacent bookings come back as two entries.
func (r *Resolver) GetAvailability(ctx context.Context, courtID int64, date string) ([]Entry, error) {
	day, err := r.parseDate(date)
	if err != nil {
		return nil, err
	}
	if err := ensureCourt(ctx, r.queries, courtID); err != nil {
		return nil, err
	}
	return listEntries(ctx, r.queries, courtID, day.Format(slots.DateLayout))
}

// Slots projects the operating-hours grid for date against the occupied
// ranges and the current facility-local time.
func (r *Resolver) Slots(ctx context.Context, courtID int64, date string) ([]slots.TimeSlot, error) {
	day, err := r.parseDate(date)
	if err != nil {
		return nil, err
	}
	if err := ensureCourt(ctx, r.queries, courtID); err != nil {
		return nil, err
	}

	window, err := OperatingWindow(r.facility.OperatingHours, day)
	if err != nil {
		return nil, err
	}
	grid, err := slots.GenerateSlots(window.Start, window.End, slots.Granularity)
	if err != nil {
		return nil, fmt.Errorf("generate grid: %w", err)
	}

	entries, err := listEntries(ctx, r.queries, courtID, day.Format(slots.DateLayout))
	if err != nil {
		return nil, err
	}
	var reserved, maintenance []slots.Range
	for _, entry := range entries {
		rng, err := slots.NewRange(entry.StartTime, entry.EndTime)
		if err != nil {
			return nil, fmt.Errorf("stored %s range %s-%s: %w", entry.Type, entry.StartTime, entry.EndTime, err)
		}
		if entry.Type == KindMaintenance {
			maintenance = append(maintenance, rng)
		} else {
			reserved = append(reserved, rng)
		}
	}

	return slots.ProjectGrid(grid, reserved, maintenance, slots.PastCutoff(day, r.now())), nil
}

func (r *Resolver) parseDate(date string) (time.Time, error) {
	day, err := slots.ParseDate(date, r.facility.Location())
	if err != nil {
		return time.Time{}, &slots.ValidationError{Field: "date", Message: err.Error()}
	}
	return day, nil
}

// OperatingWindow returns the open/close range configured for day's weekday class.
func OperatingWindow(hours config.OperatingHours, day time.Time) (slots.Range, error) {
	h := hours.For(day)
	window, err := slots.NewRange(h.Open, h.Close)
	if err != nil {
		return slots.Range{}, fmt.Errorf("operating hours: %w", err)
	}
	return window, nil
}

func ensureCourt(ctx context.Context, q *dbgen.Queries, courtID int64) error {
	if _, err := q.GetCourt(ctx, courtID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrCourtNotFound
		}
		return fmt.Errorf("load court: %w", err)
	}
	return nil
}

func listEntries(ctx context.Context, q *dbgen.Queries, courtID int64, date string) ([]Entry, error) {
	reservations, err := q.ListConfirmedReservationsForCourtDate(ctx, dbgen.ListConfirmedReservationsForCourtDateParams{
		CourtID: courtID,
		Date:    date,
	})
	if err != nil {
		return nil, fmt.Errorf("list reservations: %w", err)
	}
	periods, err := q.ListMaintenanceForCourtDate(ctx, dbgen.ListMaintenanceForCourtDateParams{
		CourtID: courtID,
		Date:    date,
	})
	if err != nil {
		return nil, fmt.Errorf("list maintenance: %w", err)
	}

	entries := make([]Entry, 0, len(reservations)+len(periods))
	for _, res := range reservations {
		entries = append(entries, Entry{StartTime: res.StartTime, EndTime: res.EndTime, Type: KindReservation})
	}
	for _, period := range periods {
		entries = append(entries, Entry{StartTime: period.StartTime, EndTime: period.EndTime, Type: KindMaintenance})
	}

	// Reservations precede maintenance on equal starts; the stable sort keeps that order.
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].StartTime != entries[j].StartTime {
			return entries[i].StartTime < entries[j].StartTime
		}
		if entries[i].Type != entries[j].Type {
			return entries[i].Type == KindReservation
		}
		return entries[i].EndTime < entries[j].EndTime
	})
	return entries, nil
}
