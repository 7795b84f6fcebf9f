package availability

import (
	"context"
	"fmt"

	dbgen "github.com/codr1/CourtReserve/internal/db/generated"
	"github.com/codr1/CourtReserve/internal/slots"
)

// HasConflict reports whether a confirmed reservation on courtID and date,
// other than excludeID, overlaps r. Pass the transaction's queries so the
// check reads the same snapshot the write will commit against. An excludeID
// of 0 excludes nothing.
func HasConflict(ctx context.Context, q *dbgen.Queries, courtID int64, date string, r slots.Range, excludeID int64) (bool, error) {
	reservations, err := q.ListConfirmedReservationsForCourtDate(ctx, dbgen.ListConfirmedReservationsForCourtDateParams{
		CourtID: courtID,
		Date:    date,
	})
	if err != nil {
		return false, fmt.Errorf("list reservations: %w", err)
	}

	for _, res := range reservations {
		if res.ID == excludeID {
			continue
		}
		existing, err := slots.NewRange(res.StartTime, res.EndTime)
		if err != nil {
			return false, fmt.Errorf("reservation %d has invalid range: %w", res.ID, err)
		}
		if slots.Overlaps(existing, r) {
			return true, nil
		}
	}
	return false, nil
}

// HasMaintenanceOverlap reports whether any maintenance window active on date
// overlaps r on courtID.
func HasMaintenanceOverlap(ctx context.Context, q *dbgen.Queries, courtID int64, date string, r slots.Range) (bool, error) {
	periods, err := q.ListMaintenanceForCourtDate(ctx, dbgen.ListMaintenanceForCourtDateParams{
		CourtID: courtID,
		Date:    date,
	})
	if err != nil {
		return false, fmt.Errorf("list maintenance: %w", err)
	}

	for _, period := range periods {
		window, err := slots.NewRange(period.StartTime, period.EndTime)
		if err != nil {
			return false, fmt.Errorf("maintenance period %d has invalid range: %w", period.ID, err)
		}
		if slots.Overlaps(window, r) {
			return true, nil
		}
	}
	return false, nil
}
