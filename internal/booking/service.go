// Package booking owns the reservation lifecycle: create, reschedule, cancel
// and delete, each authorized, validated and conflict-checked inside one
// write transaction.
package booking

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/codr1/CourtReserve/internal/api/authz"
	"github.com/codr1/CourtReserve/internal/availability"
	"github.com/codr1/CourtReserve/internal/config"
	appdb "github.com/codr1/CourtReserve/internal/db"
	dbgen "github.com/codr1/CourtReserve/internal/db/generated"
	"github.com/codr1/CourtReserve/internal/slots"
)

type Service struct {
	db       *appdb.DB
	facility config.FacilityConfig
	notifier Notifier
	now      func() time.Time
}

type Option func(*Service)

func WithNotifier(n Notifier) Option {
	return func(s *Service) {
		s.notifier = n
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

func NewService(database *appdb.DB, facility config.FacilityConfig, opts ...Option) *Service {
	s := &Service{
		db:       database,
		facility: facility,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Notifier returns the notifier events are delivered through.
func (s *Service) Notifier() Notifier {
	return s.notifier
}

func (s *Service) localNow() time.Time {
	return s.now().In(s.facility.Location())
}

// Create books a court for a validated range and emits EventConfirmed.
func (s *Service) Create(ctx context.Context, actor *authz.AuthUser, req CreateRequest) (Reservation, error) {
	if _, err := authz.RequireUser(actor); err != nil {
		return Reservation{}, err
	}
	ownerID := req.UserID
	if ownerID == 0 {
		ownerID = actor.ID
	}
	if ownerID != actor.ID && !actor.IsAdmin {
		return Reservation{}, authz.ErrForbidden
	}
	if req.CourtID <= 0 {
		return Reservation{}, invalid("courtId", "courtId is required")
	}

	day, err := s.parseDay(req.Date)
	if err != nil {
		return Reservation{}, err
	}
	rng, err := resolveRange(req.Slots, req.StartTime, req.EndTime)
	if err != nil {
		return Reservation{}, err
	}

	var created dbgen.Reservation
	var court dbgen.Court
	err = s.db.RunInTx(ctx, func(txdb *appdb.DB) error {
		if ownerID != actor.ID {
			if _, err := txdb.Queries.GetUserByID(ctx, ownerID); err != nil {
				if errors.Is(err, sql.ErrNoRows) {
					return invalid("userId", "user %d does not exist", ownerID)
				}
				return fmt.Errorf("load user: %w", err)
			}
		}

		court, err = loadCourt(ctx, txdb.Queries, req.CourtID)
		if err != nil {
			return err
		}
		if err := s.checkBookable(ctx, txdb.Queries, court, day, rng, 0); err != nil {
			return err
		}

		created, err = txdb.Queries.CreateReservation(ctx, dbgen.CreateReservationParams{
			UserID:          ownerID,
			CourtID:         court.ID,
			Date:            day.Format(slots.DateLayout),
			StartTime:       rng.Start.String(),
			EndTime:         rng.End.String(),
			TotalPriceCents: PriceCents(court.HourlyRateCents, rng),
			Status:          string(StatusConfirmed),
			Notes:           toNullString(req.Notes),
		})
		if err != nil {
			return fmt.Errorf("create reservation: %w", err)
		}
		return nil
	})
	if err != nil {
		return Reservation{}, translateStorageError(err)
	}

	reservation := fromRow(created)
	log.Ctx(ctx).Info().
		Int64("reservation_id", reservation.ID).
		Int64("court_id", reservation.CourtID).
		Str("date", reservation.Date).
		Str("time_range", rng.String()).
		Msg("Reservation confirmed")
	Deliver(ctx, s.notifier, newEvent(EventConfirmed, reservation, court.Name, "", s.now()))
	return reservation, nil
}

// Get returns a reservation the actor owns, or any reservation for an administrator.
func (s *Service) Get(ctx context.Context, actor *authz.AuthUser, id int64) (Reservation, error) {
	if _, err := authz.RequireUser(actor); err != nil {
		return Reservation{}, err
	}
	row, err := loadReservation(ctx, s.db.Queries, id)
	if err != nil {
		return Reservation{}, err
	}
	if err := authz.RequireReservationAccess(actor, row.UserID); err != nil {
		return Reservation{}, err
	}
	return fromRow(row), nil
}

// ListForUser returns the actor's own reservations, newest first.
func (s *Service) ListForUser(ctx context.Context, actor *authz.AuthUser) ([]Reservation, error) {
	if _, err := authz.RequireUser(actor); err != nil {
		return nil, err
	}
	rows, err := s.db.Queries.ListReservationsForUser(ctx, actor.ID)
	if err != nil {
		return nil, fmt.Errorf("list reservations: %w", err)
	}
	out := make([]Reservation, 0, len(rows))
	for _, row := range rows {
		out = append(out, fromRow(row))
	}
	return out, nil
}

// ListAdmin returns reservations with owner and court details.
func (s *Service) ListAdmin(ctx context.Context, actor *authz.AuthUser, filter AdminFilter) ([]AdminReservation, error) {
	if err := authz.RequireAdmin(actor); err != nil {
		return nil, err
	}
	params := dbgen.ListReservationsAdminParams{}
	if filter.Date != "" {
		day, err := s.parseDay(filter.Date)
		if err != nil {
			return nil, err
		}
		params.Date = sql.NullString{String: day.Format(slots.DateLayout), Valid: true}
	}
	if filter.CourtID > 0 {
		params.CourtID = sql.NullInt64{Int64: filter.CourtID, Valid: true}
	}
	if filter.Status != "" {
		if filter.Status != StatusConfirmed && filter.Status != StatusCancelled && filter.Status != StatusPending {
			return nil, invalid("status", "unknown status %q", filter.Status)
		}
		params.Status = sql.NullString{String: string(filter.Status), Valid: true}
	}

	rows, err := s.db.Queries.ListReservationsAdmin(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("list reservations: %w", err)
	}
	out := make([]AdminReservation, 0, len(rows))
	for _, row := range rows {
		out = append(out, AdminReservation{
			Reservation: fromRow(dbgen.Reservation{
				ID:              row.ID,
				UserID:          row.UserID,
				CourtID:         row.CourtID,
				Date:            row.Date,
				StartTime:       row.StartTime,
				EndTime:         row.EndTime,
				TotalPriceCents: row.TotalPriceCents,
				Status:          row.Status,
				Notes:           row.Notes,
				CreatedAt:       row.CreatedAt,
				UpdatedAt:       row.UpdatedAt,
			}),
			UserName:  row.UserName,
			UserEmail: row.UserEmail,
			CourtName: row.CourtName,
		})
	}
	return out, nil
}

// ListPublic returns confirmed occupied ranges for date without owner details.
// An empty date means today at the facility; a courtID of 0 means every court.
func (s *Service) ListPublic(ctx context.Context, date string, courtID int64) ([]PublicReservation, error) {
	day := s.localNow()
	if strings.TrimSpace(date) != "" {
		var err error
		day, err = s.parseDay(date)
		if err != nil {
			return nil, err
		}
	}
	params := dbgen.ListPublicReservationsParams{Date: day.Format(slots.DateLayout)}
	if courtID > 0 {
		params.CourtID = sql.NullInt64{Int64: courtID, Valid: true}
	}

	rows, err := s.db.Queries.ListPublicReservations(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("list public reservations: %w", err)
	}
	out := make([]PublicReservation, 0, len(rows))
	for _, row := range rows {
		out = append(out, PublicReservation{
			ID:        row.ID,
			CourtID:   row.CourtID,
			CourtName: row.CourtName,
			Date:      row.Date,
			StartTime: row.StartTime,
			EndTime:   row.EndTime,
		})
	}
	return out, nil
}

// Update applies a partial change. Schedule changes are re-validated and
// conflict-checked with the reservation itself excluded, and the price is
// recomputed. Emits EventUpdated when anything changed.
func (s *Service) Update(ctx context.Context, actor *authz.AuthUser, id int64, req UpdateRequest) (Reservation, error) {
	if _, err := authz.RequireUser(actor); err != nil {
		return Reservation{}, err
	}

	var updated dbgen.Reservation
	var courtName string
	var changed bool
	err := s.db.RunInTx(ctx, func(txdb *appdb.DB) error {
		current, err := loadReservation(ctx, txdb.Queries, id)
		if err != nil {
			return err
		}
		if err := authz.RequireReservationAccess(actor, current.UserID); err != nil {
			return err
		}

		params := dbgen.UpdateReservationParams{
			ID:              current.ID,
			CourtID:         current.CourtID,
			Date:            current.Date,
			StartTime:       current.StartTime,
			EndTime:         current.EndTime,
			TotalPriceCents: current.TotalPriceCents,
			Notes:           current.Notes,
		}
		if req.Notes != nil {
			params.Notes = toNullString(req.Notes)
		}

		court, err := loadCourt(ctx, txdb.Queries, current.CourtID)
		if err != nil {
			return err
		}

		if req.changesSchedule() {
			if Status(current.Status) == StatusCancelled {
				return invalid("status", "cancelled reservations cannot be rescheduled")
			}
			if req.CourtID != nil && *req.CourtID != court.ID {
				court, err = loadCourt(ctx, txdb.Queries, *req.CourtID)
				if err != nil {
					return err
				}
			}
			date := current.Date
			if req.Date != nil {
				date = *req.Date
			}
			day, err := s.parseDay(date)
			if err != nil {
				return err
			}
			rng, err := mergeRange(current, req)
			if err != nil {
				return err
			}
			if err := s.checkBookable(ctx, txdb.Queries, court, day, rng, current.ID); err != nil {
				return err
			}
			params.CourtID = court.ID
			params.Date = day.Format(slots.DateLayout)
			params.StartTime = rng.Start.String()
			params.EndTime = rng.End.String()
			params.TotalPriceCents = PriceCents(court.HourlyRateCents, rng)
		}

		changed = params.CourtID != current.CourtID ||
			params.Date != current.Date ||
			params.StartTime != current.StartTime ||
			params.EndTime != current.EndTime ||
			params.Notes != current.Notes
		if !changed {
			updated = current
			courtName = court.Name
			return nil
		}

		updated, err = txdb.Queries.UpdateReservation(ctx, params)
		if err != nil {
			return fmt.Errorf("update reservation: %w", err)
		}
		courtName = court.Name
		return nil
	})
	if err != nil {
		return Reservation{}, translateStorageError(err)
	}

	reservation := fromRow(updated)
	if changed {
		log.Ctx(ctx).Info().
			Int64("reservation_id", reservation.ID).
			Str("date", reservation.Date).
			Str("time_range", reservation.StartTime+"-"+reservation.EndTime).
			Msg("Reservation updated")
		Deliver(ctx, s.notifier, newEvent(EventUpdated, reservation, courtName, "", s.now()))
	}
	return reservation, nil
}

// Cancel marks the reservation cancelled and emits EventCancelled. Cancelling
// an already cancelled reservation returns it unchanged and emits nothing.
// An empty reason becomes ReasonUserDecision for the owner and
// ReasonAdministrative for anyone else.
func (s *Service) Cancel(ctx context.Context, actor *authz.AuthUser, id int64, reason string) (Reservation, error) {
	if _, err := authz.RequireUser(actor); err != nil {
		return Reservation{}, err
	}

	var ownerID int64
	err := s.db.RunInTx(ctx, func(txdb *appdb.DB) error {
		current, err := loadReservation(ctx, txdb.Queries, id)
		if err != nil {
			return err
		}
		ownerID = current.UserID
		return authz.RequireReservationAccess(actor, current.UserID)
	})
	if err != nil {
		return Reservation{}, err
	}

	reason = strings.TrimSpace(reason)
	if reason == "" {
		reason = ReasonUserDecision
		if actor.ID != ownerID {
			reason = ReasonAdministrative
		}
	}

	reservation, _, err := s.CancelWithReason(ctx, id, reason)
	return reservation, err
}

// CancelWithReason cancels a confirmed reservation in its own transaction
// without an authorization check and emits EventCancelled with reason. The
// returned flag is false when the reservation was not confirmed, in which
// case nothing is written or emitted. Callers authorize beforehand.
func (s *Service) CancelWithReason(ctx context.Context, id int64, reason string) (Reservation, bool, error) {
	var row dbgen.Reservation
	var courtName string
	var cancelled bool
	err := s.db.RunInTx(ctx, func(txdb *appdb.DB) error {
		affected, err := txdb.Queries.CancelReservationIfConfirmed(ctx, id)
		if err != nil {
			return fmt.Errorf("cancel reservation: %w", err)
		}
		cancelled = affected > 0

		row, err = loadReservation(ctx, txdb.Queries, id)
		if err != nil {
			return err
		}
		court, err := loadCourt(ctx, txdb.Queries, row.CourtID)
		if err != nil {
			return err
		}
		courtName = court.Name
		return nil
	})
	if err != nil {
		return Reservation{}, false, err
	}

	reservation := fromRow(row)
	if cancelled {
		log.Ctx(ctx).Info().
			Int64("reservation_id", reservation.ID).
			Str("reason", reason).
			Msg("Reservation cancelled")
		Deliver(ctx, s.notifier, newEvent(EventCancelled, reservation, courtName, reason, s.now()))
	}
	return reservation, cancelled, nil
}

// SetStatus toggles a reservation between confirmed and cancelled. Reconfirming
// re-runs the conflict and maintenance checks. Administrators only.
func (s *Service) SetStatus(ctx context.Context, actor *authz.AuthUser, id int64, status Status, reason string) (Reservation, error) {
	if err := authz.RequireAdmin(actor); err != nil {
		return Reservation{}, err
	}

	switch status {
	case StatusCancelled:
		reason = strings.TrimSpace(reason)
		if reason == "" {
			reason = ReasonAdministrative
		}
		reservation, _, err := s.CancelWithReason(ctx, id, reason)
		return reservation, err
	case StatusConfirmed:
	default:
		return Reservation{}, invalid("status", "status must be %q or %q", StatusConfirmed, StatusCancelled)
	}

	var row dbgen.Reservation
	var courtName string
	var changed bool
	err := s.db.RunInTx(ctx, func(txdb *appdb.DB) error {
		current, err := loadReservation(ctx, txdb.Queries, id)
		if err != nil {
			return err
		}
		court, err := loadCourt(ctx, txdb.Queries, current.CourtID)
		if err != nil {
			return err
		}
		courtName = court.Name
		if Status(current.Status) == StatusConfirmed {
			row = current
			return nil
		}

		rng, err := slots.NewRange(current.StartTime, current.EndTime)
		if err != nil {
			return fmt.Errorf("reservation %d has invalid range: %w", current.ID, err)
		}
		day, err := s.parseDay(current.Date)
		if err != nil {
			return err
		}
		// Staff may revive a past booking, but not onto a closed court.
		if err := s.checkCourtOpen(court, day, rng); err != nil {
			return err
		}
		if err := checkCollisions(ctx, txdb.Queries, current.CourtID, current.Date, rng, current.ID); err != nil {
			return err
		}

		row, err = txdb.Queries.UpdateReservationStatus(ctx, dbgen.UpdateReservationStatusParams{
			ID:     current.ID,
			Status: string(StatusConfirmed),
		})
		if err != nil {
			return fmt.Errorf("confirm reservation: %w", err)
		}
		changed = true
		return nil
	})
	if err != nil {
		return Reservation{}, translateStorageError(err)
	}

	reservation := fromRow(row)
	if changed {
		Deliver(ctx, s.notifier, newEvent(EventConfirmed, reservation, courtName, "", s.now()))
	}
	return reservation, nil
}

// Delete removes a reservation permanently. Administrators only; no event is emitted.
func (s *Service) Delete(ctx context.Context, actor *authz.AuthUser, id int64) error {
	if err := authz.RequireAdmin(actor); err != nil {
		return err
	}
	affected, err := s.db.Queries.DeleteReservation(ctx, id)
	if err != nil {
		return fmt.Errorf("delete reservation: %w", err)
	}
	if affected == 0 {
		return notFound("reservation", id)
	}
	log.Ctx(ctx).Info().Int64("reservation_id", id).Msg("Reservation deleted")
	return nil
}

// checkBookable enforces the server-side rules for a new or moved range:
// active court, inside operating hours, not in the past, clear of maintenance
// and of other confirmed reservations.
func (s *Service) checkBookable(ctx context.Context, q *dbgen.Queries, court dbgen.Court, day time.Time, rng slots.Range, excludeID int64) error {
	if err := s.checkCourtOpen(court, day, rng); err != nil {
		return err
	}
	if rng.Start <= slots.PastCutoff(day, s.localNow()) {
		return invalid("startTime", "cannot book a time slot in the past")
	}

	return checkCollisions(ctx, q, court.ID, day.Format(slots.DateLayout), rng, excludeID)
}

// checkCourtOpen requires an active court and a range inside that day's operating hours.
func (s *Service) checkCourtOpen(court dbgen.Court, day time.Time, rng slots.Range) error {
	if !court.IsActive {
		return invalid("courtId", "court %q is not available for booking", court.Name)
	}
	window, err := availability.OperatingWindow(s.facility.OperatingHours, day)
	if err != nil {
		return err
	}
	if !rng.Within(window) {
		return invalid("startTime", "reservations must fall within operating hours %s", window)
	}
	return nil
}

func checkCollisions(ctx context.Context, q *dbgen.Queries, courtID int64, date string, rng slots.Range, excludeID int64) error {
	underMaintenance, err := availability.HasMaintenanceOverlap(ctx, q, courtID, date, rng)
	if err != nil {
		return err
	}
	if underMaintenance {
		return errCourtMaintenance
	}

	booked, err := availability.HasConflict(ctx, q, courtID, date, rng, excludeID)
	if err != nil {
		return err
	}
	if booked {
		return errCourtBooked
	}
	return nil
}

func (s *Service) parseDay(raw string) (time.Time, error) {
	if strings.TrimSpace(raw) == "" {
		return time.Time{}, invalid("date", "date is required")
	}
	day, err := slots.ParseDate(raw, s.facility.Location())
	if err != nil {
		return time.Time{}, invalid("date", "%s", err.Error())
	}
	return day, nil
}

// resolveRange accepts either a slot selection or an explicit start/end pair.
func resolveRange(selected []string, start, end string) (slots.Range, error) {
	hasTimes := strings.TrimSpace(start) != "" || strings.TrimSpace(end) != ""
	if len(selected) > 0 {
		if hasTimes {
			return slots.Range{}, invalid("slots", "provide either slots or startTime/endTime, not both")
		}
		return slots.ValidateSelection(selected)
	}
	if strings.TrimSpace(start) == "" {
		return slots.Range{}, invalid("startTime", "startTime is required")
	}
	if strings.TrimSpace(end) == "" {
		return slots.Range{}, invalid("endTime", "endTime is required")
	}

	rng, err := slots.NewRange(start, end)
	if err != nil {
		return slots.Range{}, invalid("startTime", "%s", err.Error())
	}
	if err := slots.ValidateDuration(rng); err != nil {
		return slots.Range{}, err
	}
	return rng, nil
}

// mergeRange overlays the requested times on the current ones.
func mergeRange(current dbgen.Reservation, req UpdateRequest) (slots.Range, error) {
	if len(req.Slots) > 0 {
		return resolveRange(req.Slots, derefString(req.StartTime), derefString(req.EndTime))
	}
	start := current.StartTime
	if req.StartTime != nil {
		start = *req.StartTime
	}
	end := current.EndTime
	if req.EndTime != nil {
		end = *req.EndTime
	}
	return resolveRange(nil, start, end)
}

func loadReservation(ctx context.Context, q *dbgen.Queries, id int64) (dbgen.Reservation, error) {
	row, err := q.GetReservation(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return dbgen.Reservation{}, notFound("reservation", id)
		}
		return dbgen.Reservation{}, fmt.Errorf("load reservation: %w", err)
	}
	return row, nil
}

func loadCourt(ctx context.Context, q *dbgen.Queries, id int64) (dbgen.Court, error) {
	court, err := q.GetCourt(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return dbgen.Court{}, notFound("court", id)
		}
		return dbgen.Court{}, fmt.Errorf("load court: %w", err)
	}
	return court, nil
}

// translateStorageError maps a trigger-level overlap rejection to ErrConflict.
func translateStorageError(err error) error {
	if appdb.IsOverlapViolation(err) {
		return errCourtBooked
	}
	return err
}

func toNullString(value *string) sql.NullString {
	if value == nil {
		return sql.NullString{}
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: trimmed, Valid: true}
}

func derefString(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
