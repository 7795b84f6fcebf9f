// Package maintenance manages court blackout periods and cancels the
// confirmed reservations a new or widened period displaces.
package maintenance

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/codr1/CourtReserve/internal/api/authz"
	"github.com/codr1/CourtReserve/internal/booking"
	appdb "github.com/codr1/CourtReserve/internal/db"
	dbgen "github.com/codr1/CourtReserve/internal/db/generated"
	"github.com/codr1/CourtReserve/internal/slots"
)

type Type string

const (
	TypeMaintenance  Type = "maintenance"
	TypeWinterSeason Type = "winter_season"
)

// Reason is the cancellation reason sent to displaced players.
func (t Type) Reason() string {
	if t == TypeWinterSeason {
		return "winter season closure"
	}
	return "facility maintenance work"
}

func (t Type) valid() bool {
	return t == TypeMaintenance || t == TypeWinterSeason
}

// Period blocks a court for the same time of day on every date from
// StartDate through EndDate inclusive.
type Period struct {
	ID          int64
	CourtID     int64
	StartDate   string
	EndDate     string
	StartTime   string
	EndTime     string
	Type        Type
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func fromRow(row dbgen.MaintenancePeriod) Period {
	return Period{
		ID:          row.ID,
		CourtID:     row.CourtID,
		StartDate:   row.StartDate,
		EndDate:     row.EndDate,
		StartTime:   row.StartTime,
		EndTime:     row.EndTime,
		Type:        Type(row.Type),
		Description: row.Description.String,
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}
}

type CreateRequest struct {
	CourtID     int64
	StartDate   string
	EndDate     string
	StartTime   string
	EndTime     string
	Type        Type
	Description *string
}

// UpdateRequest holds the fields to change; nil fields keep their current value.
type UpdateRequest struct {
	CourtID     *int64
	StartDate   *string
	EndDate     *string
	StartTime   *string
	EndTime     *string
	Type        *Type
	Description *string
}

// Result pairs a saved period with the number of reservations it cancelled.
type Result struct {
	Period                Period
	CancelledReservations int
}

// Canceller cancels a single confirmed reservation and notifies its owner.
type Canceller interface {
	CancelWithReason(ctx context.Context, id int64, reason string) (booking.Reservation, bool, error)
}

type Service struct {
	db        *appdb.DB
	canceller Canceller
}

func NewService(database *appdb.DB, canceller Canceller) *Service {
	return &Service{db: database, canceller: canceller}
}

func (s *Service) List(ctx context.Context, actor *authz.AuthUser, courtID int64) ([]Period, error) {
	if err := authz.RequireAdmin(actor); err != nil {
		return nil, err
	}
	var filter sql.NullInt64
	if courtID > 0 {
		filter = sql.NullInt64{Int64: courtID, Valid: true}
	}
	rows, err := s.db.Queries.ListMaintenancePeriods(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list maintenance periods: %w", err)
	}
	out := make([]Period, 0, len(rows))
	for _, row := range rows {
		out = append(out, fromRow(row))
	}
	return out, nil
}

func (s *Service) Get(ctx context.Context, actor *authz.AuthUser, id int64) (Period, error) {
	if err := authz.RequireAdmin(actor); err != nil {
		return Period{}, err
	}
	row, err := loadPeriod(ctx, s.db.Queries, id)
	if err != nil {
		return Period{}, err
	}
	return fromRow(row), nil
}

// Create persists the period, then cancels every confirmed reservation it covers.
func (s *Service) Create(ctx context.Context, actor *authz.AuthUser, req CreateRequest) (Result, error) {
	if err := authz.RequireAdmin(actor); err != nil {
		return Result{}, err
	}
	params := dbgen.CreateMaintenancePeriodParams{
		CourtID:     req.CourtID,
		StartDate:   strings.TrimSpace(req.StartDate),
		EndDate:     strings.TrimSpace(req.EndDate),
		StartTime:   strings.TrimSpace(req.StartTime),
		EndTime:     strings.TrimSpace(req.EndTime),
		Type:        string(req.Type),
		Description: toNullString(req.Description),
	}
	if params.Type == "" {
		params.Type = string(TypeMaintenance)
	}
	if params.EndDate == "" {
		params.EndDate = params.StartDate
	}
	if err := validate(params.CourtID, params.StartDate, params.EndDate, params.StartTime, params.EndTime, Type(params.Type)); err != nil {
		return Result{}, err
	}

	var (
		period    Period
		displaced []int64
	)
	err := s.db.RunInTx(ctx, func(txdb *appdb.DB) error {
		if err := ensureCourt(ctx, txdb.Queries, params.CourtID); err != nil {
			return err
		}
		created, err := txdb.Queries.CreateMaintenancePeriod(ctx, params)
		if err != nil {
			return fmt.Errorf("create maintenance period: %w", err)
		}
		period = fromRow(created)
		displaced, err = displacedReservations(ctx, txdb.Queries, period)
		return err
	})
	if err != nil {
		return Result{}, err
	}

	log.Ctx(ctx).Info().
		Int64("maintenance_id", period.ID).
		Int64("court_id", period.CourtID).
		Str("type", string(period.Type)).
		Int("displaced", len(displaced)).
		Msg("Maintenance period created")

	count := s.cancelDisplaced(ctx, period, displaced)
	return Result{Period: period, CancelledReservations: count}, nil
}

// Update changes the period and cascades over the resulting window.
func (s *Service) Update(ctx context.Context, actor *authz.AuthUser, id int64, req UpdateRequest) (Result, error) {
	if err := authz.RequireAdmin(actor); err != nil {
		return Result{}, err
	}

	var (
		period    Period
		displaced []int64
	)
	err := s.db.RunInTx(ctx, func(txdb *appdb.DB) error {
		current, err := loadPeriod(ctx, txdb.Queries, id)
		if err != nil {
			return err
		}
		params := dbgen.UpdateMaintenancePeriodParams{
			ID:          current.ID,
			CourtID:     current.CourtID,
			StartDate:   current.StartDate,
			EndDate:     current.EndDate,
			StartTime:   current.StartTime,
			EndTime:     current.EndTime,
			Type:        current.Type,
			Description: current.Description,
		}
		if req.CourtID != nil {
			params.CourtID = *req.CourtID
		}
		if req.StartDate != nil {
			params.StartDate = strings.TrimSpace(*req.StartDate)
		}
		if req.EndDate != nil {
			params.EndDate = strings.TrimSpace(*req.EndDate)
		}
		if req.StartTime != nil {
			params.StartTime = strings.TrimSpace(*req.StartTime)
		}
		if req.EndTime != nil {
			params.EndTime = strings.TrimSpace(*req.EndTime)
		}
		if req.Type != nil {
			params.Type = string(*req.Type)
		}
		if req.Description != nil {
			params.Description = toNullString(req.Description)
		}

		if err := validate(params.CourtID, params.StartDate, params.EndDate, params.StartTime, params.EndTime, Type(params.Type)); err != nil {
			return err
		}
		if params.CourtID != current.CourtID {
			if err := ensureCourt(ctx, txdb.Queries, params.CourtID); err != nil {
				return err
			}
		}

		updated, err := txdb.Queries.UpdateMaintenancePeriod(ctx, params)
		if err != nil {
			return fmt.Errorf("update maintenance period: %w", err)
		}
		period = fromRow(updated)
		displaced, err = displacedReservations(ctx, txdb.Queries, period)
		return err
	})
	if err != nil {
		return Result{}, err
	}

	log.Ctx(ctx).Info().
		Int64("maintenance_id", period.ID).
		Int("displaced", len(displaced)).
		Msg("Maintenance period updated")

	count := s.cancelDisplaced(ctx, period, displaced)
	return Result{Period: period, CancelledReservations: count}, nil
}

// Delete removes the period. Reservations it cancelled stay cancelled.
func (s *Service) Delete(ctx context.Context, actor *authz.AuthUser, id int64) error {
	if err := authz.RequireAdmin(actor); err != nil {
		return err
	}
	affected, err := s.db.Queries.DeleteMaintenancePeriod(ctx, id)
	if err != nil {
		return fmt.Errorf("delete maintenance period: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("maintenance period %d %w", id, booking.ErrNotFound)
	}
	log.Ctx(ctx).Info().Int64("maintenance_id", id).Msg("Maintenance period deleted")
	return nil
}

// displacedReservations lists the confirmed reservations inside the period.
// It runs in the transaction that saves the period, so no booking can land
// in the window between the two.
func displacedReservations(ctx context.Context, q *dbgen.Queries, period Period) ([]int64, error) {
	rows, err := q.ListConfirmedReservationsInWindow(ctx, dbgen.ListConfirmedReservationsInWindowParams{
		CourtID:   period.CourtID,
		StartDate: period.StartDate,
		EndDate:   period.EndDate,
		StartTime: period.StartTime,
		EndTime:   period.EndTime,
	})
	if err != nil {
		return nil, fmt.Errorf("list reservations displaced by maintenance: %w", err)
	}
	ids := make([]int64, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ID)
	}
	return ids, nil
}

// cancelDisplaced cancels each reservation in its own transaction. A failed
// cancellation is logged and skipped so the rest still go through.
func (s *Service) cancelDisplaced(ctx context.Context, period Period, ids []int64) int {
	logger := log.Ctx(ctx)
	reason := period.Type.Reason()
	count := 0
	for _, id := range ids {
		_, cancelled, err := s.canceller.CancelWithReason(ctx, id, reason)
		if err != nil {
			logger.Error().
				Err(err).
				Int64("maintenance_id", period.ID).
				Int64("reservation_id", id).
				Msg("Failed to cancel reservation for maintenance")
			continue
		}
		if cancelled {
			count++
		}
	}

	if count > 0 {
		logger.Info().
			Int64("maintenance_id", period.ID).
			Int("cancelled", count).
			Msg("Cancelled reservations displaced by maintenance")
	}
	return count
}

func validate(courtID int64, startDate, endDate, startTime, endTime string, kind Type) error {
	if courtID <= 0 {
		return &booking.ValidationError{Field: "courtId", Message: "courtId is required"}
	}
	start, err := time.Parse(slots.DateLayout, startDate)
	if err != nil {
		return &booking.ValidationError{Field: "startDate", Message: "startDate must be YYYY-MM-DD"}
	}
	end, err := time.Parse(slots.DateLayout, endDate)
	if err != nil {
		return &booking.ValidationError{Field: "endDate", Message: "endDate must be YYYY-MM-DD"}
	}
	if end.Before(start) {
		return &booking.ValidationError{Field: "endDate", Message: "endDate cannot be before startDate"}
	}

	rng, err := slots.NewRange(startTime, endTime)
	if err != nil {
		return &booking.ValidationError{Field: "startTime", Message: err.Error()}
	}
	if rng.End <= rng.Start {
		return &booking.ValidationError{Field: "endTime", Message: "end time must be after start time"}
	}
	if !rng.Start.Aligned() || !rng.End.Aligned() {
		return &booking.ValidationError{Field: "startTime", Message: "times must fall on 30-minute boundaries"}
	}

	if !kind.valid() {
		return &booking.ValidationError{Field: "type", Message: fmt.Sprintf("type must be %q or %q", TypeMaintenance, TypeWinterSeason)}
	}
	return nil
}

func ensureCourt(ctx context.Context, q *dbgen.Queries, courtID int64) error {
	if _, err := q.GetCourt(ctx, courtID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("court %d %w", courtID, booking.ErrNotFound)
		}
		return fmt.Errorf("load court: %w", err)
	}
	return nil
}

func loadPeriod(ctx context.Context, q *dbgen.Queries, id int64) (dbgen.MaintenancePeriod, error) {
	row, err := q.GetMaintenancePeriod(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return dbgen.MaintenancePeriod{}, fmt.Errorf("maintenance period %d %w", id, booking.ErrNotFound)
		}
		return dbgen.MaintenancePeriod{}, fmt.Errorf("load maintenance period: %w", err)
	}
	return row, nil
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
