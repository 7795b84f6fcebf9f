// internal/api/courts/handlers.go
package courts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/codr1/CourtReserve/internal/api/apiutil"
	"github.com/codr1/CourtReserve/internal/api/authz"
	"github.com/codr1/CourtReserve/internal/availability"
	appdb "github.com/codr1/CourtReserve/internal/db"
	dbgen "github.com/codr1/CourtReserve/internal/db/generated"
)

var (
	queries     *dbgen.Queries
	resolver    *availability.Resolver
	queriesOnce sync.Once
)

const courtsQueryTimeout = 5 * time.Second

// InitHandlers must be called during server startup before handling requests.
func InitHandlers(q *dbgen.Queries, r *availability.Resolver) {
	if q == nil || r == nil {
		return
	}
	queriesOnce.Do(func() {
		queries = q
		resolver = r
	})
}

type courtResponse struct {
	ID         int64         `json:"id"`
	Name       string        `json:"name"`
	HourlyRate apiutil.Cents `json:"hourlyRate"`
	IsActive   bool          `json:"isActive"`
}

func newCourtResponse(c dbgen.Court) courtResponse {
	return courtResponse{
		ID:         c.ID,
		Name:       c.Name,
		HourlyRate: apiutil.Cents(c.HourlyRateCents),
		IsActive:   c.IsActive,
	}
}

// GET /api/v1/courts
func HandleListCourts(w http.ResponseWriter, r *http.Request) {
	q := loadQueries()
	if q == nil {
		log.Ctx(r.Context()).Error().Msg("Database queries not initialized")
		apiutil.WriteError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), courtsQueryTimeout)
	defer cancel()

	rows, err := q.ListActiveCourts(ctx)
	if err != nil {
		apiutil.WriteServiceError(w, r, err)
		return
	}
	resp := make([]courtResponse, 0, len(rows))
	for _, row := range rows {
		resp = append(resp, newCourtResponse(row))
	}
	_ = apiutil.WriteJSON(w, http.StatusOK, resp)
}

// GET /api/v1/courts/{id}/availability?date=YYYY-MM-DD
func HandleAvailability(w http.ResponseWriter, r *http.Request) {
	courtID, date, ok := parseCourtDay(w, r)
	if !ok {
		return
	}

	entries, err := resolver.GetAvailability(r.Context(), courtID, date)
	if err != nil {
		apiutil.WriteServiceError(w, r, err)
		return
	}
	if entries == nil {
		entries = []availability.Entry{}
	}
	_ = apiutil.WriteJSON(w, http.StatusOK, entries)
}

// GET /api/v1/courts/{id}/slots?date=YYYY-MM-DD
func HandleSlots(w http.ResponseWriter, r *http.Request) {
	courtID, date, ok := parseCourtDay(w, r)
	if !ok {
		return
	}

	grid, err := resolver.Slots(r.Context(), courtID, date)
	if err != nil {
		apiutil.WriteServiceError(w, r, err)
		return
	}
	_ = apiutil.WriteJSON(w, http.StatusOK, grid)
}

func parseCourtDay(w http.ResponseWriter, r *http.Request) (int64, string, bool) {
	if resolver == nil {
		log.Ctx(r.Context()).Error().Msg("Availability resolver not initialized")
		apiutil.WriteError(w, http.StatusInternalServerError, "Internal Server Error")
		return 0, "", false
	}
	courtID, err := apiutil.PathID(r, "id")
	if err != nil {
		apiutil.WriteServiceError(w, r, err)
		return 0, "", false
	}
	date := strings.TrimSpace(r.URL.Query().Get("date"))
	if date == "" {
		apiutil.WriteServiceError(w, r, apiutil.FieldError{Field: "date", Reason: "is required"})
		return 0, "", false
	}
	return courtID, date, true
}

type createCourtRequest struct {
	Name       string         `json:"name"`
	HourlyRate *apiutil.Cents `json:"hourlyRate"`
	IsActive   *bool          `json:"isActive"`
}

// POST /api/v1/admin/courts
func HandleCreateCourt(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())
	q := loadQueries()
	if q == nil {
		logger.Error().Msg("Database queries not initialized")
		apiutil.WriteError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	if err := authz.RequireAdmin(authz.UserFromContext(r.Context())); err != nil {
		apiutil.WriteServiceError(w, r, err)
		return
	}

	var req createCourtRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		apiutil.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		apiutil.WriteServiceError(w, r, apiutil.FieldError{Field: "name", Reason: "is required"})
		return
	}
	if req.HourlyRate == nil {
		apiutil.WriteServiceError(w, r, apiutil.FieldError{Field: "hourlyRate", Reason: "is required"})
		return
	}
	if *req.HourlyRate < 0 {
		apiutil.WriteServiceError(w, r, apiutil.FieldError{Field: "hourlyRate", Reason: "must not be negative"})
		return
	}
	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}

	ctx, cancel := context.WithTimeout(r.Context(), courtsQueryTimeout)
	defer cancel()

	court, err := q.CreateCourt(ctx, dbgen.CreateCourtParams{
		Name:            name,
		HourlyRateCents: int64(*req.HourlyRate),
		IsActive:        active,
	})
	if err != nil {
		apiutil.WriteServiceError(w, r, courtWriteError(name, err))
		return
	}

	logger.Info().Int64("court_id", court.ID).Str("name", court.Name).Msg("Court created")
	_ = apiutil.WriteJSON(w, http.StatusCreated, newCourtResponse(court))
}

type updateCourtRequest struct {
	Name       *string        `json:"name"`
	HourlyRate *apiutil.Cents `json:"hourlyRate"`
	IsActive   *bool          `json:"isActive"`
}

// PATCH /api/v1/admin/courts/{id}
// Deactivating a court hides it from booking; existing reservations are kept.
func HandleUpdateCourt(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())
	q := loadQueries()
	if q == nil {
		logger.Error().Msg("Database queries not initialized")
		apiutil.WriteError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	if err := authz.RequireAdmin(authz.UserFromContext(r.Context())); err != nil {
		apiutil.WriteServiceError(w, r, err)
		return
	}
	courtID, err := apiutil.PathID(r, "id")
	if err != nil {
		apiutil.WriteServiceError(w, r, err)
		return
	}

	var req updateCourtRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		apiutil.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), courtsQueryTimeout)
	defer cancel()

	current, err := q.GetCourt(ctx, courtID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			apiutil.WriteServiceError(w, r, availability.ErrCourtNotFound)
			return
		}
		apiutil.WriteServiceError(w, r, err)
		return
	}

	params := dbgen.UpdateCourtParams{
		Name:            current.Name,
		HourlyRateCents: current.HourlyRateCents,
		IsActive:        current.IsActive,
		ID:              current.ID,
	}
	if req.Name != nil {
		params.Name = strings.TrimSpace(*req.Name)
		if params.Name == "" {
			apiutil.WriteServiceError(w, r, apiutil.FieldError{Field: "name", Reason: "must not be empty"})
			return
		}
	}
	if req.HourlyRate != nil {
		if *req.HourlyRate < 0 {
			apiutil.WriteServiceError(w, r, apiutil.FieldError{Field: "hourlyRate", Reason: "must not be negative"})
			return
		}
		params.HourlyRateCents = int64(*req.HourlyRate)
	}
	if req.IsActive != nil {
		params.IsActive = *req.IsActive
	}

	court, err := q.UpdateCourt(ctx, params)
	if err != nil {
		apiutil.WriteServiceError(w, r, courtWriteError(params.Name, err))
		return
	}

	logger.Info().Int64("court_id", court.ID).Bool("is_active", court.IsActive).Msg("Court updated")
	_ = apiutil.WriteJSON(w, http.StatusOK, newCourtResponse(court))
}

// courtWriteError reports a taken court name as a conflict.
func courtWriteError(name string, err error) error {
	if appdb.IsUniqueViolation(err) {
		return apiutil.HandlerError{Status: http.StatusConflict, Message: fmt.Sprintf("A court named %q already exists", name), Err: err}
	}
	return err
}

func loadQueries() *dbgen.Queries {
	return queries
}
