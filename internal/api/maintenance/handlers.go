// internal/api/maintenance/handlers.go
package maintenance

import (
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/codr1/CourtReserve/internal/api/apiutil"
	"github.com/codr1/CourtReserve/internal/api/authz"
	"github.com/codr1/CourtReserve/internal/maintenance"
)

var (
	service     *maintenance.Service
	serviceOnce sync.Once
)

// InitHandlers must be called during server startup before handling requests.
func InitHandlers(s *maintenance.Service) {
	if s == nil {
		return
	}
	serviceOnce.Do(func() {
		service = s
	})
}

type periodResponse struct {
	ID          int64            `json:"id"`
	CourtID     int64            `json:"courtId"`
	StartDate   string           `json:"startDate"`
	EndDate     string           `json:"endDate"`
	StartTime   string           `json:"startTime"`
	EndTime     string           `json:"endTime"`
	Type        maintenance.Type `json:"type"`
	Description string           `json:"description,omitempty"`
	CreatedAt   time.Time        `json:"createdAt"`
	UpdatedAt   time.Time        `json:"updatedAt"`
}

func newPeriodResponse(p maintenance.Period) periodResponse {
	return periodResponse{
		ID:          p.ID,
		CourtID:     p.CourtID,
		StartDate:   p.StartDate,
		EndDate:     p.EndDate,
		StartTime:   p.StartTime,
		EndTime:     p.EndTime,
		Type:        p.Type,
		Description: p.Description,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

type resultResponse struct {
	MaintenancePeriod     periodResponse `json:"maintenancePeriod"`
	CancelledReservations int            `json:"cancelledReservations"`
}

type createPeriodRequest struct {
	CourtID     int64            `json:"courtId"`
	StartDate   string           `json:"startDate"`
	EndDate     string           `json:"endDate"`
	StartTime   string           `json:"startTime"`
	EndTime     string           `json:"endTime"`
	Type        maintenance.Type `json:"type"`
	Description *string          `json:"description"`
}

type updatePeriodRequest struct {
	CourtID     *int64            `json:"courtId"`
	StartDate   *string           `json:"startDate"`
	EndDate     *string           `json:"endDate"`
	StartTime   *string           `json:"startTime"`
	EndTime     *string           `json:"endTime"`
	Type        *maintenance.Type `json:"type"`
	Description *string           `json:"description"`
}

// GET /api/v1/admin/maintenance?courtId=
func HandleList(w http.ResponseWriter, r *http.Request) {
	svc := loadService(w, r)
	if svc == nil {
		return
	}
	courtID, err := apiutil.OptionalQueryID(r, "courtId")
	if err != nil {
		apiutil.WriteServiceError(w, r, err)
		return
	}
	periods, err := svc.List(r.Context(), authz.UserFromContext(r.Context()), courtID)
	if err != nil {
		apiutil.WriteServiceError(w, r, err)
		return
	}
	resp := make([]periodResponse, 0, len(periods))
	for _, p := range periods {
		resp = append(resp, newPeriodResponse(p))
	}
	_ = apiutil.WriteJSON(w, http.StatusOK, resp)
}

// GET /api/v1/admin/maintenance/{id}
func HandleGet(w http.ResponseWriter, r *http.Request) {
	svc := loadService(w, r)
	if svc == nil {
		return
	}
	id, err := apiutil.PathID(r, "id")
	if err != nil {
		apiutil.WriteServiceError(w, r, err)
		return
	}
	period, err := svc.Get(r.Context(), authz.UserFromContext(r.Context()), id)
	if err != nil {
		apiutil.WriteServiceError(w, r, err)
		return
	}
	_ = apiutil.WriteJSON(w, http.StatusOK, newPeriodResponse(period))
}

// POST /api/v1/admin/maintenance
func HandleCreate(w http.ResponseWriter, r *http.Request) {
	svc := loadService(w, r)
	if svc == nil {
		return
	}
	var req createPeriodRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		apiutil.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := svc.Create(r.Context(), authz.UserFromContext(r.Context()), maintenance.CreateRequest(req))
	if err != nil {
		apiutil.WriteServiceError(w, r, err)
		return
	}
	_ = apiutil.WriteJSON(w, http.StatusCreated, resultResponse{
		MaintenancePeriod:     newPeriodResponse(result.Period),
		CancelledReservations: result.CancelledReservations,
	})
}

// PATCH /api/v1/admin/maintenance/{id}
func HandleUpdate(w http.ResponseWriter, r *http.Request) {
	svc := loadService(w, r)
	if svc == nil {
		return
	}
	id, err := apiutil.PathID(r, "id")
	if err != nil {
		apiutil.WriteServiceError(w, r, err)
		return
	}
	var req updatePeriodRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		apiutil.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := svc.Update(r.Context(), authz.UserFromContext(r.Context()), id, maintenance.UpdateRequest(req))
	if err != nil {
		apiutil.WriteServiceError(w, r, err)
		return
	}
	_ = apiutil.WriteJSON(w, http.StatusOK, resultResponse{
		MaintenancePeriod:     newPeriodResponse(result.Period),
		CancelledReservations: result.CancelledReservations,
	})
}

// DELETE /api/v1/admin/maintenance/{id}
// Reservations cancelled by the period stay cancelled.
func HandleDelete(w http.ResponseWriter, r *http.Request) {
	svc := loadService(w, r)
	if svc == nil {
		return
	}
	id, err := apiutil.PathID(r, "id")
	if err != nil {
		apiutil.WriteServiceError(w, r, err)
		return
	}
	if err := svc.Delete(r.Context(), authz.UserFromContext(r.Context()), id); err != nil {
		apiutil.WriteServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func loadService(w http.ResponseWriter, r *http.Request) *maintenance.Service {
	if service == nil {
		log.Ctx(r.Context()).Error().Msg("Maintenance service not initialized")
		apiutil.WriteError(w, http.StatusInternalServerError, "Internal Server Error")
	}
	return service
}
