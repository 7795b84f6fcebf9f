// internal/api/reservations/handlers.go
package reservations

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/codr1/CourtReserve/internal/api/apiutil"
	"github.com/codr1/CourtReserve/internal/api/authz"
	"github.com/codr1/CourtReserve/internal/booking"
)

var (
	service     *booking.Service
	serviceOnce sync.Once
)

// InitHandlers must be called during server startup before handling requests.
func InitHandlers(s *booking.Service) {
	if s == nil {
		return
	}
	serviceOnce.Do(func() {
		service = s
	})
}

type reservationResponse struct {
	ID         int64          `json:"id"`
	UserID     int64          `json:"userId"`
	CourtID    int64          `json:"courtId"`
	Date       string         `json:"date"`
	StartTime  string         `json:"startTime"`
	EndTime    string         `json:"endTime"`
	TotalPrice apiutil.Cents  `json:"totalPrice"`
	Status     booking.Status `json:"status"`
	Notes      string         `json:"notes,omitempty"`
	CreatedAt  time.Time      `json:"createdAt"`
	UpdatedAt  time.Time      `json:"updatedAt"`
}

func newReservationResponse(r booking.Reservation) reservationResponse {
	return reservationResponse{
		ID:         r.ID,
		UserID:     r.UserID,
		CourtID:    r.CourtID,
		Date:       r.Date,
		StartTime:  r.StartTime,
		EndTime:    r.EndTime,
		TotalPrice: apiutil.Cents(r.TotalPriceCents),
		Status:     r.Status,
		Notes:      r.Notes,
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}
}

type adminReservationResponse struct {
	reservationResponse
	UserName  string `json:"userName"`
	UserEmail string `json:"userEmail"`
	CourtName string `json:"courtName"`
}

type publicReservationResponse struct {
	ID        int64  `json:"id"`
	CourtID   int64  `json:"courtId"`
	CourtName string `json:"courtName"`
	Date      string `json:"date"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
}

type createReservationRequest struct {
	UserID    int64    `json:"userId"`
	CourtID   int64    `json:"courtId"`
	Date      string   `json:"date"`
	StartTime string   `json:"startTime"`
	EndTime   string   `json:"endTime"`
	Slots     []string `json:"slots"`
	Notes     *string  `json:"notes"`
}

func (req createReservationRequest) toBooking() booking.CreateRequest {
	return booking.CreateRequest{
		UserID:    req.UserID,
		CourtID:   req.CourtID,
		Date:      req.Date,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Slots:     req.Slots,
		Notes:     req.Notes,
	}
}

type updateReservationRequest struct {
	CourtID   *int64   `json:"courtId"`
	Date      *string  `json:"date"`
	StartTime *string  `json:"startTime"`
	EndTime   *string  `json:"endTime"`
	Slots     []string `json:"slots"`
	Notes     *string  `json:"notes"`
}

type statusRequest struct {
	Status booking.Status `json:"status"`
	Reason string         `json:"reason"`
}

// GET /api/v1/reservations/public?date=&courtId=
func HandlePublicList(w http.ResponseWriter, r *http.Request) {
	svc := loadService(w, r)
	if svc == nil {
		return
	}
	courtID, err := apiutil.OptionalQueryID(r, "courtId")
	if err != nil {
		apiutil.WriteServiceError(w, r, err)
		return
	}

	rows, err := svc.ListPublic(r.Context(), r.URL.Query().Get("date"), courtID)
	if err != nil {
		apiutil.WriteServiceError(w, r, err)
		return
	}
	resp := make([]publicReservationResponse, 0, len(rows))
	for _, row := range rows {
		resp = append(resp, publicReservationResponse(row))
	}
	_ = apiutil.WriteJSON(w, http.StatusOK, resp)
}

// GET /api/v1/reservations
func HandleListMine(w http.ResponseWriter, r *http.Request) {
	svc := loadService(w, r)
	if svc == nil {
		return
	}
	rows, err := svc.ListForUser(r.Context(), authz.UserFromContext(r.Context()))
	if err != nil {
		apiutil.WriteServiceError(w, r, err)
		return
	}
	resp := make([]reservationResponse, 0, len(rows))
	for _, row := range rows {
		resp = append(resp, newReservationResponse(row))
	}
	_ = apiutil.WriteJSON(w, http.StatusOK, resp)
}

// POST /api/v1/reservations
// The booking is always made for the caller; userId is ignored.
func HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req createReservationRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		apiutil.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	req.UserID = 0
	create(w, r, req)
}

// POST /api/v1/admin/reservations
func HandleAdminCreate(w http.ResponseWriter, r *http.Request) {
	var req createReservationRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		apiutil.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := authz.RequireAdmin(authz.UserFromContext(r.Context())); err != nil {
		apiutil.WriteServiceError(w, r, err)
		return
	}
	if req.UserID <= 0 {
		apiutil.WriteServiceError(w, r, apiutil.FieldError{Field: "userId", Reason: "is required"})
		return
	}
	create(w, r, req)
}

func create(w http.ResponseWriter, r *http.Request, req createReservationRequest) {
	svc := loadService(w, r)
	if svc == nil {
		return
	}
	reservation, err := svc.Create(r.Context(), authz.UserFromContext(r.Context()), req.toBooking())
	if err != nil {
		apiutil.WriteServiceError(w, r, err)
		return
	}
	_ = apiutil.WriteJSON(w, http.StatusCreated, newReservationResponse(reservation))
}

// GET /api/v1/reservations/{id}
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
	reservation, err := svc.Get(r.Context(), authz.UserFromContext(r.Context()), id)
	if err != nil {
		apiutil.WriteServiceError(w, r, err)
		return
	}
	_ = apiutil.WriteJSON(w, http.StatusOK, newReservationResponse(reservation))
}

// PUT /api/v1/reservations/{id} and PUT /api/v1/admin/reservations/{id}
// Ownership is enforced by the service; administrators pass it for any reservation.
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
	var req updateReservationRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		apiutil.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	reservation, err := svc.Update(r.Context(), authz.UserFromContext(r.Context()), id, booking.UpdateRequest{
		CourtID:   req.CourtID,
		Date:      req.Date,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Slots:     req.Slots,
		Notes:     req.Notes,
	})
	if err != nil {
		apiutil.WriteServiceError(w, r, err)
		return
	}
	_ = apiutil.WriteJSON(w, http.StatusOK, newReservationResponse(reservation))
}

// DELETE /api/v1/reservations/{id}
// Cancels rather than deletes; repeating the call is harmless.
func HandleCancel(w http.ResponseWriter, r *http.Request) {
	svc := loadService(w, r)
	if svc == nil {
		return
	}
	id, err := apiutil.PathID(r, "id")
	if err != nil {
		apiutil.WriteServiceError(w, r, err)
		return
	}
	reservation, err := svc.Cancel(r.Context(), authz.UserFromContext(r.Context()), id, "")
	if err != nil {
		apiutil.WriteServiceError(w, r, err)
		return
	}
	_ = apiutil.WriteJSON(w, http.StatusOK, newReservationResponse(reservation))
}

// GET /api/v1/admin/reservations?date=&courtId=&status=
func HandleAdminList(w http.ResponseWriter, r *http.Request) {
	svc := loadService(w, r)
	if svc == nil {
		return
	}
	courtID, err := apiutil.OptionalQueryID(r, "courtId")
	if err != nil {
		apiutil.WriteServiceError(w, r, err)
		return
	}
	query := r.URL.Query()
	rows, err := svc.ListAdmin(r.Context(), authz.UserFromContext(r.Context()), booking.AdminFilter{
		Date:    strings.TrimSpace(query.Get("date")),
		CourtID: courtID,
		Status:  booking.Status(strings.TrimSpace(query.Get("status"))),
	})
	if err != nil {
		apiutil.WriteServiceError(w, r, err)
		return
	}
	resp := make([]adminReservationResponse, 0, len(rows))
	for _, row := range rows {
		resp = append(resp, adminReservationResponse{
			reservationResponse: newReservationResponse(row.Reservation),
			UserName:            row.UserName,
			UserEmail:           row.UserEmail,
			CourtName:           row.CourtName,
		})
	}
	_ = apiutil.WriteJSON(w, http.StatusOK, resp)
}

// PATCH /api/v1/admin/reservations/{id}/status
func HandleAdminSetStatus(w http.ResponseWriter, r *http.Request) {
	svc := loadService(w, r)
	if svc == nil {
		return
	}
	id, err := apiutil.PathID(r, "id")
	if err != nil {
		apiutil.WriteServiceError(w, r, err)
		return
	}
	var req statusRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		apiutil.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	reservation, err := svc.SetStatus(r.Context(), authz.UserFromContext(r.Context()), id, req.Status, req.Reason)
	if err != nil {
		apiutil.WriteServiceError(w, r, err)
		return
	}
	_ = apiutil.WriteJSON(w, http.StatusOK, newReservationResponse(reservation))
}

// DELETE /api/v1/admin/reservations/{id}
func HandleAdminDelete(w http.ResponseWriter, r *http.Request) {
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

func loadService(w http.ResponseWriter, r *http.Request) *booking.Service {
	if service == nil {
		log.Ctx(r.Context()).Error().Msg("Reservation service not initialized")
		apiutil.WriteError(w, http.StatusInternalServerError, "Internal Server Error")
	}
	return service
}
