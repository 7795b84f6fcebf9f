package maintenance

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/codr1/CourtReserve/internal/api/authz"
	"github.com/codr1/CourtReserve/internal/booking"
	"github.com/codr1/CourtReserve/internal/config"
	appdb "github.com/codr1/CourtReserve/internal/db"
	dbgen "github.com/codr1/CourtReserve/internal/db/generated"
	"github.com/codr1/CourtReserve/internal/maintenance"
	"github.com/codr1/CourtReserve/internal/testutil"
)

// Tests cannot use t.Parallel() due to shared package state.

var adminUser = &authz.AuthUser{ID: 1, Name: "Alex Admin", IsAdmin: true}

func setupMaintenance(t *testing.T) (*http.ServeMux, *appdb.DB, dbgen.Court) {
	t.Helper()

	service = nil
	serviceOnce = sync.Once{}
	t.Cleanup(func() {
		service = nil
		serviceOnce = sync.Once{}
	})

	database := testutil.NewTestDB(t)
	court := testutil.CreateCourt(t, database, "Court 1", 2000)
	now := time.Date(2025, 6, 9, 12, 0, 0, 0, time.UTC)
	bookings := booking.NewService(database, config.FacilityConfig{Timezone: "UTC"}, booking.WithClock(func() time.Time { return now }))
	InitHandlers(maintenance.NewService(database, bookings))

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/admin/maintenance", HandleList)
	mux.HandleFunc("POST /api/v1/admin/maintenance", HandleCreate)
	mux.HandleFunc("GET /api/v1/admin/maintenance/{id}", HandleGet)
	mux.HandleFunc("PATCH /api/v1/admin/maintenance/{id}", HandleUpdate)
	mux.HandleFunc("DELETE /api/v1/admin/maintenance/{id}", HandleDelete)
	return mux, database, court
}

func serve(mux *http.ServeMux, user *authz.AuthUser, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if user != nil {
		req = req.WithContext(authz.ContextWithUser(req.Context(), user))
	}
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func decodeResult(t *testing.T, rec *httptest.ResponseRecorder) resultResponse {
	t.Helper()
	var out resultResponse
	if err := json.NewDecoder(rec.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v (%s)", err, rec.Body.String())
	}
	return out
}

func TestCreateMaintenanceCancelsOverlaps(t *testing.T) {
	mux, database, court := setupMaintenance(t)
	user := testutil.CreateUser(t, database, "Pat Member", "pat@example.com", false)
	testutil.CreateReservation(t, database, user.ID, court.ID, "2025-06-10", "09:00", "10:00")
	testutil.CreateReservation(t, database, user.ID, court.ID, "2025-06-10", "14:00", "15:00")

	courtID := strconv.FormatInt(court.ID, 10)
	body := `{"courtId":` + courtID + `,"startDate":"2025-06-10","startTime":"08:00","endTime":"12:00","description":"net replacement"}`
	rec := serve(mux, adminUser, http.MethodPost, "/api/v1/admin/maintenance", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	result := decodeResult(t, rec)
	if result.CancelledReservations != 1 {
		t.Fatalf("expected one cancellation, got %d", result.CancelledReservations)
	}
	period := result.MaintenancePeriod
	if period.EndDate != "2025-06-10" || period.Type != maintenance.TypeMaintenance || period.Description != "net replacement" {
		t.Fatalf("unexpected period %+v", period)
	}

	path := "/api/v1/admin/maintenance/" + strconv.FormatInt(period.ID, 10)
	if rec := serve(mux, adminUser, http.MethodGet, path, ""); rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	rec = serve(mux, adminUser, http.MethodPatch, path, `{"endTime":"16:00"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if updated := decodeResult(t, rec); updated.CancelledReservations != 1 || updated.MaintenancePeriod.EndTime != "16:00" {
		t.Fatalf("expected widened window to cancel the afternoon booking, got %+v", updated)
	}

	list := serve(mux, adminUser, http.MethodGet, "/api/v1/admin/maintenance?courtId="+courtID, "")
	var periods []periodResponse
	if err := json.NewDecoder(list.Body).Decode(&periods); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(periods) != 1 {
		t.Fatalf("expected one period, got %d", len(periods))
	}

	if rec := serve(mux, adminUser, http.MethodDelete, path, ""); rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if rec := serve(mux, adminUser, http.MethodGet, path, ""); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", rec.Code)
	}
}

func TestMaintenanceRejectsInvalidInput(t *testing.T) {
	mux, _, court := setupMaintenance(t)
	courtID := strconv.FormatInt(court.ID, 10)

	tests := []struct {
		name   string
		user   *authz.AuthUser
		body   string
		status int
	}{
		{"anonymous", nil, `{"courtId":` + courtID + `,"startDate":"2025-06-10","startTime":"08:00","endTime":"09:00"}`, http.StatusUnauthorized},
		{"member", &authz.AuthUser{ID: 2}, `{"courtId":` + courtID + `,"startDate":"2025-06-10","startTime":"08:00","endTime":"09:00"}`, http.StatusForbidden},
		{"end before start", adminUser, `{"courtId":` + courtID + `,"startDate":"2025-06-10","startTime":"10:00","endTime":"09:00"}`, http.StatusBadRequest},
		{"end date before start date", adminUser, `{"courtId":` + courtID + `,"startDate":"2025-06-10","endDate":"2025-06-09","startTime":"08:00","endTime":"09:00"}`, http.StatusBadRequest},
		{"unknown type", adminUser, `{"courtId":` + courtID + `,"startDate":"2025-06-10","startTime":"08:00","endTime":"09:00","type":"party"}`, http.StatusBadRequest},
		{"unknown field", adminUser, `{"court":1}`, http.StatusBadRequest},
		{"unknown court", adminUser, `{"courtId":999,"startDate":"2025-06-10","startTime":"08:00","endTime":"09:00"}`, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(mux, tt.user, http.MethodPost, "/api/v1/admin/maintenance", tt.body)
			if rec.Code != tt.status {
				t.Fatalf("expected %d, got %d: %s", tt.status, rec.Code, rec.Body.String())
			}
		})
	}
}
