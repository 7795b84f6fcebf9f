package courts

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/codr1/CourtReserve/internal/api/authz"
	"github.com/codr1/CourtReserve/internal/availability"
	"github.com/codr1/CourtReserve/internal/config"
	appdb "github.com/codr1/CourtReserve/internal/db"
	dbgen "github.com/codr1/CourtReserve/internal/db/generated"
	"github.com/codr1/CourtReserve/internal/slots"
	"github.com/codr1/CourtReserve/internal/testutil"
)

// Tests cannot use t.Parallel() due to shared package state.

var adminUser = &authz.AuthUser{ID: 1, Name: "Alex Admin", IsAdmin: true}

func setupCourts(t *testing.T) (*http.ServeMux, *appdb.DB, dbgen.Court) {
	t.Helper()

	queries = nil
	resolver = nil
	queriesOnce = sync.Once{}
	t.Cleanup(func() {
		queries = nil
		resolver = nil
		queriesOnce = sync.Once{}
	})

	database := testutil.NewTestDB(t)
	court := testutil.CreateCourt(t, database, "Court 1", 2000)

	facility := config.FacilityConfig{
		Name:     "Riverside Courts",
		Timezone: "UTC",
		OperatingHours: config.OperatingHours{
			Weekday: config.Hours{Open: "08:00", Close: "22:00"},
			Weekend: config.Hours{Open: "09:00", Close: "21:00"},
		},
	}
	now := time.Date(2025, 6, 9, 12, 0, 0, 0, time.UTC)
	InitHandlers(database.Queries, availability.NewResolver(database.Queries, facility).WithClock(func() time.Time { return now }))

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/courts", HandleListCourts)
	mux.HandleFunc("GET /api/v1/courts/{id}/availability", HandleAvailability)
	mux.HandleFunc("GET /api/v1/courts/{id}/slots", HandleSlots)
	mux.HandleFunc("POST /api/v1/admin/courts", HandleCreateCourt)
	mux.HandleFunc("PATCH /api/v1/admin/courts/{id}", HandleUpdateCourt)
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

func TestListCourtsShowsActiveOnly(t *testing.T) {
	mux, database, _ := setupCourts(t)
	inactive := testutil.CreateCourt(t, database, "Court 9", 1500)
	if _, err := database.Queries.UpdateCourt(t.Context(), dbgen.UpdateCourtParams{
		Name: inactive.Name, HourlyRateCents: inactive.HourlyRateCents, IsActive: false, ID: inactive.ID,
	}); err != nil {
		t.Fatalf("deactivate court: %v", err)
	}

	rec := serve(mux, nil, http.MethodGet, "/api/v1/courts", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"hourlyRate":20.00`) {
		t.Fatalf("expected decimal rate, got %s", rec.Body.String())
	}
	var courts []courtResponse
	if err := json.NewDecoder(rec.Body).Decode(&courts); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(courts) != 1 || courts[0].Name != "Court 1" {
		t.Fatalf("expected only the active court, got %+v", courts)
	}
}

func TestAvailability(t *testing.T) {
	mux, database, court := setupCourts(t)
	user := testutil.CreateUser(t, database, "Pat Member", "pat@example.com", false)
	testutil.CreateReservation(t, database, user.ID, court.ID, "2025-06-10", "10:00", "11:00")

	path := "/api/v1/courts/" + jsonInt(court.ID) + "/availability?date=2025-06-10"
	rec := serve(mux, nil, http.MethodGet, path, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var entries []availability.Entry
	if err := json.NewDecoder(rec.Body).Decode(&entries); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(entries) != 1 || entries[0].StartTime != "10:00" || entries[0].Type != availability.KindReservation {
		t.Fatalf("unexpected entries %+v", entries)
	}

	empty := serve(mux, nil, http.MethodGet, "/api/v1/courts/"+jsonInt(court.ID)+"/availability?date=2025-06-11", "")
	if strings.TrimSpace(empty.Body.String()) != "[]" {
		t.Fatalf("expected empty array, got %s", empty.Body.String())
	}

	tests := []struct {
		name   string
		path   string
		status int
	}{
		{"missing date", "/api/v1/courts/" + jsonInt(court.ID) + "/availability", http.StatusBadRequest},
		{"bad date", "/api/v1/courts/" + jsonInt(court.ID) + "/availability?date=06/10/2025", http.StatusBadRequest},
		{"bad id", "/api/v1/courts/abc/availability?date=2025-06-10", http.StatusBadRequest},
		{"unknown court", "/api/v1/courts/999/availability?date=2025-06-10", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if rec := serve(mux, nil, http.MethodGet, tt.path, ""); rec.Code != tt.status {
				t.Fatalf("expected %d, got %d", tt.status, rec.Code)
			}
		})
	}
}

func TestSlots(t *testing.T) {
	mux, database, court := setupCourts(t)
	user := testutil.CreateUser(t, database, "Pat Member", "pat@example.com", false)
	testutil.CreateReservation(t, database, user.ID, court.ID, "2025-06-10", "10:00", "11:00")

	rec := serve(mux, nil, http.MethodGet, "/api/v1/courts/"+jsonInt(court.ID)+"/slots?date=2025-06-10", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var grid []slots.TimeSlot
	if err := json.NewDecoder(rec.Body).Decode(&grid); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(grid) != 28 {
		t.Fatalf("expected 28 slots between 08:00 and 22:00, got %d", len(grid))
	}
	reserved := 0
	for _, slot := range grid {
		if slot.IsReserved {
			reserved++
		}
	}
	if reserved != 2 {
		t.Fatalf("expected two reserved slots, got %d", reserved)
	}
}

func TestAdminCourtManagement(t *testing.T) {
	mux, _, court := setupCourts(t)

	if rec := serve(mux, &authz.AuthUser{ID: 2}, http.MethodPost, "/api/v1/admin/courts", `{"name":"Court 2","hourlyRate":25}`); rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}

	rec := serve(mux, adminUser, http.MethodPost, "/api/v1/admin/courts", `{"name":" Court 2 ","hourlyRate":25.50}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var created courtResponse
	if err := json.NewDecoder(rec.Body).Decode(&created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if created.Name != "Court 2" || created.HourlyRate != 2550 || !created.IsActive {
		t.Fatalf("unexpected court %+v", created)
	}

	for _, body := range []string{`{"hourlyRate":10}`, `{"name":"X"}`, `{"name":"X","hourlyRate":-1}`, `{"name":"X","hourlyRate":1.234}`} {
		if rec := serve(mux, adminUser, http.MethodPost, "/api/v1/admin/courts", body); rec.Code != http.StatusBadRequest {
			t.Fatalf("body %s: expected 400, got %d", body, rec.Code)
		}
	}

	rec = serve(mux, adminUser, http.MethodPatch, "/api/v1/admin/courts/"+jsonInt(court.ID), `{"isActive":false}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var updated courtResponse
	if err := json.NewDecoder(rec.Body).Decode(&updated); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if updated.IsActive || updated.Name != "Court 1" || updated.HourlyRate != 2000 {
		t.Fatalf("expected only activity to change, got %+v", updated)
	}

	if rec := serve(mux, adminUser, http.MethodPatch, "/api/v1/admin/courts/999", `{"name":"Ghost"}`); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestAdminCourtDuplicateNameConflicts(t *testing.T) {
	mux, database, court := setupCourts(t)
	other := testutil.CreateCourt(t, database, "Court 2", 2000)

	rec := serve(mux, adminUser, http.MethodPost, "/api/v1/admin/courts", `{"name":"Court 1","hourlyRate":20.00}`)
	if rec.Code != http.StatusConflict {
		t.Fatalf("create: expected 409, got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "already exists") {
		t.Fatalf("expected duplicate name message, got %s", rec.Body.String())
	}

	rec = serve(mux, adminUser, http.MethodPatch, "/api/v1/admin/courts/"+jsonInt(other.ID), `{"name":"Court 1"}`)
	if rec.Code != http.StatusConflict {
		t.Fatalf("rename: expected 409, got %d: %s", rec.Code, rec.Body.String())
	}

	if rec := serve(mux, adminUser, http.MethodPatch, "/api/v1/admin/courts/"+jsonInt(court.ID), `{"name":"Court 1","hourlyRate":22}`); rec.Code != http.StatusOK {
		t.Fatalf("keeping its own name: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
}

func jsonInt(v int64) string {
	b, _ := json.Marshal(v)
	return string(b)
}
