package maintenance

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/codr1/CourtReserve/internal/api/authz"
	"github.com/codr1/CourtReserve/internal/booking"
	"github.com/codr1/CourtReserve/internal/config"
	appdb "github.com/codr1/CourtReserve/internal/db"
	dbgen "github.com/codr1/CourtReserve/internal/db/generated"
	"github.com/codr1/CourtReserve/internal/testutil"
)

type fixture struct {
	db      *appdb.DB
	service *Service
	events  []booking.Event
	admin   *authz.AuthUser
	member  dbgen.User
	court   dbgen.Court
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	database := testutil.NewTestDB(t)
	f := &fixture{db: database}
	adminUser := testutil.CreateUser(t, database, "Alex Admin", "alex@example.com", true)
	f.admin = &authz.AuthUser{ID: adminUser.ID, Email: adminUser.Email, IsAdmin: true}
	f.member = testutil.CreateUser(t, database, "Pat Member", "pat@example.com", false)
	f.court = testutil.CreateCourt(t, database, "Court 1", 2000)

	notifier := booking.NotifierFunc(func(_ context.Context, event booking.Event) error {
		f.events = append(f.events, event)
		return nil
	})
	f.service = NewService(database, newBookings(database, notifier))
	return f
}

var testFacility = config.FacilityConfig{
	Timezone: "UTC",
	OperatingHours: config.OperatingHours{
		Weekday: config.Hours{Open: "08:00", Close: "22:00"},
		Weekend: config.Hours{Open: "09:00", Close: "21:00"},
	},
}

func newBookings(database *appdb.DB, notifier booking.Notifier) *booking.Service {
	return booking.NewService(database, testFacility,
		booking.WithNotifier(notifier),
		booking.WithClock(func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) }),
	)
}

func (f *fixture) status(t *testing.T, id int64) string {
	t.Helper()
	row, err := f.db.Queries.GetReservation(context.Background(), id)
	if err != nil {
		t.Fatalf("get reservation %d: %v", id, err)
	}
	return row.Status
}

func TestCreateCancelsOverlappingReservations(t *testing.T) {
	f := newFixture(t)
	morning := testutil.CreateReservation(t, f.db, f.member.ID, f.court.ID, "2025-06-10", "09:00", "10:00")
	afternoon := testutil.CreateReservation(t, f.db, f.member.ID, f.court.ID, "2025-06-10", "14:00", "15:00")

	result, err := f.service.Create(context.Background(), f.admin, CreateRequest{
		CourtID:   f.court.ID,
		StartDate: "2025-06-10",
		EndDate:   "2025-06-10",
		StartTime: "08:00",
		EndTime:   "11:00",
		Type:      TypeMaintenance,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if result.CancelledReservations != 1 {
		t.Fatalf("expected 1 cancelled reservation, got %d", result.CancelledReservations)
	}
	if result.Period.ID == 0 || result.Period.Type != TypeMaintenance {
		t.Fatalf("unexpected period %+v", result.Period)
	}

	if got := f.status(t, morning.ID); got != "cancelled" {
		t.Fatalf("expected morning reservation cancelled, got %s", got)
	}
	if got := f.status(t, afternoon.ID); got != "confirmed" {
		t.Fatalf("expected afternoon reservation confirmed, got %s", got)
	}

	if len(f.events) != 1 {
		t.Fatalf("expected one cancellation event, got %d", len(f.events))
	}
	if f.events[0].Type != booking.EventCancelled || f.events[0].Reason != "facility maintenance work" {
		t.Fatalf("unexpected event %+v", f.events[0])
	}
}

func TestCreateKeepsCancellingWhenNotificationsFail(t *testing.T) {
	f := newFixture(t)
	other := testutil.CreateUser(t, f.db, "Sam Member", "sam@example.com", false)
	first := testutil.CreateReservation(t, f.db, f.member.ID, f.court.ID, "2025-06-10", "09:00", "10:00")
	second := testutil.CreateReservation(t, f.db, other.ID, f.court.ID, "2025-06-10", "10:00", "11:00")

	var notified []int64
	failing := booking.NotifierFunc(func(_ context.Context, event booking.Event) error {
		notified = append(notified, event.Reservation.ID)
		return errors.New("smtp down")
	})
	svc := NewService(f.db, newBookings(f.db, failing))

	result, err := svc.Create(context.Background(), f.admin, CreateRequest{
		CourtID:   f.court.ID,
		StartDate: "2025-06-10",
		EndDate:   "2025-06-10",
		StartTime: "08:00",
		EndTime:   "12:00",
		Type:      TypeWinterSeason,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if result.CancelledReservations != 2 {
		t.Fatalf("expected 2 cancelled reservations, got %d", result.CancelledReservations)
	}
	for _, id := range []int64{first.ID, second.ID} {
		if got := f.status(t, id); got != "cancelled" {
			t.Fatalf("expected reservation %d cancelled, got %s", id, got)
		}
	}
	if len(notified) != 2 || notified[0] != first.ID || notified[1] != second.ID {
		t.Fatalf("expected a notification attempt per reservation, got %v", notified)
	}
}

func TestCreateFailsWhenDisplacedLookupFails(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	if _, err := f.db.ExecContext(ctx, "DROP TABLE reservations"); err != nil {
		t.Fatalf("drop reservations: %v", err)
	}

	_, err := f.service.Create(ctx, f.admin, CreateRequest{
		CourtID:   f.court.ID,
		StartDate: "2025-06-10",
		StartTime: "08:00",
		EndTime:   "11:00",
	})
	if err == nil {
		t.Fatal("expected storage error when displaced reservations cannot be listed")
	}
	var verr *booking.ValidationError
	if errors.As(err, &verr) || errors.Is(err, booking.ErrNotFound) {
		t.Fatalf("expected an unclassified storage error, got %v", err)
	}

	periods, err := f.db.Queries.ListMaintenancePeriods(ctx, sql.NullInt64{})
	if err != nil {
		t.Fatalf("list periods: %v", err)
	}
	if len(periods) != 0 {
		t.Fatalf("expected period to roll back, got %d", len(periods))
	}
}

func TestCreateSpansDateRange(t *testing.T) {
	f := newFixture(t)
	testutil.CreateReservation(t, f.db, f.member.ID, f.court.ID, "2025-11-30", "10:00", "11:00")
	testutil.CreateReservation(t, f.db, f.member.ID, f.court.ID, "2025-12-15", "10:00", "11:00")
	outside := testutil.CreateReservation(t, f.db, f.member.ID, f.court.ID, "2026-03-01", "10:00", "11:00")

	result, err := f.service.Create(context.Background(), f.admin, CreateRequest{
		CourtID:   f.court.ID,
		StartDate: "2025-12-01",
		EndDate:   "2026-02-28",
		StartTime: "08:00",
		EndTime:   "22:00",
		Type:      TypeWinterSeason,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if result.CancelledReservations != 1 {
		t.Fatalf("expected 1 cancelled reservation, got %d", result.CancelledReservations)
	}
	if f.events[0].Reason != "winter season closure" {
		t.Fatalf("expected winter season reason, got %q", f.events[0].Reason)
	}
	if got := f.status(t, outside.ID); got != "confirmed" {
		t.Fatalf("expected reservation after the season to stay confirmed, got %s", got)
	}
}

func TestCreateSkipsAlreadyCancelled(t *testing.T) {
	f := newFixture(t)
	res := testutil.CreateReservation(t, f.db, f.member.ID, f.court.ID, "2025-06-10", "09:00", "10:00")
	if _, err := f.db.Queries.CancelReservationIfConfirmed(context.Background(), res.ID); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	result, err := f.service.Create(context.Background(), f.admin, CreateRequest{
		CourtID: f.court.ID, StartDate: "2025-06-10", StartTime: "08:00", EndTime: "11:00",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if result.CancelledReservations != 0 || len(f.events) != 0 {
		t.Fatalf("expected no cancellations, got %d and %d events", result.CancelledReservations, len(f.events))
	}
	if result.Period.EndDate != "2025-06-10" || result.Period.Type != TypeMaintenance {
		t.Fatalf("expected defaults for end date and type, got %+v", result.Period)
	}
}

func TestCreateValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cases := []struct {
		name string
		req  CreateRequest
	}{
		{"missing court", CreateRequest{StartDate: "2025-06-10", StartTime: "08:00", EndTime: "09:00"}},
		{"bad date", CreateRequest{CourtID: f.court.ID, StartDate: "06/10/2025", StartTime: "08:00", EndTime: "09:00"}},
		{"inverted dates", CreateRequest{CourtID: f.court.ID, StartDate: "2025-06-10", EndDate: "2025-06-09", StartTime: "08:00", EndTime: "09:00"}},
		{"inverted times", CreateRequest{CourtID: f.court.ID, StartDate: "2025-06-10", StartTime: "10:00", EndTime: "09:00"}},
		{"misaligned", CreateRequest{CourtID: f.court.ID, StartDate: "2025-06-10", StartTime: "08:15", EndTime: "09:00"}},
		{"unknown type", CreateRequest{CourtID: f.court.ID, StartDate: "2025-06-10", StartTime: "08:00", EndTime: "09:00", Type: "holiday"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.service.Create(ctx, f.admin, tc.req)
			var vErr *booking.ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}

	_, err := f.service.Create(ctx, f.admin, CreateRequest{CourtID: 404, StartDate: "2025-06-10", StartTime: "08:00", EndTime: "09:00"})
	if !errors.Is(err, booking.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown court, got %v", err)
	}
}

func TestRequiresAdmin(t *testing.T) {
	f := newFixture(t)
	member := &authz.AuthUser{ID: f.member.ID}

	_, err := f.service.Create(context.Background(), member, CreateRequest{
		CourtID: f.court.ID, StartDate: "2025-06-10", StartTime: "08:00", EndTime: "09:00",
	})
	if !errors.Is(err, authz.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if _, err := f.service.List(context.Background(), nil, 0); !errors.Is(err, authz.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestUpdateCascadesOverNewWindow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	late := testutil.CreateReservation(t, f.db, f.member.ID, f.court.ID, "2025-06-10", "12:00", "13:00")

	created, err := f.service.Create(ctx, f.admin, CreateRequest{
		CourtID: f.court.ID, StartDate: "2025-06-10", StartTime: "08:00", EndTime: "10:00",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.CancelledReservations != 0 {
		t.Fatalf("expected no cancellations, got %d", created.CancelledReservations)
	}

	endTime := "13:00"
	description := "resurfacing"
	updated, err := f.service.Update(ctx, f.admin, created.Period.ID, UpdateRequest{EndTime: &endTime, Description: &description})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.CancelledReservations != 1 {
		t.Fatalf("expected 1 cancellation after widening, got %d", updated.CancelledReservations)
	}
	if updated.Period.EndTime != "13:00" || updated.Period.Description != "resurfacing" {
		t.Fatalf("unexpected updated period %+v", updated.Period)
	}
	if got := f.status(t, late.ID); got != "cancelled" {
		t.Fatalf("expected reservation cancelled, got %s", got)
	}

	badType := Type("holiday")
	if _, err := f.service.Update(ctx, f.admin, created.Period.ID, UpdateRequest{Type: &badType}); err == nil {
		t.Fatal("expected validation error for unknown type")
	}
}

func TestDeleteKeepsCancellations(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	res := testutil.CreateReservation(t, f.db, f.member.ID, f.court.ID, "2025-06-10", "09:00", "10:00")

	created, err := f.service.Create(ctx, f.admin, CreateRequest{
		CourtID: f.court.ID, StartDate: "2025-06-10", StartTime: "08:00", EndTime: "11:00",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := f.service.Delete(ctx, f.admin, created.Period.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if got := f.status(t, res.ID); got != "cancelled" {
		t.Fatalf("expected reservation to stay cancelled, got %s", got)
	}
	if _, err := f.service.Get(ctx, f.admin, created.Period.ID); !errors.Is(err, booking.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := f.service.Delete(ctx, f.admin, created.Period.ID); !errors.Is(err, booking.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}

	periods, err := f.service.List(ctx, f.admin, f.court.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(periods) != 0 {
		t.Fatalf("expected no periods, got %d", len(periods))
	}
}
