package testutil

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/codr1/CourtReserve/internal/db"
	dbgen "github.com/codr1/CourtReserve/internal/db/generated"
)

// NewTestDB creates a temporary SQLite database with migrations applied.
func NewTestDB(t *testing.T) *db.DB {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	database, err := db.New(dbPath)
	if err != nil {
		t.Fatalf("create test db: %v", err)
	}
	t.Cleanup(func() {
		_ = database.Close()
	})

	return database
}

// CreateUser inserts a user with a placeholder password hash.
func CreateUser(t *testing.T, database *db.DB, name, email string, isAdmin bool) dbgen.User {
	t.Helper()

	user, err := database.Queries.CreateUser(context.Background(), dbgen.CreateUserParams{
		Name:         name,
		Email:        email,
		PasswordHash: "not-a-real-hash",
		IsAdmin:      isAdmin,
	})
	if err != nil {
		t.Fatalf("create user %s: %v", email, err)
	}
	return user
}

// CreateCourt inserts an active court with the given hourly rate in cents.
func CreateCourt(t *testing.T, database *db.DB, name string, hourlyRateCents int64) dbgen.Court {
	t.Helper()

	court, err := database.Queries.CreateCourt(context.Background(), dbgen.CreateCourtParams{
		Name:            name,
		HourlyRateCents: hourlyRateCents,
		IsActive:        true,
	})
	if err != nil {
		t.Fatalf("create court %s: %v", name, err)
	}
	return court
}

// CreateReservation inserts a confirmed reservation directly, bypassing validation.
func CreateReservation(t *testing.T, database *db.DB, userID, courtID int64, date, start, end string) dbgen.Reservation {
	t.Helper()

	reservation, err := database.Queries.CreateReservation(context.Background(), dbgen.CreateReservationParams{
		UserID:    userID,
		CourtID:   courtID,
		Date:      date,
		StartTime: start,
		EndTime:   end,
		Status:    "confirmed",
	})
	if err != nil {
		t.Fatalf("create reservation %s %s-%s: %v", date, start, end, err)
	}
	return reservation
}
