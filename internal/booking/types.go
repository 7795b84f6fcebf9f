package booking

import (
	"time"

	dbgen "github.com/codr1/CourtReserve/internal/db/generated"
	"github.com/codr1/CourtReserve/internal/slots"
)

type Status string

const (
	// StatusPending is accepted by storage but never produced by the service.
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
)

// Reservation is a booking of one court for a contiguous range on one day.
type Reservation struct {
	ID              int64
	UserID          int64
	CourtID         int64
	Date            string
	StartTime       string
	EndTime         string
	TotalPriceCents int64
	Status          Status
	Notes           string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func fromRow(row dbgen.Reservation) Reservation {
	return Reservation{
		ID:              row.ID,
		UserID:          row.UserID,
		CourtID:         row.CourtID,
		Date:            row.Date,
		StartTime:       row.StartTime,
		EndTime:         row.EndTime,
		TotalPriceCents: row.TotalPriceCents,
		Status:          Status(row.Status),
		Notes:           row.Notes.String,
		CreatedAt:       row.CreatedAt,
		UpdatedAt:       row.UpdatedAt,
	}
}

// AdminReservation adds the owner and court details shown to administrators.
type AdminReservation struct {
	Reservation
	UserName  string
	UserEmail string
	CourtName string
}

// PublicReservation is the occupied-range view exposed without authentication.
type PublicReservation struct {
	ID        int64
	CourtID   int64
	CourtName string
	Date      string
	StartTime string
	EndTime   string
}

// CreateRequest describes a new booking. Either Slots or StartTime/EndTime is set.
// UserID of 0 books for the acting user.
type CreateRequest struct {
	UserID    int64
	CourtID   int64
	Date      string
	StartTime string
	EndTime   string
	Slots     []string
	Notes     *string
}

// UpdateRequest holds the fields to change; nil fields keep their current value.
type UpdateRequest struct {
	CourtID   *int64
	Date      *string
	StartTime *string
	EndTime   *string
	Slots     []string
	Notes     *string
}

func (r UpdateRequest) changesSchedule() bool {
	return r.CourtID != nil || r.Date != nil || r.StartTime != nil || r.EndTime != nil || len(r.Slots) > 0
}

// AdminFilter narrows the administrator listing. Zero values match everything.
type AdminFilter struct {
	Date    string
	CourtID int64
	Status  Status
}

// PriceCents charges hourlyRateCents pro rata for the range, rounding half up to the cent.
func PriceCents(hourlyRateCents int64, r slots.Range) int64 {
	minutes := int64(r.Minutes())
	return (hourlyRateCents*minutes + 30) / 60
}
