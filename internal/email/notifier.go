package email

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/codr1/CourtReserve/internal/booking"
	dbgen "github.com/codr1/CourtReserve/internal/db/generated"
)

// Notifier turns reservation events into emails to the reservation owner.
type Notifier struct {
	queries      *dbgen.Queries
	client       EmailSender
	facilityName string
}

func NewNotifier(q *dbgen.Queries, client EmailSender, facilityName string) *Notifier {
	return &Notifier{queries: q, client: client, facilityName: facilityName}
}

// Notify looks up the owner's address and queues the matching email.
// Only the lookup can fail; delivery errors are logged by the sender goroutine.
func (n *Notifier) Notify(ctx context.Context, event booking.Event) error {
	if n == nil || n.client == nil {
		return nil
	}

	var build func(ReservationDetails) Message
	switch event.Type {
	case booking.EventConfirmed:
		build = BuildConfirmation
	case booking.EventUpdated:
		build = BuildUpdate
	case booking.EventCancelled:
		build = BuildCancellation
	default:
		return nil
	}

	user, err := n.queries.GetUserByID(ctx, event.Reservation.UserID)
	if err != nil {
		return fmt.Errorf("load user %d for %s email: %w", event.Reservation.UserID, event.Type, err)
	}

	res := event.Reservation
	date, timeRange := FormatDateTimeRange(res.Date, res.StartTime, res.EndTime)
	details := ReservationDetails{
		FacilityName: n.facilityName,
		CourtName:    event.CourtName,
		Date:         date,
		TimeRange:    timeRange,
		Reason:       event.Reason,
	}
	if event.Type != booking.EventCancelled {
		details.Total = FormatCents(res.TotalPriceCents)
	}

	SendAsync(ctx, n.client, user.Email, build(details), log.Ctx(ctx))
	return nil
}

// SendReminder queues a reminder for an upcoming reservation.
func (n *Notifier) SendReminder(ctx context.Context, row dbgen.ListReservationsStartingBetweenRow) {
	if n == nil || n.client == nil {
		return
	}
	date, timeRange := FormatDateTimeRange(row.Date, row.StartTime, row.EndTime)
	message := BuildReminder(ReservationDetails{
		FacilityName: n.facilityName,
		CourtName:    row.CourtName,
		Date:         date,
		TimeRange:    timeRange,
	})
	SendAsync(ctx, n.client, row.UserEmail, message, log.Ctx(ctx))
}

// SendPasswordReset queues a reset link for recipient.
func (n *Notifier) SendPasswordReset(ctx context.Context, recipient, link string, expiresIn time.Duration) {
	if n == nil || n.client == nil {
		return
	}
	message := BuildPasswordReset(PasswordResetDetails{
		FacilityName: n.facilityName,
		Link:         link,
		ExpiresIn:    expiresIn,
	})
	SendAsync(ctx, n.client, recipient, message, log.Ctx(ctx))
}
