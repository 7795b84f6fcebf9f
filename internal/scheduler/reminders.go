package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"github.com/codr1/CourtReserve/internal/db"
	dbgen "github.com/codr1/CourtReserve/internal/db/generated"
)

const (
	reminderLeadTime = 24 * time.Hour
	reminderJobName  = "reservation_reminders"
	purgeJobName     = "password_reset_token_purge"

	// Matches the concatenated date and start_time columns.
	reminderKeyLayout = "2006-01-02 15:04"
)

// ReminderSender delivers one reminder for an upcoming reservation.
type ReminderSender interface {
	SendReminder(ctx context.Context, row dbgen.ListReservationsStartingBetweenRow)
}

// RegisterReminderJobs schedules reminders for reservations starting a day
// ahead. Each run covers the facility-local window from now+24h up to the
// next scheduled run+24h, so consecutive runs tile without gaps.
func RegisterReminderJobs(database *db.DB, sender ReminderSender, loc *time.Location, cronExpr string) error {
	if database == nil {
		return fmt.Errorf("reminder jobs require database")
	}
	if loc == nil {
		loc = time.UTC
	}
	schedule, err := cron.ParseStandard(cronExpr)
	if err != nil {
		return fmt.Errorf("parse reminder schedule: %w", err)
	}

	_, err = AddJob(reminderJobName, cronExpr, func(ctx context.Context) error {
		if sender == nil {
			log.Ctx(ctx).Debug().Msg("Reminder job skipped: email not configured")
			return nil
		}

		now := time.Now().In(loc)
		sent, err := SendDueReminders(ctx, database.Queries, sender, now, schedule.Next(now))
		if err != nil {
			return err
		}
		if sent > 0 {
			log.Ctx(ctx).Info().Int("sent", sent).Msg("Reservation reminders queued")
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("add reservation reminder job: %w", err)
	}
	return nil
}

// SendDueReminders sends a reminder for every confirmed reservation whose
// start falls in [from+24h, until+24h). Times are compared as facility-local
// wall clock, so from and until must already be in the facility location.
func SendDueReminders(ctx context.Context, q *dbgen.Queries, sender ReminderSender, from, until time.Time) (int, error) {
	if !until.After(from) {
		return 0, nil
	}
	rows, err := q.ListReservationsStartingBetween(ctx, dbgen.ListReservationsStartingBetweenParams{
		WindowStart: from.Add(reminderLeadTime).Format(reminderKeyLayout),
		WindowEnd:   until.Add(reminderLeadTime).Format(reminderKeyLayout),
	})
	if err != nil {
		return 0, fmt.Errorf("list upcoming reservations: %w", err)
	}
	for _, row := range rows {
		sender.SendReminder(ctx, row)
	}
	return len(rows), nil
}

// RegisterTokenPurgeJob schedules removal of expired and used password reset tokens.
func RegisterTokenPurgeJob(database *db.DB, cronExpr string) error {
	if database == nil {
		return fmt.Errorf("token purge job requires database")
	}

	_, err := AddJob(purgeJobName, cronExpr, func(ctx context.Context) error {
		purged, err := PurgeExpiredTokens(ctx, database.Queries, time.Now())
		if err != nil {
			return err
		}
		if purged > 0 {
			log.Ctx(ctx).Info().Int64("purged", purged).Msg("Password reset tokens purged")
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("add token purge job: %w", err)
	}
	return nil
}

// PurgeExpiredTokens deletes reset tokens that expired before now or were already used.
func PurgeExpiredTokens(ctx context.Context, q *dbgen.Queries, now time.Time) (int64, error) {
	purged, err := q.DeleteExpiredPasswordResetTokens(ctx, now.UTC().Truncate(time.Second))
	if err != nil {
		return 0, fmt.Errorf("delete expired reset tokens: %w", err)
	}
	return purged, nil
}
