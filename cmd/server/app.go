// cmd/server/app.go
package main

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/codr1/CourtReserve/internal/api/auth"
	"github.com/codr1/CourtReserve/internal/api/courts"
	maintenanceapi "github.com/codr1/CourtReserve/internal/api/maintenance"
	"github.com/codr1/CourtReserve/internal/api/reservations"
	"github.com/codr1/CourtReserve/internal/availability"
	"github.com/codr1/CourtReserve/internal/booking"
	"github.com/codr1/CourtReserve/internal/config"
	"github.com/codr1/CourtReserve/internal/db"
	"github.com/codr1/CourtReserve/internal/email"
	"github.com/codr1/CourtReserve/internal/events"
	"github.com/codr1/CourtReserve/internal/maintenance"
	"github.com/codr1/CourtReserve/internal/ratelimit"
	"github.com/codr1/CourtReserve/internal/scheduler"
)

// publishTimeout bounds one broker publish made after a request has returned.
const publishTimeout = 5 * time.Second

// app holds the wired services shared by handlers and background jobs.
type app struct {
	cfg       *config.Config
	database  *db.DB
	mailer    *email.Notifier
	publisher *events.Publisher
	outbox    *events.Detached
	limiter   *ratelimit.Limiter
}

func newApp(cfg *config.Config, database *db.DB) (*app, error) {
	a := &app{cfg: cfg, database: database, limiter: ratelimit.New(nil)}

	var fanout events.Fanout
	if cfg.Email.Enabled() {
		client, err := email.NewSESClient(context.Background(), cfg.Email)
		if err != nil {
			return nil, fmt.Errorf("email client: %w", err)
		}
		a.mailer = email.NewNotifier(database.Queries, client, cfg.Facility.Name)
		fanout = append(fanout, a.mailer)
		log.Info().Str("region", cfg.Email.Region).Msg("Email notifications enabled")
	} else {
		log.Warn().Msg("Email not configured; notifications will only be published")
	}
	if cfg.Events.URL != "" {
		publisher, err := events.NewPublisher(cfg.Events.URL, cfg.Events.Exchange)
		if err != nil {
			return nil, fmt.Errorf("event publisher: %w", err)
		}
		a.publisher = publisher
		a.outbox = events.NewDetached(publisher, publishTimeout)
		fanout = append(fanout, a.outbox)
		log.Info().Str("exchange", cfg.Events.Exchange).Msg("Reservation events will be published")
	}

	bookings := booking.NewService(database, cfg.Facility, booking.WithNotifier(fanout))
	resolver := availability.NewResolver(database.Queries, cfg.Facility)

	var resetMailer auth.ResetMailer
	if a.mailer != nil {
		resetMailer = a.mailer
	}
	auth.InitHandlers(database, cfg, a.limiter, resetMailer)
	courts.InitHandlers(database.Queries, resolver)
	reservations.InitHandlers(bookings)
	maintenanceapi.InitHandlers(maintenance.NewService(database, bookings))
	return a, nil
}

func (a *app) startScheduler() error {
	if err := scheduler.Init(); err != nil {
		return err
	}
	var reminders scheduler.ReminderSender
	if a.mailer != nil {
		reminders = a.mailer
	}
	if err := scheduler.RegisterReminderJobs(a.database, reminders, a.cfg.Facility.Location(), a.cfg.Scheduler.RemindersCron); err != nil {
		return err
	}
	if err := scheduler.RegisterTokenPurgeJob(a.database, a.cfg.Scheduler.TokenPurgeCron); err != nil {
		return err
	}
	return scheduler.Start()
}

func (a *app) Close() {
	a.limiter.Close()
	if a.publisher != nil {
		a.outbox.Wait()
		if err := a.publisher.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to close event publisher")
		}
	}
}
