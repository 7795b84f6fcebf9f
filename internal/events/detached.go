package events

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/codr1/CourtReserve/internal/booking"
)

// Detached hands each event to its notifier on a background goroutine and
// returns at once. The delivery outlives the caller's context and is bounded
// by the timeout instead.
type Detached struct {
	notifier booking.Notifier
	timeout  time.Duration
	wg       sync.WaitGroup
}

func NewDetached(n booking.Notifier, timeout time.Duration) *Detached {
	return &Detached{notifier: n, timeout: timeout}
}

func (d *Detached) Notify(ctx context.Context, event booking.Event) error {
	if d == nil || d.notifier == nil {
		return nil
	}
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		deliverCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), d.timeout)
		defer cancel()
		if err := d.notifier.Notify(deliverCtx, event); err != nil {
			log.Ctx(ctx).Warn().
				Err(err).
				Str("event_id", event.ID).
				Str("event_type", string(event.Type)).
				Msg("Background event delivery failed")
		}
	}()
	return nil
}

// Wait blocks until every delivery started so far has finished.
func (d *Detached) Wait() {
	if d != nil {
		d.wg.Wait()
	}
}
