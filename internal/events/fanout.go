package events

import (
	"context"
	"errors"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/codr1/CourtReserve/internal/booking"
)

// Fanout delivers each event to every notifier concurrently. Nil entries are skipped.
type Fanout []booking.Notifier

func (f Fanout) Notify(ctx context.Context, event booking.Event) error {
	var (
		g    errgroup.Group
		mu   sync.Mutex
		errs []error
	)
	for _, n := range f {
		if n == nil {
			continue
		}
		g.Go(func() error {
			if err := n.Notify(ctx, event); err != nil {
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()
	return errors.Join(errs...)
}
