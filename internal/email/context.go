package email

import (
	"context"
	"time"
)

// sendTimeout bounds every asynchronous delivery.
const sendTimeout = 5 * time.Second

func newEmailContext(parent context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	// Request contexts end when the handler returns; the send must outlive it.
	parent = context.WithoutCancel(parent)
	return context.WithTimeout(parent, timeout)
}
