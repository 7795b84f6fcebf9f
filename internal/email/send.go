package email

import (
	"context"
	"strings"

	"github.com/rs/zerolog"
)

// SendAsync delivers message in the background. The send keeps running after
// ctx is cancelled and is bounded by sendTimeout instead.
func SendAsync(ctx context.Context, client EmailSender, recipient string, message Message, logger *zerolog.Logger) {
	if client == nil {
		return
	}
	recipient = strings.TrimSpace(recipient)
	if recipient == "" || message.Subject == "" || message.Body == "" {
		return
	}

	go func() {
		sendCtx, cancel := newEmailContext(ctx, sendTimeout)
		defer cancel()
		if err := client.Send(sendCtx, recipient, message.Subject, message.Body); err != nil {
			if logger != nil {
				logger.Error().Err(err).Str("recipient", recipient).Str("subject", message.Subject).Msg("Failed to send email")
			}
			return
		}
		if logger != nil {
			logger.Debug().Str("recipient", recipient).Str("subject", message.Subject).Msg("Email sent")
		}
	}()
}
