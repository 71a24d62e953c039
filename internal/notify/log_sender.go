package notify

import (
	"context"

	"github.com/anonto42/newsflash/backend/pkg/logger"
)

// LogSender only logs. It stands in for FCM when Firebase is not configured.
type LogSender struct{}

func (LogSender) Send(ctx context.Context, tokens []string, msg Message, _ Options) (SendReport, error) {
	logger.Ctx(ctx).Debug().
		Int("tokens", len(tokens)).
		Str("title", msg.Title).
		Str("body", msg.Body).
		Msg("push notification (log sender)")
	return SendReport{Sent: len(tokens)}, nil
}
