package memory

import (
	"context"

	"github.com/northbeam/accounts-service/internal/application/auth"
	"github.com/northbeam/accounts-service/internal/logger"
)

// LogNotifier stands in for the mail broker in dev: it logs instead of
// delivering.
type LogNotifier struct{}

func NewLogNotifier() *LogNotifier { return &LogNotifier{} }

func (n *LogNotifier) Send(ctx context.Context, m auth.Mail) error {
	logger.Logger.Info().
		Str("kind", string(m.Kind)).
		Str("to", m.To).
		Str("code", m.Code).
		Str("link", m.Link).
		Msg("mail (not delivered, log notifier)")
	return nil
}
