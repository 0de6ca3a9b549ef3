// Package notify delivers run outcome notifications. Delivery is
// fire-and-forget: failures are logged by the fan-out, never propagated into
// the booking loop.
package notify

import (
	"context"

	"github.com/rs/zerolog"
)

// Notifier delivers one outcome message.
type Notifier interface {
	Notify(ctx context.Context, subject, body string) error
}

// LogNotifier writes notifications to the log. Used when no delivery channel
// is configured and in tests.
type LogNotifier struct {
	Logger *zerolog.Logger
}

func (n LogNotifier) Notify(_ context.Context, subject, body string) error {
	n.Logger.Info().Str("subject", subject).Str("body", body).Msg("notification")
	return nil
}

// Multi fans a notification out to every channel. Channel failures are
// logged and swallowed; Notify always returns nil.
type Multi struct {
	channels []Notifier
	logger   *zerolog.Logger
}

func NewMulti(logger *zerolog.Logger, channels ...Notifier) *Multi {
	return &Multi{channels: channels, logger: logger}
}

func (m *Multi) Notify(ctx context.Context, subject, body string) error {
	for _, ch := range m.channels {
		if err := ch.Notify(ctx, subject, body); err != nil {
			m.logger.Error().Err(err).Str("subject", subject).Msg("notification delivery failed")
		}
	}
	return nil
}
