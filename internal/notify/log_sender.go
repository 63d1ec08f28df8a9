package notify

import (
	"context"

	"go.uber.org/zap"
)

type logSender struct {
	log *zap.Logger
}

// NewLogSender writes confirmations to the application log. Used when no
// broker is configured.
func NewLogSender(log *zap.Logger) Sender {
	return &logSender{log: log.With(zap.String("notifier", "log"))}
}

func (s *logSender) BookingsConfirmed(ctx context.Context, event BookingConfirmedEvent) error {
	s.log.Info("Booking confirmed",
		zap.String("screening_id", event.ScreeningID),
		zap.String("holder", event.HolderID),
		zap.String("movie_title", event.MovieTitle),
		zap.Strings("seats", event.Seats),
		zap.Int64("total_amount", event.TotalAmount),
		zap.String("currency", event.Currency),
	)
	return nil
}
