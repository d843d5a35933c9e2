package notifications

import (
	"context"
	"log/slog"
)

// LogNotifier writes the notice to the log instead of a provider.
type LogNotifier struct {
	log *slog.Logger
}

func NewLogNotifier(log *slog.Logger) *LogNotifier {
	if log == nil {
		log = slog.Default()
	}
	return &LogNotifier{log: log}
}

func (n *LogNotifier) SendWelcome(ctx context.Context, in WelcomeInput) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	n.log.InfoContext(ctx, "notification.welcome",
		"user_id", in.UserID,
		"email", in.Email,
		"first_name", in.FirstName,
	)
	return nil
}
