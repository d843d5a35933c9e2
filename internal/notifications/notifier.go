package notifications

import "context"

type WelcomeInput struct {
	UserID    string
	Email     string
	FirstName string
}

// Notifier tells a newly registered user their account exists.
type Notifier interface {
	SendWelcome(ctx context.Context, input WelcomeInput) error
}
