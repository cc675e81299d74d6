package mailer

import (
	"context"
	"fmt"
	"log/slog"
)

// Email is a rendered message ready for delivery.
type Email struct {
	From    string
	ReplyTo string
	Subject string
	HTML    string
	Text    string
	To      []string
}

// Sender delivers rendered emails.
type Sender interface {
	Send(ctx context.Context, email *Email) error
}

// Address formats "Name <email>", or just the email when name is empty.
func Address(name, email string) string {
	if name == "" {
		return email
	}
	return fmt.Sprintf("%s <%s>", name, email)
}

// LogSender writes emails to the log instead of delivering them.
// Used when no provider is configured.
type LogSender struct {
	Log *slog.Logger
}

func (s LogSender) Send(ctx context.Context, email *Email) error {
	s.Log.InfoContext(ctx, "email not delivered, no provider configured",
		slog.Any("to", email.To),
		slog.String("subject", email.Subject),
		slog.String("text", email.Text),
	)
	return nil
}
