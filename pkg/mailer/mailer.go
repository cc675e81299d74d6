package mailer

import (
	"context"
	"errors"
)

// Message asks for one templated email.
type Message struct {
	Data     any
	To       string
	Template string
	ReplyTo  string
}

// Mailer renders messages and passes them to a Sender.
type Mailer struct {
	sender   Sender
	renderer *Renderer
	from     string
}

// New creates a mailer. from is used when the provider needs an explicit sender.
func New(sender Sender, renderer *Renderer, from string) *Mailer {
	return &Mailer{sender: sender, renderer: renderer, from: from}
}

// Send renders msg and delivers it. A reply-to on msg beats the template's.
func (m *Mailer) Send(ctx context.Context, msg Message) error {
	if msg.To == "" {
		return ErrNoRecipient
	}

	out, err := m.renderer.Render(msg.Template, msg.Data)
	if err != nil {
		return err
	}

	replyTo := msg.ReplyTo
	if replyTo == "" {
		replyTo = out.Meta.ReplyTo
	}

	if err := m.sender.Send(ctx, &Email{
		From:    m.from,
		To:      []string{msg.To},
		ReplyTo: replyTo,
		Subject: out.Subject,
		HTML:    out.HTML,
		Text:    out.Text,
	}); err != nil {
		return errors.Join(ErrSendFailed, err)
	}
	return nil
}
