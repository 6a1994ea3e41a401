// Package notify sends transactional email to clinic staff.
package notify

import "context"

// EmailMessage is a plain transactional email.
type EmailMessage struct {
	To      []string
	Subject string
	Body    string
}

// Sender delivers email messages.
type Sender interface {
	Send(ctx context.Context, msg EmailMessage) error
}

// NoopSender drops messages. Used when email is not configured.
type NoopSender struct{}

func (NoopSender) Send(context.Context, EmailMessage) error { return nil }
