package email

import (
	"context"
	"time"
)

// Message is one notification to deliver. Body is markdown; senders render it to HTML.
type Message struct {
	To      []string
	From    string // empty uses the sender default
	Subject string
	Body    string
	ReplyTo string
}

// SendResult contains the response from the email provider.
type SendResult struct {
	MessageID string
	SentAt    time.Time
}

// Sender delivers notification emails.
type Sender interface {
	Send(ctx context.Context, msg Message) (SendResult, error)
}
