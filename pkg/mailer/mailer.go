package mailer

import "context"

// Attachment is a file carried inline with a message.
type Attachment struct {
	Filename string
	MIMEType string
	Content  []byte
}

// Message is a single outbound notification.
type Message struct {
	To          string
	BCC         string
	Subject     string
	TextBody    string
	Attachments []Attachment
}

// Mailer delivers notification messages. Implementations must treat Send as
// a single blocking attempt; retry policy belongs to the caller.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}
