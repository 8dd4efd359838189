package mailer

import "context"

// Sender is the provider boundary. It accepts a fully-prepared Email and
// performs the delivery.
type Sender interface {
	// Send delivers an email message.
	// The Email must have To, Subject, and HTML already set.
	Send(ctx context.Context, email *Email) error
}
