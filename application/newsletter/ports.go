package newsletter

import "context"

// Message one outgoing email
type Message struct {
	To      string
	Subject string
	HTML    string
}

// Mailer delivers email
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}
