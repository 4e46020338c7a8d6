// Package email defines the outgoing mail surface used by walk outputs.
package email

import "context"

type Message struct {
	From    string
	To      []string
	Subject string
	Body    string
}

type Sender interface {
	Send(ctx context.Context, message Message) error
}
