package service

import "context"

// Notifier accepts a preformatted message for best-effort delivery.
// Notify never blocks on the outbound transport and never reports failures.
type Notifier interface {
	Notify(ctx context.Context, message string)
}

// MessageSender delivers one message to an outbound destination.
type MessageSender interface {
	Send(ctx context.Context, message string) error

	// Close releases any resources held by the sender
	Close() error
}
