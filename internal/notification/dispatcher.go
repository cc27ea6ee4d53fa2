// Package notification delivers the matter-opened confirmation email. The
// dispatch path is chosen from configuration: a tenant notification endpoint
// when one is configured, direct SMTP otherwise, and a no-op when neither is
// set. Delivery is a trailing side effect of matter creation; failures are
// logged and never surface to the caller.
package notification

import "context"

// Message is one rendered notification ready for delivery.
type Message struct {
	To      string
	From    string
	Subject string
	HTML    string
	CC      []string
	BCC     []string
}

// Dispatcher delivers a rendered notification.
type Dispatcher interface {
	Dispatch(ctx context.Context, msg Message) error
}

// NoopDispatcher discards notifications. Used when no delivery channel is
// configured.
type NoopDispatcher struct{}

func (NoopDispatcher) Dispatch(context.Context, Message) error { return nil }
