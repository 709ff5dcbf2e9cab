// Package transport abstracts the one-to-one text-message channel the
// bridge speaks over. The bundled implementation is Slack Socket Mode;
// a radio transport only has to satisfy the same interface.
package transport

import "context"

// Message is one inbound direct message.
type Message struct {
	UserID string
	Text   string
}

// Handler consumes inbound direct messages. Implementations must have
// already filtered out broadcast/channel traffic.
type Handler func(Message)

// Transport is a bidirectional DM channel.
type Transport interface {
	// Subscribe registers a handler for inbound direct messages. Must
	// be called before Run.
	Subscribe(Handler)
	// Run connects and processes events until the context ends.
	Run(ctx context.Context) error
	// SendDirectMessage delivers one outbound message. Fire and
	// forget: an error means the transport rejected the send, not
	// that delivery is otherwise guaranteed.
	SendDirectMessage(ctx context.Context, userID, text string) error
}
