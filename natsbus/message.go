package natsbus

import (
	"time"

	"github.com/nats-io/nats.go"
)

// Message is a message received from the bus.
type Message struct {
	// Address is the NATS subject the message was sent to.
	Address string
	Body    []byte
	Header  nats.Header

	msg *nats.Msg
}

func newMessage(m *nats.Msg) *Message {
	return &Message{
		Address: m.Subject,
		Body:    m.Data,
		Header:  m.Header,
		msg:     m,
	}
}

// ReplyAddress returns the inbox the sender waits on, or "" when the sender
// did not ask for a reply.
func (m *Message) ReplyAddress() string {
	if m.msg == nil {
		return ""
	}
	return m.msg.Reply
}

// Reply answers the message. It fails with ErrNoReplyAddress when the sender
// did not register a reply callback.
func (m *Message) Reply(body []byte) error {
	if m.ReplyAddress() == "" {
		return ErrNoReplyAddress
	}
	return m.msg.Respond(body)
}

// DeliveryOptions tunes a single Send.
type DeliveryOptions struct {
	// Timeout overrides Config.RequestTimeout for this send.
	Timeout time.Duration

	// Headers are attached to the outgoing message.
	Headers map[string]string
}
