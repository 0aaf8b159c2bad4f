package natsbus

import "errors"

// Sentinel errors returned by the bus.
var (
	// ErrConnectionRequired is returned when the NATS connection is nil.
	ErrConnectionRequired = errors.New("NATS connection is required")

	// ErrAddressRequired is returned when an empty address is used.
	ErrAddressRequired = errors.New("address is required")

	// ErrNoReplyAddress is returned when replying to a message that was not
	// sent with a reply callback.
	ErrNoReplyAddress = errors.New("message has no reply address")
)
