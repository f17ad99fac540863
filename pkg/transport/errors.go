package transport

import "errors"

// Transport errors.
var (
	// ErrClosed is returned when an operation is attempted on a closed channel.
	ErrClosed = errors.New("transport: closed")

	// ErrPacketTooLarge is returned when a write exceeds the channel MTU.
	ErrPacketTooLarge = errors.New("transport: packet exceeds MTU")
)
