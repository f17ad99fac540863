package stream

import (
	"errors"

	"github.com/backkem/avdtp/pkg/capability"
)

// Errors returned by the stream package.
var (
	// ErrInvalidState is returned when an operation is not allowed in the
	// endpoint's current state. The endpoint is left unchanged.
	ErrInvalidState = errors.New("stream: invalid state")

	// ErrOutOfRange is returned when a capability is not advertised, or is
	// not reconfigurable. The endpoint is left unchanged.
	ErrOutOfRange = capability.ErrOutOfRange

	// ErrInvalidConfig is returned when EndpointConfig validation fails.
	ErrInvalidConfig = errors.New("stream: invalid configuration")

	// ErrConnectionAborted is returned by MediaStream.Write once the
	// transport channel is gone.
	ErrConnectionAborted = errors.New("stream: connection aborted")

	// ErrStreamClosed is returned when a MediaStream is used after Close.
	ErrStreamClosed = errors.New("stream: media stream closed")
)
