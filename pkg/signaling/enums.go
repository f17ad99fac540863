// Package signaling defines the identifiers, enumerations and collaborator
// interfaces shared between a stream endpoint and the AVDTP signaling layer.
//
// The signaling channel itself (message framing, transaction labels and
// command/response matching) lives outside this module. A stream endpoint
// only needs two narrow capabilities from it:
//
//   - Peer: send an Abort command for a remote endpoint and wait for the reply
//   - Responder: answer one specific pending request, positively or negatively
//
// AVDTP references:
//   - Section 8.20.6: Stream End-point Identifier (SEID)
//   - Section 8.20.6.2: Error codes
package signaling

// MediaType identifies the media carried by a stream endpoint.
//
// See AVDTP Section 8.20.6 (Media Type field).
type MediaType uint8

const (
	// MediaTypeAudio indicates an audio stream.
	MediaTypeAudio MediaType = 0x00

	// MediaTypeVideo indicates a video stream.
	MediaTypeVideo MediaType = 0x01

	// MediaTypeMultimedia indicates a multimedia stream.
	MediaTypeMultimedia MediaType = 0x02
)

// String returns a human-readable name for the media type.
func (m MediaType) String() string {
	switch m {
	case MediaTypeAudio:
		return "Audio"
	case MediaTypeVideo:
		return "Video"
	case MediaTypeMultimedia:
		return "Multimedia"
	default:
		return "Unknown"
	}
}

// IsValid returns true if the media type is a defined value.
func (m MediaType) IsValid() bool {
	return m <= MediaTypeMultimedia
}

// EndpointType is the role of a stream endpoint (TSEP field).
type EndpointType uint8

const (
	// EndpointTypeSource produces media.
	EndpointTypeSource EndpointType = 0x00

	// EndpointTypeSink consumes media.
	EndpointTypeSink EndpointType = 0x01
)

// String returns a human-readable name for the endpoint type.
func (e EndpointType) String() string {
	switch e {
	case EndpointTypeSource:
		return "Source"
	case EndpointTypeSink:
		return "Sink"
	default:
		return "Unknown"
	}
}

// IsValid returns true if the endpoint type is a defined value.
func (e EndpointType) IsValid() bool {
	return e == EndpointTypeSource || e == EndpointTypeSink
}

// ErrorCode is an AVDTP signaling error code carried in a reject response.
//
// See AVDTP Section 8.20.6.2.
type ErrorCode uint8

const (
	ErrorCodeBadHeaderFormat          ErrorCode = 0x01
	ErrorCodeBadLength                ErrorCode = 0x11
	ErrorCodeBadAcpSeid               ErrorCode = 0x12
	ErrorCodeSepInUse                 ErrorCode = 0x13
	ErrorCodeSepNotInUse              ErrorCode = 0x14
	ErrorCodeBadServiceCategory       ErrorCode = 0x17
	ErrorCodeBadPayloadFormat         ErrorCode = 0x18
	ErrorCodeNotSupportedCommand      ErrorCode = 0x19
	ErrorCodeInvalidCapabilities      ErrorCode = 0x1A
	ErrorCodeBadRecoveryType          ErrorCode = 0x22
	ErrorCodeBadMediaTransportFormat  ErrorCode = 0x23
	ErrorCodeBadRecoveryFormat        ErrorCode = 0x25
	ErrorCodeBadRohcFormat            ErrorCode = 0x26
	ErrorCodeBadCpFormat              ErrorCode = 0x27
	ErrorCodeBadMultiplexingFormat    ErrorCode = 0x28
	ErrorCodeUnsupportedConfiguration ErrorCode = 0x29

	// ErrorCodeBadState is sent when a command is not allowed in the
	// current stream state.
	ErrorCodeBadState ErrorCode = 0x31
)

// String returns the AVDTP name of the error code.
func (c ErrorCode) String() string {
	switch c {
	case ErrorCodeBadHeaderFormat:
		return "BAD_HEADER_FORMAT"
	case ErrorCodeBadLength:
		return "BAD_LENGTH"
	case ErrorCodeBadAcpSeid:
		return "BAD_ACP_SEID"
	case ErrorCodeSepInUse:
		return "SEP_IN_USE"
	case ErrorCodeSepNotInUse:
		return "SEP_NOT_IN_USE"
	case ErrorCodeBadServiceCategory:
		return "BAD_SERV_CATEGORY"
	case ErrorCodeBadPayloadFormat:
		return "BAD_PAYLOAD_FORMAT"
	case ErrorCodeNotSupportedCommand:
		return "NOT_SUPPORTED_COMMAND"
	case ErrorCodeInvalidCapabilities:
		return "INVALID_CAPABILITIES"
	case ErrorCodeBadRecoveryType:
		return "BAD_RECOVERY_TYPE"
	case ErrorCodeBadMediaTransportFormat:
		return "BAD_MEDIA_TRANSPORT_FORMAT"
	case ErrorCodeBadRecoveryFormat:
		return "BAD_RECOVERY_FORMAT"
	case ErrorCodeBadRohcFormat:
		return "BAD_ROHC_FORMAT"
	case ErrorCodeBadCpFormat:
		return "BAD_CP_FORMAT"
	case ErrorCodeBadMultiplexingFormat:
		return "BAD_MULTIPLEXING_FORMAT"
	case ErrorCodeUnsupportedConfiguration:
		return "UNSUPPORTED_CONFIGURATION"
	case ErrorCodeBadState:
		return "BAD_STATE"
	default:
		return "Unknown"
	}
}
