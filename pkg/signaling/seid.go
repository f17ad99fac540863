package signaling

import "fmt"

// Valid stream endpoint identifier range (AVDTP Section 8.20.1).
// 0x00 is forbidden and 0x3F is reserved for future use.
const (
	MinStreamEndpointID = 0x01
	MaxStreamEndpointID = 0x3E
)

// StreamEndpointID identifies a stream endpoint (SEID) on one device.
// The zero value is invalid; use NewStreamEndpointID to construct one.
type StreamEndpointID uint8

// NewStreamEndpointID validates id and returns it as a StreamEndpointID.
func NewStreamEndpointID(id uint8) (StreamEndpointID, error) {
	if id < MinStreamEndpointID || id > MaxStreamEndpointID {
		return 0, fmt.Errorf("%w: 0x%02x", ErrInvalidID, id)
	}
	return StreamEndpointID(id), nil
}

// IsValid returns true if the identifier is inside the allowed range.
func (id StreamEndpointID) IsValid() bool {
	return id >= MinStreamEndpointID && id <= MaxStreamEndpointID
}

// String formats the identifier as "SEID(0x01)".
func (id StreamEndpointID) String() string {
	return fmt.Sprintf("SEID(0x%02x)", uint8(id))
}

// StreamInformation is the per-endpoint record returned in a Discover
// response (AVDTP Section 8.6.2).
type StreamInformation struct {
	ID           StreamEndpointID
	InUse        bool
	MediaType    MediaType
	EndpointType EndpointType
}
