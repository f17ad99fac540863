// Package capability models AVDTP service capabilities and the negotiation
// rules a stream endpoint applies to them.
//
// A capability is a tagged value: its Category is the tag, and some
// categories (Media Codec, Recovery, Content Protection) carry parameters.
// Two distinct comparisons are used and must not be conflated:
//
//   - SameCategory compares tags only. Configure membership and the
//     reconfigure replace rule use it.
//   - Equal compares tag and parameters.
//
// Encoding and decoding capabilities on the wire is the job of the
// signaling layer. This package only compares the decoded values.
//
// AVDTP references:
//   - Section 8.21: Service Capabilities
package capability

import "fmt"

// Category is the AVDTP service category of a capability.
type Category uint8

const (
	CategoryMediaTransport    Category = 0x01
	CategoryReporting         Category = 0x02
	CategoryRecovery          Category = 0x03
	CategoryContentProtection Category = 0x04
	CategoryHeaderCompression Category = 0x05
	CategoryMultiplexing      Category = 0x06
	CategoryMediaCodec        Category = 0x07
	CategoryDelayReporting    Category = 0x08
)

// String returns a human-readable name for the category.
func (c Category) String() string {
	switch c {
	case CategoryMediaTransport:
		return "MediaTransport"
	case CategoryReporting:
		return "Reporting"
	case CategoryRecovery:
		return "Recovery"
	case CategoryContentProtection:
		return "ContentProtection"
	case CategoryHeaderCompression:
		return "HeaderCompression"
	case CategoryMultiplexing:
		return "Multiplexing"
	case CategoryMediaCodec:
		return "MediaCodec"
	case CategoryDelayReporting:
		return "DelayReporting"
	default:
		return fmt.Sprintf("Category(0x%02x)", uint8(c))
	}
}

// IsValid returns true if the category is a defined value.
func (c Category) IsValid() bool {
	return c >= CategoryMediaTransport && c <= CategoryDelayReporting
}

// IsApplication reports whether the category belongs to the application
// service capabilities. Only these may be changed by a Reconfigure command
// (AVDTP Section 8.11); transport-level categories are fixed once the
// stream is configured.
func (c Category) IsApplication() bool {
	return c == CategoryMediaCodec || c == CategoryContentProtection
}
