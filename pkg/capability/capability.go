package capability

import (
	"bytes"
	"fmt"

	"github.com/backkem/avdtp/pkg/signaling"
)

// Capability is a single service capability.
// The concrete types below are always used by value.
type Capability interface {
	// Category returns the service category tag.
	Category() Category
}

// CodecType identifies a media codec within a media type.
// Values outside the assigned table are carried through unchanged.
type CodecType uint8

const (
	CodecTypeSBC            CodecType = 0x00
	CodecTypeMPEG12         CodecType = 0x01
	CodecTypeAAC            CodecType = 0x02
	CodecTypeATRAC          CodecType = 0x04
	CodecTypeVendorSpecific CodecType = 0xFF
)

// String returns the codec name, or its hex value when unassigned.
func (t CodecType) String() string {
	switch t {
	case CodecTypeSBC:
		return "SBC"
	case CodecTypeMPEG12:
		return "MPEG-1,2"
	case CodecTypeAAC:
		return "AAC"
	case CodecTypeATRAC:
		return "ATRAC"
	case CodecTypeVendorSpecific:
		return "VendorSpecific"
	default:
		return fmt.Sprintf("CodecType(0x%02x)", uint8(t))
	}
}

// MediaTransport is the basic media transport capability. It has no parameters.
type MediaTransport struct{}

// Reporting is the reporting service capability. It has no parameters.
type Reporting struct{}

// DelayReporting is the delay reporting capability. It has no parameters.
type DelayReporting struct{}

// Recovery is the recovery service capability.
type Recovery struct {
	RecoveryType          uint8
	MaxRecoveryWindowSize uint8
	MaxNumberMediaPackets uint8
}

// ContentProtection is the content protection capability.
type ContentProtection struct {
	ProtectionType uint16
	Extra          []byte
}

// MediaCodec is the media codec capability. CodecInfo is the
// codec-specific information element, opaque to this package.
type MediaCodec struct {
	MediaType signaling.MediaType
	CodecType CodecType
	CodecInfo []byte
}

// Generic carries a category this package has no dedicated type for,
// such as header compression or multiplexing.
type Generic struct {
	Cat     Category
	Payload []byte
}

func (MediaTransport) Category() Category    { return CategoryMediaTransport }
func (Reporting) Category() Category         { return CategoryReporting }
func (DelayReporting) Category() Category    { return CategoryDelayReporting }
func (Recovery) Category() Category          { return CategoryRecovery }
func (ContentProtection) Category() Category { return CategoryContentProtection }
func (MediaCodec) Category() Category        { return CategoryMediaCodec }
func (g Generic) Category() Category         { return g.Cat }

// SameCategory reports whether a and b carry the same tag, ignoring parameters.
func SameCategory(a, b Capability) bool {
	return a.Category() == b.Category()
}

// Equal reports whether a and b have the same tag and the same parameters.
func Equal(a, b Capability) bool {
	if !SameCategory(a, b) {
		return false
	}
	switch av := a.(type) {
	case MediaTransport, Reporting, DelayReporting:
		return true
	case Recovery:
		bv, ok := b.(Recovery)
		return ok && av == bv
	case ContentProtection:
		bv, ok := b.(ContentProtection)
		return ok && av.ProtectionType == bv.ProtectionType && bytes.Equal(av.Extra, bv.Extra)
	case MediaCodec:
		bv, ok := b.(MediaCodec)
		return ok && av.MediaType == bv.MediaType && av.CodecType == bv.CodecType &&
			bytes.Equal(av.CodecInfo, bv.CodecInfo)
	case Generic:
		bv, ok := b.(Generic)
		return ok && bytes.Equal(av.Payload, bv.Payload)
	default:
		return false
	}
}

// EqualSet reports whether a and b hold pairwise Equal capabilities in the same order.
func EqualSet(a, b []Capability) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}

// Categories returns the category of each capability in caps, in order.
func Categories(caps []Capability) []Category {
	out := make([]Category, 0, len(caps))
	for _, c := range caps {
		out = append(out, c.Category())
	}
	return out
}

// Clone returns a deep copy of caps. Neither the slice nor the byte
// payloads of its elements share memory with caps.
func Clone(caps []Capability) []Capability {
	if caps == nil {
		return nil
	}
	out := make([]Capability, len(caps))
	for i, c := range caps {
		out[i] = cloneOne(c)
	}
	return out
}

func cloneOne(c Capability) Capability {
	switch v := c.(type) {
	case MediaCodec:
		v.CodecInfo = bytes.Clone(v.CodecInfo)
		return v
	case ContentProtection:
		v.Extra = bytes.Clone(v.Extra)
		return v
	case Generic:
		v.Payload = bytes.Clone(v.Payload)
		return v
	default:
		return c
	}
}
