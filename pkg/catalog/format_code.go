package catalog

import "fmt"

// Subtype is the bDescriptorSubtype of a video streaming format descriptor.
// Only the uncompressed and MJPEG subtypes are known; any other value is carried
// through unchanged and reported as undefined.
type Subtype uint8

const (
	SubtypeUncompressed Subtype = 0x04
	SubtypeMJPEG        Subtype = 0x06
)

func (s Subtype) Known() bool {
	return s == SubtypeUncompressed || s == SubtypeMJPEG
}

// FrameFormat returns the logical frame format for the subtype. Unknown subtypes
// map to DefaultFrameFormat.
func (s Subtype) FrameFormat() FrameFormat {
	switch s {
	case SubtypeUncompressed:
		return FrameFormatYUYV
	case SubtypeMJPEG:
		return FrameFormatMJPEG
	default:
		return DefaultFrameFormat
	}
}

func (s Subtype) String() string {
	switch s {
	case SubtypeUncompressed:
		return FrameFormatYUYV.String()
	case SubtypeMJPEG:
		return FrameFormatMJPEG.String()
	default:
		return labelUndefined
	}
}

// FrameFormat is the logical preview format a device is configured with.
type FrameFormat int

const (
	FrameFormatYUYV  FrameFormat = 0
	FrameFormatMJPEG FrameFormat = 1
)

// DefaultFrameFormat is the preview mode used for format descriptors whose subtype
// is not one of the known ones.
const DefaultFrameFormat = FrameFormatYUYV

const labelUndefined = "Undefined"

func (f FrameFormat) String() string {
	switch f {
	case FrameFormatYUYV:
		return "YUYV"
	case FrameFormatMJPEG:
		return "MJPEG"
	default:
		return labelUndefined
	}
}

// Subtype is the inverse of Subtype.FrameFormat for the two named formats.
func (f FrameFormat) Subtype() (Subtype, bool) {
	switch f {
	case FrameFormatYUYV:
		return SubtypeUncompressed, true
	case FrameFormatMJPEG:
		return SubtypeMJPEG, true
	default:
		return 0, false
	}
}

// ParseFrameFormat maps a label produced by FrameFormat.String back to its code.
func ParseFrameFormat(label string) (FrameFormat, error) {
	switch label {
	case "YUYV":
		return FrameFormatYUYV, nil
	case "MJPEG":
		return FrameFormatMJPEG, nil
	default:
		return 0, fmt.Errorf("unknown frame format %q", label)
	}
}
