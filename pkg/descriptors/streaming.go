package descriptors

import (
	"encoding/binary"
	"io"

	"github.com/google/uuid"
)

// StreamingDescriptor is a class specific VS interface descriptor this package
// understands: a *FormatDescriptor or a *FrameDescriptor.
type StreamingDescriptor interface {
	isStreamingDescriptor()
}

// FormatDescriptor covers both VS_FORMAT_UNCOMPRESSED (3.1.1 of the uncompressed
// payload document) and VS_FORMAT_MJPEG (3.1.1 of the MJPEG payload document). GUIDFormat
// and BitsPerPixel are only set for uncompressed formats.
type FormatDescriptor struct {
	Subtype                    VideoStreamingInterfaceDescriptorSubtype
	FormatIndex                uint8
	NumFrameDescriptors        uint8
	GUIDFormat                 uuid.UUID
	BitsPerPixel               uint8
	Flags                      uint8
	DefaultFrameIndex          uint8
	AspectRatioX, AspectRatioY uint8
	InterlaceFlags             uint8
	CopyProtect                uint8
}

func (fd *FormatDescriptor) UnmarshalBinary(buf []byte) error {
	if err := checkHeader(buf, 3); err != nil {
		return err
	}
	fd.Subtype = VideoStreamingInterfaceDescriptorSubtype(buf[2])
	switch fd.Subtype {
	case VideoStreamingInterfaceDescriptorSubtypeFormatUncompressed:
		if len(buf) < 27 {
			return io.ErrShortBuffer
		}
		fd.FormatIndex = buf[3]
		fd.NumFrameDescriptors = buf[4]
		fd.GUIDFormat = decodeGUID(buf[5:21])
		fd.BitsPerPixel = buf[21]
		fd.DefaultFrameIndex = buf[22]
		fd.AspectRatioX = buf[23]
		fd.AspectRatioY = buf[24]
		fd.InterlaceFlags = buf[25]
		fd.CopyProtect = buf[26]
	case VideoStreamingInterfaceDescriptorSubtypeFormatMJPEG:
		if len(buf) < 11 {
			return io.ErrShortBuffer
		}
		fd.FormatIndex = buf[3]
		fd.NumFrameDescriptors = buf[4]
		fd.Flags = buf[5]
		fd.DefaultFrameIndex = buf[6]
		fd.AspectRatioX = buf[7]
		fd.AspectRatioY = buf[8]
		fd.InterlaceFlags = buf[9]
		fd.CopyProtect = buf[10]
	default:
		return ErrInvalidDescriptor
	}
	return nil
}

func (fd *FormatDescriptor) isStreamingDescriptor() {}

// FrameDescriptor covers VS_FRAME_UNCOMPRESSED and VS_FRAME_MJPEG, which share a
// layout. Intervals are kept in the 100ns units of the wire format. When
// FrameIntervalType is zero the interval range is continuous and
// DiscreteFrameIntervals is empty.
type FrameDescriptor struct {
	Subtype                 VideoStreamingInterfaceDescriptorSubtype
	FrameIndex              uint8
	Capabilities            uint8
	Width, Height           uint16
	MinBitRate, MaxBitRate  uint32
	MaxVideoFrameBufferSize uint32
	DefaultFrameInterval    uint32
	FrameIntervalType       uint8

	MinFrameInterval, MaxFrameInterval, FrameIntervalStep uint32
	DiscreteFrameIntervals                                []uint32
}

func (fd *FrameDescriptor) UnmarshalBinary(buf []byte) error {
	if err := checkHeader(buf, 26); err != nil {
		return err
	}
	fd.Subtype = VideoStreamingInterfaceDescriptorSubtype(buf[2])
	if fd.Subtype != VideoStreamingInterfaceDescriptorSubtypeFrameUncompressed &&
		fd.Subtype != VideoStreamingInterfaceDescriptorSubtypeFrameMJPEG {
		return ErrInvalidDescriptor
	}
	fd.FrameIndex = buf[3]
	fd.Capabilities = buf[4]
	fd.Width = binary.LittleEndian.Uint16(buf[5:7])
	fd.Height = binary.LittleEndian.Uint16(buf[7:9])
	fd.MinBitRate = binary.LittleEndian.Uint32(buf[9:13])
	fd.MaxBitRate = binary.LittleEndian.Uint32(buf[13:17])
	fd.MaxVideoFrameBufferSize = binary.LittleEndian.Uint32(buf[17:21])
	fd.DefaultFrameInterval = binary.LittleEndian.Uint32(buf[21:25])
	fd.FrameIntervalType = buf[25]

	n := int(fd.FrameIntervalType)
	if n == 0 {
		if len(buf) < 38 {
			return io.ErrShortBuffer
		}
		fd.MinFrameInterval = binary.LittleEndian.Uint32(buf[26:30])
		fd.MaxFrameInterval = binary.LittleEndian.Uint32(buf[30:34])
		fd.FrameIntervalStep = binary.LittleEndian.Uint32(buf[34:38])
		fd.DiscreteFrameIntervals = nil
		return nil
	}
	if len(buf) < 26+4*n {
		return io.ErrShortBuffer
	}
	fd.DiscreteFrameIntervals = make([]uint32, n)
	for i := range n {
		fd.DiscreteFrameIntervals[i] = binary.LittleEndian.Uint32(buf[26+i*4 : 30+i*4])
	}
	return nil
}

// FormatSubtype is the subtype of the format descriptor this frame belongs to.
func (fd *FrameDescriptor) FormatSubtype() VideoStreamingInterfaceDescriptorSubtype {
	return fd.Subtype - 1
}

func (fd *FrameDescriptor) isStreamingDescriptor() {}

// UnmarshalStreamingDescriptor decodes one class specific VS interface block. Blocks
// of other subtypes return ErrUnsupportedDescriptor so callers can skip them.
func UnmarshalStreamingDescriptor(buf []byte) (StreamingDescriptor, error) {
	if err := checkHeader(buf, 3); err != nil {
		return nil, err
	}
	switch VideoStreamingInterfaceDescriptorSubtype(buf[2]) {
	case VideoStreamingInterfaceDescriptorSubtypeFormatUncompressed, VideoStreamingInterfaceDescriptorSubtypeFormatMJPEG:
		fd := &FormatDescriptor{}
		return fd, fd.UnmarshalBinary(buf)
	case VideoStreamingInterfaceDescriptorSubtypeFrameUncompressed, VideoStreamingInterfaceDescriptorSubtypeFrameMJPEG:
		fd := &FrameDescriptor{}
		return fd, fd.UnmarshalBinary(buf)
	}
	return nil, ErrUnsupportedDescriptor
}

func checkHeader(buf []byte, min int) error {
	if len(buf) < 2 || len(buf) < int(buf[0]) || len(buf) < min {
		return io.ErrShortBuffer
	}
	if ClassSpecificDescriptorType(buf[1]) != ClassSpecificDescriptorTypeInterface {
		return ErrInvalidDescriptor
	}
	return nil
}
