package descriptors

import (
	"encoding/binary"
	"io"
)

// VideoStreamingControlSelector values from UVC 1.5 table A-9.
const (
	VideoStreamingControlSelectorProbe  = 0x01
	VideoStreamingControlSelectorCommit = 0x02
)

// ProbeCommitSize is the wire length of the probe/commit control for a device
// reporting the given bcdUVC.
func ProbeCommitSize(uvc BinaryCodedDecimal) int {
	switch {
	case uvc >= 0x0150:
		return 48
	case uvc >= 0x0110:
		return 34
	}
	return 26
}

// VideoProbeCommitControl is the stream negotiation payload of UVC 1.5 4.3.1.1.
// FrameInterval is in 100ns units.
type VideoProbeCommitControl struct {
	HintBitmask            uint16
	FormatIndex            uint8
	FrameIndex             uint8
	FrameInterval          uint32
	KeyFrameRate           uint16
	PFrameRate             uint16
	CompQuality            uint16
	CompWindowSize         uint16
	Delay                  uint16
	MaxVideoFrameSize      uint32
	MaxPayloadTransferSize uint32

	// added in uvc 1.1
	ClockFrequency     uint32
	FramingInfoBitmask uint8
	PreferedVersion    uint8
	MinVersion         uint8
	MaxVersion         uint8

	// added in uvc 1.5
	Usage                     uint8
	BitDepthLuma              uint8
	SettingsBitmask           uint8
	MaxNumberOfRefFramesPlus1 uint8
	RateControlModes          uint16
	LayoutPerStream           [4]uint16
}

// MarshalInto writes as many fields as fit in buf, which must be one of the
// lengths ProbeCommitSize returns.
func (vpcc *VideoProbeCommitControl) MarshalInto(buf []byte) error {
	if len(buf) < 26 {
		return io.ErrShortBuffer
	}
	le := binary.LittleEndian
	le.PutUint16(buf[0:2], vpcc.HintBitmask)
	buf[2] = vpcc.FormatIndex
	buf[3] = vpcc.FrameIndex
	le.PutUint32(buf[4:8], vpcc.FrameInterval)
	le.PutUint16(buf[8:10], vpcc.KeyFrameRate)
	le.PutUint16(buf[10:12], vpcc.PFrameRate)
	le.PutUint16(buf[12:14], vpcc.CompQuality)
	le.PutUint16(buf[14:16], vpcc.CompWindowSize)
	le.PutUint16(buf[16:18], vpcc.Delay)
	le.PutUint32(buf[18:22], vpcc.MaxVideoFrameSize)
	le.PutUint32(buf[22:26], vpcc.MaxPayloadTransferSize)
	if len(buf) >= 34 {
		le.PutUint32(buf[26:30], vpcc.ClockFrequency)
		buf[30] = vpcc.FramingInfoBitmask
		buf[31] = vpcc.PreferedVersion
		buf[32] = vpcc.MinVersion
		buf[33] = vpcc.MaxVersion
	}
	if len(buf) >= 48 {
		buf[34] = vpcc.Usage
		buf[35] = vpcc.BitDepthLuma
		buf[36] = vpcc.SettingsBitmask
		buf[37] = vpcc.MaxNumberOfRefFramesPlus1
		le.PutUint16(buf[38:40], vpcc.RateControlModes)
		for i, l := range vpcc.LayoutPerStream {
			le.PutUint16(buf[40+2*i:42+2*i], l)
		}
	}
	return nil
}

func (vpcc *VideoProbeCommitControl) MarshalBinary() ([]byte, error) {
	buf := make([]byte, 48)
	return buf, vpcc.MarshalInto(buf)
}

func (vpcc *VideoProbeCommitControl) UnmarshalBinary(buf []byte) error {
	// not length prefixed, the control transfer returns the bare payload
	if len(buf) < 26 {
		return io.ErrShortBuffer
	}
	le := binary.LittleEndian
	vpcc.HintBitmask = le.Uint16(buf[0:2])
	vpcc.FormatIndex = buf[2]
	vpcc.FrameIndex = buf[3]
	vpcc.FrameInterval = le.Uint32(buf[4:8])
	vpcc.KeyFrameRate = le.Uint16(buf[8:10])
	vpcc.PFrameRate = le.Uint16(buf[10:12])
	vpcc.CompQuality = le.Uint16(buf[12:14])
	vpcc.CompWindowSize = le.Uint16(buf[14:16])
	vpcc.Delay = le.Uint16(buf[16:18])
	vpcc.MaxVideoFrameSize = le.Uint32(buf[18:22])
	vpcc.MaxPayloadTransferSize = le.Uint32(buf[22:26])
	if len(buf) >= 34 {
		vpcc.ClockFrequency = le.Uint32(buf[26:30])
		vpcc.FramingInfoBitmask = buf[30]
		vpcc.PreferedVersion = buf[31]
		vpcc.MinVersion = buf[32]
		vpcc.MaxVersion = buf[33]
	}
	if len(buf) >= 48 {
		vpcc.Usage = buf[34]
		vpcc.BitDepthLuma = buf[35]
		vpcc.SettingsBitmask = buf[36]
		vpcc.MaxNumberOfRefFramesPlus1 = buf[37]
		vpcc.RateControlModes = le.Uint16(buf[38:40])
		for i := range vpcc.LayoutPerStream {
			vpcc.LayoutPerStream[i] = le.Uint16(buf[40+2*i : 42+2*i])
		}
	}
	return nil
}
