package usbdevice

import (
	"github.com/pkg/errors"

	"github.com/kevmo314/go-uvcmonitor/pkg/catalog"
	"github.com/kevmo314/go-uvcmonitor/pkg/descriptors"
)

type streamFormat struct {
	*descriptors.FormatDescriptor
	frames []*descriptors.FrameDescriptor
}

// layout is what the backend needs from a configuration descriptor: the UVC version,
// the first video streaming interface and the formats it declares.
type layout struct {
	uvc                descriptors.BinaryCodedDecimal
	streamingInterface uint8
	formats            []*streamFormat
}

type interfaceDescriptor struct {
	number, alt     uint8
	class, subclass uint8
}

// parseConfiguration walks a full configuration descriptor. Class specific blocks are
// attributed to the interface descriptor that precedes them.
func parseConfiguration(buf []byte) (*layout, error) {
	l := &layout{}
	var (
		cur         *interfaceDescriptor
		foundStream bool
	)
	for block, err := range descriptors.Blocks(buf) {
		if err != nil {
			return nil, errors.Wrap(err, "walk configuration descriptor")
		}
		switch block[1] {
		case byte(descriptors.DescriptorTypeInterface):
			if len(block) < 9 {
				return nil, errors.Wrap(descriptors.ErrInvalidDescriptor, "interface descriptor")
			}
			cur = &interfaceDescriptor{number: block[2], alt: block[3], class: block[5], subclass: block[6]}
			if cur.isStreaming() && !foundStream {
				foundStream = true
				l.streamingInterface = cur.number
			}
		case byte(descriptors.ClassSpecificDescriptorTypeInterface):
			if cur == nil || descriptors.ClassCode(cur.class) != descriptors.ClassCodeVideo {
				continue
			}
			switch {
			case descriptors.SubclassCode(cur.subclass) == descriptors.SubclassCodeVideoControl:
				if descriptors.VideoControlInterfaceDescriptorSubtype(block[2]) != descriptors.VideoControlInterfaceDescriptorSubtypeHeader {
					continue
				}
				hd := &descriptors.HeaderDescriptor{}
				if err := hd.UnmarshalBinary(block); err != nil {
					return nil, errors.Wrap(err, "video control header")
				}
				l.uvc = hd.UVC
			case cur.isStreaming() && cur.number == l.streamingInterface && cur.alt == 0:
				if err := l.addStreamingBlock(block); err != nil {
					return nil, err
				}
			}
		}
	}
	if !foundStream {
		return nil, errors.New("no video streaming interface")
	}
	return l, nil
}

func (i *interfaceDescriptor) isStreaming() bool {
	return descriptors.ClassCode(i.class) == descriptors.ClassCodeVideo &&
		descriptors.SubclassCode(i.subclass) == descriptors.SubclassCodeVideoStreaming
}

func (l *layout) addStreamingBlock(block []byte) error {
	d, err := descriptors.UnmarshalStreamingDescriptor(block)
	if errors.Is(err, descriptors.ErrUnsupportedDescriptor) {
		return nil
	}
	if err != nil {
		return errors.Wrapf(err, "streaming descriptor subtype %#x", block[2])
	}
	switch d := d.(type) {
	case *descriptors.FormatDescriptor:
		l.formats = append(l.formats, &streamFormat{FormatDescriptor: d})
	case *descriptors.FrameDescriptor:
		if len(l.formats) == 0 || l.formats[len(l.formats)-1].Subtype != d.FormatSubtype() {
			return errors.Wrap(descriptors.ErrInvalidDescriptor, "frame descriptor outside its format")
		}
		f := l.formats[len(l.formats)-1]
		f.frames = append(f.frames, d)
	}
	return nil
}

// catalog converts the decoded descriptors. Frames keep their descriptor subtype.
func (l *layout) catalog() *catalog.Catalog {
	formats := make([]*catalog.Format, 0, len(l.formats))
	for _, f := range l.formats {
		frames := make([]*catalog.Frame, 0, len(f.frames))
		for _, fr := range f.frames {
			frames = append(frames, catalogFrame(fr))
		}
		formats = append(formats, catalog.NewFormat(catalog.Subtype(f.Subtype), int(f.FormatIndex), int(f.DefaultFrameIndex), frames...))
	}
	return catalog.New(formats...)
}

func catalogFrame(fr *descriptors.FrameDescriptor) *catalog.Frame {
	if fr.FrameIntervalType == 0 {
		return catalog.NewContinuousFrame(int(fr.Subtype), int(fr.Width), int(fr.Height), int(fr.DefaultFrameInterval),
			int(fr.MinFrameInterval), int(fr.MaxFrameInterval), int(fr.FrameIntervalStep))
	}
	intervals := make([]int, len(fr.DiscreteFrameIntervals))
	for i, v := range fr.DiscreteFrameIntervals {
		intervals[i] = int(v)
	}
	return catalog.NewDiscreteFrame(int(fr.Subtype), int(fr.Width), int(fr.Height), int(fr.DefaultFrameInterval), intervals...)
}

func (l *layout) findFormat(subtype catalog.Subtype) *streamFormat {
	for _, f := range l.formats {
		if catalog.Subtype(f.Subtype) == subtype {
			return f
		}
	}
	return nil
}

func (f *streamFormat) findFrame(width, height int) *descriptors.FrameDescriptor {
	for _, fr := range f.frames {
		if int(fr.Width) == width && int(fr.Height) == height {
			return fr
		}
	}
	return nil
}

// closestInterval picks the supported interval nearest to the given frame rate. A
// non-positive rate selects the default interval.
func closestInterval(fr *descriptors.FrameDescriptor, frameRate int) uint32 {
	if frameRate <= 0 {
		return fr.DefaultFrameInterval
	}
	target := int64(10_000_000 / frameRate)
	if fr.FrameIntervalType == 0 {
		lo, hi := int64(fr.MinFrameInterval), int64(fr.MaxFrameInterval)
		target = max(lo, min(hi, target))
		if step := int64(fr.FrameIntervalStep); step > 0 {
			target = lo + (target-lo+step/2)/step*step
			if target > hi {
				target -= step
			}
		}
		return uint32(target)
	}
	best := fr.DiscreteFrameIntervals[0]
	for _, iv := range fr.DiscreteFrameIntervals[1:] {
		if abs(int64(iv)-target) < abs(int64(best)-target) {
			best = iv
		}
	}
	return best
}

func abs(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
