package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

type rawDescription struct {
	Formats []rawFormat `json:"formats"`
}

type rawFormat struct {
	DescriptorSubtype *int       `json:"bDescriptorSubtype"`
	FormatIndex       *int       `json:"bFormatIndex"`
	DefaultFrameIndex *int       `json:"bDefaultFrameIndex"`
	Frames            []rawFrame `json:"frame_descs"`
}

type rawFrame struct {
	DescriptorSubtype    *int  `json:"bDescriptorSubtype"`
	Width                *int  `json:"wWidth"`
	Height               *int  `json:"wHeight"`
	DefaultFrameInterval *int  `json:"dwDefaultFrameInterval"`
	FrameIntervalType    *int  `json:"bFrameIntervalType"`
	MinFrameInterval     *int  `json:"dwMinFrameInterval,omitempty"`
	MaxFrameInterval     *int  `json:"dwMaxFrameInterval,omitempty"`
	FrameIntervalStep    *int  `json:"dwFrameIntervalStep,omitempty"`
	Intervals            []int `json:"intervals"`
}

// Parse decodes a device capability description.
//
// An empty blob is a device without a cached description and yields an empty catalog
// and a nil error. A malformed blob also yields an empty catalog, never a partial one,
// together with a *DescriptorError describing the first failing entry.
func Parse(blob string) (*Catalog, error) {
	return ParseBytes([]byte(blob))
}

func ParseBytes(blob []byte) (*Catalog, error) {
	if len(bytes.TrimSpace(blob)) == 0 {
		return New(), nil
	}
	formats, err := decodeDescription(blob)
	if err != nil {
		return New(), err
	}
	return New(formats...), nil
}

func decodeDescription(blob []byte) ([]*Format, error) {
	result, err := descriptionSchema.Validate(gojsonschema.NewBytesLoader(blob))
	if err != nil {
		return nil, &DescriptorError{Err: fmt.Errorf("%w: %v", ErrInvalidDescriptor, err)}
	}
	if !result.Valid() {
		de := &DescriptorError{Err: ErrInvalidDescriptor}
		for _, re := range result.Errors() {
			de.Violations = append(de.Violations, Violation{Field: re.Field(), Description: re.Description()})
		}
		return nil, de
	}

	var doc rawDescription
	if err := json.Unmarshal(blob, &doc); err != nil {
		return nil, &DescriptorError{Err: fmt.Errorf("%w: %v", ErrInvalidDescriptor, err)}
	}

	formats := make([]*Format, 0, len(doc.Formats))
	for i, rf := range doc.Formats {
		path := fmt.Sprintf("formats[%d]", i)
		frames := make([]*Frame, 0, len(rf.Frames))
		for j, rfr := range rf.Frames {
			fr, err := decodeFrame(fmt.Sprintf("%s.frame_descs[%d]", path, j), rfr)
			if err != nil {
				return nil, err
			}
			frames = append(frames, fr)
		}
		formats = append(formats, NewFormat(Subtype(*rf.DescriptorSubtype), *rf.FormatIndex, *rf.DefaultFrameIndex, frames...))
	}
	return formats, nil
}

func decodeFrame(path string, rf rawFrame) (*Frame, error) {
	// the discriminant decides which of the two interval representations is read.
	n := *rf.FrameIntervalType
	if n > 0 {
		if len(rf.Intervals) < n {
			return nil, &DescriptorError{
				Path: path,
				Err:  fmt.Errorf("%w: bFrameIntervalType is %d but %d intervals are present", ErrInvalidDescriptor, n, len(rf.Intervals)),
			}
		}
		for k, v := range rf.Intervals[:n] {
			if v <= 0 {
				return nil, &DescriptorError{
					Path: path,
					Err:  fmt.Errorf("%w: intervals[%d] is %d", ErrInvalidDescriptor, k, v),
				}
			}
		}
		return NewDiscreteFrame(*rf.DescriptorSubtype, *rf.Width, *rf.Height, *rf.DefaultFrameInterval, rf.Intervals[:n]...), nil
	}

	var missing []Violation
	for _, field := range []struct {
		name  string
		value *int
	}{
		{"dwMinFrameInterval", rf.MinFrameInterval},
		{"dwMaxFrameInterval", rf.MaxFrameInterval},
		{"dwFrameIntervalStep", rf.FrameIntervalStep},
	} {
		if field.value == nil {
			missing = append(missing, Violation{Field: field.name, Description: "required for a continuous interval"})
		}
	}
	if len(missing) > 0 {
		return nil, &DescriptorError{Path: path, Violations: missing, Err: ErrInvalidDescriptor}
	}
	var nonPositive []Violation
	for _, field := range []struct {
		name  string
		value int
	}{
		{"dwMinFrameInterval", *rf.MinFrameInterval},
		{"dwMaxFrameInterval", *rf.MaxFrameInterval},
		{"dwFrameIntervalStep", *rf.FrameIntervalStep},
	} {
		if field.value <= 0 {
			nonPositive = append(nonPositive, Violation{Field: field.name, Description: "must be positive for a continuous interval"})
		}
	}
	if len(nonPositive) > 0 {
		return nil, &DescriptorError{Path: path, Violations: nonPositive, Err: ErrInvalidDescriptor}
	}
	if *rf.MinFrameInterval > *rf.MaxFrameInterval {
		return nil, &DescriptorError{
			Path: path,
			Err:  fmt.Errorf("%w: dwMinFrameInterval %d exceeds dwMaxFrameInterval %d", ErrInvalidDescriptor, *rf.MinFrameInterval, *rf.MaxFrameInterval),
		}
	}
	return NewContinuousFrame(*rf.DescriptorSubtype, *rf.Width, *rf.Height, *rf.DefaultFrameInterval,
		*rf.MinFrameInterval, *rf.MaxFrameInterval, *rf.FrameIntervalStep), nil
}

// MarshalJSON encodes the catalog back into the description layout accepted by Parse.
func (c *Catalog) MarshalJSON() ([]byte, error) {
	doc := rawDescription{Formats: make([]rawFormat, 0, len(c.formats))}
	for _, f := range c.formats {
		subtype, index, def := int(f.subtype), f.index, f.defaultFrameIndex
		rf := rawFormat{
			DescriptorSubtype: &subtype,
			FormatIndex:       &index,
			DefaultFrameIndex: &def,
			Frames:            make([]rawFrame, 0, len(f.frames)),
		}
		for _, fr := range f.declared {
			rf.Frames = append(rf.Frames, fr.raw())
		}
		doc.Formats = append(doc.Formats, rf)
	}
	return json.Marshal(doc)
}

func (f *Frame) raw() rawFrame {
	subtype, w, h, def, n := f.subtype, f.width, f.height, f.defaultInterval, f.intervalType
	rf := rawFrame{
		DescriptorSubtype:    &subtype,
		Width:                &w,
		Height:               &h,
		DefaultFrameInterval: &def,
		FrameIntervalType:    &n,
		Intervals:            f.Intervals(),
	}
	if rf.Intervals == nil {
		rf.Intervals = []int{}
	}
	if f.IsContinuous() {
		lo, hi, step := f.minInterval, f.maxInterval, f.intervalStep
		rf.MinFrameInterval, rf.MaxFrameInterval, rf.FrameIntervalStep = &lo, &hi, &step
	}
	return rf
}
