// Package catalog decodes the format/frame/frame-interval description of a UVC device
// into an immutable, ordered tree that can be queried by format code, resolution and
// frame interval.
package catalog

import (
	"cmp"
	"fmt"
	"slices"
	"strconv"
	"time"
)

// IntervalUnit is the resolution of every frame interval in a description.
const IntervalUnit = 100 * time.Nanosecond

// Frame is one resolution supported by a Format. Its intervals are either a discrete,
// ascending list (IntervalType() == len(Intervals())) or a continuous min/max/step
// range (IntervalType() == 0), never both.
type Frame struct {
	subtype         int
	width, height   int
	defaultInterval int
	intervalType    int

	minInterval, maxInterval, intervalStep int
	intervals                              []int
}

// NewDiscreteFrame builds a frame with an enumerated interval list. The intervals
// are copied and sorted ascending.
func NewDiscreteFrame(subtype, width, height, defaultInterval int, intervals ...int) *Frame {
	iv := slices.Clone(intervals)
	slices.Sort(iv)
	return &Frame{
		subtype:         subtype,
		width:           width,
		height:          height,
		defaultInterval: defaultInterval,
		intervalType:    len(iv),
		intervals:       iv,
	}
}

// NewContinuousFrame builds a frame with a min/max/step interval range.
func NewContinuousFrame(subtype, width, height, defaultInterval, minInterval, maxInterval, step int) *Frame {
	return &Frame{
		subtype:         subtype,
		width:           width,
		height:          height,
		defaultInterval: defaultInterval,
		minInterval:     minInterval,
		maxInterval:     maxInterval,
		intervalStep:    step,
	}
}

func (f *Frame) Subtype() int         { return f.subtype }
func (f *Frame) Width() int           { return f.width }
func (f *Frame) Height() int          { return f.height }
func (f *Frame) DefaultInterval() int { return f.defaultInterval }
func (f *Frame) IntervalType() int    { return f.intervalType }
func (f *Frame) IsContinuous() bool   { return f.intervalType == 0 }
func (f *Frame) MinInterval() int     { return f.minInterval }
func (f *Frame) MaxInterval() int     { return f.maxInterval }
func (f *Frame) IntervalStep() int    { return f.intervalStep }
func (f *Frame) NumIntervals() int    { return len(f.intervals) }

// Intervals returns a copy of the discrete interval list.
func (f *Frame) Intervals() []int {
	return slices.Clone(f.intervals)
}

// Interval returns the i-th discrete interval. It panics with *IndexError when i is
// out of range.
func (f *Frame) Interval(i int) int {
	checkIndex("interval", i, len(f.intervals))
	return f.intervals[i]
}

func (f *Frame) IntervalDuration(i int) time.Duration {
	return time.Duration(f.Interval(i)) * IntervalUnit
}

// ResolutionString formats the frame size as "WxH".
func (f *Frame) ResolutionString() string {
	return FormatResolution(f.width, f.height)
}

func (f *Frame) IntervalStrings() []string {
	s := make([]string, len(f.intervals))
	for i, v := range f.intervals {
		s[i] = strconv.Itoa(v)
	}
	return s
}

// FrameRates converts the discrete intervals to whole frames per second, in interval
// order (so fastest first).
func (f *Frame) FrameRates() []int {
	rates := make([]int, len(f.intervals))
	for i, v := range f.intervals {
		rates[i] = FrameRate(v)
	}
	return rates
}

// FindInterval returns the index of the discrete interval equal to value, or 0 when
// there is none. A result of 0 does not imply a match; use LookupInterval for that.
func (f *Frame) FindInterval(value int) int {
	i, _ := f.LookupInterval(value)
	return i
}

func (f *Frame) LookupInterval(value int) (int, bool) {
	for i, v := range f.intervals {
		if v == value {
			return i, true
		}
	}
	return 0, false
}

func (f *Frame) String() string {
	if f.IsContinuous() {
		return fmt.Sprintf("Frame{%s, default=%d, continuous=[%d-%d;%d]}",
			f.ResolutionString(), f.defaultInterval, f.minInterval, f.maxInterval, f.intervalStep)
	}
	return fmt.Sprintf("Frame{%s, default=%d, intervals=%v}", f.ResolutionString(), f.defaultInterval, f.intervals)
}

// FrameRate converts an interval in 100ns units to frames per second.
func FrameRate(interval int) int {
	if interval <= 0 {
		return 0
	}
	return int(time.Second / (time.Duration(interval) * IntervalUnit))
}

// Format is one pixel encoding supported by a device. Frames are ordered by
// (width, height).
type Format struct {
	subtype           Subtype
	index             int
	defaultFrameIndex int
	frames            []*Frame

	// declared keeps the descriptor order bDefaultFrameIndex refers to.
	declared []*Frame
}

func NewFormat(subtype Subtype, index, defaultFrameIndex int, frames ...*Frame) *Format {
	fr := slices.Clone(frames)
	slices.SortStableFunc(fr, func(a, b *Frame) int {
		if c := cmp.Compare(a.width, b.width); c != 0 {
			return c
		}
		return cmp.Compare(a.height, b.height)
	})
	return &Format{
		subtype:           subtype,
		index:             index,
		defaultFrameIndex: defaultFrameIndex,
		frames:            fr,
		declared:          slices.Clone(frames),
	}
}

func (f *Format) Subtype() Subtype         { return f.subtype }
func (f *Format) FrameFormat() FrameFormat { return f.subtype.FrameFormat() }
func (f *Format) Index() int               { return f.index }
func (f *Format) DefaultFrameIndex() int   { return f.defaultFrameIndex }
func (f *Format) NumFrames() int           { return len(f.frames) }

// Label is the human readable name of the format: "YUYV", "MJPEG" or "Undefined".
func (f *Format) Label() string { return f.subtype.String() }

// Frame returns the i-th frame. It panics with *IndexError when i is out of range.
func (f *Format) Frame(i int) *Frame {
	checkIndex("frame", i, len(f.frames))
	return f.frames[i]
}

// DefaultFrame resolves the 1-based bDefaultFrameIndex against the frames in the order
// they were declared. An index outside that range falls back to frame 0, and a format
// without frames has no default.
func (f *Format) DefaultFrame() *Frame {
	if i := f.defaultFrameIndex; i >= 1 && i <= len(f.declared) {
		return f.declared[i-1]
	}
	if len(f.frames) == 0 {
		return nil
	}
	return f.frames[0]
}

func (f *Format) Frames() []*Frame {
	return slices.Clone(f.frames)
}

func (f *Format) ResolutionStrings() []string {
	s := make([]string, len(f.frames))
	for i, fr := range f.frames {
		s[i] = fr.ResolutionString()
	}
	return s
}

// FindFrame returns the index of the frame whose "WxH" string equals resolution, or 0
// when there is none.
func (f *Format) FindFrame(resolution string) int {
	i, _ := f.LookupFrame(resolution)
	return i
}

func (f *Format) LookupFrame(resolution string) (int, bool) {
	for i, fr := range f.frames {
		if fr.ResolutionString() == resolution {
			return i, true
		}
	}
	return 0, false
}

func (f *Format) String() string {
	return fmt.Sprintf("Format{%s, index=%d, defaultFrame=%d, frames=%v}", f.Label(), f.index, f.defaultFrameIndex, f.frames)
}

// Catalog is the parsed capability tree of one device. Formats are ordered by
// format index. A Catalog is never modified after construction.
type Catalog struct {
	formats []*Format
}

func New(formats ...*Format) *Catalog {
	fm := slices.Clone(formats)
	slices.SortStableFunc(fm, func(a, b *Format) int {
		return cmp.Compare(a.index, b.index)
	})
	return &Catalog{formats: fm}
}

func (c *Catalog) NumFormats() int { return len(c.formats) }

// Format returns the i-th format. It panics with *IndexError when i is out of range.
func (c *Catalog) Format(i int) *Format {
	checkIndex("format", i, len(c.formats))
	return c.formats[i]
}

func (c *Catalog) Formats() []*Format {
	return slices.Clone(c.formats)
}

func (c *Catalog) FormatLabels() []string {
	s := make([]string, len(c.formats))
	for i, f := range c.formats {
		s[i] = f.Label()
	}
	return s
}

// FindFormat returns the index of the first format with the given logical frame
// format, or 0 when there is none.
func (c *Catalog) FindFormat(code FrameFormat) int {
	i, _ := c.LookupFormat(code)
	return i
}

func (c *Catalog) LookupFormat(code FrameFormat) (int, bool) {
	for i, f := range c.formats {
		if f.FrameFormat() == code {
			return i, true
		}
	}
	return 0, false
}

// FindFormatBySubtype is FindFormat keyed by the raw descriptor subtype.
func (c *Catalog) FindFormatBySubtype(subtype Subtype) int {
	for i, f := range c.formats {
		if f.subtype == subtype {
			return i
		}
	}
	return 0
}

func (c *Catalog) String() string {
	return fmt.Sprintf("Catalog{formats=%v}", c.formats)
}

// FindFormatByFrameFormatCode, FindFrameByResolutionString and FindIntervalValue are
// the function forms of the lookups used by the settings flow.
func FindFormatByFrameFormatCode(c *Catalog, code FrameFormat) int {
	return c.FindFormat(code)
}

func FindFrameByResolutionString(f *Format, resolution string) int {
	return f.FindFrame(resolution)
}

func FindIntervalValue(f *Frame, value int) int {
	return f.FindInterval(value)
}
