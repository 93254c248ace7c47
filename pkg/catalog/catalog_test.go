package catalog

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const mjpegBlob = `{
  "formats": [
    {
      "bDescriptorSubtype": 6,
      "bFormatIndex": 0,
      "bDefaultFrameIndex": 1,
      "frame_descs": [
        {
          "bDescriptorSubtype": 7,
          "wWidth": 1280,
          "wHeight": 720,
          "dwDefaultFrameInterval": 333333,
          "bFrameIntervalType": 2,
          "intervals": [500000, 333333]
        }
      ]
    }
  ]
}`

const mixedBlob = `{
  "formats": [
    {
      "bDescriptorSubtype": 6,
      "bFormatIndex": 2,
      "bDefaultFrameIndex": 1,
      "frame_descs": [
        {"bDescriptorSubtype": 7, "wWidth": 1920, "wHeight": 1080, "dwDefaultFrameInterval": 333333,
         "bFrameIntervalType": 3, "intervals": [666666, 333333, 500000]},
        {"bDescriptorSubtype": 7, "wWidth": 640, "wHeight": 480, "dwDefaultFrameInterval": 333333,
         "bFrameIntervalType": 1, "intervals": [333333]},
        {"bDescriptorSubtype": 7, "wWidth": 640, "wHeight": 360, "dwDefaultFrameInterval": 333333,
         "bFrameIntervalType": 1, "intervals": [333333, 999999]}
      ]
    },
    {
      "bDescriptorSubtype": 4,
      "bFormatIndex": 1,
      "bDefaultFrameIndex": 1,
      "frame_descs": [
        {"bDescriptorSubtype": 5, "wWidth": 640, "wHeight": 480, "dwDefaultFrameInterval": 333333,
         "bFrameIntervalType": 0, "dwMinFrameInterval": 333333, "dwMaxFrameInterval": 2000000,
         "dwFrameIntervalStep": 333333, "intervals": []}
      ]
    },
    {
      "bDescriptorSubtype": 16,
      "bFormatIndex": 3,
      "bDefaultFrameIndex": 1,
      "frame_descs": []
    }
  ]
}`

func TestParseEmpty(t *testing.T) {
	for _, blob := range []string{"", "   ", "\n"} {
		c, err := Parse(blob)
		require.NoError(t, err)
		assert.Equal(t, 0, c.NumFormats())
	}
}

func TestParseMJPEGScenario(t *testing.T) {
	c, err := Parse(mjpegBlob)
	require.NoError(t, err)
	require.Equal(t, 1, c.NumFormats())

	f := c.Format(0)
	assert.Equal(t, "MJPEG", f.Label())
	assert.Equal(t, FrameFormatMJPEG, f.FrameFormat())
	assert.Equal(t, 333333, f.Frame(0).Interval(0))
	assert.Equal(t, []int{333333, 500000}, f.Frame(0).Intervals())
	assert.Equal(t, 33333300*time.Nanosecond, f.Frame(0).IntervalDuration(0))
}

func TestParseOrdering(t *testing.T) {
	c, err := Parse(mixedBlob)
	require.NoError(t, err)
	require.Equal(t, 3, c.NumFormats())

	var indexes []int
	for _, f := range c.Formats() {
		indexes = append(indexes, f.Index())
	}
	assert.Equal(t, []int{1, 2, 3}, indexes)

	mjpeg := c.Format(1)
	assert.Equal(t, []string{"640x360", "640x480", "1920x1080"}, mjpeg.ResolutionStrings())
	assert.Equal(t, []string{"YUYV", "MJPEG", "Undefined"}, c.FormatLabels())
}

func TestParseIsDeterministic(t *testing.T) {
	a, err := Parse(mixedBlob)
	require.NoError(t, err)
	b, err := Parse(mixedBlob)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestParseDiscreteIntervals(t *testing.T) {
	c, err := Parse(mixedBlob)
	require.NoError(t, err)

	fr := c.Format(1).Frame(2)
	require.Equal(t, 1920, fr.Width())
	assert.Equal(t, 3, fr.IntervalType())
	assert.Equal(t, []int{333333, 500000, 666666}, fr.Intervals())
	assert.Zero(t, fr.MinInterval())
	assert.Zero(t, fr.MaxInterval())
	assert.Zero(t, fr.IntervalStep())
	assert.False(t, fr.IsContinuous())

	// only the first bFrameIntervalType entries are consumed
	fr = c.Format(1).Frame(0)
	assert.Equal(t, []int{333333}, fr.Intervals())
}

func TestParseIgnoresUnreadIntervals(t *testing.T) {
	c, err := Parse(`{"formats": [{"bDescriptorSubtype": 6, "bFormatIndex": 1, "bDefaultFrameIndex": 1, "frame_descs": [
		{"bDescriptorSubtype": 7, "wWidth": 1280, "wHeight": 720, "dwDefaultFrameInterval": 333333, "bFrameIntervalType": 1, "intervals": [333333, 0, -5]}]}]}`)
	require.NoError(t, err)
	require.Equal(t, 1, c.NumFormats())
	assert.Equal(t, []int{333333}, c.Format(0).Frame(0).Intervals())

	// discrete frames never read the continuous fields
	c, err = Parse(`{"formats": [{"bDescriptorSubtype": 6, "bFormatIndex": 1, "bDefaultFrameIndex": 1, "frame_descs": [
		{"bDescriptorSubtype": 7, "wWidth": 1280, "wHeight": 720, "dwDefaultFrameInterval": 333333, "bFrameIntervalType": 1, "intervals": [333333],
		 "dwMinFrameInterval": 0, "dwMaxFrameInterval": 0, "dwFrameIntervalStep": 0}]}]}`)
	require.NoError(t, err)
	assert.False(t, c.Format(0).Frame(0).IsContinuous())
}

func TestParseContinuousIntervals(t *testing.T) {
	c, err := Parse(mixedBlob)
	require.NoError(t, err)

	fr := c.Format(0).Frame(0)
	assert.True(t, fr.IsContinuous())
	assert.Equal(t, 0, fr.NumIntervals())
	assert.Equal(t, 333333, fr.MinInterval())
	assert.Equal(t, 2000000, fr.MaxInterval())
	assert.Equal(t, 333333, fr.IntervalStep())
	assert.LessOrEqual(t, fr.MinInterval(), fr.MaxInterval())
}

func TestParseMalformed(t *testing.T) {
	tests := map[string]string{
		"not json":            `{"formats": [`,
		"formats missing":     `{"other": []}`,
		"formats not a list":  `{"formats": 3}`,
		"format field type":   `{"formats": [{"bDescriptorSubtype": "six", "bFormatIndex": 0, "bDefaultFrameIndex": 1, "frame_descs": []}]}`,
		"frame_descs missing": `{"formats": [{"bDescriptorSubtype": 6, "bFormatIndex": 0, "bDefaultFrameIndex": 1}]}`,
		"frame width missing": `{"formats": [{"bDescriptorSubtype": 6, "bFormatIndex": 0, "bDefaultFrameIndex": 1, "frame_descs": [
			{"bDescriptorSubtype": 7, "wHeight": 720, "dwDefaultFrameInterval": 333333, "bFrameIntervalType": 1, "intervals": [333333]}]}]}`,
		"too few intervals": `{"formats": [{"bDescriptorSubtype": 6, "bFormatIndex": 0, "bDefaultFrameIndex": 1, "frame_descs": [
			{"bDescriptorSubtype": 7, "wWidth": 1280, "wHeight": 720, "dwDefaultFrameInterval": 333333, "bFrameIntervalType": 3, "intervals": [333333]}]}]}`,
		"continuous without range": `{"formats": [{"bDescriptorSubtype": 4, "bFormatIndex": 0, "bDefaultFrameIndex": 1, "frame_descs": [
			{"bDescriptorSubtype": 5, "wWidth": 640, "wHeight": 480, "dwDefaultFrameInterval": 333333, "bFrameIntervalType": 0, "dwMinFrameInterval": 333333}]}]}`,
		"continuous min above max": `{"formats": [{"bDescriptorSubtype": 4, "bFormatIndex": 0, "bDefaultFrameIndex": 1, "frame_descs": [
			{"bDescriptorSubtype": 5, "wWidth": 640, "wHeight": 480, "dwDefaultFrameInterval": 333333, "bFrameIntervalType": 0,
			 "dwMinFrameInterval": 666666, "dwMaxFrameInterval": 333333, "dwFrameIntervalStep": 1}]}]}`,
		"zero consumed interval": `{"formats": [{"bDescriptorSubtype": 6, "bFormatIndex": 0, "bDefaultFrameIndex": 1, "frame_descs": [
			{"bDescriptorSubtype": 7, "wWidth": 1280, "wHeight": 720, "dwDefaultFrameInterval": 333333, "bFrameIntervalType": 2, "intervals": [333333, 0]}]}]}`,
		"continuous zero range": `{"formats": [{"bDescriptorSubtype": 4, "bFormatIndex": 0, "bDefaultFrameIndex": 1, "frame_descs": [
			{"bDescriptorSubtype": 5, "wWidth": 640, "wHeight": 480, "dwDefaultFrameInterval": 333333, "bFrameIntervalType": 0,
			 "dwMinFrameInterval": 0, "dwMaxFrameInterval": 0, "dwFrameIntervalStep": 0}]}]}`,
		"continuous zero step": `{"formats": [{"bDescriptorSubtype": 4, "bFormatIndex": 0, "bDefaultFrameIndex": 1, "frame_descs": [
			{"bDescriptorSubtype": 5, "wWidth": 640, "wHeight": 480, "dwDefaultFrameInterval": 333333, "bFrameIntervalType": 0,
			 "dwMinFrameInterval": 333333, "dwMaxFrameInterval": 666666, "dwFrameIntervalStep": 0}]}]}`,
	}
	for name, blob := range tests {
		t.Run(name, func(t *testing.T) {
			c, err := Parse(blob)
			require.Error(t, err)
			assert.Equal(t, 0, c.NumFormats(), "a malformed description never yields a partial catalog")

			var de *DescriptorError
			require.True(t, errors.As(err, &de))
			assert.ErrorIs(t, err, ErrInvalidDescriptor)
		})
	}
}

func TestParseMalformedReportsLocation(t *testing.T) {
	blob := `{"formats": [
		{"bDescriptorSubtype": 6, "bFormatIndex": 0, "bDefaultFrameIndex": 1, "frame_descs": [
			{"bDescriptorSubtype": 7, "wWidth": 640, "wHeight": 480, "dwDefaultFrameInterval": 333333, "bFrameIntervalType": 1, "intervals": [333333]},
			{"bDescriptorSubtype": 7, "wWidth": 1280, "wHeight": 720, "dwDefaultFrameInterval": 333333, "bFrameIntervalType": 2, "intervals": [333333]}
		]}]}`
	_, err := Parse(blob)
	var de *DescriptorError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, "formats[0].frame_descs[1]", de.Path)

	_, err = Parse(`{"formats": [{"bFormatIndex": 0, "bDefaultFrameIndex": 1, "frame_descs": []}]}`)
	require.True(t, errors.As(err, &de))
	require.NotEmpty(t, de.Violations)
	assert.Contains(t, de.Error(), "bDescriptorSubtype")
}

func TestLookupsFallBackToZero(t *testing.T) {
	c, err := Parse(mixedBlob)
	require.NoError(t, err)

	assert.Equal(t, 1, FindFormatByFrameFormatCode(c, FrameFormatMJPEG))
	assert.Equal(t, 0, FindFormatByFrameFormatCode(c, FrameFormatYUYV))
	assert.Equal(t, 0, FindFormatByFrameFormatCode(c, FrameFormat(42)))

	mjpeg := c.Format(1)
	assert.Equal(t, 2, FindFrameByResolutionString(mjpeg, "1920x1080"))
	assert.Equal(t, 0, FindFrameByResolutionString(mjpeg, "800x600"))
	assert.Equal(t, 0, FindFrameByResolutionString(mjpeg, "garbage"))

	fr := mjpeg.Frame(2)
	assert.Equal(t, 1, FindIntervalValue(fr, 500000))
	assert.Equal(t, 0, FindIntervalValue(fr, 1))
	assert.Equal(t, 0, FindIntervalValue(c.Format(0).Frame(0), 333333))

	_, ok := c.LookupFormat(FrameFormat(42))
	assert.False(t, ok)
	i, ok := mjpeg.LookupFrame("640x480")
	assert.True(t, ok)
	assert.Equal(t, 1, i)

	assert.Equal(t, 2, c.FindFormatBySubtype(Subtype(16)))
	assert.Equal(t, 0, c.FindFormatBySubtype(Subtype(99)))
}

func TestLookupsOnEmptyCatalog(t *testing.T) {
	c := New()
	assert.Equal(t, 0, c.FindFormat(FrameFormatMJPEG))
	assert.Empty(t, c.FormatLabels())
}

func TestIndexedAccessPanics(t *testing.T) {
	c, err := Parse(mjpegBlob)
	require.NoError(t, err)

	assertIndexPanic := func(t *testing.T, kind string, fn func()) {
		t.Helper()
		defer func() {
			r := recover()
			require.NotNil(t, r, "expected panic")
			ie, ok := r.(*IndexError)
			require.True(t, ok, "panic value %T", r)
			assert.Equal(t, kind, ie.Kind)
		}()
		fn()
	}

	assertIndexPanic(t, "format", func() { c.Format(1) })
	assertIndexPanic(t, "format", func() { c.Format(-1) })
	assertIndexPanic(t, "frame", func() { c.Format(0).Frame(1) })
	assertIndexPanic(t, "interval", func() { c.Format(0).Frame(0).Interval(2) })
	assertIndexPanic(t, "format", func() { New().Format(0) })
}

func TestCatalogIsImmutable(t *testing.T) {
	c, err := Parse(mixedBlob)
	require.NoError(t, err)

	formats := c.Formats()
	formats[0] = nil
	assert.NotNil(t, c.Format(0))

	iv := c.Format(1).Frame(2).Intervals()
	iv[0] = 1
	assert.Equal(t, 333333, c.Format(1).Frame(2).Interval(0))
}

func TestDefaultFrame(t *testing.T) {
	c, err := Parse(`{"formats": [{"bDescriptorSubtype": 6, "bFormatIndex": 1, "bDefaultFrameIndex": 2, "frame_descs": [
		{"bDescriptorSubtype": 7, "wWidth": 1920, "wHeight": 1080, "dwDefaultFrameInterval": 333333, "bFrameIntervalType": 1, "intervals": [333333]},
		{"bDescriptorSubtype": 7, "wWidth": 1280, "wHeight": 720, "dwDefaultFrameInterval": 666666, "bFrameIntervalType": 1, "intervals": [666666]},
		{"bDescriptorSubtype": 7, "wWidth": 640, "wHeight": 480, "dwDefaultFrameInterval": 333333, "bFrameIntervalType": 1, "intervals": [333333]}
	]}]}`)
	require.NoError(t, err)

	// the index counts declared frames, not the sorted order
	f := c.Format(0)
	assert.Equal(t, "640x480", f.Frame(0).ResolutionString())
	require.NotNil(t, f.DefaultFrame())
	assert.Equal(t, "1280x720", f.DefaultFrame().ResolutionString())

	blob, err := json.Marshal(c)
	require.NoError(t, err)
	again, err := ParseBytes(blob)
	require.NoError(t, err)
	assert.Equal(t, "1280x720", again.Format(0).DefaultFrame().ResolutionString())

	frames := []*Frame{
		NewDiscreteFrame(7, 1280, 720, 333333, 333333),
		NewDiscreteFrame(7, 640, 480, 333333, 333333),
	}
	for _, idx := range []int{0, 3, -1} {
		assert.Equal(t, "640x480", NewFormat(SubtypeMJPEG, 1, idx, frames...).DefaultFrame().ResolutionString(), "index %d", idx)
	}
	assert.Nil(t, NewFormat(SubtypeMJPEG, 1, 1).DefaultFrame())
}

func TestMarshalRoundTrip(t *testing.T) {
	c, err := Parse(mixedBlob)
	require.NoError(t, err)

	blob, err := json.Marshal(c)
	require.NoError(t, err)

	again, err := ParseBytes(blob)
	require.NoError(t, err)
	assert.Equal(t, c, again)
}

func TestNewSortsEntries(t *testing.T) {
	c := New(
		NewFormat(SubtypeUncompressed, 2, 1,
			NewContinuousFrame(5, 800, 600, 333333, 333333, 666666, 333333),
			NewDiscreteFrame(5, 320, 240, 333333, 666666, 333333),
		),
		NewFormat(SubtypeMJPEG, 1, 1),
	)
	assert.Equal(t, 1, c.Format(0).Index())
	assert.Equal(t, "320x240", c.Format(1).Frame(0).ResolutionString())
	assert.Equal(t, []int{333333, 666666}, c.Format(1).Frame(0).Intervals())
	assert.Equal(t, []int{30, 15}, c.Format(1).Frame(0).FrameRates())
	assert.Equal(t, []string{"333333", "666666"}, c.Format(1).Frame(0).IntervalStrings())
}
