package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kevmo314/go-uvcmonitor/pkg/catalog"
	"github.com/kevmo314/go-uvcmonitor/pkg/prefs"
)

func testCatalog() *catalog.Catalog {
	return catalog.New(
		catalog.NewFormat(catalog.SubtypeMJPEG, 2, 1,
			catalog.NewDiscreteFrame(7, 1920, 1080, 333333, 333333, 666666),
			catalog.NewDiscreteFrame(7, 1280, 720, 333333, 500000, 333333, 166666),
		),
		catalog.NewFormat(catalog.SubtypeUncompressed, 1, 1,
			catalog.NewContinuousFrame(5, 640, 480, 333333, 333333, 1000000, 333333),
		),
	)
}

func TestFrameRates(t *testing.T) {
	cat := testCatalog()

	mjpeg := cat.Format(1)
	assert.Equal(t, []int{60, 30, 20}, frameRates(mjpeg.Frame(0)))

	yuyv := cat.Format(0)
	assert.Equal(t, []int{30, 10}, frameRates(yuyv.Frame(0)))
}

func TestValidate(t *testing.T) {
	cat := testCatalog()

	require.NoError(t, validate(cat, prefs.New(1, 2, catalog.FrameFormatMJPEG, 1280, 720, 20)))
	require.NoError(t, validate(cat, prefs.New(1, 2, catalog.FrameFormatYUYV, 640, 480, 10)))

	assert.Error(t, validate(catalog.New(), prefs.New(1, 2, catalog.FrameFormatMJPEG, 1280, 720, 30)))
	assert.Error(t, validate(cat, prefs.New(1, 2, catalog.FrameFormatMJPEG, 640, 480, 30)))
	assert.Error(t, validate(cat, prefs.New(1, 2, catalog.FrameFormatMJPEG, 1920, 1080, 60)))
}

func TestSelectionStartsAtPreferences(t *testing.T) {
	sel := newSelection(testCatalog(), prefs.New(1, 2, catalog.FrameFormatMJPEG, 1920, 1080, 15))

	assert.Equal(t, 1, sel.format)
	assert.Equal(t, 1, sel.frame)
	assert.Equal(t, 1, sel.rate)

	p, ok := sel.Preferences(1, 2)
	require.True(t, ok)
	assert.Equal(t, prefs.New(1, 2, catalog.FrameFormatMJPEG, 1920, 1080, 15), p)
}

func TestSelectionFallsBackToFirstEntry(t *testing.T) {
	sel := newSelection(testCatalog(), prefs.New(1, 2, catalog.FrameFormatMJPEG, 800, 600, 25))

	assert.Equal(t, 1, sel.format)
	assert.Equal(t, 0, sel.frame)
	assert.Equal(t, 0, sel.rate)
}

func TestSelectionResetsDownstream(t *testing.T) {
	sel := newSelection(testCatalog(), prefs.New(1, 2, catalog.FrameFormatMJPEG, 1920, 1080, 15))

	sel.SelectFrame(0)
	assert.Equal(t, 0, sel.rate)
	p, ok := sel.Preferences(1, 2)
	require.True(t, ok)
	assert.Equal(t, "1280x720", p.ResolutionString())
	assert.Equal(t, 60, p.FrameRate)

	sel.SelectRate(2)
	sel.SelectFormat(0)
	assert.Equal(t, 0, sel.frame)
	assert.Equal(t, 0, sel.rate)
	p, ok = sel.Preferences(1, 2)
	require.True(t, ok)
	assert.Equal(t, catalog.FrameFormatYUYV, p.FrameFormat)
	assert.Equal(t, 30, p.FrameRate)
}

func TestSelectionEmptyCatalog(t *testing.T) {
	sel := newSelection(catalog.New(), prefs.New(1, 2, catalog.FrameFormatMJPEG, 1280, 720, 30))

	assert.Nil(t, sel.Format())
	assert.Nil(t, sel.Frame())
	assert.Empty(t, sel.Rates())
	_, ok := sel.Preferences(1, 2)
	assert.False(t, ok)
}
