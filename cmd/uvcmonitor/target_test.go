package main

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCardTarget(t *testing.T) {
	var shown []image.Image
	target := newCardTarget(64, func(img image.Image) { shown = append(shown, img) })

	s1, err := target.AcquireSurface()
	require.NoError(t, err)
	require.Len(t, shown, 1)
	assert.Equal(t, image.Rect(0, 0, 64, 48), shown[0].Bounds())
	assert.Equal(t, color.RGBA{0xc0, 0xc0, 0xc0, 0xff}, shown[0].At(0, 0))

	target.SetAspectRatio(1280, 720)
	require.Len(t, shown, 2)
	assert.Equal(t, image.Rect(0, 0, 64, 36), shown[1].Bounds())

	s2, err := target.AcquireSurface()
	require.NoError(t, err)
	assert.Equal(t, 2, target.Live())

	// releasing a replaced surface leaves the live one on screen
	require.NoError(t, s1.Release())
	assert.Len(t, shown, 3)
	assert.Equal(t, 2, target.Live())

	require.NoError(t, s2.Release())
	require.Len(t, shown, 4)
	assert.Equal(t, 0, target.Live())
	assert.Equal(t, color.RGBA{0, 0, 0, 0xff}, shown[3].At(0, 0))

	assert.ErrorIs(t, s2.Release(), errSurfaceReleased)
}

func TestCardTargetIgnoresEmptyAspectRatio(t *testing.T) {
	calls := 0
	target := newCardTarget(64, func(image.Image) { calls++ })
	target.SetAspectRatio(0, 720)
	assert.Zero(t, calls)
}
