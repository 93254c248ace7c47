package main

import (
	"errors"
	"image"
	"image/color"
	"sync"

	"golang.org/x/image/draw"

	uvcmonitor "github.com/kevmo314/go-uvcmonitor"
)

// colorBars is the source of the test card, one pixel per bar.
var colorBars = []color.RGBA{
	{0xc0, 0xc0, 0xc0, 0xff},
	{0xc0, 0xc0, 0x00, 0xff},
	{0x00, 0xc0, 0xc0, 0xff},
	{0x00, 0xc0, 0x00, 0xff},
	{0xc0, 0x00, 0xc0, 0xff},
	{0xc0, 0x00, 0x00, 0xff},
	{0x00, 0x00, 0xc0, 0xff},
}

var errSurfaceReleased = errors.New("surface released")

// cardTarget is a render target that stands in for decoded video: while a surface is
// live it shows color bars at the negotiated aspect ratio, otherwise a blank frame.
type cardTarget struct {
	mu      sync.Mutex
	width   int
	aspectW int
	aspectH int
	live    *cardSurface
	next    int

	show func(image.Image)
}

func newCardTarget(width int, show func(image.Image)) *cardTarget {
	return &cardTarget{width: width, aspectW: 4, aspectH: 3, show: show}
}

type cardSurface struct {
	target   *cardTarget
	id       int
	released bool
}

func (t *cardTarget) AcquireSurface() (uvcmonitor.Surface, error) {
	t.mu.Lock()
	t.next++
	s := &cardSurface{target: t, id: t.next}
	t.live = s
	img := t.render()
	t.mu.Unlock()

	t.show(img)
	return s, nil
}

func (t *cardTarget) SetAspectRatio(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	t.mu.Lock()
	t.aspectW, t.aspectH = width, height
	img := t.render()
	t.mu.Unlock()

	t.show(img)
}

// Live returns the id of the surface currently shown, or 0.
func (t *cardTarget) Live() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.live == nil {
		return 0
	}
	return t.live.id
}

func (s *cardSurface) Release() error {
	t := s.target
	t.mu.Lock()
	if s.released {
		t.mu.Unlock()
		return errSurfaceReleased
	}
	s.released = true
	if t.live != s {
		t.mu.Unlock()
		return nil
	}
	t.live = nil
	img := t.render()
	t.mu.Unlock()

	t.show(img)
	return nil
}

// render draws the current frame. t.mu must be held.
func (t *cardTarget) render() *image.RGBA {
	h := max(1, t.width*t.aspectH/t.aspectW)
	dst := image.NewRGBA(image.Rect(0, 0, t.width, h))
	if t.live == nil {
		draw.Draw(dst, dst.Bounds(), image.Black, image.Point{}, draw.Src)
		return dst
	}
	src := image.NewRGBA(image.Rect(0, 0, len(colorBars), 1))
	for x, c := range colorBars {
		src.SetRGBA(x, 0, c)
	}
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return dst
}
