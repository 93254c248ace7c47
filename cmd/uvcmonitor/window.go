package main

import (
	"context"
	"image"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

const windowWidth = 640

// window shows the card target in an ebiten window. Frames are handed over from the
// controller's goroutines and uploaded in Update, which runs on the render thread.
type window struct {
	mu      sync.Mutex
	pending image.Image

	frame *ebiten.Image
	keys  func(r rune) bool
	quit  bool
}

func (w *window) show(img image.Image) {
	w.mu.Lock()
	w.pending = img
	w.mu.Unlock()
}

func (w *window) Update() error {
	w.mu.Lock()
	img := w.pending
	w.pending = nil
	w.mu.Unlock()
	if img != nil {
		w.frame = ebiten.NewImageFromImage(img)
		ebiten.SetWindowSize(img.Bounds().Dx(), img.Bounds().Dy())
	}

	for key, r := range map[ebiten.Key]rune{
		ebiten.KeyP: 'p',
		ebiten.KeyS: 's',
		ebiten.KeyA: 'a',
		ebiten.KeyQ: 'q',
	} {
		if inpututil.IsKeyJustPressed(key) {
			w.keys(r)
		}
	}
	if w.quit {
		return ebiten.Termination
	}
	return nil
}

func (w *window) Draw(screen *ebiten.Image) {
	if w.frame != nil {
		screen.DrawImage(w.frame, &ebiten.DrawImageOptions{})
	}
}

func (w *window) Layout(outsideWidth, outsideHeight int) (int, int) {
	if w.frame == nil {
		return windowWidth, windowWidth * 3 / 4
	}
	return w.frame.Bounds().Dx(), w.frame.Bounds().Dy()
}

func (a *app) runWindowPreview(ctx context.Context) error {
	w := &window{}
	target := newCardTarget(windowWidth, w.show)
	s, err := a.open(ctx, target)
	if err != nil {
		return err
	}
	defer s.Close()

	w.keys = a.sessionKeys(ctx, s, func() { w.quit = true })

	title := "uvcmonitor"
	if id, err := s.DeviceIdentity(); err == nil {
		title += " " + id
	}
	ebiten.SetWindowTitle(title)
	a.logger.Info(previewHelp)
	return ebiten.RunGame(w)
}
