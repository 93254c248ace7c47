package main

import (
	"context"
	"fmt"
	"image"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
	"github.com/spf13/cobra"

	uvcmonitor "github.com/kevmo314/go-uvcmonitor"
)

const previewHelp = "[p] start preview  [s] stop preview  [a] apply preferences  [q] quit"

func newPreviewCommand(a *app) *cobra.Command {
	var window bool
	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Drive the camera session through preview",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if window {
				return a.runWindowPreview(cmd.Context())
			}
			return a.runPreview(cmd.Context())
		},
	}
	cmd.Flags().BoolVar(&window, "window", false, "show the preview in a window (requires a display)")
	return cmd
}

// sessionKeys maps the preview keys onto controller operations. Operations run on
// their own goroutine so the screen keeps drawing while the device negotiates.
func (a *app) sessionKeys(ctx context.Context, s *session, done func()) func(r rune) bool {
	run := func(name string, op func() error) {
		go func() {
			if err := op(); err != nil {
				a.logger.Error(name+" failed", "error", err)
				return
			}
			a.logger.Info(name, "state", s.State().String())
		}()
	}
	return func(r rune) bool {
		switch r {
		case 'p':
			run("start preview", s.StartPreview)
		case 's':
			run("stop preview", func() error { s.StopPreview(); return nil })
		case 'a':
			run("apply preferences", func() error { return s.ApplyPreferences(ctx) })
		case 'q':
			s.Destroy()
			done()
		default:
			return false
		}
		return true
	}
}

func (a *app) runPreview(ctx context.Context) error {
	ui := tview.NewApplication()

	preview := tview.NewImage()
	preview.SetColors(256).SetDithering(tview.DitheringNone).SetBorder(true).SetTitle("Preview")

	status := tview.NewTextView().SetText(previewHelp)
	status.SetBorder(true).SetTitle("Session")

	logText := tview.NewTextView()
	logText.SetMaxLines(10).SetBorder(true).SetTitle("Log")
	if err := a.setLogOutput(logText); err != nil {
		return err
	}

	target := newCardTarget(64, func(img image.Image) {
		ui.QueueUpdateDraw(func() {
			preview.SetImage(img)
		})
	})
	s, err := a.open(ctx, target)
	if err != nil {
		return err
	}
	defer s.Close()

	if id, err := s.DeviceIdentity(); err == nil {
		status.SetTitle(fmt.Sprintf("Session %s", id))
	}
	keys := a.sessionKeys(ctx, s, ui.Stop)
	ui.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		if event.Key() == tcell.KeyEscape {
			keys('q')
			return nil
		}
		if keys(event.Rune()) {
			return nil
		}
		return event
	})

	root := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(preview, 0, 1, false).
		AddItem(status, 3, 0, false).
		AddItem(logText, 10, 0, false)
	return ui.SetRoot(root, true).Run()
}

var _ uvcmonitor.RenderTarget = (*cardTarget)(nil)
