package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
	"github.com/spf13/cobra"

	"github.com/kevmo314/go-uvcmonitor/pkg/catalog"
	"github.com/kevmo314/go-uvcmonitor/pkg/prefs"
)

func newSettingsCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "settings",
		Short: "Choose the format, resolution and frame rate of the camera",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runSettings(cmd.Context())
		},
	}
}

func (a *app) runSettings(ctx context.Context) error {
	s, err := a.open(ctx, nopTarget{})
	if err != nil {
		return err
	}
	defer s.Close()

	cat, err := s.SupportedCatalog()
	if err != nil {
		return err
	}
	active, err := s.ActivePreferences()
	if err != nil {
		return err
	}
	current := active
	stored, err := s.store.Load(ctx, active.Key())
	switch {
	case err == nil:
		current = *stored
	case !errors.Is(err, prefs.ErrNotFound):
		return err
	}
	sel := newSelection(cat, current)

	ui := tview.NewApplication()

	formats := tview.NewList().ShowSecondaryText(false)
	formats.SetBorder(true).SetTitle("Format")

	frames := tview.NewList().ShowSecondaryText(false)
	frames.SetBorder(true).SetTitle("Resolution")

	rates := tview.NewList().ShowSecondaryText(false)
	rates.SetBorder(true).SetTitle("Frame rate")

	logText := tview.NewTextView()
	logText.SetMaxLines(10).SetBorder(true).SetTitle("Log")
	if err := a.setLogOutput(logText); err != nil {
		return err
	}

	save := func() {
		p, ok := sel.Preferences(active.VendorID, active.ProductID)
		if !ok {
			return
		}
		if err := s.store.Save(ctx, &p); err != nil {
			a.logger.Error("failed to store preferences", "error", err)
			return
		}
		a.logger.Info("preferences stored", "preferences", p.String())
	}

	var fillFrames, fillRates func()
	fillRates = func() {
		rates.Clear()
		for _, r := range sel.Rates() {
			rates.AddItem(strconv.Itoa(r)+" fps", "", 0, nil)
		}
		rates.SetCurrentItem(sel.rate)
	}
	fillFrames = func() {
		frames.Clear()
		if f := sel.Format(); f != nil {
			for _, res := range f.ResolutionStrings() {
				frames.AddItem(res, "", 0, nil)
			}
		}
		frames.SetCurrentItem(sel.frame)
		fillRates()
	}

	for _, f := range cat.Formats() {
		formats.AddItem(formatTitle(f), "", 0, nil)
	}
	formats.SetCurrentItem(sel.format)
	fillFrames()

	formats.SetSelectedFunc(func(i int, _, _ string, _ rune) {
		sel.SelectFormat(i)
		fillFrames()
		save()
		ui.SetFocus(frames)
	})
	frames.SetSelectedFunc(func(i int, _, _ string, _ rune) {
		sel.SelectFrame(i)
		fillRates()
		save()
		ui.SetFocus(rates)
	})
	rates.SetSelectedFunc(func(i int, _, _ string, _ rune) {
		sel.SelectRate(i)
		save()
		ui.SetFocus(formats)
	})

	ui.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch {
		case event.Key() == tcell.KeyEscape, event.Rune() == 'q':
			ui.Stop()
			return nil
		case event.Key() == tcell.KeyTab:
			switch {
			case formats.HasFocus():
				ui.SetFocus(frames)
			case frames.HasFocus():
				ui.SetFocus(rates)
			default:
				ui.SetFocus(formats)
			}
			return nil
		}
		return event
	})

	if cat.NumFormats() == 0 {
		a.logger.Warn("the camera reported no formats")
	}

	lists := tview.NewFlex().
		AddItem(formats, 0, 1, true).
		AddItem(frames, 0, 1, false).
		AddItem(rates, 0, 1, false)
	root := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(lists, 0, 1, true).
		AddItem(logText, 10, 0, false)
	return ui.SetRoot(root, true).Run()
}

func formatTitle(f *catalog.Format) string {
	return fmt.Sprintf("%s (%d frames)", f.Label(), f.NumFrames())
}
