package main

import (
	"fmt"
	"slices"

	"github.com/kevmo314/go-uvcmonitor/pkg/catalog"
	"github.com/kevmo314/go-uvcmonitor/pkg/prefs"
)

// frameRates lists the selectable rates of a frame, fastest first. A continuous
// frame offers its bounds and its default.
func frameRates(fr *catalog.Frame) []int {
	var rates []int
	if fr.IsContinuous() {
		rates = []int{
			catalog.FrameRate(fr.MinInterval()),
			catalog.FrameRate(fr.DefaultInterval()),
			catalog.FrameRate(fr.MaxInterval()),
		}
	} else {
		rates = fr.FrameRates()
	}
	slices.Sort(rates)
	slices.Reverse(rates)
	return slices.Compact(rates)
}

// validate checks that p names a format, resolution and frame rate cat offers.
func validate(cat *catalog.Catalog, p prefs.Preferences) error {
	fi, ok := cat.LookupFormat(p.FrameFormat)
	if !ok {
		return fmt.Errorf("format %s not supported, have %v", p.FrameFormat, cat.FormatLabels())
	}
	format := cat.Format(fi)
	ri, ok := format.LookupFrame(p.ResolutionString())
	if !ok {
		return fmt.Errorf("resolution %s not supported by %s, have %v", p.ResolutionString(), format.Label(), format.ResolutionStrings())
	}
	rates := frameRates(format.Frame(ri))
	if !slices.Contains(rates, p.FrameRate) {
		return fmt.Errorf("%d fps not supported at %s, have %v", p.FrameRate, p.ResolutionString(), rates)
	}
	return nil
}

// selection tracks the list positions of the settings screen for one format, frame
// and rate.
type selection struct {
	cat    *catalog.Catalog
	format int
	frame  int
	rate   int
}

// newSelection positions the lists on p, falling back to the first entry of each list
// that has no match.
func newSelection(cat *catalog.Catalog, p prefs.Preferences) *selection {
	s := &selection{cat: cat}
	if cat.NumFormats() == 0 {
		return s
	}
	s.format = cat.FindFormat(p.FrameFormat)
	s.frame = s.Format().FindFrame(p.ResolutionString())
	if fr := s.Frame(); fr != nil {
		s.rate = max(0, slices.Index(frameRates(fr), p.FrameRate))
	}
	return s
}

func (s *selection) Format() *catalog.Format {
	if s.cat.NumFormats() == 0 {
		return nil
	}
	return s.cat.Format(s.format)
}

func (s *selection) Frame() *catalog.Frame {
	f := s.Format()
	if f == nil || f.NumFrames() == 0 {
		return nil
	}
	return f.Frame(s.frame)
}

func (s *selection) Rates() []int {
	fr := s.Frame()
	if fr == nil {
		return nil
	}
	return frameRates(fr)
}

// SelectFormat resets the frame and rate to their first entries.
func (s *selection) SelectFormat(i int) {
	s.format, s.frame, s.rate = i, 0, 0
}

// SelectFrame resets the rate to its first entry.
func (s *selection) SelectFrame(i int) {
	s.frame, s.rate = i, 0
}

func (s *selection) SelectRate(i int) {
	s.rate = i
}

// Preferences describes the current position for the given device.
func (s *selection) Preferences(vendorID, productID int) (prefs.Preferences, bool) {
	fr := s.Frame()
	rates := s.Rates()
	if fr == nil || s.rate >= len(rates) {
		return prefs.Preferences{}, false
	}
	return prefs.New(vendorID, productID, s.Format().FrameFormat(), fr.Width(), fr.Height(), rates[s.rate]), true
}
