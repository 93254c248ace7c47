package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/kevmo314/go-uvcmonitor/pkg/catalog"
)

func newFormatsCommand(a *app) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "formats",
		Short: "Print the formats, resolutions and frame rates the camera supports",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.open(cmd.Context(), nopTarget{})
			if err != nil {
				return err
			}
			defer s.Close()

			cat, err := s.SupportedCatalog()
			if err != nil {
				return err
			}
			if asJSON {
				data, err := json.MarshalIndent(cat, "", "  ")
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
				return err
			}
			id, err := s.DeviceIdentity()
			if err != nil {
				return err
			}
			printCatalog(cmd.OutOrStdout(), id, cat)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the descriptor description instead of a summary")
	return cmd
}

func printCatalog(w io.Writer, id string, cat *catalog.Catalog) {
	fmt.Fprintf(w, "=== Device %s ===\n", id)
	if cat.NumFormats() == 0 {
		fmt.Fprintln(w, "no supported formats")
		return
	}
	for _, f := range cat.Formats() {
		label := f.Label()
		if !f.Subtype().Known() {
			label = fmt.Sprintf("%s (subtype %#x)", label, uint8(f.Subtype()))
		}
		fmt.Fprintf(w, "\nFormat %d: %s\n", f.Index(), label)
		if def := f.DefaultFrame(); def != nil {
			fmt.Fprintf(w, "  Default frame %d: %s\n", f.DefaultFrameIndex(), def.ResolutionString())
		}
		for _, fr := range f.Frames() {
			fmt.Fprintf(w, "  Frame %s\n", fr.ResolutionString())
			fmt.Fprintf(w, "    DefaultFrameInterval: %v (%d fps)\n",
				time.Duration(fr.DefaultInterval())*catalog.IntervalUnit, catalog.FrameRate(fr.DefaultInterval()))
			if fr.IsContinuous() {
				fmt.Fprintf(w, "    Continuous intervals: %d - %d step %d\n", fr.MinInterval(), fr.MaxInterval(), fr.IntervalStep())
				continue
			}
			rates := make([]string, 0, fr.NumIntervals())
			for _, r := range fr.FrameRates() {
				rates = append(rates, fmt.Sprintf("%d fps", r))
			}
			fmt.Fprintf(w, "    Discrete intervals: %s\n", strings.Join(rates, " "))
		}
	}
}
