package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kevmo314/go-uvcmonitor/pkg/catalog"
	"github.com/kevmo314/go-uvcmonitor/pkg/prefs"
)

func newPrefsCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prefs",
		Short: "Read or write the stored stream selection of the camera",
	}
	cmd.AddCommand(newPrefsGetCommand(a), newPrefsSetCommand(a), newPrefsDeleteCommand(a))
	return cmd
}

func newPrefsGetCommand(a *app) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "get",
		Short: "Print the stored preferences",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.open(cmd.Context(), nopTarget{})
			if err != nil {
				return err
			}
			defer s.Close()

			id, err := s.DeviceIdentity()
			if err != nil {
				return err
			}
			p, err := s.store.Load(cmd.Context(), id)
			if errors.Is(err, prefs.ErrNotFound) {
				fmt.Fprintf(cmd.OutOrStdout(), "no preferences stored for %s\n", id)
				return nil
			}
			if err != nil {
				return err
			}
			if asJSON {
				data, err := json.MarshalIndent(p, "", "  ")
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "device:     %s\n", p.Key())
			fmt.Fprintf(cmd.OutOrStdout(), "format:     %s\n", p.FrameFormatString())
			fmt.Fprintf(cmd.OutOrStdout(), "resolution: %s\n", p.ResolutionString())
			fmt.Fprintf(cmd.OutOrStdout(), "frame rate: %s\n", p.FrameRateString())
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the stored record")
	return cmd
}

func newPrefsSetCommand(a *app) *cobra.Command {
	var (
		format     string
		resolution string
		frameRate  string
		apply      bool
	)
	cmd := &cobra.Command{
		Use:   "set",
		Short: "Store a format, resolution and frame rate for the camera",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			frameFormat, err := catalog.ParseFrameFormat(format)
			if err != nil {
				return err
			}

			s, err := a.open(cmd.Context(), nopTarget{})
			if err != nil {
				return err
			}
			defer s.Close()

			active, err := s.ActivePreferences()
			if err != nil {
				return err
			}
			p, err := prefs.Parse(active.VendorID, active.ProductID, frameFormat, resolution, frameRate)
			if err != nil {
				return err
			}
			cat, err := s.SupportedCatalog()
			if err != nil {
				return err
			}
			if err := validate(cat, p); err != nil {
				return err
			}
			if err := s.store.Save(cmd.Context(), &p); err != nil {
				return err
			}
			a.logger.Info("preferences stored", "preferences", p.String())

			if apply {
				return s.ApplyPreferences(cmd.Context())
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&format, "format", catalog.FrameFormatMJPEG.String(), "frame format, YUYV or MJPEG")
	cmd.Flags().StringVar(&resolution, "resolution", "", "resolution as WxH")
	cmd.Flags().StringVar(&frameRate, "fps", "", "frame rate")
	cmd.Flags().BoolVar(&apply, "apply", false, "negotiate the stored selection with the camera")
	cmd.MarkFlagRequired("resolution")
	cmd.MarkFlagRequired("fps")
	return cmd
}

func newPrefsDeleteCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete",
		Short: "Forget the stored preferences",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.open(cmd.Context(), nopTarget{})
			if err != nil {
				return err
			}
			defer s.Close()

			id, err := s.DeviceIdentity()
			if err != nil {
				return err
			}
			return s.store.Delete(cmd.Context(), id)
		},
	}
}
