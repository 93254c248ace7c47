package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/sys/unix"

	uvcmonitor "github.com/kevmo314/go-uvcmonitor"
	"github.com/kevmo314/go-uvcmonitor/internal/config"
	"github.com/kevmo314/go-uvcmonitor/internal/logging"
	"github.com/kevmo314/go-uvcmonitor/pkg/prefs"
	"github.com/kevmo314/go-uvcmonitor/pkg/usbdevice"
)

type app struct {
	configFile string
	devicePath string

	cfg    *config.Config
	logger *slog.Logger
}

func newRootCommand() *cobra.Command {
	a := &app{}
	cmd := &cobra.Command{
		Use:          "uvcmonitor",
		Short:        "Inspect a UVC camera and manage its preview settings",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load(cmd.ErrOrStderr())
		},
	}
	cmd.PersistentFlags().StringVar(&a.configFile, "config", "", "config file (default: search for config.yaml)")
	cmd.PersistentFlags().StringVarP(&a.devicePath, "path", "p", "", "path to the usb device, overrides device.path")

	cmd.AddCommand(
		newFormatsCommand(a),
		newPrefsCommand(a),
		newSettingsCommand(a),
		newPreviewCommand(a),
	)
	return cmd
}

func (a *app) load(logOutput io.Writer) error {
	cfg, err := config.Load(a.configFile)
	if err != nil {
		return err
	}
	if a.devicePath != "" {
		cfg.DevicePath = a.devicePath
	}
	a.cfg = cfg
	return a.setLogOutput(logOutput)
}

// setLogOutput rebuilds the logger; the screens redirect it into their log pane.
func (a *app) setLogOutput(w io.Writer) error {
	logger, err := logging.New(a.cfg.LogLevel, a.cfg.LogFormat, w)
	if err != nil {
		return err
	}
	a.logger = logger
	return nil
}

// session is an opened controller together with what it was opened from.
type session struct {
	*uvcmonitor.Controller
	store prefs.Store

	fd         int
	closeStore func() error
}

func (a *app) open(ctx context.Context, target uvcmonitor.RenderTarget) (*session, error) {
	if a.cfg.DevicePath == "" {
		return nil, errors.New("no device path: set --path or device.path")
	}
	store, closeStore, err := a.cfg.Store(ctx)
	if err != nil {
		return nil, err
	}
	fd, err := unix.Open(a.cfg.DevicePath, unix.O_RDWR|unix.O_CLOEXEC, 0)
	if err != nil {
		closeStore()
		return nil, &os.PathError{Op: "open", Path: a.cfg.DevicePath, Err: err}
	}

	driver := usbdevice.NewDriver(usbdevice.WithLogger(a.logger))
	ctrl := uvcmonitor.NewController(driver, target,
		uvcmonitor.WithStore(store),
		uvcmonitor.WithLogger(a.logger))
	if err := ctrl.Open(uintptr(fd)); err != nil {
		unix.Close(fd)
		closeStore()
		return nil, err
	}
	a.logger.Debug("opened", "path", a.cfg.DevicePath, "backend", a.cfg.PrefsBackend)
	return &session{Controller: ctrl, store: store, fd: fd, closeStore: closeStore}, nil
}

func (s *session) Close() error {
	s.Destroy()
	// the usb handle may already have closed the descriptor
	err := unix.Close(s.fd)
	if errors.Is(err, unix.EBADF) {
		err = nil
	}
	return errors.Join(err, s.closeStore())
}

// nopTarget is the render target of commands that never preview.
type nopTarget struct{}

func (nopTarget) AcquireSurface() (uvcmonitor.Surface, error) {
	return nil, errors.New("no display")
}

func (nopTarget) SetAspectRatio(width, height int) {}
