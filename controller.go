package uvcmonitor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/kevmo314/go-uvcmonitor/pkg/catalog"
	"github.com/kevmo314/go-uvcmonitor/pkg/prefs"
)

// Controller owns at most one open Device and one display Surface. Every method,
// queries included, runs under a single lock, so a Controller can be shared between
// goroutines but never runs two operations at once.
type Controller struct {
	mu sync.Mutex

	driver     Driver
	target     RenderTarget
	store      prefs.Store
	logger     *slog.Logger
	registerer prometheus.Registerer
	metrics    *metrics

	session    uuid.UUID
	device     Device
	surface    Surface
	previewing bool
	catalog    *catalog.Catalog
	active     prefs.Preferences
}

func NewController(driver Driver, target RenderTarget, opts ...Option) *Controller {
	c := &Controller{
		driver: driver,
		target: target,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.registerer == nil {
		c.registerer = prometheus.NewRegistry()
	}
	c.metrics = newMetrics(c.registerer)
	return c
}

func (c *Controller) log() *slog.Logger {
	if c.device == nil {
		return c.logger
	}
	return c.logger.With("session", c.session.String(), "device", c.device.Identity())
}

// Open binds fd to a new device, destroying the current one first. On failure the
// controller is closed. The capability catalog is read from the device; a missing or
// malformed description leaves it empty.
func (c *Controller) Open(fd uintptr) (err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	defer func() { c.metrics.observe("open", err) }()

	if c.device != nil {
		c.releaseDevice(true)
	}

	dev, err := c.driver.Open(fd)
	if err == nil && dev == nil {
		err = errors.New("driver returned no device")
	}
	if err != nil {
		return &DeviceError{Op: "open", Err: err}
	}
	c.device = dev
	c.session = uuid.New()
	c.catalog = c.readCatalog()
	c.active = c.defaultPreferences()

	c.log().Debug("device opened", "formats", c.catalog.NumFormats(), "preferences", c.active.String())
	return nil
}

func (c *Controller) readCatalog() *catalog.Catalog {
	blob, err := c.device.RawDescriptorBlob()
	if err != nil {
		c.log().Warn("failed to read descriptor blob", "error", err)
		return catalog.New()
	}
	cat, err := catalog.Parse(blob)
	if err != nil {
		c.log().Warn("failed to parse descriptor blob", "error", err)
	}
	return cat
}

// defaultPreferences describes the default frame of the first format at its default
// interval.
func (c *Controller) defaultPreferences() prefs.Preferences {
	vid, pid, err := prefs.ParseKey(c.device.Identity())
	if err != nil {
		c.log().Warn("device identity is not vendor-product", "error", err)
	}
	p := prefs.New(vid, pid, catalog.DefaultFrameFormat, 0, 0, 0)
	if c.catalog.NumFormats() == 0 {
		return p
	}
	format := c.catalog.Format(0)
	frame := format.DefaultFrame()
	if frame == nil {
		return p
	}
	p.FrameFormat = format.FrameFormat()
	p.Width, p.Height = frame.Width(), frame.Height()
	p.FrameRate = catalog.FrameRate(frame.DefaultInterval())
	return p
}

// Close releases the device. It is a no-op when nothing is open. The surface is kept.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.metrics.observe("close", nil)

	if c.device != nil {
		c.releaseDevice(false)
	}
}

// Destroy releases the device and the surface. It may be called any number of times
// from any state.
func (c *Controller) Destroy() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.metrics.observe("destroy", nil)

	if c.device != nil {
		c.releaseDevice(true)
	}
	c.releaseSurface()
}

func (c *Controller) releaseDevice(destroy bool) {
	if c.previewing {
		c.stopStream()
	}
	logger := c.log()
	var err error
	if destroy {
		err = c.device.Destroy()
	} else {
		err = c.device.Close()
	}
	if err != nil {
		logger.Warn("failed to release device", "destroy", destroy, "error", err)
	}
	logger.Debug("device released", "destroy", destroy)

	c.device = nil
	c.session = uuid.Nil
	c.catalog = nil
	c.active = prefs.Preferences{}
}

func (c *Controller) releaseSurface() {
	if c.surface == nil {
		return
	}
	if err := c.surface.Release(); err != nil {
		c.log().Warn("failed to release surface", "error", err)
	}
	c.surface = nil
	c.metrics.surfaces.Dec()
}

func (c *Controller) stopStream() {
	if err := c.device.StopStream(); err != nil {
		c.log().Warn("failed to stop stream", "error", err)
	}
	c.previewing = false
	c.metrics.setPreviewing(false)
}

// ApplyPreferences stops any preview and configures the device from the preferences
// stored under its identity. It does nothing when no device is open, when there is no
// store, or when nothing is stored. A malformed record returns a *prefs.ConfigError, a
// failing store its own error and a rejected configuration a *DeviceError; none of them
// touches the open device.
func (c *Controller) ApplyPreferences(ctx context.Context) (err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	defer func() { c.metrics.observe("apply_preferences", err) }()

	if c.device == nil {
		return nil
	}
	if c.previewing {
		c.stopStream()
	}
	if c.store == nil {
		return nil
	}

	key := c.device.Identity()
	p, err := c.store.Load(ctx, key)
	if errors.Is(err, prefs.ErrNotFound) {
		c.log().Debug("no stored preferences")
		return nil
	}
	if err != nil {
		var cerr *prefs.ConfigError
		if errors.As(err, &cerr) {
			return err
		}
		// the record may be fine; only decode failures are config errors
		return fmt.Errorf("uvcmonitor: load preferences %s: %w", key, err)
	}
	if p.Key() != key {
		return &prefs.ConfigError{Key: key, Err: fmt.Errorf("stored record belongs to %s", p.Key())}
	}

	if err := c.device.SetPreviewConfig(p.FrameFormat, p.Width, p.Height, p.FrameRate); err != nil {
		return &DeviceError{Op: "apply preferences", Err: err}
	}
	c.target.SetAspectRatio(p.Width, p.Height)
	c.active = *p

	c.log().Debug("preferences applied", "preferences", p.String())
	return nil
}

// StartPreview replaces the surface with a new one from the render target and, when a
// device is open, streams to it. Without a device the surface is still acquired and
// kept for a later StartPreview. The previous stream and surface are released before
// the new surface is acquired, so a failure leaves the session opened, not previewing.
func (c *Controller) StartPreview() (err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	defer func() { c.metrics.observe("start_preview", err) }()

	if c.previewing {
		c.stopStream()
	}
	c.releaseSurface()

	surface, err := c.target.AcquireSurface()
	if err != nil {
		return &DeviceError{Op: "acquire surface", Err: err}
	}
	c.surface = surface
	c.metrics.surfaces.Inc()

	if c.device == nil {
		c.log().Debug("surface acquired without device")
		return nil
	}
	if err := c.device.StartStream(surface); err != nil {
		return &DeviceError{Op: "start stream", Err: err}
	}
	c.previewing = true
	c.metrics.setPreviewing(true)

	c.log().Debug("preview started")
	return nil
}

// StopPreview stops streaming but keeps the surface for reuse. It is a no-op unless
// previewing.
func (c *Controller) StopPreview() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.metrics.observe("stop_preview", nil)

	if c.device == nil || !c.previewing {
		return
	}
	c.stopStream()
	c.log().Debug("preview stopped")
}

func (c *Controller) IsOpened() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.device != nil
}

func (c *Controller) IsPreviewing() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.device != nil && c.previewing
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch {
	case c.device == nil:
		return StateClosed
	case c.previewing:
		return StatePreviewing
	}
	return StateOpened
}

func (c *Controller) requireOpened(op string) error {
	if c.device != nil {
		return nil
	}
	err := &StateError{Op: op, State: StateClosed}
	c.metrics.observe(op, err)
	return err
}

// DeviceIdentity returns "{vendorId}-{productId}" of the open device.
func (c *Controller) DeviceIdentity() (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.requireOpened("device_identity"); err != nil {
		return "", err
	}
	return c.device.Identity(), nil
}

func (c *Controller) SupportedCatalog() (*catalog.Catalog, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.requireOpened("supported_catalog"); err != nil {
		return nil, err
	}
	return c.catalog, nil
}

// ActivePreferences returns the configuration last applied to the device, or the
// catalog default when none has been applied since Open.
func (c *Controller) ActivePreferences() (prefs.Preferences, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.requireOpened("active_preferences"); err != nil {
		return prefs.Preferences{}, err
	}
	return c.active, nil
}
