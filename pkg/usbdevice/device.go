// Package usbdevice implements the session device on top of a usbfs file descriptor
// using go-usb. It decodes the video streaming descriptors itself and negotiates the
// stream with the probe/commit controls; it does not schedule transfers.
package usbdevice

import (
	"encoding/binary"
	"encoding/json"
	"log/slog"
	"time"

	usb "github.com/kevmo314/go-usb"
	"github.com/pkg/errors"

	uvcmonitor "github.com/kevmo314/go-uvcmonitor"
	"github.com/kevmo314/go-uvcmonitor/pkg/catalog"
	"github.com/kevmo314/go-uvcmonitor/pkg/descriptors"
	"github.com/kevmo314/go-uvcmonitor/pkg/prefs"
)

const DefaultTimeout = time.Second

// Handle is the part of *usb.DeviceHandle the backend uses.
type Handle interface {
	Close() error
	ClaimInterface(iface uint8) error
	ReleaseInterface(iface uint8) error
	DetachKernelDriver(iface uint8) error
	ControlTransfer(requestType, request uint8, value, index uint16, data []byte, timeout time.Duration) (int, error)
}

type Option func(*Driver)

// WithTimeout bounds every control transfer.
func WithTimeout(timeout time.Duration) Option {
	return func(d *Driver) {
		d.timeout = timeout
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(d *Driver) {
		d.logger = logger
	}
}

type Driver struct {
	timeout time.Duration
	logger  *slog.Logger
	wrap    func(fd int) (Handle, error)
}

func NewDriver(opts ...Option) *Driver {
	d := &Driver{
		timeout: DefaultTimeout,
		logger:  slog.Default(),
		wrap:    wrapSysDevice,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func wrapSysDevice(fd int) (Handle, error) {
	handle, err := usb.WrapSysDevice(fd)
	if err != nil {
		return nil, err
	}
	return handle, nil
}

func (d *Driver) Open(fd uintptr) (uvcmonitor.Device, error) {
	dev, err := d.OpenDevice(fd)
	if err != nil {
		return nil, err
	}
	return dev, nil
}

// OpenDevice is Open returning the concrete device.
func (d *Driver) OpenDevice(fd uintptr) (*Device, error) {
	handle, err := d.wrap(int(fd))
	if err != nil {
		return nil, errors.Wrapf(err, "wrap usb device fd %d", fd)
	}
	dev := &Device{handle: handle, timeout: d.timeout}
	if err := dev.init(); err != nil {
		handle.Close()
		return nil, err
	}
	dev.logger = d.logger.With("device", dev.Identity())
	dev.logger.Debug("usb device opened",
		"uvc", dev.layout.uvc.String(),
		"interface", dev.layout.streamingInterface,
		"formats", len(dev.layout.formats))
	for _, f := range dev.layout.formats {
		if f.Subtype != descriptors.VideoStreamingInterfaceDescriptorSubtypeFormatUncompressed {
			continue
		}
		if fourcc := descriptors.FourCC(f.GUIDFormat); fourcc == "" {
			dev.logger.Warn("uncompressed format with unknown pixel layout", "index", f.FormatIndex, "guid", f.GUIDFormat.String())
		} else {
			dev.logger.Debug("uncompressed format", "index", f.FormatIndex, "fourcc", fourcc, "bpp", f.BitsPerPixel)
		}
	}
	return dev, nil
}

type Device struct {
	handle  Handle
	timeout time.Duration
	logger  *slog.Logger

	vendorID, productID uint16
	layout              *layout
	catalog             *catalog.Catalog

	committed *descriptors.VideoProbeCommitControl
	claimed   bool
	surface   uvcmonitor.Surface
	closed    bool
}

func (d *Device) init() error {
	desc := make([]byte, 18)
	n, err := d.getDescriptor(descriptors.DescriptorTypeDevice, desc)
	if err != nil {
		return errors.Wrap(err, "read device descriptor")
	}
	if n < len(desc) {
		return errors.Errorf("device descriptor is %d bytes", n)
	}
	d.vendorID = binary.LittleEndian.Uint16(desc[8:10])
	d.productID = binary.LittleEndian.Uint16(desc[10:12])

	// the first 9 bytes carry wTotalLength of the whole configuration
	head := make([]byte, 9)
	if n, err = d.getDescriptor(descriptors.DescriptorTypeConfiguration, head); err != nil {
		return errors.Wrap(err, "read configuration descriptor")
	}
	if n < len(head) {
		return errors.Errorf("configuration descriptor is %d bytes", n)
	}
	config := make([]byte, binary.LittleEndian.Uint16(head[2:4]))
	if n, err = d.getDescriptor(descriptors.DescriptorTypeConfiguration, config); err != nil {
		return errors.Wrap(err, "read configuration descriptor")
	}
	if d.layout, err = parseConfiguration(config[:n]); err != nil {
		return err
	}
	d.catalog = d.layout.catalog()
	return nil
}

func (d *Device) getDescriptor(t descriptors.DescriptorType, buf []byte) (int, error) {
	return d.handle.ControlTransfer(
		uint8(RequestTypeStandardDeviceGetRequest),
		uint8(RequestCodeGetDescriptor),
		uint16(t)<<8,
		0,
		buf,
		d.timeout,
	)
}

func (d *Device) Identity() string {
	return prefs.Key(int(d.vendorID), int(d.productID))
}

func (d *Device) VendorID() uint16  { return d.vendorID }
func (d *Device) ProductID() uint16 { return d.productID }

func (d *Device) UVCVersion() descriptors.BinaryCodedDecimal { return d.layout.uvc }

// Formats returns the decoded VS format descriptors in declaration order.
func (d *Device) Formats() []*descriptors.FormatDescriptor {
	formats := make([]*descriptors.FormatDescriptor, len(d.layout.formats))
	for i, f := range d.layout.formats {
		formats[i] = f.FormatDescriptor
	}
	return formats
}

// Catalog is the capability catalog built from the device descriptors.
func (d *Device) Catalog() *catalog.Catalog { return d.catalog }

func (d *Device) RawDescriptorBlob() (string, error) {
	data, err := json.Marshal(d.catalog)
	if err != nil {
		return "", errors.Wrap(err, "encode descriptor blob")
	}
	return string(data), nil
}

// Committed returns the last stream parameters the device accepted, or nil.
func (d *Device) Committed() *descriptors.VideoProbeCommitControl {
	if d.committed == nil {
		return nil
	}
	c := *d.committed
	return &c
}

// SetPreviewConfig negotiates the stream: GET_MAX on probe for the device limits,
// SET_CUR and GET_CUR on probe with the chosen format, frame and interval, then
// SET_CUR on commit with what the device returned.
func (d *Device) SetPreviewConfig(format catalog.FrameFormat, width, height, frameRate int) error {
	if d.closed {
		return errors.New("device closed")
	}
	subtype, ok := format.Subtype()
	if !ok {
		return errors.Errorf("frame format %d has no descriptor", format)
	}
	f := d.layout.findFormat(subtype)
	if f == nil {
		return errors.Errorf("format %s not supported", format)
	}
	fr := f.findFrame(width, height)
	if fr == nil {
		return errors.Errorf("format %s does not support %s", format, catalog.FormatResolution(width, height))
	}
	interval := closestInterval(fr, frameRate)

	buf := make([]byte, descriptors.ProbeCommitSize(d.layout.uvc))
	vpcc := &descriptors.VideoProbeCommitControl{}

	if err := d.streamingControl(RequestCodeGetMax, descriptors.VideoStreamingControlSelectorProbe, buf); err != nil {
		return err
	}
	if err := vpcc.UnmarshalBinary(buf); err != nil {
		return errors.Wrap(err, "decode probe bounds")
	}

	vpcc.HintBitmask = 0x0001 // keep dwFrameInterval fixed
	vpcc.FormatIndex = f.FormatIndex
	vpcc.FrameIndex = fr.FrameIndex
	vpcc.FrameInterval = interval
	if err := vpcc.MarshalInto(buf); err != nil {
		return errors.Wrap(err, "encode probe")
	}

	if err := d.streamingControl(RequestCodeSetCur, descriptors.VideoStreamingControlSelectorProbe, buf); err != nil {
		return err
	}
	if err := d.streamingControl(RequestCodeGetCur, descriptors.VideoStreamingControlSelectorProbe, buf); err != nil {
		return err
	}
	if err := d.streamingControl(RequestCodeSetCur, descriptors.VideoStreamingControlSelectorCommit, buf); err != nil {
		return err
	}
	if err := vpcc.UnmarshalBinary(buf); err != nil {
		return errors.Wrap(err, "decode commit")
	}
	d.committed = vpcc

	d.logger.Debug("stream committed",
		"format", format.String(),
		"resolution", catalog.FormatResolution(width, height),
		"interval", vpcc.FrameInterval,
		"max_payload", vpcc.MaxPayloadTransferSize)
	return nil
}

func (d *Device) streamingControl(request RequestCode, selector uint8, buf []byte) error {
	requestType := RequestTypeVideoInterfaceGetRequest
	if request == RequestCodeSetCur {
		requestType = RequestTypeVideoInterfaceSetRequest
	}
	n, err := d.handle.ControlTransfer(
		uint8(requestType),
		uint8(request),
		uint16(selector)<<8,
		uint16(d.layout.streamingInterface),
		buf,
		d.timeout,
	)
	if err != nil {
		return errors.Wrapf(err, "streaming control %#x request %#x", selector, request)
	}
	if requestType == RequestTypeVideoInterfaceGetRequest && n < 26 {
		return errors.Errorf("streaming control %#x request %#x returned %d bytes", selector, request, n)
	}
	return nil
}

// StartStream claims the streaming interface for surface, detaching the kernel driver
// first if one is bound.
func (d *Device) StartStream(surface uvcmonitor.Surface) error {
	if d.closed {
		return errors.New("device closed")
	}
	if !d.claimed {
		iface := d.layout.streamingInterface
		if err := d.handle.DetachKernelDriver(iface); err != nil {
			d.logger.Debug("kernel driver not detached", "interface", iface, "error", err)
		}
		if err := d.handle.ClaimInterface(iface); err != nil {
			return errors.Wrapf(err, "claim interface %d", iface)
		}
		d.claimed = true
	}
	d.surface = surface
	return nil
}

func (d *Device) StopStream() error {
	d.surface = nil
	if !d.claimed {
		return nil
	}
	d.claimed = false
	if err := d.handle.ReleaseInterface(d.layout.streamingInterface); err != nil {
		return errors.Wrapf(err, "release interface %d", d.layout.streamingInterface)
	}
	return nil
}

// Close releases the streaming interface and the usb handle. Later calls return nil.
func (d *Device) Close() error {
	if d.closed {
		return nil
	}
	d.closed = true
	stopErr := d.StopStream()
	if err := d.handle.Close(); err != nil {
		return errors.Wrap(err, "close usb handle")
	}
	return stopErr
}

// Destroy closes the device and drops the negotiated stream state.
func (d *Device) Destroy() error {
	err := d.Close()
	d.committed = nil
	return err
}
