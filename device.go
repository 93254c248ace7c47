// Package uvcmonitor runs a single camera session on top of a USB Video Class device:
// opening the device, negotiating its stream configuration from stored preferences and
// driving a display surface through preview.
package uvcmonitor

import "github.com/kevmo314/go-uvcmonitor/pkg/catalog"

// Driver binds a file descriptor for an already permitted usbfs node to a Device.
type Driver interface {
	Open(fd uintptr) (Device, error)
}

// DriverFunc adapts a function to a Driver.
type DriverFunc func(fd uintptr) (Device, error)

func (f DriverFunc) Open(fd uintptr) (Device, error) { return f(fd) }

// Device is a native camera handle. The Controller owns it exclusively from Open
// until it calls Close or Destroy.
type Device interface {
	// RawDescriptorBlob returns the textual capability description, or "" when the
	// device has none cached.
	RawDescriptorBlob() (string, error)
	SetPreviewConfig(format catalog.FrameFormat, width, height, frameRate int) error
	StartStream(surface Surface) error
	StopStream() error
	Close() error
	Destroy() error
	// Identity is "{vendorId}-{productId}".
	Identity() string
}

// RenderTarget supplies display surfaces and is told the negotiated aspect ratio.
type RenderTarget interface {
	AcquireSurface() (Surface, error)
	SetAspectRatio(width, height int)
}

type Surface interface {
	Release() error
}
