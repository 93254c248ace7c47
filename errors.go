package uvcmonitor

import (
	"errors"
	"fmt"

	"github.com/kevmo314/go-uvcmonitor/pkg/prefs"
)

var ErrNotOpened = errors.New("device not opened")

// StateError reports an operation that the current session state forbids.
type StateError struct {
	Op    string
	State State
}

func (e *StateError) Error() string {
	return fmt.Sprintf("uvcmonitor: %s: %v (state %s)", e.Op, ErrNotOpened, e.State)
}

func (e *StateError) Unwrap() error { return ErrNotOpened }

// DeviceError reports a failure of the device or render target collaborators. The
// controller is left in the state it had before the call, with two exceptions: Open
// always leaves it closed, and StartPreview has already stopped the previous preview.
type DeviceError struct {
	Op  string
	Err error
}

func (e *DeviceError) Error() string {
	return fmt.Sprintf("uvcmonitor: %s: %v", e.Op, e.Err)
}

func (e *DeviceError) Unwrap() error { return e.Err }

// errorKind is the metrics label of err.
func errorKind(err error) string {
	var (
		serr *StateError
		derr *DeviceError
		cerr *prefs.ConfigError
	)
	switch {
	case errors.As(err, &serr):
		return "state"
	case errors.As(err, &derr):
		return "device"
	case errors.As(err, &cerr):
		return "config"
	}
	return "store"
}
