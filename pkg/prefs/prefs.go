// Package prefs holds the persisted stream selection of a camera: the format,
// resolution and frame rate last chosen for a vendor/product pair.
package prefs

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/kevmo314/go-uvcmonitor/pkg/catalog"
)

// BinarySize is the length of the fixed-order binary record.
const BinarySize = 6 * 4

var ErrNotFound = errors.New("preferences not found")

// ConfigError reports malformed preferences, either from caller input or from a
// persisted record.
type ConfigError struct {
	Key string
	Err error
}

func (e *ConfigError) Error() string {
	if e.Key == "" {
		return "prefs: " + e.Err.Error()
	}
	return fmt.Sprintf("prefs %s: %s", e.Key, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// Preferences is the stream selection for one device.
type Preferences struct {
	VendorID    int                 `json:"mVendorId"`
	ProductID   int                 `json:"mProductId"`
	FrameFormat catalog.FrameFormat `json:"mFrameFormat"`
	Width       int                 `json:"mWidth"`
	Height      int                 `json:"mHeight"`
	FrameRate   int                 `json:"mFramerate"`
}

func New(vendorID, productID int, frameFormat catalog.FrameFormat, width, height, frameRate int) Preferences {
	return Preferences{
		VendorID:    vendorID,
		ProductID:   productID,
		FrameFormat: frameFormat,
		Width:       width,
		Height:      height,
		FrameRate:   frameRate,
	}
}

// Parse builds preferences from the string values a settings screen works with.
// resolution must be "WxH" and frameRate an integer.
func Parse(vendorID, productID int, frameFormat catalog.FrameFormat, resolution, frameRate string) (Preferences, error) {
	p := Preferences{VendorID: vendorID, ProductID: productID, FrameFormat: frameFormat}
	if err := p.SetResolution(resolution); err != nil {
		return Preferences{}, err
	}
	if err := p.SetFrameRate(frameRate); err != nil {
		return Preferences{}, err
	}
	return p, nil
}

// Key identifies the persisted record of a device, "{vendorId}-{productId}".
func (p Preferences) Key() string {
	return Key(p.VendorID, p.ProductID)
}

func Key(vendorID, productID int) string {
	return strconv.Itoa(vendorID) + "-" + strconv.Itoa(productID)
}

// ParseKey is the inverse of Key.
func ParseKey(key string) (vendorID, productID int, err error) {
	v, p, ok := strings.Cut(key, "-")
	if !ok {
		return 0, 0, &ConfigError{Key: key, Err: fmt.Errorf("key %q is not vendor-product", key)}
	}
	if vendorID, err = strconv.Atoi(v); err != nil {
		return 0, 0, &ConfigError{Key: key, Err: err}
	}
	if productID, err = strconv.Atoi(p); err != nil {
		return 0, 0, &ConfigError{Key: key, Err: err}
	}
	return vendorID, productID, nil
}

func (p *Preferences) SetResolution(resolution string) error {
	w, h, err := catalog.ParseResolution(resolution)
	if err != nil {
		return &ConfigError{Key: p.Key(), Err: err}
	}
	p.Width, p.Height = w, h
	return nil
}

func (p *Preferences) SetFrameRate(frameRate string) error {
	fps, err := strconv.Atoi(frameRate)
	if err != nil {
		return &ConfigError{Key: p.Key(), Err: fmt.Errorf("frame rate %q: %w", frameRate, err)}
	}
	p.FrameRate = fps
	return nil
}

func (p *Preferences) SetFrameFormatLabel(label string) error {
	f, err := catalog.ParseFrameFormat(label)
	if err != nil {
		return &ConfigError{Key: p.Key(), Err: err}
	}
	p.FrameFormat = f
	return nil
}

func (p Preferences) FrameFormatString() string { return p.FrameFormat.String() }
func (p Preferences) ResolutionString() string  { return catalog.FormatResolution(p.Width, p.Height) }
func (p Preferences) FrameRateString() string   { return strconv.Itoa(p.FrameRate) }

func (p Preferences) String() string {
	return fmt.Sprintf("%s %s %s@%d", p.Key(), p.FrameFormat, p.ResolutionString(), p.FrameRate)
}

// MarshalBinary encodes the six fields as little endian int32 values in the order
// vendor, product, format, width, height, frame rate.
func (p Preferences) MarshalBinary() ([]byte, error) {
	buf := make([]byte, BinarySize)
	for i, v := range p.fields() {
		binary.LittleEndian.PutUint32(buf[i*4:i*4+4], uint32(int32(v)))
	}
	return buf, nil
}

func (p *Preferences) UnmarshalBinary(buf []byte) error {
	if len(buf) != BinarySize {
		return &ConfigError{Err: fmt.Errorf("binary record is %d bytes, want %d", len(buf), BinarySize)}
	}
	var v [6]int
	for i := range v {
		v[i] = int(int32(binary.LittleEndian.Uint32(buf[i*4 : i*4+4])))
	}
	*p = New(v[0], v[1], catalog.FrameFormat(v[2]), v[3], v[4], v[5])
	return nil
}

func (p Preferences) fields() [6]int {
	return [6]int{p.VendorID, p.ProductID, int(p.FrameFormat), p.Width, p.Height, p.FrameRate}
}

type record struct {
	VendorID    *int `json:"mVendorId"`
	ProductID   *int `json:"mProductId"`
	FrameFormat *int `json:"mFrameFormat"`
	Width       *int `json:"mWidth"`
	Height      *int `json:"mHeight"`
	FrameRate   *int `json:"mFramerate"`
}

// Decode reads the textual record form. All six fields must be present; every
// failure is a *ConfigError.
func Decode(data []byte) (*Preferences, error) {
	var r record
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, &ConfigError{Err: fmt.Errorf("decode record: %w", err)}
	}
	for _, f := range []struct {
		name  string
		value *int
	}{
		{"mVendorId", r.VendorID},
		{"mProductId", r.ProductID},
		{"mFrameFormat", r.FrameFormat},
		{"mWidth", r.Width},
		{"mHeight", r.Height},
		{"mFramerate", r.FrameRate},
	} {
		if f.value == nil {
			return nil, &ConfigError{Err: fmt.Errorf("decode record: missing %s", f.name)}
		}
	}
	p := New(*r.VendorID, *r.ProductID, catalog.FrameFormat(*r.FrameFormat), *r.Width, *r.Height, *r.FrameRate)
	return &p, nil
}

// Encode writes the textual record form.
func Encode(p *Preferences) ([]byte, error) {
	return json.Marshal(p)
}
