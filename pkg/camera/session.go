// Package camera defines the capture session a camera view draws its
// preview frames and still images from.
package camera

import (
	"context"
	"errors"
	"image"
)

var (
	// ErrNotRunning is returned when frames are requested from a stopped session.
	ErrNotRunning = errors.New("camera: session not running")

	// ErrClosed is returned by every call on a released session.
	ErrClosed = errors.New("camera: session closed")

	// ErrNoDevices is returned when a session has nothing to capture from.
	ErrNoDevices = errors.New("camera: no capture devices")

	// ErrUnknownDevice is returned when switching to a device that does not exist.
	ErrUnknownDevice = errors.New("camera: unknown device")

	// ErrDuplicateDevice is returned when two devices share a name.
	ErrDuplicateDevice = errors.New("camera: duplicate device name")
)

// A Session produces live preview frames and still captures.
type Session interface {
	Start(ctx context.Context) error
	Stop() error
	// Close stops the session and releases it. A closed session cannot
	// be started again.
	Close() error
	Running() bool
	// Frame returns the latest preview frame.
	Frame() (image.Image, error)
	// Capture takes a full resolution still.
	Capture(ctx context.Context) (image.Image, error)
}

// DeviceSwitcher is implemented by sessions that can capture from more
// than one device.
type DeviceSwitcher interface {
	Devices() []string
	Device() string
	SetDevice(name string) error
}

// FocusNotifier is implemented by sessions that report when the device
// is adjusting its focus.
type FocusNotifier interface {
	OnFocusChange(fn func(adjusting bool))
}
