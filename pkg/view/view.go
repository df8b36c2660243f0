// Package view implements a headless camera view: a live preview from a
// capture session, a shutter button drawn over it, an optional overlay and
// the still image taken on capture, cropped to look the way the view
// showed it.
package view

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sync"

	"go.uber.org/zap"

	"github.com/arcamera/cameraview/pkg/button"
	"github.com/arcamera/cameraview/pkg/camera"
	"github.com/arcamera/cameraview/pkg/cropper"
	"github.com/arcamera/cameraview/pkg/types"
)

var (
	// ErrNoImage is returned when an operation needs a taken image and there is none.
	ErrNoImage = errors.New("view: no image taken")

	// ErrSessionReleased is returned after StopCameraAndSession.
	ErrSessionReleased = errors.New("view: camera session released")
)

// CameraView couples a capture session with a shutter button.
type CameraView struct {
	mu        sync.RWMutex
	captureMu sync.Mutex

	session  camera.Session
	released bool
	btn      button.ShutterButton
	observer Observer
	overlay  image.Image

	width, height int
	buttonSize    int

	taken image.Image
	whole image.Image

	hideDuringFocus bool
	focusing        bool

	cropper *cropper.AspectFillCropper
	preview *cropper.AspectFillCropper
	logger  *zap.Logger
}

type settings struct {
	factory         button.Factory
	observer        Observer
	overlay         image.Image
	logger          *zap.Logger
	hideDuringFocus bool
	buttonSize      int
}

// Option configures a CameraView
type Option func(*settings)

// WithButtonFactory sets how the shutter button is built
func WithButtonFactory(f button.Factory) Option {
	return func(s *settings) { s.factory = f }
}

// WithObserver sets the view's observer
func WithObserver(o Observer) Option {
	return func(s *settings) { s.observer = o }
}

// WithOverlay sets an image drawn over the live preview
func WithOverlay(img image.Image) Option {
	return func(s *settings) { s.overlay = img }
}

// WithLogger sets the logger
func WithLogger(l *zap.Logger) Option {
	return func(s *settings) { s.logger = l }
}

// WithHideButtonDuringFocus controls whether the shutter hides while the
// camera adjusts focus. Enabled by default.
func WithHideButtonDuringFocus(hide bool) Option {
	return func(s *settings) { s.hideDuringFocus = hide }
}

// WithButtonSize sets the rendered shutter diameter in pixels. Zero picks
// a size from the view dimensions.
func WithButtonSize(px int) Option {
	return func(s *settings) { s.buttonSize = px }
}

// New creates a view of width x height pixels over session. The session
// is not started.
func New(session camera.Session, width, height int, opts ...Option) (*CameraView, error) {
	if session == nil {
		return nil, fmt.Errorf("view: nil camera session")
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: view size %dx%d", cropper.ErrInvalidAspectRatio, width, height)
	}

	s := settings{
		factory:         button.Default,
		hideDuringFocus: true,
	}
	for _, opt := range opts {
		opt(&s)
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.factory == nil {
		s.factory = button.Default
	}

	btn := s.factory()
	if btn == nil {
		return nil, fmt.Errorf("view: button factory returned nil")
	}

	v := &CameraView{
		session:         session,
		btn:             btn,
		observer:        s.observer,
		overlay:         s.overlay,
		width:           width,
		height:          height,
		buttonSize:      s.buttonSize,
		hideDuringFocus: s.hideDuringFocus,
		cropper:         cropper.New(),
		preview:         cropper.NewWithConfig(cropper.CropConfig{ZeroCopy: true}),
		logger:          s.logger,
	}

	if fn, ok := session.(camera.FocusNotifier); ok {
		fn.OnFocusChange(v.focusChanged)
	}
	return v, nil
}

// StartCamera starts live capture. It is not started automatically.
func (v *CameraView) StartCamera(ctx context.Context) error {
	session, err := v.activeSession()
	if err != nil {
		return err
	}
	if err := session.Start(ctx); err != nil {
		return fmt.Errorf("failed to start camera: %w", err)
	}
	v.logger.Debug("camera started")
	return nil
}

// StopCamera stops live capture, keeping the session for a later start
func (v *CameraView) StopCamera() error {
	session, err := v.activeSession()
	if err != nil {
		return err
	}
	if err := session.Stop(); err != nil {
		return fmt.Errorf("failed to stop camera: %w", err)
	}
	v.logger.Debug("camera stopped")
	return nil
}

// StopCameraAndSession stops live capture and releases the session. The
// view cannot capture afterwards.
func (v *CameraView) StopCameraAndSession() error {
	v.mu.Lock()
	if v.released {
		v.mu.Unlock()
		return nil
	}
	v.released = true
	session := v.session
	v.mu.Unlock()

	if err := session.Close(); err != nil {
		return fmt.Errorf("failed to release camera session: %w", err)
	}
	v.logger.Debug("camera session released")
	return nil
}

// CaptureImage takes a still, keeps it and the part of it visible in the
// view, stops the preview and notifies the observer. It is the same as
// pressing the shutter while no image is shown.
func (v *CameraView) CaptureImage(ctx context.Context) (image.Image, error) {
	v.captureMu.Lock()
	defer v.captureMu.Unlock()

	session, err := v.activeSession()
	if err != nil {
		return nil, err
	}

	whole, err := session.Capture(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to capture image: %w", err)
	}

	width, height := v.Size()
	taken, err := v.cropper.CropToAspectFill(whole, types.NewRect(float64(width), float64(height)))
	if err != nil {
		return nil, fmt.Errorf("failed to crop captured image: %w", err)
	}

	if err := session.Stop(); err != nil {
		v.logger.Warn("failed to stop camera after capture", zap.Error(err))
	}

	v.mu.Lock()
	v.whole = whole
	v.taken = taken
	v.btn.SetShowingCancel(true)
	v.btn.SetHidden(false)
	observer := v.observer
	v.mu.Unlock()

	wb, tb := whole.Bounds(), taken.Bounds()
	v.logger.Info("image captured",
		zap.Int("width", wb.Dx()),
		zap.Int("height", wb.Dy()),
		zap.Int("visible_width", tb.Dx()),
		zap.Int("visible_height", tb.Dy()),
	)

	if o, ok := observer.(ImageTakenObserver); ok {
		o.CameraViewTookImage(v, taken)
	}
	return taken, nil
}

// RemoveTakenImage discards the taken image and restarts the camera
func (v *CameraView) RemoveTakenImage(ctx context.Context) error {
	v.captureMu.Lock()
	defer v.captureMu.Unlock()

	v.mu.Lock()
	v.taken = nil
	v.whole = nil
	v.btn.SetShowingCancel(false)
	v.btn.SetHidden(v.hideDuringFocus && v.focusing)
	v.mu.Unlock()

	v.logger.Debug("taken image removed")
	return v.StartCamera(ctx)
}

// PressButton acts on the shutter: it captures when no image is shown
// and removes the shown image otherwise.
func (v *CameraView) PressButton(ctx context.Context) error {
	if v.CaptureButton().ShowingCancel() {
		return v.RemoveTakenImage(ctx)
	}
	_, err := v.CaptureImage(ctx)
	return err
}

// ToggleCamera switches to the session's next device. It does nothing if
// the session has a single device or cannot switch.
func (v *CameraView) ToggleCamera() error {
	session, err := v.activeSession()
	if err != nil {
		return err
	}
	ds, ok := session.(camera.DeviceSwitcher)
	if !ok {
		return nil
	}
	devices := ds.Devices()
	if len(devices) < 2 {
		return nil
	}

	current := ds.Device()
	next := devices[0]
	for i, name := range devices {
		if name == current {
			next = devices[(i+1)%len(devices)]
			break
		}
	}
	if err := ds.SetDevice(next); err != nil {
		return fmt.Errorf("failed to switch camera: %w", err)
	}
	if ds.Device() == current {
		v.logger.Warn("camera did not change", zap.String("device", current), zap.String("requested", next))
		return nil
	}
	v.logger.Info("camera changed", zap.String("from", current), zap.String("to", next))

	v.mu.RLock()
	observer := v.observer
	v.mu.RUnlock()
	if o, ok := observer.(CameraChangedObserver); ok {
		o.CameraViewChangedCamera(v)
	}
	return nil
}

// ImageTaken returns the captured image as seen in the view, or nil
func (v *CameraView) ImageTaken() image.Image {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.taken
}

// WholeImageTaken returns the full captured frame, or nil. Depending on
// the view's ratio it holds more than ImageTaken.
func (v *CameraView) WholeImageTaken() image.Image {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.whole
}

// HasImage reports whether an image has been taken
func (v *CameraView) HasImage() bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.taken != nil
}

// SetObserver replaces the observer. nil removes it.
func (v *CameraView) SetObserver(o Observer) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.observer = o
}

// SetOverlay sets the image drawn over the live preview. nil removes it.
// The overlay is not drawn over a taken image.
func (v *CameraView) SetOverlay(img image.Image) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.overlay = img
}

// Overlay returns the current overlay
func (v *CameraView) Overlay() image.Image {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.overlay
}

// CaptureButton returns the shutter button
func (v *CameraView) CaptureButton() button.ShutterButton {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.btn
}

// SetCaptureButton replaces the shutter button, carrying over its state
func (v *CameraView) SetCaptureButton(b button.ShutterButton) {
	if b == nil {
		return
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	b.SetShowingCancel(v.btn.ShowingCancel())
	b.SetHidden(v.btn.Hidden())
	v.btn = b
}

// HideButtonDuringFocus reports whether the shutter hides while focusing
func (v *CameraView) HideButtonDuringFocus() bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.hideDuringFocus
}

// SetHideButtonDuringFocus enables or disables hiding the shutter while focusing
func (v *CameraView) SetHideButtonDuringFocus(hide bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.hideDuringFocus = hide
	if v.taken == nil {
		v.btn.SetHidden(hide && v.focusing)
	}
}

// Size returns the view size in pixels
func (v *CameraView) Size() (int, int) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.width, v.height
}

// SetSize resizes the view. An image already taken keeps the crop it was
// taken with.
func (v *CameraView) SetSize(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: view size %dx%d", cropper.ErrInvalidAspectRatio, width, height)
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	v.width, v.height = width, height
	return nil
}

func (v *CameraView) focusChanged(adjusting bool) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.focusing = adjusting
	if v.hideDuringFocus && v.taken == nil {
		v.btn.SetHidden(adjusting)
	}
}

func (v *CameraView) activeSession() (camera.Session, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	if v.released {
		return nil, ErrSessionReleased
	}
	return v.session, nil
}
