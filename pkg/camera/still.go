package camera

import (
	"context"
	"fmt"
	"image"
	"sync"

	"github.com/disintegration/imaging"
	"go.uber.org/zap"
)

// Source is a named image provider acting as one capture device
type Source struct {
	Name string
	Load func() (image.Image, error)
}

// ImageSource wraps an in-memory image as a Source
func ImageSource(name string, img image.Image) Source {
	return Source{
		Name: name,
		Load: func() (image.Image, error) { return img, nil },
	}
}

// StillSession is a Session that serves still images as its devices.
// The current device's image is loaded when the session starts or the
// device changes, and every preview frame and capture is taken from it.
type StillSession struct {
	mu       sync.Mutex
	sources  []Source
	current  int
	frame    image.Image
	running  bool
	closed   bool
	focusFns []func(bool)
	logger   *zap.Logger
}

// NewStillSession creates a session over the given sources. The first
// source is the initial device. Devices are addressed by name, so names
// must be unique.
func NewStillSession(logger *zap.Logger, sources ...Source) (*StillSession, error) {
	if len(sources) == 0 {
		return nil, ErrNoDevices
	}
	seen := make(map[string]struct{}, len(sources))
	for _, src := range sources {
		if _, ok := seen[src.Name]; ok {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateDevice, src.Name)
		}
		seen[src.Name] = struct{}{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StillSession{
		sources: sources,
		logger:  logger,
	}, nil
}

// Start loads the current device and begins serving frames
func (s *StillSession) Start(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	if s.running {
		return nil
	}
	if err := s.loadLocked(); err != nil {
		return err
	}
	s.running = true
	s.logger.Debug("camera session started", zap.String("device", s.sources[s.current].Name))
	return nil
}

// Stop pauses the session. It can be started again.
func (s *StillSession) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	if s.running {
		s.running = false
		s.logger.Debug("camera session stopped")
	}
	return nil
}

// Close stops and releases the session
func (s *StillSession) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.running = false
	s.closed = true
	s.frame = nil
	s.focusFns = nil
	s.logger.Debug("camera session closed")
	return nil
}

// Running reports whether frames are being served
func (s *StillSession) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Frame returns the current preview frame
func (s *StillSession) Frame() (image.Image, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkRunningLocked(); err != nil {
		return nil, err
	}
	return s.frame, nil
}

// Capture returns a copy of the current frame
func (s *StillSession) Capture(ctx context.Context) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkRunningLocked(); err != nil {
		return nil, err
	}
	return imaging.Clone(s.frame), nil
}

// Devices lists the source names
func (s *StillSession) Devices() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	names := make([]string, len(s.sources))
	for i, src := range s.sources {
		names[i] = src.Name
	}
	return names
}

// Device returns the current source name
func (s *StillSession) Device() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sources[s.current].Name
}

// SetDevice switches to the named source. A running session loads the
// new source immediately.
func (s *StillSession) SetDevice(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}

	idx := -1
	for i, src := range s.sources {
		if src.Name == name {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrUnknownDevice, name)
	}
	if idx == s.current {
		return nil
	}

	prev := s.current
	s.current = idx
	if s.running {
		if err := s.loadLocked(); err != nil {
			s.current = prev
			return err
		}
	} else {
		s.frame = nil
	}
	s.logger.Debug("camera device changed", zap.String("device", name))
	return nil
}

// OnFocusChange registers fn to be called when focus adjustment starts or ends
func (s *StillSession) OnFocusChange(fn func(adjusting bool)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.focusFns = append(s.focusFns, fn)
}

// SetFocusAdjusting reports a focus change to the registered callbacks
func (s *StillSession) SetFocusAdjusting(adjusting bool) {
	s.mu.Lock()
	fns := append([]func(bool){}, s.focusFns...)
	s.mu.Unlock()

	for _, fn := range fns {
		fn(adjusting)
	}
}

func (s *StillSession) checkRunningLocked() error {
	if s.closed {
		return ErrClosed
	}
	if !s.running {
		return ErrNotRunning
	}
	return nil
}

func (s *StillSession) loadLocked() error {
	src := s.sources[s.current]
	img, err := src.Load()
	if err != nil {
		return fmt.Errorf("failed to load device %s: %w", src.Name, err)
	}
	if img == nil || img.Bounds().Empty() {
		return fmt.Errorf("device %s produced an empty image", src.Name)
	}
	s.frame = img
	return nil
}
