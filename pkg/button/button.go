// Package button provides the shutter control drawn over a camera view.
//
// A view builds its shutter through a Factory, so a custom appearance is
// supplied by passing a factory that returns another ShutterButton.
package button

import (
	"image"
	"image/color"
	"sync"
)

// ShutterButton is the control pressed to take or dismiss a picture.
type ShutterButton interface {
	// ShowingCancel reports whether pressing the button dismisses the
	// taken image instead of capturing a new one.
	ShowingCancel() bool
	SetShowingCancel(bool)
	Hidden() bool
	SetHidden(bool)
	// Draw renders the button into a new size x size image with a
	// transparent background.
	Draw(size int) *image.NRGBA
}

// Factory constructs a shutter button for a new view
type Factory func() ShutterButton

// Default is the factory used when a view is given none
func Default() ShutterButton {
	return NewCameraButton()
}

// CameraButton is the default round shutter. Colours are read on every
// Draw and must not be changed concurrently with it.
type CameraButton struct {
	RingColor   color.NRGBA
	FillColor   color.NRGBA
	CancelColor color.NRGBA

	mu            sync.RWMutex
	showingCancel bool
	hidden        bool
}

// NewCameraButton creates a white shutter button
func NewCameraButton() *CameraButton {
	return &CameraButton{
		RingColor:   color.NRGBA{255, 255, 255, 255},
		FillColor:   color.NRGBA{255, 255, 255, 230},
		CancelColor: color.NRGBA{255, 255, 255, 255},
	}
}

func (b *CameraButton) ShowingCancel() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.showingCancel
}

func (b *CameraButton) SetShowingCancel(v bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.showingCancel = v
}

func (b *CameraButton) Hidden() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.hidden
}

func (b *CameraButton) SetHidden(v bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.hidden = v
}

// Draw renders an outer ring with either a filled disc or, when showing
// cancel, a cross inside it.
func (b *CameraButton) Draw(size int) *image.NRGBA {
	if size <= 0 {
		return image.NewNRGBA(image.Rect(0, 0, 0, 0))
	}
	dst := image.NewNRGBA(image.Rect(0, 0, size, size))
	r := float32(size) / 2
	c := r

	p := newPainter(dst)
	p.ring(c, c, r*0.97, r*0.85, b.RingColor)
	if b.ShowingCancel() {
		p.cross(c, c, r*0.5, r*0.06, b.CancelColor)
	} else {
		p.disc(c, c, r*0.75, b.FillColor)
	}
	return dst
}
