package view

import (
	"errors"
	"fmt"
	"image"
	"image/color"

	"github.com/disintegration/imaging"

	"github.com/arcamera/cameraview/pkg/camera"
	"github.com/arcamera/cameraview/pkg/types"
)

// minButtonSize is the smallest automatically sized shutter worth drawing
const minButtonSize = 8

// Render draws the view as it currently looks. A taken image is shown
// without the overlay, aspect-filled if the view was resized since. Otherwise the preview frame is aspect-fill scaled
// into the view with the overlay stretched over it; a stopped session
// shows black. The shutter is drawn bottom centre unless hidden.
func (v *CameraView) Render() (*image.NRGBA, error) {
	v.mu.RLock()
	width, height := v.width, v.height
	taken := v.taken
	overlay := v.overlay
	btn := v.btn
	released := v.released
	btnSize := v.buttonSize
	v.mu.RUnlock()

	var canvas *image.NRGBA
	if taken != nil {
		canvas = imaging.Fill(taken, width, height, imaging.Center, imaging.Linear)
	} else {
		var frame image.Image
		if !released {
			f, err := v.session.Frame()
			switch {
			case err == nil:
				frame = f
			case errors.Is(err, camera.ErrNotRunning), errors.Is(err, camera.ErrClosed):
			default:
				return nil, fmt.Errorf("failed to read preview frame: %w", err)
			}
		}

		if frame != nil {
			visible, err := v.preview.CropToAspectFill(frame, types.NewRect(float64(width), float64(height)))
			if err != nil {
				return nil, fmt.Errorf("failed to crop preview frame: %w", err)
			}
			canvas = imaging.Resize(visible, width, height, imaging.Linear)
		} else {
			canvas = imaging.New(width, height, color.Black)
		}

		if overlay != nil && !overlay.Bounds().Empty() {
			canvas = imaging.Overlay(canvas, imaging.Resize(overlay, width, height, imaging.Linear), image.Point{}, 1.0)
		}
	}

	if !btn.Hidden() {
		size := btnSize
		if size <= 0 {
			size = minInt(width, height) / 5
		}
		if size >= minButtonSize || btnSize > 0 {
			margin := size / 4
			pos := image.Pt((width-size)/2, height-size-margin)
			canvas = imaging.Overlay(canvas, btn.Draw(size), pos, 1.0)
		}
	}

	return canvas, nil
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
