// Package cameraview provides a headless camera capture view whose captured
// stills are cropped to exactly what the view displayed.
//
// A view shows its preview with aspect-fill sizing: the frame is scaled to
// cover the whole view and the overflow is cut off on the long axis. The
// cropper reproduces that cut on the full resolution still, so the saved
// picture matches the preview.
//
// Basic usage:
//
//	package main
//
//	import (
//		"context"
//		"log"
//
//		"github.com/arcamera/cameraview"
//		"github.com/arcamera/cameraview/pkg/camera"
//		"github.com/arcamera/cameraview/pkg/processing"
//	)
//
//	func main() {
//		ctx := context.Background()
//		p := processing.NewProcessor(nil)
//
//		session, err := camera.NewStillSession(nil, p.Source("scene.jpg"))
//		if err != nil {
//			log.Fatal(err)
//		}
//
//		v, err := cameraview.NewView(session, 1080, 1350)
//		if err != nil {
//			log.Fatal(err)
//		}
//		if err := v.StartCamera(ctx); err != nil {
//			log.Fatal(err)
//		}
//
//		img, err := v.CaptureImage(ctx)
//		if err != nil {
//			log.Fatal(err)
//		}
//		if err := p.SaveImage(img, "scene_4x5.jpg", "jpg", 90, false); err != nil {
//			log.Fatal(err)
//		}
//	}
//
// The package consists of these components:
//
//  1. Cropper (pkg/cropper): aspect-fill crop geometry and pixel crops
//  2. Camera (pkg/camera): capture session interfaces and a still image session
//  3. Button (pkg/button): the shutter button and its drawing
//  4. View (pkg/view): the camera view, its observers and rendering
//  5. Processing (pkg/processing): loading, saving and exporting captures
//  6. Describe (pkg/describe): optional vision model descriptions of captures
package cameraview

import (
	"image"

	"github.com/arcamera/cameraview/pkg/camera"
	"github.com/arcamera/cameraview/pkg/cropper"
	"github.com/arcamera/cameraview/pkg/types"
	"github.com/arcamera/cameraview/pkg/view"
)

// Version of the cameraview library
const Version = "1.0.0"

// ErrInvalidAspectRatio is returned for targets without a positive finite size
var ErrInvalidAspectRatio = cropper.ErrInvalidAspectRatio

// CropToAspectFill returns the centred part of img that a container shaped
// like target shows when img fills it.
func CropToAspectFill(img image.Image, target types.Rect) (image.Image, error) {
	return cropper.CropToAspectFill(img, target)
}

// AspectFillRect computes the crop region of a width x height image for target
func AspectFillRect(width, height float64, target types.Rect) (types.Rect, error) {
	return cropper.AspectFillRect(width, height, target)
}

// NewView creates a camera view of the given size over session
func NewView(session camera.Session, width, height int, opts ...view.Option) (*view.CameraView, error) {
	return view.New(session, width, height, opts...)
}

// GetVersion returns the library version
func GetVersion() string {
	return Version
}
