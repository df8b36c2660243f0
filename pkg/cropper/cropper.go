package cropper

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"

	"github.com/arcamera/cameraview/pkg/types"
)

// ErrInvalidAspectRatio is returned when a target rect has no positive area
// or when the source image has a zero dimension.
var ErrInvalidAspectRatio = errors.New("cropper: invalid aspect ratio")

// AspectFillCropper crops images the way a scale-aspect-fill container
// would display them.
type AspectFillCropper struct {
	config CropConfig
}

// CropConfig holds configuration for aspect-fill cropping
type CropConfig struct {
	// ZeroCopy returns a read-only view over the source pixels instead of
	// a new pixel buffer. Views are only valid as long as the source is
	// not modified.
	ZeroCopy bool
}

// AspectRatio represents common aspect ratios
type AspectRatio struct {
	Width  int
	Height int
	Name   string
}

// Common aspect ratios
var (
	Square     = AspectRatio{1, 1, "square"}
	Portrait   = AspectRatio{3, 4, "portrait"}
	Landscape  = AspectRatio{4, 3, "landscape"}
	Widescreen = AspectRatio{16, 9, "widescreen"}
	Instagram  = AspectRatio{4, 5, "instagram"}
	Story      = AspectRatio{9, 16, "story"}
)

// CommonAspectRatios returns a list of commonly used aspect ratios
func CommonAspectRatios() []AspectRatio {
	return []AspectRatio{Square, Portrait, Landscape, Widescreen, Instagram, Story}
}

// ParseAspectRatio looks up a named ratio or parses "W:H"
func ParseAspectRatio(s string) (AspectRatio, error) {
	for _, r := range CommonAspectRatios() {
		if r.Name == s {
			return r, nil
		}
	}
	var w, h int
	if _, err := fmt.Sscanf(s, "%d:%d", &w, &h); err != nil {
		return AspectRatio{}, fmt.Errorf("%w: cannot parse %q", ErrInvalidAspectRatio, s)
	}
	if w <= 0 || h <= 0 {
		return AspectRatio{}, fmt.Errorf("%w: %q", ErrInvalidAspectRatio, s)
	}
	return AspectRatio{Width: w, Height: h, Name: fmt.Sprintf("%dx%d", w, h)}, nil
}

// Rect returns a target rect with this ratio
func (a AspectRatio) Rect() types.Rect {
	return types.NewRect(float64(a.Width), float64(a.Height))
}

// New creates a new AspectFillCropper that copies pixels
func New() *AspectFillCropper {
	return &AspectFillCropper{}
}

// NewWithConfig creates a new AspectFillCropper with custom configuration
func NewWithConfig(config CropConfig) *AspectFillCropper {
	return &AspectFillCropper{config: config}
}

// CropResult contains the result of a cropping operation
type CropResult struct {
	Image       image.Image
	Region      image.Rectangle
	AspectRatio float64
}

// CropToAspectFill returns the part of img that would be visible in a
// container shaped like target using aspect-fill sizing.
func CropToAspectFill(img image.Image, target types.Rect) (image.Image, error) {
	return New().CropToAspectFill(img, target)
}

// CropToAspectFill crops img to the aspect ratio of target
func (c *AspectFillCropper) CropToAspectFill(img image.Image, target types.Rect) (image.Image, error) {
	result, err := c.Crop(img, target)
	if err != nil {
		return nil, err
	}
	return result.Image, nil
}

// Crop crops img to the aspect ratio of target and reports the source region used
func (c *AspectFillCropper) Crop(img image.Image, target types.Rect) (CropResult, error) {
	region, err := PixelRect(img.Bounds(), target)
	if err != nil {
		return CropResult{}, err
	}

	var out image.Image
	if c.config.ZeroCopy {
		out = &croppedImage{original: img, bounds: region}
	} else {
		out = imaging.Crop(img, region)
	}

	return CropResult{
		Image:       out,
		Region:      region,
		AspectRatio: target.AspectRatio(),
	}, nil
}

// CropToAspectRatio crops an image to one of the named aspect ratios
func (c *AspectFillCropper) CropToAspectRatio(img image.Image, aspectRatio AspectRatio) (CropResult, error) {
	return c.Crop(img, aspectRatio.Rect())
}

// CropToMultipleRatios crops an image to multiple aspect ratios
func (c *AspectFillCropper) CropToMultipleRatios(img image.Image, ratios []AspectRatio) ([]CropResult, error) {
	results := make([]CropResult, 0, len(ratios))

	for _, ratio := range ratios {
		result, err := c.CropToAspectRatio(img, ratio)
		if err != nil {
			return nil, fmt.Errorf("failed to crop to %s: %w", ratio.Name, err)
		}
		results = append(results, result)
	}

	return results, nil
}

// AspectFillRect computes the exact crop rect, in source coordinates, for a
// width x height source shown aspect-fill in target. The crop is centred on
// whichever axis is reduced.
func AspectFillRect(width, height float64, target types.Rect) (types.Rect, error) {
	if !(width > 0) || !(height > 0) {
		return types.Rect{}, fmt.Errorf("%w: source is %gx%g", ErrInvalidAspectRatio, width, height)
	}
	targetRatio, err := targetAspect(target)
	if err != nil {
		return types.Rect{}, err
	}

	if width/height > targetRatio {
		newW := height * targetRatio
		return types.Rect{X: (width - newW) / 2, Y: 0, Width: newW, Height: height}, nil
	}
	newH := width / targetRatio
	return types.Rect{X: 0, Y: (height - newH) / 2, Width: width, Height: newH}, nil
}

// PixelRect is AspectFillRect snapped to whole pixels of bounds. The result
// always lies inside bounds and has at least one pixel on each side. A
// source that is already at the target ratio, to within a pixel of
// rounding, is returned whole.
func PixelRect(bounds image.Rectangle, target types.Rect) (image.Rectangle, error) {
	w, h := bounds.Dx(), bounds.Dy()
	if w <= 0 || h <= 0 {
		return image.Rectangle{}, fmt.Errorf("%w: source is %dx%d", ErrInvalidAspectRatio, w, h)
	}
	targetRatio, err := targetAspect(target)
	if err != nil {
		return image.Rectangle{}, err
	}

	fw, fh := float64(w), float64(h)
	if math.Round(fw/targetRatio) == fh || math.Round(fh*targetRatio) == fw {
		return bounds, nil
	}

	var r image.Rectangle
	if fw/fh > targetRatio {
		newW := roundTo(fh*targetRatio, w)
		x := (w - newW) / 2
		r = image.Rect(x, 0, x+newW, h)
	} else {
		newH := roundTo(fw/targetRatio, h)
		y := (h - newH) / 2
		r = image.Rect(0, y, w, y+newH)
	}
	return r.Add(bounds.Min), nil
}

func targetAspect(target types.Rect) (float64, error) {
	if !(target.Width > 0) || !(target.Height > 0) {
		return 0, fmt.Errorf("%w: target is %gx%g", ErrInvalidAspectRatio, target.Width, target.Height)
	}
	ratio := target.AspectRatio()
	if math.IsInf(ratio, 0) || ratio == 0 {
		return 0, fmt.Errorf("%w: target is %gx%g", ErrInvalidAspectRatio, target.Width, target.Height)
	}
	return ratio, nil
}

// roundTo rounds v to the nearest integer in [1, max]
func roundTo(v float64, max int) int {
	v = math.Round(v)
	if v < 1 {
		return 1
	}
	if v > float64(max) {
		return max
	}
	return int(v)
}

// croppedImage implements the image.Image interface for cropped images
type croppedImage struct {
	original image.Image
	bounds   image.Rectangle
}

func (c *croppedImage) ColorModel() color.Model {
	return c.original.ColorModel()
}

func (c *croppedImage) Bounds() image.Rectangle {
	return image.Rect(0, 0, c.bounds.Dx(), c.bounds.Dy())
}

func (c *croppedImage) At(x, y int) color.Color {
	pt := image.Point{x, y}
	if !pt.In(c.Bounds()) {
		return color.RGBA{}
	}
	return c.original.At(x+c.bounds.Min.X, y+c.bounds.Min.Y)
}
