package types

import "image"

// Rect is a rectangle in a floating point 2D coordinate space.
// It is used both for target containers and for computed crop regions.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// NewRect returns a rect at the origin with the given size
func NewRect(width, height float64) Rect {
	return Rect{Width: width, Height: height}
}

// RectFromImage converts integral image bounds to a Rect
func RectFromImage(r image.Rectangle) Rect {
	return Rect{
		X:      float64(r.Min.X),
		Y:      float64(r.Min.Y),
		Width:  float64(r.Dx()),
		Height: float64(r.Dy()),
	}
}

// AspectRatio returns width/height. The result is only meaningful for
// rects with positive area.
func (r Rect) AspectRatio() float64 {
	return r.Width / r.Height
}

// MaxX returns the right edge
func (r Rect) MaxX() float64 {
	return r.X + r.Width
}

// MaxY returns the bottom edge
func (r Rect) MaxY() float64 {
	return r.Y + r.Height
}

// Description is what a vision model reports about a captured image
type Description struct {
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
}

// CaptureDescription ties a model description to the capture it belongs to
type CaptureDescription struct {
	CaptureID string      `json:"capture_id"`
	Model     string      `json:"model"`
	Result    Description `json:"result"`
	Error     string      `json:"error,omitempty"`
}
