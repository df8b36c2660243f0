package cameraview

import (
	"context"
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arcamera/cameraview/pkg/camera"
	"github.com/arcamera/cameraview/pkg/types"
	"github.com/arcamera/cameraview/pkg/view"
)

// createTestImage creates an image with a distinct colour per column band
func createTestImage(width, height int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{uint8(x * 255 / width), 64, 64, 255})
		}
	}
	return img
}

func TestCropToAspectFill(t *testing.T) {
	out, err := CropToAspectFill(createTestImage(400, 300), types.NewRect(100, 100))
	require.NoError(t, err)
	assert.Equal(t, 300, out.Bounds().Dx())
	assert.Equal(t, 300, out.Bounds().Dy())

	_, err = CropToAspectFill(createTestImage(10, 10), types.NewRect(0, 10))
	assert.ErrorIs(t, err, ErrInvalidAspectRatio)
}

func TestAspectFillRect(t *testing.T) {
	r, err := AspectFillRect(4000, 3000, types.NewRect(1, 1))
	require.NoError(t, err)
	assert.Equal(t, types.Rect{X: 500, Y: 0, Width: 3000, Height: 3000}, r)
}

func TestNewView(t *testing.T) {
	ctx := context.Background()
	s, err := camera.NewStillSession(nil, camera.ImageSource("back", createTestImage(160, 90)))
	require.NoError(t, err)

	var taken image.Image
	v, err := NewView(s, 90, 90, view.WithObserver(view.ObserverFuncs{
		ImageTaken: func(_ *view.CameraView, img image.Image) { taken = img },
	}))
	require.NoError(t, err)
	require.NoError(t, v.StartCamera(ctx))

	img, err := v.CaptureImage(ctx)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 90, 90), img.Bounds())
	assert.Same(t, img, taken)

	_, err = NewView(s, 0, 90)
	assert.ErrorIs(t, err, ErrInvalidAspectRatio)
}

func TestGetVersion(t *testing.T) {
	assert.Equal(t, Version, GetVersion())
}
