package cropper

import (
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arcamera/cameraview/pkg/types"
)

// createTestImage creates an image where every pixel encodes its own position
func createTestImage(width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{uint8(x), uint8(y), uint8(x ^ y), 255})
		}
	}

	return img
}

func TestNew(t *testing.T) {
	c := New()
	require.NotNil(t, c)
	assert.False(t, c.config.ZeroCopy)

	c = NewWithConfig(CropConfig{ZeroCopy: true})
	assert.True(t, c.config.ZeroCopy)
}

func TestPixelRectScenarios(t *testing.T) {
	tests := []struct {
		name   string
		w, h   int
		target types.Rect
		want   image.Rectangle
	}{
		{"4:3 to square", 4000, 3000, types.NewRect(1, 1), image.Rect(500, 0, 3500, 3000)},
		{"16:9 to 4:3", 1920, 1080, types.NewRect(4, 3), image.Rect(240, 0, 1680, 1080)},
		{"equal ratio", 100, 100, types.NewRect(1, 1), image.Rect(0, 0, 100, 100)},
		{"tall target", 400, 300, types.NewRect(3, 4), image.Rect(87, 0, 312, 300)},
		{"wide target", 300, 400, types.NewRect(16, 9), image.Rect(0, 115, 300, 284)},
		{"target position ignored", 4000, 3000, types.Rect{X: 77, Y: -12, Width: 50, Height: 50}, image.Rect(500, 0, 3500, 3000)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := PixelRect(image.Rect(0, 0, tt.w, tt.h), tt.target)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAspectFillRect(t *testing.T) {
	r, err := AspectFillRect(4000, 3000, types.NewRect(1, 1))
	require.NoError(t, err)
	assert.Equal(t, types.Rect{X: 500, Y: 0, Width: 3000, Height: 3000}, r)

	r, err = AspectFillRect(1920, 1080, types.NewRect(4, 3))
	require.NoError(t, err)
	assert.InDelta(t, 240, r.X, 1e-9)
	assert.InDelta(t, 1440, r.Width, 1e-9)
	assert.Equal(t, 0.0, r.Y)
	assert.Equal(t, 1080.0, r.Height)

	// taller source crops the height, centred vertically
	r, err = AspectFillRect(1080, 1920, types.NewRect(1, 1))
	require.NoError(t, err)
	assert.Equal(t, types.Rect{X: 0, Y: 420, Width: 1080, Height: 1080}, r)
}

func TestInvalidAspectRatio(t *testing.T) {
	bounds := image.Rect(0, 0, 100, 100)
	targets := []types.Rect{
		{Width: 10, Height: 0},
		{Width: 0, Height: 10},
		{Width: -4, Height: 3},
		{Width: 4, Height: -3},
	}

	for _, target := range targets {
		_, err := PixelRect(bounds, target)
		assert.ErrorIs(t, err, ErrInvalidAspectRatio, "target %+v", target)

		_, err = AspectFillRect(100, 100, target)
		assert.ErrorIs(t, err, ErrInvalidAspectRatio, "target %+v", target)

		_, err = CropToAspectFill(createTestImage(10, 10), target)
		assert.ErrorIs(t, err, ErrInvalidAspectRatio, "target %+v", target)
	}

	_, err := CropToAspectFill(image.NewRGBA(image.Rect(0, 0, 0, 10)), types.NewRect(1, 1))
	assert.ErrorIs(t, err, ErrInvalidAspectRatio)

	_, err = AspectFillRect(0, 10, types.NewRect(1, 1))
	assert.ErrorIs(t, err, ErrInvalidAspectRatio)
}

func TestPixelRectInvariants(t *testing.T) {
	sizes := [][2]int{{1, 1}, {7, 3}, {640, 480}, {1080, 1920}, {4000, 3000}, {333, 1000}}
	targets := []types.Rect{
		types.NewRect(1, 1), types.NewRect(4, 3), types.NewRect(9, 16),
		types.NewRect(21, 9), types.NewRect(1, 50), types.NewRect(50, 1),
		types.NewRect(0.3, 0.7),
	}

	for _, sz := range sizes {
		for _, target := range targets {
			w, h := sz[0], sz[1]
			bounds := image.Rect(0, 0, w, h)
			r, err := PixelRect(bounds, target)
			require.NoError(t, err)

			assert.True(t, r.In(bounds), "%v not in %v", r, bounds)
			assert.False(t, r.Empty())

			// full extent on at least one axis, centred on the other
			if r.Dx() < w {
				assert.Equal(t, h, r.Dy())
				assert.Equal(t, (w-r.Dx())/2, r.Min.X)
			}
			if r.Dy() < h {
				assert.Equal(t, w, r.Dx())
				assert.Equal(t, (h-r.Dy())/2, r.Min.Y)
			}

			// ratio within one pixel of rounding on either axis
			ratio := target.AspectRatio()
			if r.Dx() > 1 && r.Dy() > 1 {
				dw := math.Abs(float64(r.Dx()) - float64(r.Dy())*ratio)
				dh := math.Abs(float64(r.Dy()) - float64(r.Dx())/ratio)
				assert.True(t, dw <= 1 || dh <= 1, "%dx%d -> %v", w, h, r)
			}
		}
	}
}

func TestCropIsIdempotent(t *testing.T) {
	c := New()
	sizes := [][2]int{{1000, 1000}, {1920, 1080}, {640, 480}, {999, 1001}}

	for _, ratio := range CommonAspectRatios() {
		for _, sz := range sizes {
			first, err := c.CropToAspectRatio(createTestImage(sz[0], sz[1]), ratio)
			require.NoError(t, err)

			second, err := c.CropToAspectRatio(first.Image, ratio)
			require.NoError(t, err)

			assert.Equal(t, first.Image.Bounds().Size(), second.Image.Bounds().Size(),
				"%s from %dx%d", ratio.Name, sz[0], sz[1])
		}
	}
}

func TestCropCopiesPixels(t *testing.T) {
	src := createTestImage(200, 100)
	before := append([]uint8(nil), src.Pix...)

	out, err := CropToAspectFill(src, types.NewRect(1, 1))
	require.NoError(t, err)

	assert.Equal(t, image.Rect(0, 0, 100, 100), out.Bounds())
	for _, p := range []image.Point{{0, 0}, {99, 0}, {0, 99}, {42, 17}} {
		want := color.NRGBAModel.Convert(src.At(p.X+50, p.Y))
		assert.Equal(t, want, out.At(p.X, p.Y), "pixel %v", p)
	}

	// writing to the output must not touch the source
	out.(*image.NRGBA).Set(0, 0, color.NRGBA{1, 2, 3, 4})
	assert.Equal(t, before, src.Pix)
}

func TestCropEqualRatioIsFullFrame(t *testing.T) {
	src := createTestImage(100, 100)

	result, err := New().Crop(src, types.NewRect(1, 1))
	require.NoError(t, err)
	assert.Equal(t, src.Bounds(), result.Region)
	assert.Equal(t, color.NRGBAModel.Convert(src.At(37, 61)), result.Image.At(37, 61))
}

func TestCropSubImageOffset(t *testing.T) {
	parent := createTestImage(300, 300)
	sub := parent.SubImage(image.Rect(100, 50, 300, 150))

	result, err := New().Crop(sub, types.NewRect(1, 1))
	require.NoError(t, err)

	assert.Equal(t, image.Rect(150, 50, 250, 150), result.Region)
	assert.Equal(t, color.NRGBAModel.Convert(parent.At(150, 50)), result.Image.At(0, 0))
}

func TestZeroCopyView(t *testing.T) {
	src := createTestImage(400, 300)
	c := NewWithConfig(CropConfig{ZeroCopy: true})

	result, err := c.CropToAspectRatio(src, Square)
	require.NoError(t, err)

	view, ok := result.Image.(*croppedImage)
	require.True(t, ok)
	assert.Equal(t, image.Rect(0, 0, 300, 300), view.Bounds())
	assert.Equal(t, src.ColorModel(), view.ColorModel())
	assert.Equal(t, src.At(50, 0), view.At(0, 0))
	assert.Equal(t, color.RGBA{}, view.At(300, 0))
}

func TestCropToMultipleRatios(t *testing.T) {
	c := New()
	img := createTestImage(400, 300)

	ratios := []AspectRatio{Square, Portrait, Landscape}
	results, err := c.CropToMultipleRatios(img, ratios)
	require.NoError(t, err)
	require.Len(t, results, len(ratios))

	assert.Equal(t, image.Pt(300, 300), results[0].Image.Bounds().Size())
	assert.Equal(t, image.Pt(225, 300), results[1].Image.Bounds().Size())
	assert.Equal(t, image.Pt(400, 300), results[2].Image.Bounds().Size())

	_, err = c.CropToMultipleRatios(img, []AspectRatio{Square, {Width: 0, Height: 1, Name: "broken"}})
	assert.ErrorIs(t, err, ErrInvalidAspectRatio)
}

func TestParseAspectRatio(t *testing.T) {
	r, err := ParseAspectRatio("story")
	require.NoError(t, err)
	assert.Equal(t, Story, r)

	r, err = ParseAspectRatio("21:9")
	require.NoError(t, err)
	assert.Equal(t, AspectRatio{Width: 21, Height: 9, Name: "21x9"}, r)

	for _, bad := range []string{"", "wide", "0:4", "4:-1"} {
		_, err := ParseAspectRatio(bad)
		assert.ErrorIs(t, err, ErrInvalidAspectRatio, bad)
	}
}

func BenchmarkCropToAspectFill(b *testing.B) {
	img := createTestImage(1920, 1080)
	target := types.NewRect(1, 1)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		CropToAspectFill(img, target)
	}
}

func BenchmarkCropZeroCopy(b *testing.B) {
	c := NewWithConfig(CropConfig{ZeroCopy: true})
	img := createTestImage(1920, 1080)
	ratios := CommonAspectRatios()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c.CropToMultipleRatios(img, ratios)
	}
}
