package button

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"golang.org/x/image/vector"
)

// kappa places cubic control points so four segments approximate a circle
const kappa = 0.5522847

type painter struct {
	dst *image.NRGBA
	z   *vector.Rasterizer
}

func newPainter(dst *image.NRGBA) *painter {
	b := dst.Bounds()
	z := vector.NewRasterizer(b.Dx(), b.Dy())
	z.DrawOp = draw.Over
	return &painter{dst: dst, z: z}
}

func (p *painter) fill(c color.NRGBA) {
	p.z.Draw(p.dst, p.dst.Bounds(), image.NewUniform(c), image.Point{})
	b := p.dst.Bounds()
	p.z.Reset(b.Dx(), b.Dy())
	p.z.DrawOp = draw.Over
}

func (p *painter) disc(cx, cy, r float32, c color.NRGBA) {
	p.circle(cx, cy, r, false)
	p.fill(c)
}

// ring fills the area between two circles. The inner circle is wound the
// other way so it cancels the outer one.
func (p *painter) ring(cx, cy, outer, inner float32, c color.NRGBA) {
	p.circle(cx, cy, outer, false)
	p.circle(cx, cy, inner, true)
	p.fill(c)
}

// cross fills two diagonal bars of half length l and half thickness t
func (p *painter) cross(cx, cy, l, t float32, c color.NRGBA) {
	const s = float32(math.Sqrt2 / 2)
	p.bar(cx, cy, s, s, l, t)
	p.bar(cx, cy, s, -s, l, t)
	p.fill(c)
}

func (p *painter) bar(cx, cy, dx, dy, l, t float32) {
	nx, ny := -dy, dx
	p.z.MoveTo(cx+dx*l+nx*t, cy+dy*l+ny*t)
	p.z.LineTo(cx+dx*l-nx*t, cy+dy*l-ny*t)
	p.z.LineTo(cx-dx*l-nx*t, cy-dy*l-ny*t)
	p.z.LineTo(cx-dx*l+nx*t, cy-dy*l+ny*t)
	p.z.ClosePath()
}

func (p *painter) circle(cx, cy, r float32, reverse bool) {
	k := r * kappa
	p.z.MoveTo(cx+r, cy)
	if reverse {
		p.z.CubeTo(cx+r, cy-k, cx+k, cy-r, cx, cy-r)
		p.z.CubeTo(cx-k, cy-r, cx-r, cy-k, cx-r, cy)
		p.z.CubeTo(cx-r, cy+k, cx-k, cy+r, cx, cy+r)
		p.z.CubeTo(cx+k, cy+r, cx+r, cy+k, cx+r, cy)
	} else {
		p.z.CubeTo(cx+r, cy+k, cx+k, cy+r, cx, cy+r)
		p.z.CubeTo(cx-k, cy+r, cx-r, cy+k, cx-r, cy)
		p.z.CubeTo(cx-r, cy-k, cx-k, cy-r, cx, cy-r)
		p.z.CubeTo(cx+k, cy-r, cx+r, cy-k, cx+r, cy)
	}
	p.z.ClosePath()
}
