package render

import (
	"image"
	"image/color"
	"image/draw"
	"math"
	"sync/atomic"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/math/f64"

	"BrushBoard/internal/logging"
	"BrushBoard/internal/state"
)

// Raster is a software Target drawing into an NRGBA image. Frames are
// published by CommitCommands as copies, so an image returned by Frame is
// never written to afterwards.
type Raster struct {
	textures   *Textures
	background color.NRGBA
	buf        *image.NRGBA
	frame      atomic.Pointer[image.NRGBA]
	commits    atomic.Int64
}

// NewRaster returns a target of the given size with a transparent
// background.
func NewRaster(size image.Point, textures *Textures) *Raster {
	r := &Raster{textures: textures}
	r.UpdateBuffer(size)
	return r
}

// SetBackground sets the color Clear fills with.
func (r *Raster) SetBackground(c color.Color) {
	r.background = color.NRGBAModel.Convert(c).(color.NRGBA)
}

func (r *Raster) Probe() error { return nil }

func (r *Raster) Size() image.Point { return r.buf.Rect.Size() }

func (r *Raster) UpdateBuffer(size image.Point) {
	if r.buf != nil && r.buf.Rect.Size() == size {
		return
	}
	next := image.NewNRGBA(image.Rectangle{Max: size})
	if r.buf != nil {
		draw.Draw(next, next.Rect, r.buf, image.Point{}, draw.Src)
	}
	r.buf = next
}

func (r *Raster) Clear() {
	draw.Draw(r.buf, r.buf.Rect, image.NewUniform(r.background), image.Point{}, draw.Src)
}

func (r *Raster) DrawSprites(vertices []state.Vertex, textureID string, blend state.BlendMode) {
	tex, ok := r.textures.Find(textureID)
	if !ok {
		logging.Logger().Warn("missing sprite texture, using default dot", "texture", textureID)
		tex, _ = r.textures.Find("")
	}
	for _, v := range vertices {
		if v.Size < 0.5 {
			continue
		}
		mask, bounds := r.spriteMask(tex, v)
		if mask == nil {
			continue
		}
		if blend == state.BlendErase {
			r.erase(mask, bounds, v.Color.A)
			continue
		}
		draw.DrawMask(r.buf, bounds, image.NewUniform(v.Color), image.Point{}, mask, bounds.Min, draw.Over)
	}
}

// spriteMask renders the texture's alpha, scaled to the sprite size and
// rotated, into a mask covering the sprite's bounding box.
func (r *Raster) spriteMask(tex image.Image, v state.Vertex) (*image.Alpha, image.Rectangle) {
	size := float64(v.Size)
	aff, bounds := spriteTransform(tex.Bounds(), float64(v.Position.X), float64(v.Position.Y), size, size, float64(v.Angle))
	bounds = bounds.Intersect(r.buf.Rect)
	if bounds.Empty() {
		return nil, bounds
	}
	mask := image.NewAlpha(bounds)
	xdraw.ApproxBiLinear.Transform(mask, aff, tex, tex.Bounds(), xdraw.Src, nil)
	return mask, bounds
}

// erase scales destination alpha down by the mask coverage.
func (r *Raster) erase(mask *image.Alpha, bounds image.Rectangle, strength uint8) {
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			a := uint32(mask.AlphaAt(x, y).A) * uint32(strength) / 0xff
			if a == 0 {
				continue
			}
			i := r.buf.PixOffset(x, y) + 3
			r.buf.Pix[i] = uint8(uint32(r.buf.Pix[i]) * (0xff - a) / 0xff)
		}
	}
}

func (r *Raster) DrawChartlet(c *state.Chartlet, scale float32) {
	tex, ok := r.textures.Find(c.TextureID)
	if !ok {
		logging.Logger().Warn("missing chartlet texture", "texture", c.TextureID, "index", c.Index)
		return
	}
	s := float64(scale)
	aff, _ := spriteTransform(tex.Bounds(),
		float64(c.Center.X)*s, float64(c.Center.Y)*s,
		float64(c.Width)*s, float64(c.Height)*s, float64(c.Angle))
	xdraw.ApproxBiLinear.Transform(r.buf, aff, tex, tex.Bounds(), xdraw.Over, nil)
}

// CommitCommands publishes a copy of the buffer as the current frame.
func (r *Raster) CommitCommands() {
	frame := image.NewNRGBA(r.buf.Rect)
	copy(frame.Pix, r.buf.Pix)
	r.frame.Store(frame)
	r.commits.Add(1)
}

// Frame returns the last committed frame, or nil before the first commit.
func (r *Raster) Frame() *image.NRGBA { return r.frame.Load() }

// Commits counts calls to CommitCommands.
func (r *Raster) Commits() int { return int(r.commits.Load()) }

// spriteTransform maps src onto a w by h box centered on (cx, cy) and
// rotated by angle. It also returns the destination bounding box.
func spriteTransform(src image.Rectangle, cx, cy, w, h, angle float64) (f64.Aff3, image.Rectangle) {
	sw, sh := float64(src.Dx()), float64(src.Dy())
	kx, ky := w/sw, h/sh
	sin, cos := math.Sincos(angle)
	a, b := kx*cos, -ky*sin
	d, e := kx*sin, ky*cos
	ox, oy := float64(src.Min.X)+sw/2, float64(src.Min.Y)+sh/2
	aff := f64.Aff3{
		a, b, cx - (a*ox + b*oy),
		d, e, cy - (d*ox + e*oy),
	}

	hw := (math.Abs(w*cos) + math.Abs(h*sin)) / 2
	hh := (math.Abs(w*sin) + math.Abs(h*cos)) / 2
	bounds := image.Rect(
		int(math.Floor(cx-hw)), int(math.Floor(cy-hh)),
		int(math.Ceil(cx+hw)), int(math.Ceil(cy+hh)),
	)
	return aff, bounds
}
