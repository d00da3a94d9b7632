package imaging

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/ironsheep/crossprint-mcp/internal/geometry"
)

// WarpOptions controls resampling for the perspective warps.
type WarpOptions struct {
	// Fill is used for output pixels that map outside the source image.
	// Defaults to opaque black.
	Fill color.Color
}

// snapTolerance absorbs floating-point noise from the projective solve so
// that coordinates meant to be integral read exactly one source pixel.
const snapTolerance = 1e-6

// WarpToSquare rectifies the region inside quad into a new square image.
//
// Parameters:
//   - img: Source image.
//   - quad: Four corners in img's pixel coordinates, in any order.
//   - opts: Resampling options.
//
// Returns a side×side image where side = round(max(1, SquareSide(quad))).
// The transform maps the destination square (0,0)-(side,side) onto the
// ordered quad, and each output pixel is sampled bilinearly from the source.
//
// # Errors
//
//   - geometry.ErrDegenerateQuad if the corners cannot be ordered
//   - geometry.ErrHomographyEstimation if the transform is unstable
func WarpToSquare(img image.Image, quad geometry.Quad, opts WarpOptions) (image.Image, error) {
	ordered, err := geometry.OrderQuad(quad)
	if err != nil {
		return nil, err
	}

	side := math.Max(1, geometry.SquareSide(ordered))
	dst := geometry.Quad{
		geometry.Pt(0, 0),
		geometry.Pt(side, 0),
		geometry.Pt(side, side),
		geometry.Pt(0, side),
	}

	// Output pixel -> source pixel.
	h, err := geometry.EstimateHomography(dst, ordered)
	if err != nil {
		return nil, fmt.Errorf("warp to square: %w", err)
	}

	n := int(math.Round(side))
	if n < 1 {
		n = 1
	}

	src := Canonical(img)
	return resample(src, n, n, h, opts.Fill), nil
}

// WarpFullCanvas straightens the region inside quad in place.
//
// The ordered quad is mapped onto an axis-aligned square of the same
// estimated side, centred on the quad's centroid. The transform is estimated
// from the source quad to that square and then inverted so that every output
// pixel can be looked up in the source. The output keeps img's width and
// height; the rest of the canvas is reprojected around the corrected region.
//
// # Errors
//
//   - geometry.ErrDegenerateQuad if the corners cannot be ordered
//   - geometry.ErrHomographyEstimation if the transform or its inverse is unstable
func WarpFullCanvas(img image.Image, quad geometry.Quad, opts WarpOptions) (image.Image, error) {
	ordered, err := geometry.OrderQuad(quad)
	if err != nil {
		return nil, err
	}

	side := math.Max(1, geometry.SquareSide(ordered))
	c := ordered.Centroid()
	half := side / 2
	dst := geometry.Quad{
		geometry.Pt(c.X-half, c.Y-half),
		geometry.Pt(c.X+half, c.Y-half),
		geometry.Pt(c.X+half, c.Y+half),
		geometry.Pt(c.X-half, c.Y+half),
	}

	fwd, err := geometry.EstimateHomography(ordered, dst)
	if err != nil {
		return nil, fmt.Errorf("warp full canvas: %w", err)
	}
	inv, err := fwd.Inverse()
	if err != nil {
		return nil, fmt.Errorf("warp full canvas: %w", err)
	}

	src := Canonical(img)
	b := src.Bounds()
	return resample(src, b.Dx(), b.Dy(), inv, opts.Fill), nil
}

// resample builds a w×h image with src's layout where each output pixel
// (x,y) takes the bilinear sample of src at toSrc(x,y).
func resample(src image.Image, w, h int, toSrc geometry.Homography, fill color.Color) image.Image {
	out, dr := newLike(src, w, h)
	sr := rasterOf(src)
	fv := fillValues(fill, sr.ch)

	for y := 0; y < h; y++ {
		row := dr.pix[y*dr.stride:]
		for x := 0; x < w; x++ {
			px := row[x*dr.ch : x*dr.ch+dr.ch]
			p, ok := toSrc.Project(geometry.Pt(float64(x), float64(y)))
			if !ok {
				copy(px, fv)
				continue
			}
			sr.bilinear(p.X, p.Y, fv, px)
		}
	}
	return out
}

// bilinear writes the interpolated value at (sx,sy) into out. Neighbours
// outside the raster contribute the fill value.
func (r raster) bilinear(sx, sy float64, fill, out []uint8) {
	sx, sy = snap(sx), snap(sy)
	if !(sx > -1 && sy > -1 && sx < float64(r.w) && sy < float64(r.h)) {
		copy(out, fill)
		return
	}

	x0f, y0f := math.Floor(sx), math.Floor(sy)
	fx, fy := sx-x0f, sy-y0f
	x0, y0 := int(x0f), int(y0f)

	w00 := (1 - fx) * (1 - fy)
	w10 := fx * (1 - fy)
	w01 := (1 - fx) * fy
	w11 := fx * fy

	for c := 0; c < r.ch; c++ {
		v := w00*r.at(x0, y0, c, fill) +
			w10*r.at(x0+1, y0, c, fill) +
			w01*r.at(x0, y0+1, c, fill) +
			w11*r.at(x0+1, y0+1, c, fill)
		out[c] = clampByte(v)
	}
}

func (r raster) at(x, y, c int, fill []uint8) float64 {
	if x < 0 || y < 0 || x >= r.w || y >= r.h {
		return float64(fill[c])
	}
	return float64(r.pix[y*r.stride+x*r.ch+c])
}

func snap(v float64) float64 {
	if rv := math.Round(v); math.Abs(v-rv) < snapTolerance {
		return rv
	}
	return v
}

func clampByte(v float64) uint8 {
	v = math.Round(v)
	if v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(v)
}

func fillValues(fill color.Color, ch int) []uint8 {
	if fill == nil {
		fill = color.Black
	}
	if ch == 1 {
		g := color.GrayModel.Convert(fill).(color.Gray)
		return []uint8{g.Y}
	}
	n := color.NRGBAModel.Convert(fill).(color.NRGBA)
	return []uint8{n.R, n.G, n.B, n.A}
}
