// Package editor is the operation façade the outer surface calls.
//
// Callers work in preview coordinates: the points and rectangles they send
// are measured on the preview returned by Preview. The service converts them
// to full-resolution coordinates with the entry's scale, runs the operator
// from internal/imaging on the full-resolution original, and commits the
// result through the registry. A failed operation never changes the stored
// image.
package editor

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/ironsheep/crossprint-mcp/internal/geometry"
	"github.com/ironsheep/crossprint-mcp/internal/imaging"
	"github.com/ironsheep/crossprint-mcp/internal/registry"
)

// ErrUnknownMethod is returned for a threshold method other than "global"
// or "otsu".
var ErrUnknownMethod = errors.New("unknown threshold method")

// Threshold methods accepted by ApplyThreshold.
const (
	MethodGlobal = "global"
	MethodOtsu   = "otsu"
)

// Service runs editing operations against a registry.
type Service struct {
	reg    *registry.Registry
	fill   color.Color
	now    func() time.Time
	logger *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithFill sets the colour used for warp output pixels that fall outside
// the source image.
func WithFill(c color.Color) Option {
	return func(s *Service) { s.fill = c }
}

// WithClock replaces time.Now for export file naming.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// New creates a service over reg.
func New(reg *registry.Registry, opts ...Option) *Service {
	s := &Service{
		reg:    reg,
		fill:   color.Black,
		now:    time.Now,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// LoadResult is returned by Load and LoadFile.
type LoadResult struct {
	ID     registry.ID   `json:"image_id"`
	Format string        `json:"format"`
	Meta   registry.Meta `json:"meta"`
}

// Load decodes an image from r and registers it.
func (s *Service) Load(r io.Reader) (LoadResult, error) {
	decoded, err := imaging.Decode(r)
	if err != nil {
		return LoadResult{}, err
	}
	return s.register(decoded)
}

// LoadFile decodes the image at path and registers it.
func (s *Service) LoadFile(path string) (LoadResult, error) {
	decoded, err := imaging.DecodeFile(path)
	if err != nil {
		return LoadResult{}, err
	}
	res, err := s.register(decoded)
	if err == nil {
		s.logger.Debug("loaded image file", "path", path, "id", res.ID)
	}
	return res, err
}

func (s *Service) register(d *imaging.Decoded) (LoadResult, error) {
	id := s.reg.Register(d.Image)
	meta, err := s.reg.Describe(id)
	if err != nil {
		return LoadResult{}, err
	}
	b := d.Image.Bounds()
	s.logger.Debug("registered image", "id", id, "format", d.Format,
		"width", b.Dx(), "height", b.Dy(), "scale", meta.Scale)
	return LoadResult{ID: id, Format: d.Format, Meta: meta}, nil
}

// Preview returns the preview of id as PNG bytes.
func (s *Service) Preview(id registry.ID) ([]byte, error) {
	return s.reg.PreviewBytes(id)
}

// PreviewWithGrid returns the preview of id with a coordinate grid drawn
// over it, as PNG bytes. Grid labels are preview coordinates, the same space
// the Apply operations take.
func (s *Service) PreviewWithGrid(id registry.ID, opts imaging.GridOptions) ([]byte, error) {
	e, err := s.reg.Get(id)
	if err != nil {
		return nil, err
	}
	return imaging.PNGBytes(imaging.DrawGrid(e.Preview, opts))
}

// Describe returns the preview metadata of id.
func (s *Service) Describe(id registry.ID) (registry.Meta, error) {
	return s.reg.Describe(id)
}

// Details is the extended description returned by Inspect.
type Details struct {
	Meta registry.Meta `json:"meta"`
	imaging.Info
	ThresholdBaseCached bool `json:"threshold_base_cached"`
}

// Inspect returns the preview metadata together with the full-resolution
// dimensions and channel layout of id.
func (s *Service) Inspect(id registry.ID) (Details, error) {
	e, err := s.reg.Get(id)
	if err != nil {
		return Details{}, err
	}
	return Details{
		Meta:                e.Meta(),
		Info:                imaging.Describe(e.Original),
		ThresholdBaseCached: e.ThresholdBase != nil,
	}, nil
}

// ApplyWarp straightens the quadrilateral pts (preview coordinates, any
// order) in place, keeping the canvas size.
func (s *Service) ApplyWarp(id registry.ID, pts [4]geometry.Point) (registry.Meta, error) {
	meta, err := s.reg.Apply(id, func(e registry.Entry) (image.Image, error) {
		quad := toFull(pts, e.Scale)
		return imaging.WarpFullCanvas(e.Original, quad, imaging.WarpOptions{Fill: s.fill})
	})
	if err != nil {
		return registry.Meta{}, err
	}
	s.logger.Debug("applied warp", "id", id, "mode", "full_canvas", "meta", meta)
	return meta, nil
}

// ApplyWarpToSquare replaces id with the quadrilateral pts (preview
// coordinates, any order) rectified into a square.
func (s *Service) ApplyWarpToSquare(id registry.ID, pts [4]geometry.Point) (registry.Meta, error) {
	meta, err := s.reg.Apply(id, func(e registry.Entry) (image.Image, error) {
		quad := toFull(pts, e.Scale)
		return imaging.WarpToSquare(e.Original, quad, imaging.WarpOptions{Fill: s.fill})
	})
	if err != nil {
		return registry.Meta{}, err
	}
	s.logger.Debug("applied warp", "id", id, "mode", "to_square", "meta", meta)
	return meta, nil
}

// PreviewRect is a crop rectangle in preview coordinates.
type PreviewRect struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
}

// ApplyCrop crops id to rect. Each edge is divided by the preview scale and
// truncated toward zero before cropping. Edges beyond the image clamp to it.
func (s *Service) ApplyCrop(id registry.ID, rect PreviewRect) (registry.Meta, error) {
	for _, v := range []float64{rect.Left, rect.Top, rect.Right, rect.Bottom} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return registry.Meta{}, fmt.Errorf("%w: non-finite edge", imaging.ErrInvalidCrop)
		}
	}

	var full imaging.Rect
	meta, err := s.reg.Apply(id, func(e registry.Entry) (image.Image, error) {
		b := e.Original.Bounds()
		full = imaging.Rect{
			Left:   toFullEdge(rect.Left, e.Scale, b.Dx()),
			Top:    toFullEdge(rect.Top, e.Scale, b.Dy()),
			Right:  toFullEdge(rect.Right, e.Scale, b.Dx()),
			Bottom: toFullEdge(rect.Bottom, e.Scale, b.Dy()),
		}
		return imaging.CropAxisAligned(e.Original, full)
	})
	if err != nil {
		return registry.Meta{}, err
	}
	s.logger.Debug("applied crop", "id", id, "rect", full, "meta", meta)
	return meta, nil
}

// ApplyThreshold binarizes id.
//
// method is MethodGlobal or MethodOtsu. For MethodGlobal, value is clamped
// to 0..255; it is ignored for MethodOtsu. Every threshold call reads the
// same cached base, so calls in any order match a single call with the
// final parameters.
func (s *Service) ApplyThreshold(id registry.ID, method string, value int) (registry.Meta, error) {
	var op func(image.Image) (image.Image, error)
	switch method {
	case MethodGlobal:
		value = clampLevel(value)
		op = func(base image.Image) (image.Image, error) {
			return imaging.ThresholdGlobal(base, value)
		}
	case MethodOtsu:
		op = func(base image.Image) (image.Image, error) {
			out, level := imaging.ThresholdOtsu(base)
			value = int(level)
			return out, nil
		}
	default:
		return registry.Meta{}, fmt.Errorf("%w: %q", ErrUnknownMethod, method)
	}

	meta, err := s.reg.ApplyThreshold(id, op)
	if err != nil {
		return registry.Meta{}, err
	}
	s.logger.Debug("applied threshold", "id", id, "method", method, "level", value)
	return meta, nil
}

// SuggestThreshold returns the Otsu level for id without changing it. The
// level is computed on the image the next threshold call would read.
func (s *Service) SuggestThreshold(id registry.ID) (uint8, error) {
	base, err := s.reg.ThresholdBase(id)
	if err != nil {
		return 0, err
	}
	return imaging.OtsuLevel(base), nil
}

// Export writes the full-resolution image for id to dir as a PNG named
// after the current local time, creating dir if needed. It returns the path
// written.
func (s *Service) Export(id registry.ID, dir string) (string, error) {
	e, err := s.reg.Get(id)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create export directory: %w", err)
	}

	f, path, err := createExclusive(dir, exportName(s.now()))
	if err != nil {
		return "", err
	}
	if err := imaging.EncodePNG(f, e.Original); err != nil {
		f.Close()
		os.Remove(path)
		return "", err
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("failed to write export: %w", err)
	}
	s.logger.Debug("exported image", "id", id, "path", path)
	return path, nil
}

// exportName formats t as puzzle_YYYYMMDD_HHMMSS_<zone>.
func exportName(t time.Time) string {
	return "puzzle_" + t.Format("20060102_150405_MST")
}

// createExclusive creates dir/base.png, or dir/base_N.png for the first N
// that does not exist yet. The file is created with O_EXCL, so an existing
// export is never opened for writing.
func createExclusive(dir, base string) (*os.File, string, error) {
	path := filepath.Join(dir, base+".png")
	for n := 1; ; n++ {
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if err == nil {
			return f, path, nil
		}
		if !errors.Is(err, os.ErrExist) {
			return nil, "", fmt.Errorf("failed to create export: %w", err)
		}
		path = filepath.Join(dir, fmt.Sprintf("%s_%d.png", base, n))
	}
}

func toFull(pts [4]geometry.Point, scale float64) geometry.Quad {
	var q geometry.Quad
	for i, p := range pts {
		q[i] = p.Scale(1 / scale)
	}
	return q
}

// toFullEdge converts a preview edge to full resolution, truncating toward
// zero. The result is kept within [-1, size+1] so the conversion cannot
// overflow int; CropAxisAligned does the exact clamp.
func toFullEdge(v, scale float64, size int) int {
	return int(math.Max(-1, math.Min(v/scale, float64(size+1))))
}

func clampLevel(v int) int {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return v
}
