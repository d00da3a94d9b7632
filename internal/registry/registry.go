// Package registry holds every image the editor works on.
//
// Each entry owns a full-resolution original, a preview sized for display,
// the scale between them, and an optional threshold base: the snapshot the
// first threshold operation takes so that later threshold adjustments start
// from the same pixels instead of compounding.
//
// Registry is safe for concurrent use. An RWMutex guards the entry map and
// each entry carries its own mutex, so read-modify-write sequences on one
// image never interleave while different images proceed independently.
package registry

import (
	"errors"
	"fmt"
	"image"
	"sync"

	"github.com/ironsheep/crossprint-mcp/internal/imaging"
)

// Default resolution caps, in pixels along the long edge.
const (
	DefaultPreviewLongEdge = 1600
	DefaultFullLongEdge    = 8000
)

// ErrUnknownImage is returned for an ID the registry never issued.
var ErrUnknownImage = errors.New("unknown image id")

// ID identifies a registered image. IDs start at 1 and are never reused by
// the registry that issued them.
type ID uint64

// Meta describes an entry's preview. Preview coordinates divided by Scale
// give full-resolution coordinates.
type Meta struct {
	PreviewWidth  int     `json:"preview_width"`
	PreviewHeight int     `json:"preview_height"`
	Scale         float64 `json:"scale"`
}

// Entry is a snapshot of one registered image. All images are treated as
// immutable; edits replace them.
type Entry struct {
	ID            ID
	Original      image.Image
	Preview       image.Image
	Scale         float64
	ThresholdBase image.Image // nil until the first threshold operation
}

// Meta returns the preview description for e.
func (e Entry) Meta() Meta {
	b := e.Preview.Bounds()
	return Meta{PreviewWidth: b.Dx(), PreviewHeight: b.Dy(), Scale: e.Scale}
}

type slot struct {
	mu    sync.Mutex
	entry Entry
}

// Registry maps IDs to image entries.
type Registry struct {
	mu              sync.RWMutex
	slots           map[ID]*slot
	nextID          ID
	previewLongEdge int
	fullLongEdge    int
}

// Option configures a Registry.
type Option func(*Registry)

// WithPreviewLongEdge sets the preview cap. Non-positive values are ignored.
func WithPreviewLongEdge(n int) Option {
	return func(r *Registry) {
		if n > 0 {
			r.previewLongEdge = n
		}
	}
}

// WithFullLongEdge sets the full-resolution cap. Non-positive values are
// ignored.
func WithFullLongEdge(n int) Option {
	return func(r *Registry) {
		if n > 0 {
			r.fullLongEdge = n
		}
	}
}

// New creates an empty registry.
func New(opts ...Option) *Registry {
	r := &Registry{
		slots:           make(map[ID]*slot),
		nextID:          1,
		previewLongEdge: DefaultPreviewLongEdge,
		fullLongEdge:    DefaultFullLongEdge,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register stores img under a new ID.
//
// An image whose long edge exceeds the full-resolution cap is downsampled
// first. The preview is built from the stored original.
func (r *Registry) Register(img image.Image) ID {
	entry := r.build(img)

	r.mu.Lock()
	defer r.mu.Unlock()
	id := r.nextID
	r.nextID++
	entry.ID = id
	r.slots[id] = &slot{entry: entry}
	return id
}

// Replace swaps in a new original for id, rebuilding the preview and
// clearing the threshold base.
func (r *Registry) Replace(id ID, img image.Image) error {
	s, err := r.slot(id)
	if err != nil {
		return err
	}
	entry := r.build(img)
	entry.ID = id

	s.mu.Lock()
	s.entry = entry
	s.mu.Unlock()
	return nil
}

// Get returns a snapshot of the entry for id.
func (r *Registry) Get(id ID) (Entry, error) {
	s, err := r.slot(id)
	if err != nil {
		return Entry{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.entry, nil
}

// Describe returns the preview metadata for id.
func (r *Registry) Describe(id ID) (Meta, error) {
	e, err := r.Get(id)
	if err != nil {
		return Meta{}, err
	}
	return e.Meta(), nil
}

// PreviewBytes returns the preview for id encoded as PNG.
func (r *Registry) PreviewBytes(id ID) ([]byte, error) {
	e, err := r.Get(id)
	if err != nil {
		return nil, err
	}
	return imaging.PNGBytes(e.Preview)
}

// Len returns the number of registered images.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.slots)
}

// Apply runs a structural edit on id.
//
// fn receives the current entry and returns the new original. If fn fails,
// the entry is left exactly as it was. On success the original and preview
// are replaced and the threshold base is cleared, since it no longer
// matches the geometry of the image.
func (r *Registry) Apply(id ID, fn func(Entry) (image.Image, error)) (Meta, error) {
	s, err := r.slot(id)
	if err != nil {
		return Meta{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	img, err := fn(s.entry)
	if err != nil {
		return Meta{}, err
	}
	entry := r.build(img)
	entry.ID = id
	s.entry = entry
	return entry.Meta(), nil
}

// ApplyThreshold runs a threshold edit on id.
//
// fn always receives the threshold base: the snapshot taken by the first
// threshold call since the last structural edit, or the current original
// when there is none yet. After a successful call the base is retained, so
// successive threshold operations in any order read the same pixels. If fn
// fails, the entry is left exactly as it was.
func (r *Registry) ApplyThreshold(id ID, fn func(base image.Image) (image.Image, error)) (Meta, error) {
	s, err := r.slot(id)
	if err != nil {
		return Meta{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	base := s.entry.ThresholdBase
	if base == nil {
		base = s.entry.Original
	}

	img, err := fn(base)
	if err != nil {
		return Meta{}, err
	}
	entry := r.build(img)
	entry.ID = id
	entry.ThresholdBase = base
	s.entry = entry
	return entry.Meta(), nil
}

// ThresholdBase returns the image the next threshold operation on id would
// read: the cached base, or the original when none is cached.
func (r *Registry) ThresholdBase(id ID) (image.Image, error) {
	e, err := r.Get(id)
	if err != nil {
		return nil, err
	}
	if e.ThresholdBase != nil {
		return e.ThresholdBase, nil
	}
	return e.Original, nil
}

func (r *Registry) slot(id ID) (*slot, error) {
	r.mu.RLock()
	s, ok := r.slots[id]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownImage, id)
	}
	return s, nil
}

// build applies the full-resolution cap and derives the preview.
func (r *Registry) build(img image.Image) Entry {
	original, _ := imaging.FitLongEdge(imaging.Canonical(img), r.fullLongEdge)
	preview, scale := imaging.FitLongEdge(original, r.previewLongEdge)
	return Entry{Original: original, Preview: preview, Scale: scale}
}
