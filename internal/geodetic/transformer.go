package geodetic

import (
	"sync"
	"sync/atomic"

	"github.com/westpoint-robotics/ros-cot/internal/vector"
)

// DefaultSmoothing is the blend factor used by FilteredUpdate callers that do
// not configure one.
const DefaultSmoothing = 0.25

// Transformer is a concurrency-safe holder for a moving Origin. Readers load
// the current snapshot without locking; updates are serialized by mu and
// publish a fully built replacement.
type Transformer struct {
	mu     sync.Mutex
	origin atomic.Pointer[Origin]
}

// NewTransformer creates a transformer centered on c.
func NewTransformer(c Coordinate3D) (*Transformer, error) {
	o, err := NewOrigin(c)
	if err != nil {
		return nil, err
	}
	t := &Transformer{}
	t.origin.Store(o)
	return t, nil
}

// Origin returns the current snapshot. It stays valid after later updates.
func (t *Transformer) Origin() *Origin { return t.origin.Load() }

// Update replaces the origin with c.
func (t *Transformer) Update(c Coordinate3D) error {
	return t.FilteredUpdate(c, 1)
}

// FilteredUpdate blends the origin toward c by alpha in [0, 1].
func (t *Transformer) FilteredUpdate(c Coordinate3D, alpha float64) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	next, err := t.origin.Load().Filtered(c, alpha)
	if err != nil {
		return err
	}
	t.origin.Store(next)
	return nil
}

func (t *Transformer) ECEFToENU(p vector.Point3D) vector.Point3D {
	return t.Origin().ECEFToENU(p)
}

func (t *Transformer) ENUToECEF(l vector.Point3D) vector.Point3D {
	return t.Origin().ENUToECEF(l)
}

func (t *Transformer) GeodeticToENU(c Coordinate3D) vector.Point3D {
	return t.Origin().GeodeticToENU(c)
}

func (t *Transformer) ENUToGeodetic(l vector.Point3D) Coordinate3D {
	return t.Origin().ENUToGeodetic(l)
}
