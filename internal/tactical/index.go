package tactical

import (
	"math"

	"github.com/dhconnelly/rtreego"

	"github.com/westpoint-robotics/ros-cot/internal/geodetic"
)

// Kind tells which collection of a SpatialConstraints an indexed area
// belongs to.
type Kind uint8

const (
	KindInclusion Kind = iota
	KindExclusion
	KindWarning
	kindCount
)

func (k Kind) String() string {
	switch k {
	case KindInclusion:
		return "inclusion"
	case KindExclusion:
		return "exclusion"
	case KindWarning:
		return "warning"
	default:
		return "unknown"
	}
}

const (
	// boundsPadding widens every envelope in degrees to cover the bow left
	// between envelope samples.
	boundsPadding = 1e-3
	// pointExtent is the half-size of the box used to query a single point.
	pointExtent = 1e-9
	// Areas wider than this in longitude are assumed to wrap the
	// antimeridian and are never pruned.
	maxIndexedLonSpan = 180.0
)

type indexedArea struct {
	kind Kind
	pos  int
	rect rtreego.Rect
}

// Bounds implements rtreego.Spatial.
func (e *indexedArea) Bounds() rtreego.Rect { return e.rect }

// Index is an R-tree over area bounding boxes. It only prunes candidates and
// never decides containment on its own.
type Index struct {
	tree      *rtreego.Rtree
	unindexed []*indexedArea
	size      int
}

// extent is a lat/lon bounding box in degrees.
type extent struct {
	minLat, minLon, maxLat, maxLon float64
}

func emptyExtent() extent {
	return extent{minLat: math.Inf(1), minLon: math.Inf(1), maxLat: math.Inf(-1), maxLon: math.Inf(-1)}
}

func (e *extent) add(sw, ne geodetic.Coordinate) {
	e.minLat = math.Min(e.minLat, sw.Latitude.Degrees())
	e.minLon = math.Min(e.minLon, sw.Longitude.Degrees())
	e.maxLat = math.Max(e.maxLat, ne.Latitude.Degrees())
	e.maxLon = math.Max(e.maxLon, ne.Longitude.Degrees())
}

func (e *extent) addArea(a Area) {
	for _, s := range a.segments {
		if sw, ne, ok := s.prism.Polygon().Envelope(); ok {
			e.add(sw, ne)
		}
	}
}

func (e extent) rect() (rtreego.Rect, bool) {
	if e.maxLat < e.minLat {
		return rtreego.Rect{}, false
	}
	if e.maxLon-e.minLon > maxIndexedLonSpan {
		return rtreego.Rect{}, false
	}
	point := rtreego.Point{e.minLon - boundsPadding, e.minLat - boundsPadding}
	lengths := []float64{
		e.maxLon - e.minLon + 2*boundsPadding,
		e.maxLat - e.minLat + 2*boundsPadding,
	}
	rect, err := rtreego.NewRect(point, lengths)
	return rect, err == nil
}

func newIndex(inclusions, exclusions []Area, warnings []WarningArea) *Index {
	ix := &Index{tree: rtreego.NewTree(2, 25, 50)}
	add := func(kind Kind, pos int, e extent) {
		entry := &indexedArea{kind: kind, pos: pos}
		ix.size++
		if rect, ok := e.rect(); ok {
			entry.rect = rect
			ix.tree.Insert(entry)
			return
		}
		ix.unindexed = append(ix.unindexed, entry)
	}
	for i, a := range inclusions {
		e := emptyExtent()
		e.addArea(a)
		add(KindInclusion, i, e)
	}
	for i, a := range exclusions {
		e := emptyExtent()
		e.addArea(a)
		add(KindExclusion, i, e)
	}
	for i, w := range warnings {
		e := emptyExtent()
		for _, a := range w.areas {
			e.addArea(a)
		}
		add(KindWarning, i, e)
	}
	return ix
}

// Size returns the number of areas known to the index.
func (ix *Index) Size() int { return ix.size }

// candidates is the set of areas whose boxes contain a query point.
type candidates [kindCount]map[int]struct{}

func (c candidates) has(kind Kind, pos int) bool {
	_, ok := c[kind][pos]
	return ok
}

// Candidates returns, per kind, the positions of areas whose padded bounding
// box contains c.
func (ix *Index) Candidates(c geodetic.Coordinate) map[Kind][]int {
	cand := ix.candidates(c)
	out := make(map[Kind][]int, kindCount)
	for k := Kind(0); k < kindCount; k++ {
		for pos := range cand[k] {
			out[k] = append(out[k], pos)
		}
	}
	return out
}

func (ix *Index) candidates(c geodetic.Coordinate) candidates {
	var out candidates
	for k := range out {
		out[k] = make(map[int]struct{})
	}
	point := rtreego.Point{c.Longitude.Degrees() - pointExtent, c.Latitude.Degrees() - pointExtent}
	query, err := rtreego.NewRect(point, []float64{2 * pointExtent, 2 * pointExtent})
	if err == nil {
		for _, s := range ix.tree.SearchIntersect(query) {
			e := s.(*indexedArea)
			out[e.kind][e.pos] = struct{}{}
		}
	}
	for _, e := range ix.unindexed {
		out[e.kind][e.pos] = struct{}{}
	}
	return out
}
