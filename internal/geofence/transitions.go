package geofence

import (
	"slices"
	"sync"
	"time"

	"github.com/westpoint-robotics/ros-cot/internal/geodetic"
	"github.com/westpoint-robotics/ros-cot/internal/tactical"
	"github.com/westpoint-robotics/ros-cot/pkg/logger"
)

// TransitionKind names a change in an entity's geofence state.
type TransitionKind string

const (
	// TransitionEntered: the entity is now inside every inclusion area.
	TransitionEntered TransitionKind = "entered"
	// TransitionExited: the entity left at least one inclusion area.
	TransitionExited TransitionKind = "exited"
	// TransitionViolation: the entity moved into one or more exclusion areas.
	TransitionViolation TransitionKind = "violation"
	// TransitionCleared: the entity moved out of one or more exclusion areas.
	TransitionCleared TransitionKind = "cleared"
)

// Transition is one state change of a tracked entity.
type Transition struct {
	Kind     TransitionKind        `json:"kind"`
	EntityID string                `json:"entity_id"`
	Areas    []string              `json:"areas,omitempty"`
	Position geodetic.Coordinate3D `json:"-"`
	Time     time.Time             `json:"time"`
}

// Observation is an evaluated position report.
type Observation struct {
	EntityID string
	Position geodetic.Coordinate3D
	Time     time.Time
	Verdict  tactical.Verdict
}

type entityState struct {
	inside   bool
	violated []string // sorted
	lastSeen time.Time
}

// TransitionDetector tracks entity state between observation batches
type TransitionDetector struct {
	mu       sync.Mutex
	entities map[string]*entityState
	logger   *logger.Logger
}

// NewTransitionDetector creates a new transition detector
func NewTransitionDetector(log *logger.Logger) *TransitionDetector {
	return &TransitionDetector{
		entities: make(map[string]*entityState),
		logger:   log.Named("transitions"),
	}
}

// DetectChanges compares each observation with the entity's previous state
// and returns the transitions in observation order. An entity seen for the
// first time reports entered if it is inside and violation for any exclusion
// it is already in. seen is the wall-clock time Prune compares against.
func (d *TransitionDetector) DetectChanges(observations []Observation, seen time.Time) []Transition {
	d.mu.Lock()
	defer d.mu.Unlock()

	transitions := []Transition{}
	for _, obs := range observations {
		inside := len(obs.Verdict.UnsatisfiedInclusions) == 0
		violated := slices.Clone(obs.Verdict.ViolatedExclusions)
		slices.Sort(violated)
		violated = slices.Compact(violated)

		emit := func(kind TransitionKind, areas []string) {
			transitions = append(transitions, Transition{
				Kind:     kind,
				EntityID: obs.EntityID,
				Areas:    areas,
				Position: obs.Position,
				Time:     obs.Time,
			})
		}

		prev, exists := d.entities[obs.EntityID]
		if !exists {
			prev = &entityState{}
			d.logger.Debug("Tracking new entity", logger.String("entity_id", obs.EntityID))
		}

		switch {
		case inside && (!exists || !prev.inside):
			emit(TransitionEntered, nil)
		case !inside && exists && prev.inside:
			emit(TransitionExited, slices.Clone(obs.Verdict.UnsatisfiedInclusions))
		}
		if added := difference(violated, prev.violated); len(added) > 0 {
			emit(TransitionViolation, added)
		}
		if removed := difference(prev.violated, violated); len(removed) > 0 {
			emit(TransitionCleared, removed)
		}

		d.entities[obs.EntityID] = &entityState{
			inside:   inside,
			violated: violated,
			lastSeen: seen,
		}
	}
	return transitions
}

// Prune forgets entities whose last batch was seen before cutoff and returns
// how many were removed.
func (d *TransitionDetector) Prune(cutoff time.Time) int {
	d.mu.Lock()
	defer d.mu.Unlock()

	removed := 0
	for id, st := range d.entities {
		if st.lastSeen.Before(cutoff) {
			delete(d.entities, id)
			removed++
		}
	}
	if removed > 0 {
		d.logger.Debug("Pruned stale entities", logger.Int("count", removed))
	}
	return removed
}

// Len is the number of tracked entities.
func (d *TransitionDetector) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.entities)
}

// difference returns the elements of sorted a missing from sorted b.
func difference(a, b []string) []string {
	var out []string
	for _, s := range a {
		if _, found := slices.BinarySearch(b, s); !found {
			out = append(out, s)
		}
	}
	return out
}
