// Package geofence binds a mission's spatial constraints to a moving local
// tangent plane and evaluates position reports against them.
package geofence

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/westpoint-robotics/ros-cot/internal/geodetic"
	"github.com/westpoint-robotics/ros-cot/internal/metrics"
	"github.com/westpoint-robotics/ros-cot/internal/storage/sqlite"
	"github.com/westpoint-robotics/ros-cot/internal/tactical"
	"github.com/westpoint-robotics/ros-cot/internal/vector"
	"github.com/westpoint-robotics/ros-cot/pkg/logger"
)

// ErrNoConstraints is returned when a nil constraint set is supplied.
var ErrNoConstraints = errors.New("no spatial constraints")

// DefaultStaleAfter is how long an entity may go unreported before the
// transition detector forgets it.
const DefaultStaleAfter = 10 * time.Minute

// Store persists evaluations and transitions.
type Store interface {
	StoreEvaluation(record *sqlite.EvaluationRecord) (string, error)
	StoreTransition(record *sqlite.TransitionRecord) (string, error)
}

// Notifier receives every batch of transitions the service emits.
type Notifier interface {
	NotifyTransitions(transitions []Transition)
}

// Query is a single position check. A zero Time means now.
type Query struct {
	EntityID string
	Position geodetic.Coordinate3D
	Time     time.Time
}

// Report is one position from a tracked entity.
type Report = Query

// Result is the outcome of a Check.
type Result struct {
	Verdict     tactical.Verdict
	ENU         vector.Point3D
	EvaluatedAt time.Time
	Duration    time.Duration
}

type Option func(*Service)

func WithStore(st Store) Option { return func(s *Service) { s.store = st } }

func WithMetrics(m *metrics.Collector) Option { return func(s *Service) { s.metrics = m } }

func WithNotifier(n Notifier) Option { return func(s *Service) { s.notifiers = append(s.notifiers, n) } }

// WithSmoothing sets the alpha used by UpdateOrigin callers that pass a
// negative alpha.
func WithSmoothing(alpha float64) Option { return func(s *Service) { s.smoothing = alpha } }

func WithStaleAfter(d time.Duration) Option { return func(s *Service) { s.staleAfter = d } }

// WithClock replaces time.Now for queries without a time.
func WithClock(now func() time.Time) Option { return func(s *Service) { s.now = now } }

// Service evaluates positions against the loaded constraints. It is safe for
// concurrent use; Reload swaps the constraint set without blocking readers.
type Service struct {
	constraints atomic.Pointer[tactical.SpatialConstraints]
	transformer *geodetic.Transformer
	detector    *TransitionDetector

	store      Store
	metrics    *metrics.Collector
	smoothing  float64
	staleAfter time.Duration
	now        func() time.Time

	mu        sync.RWMutex
	notifiers []Notifier

	logger *logger.Logger
}

// NewService creates a service for sc with the local frame centered on origin.
func NewService(sc *tactical.SpatialConstraints, origin geodetic.Coordinate3D, log *logger.Logger, opts ...Option) (*Service, error) {
	if sc == nil {
		return nil, ErrNoConstraints
	}
	transformer, err := geodetic.NewTransformer(origin)
	if err != nil {
		return nil, fmt.Errorf("failed to create transformer: %w", err)
	}
	s := &Service{
		transformer: transformer,
		detector:    NewTransitionDetector(log),
		smoothing:   geodetic.DefaultSmoothing,
		staleAfter:  DefaultStaleAfter,
		now:         time.Now,
		logger:      log.Named("geofence"),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.install(sc)
	return s, nil
}

func (s *Service) install(sc *tactical.SpatialConstraints) {
	s.constraints.Store(sc)
	s.metrics.SetAreaCounts(len(sc.Inclusions()), len(sc.Exclusions()), len(sc.WarningAreas()))
	s.logger.Info("Spatial constraints loaded",
		logger.Int("inclusions", len(sc.Inclusions())),
		logger.Int("exclusions", len(sc.Exclusions())),
		logger.Int("warnings", len(sc.WarningAreas())),
		logger.Int("indexed_segments", sc.Index().Size()),
	)
}

// Reload atomically replaces the constraint set. Checks already running
// finish against the old set.
func (s *Service) Reload(sc *tactical.SpatialConstraints) error {
	if sc == nil {
		return ErrNoConstraints
	}
	s.install(sc)
	return nil
}

// AddNotifier registers n for every later transition batch.
func (s *Service) AddNotifier(n Notifier) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifiers = append(s.notifiers, n)
}

func (s *Service) Constraints() *tactical.SpatialConstraints { return s.constraints.Load() }
func (s *Service) Origin() *geodetic.Origin                  { return s.transformer.Origin() }
func (s *Service) Smoothing() float64                        { return s.smoothing }

func (s *Service) ToENU(c geodetic.Coordinate3D) vector.Point3D {
	return s.transformer.GeodeticToENU(c)
}

func (s *Service) ToGeodetic(p vector.Point3D) geodetic.Coordinate3D {
	return s.transformer.ENUToGeodetic(p)
}

// UpdateOrigin blends the local frame origin toward c by alpha. A negative
// alpha uses the configured smoothing.
func (s *Service) UpdateOrigin(c geodetic.Coordinate3D, alpha float64) (*geodetic.Origin, error) {
	if alpha < 0 {
		alpha = s.smoothing
	}
	if err := s.transformer.FilteredUpdate(c, alpha); err != nil {
		return nil, fmt.Errorf("failed to update origin: %w", err)
	}
	o := s.transformer.Origin()
	s.metrics.ObserveOriginUpdate()
	s.logger.Debug("Origin updated",
		logger.String("origin", o.Coordinate().String()),
		logger.Float64("alpha", alpha),
	)
	return o, nil
}

func (s *Service) evaluate(q Query) Result {
	t := q.Time
	if t.IsZero() {
		t = s.now()
	}
	start := time.Now()
	v := s.constraints.Load().Verdict(q.Position, t)
	d := time.Since(start)
	s.metrics.ObserveCheck(v.Allowed, d)
	return Result{
		Verdict:     v,
		ENU:         s.transformer.GeodeticToENU(q.Position),
		EvaluatedAt: t,
		Duration:    d,
	}
}

// Check evaluates one position and persists the evaluation when a store is
// configured. Storage failures are logged and do not fail the check.
func (s *Service) Check(ctx context.Context, q Query) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	res := s.evaluate(q)
	s.logger.Debug("Position checked",
		logger.String("entity_id", q.EntityID),
		logger.String("position", q.Position.String()),
		logger.Bool("allowed", res.Verdict.Allowed),
		logger.Duration("duration", res.Duration),
	)
	s.storeEvaluation(q, res)
	return res, nil
}

// Observe evaluates a batch of reports, updates per-entity state and returns
// the transitions it caused. Entities silent for longer than the stale
// window are forgotten afterwards.
func (s *Service) Observe(ctx context.Context, reports []Report) ([]Transition, error) {
	observations := make([]Observation, 0, len(reports))
	for _, r := range reports {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		res := s.evaluate(r)
		s.storeEvaluation(r, res)
		observations = append(observations, Observation{
			EntityID: r.EntityID,
			Position: r.Position,
			Time:     res.EvaluatedAt,
			Verdict:  res.Verdict,
		})
	}

	transitions := s.detector.DetectChanges(observations, s.now())
	for _, tr := range transitions {
		s.metrics.ObserveTransition(string(tr.Kind))
		s.logger.Info("Entity transition",
			logger.String("entity_id", tr.EntityID),
			logger.String("kind", string(tr.Kind)),
			logger.Strings("areas", tr.Areas),
		)
		if s.store != nil {
			if _, err := s.store.StoreTransition(&sqlite.TransitionRecord{
				EntityID:  tr.EntityID,
				Kind:      string(tr.Kind),
				Areas:     tr.Areas,
				Latitude:  tr.Position.Latitude.Degrees(),
				Longitude: tr.Position.Longitude.Degrees(),
				Altitude:  tr.Position.AltitudeMeters(),
				Timestamp: tr.Time,
			}); err != nil {
				s.logger.Warn("Failed to store transition", logger.Error(err))
			}
		}
	}
	if len(transitions) > 0 {
		s.mu.RLock()
		for _, n := range s.notifiers {
			n.NotifyTransitions(transitions)
		}
		s.mu.RUnlock()
	}

	s.detector.Prune(s.now().Add(-s.staleAfter))
	s.metrics.SetTrackedEntities(s.detector.Len())
	return transitions, nil
}

func (s *Service) storeEvaluation(q Query, res Result) {
	if s.store == nil {
		return
	}
	warnings := make([]string, 0, len(res.Verdict.Warnings))
	for _, w := range res.Verdict.Warnings {
		warnings = append(warnings, w.ID)
	}
	if _, err := s.store.StoreEvaluation(&sqlite.EvaluationRecord{
		EntityID:              q.EntityID,
		Latitude:              q.Position.Latitude.Degrees(),
		Longitude:             q.Position.Longitude.Degrees(),
		Altitude:              q.Position.AltitudeMeters(),
		Timestamp:             res.EvaluatedAt,
		Allowed:               res.Verdict.Allowed,
		UnsatisfiedInclusions: res.Verdict.UnsatisfiedInclusions,
		ViolatedExclusions:    res.Verdict.ViolatedExclusions,
		Warnings:              warnings,
	}); err != nil {
		s.logger.Warn("Failed to store evaluation", logger.Error(err))
	}
}
