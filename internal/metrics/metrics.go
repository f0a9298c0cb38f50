// Package metrics holds the Prometheus collectors for the geofence service.
package metrics

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector bundles the service metrics. A nil *Collector is valid and
// records nothing.
type Collector struct {
	gatherer prometheus.Gatherer

	Checks          *prometheus.CounterVec
	CheckDuration   prometheus.Histogram
	Transitions     *prometheus.CounterVec
	Areas           *prometheus.GaugeVec
	OriginUpdates   prometheus.Counter
	FeedPolls       *prometheus.CounterVec
	HTTPRequests    *prometheus.CounterVec
	HTTPDurations   *prometheus.HistogramVec
	TrackedEntities prometheus.Gauge
}

// New registers the collectors against reg, defaulting to the global
// registry when reg is nil. Registering twice against the same registry
// returns the existing collectors.
func New(reg prometheus.Registerer) (*Collector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	c := &Collector{gatherer: gatherer}
	var err error
	if c.Checks, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "geofence_checks_total",
		Help: "Position checks evaluated, labeled by result (allowed or denied).",
	}, []string{"result"})); err != nil {
		return nil, err
	}
	if c.CheckDuration, err = register(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "geofence_check_duration_seconds",
		Help:    "Time spent evaluating a position against the spatial constraints.",
		Buckets: []float64{1e-6, 5e-6, 1e-5, 5e-5, 1e-4, 5e-4, 1e-3, 5e-3, 1e-2},
	})); err != nil {
		return nil, err
	}
	if c.Transitions, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "geofence_transitions_total",
		Help: "Entity transitions emitted, labeled by kind.",
	}, []string{"kind"})); err != nil {
		return nil, err
	}
	if c.Areas, err = register(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "geofence_areas",
		Help: "Areas in the loaded mission, labeled by kind.",
	}, []string{"kind"})); err != nil {
		return nil, err
	}
	if c.OriginUpdates, err = register(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "geofence_origin_updates_total",
		Help: "Local tangent plane origin updates applied.",
	})); err != nil {
		return nil, err
	}
	if c.FeedPolls, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "geofence_feed_polls_total",
		Help: "Position feed polls, labeled by status (ok or error).",
	}, []string{"status"})); err != nil {
		return nil, err
	}
	if c.HTTPRequests, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "geofence_http_requests_total",
		Help: "HTTP requests handled, labeled by method, route and status code.",
	}, []string{"method", "route", "code"})); err != nil {
		return nil, err
	}
	if c.HTTPDurations, err = register(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "geofence_http_request_duration_seconds",
		Help:    "HTTP request latency in seconds.",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
	}, []string{"method", "route"})); err != nil {
		return nil, err
	}
	if c.TrackedEntities, err = register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "geofence_tracked_entities",
		Help: "Entities currently tracked by the transition detector.",
	})); err != nil {
		return nil, err
	}
	return c, nil
}

func register[T prometheus.Collector](reg prometheus.Registerer, col T) (T, error) {
	if err := reg.Register(col); err != nil {
		are, ok := err.(prometheus.AlreadyRegisteredError)
		if !ok {
			return col, err
		}
		existing, ok := are.ExistingCollector.(T)
		if !ok {
			return col, fmt.Errorf("collector %T already registered with incompatible type", col)
		}
		return existing, nil
	}
	return col, nil
}

// Handler exposes the registry in the Prometheus text format.
func (c *Collector) Handler() http.Handler {
	if c == nil || c.gatherer == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(c.gatherer, promhttp.HandlerOpts{})
}

// ObserveCheck records one evaluation.
func (c *Collector) ObserveCheck(allowed bool, d time.Duration) {
	if c == nil {
		return
	}
	result := "denied"
	if allowed {
		result = "allowed"
	}
	c.Checks.WithLabelValues(result).Inc()
	c.CheckDuration.Observe(d.Seconds())
}

func (c *Collector) ObserveTransition(kind string) {
	if c == nil {
		return
	}
	c.Transitions.WithLabelValues(kind).Inc()
}

// SetAreaCounts publishes the size of the loaded mission.
func (c *Collector) SetAreaCounts(inclusions, exclusions, warnings int) {
	if c == nil {
		return
	}
	c.Areas.WithLabelValues("inclusion").Set(float64(inclusions))
	c.Areas.WithLabelValues("exclusion").Set(float64(exclusions))
	c.Areas.WithLabelValues("warning").Set(float64(warnings))
}

func (c *Collector) ObserveOriginUpdate() {
	if c == nil {
		return
	}
	c.OriginUpdates.Inc()
}

func (c *Collector) ObserveFeedPoll(err error) {
	if c == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	c.FeedPolls.WithLabelValues(status).Inc()
}

func (c *Collector) SetTrackedEntities(n int) {
	if c == nil {
		return
	}
	c.TrackedEntities.Set(float64(n))
}

// ObserveHTTP records one handled request. route is the matched pattern,
// not the raw path.
func (c *Collector) ObserveHTTP(method, route string, code int, d time.Duration) {
	if c == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	c.HTTPRequests.WithLabelValues(method, route, fmt.Sprint(code)).Inc()
	c.HTTPDurations.WithLabelValues(method, route).Observe(d.Seconds())
}
