package feed

import (
	"context"
	"time"

	"github.com/westpoint-robotics/ros-cot/internal/geofence"
	"github.com/westpoint-robotics/ros-cot/internal/metrics"
	"github.com/westpoint-robotics/ros-cot/pkg/logger"
)

// Fetcher returns the next batch of reports.
type Fetcher interface {
	Fetch(ctx context.Context) (*Snapshot, error)
}

// Observer consumes a batch of reports.
type Observer interface {
	Observe(ctx context.Context, reports []geofence.Report) ([]geofence.Transition, error)
}

// Poller fetches from the feed on a fixed interval and forwards every batch.
type Poller struct {
	fetcher  Fetcher
	observer Observer
	interval time.Duration
	metrics  *metrics.Collector
	logger   *logger.Logger
}

func NewPoller(fetcher Fetcher, observer Observer, interval time.Duration, m *metrics.Collector, log *logger.Logger) *Poller {
	return &Poller{
		fetcher:  fetcher,
		observer: observer,
		interval: interval,
		metrics:  m,
		logger:   log.Named("feed-poller"),
	}
}

// Run polls immediately and then every interval until ctx is cancelled. A
// failed poll is logged and retried on the next tick.
func (p *Poller) Run(ctx context.Context) error {
	p.logger.Info("Starting feed poller", logger.Duration("interval", p.interval))
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		if err := p.Poll(ctx); err != nil && ctx.Err() == nil {
			p.logger.Warn("Feed poll failed", logger.Error(err))
		}
		select {
		case <-ctx.Done():
			p.logger.Info("Feed poller stopped")
			return nil
		case <-ticker.C:
		}
	}
}

// Poll runs a single fetch-and-observe cycle.
func (p *Poller) Poll(ctx context.Context) error {
	snap, err := p.fetcher.Fetch(ctx)
	p.metrics.ObserveFeedPoll(err)
	if err != nil {
		return err
	}
	transitions, err := p.observer.Observe(ctx, snap.Reports)
	if err != nil {
		if ctx.Err() != nil {
			return err
		}
		p.logger.Error("Failed to observe reports", logger.String("snapshot_id", snap.ID), logger.Error(err))
		return err
	}
	if len(transitions) > 0 {
		p.logger.Debug("Feed batch produced transitions",
			logger.String("snapshot_id", snap.ID),
			logger.Int("transitions", len(transitions)),
		)
	}
	return nil
}
