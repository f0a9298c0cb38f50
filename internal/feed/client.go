// Package feed polls an HTTP position-report feed and hands each batch to the
// geofence service.
package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/westpoint-robotics/ros-cot/internal/geodetic"
	"github.com/westpoint-robotics/ros-cot/internal/geofence"
	"github.com/westpoint-robotics/ros-cot/pkg/logger"
)

// RawReport is one entry of the feed document. Time is Unix seconds; zero
// falls back to the document's Now.
type RawReport struct {
	ID   string  `json:"id"`
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
	Alt  float64 `json:"alt"`
	Time float64 `json:"time,omitempty"`
}

// RawFeedData is the document served by the feed.
type RawFeedData struct {
	Now     float64     `json:"now"`
	Reports []RawReport `json:"reports"`
}

// Snapshot is one fetched batch of valid reports.
type Snapshot struct {
	ID        string
	FetchedAt time.Time
	Reports   []geofence.Report
	Skipped   int
}

// Client fetches position reports from the feed URL
type Client struct {
	httpClient *http.Client
	url        string
	logger     *logger.Logger
}

// NewClient creates a new feed client
func NewClient(url string, timeout time.Duration, log *logger.Logger) *Client {
	return &Client{
		url: url,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: log.Named("feed-cli"),
	}
}

// Fetch fetches and validates one batch. Reports with an empty id or an
// out-of-range position are skipped and counted.
func (c *Client) Fetch(ctx context.Context) (*Snapshot, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	c.logger.Debug("Fetching position reports", logger.String("url", c.url))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	var data RawFeedData
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}

	snap := &Snapshot{
		ID:        uuid.NewString(),
		FetchedAt: time.Now().UTC(),
		Reports:   make([]geofence.Report, 0, len(data.Reports)),
	}
	for _, r := range data.Reports {
		report, err := r.toReport(data.Now)
		if err != nil {
			snap.Skipped++
			c.logger.Warn("Skipping invalid report",
				logger.String("entity_id", r.ID),
				logger.Error(err),
			)
			continue
		}
		snap.Reports = append(snap.Reports, report)
	}

	c.logger.Debug("Successfully fetched position reports",
		logger.String("snapshot_id", snap.ID),
		logger.Int("report_count", len(snap.Reports)),
		logger.Int("skipped", snap.Skipped),
	)
	return snap, nil
}

func (r RawReport) toReport(now float64) (geofence.Report, error) {
	if r.ID == "" {
		return geofence.Report{}, fmt.Errorf("report has no id")
	}
	pos, err := geodetic.NewCoordinate3D(r.Lat, r.Lon, r.Alt)
	if err != nil {
		return geofence.Report{}, err
	}
	ts := r.Time
	if ts == 0 {
		ts = now
	}
	return geofence.Report{EntityID: r.ID, Position: pos, Time: unixTime(ts)}, nil
}

// unixTime converts fractional Unix seconds; zero stays the zero time.
func unixTime(sec float64) time.Time {
	if sec == 0 {
		return time.Time{}
	}
	whole, frac := math.Modf(sec)
	return time.Unix(int64(whole), int64(frac*1e9)).UTC()
}
