package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/westpoint-robotics/ros-cot/internal/codec"
	"github.com/westpoint-robotics/ros-cot/internal/config"
	"github.com/westpoint-robotics/ros-cot/internal/geodetic"
	"github.com/westpoint-robotics/ros-cot/internal/geofence"
	"github.com/westpoint-robotics/ros-cot/internal/metrics"
	"github.com/westpoint-robotics/ros-cot/internal/storage/sqlite"
	"github.com/westpoint-robotics/ros-cot/pkg/logger"
)

var during = time.Date(2024, 5, 1, 13, 0, 0, 0, time.UTC)

type testServer struct {
	*httptest.Server
	service *geofence.Service
	storage *sqlite.EvaluationStorage
	hub     *Hub
}

func newTestServer(t *testing.T, withStorage bool) *testServer {
	t.Helper()
	sc, err := codec.LoadFile("../geofence/testdata/range.xml")
	require.NoError(t, err)

	m, err := metrics.New(prometheus.NewRegistry())
	require.NoError(t, err)

	opts := []geofence.Option{geofence.WithMetrics(m), geofence.WithClock(func() time.Time { return during })}
	var storage *sqlite.EvaluationStorage
	if withStorage {
		db, err := sqlite.Open(":memory:")
		require.NoError(t, err)
		t.Cleanup(func() { db.Close() })
		storage, err = sqlite.NewEvaluationStorage(db, logger.NewNop())
		require.NoError(t, err)
		opts = append(opts, geofence.WithStore(storage))
	}

	svc, err := geofence.NewService(sc, geodetic.MustCoordinate3D(41.39, -73.96, 0), logger.NewNop(), opts...)
	require.NoError(t, err)

	hub := NewHub(nil, logger.NewNop())
	svc.AddNotifier(hub)

	cfg := config.ServerConfig{CORSAllowedOrigins: []string{"https://ops.example"}}
	srv := httptest.NewServer(NewRouter(svc, storage, hub, m, cfg, logger.NewNop()).Routes())
	t.Cleanup(func() {
		hub.Close()
		srv.Close()
	})
	return &testServer{Server: srv, service: svc, storage: storage, hub: hub}
}

func (s *testServer) post(t *testing.T, path, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(s.URL+path, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func (s *testServer) get(t *testing.T, path string) *http.Response {
	t.Helper()
	resp, err := http.Get(s.URL + path)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func TestCheckPosition(t *testing.T) {
	s := newTestServer(t, true)

	tests := []struct {
		name        string
		body        string
		allowed     bool
		violated    []string
		unsatisfied []string
		warnings    int
	}{
		{"inside with warning", `{"lat":41.395,"lon":-73.958,"alt":200,"entity_id":"usv-1"}`, true, nil, nil, 1},
		{"inside exclusion", `{"lat":41.395,"lon":-73.952,"alt":200}`, false, []string{"Impact"}, nil, 0},
		{"outside inclusion", `{"lat":41.41,"lon":-73.958,"alt":200}`, false, nil, []string{"Range"}, 0},
		{"outside window", `{"lat":41.395,"lon":-73.958,"alt":200,"time":"2024-05-01T15:00:00Z"}`, false, nil, []string{"Range"}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := s.post(t, "/api/v1/check", tt.body)
			require.Equal(t, http.StatusOK, resp.StatusCode)
			got := decodeBody[CheckResponse](t, resp)
			assert.Equal(t, tt.allowed, got.Allowed)
			assert.ElementsMatch(t, tt.violated, got.ViolatedExclusions)
			assert.ElementsMatch(t, tt.unsatisfied, got.UnsatisfiedInclusions)
			assert.Len(t, got.Warnings, tt.warnings)
			assert.Greater(t, got.ENU.North, 0.0)
		})
	}

	records, err := s.storage.GetEvaluationsByEntity("usv-1", 10)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.True(t, records[0].Allowed)
	assert.Equal(t, []string{"Nets"}, records[0].Warnings)
}

func TestCheckPositionRejectsBadInput(t *testing.T) {
	s := newTestServer(t, false)

	for _, body := range []string{
		`{"lat":95,"lon":0,"alt":0}`,
		`{"lat":41,"lon":-73,"alt":0,"heading":12}`,
		`not json`,
	} {
		resp := s.post(t, "/api/v1/check", body)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, body)
		assert.NotEmpty(t, decodeBody[errorResponse](t, resp).Error)
	}
}

func TestTransformRoundTrip(t *testing.T) {
	s := newTestServer(t, false)

	resp := s.post(t, "/api/v1/transform/enu", `{"lat":41.395,"lon":-73.958,"alt":120}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	enu := decodeBody[ENUJSON](t, resp)
	assert.InDelta(t, 555, enu.North, 5)

	body, err := json.Marshal(enu)
	require.NoError(t, err)
	resp = s.post(t, "/api/v1/transform/geodetic", string(body))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	geo := decodeBody[GeodeticJSON](t, resp)
	assert.InDelta(t, 41.395, geo.Lat, 1e-9)
	assert.InDelta(t, -73.958, geo.Lon, 1e-9)
	assert.InDelta(t, 120, geo.Alt, 1e-6)
}

func TestOrigin(t *testing.T) {
	s := newTestServer(t, false)

	resp := s.get(t, "/api/v1/origin")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	before := decodeBody[OriginResponse](t, resp)
	assert.InDelta(t, 41.39, before.Lat, 1e-9)
	assert.Equal(t, geodetic.DefaultSmoothing, before.Smoothing)

	resp = s.post(t, "/api/v1/origin", `{"lat":41.40,"lon":-73.96,"alt":0,"alpha":1}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	after := decodeBody[OriginResponse](t, resp)
	assert.InDelta(t, 41.40, after.Lat, 1e-9)

	resp = s.post(t, "/api/v1/origin", `{"lat":41.40,"lon":-73.96,"alt":0,"alpha":2}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCrossTrack(t *testing.T) {
	s := newTestServer(t, false)

	resp := s.post(t, "/api/v1/crosstrack",
		`{"start":{"lat":41.39,"lon":-73.96,"alt":0},"end":{"lat":41.40,"lon":-73.96,"alt":0},"limit_m":100,"planar":true}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	got := decodeBody[CrossTrackResponse](t, resp)
	// Heading north, left is west.
	assert.Less(t, got.Left.Start.Lon, -73.96)
	assert.Greater(t, got.Right.Start.Lon, -73.96)

	resp = s.post(t, "/api/v1/crosstrack",
		`{"start":{"lat":41.39,"lon":-73.96,"alt":0},"end":{"lat":41.40,"lon":-73.96,"alt":0},"limit_m":-1}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGetAreas(t *testing.T) {
	s := newTestServer(t, false)

	resp := s.get(t, "/api/v1/areas")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	got := decodeBody[AreasResponse](t, resp)

	require.Len(t, got.Inclusions, 1)
	assert.Equal(t, "Range", got.Inclusions[0].ID)
	assert.Equal(t, []string{"RangeBox"}, got.Inclusions[0].Segments)
	require.Len(t, got.Exclusions, 1)
	assert.Equal(t, "Impact", got.Exclusions[0].ID)
	require.Len(t, got.Warnings, 1)
	assert.Equal(t, "Nets", got.Warnings[0].ID)
	assert.Equal(t, "Trawler Field", got.Warnings[0].Primary)
}

func TestHistoryEndpoints(t *testing.T) {
	s := newTestServer(t, true)

	reports := []geofence.Report{
		{EntityID: "usv-1", Position: geodetic.MustCoordinate3D(41.395, -73.958, 200), Time: during},
		{EntityID: "usv-2", Position: geodetic.MustCoordinate3D(41.395, -73.952, 200), Time: during.Add(time.Minute)},
	}
	_, err := s.service.Observe(context.Background(), reports)
	require.NoError(t, err)

	resp := s.get(t, "/api/v1/evaluations?limit=10")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decodeBody[[]sqlite.EvaluationRecord](t, resp), 2)

	resp = s.get(t, "/api/v1/evaluations?start=2024-05-01T13:00:30Z&end=2024-05-01T13:05:00Z")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	ranged := decodeBody[[]sqlite.EvaluationRecord](t, resp)
	require.Len(t, ranged, 1)
	assert.Equal(t, "usv-2", ranged[0].EntityID)

	resp = s.get(t, "/api/v1/evaluations/entity/usv-2")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	byEntity := decodeBody[[]sqlite.EvaluationRecord](t, resp)
	require.Len(t, byEntity, 1)
	assert.Equal(t, []string{"Impact"}, byEntity[0].ViolatedExclusions)

	resp = s.get(t, "/api/v1/transitions/entity/usv-2")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var kinds []string
	for _, tr := range decodeBody[[]sqlite.TransitionRecord](t, resp) {
		kinds = append(kinds, tr.Kind)
	}
	assert.ElementsMatch(t, []string{"entered", "violation"}, kinds)

	resp = s.get(t, "/api/v1/transitions/entity/nobody")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, decodeBody[[]sqlite.TransitionRecord](t, resp))

	for _, path := range []string{"/api/v1/evaluations?limit=0", "/api/v1/evaluations?start=yesterday"} {
		assert.Equal(t, http.StatusBadRequest, s.get(t, path).StatusCode, path)
	}
}

func TestHistoryWithoutStorage(t *testing.T) {
	s := newTestServer(t, false)
	assert.Equal(t, http.StatusServiceUnavailable, s.get(t, "/api/v1/evaluations").StatusCode)
	assert.Equal(t, http.StatusServiceUnavailable, s.get(t, "/api/v1/transitions/entity/usv-1").StatusCode)
}

func TestHealthAndMetrics(t *testing.T) {
	s := newTestServer(t, false)

	resp := s.get(t, "/api/v1/health")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	health := decodeBody[map[string]any](t, resp)
	assert.Equal(t, "ok", health["status"])
	assert.EqualValues(t, 1, health["inclusions"])

	resp = s.get(t, "/metrics")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var buf bytes.Buffer
	_, err := buf.ReadFrom(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "geofence_areas")
	assert.Contains(t, buf.String(), `route="/api/v1/health"`)
}

func TestCORS(t *testing.T) {
	s := newTestServer(t, false)

	req, err := http.NewRequest(http.MethodOptions, s.URL+"/api/v1/check", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "https://ops.example")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "https://ops.example", resp.Header.Get("Access-Control-Allow-Origin"))

	req.Header.Set("Origin", "https://elsewhere.example")
	resp2, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp2.Body.Close()
	assert.Empty(t, resp2.Header.Get("Access-Control-Allow-Origin"))
}

func TestWebSocketTransitions(t *testing.T) {
	s := newTestServer(t, false)

	url := "ws" + strings.TrimPrefix(s.URL, "http") + "/api/v1/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()
	require.Eventually(t, func() bool { return s.hub.Len() == 1 }, time.Second, 5*time.Millisecond)

	_, err = s.service.Observe(context.Background(), []geofence.Report{
		{EntityID: "usv-1", Position: geodetic.MustCoordinate3D(41.395, -73.952, 200), Time: during},
	})
	require.NoError(t, err)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var event transitionsEvent
	require.NoError(t, conn.ReadJSON(&event))
	assert.Equal(t, "transitions", event.Type)
	// Inside the range and inside the impact box on first sighting.
	require.Len(t, event.Transitions, 2)
	entered, violation := event.Transitions[0], event.Transitions[1]
	assert.Equal(t, "usv-1", entered.EntityID)
	assert.Equal(t, string(geofence.TransitionEntered), entered.Kind)
	assert.Equal(t, string(geofence.TransitionViolation), violation.Kind)
	assert.Equal(t, []string{"Impact"}, violation.Areas)
	assert.InDelta(t, -73.952, violation.Lon, 1e-9)

	conn.Close()
	assert.Eventually(t, func() bool { return s.hub.Len() == 0 }, time.Second, 5*time.Millisecond)
}
