package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/westpoint-robotics/ros-cot/internal/geodetic"
	"github.com/westpoint-robotics/ros-cot/internal/geofence"
	"github.com/westpoint-robotics/ros-cot/internal/storage/sqlite"
	"github.com/westpoint-robotics/ros-cot/internal/tactical"
	"github.com/westpoint-robotics/ros-cot/internal/units"
	"github.com/westpoint-robotics/ros-cot/internal/vector"
	"github.com/westpoint-robotics/ros-cot/pkg/logger"
)

const (
	defaultLimit = 100
	maxLimit     = 1000
	maxBodyBytes = 1 << 20
)

// Handler serves the geofence API
type Handler struct {
	service *geofence.Service
	storage *sqlite.EvaluationStorage
	logger  *logger.Logger
}

// NewHandler creates a new handler. storage may be nil, in which case the
// history endpoints answer 503.
func NewHandler(service *geofence.Service, storage *sqlite.EvaluationStorage, log *logger.Logger) *Handler {
	return &Handler{
		service: service,
		storage: storage,
		logger:  log.Named("api-handler"),
	}
}

// GeodeticJSON is a WGS84 position in degrees and meters.
type GeodeticJSON struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
	Alt float64 `json:"alt"`
}

func (g GeodeticJSON) coordinate() (geodetic.Coordinate3D, error) {
	return geodetic.NewCoordinate3D(g.Lat, g.Lon, g.Alt)
}

func geodeticJSON(c geodetic.Coordinate3D) GeodeticJSON {
	return GeodeticJSON{Lat: c.Latitude.Degrees(), Lon: c.Longitude.Degrees(), Alt: c.AltitudeMeters()}
}

// ENUJSON is a position in the local east-north-up frame, in meters.
type ENUJSON struct {
	East  float64 `json:"east"`
	North float64 `json:"north"`
	Up    float64 `json:"up"`
}

func enuJSON(p vector.Point3D) ENUJSON { return ENUJSON{East: p.X, North: p.Y, Up: p.Z} }

// CheckRequest is the body of POST /check. A missing time means now.
type CheckRequest struct {
	GeodeticJSON
	EntityID string     `json:"entity_id,omitempty"`
	Time     *time.Time `json:"time,omitempty"`
}

// CheckResponse is the verdict for one position.
type CheckResponse struct {
	tactical.Verdict
	ENU            ENUJSON   `json:"enu"`
	EvaluatedAt    time.Time `json:"evaluated_at"`
	DurationMicros float64   `json:"duration_us"`
}

// OriginRequest is the body of POST /origin. A missing alpha uses the
// configured smoothing.
type OriginRequest struct {
	GeodeticJSON
	Alpha *float64 `json:"alpha,omitempty"`
}

// OriginResponse describes the current local frame origin.
type OriginResponse struct {
	GeodeticJSON
	ECEF      [3]float64 `json:"ecef"`
	Smoothing float64    `json:"smoothing"`
}

// CrossTrackRequest is the body of POST /crosstrack. Planar keeps the offsets
// horizontal.
type CrossTrackRequest struct {
	Start  GeodeticJSON `json:"start"`
	End    GeodeticJSON `json:"end"`
	LimitM float64      `json:"limit_m"`
	Planar bool         `json:"planar,omitempty"`
}

type TrackJSON struct {
	Start GeodeticJSON `json:"start"`
	End   GeodeticJSON `json:"end"`
}

type CrossTrackResponse struct {
	Left  TrackJSON `json:"left"`
	Right TrackJSON `json:"right"`
}

// AreaSummary describes one tactical area.
type AreaSummary struct {
	ID       string     `json:"id"`
	Segments []string   `json:"segments"`
	Start    *time.Time `json:"start,omitempty"`
	End      *time.Time `json:"end,omitempty"`
}

type WarningSummary struct {
	ID        string        `json:"id"`
	Primary   string        `json:"primary"`
	Secondary string        `json:"secondary,omitempty"`
	Areas     []AreaSummary `json:"areas"`
}

type AreasResponse struct {
	Inclusions []AreaSummary    `json:"inclusions"`
	Exclusions []AreaSummary    `json:"exclusions"`
	Warnings   []WarningSummary `json:"warnings"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// CheckPosition evaluates one position
func (h *Handler) CheckPosition(w http.ResponseWriter, r *http.Request) {
	var req CheckRequest
	if !h.decode(w, r, &req) {
		return
	}
	pos, err := req.coordinate()
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}
	q := geofence.Query{EntityID: req.EntityID, Position: pos}
	if req.Time != nil {
		q.Time = req.Time.UTC()
	}

	res, err := h.service.Check(r.Context(), q)
	if err != nil {
		h.writeError(w, http.StatusServiceUnavailable, err)
		return
	}
	h.writeJSON(w, http.StatusOK, CheckResponse{
		Verdict:        res.Verdict,
		ENU:            enuJSON(res.ENU),
		EvaluatedAt:    res.EvaluatedAt,
		DurationMicros: float64(res.Duration) / float64(time.Microsecond),
	})
}

// ToENU converts a geodetic position into the local frame
func (h *Handler) ToENU(w http.ResponseWriter, r *http.Request) {
	var req GeodeticJSON
	if !h.decode(w, r, &req) {
		return
	}
	pos, err := req.coordinate()
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}
	h.writeJSON(w, http.StatusOK, enuJSON(h.service.ToENU(pos)))
}

// ToGeodetic converts a local frame position into WGS84
func (h *Handler) ToGeodetic(w http.ResponseWriter, r *http.Request) {
	var req ENUJSON
	if !h.decode(w, r, &req) {
		return
	}
	c := h.service.ToGeodetic(vector.Point3D{X: req.East, Y: req.North, Z: req.Up})
	h.writeJSON(w, http.StatusOK, geodeticJSON(c))
}

// GetOrigin returns the current local frame origin
func (h *Handler) GetOrigin(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.originResponse(h.service.Origin()))
}

// UpdateOrigin blends the local frame origin toward the posted position
func (h *Handler) UpdateOrigin(w http.ResponseWriter, r *http.Request) {
	var req OriginRequest
	if !h.decode(w, r, &req) {
		return
	}
	pos, err := req.coordinate()
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}
	alpha := -1.0
	if req.Alpha != nil {
		alpha = *req.Alpha
	}
	o, err := h.service.UpdateOrigin(pos, alpha)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}
	h.writeJSON(w, http.StatusOK, h.originResponse(o))
}

func (h *Handler) originResponse(o *geodetic.Origin) OriginResponse {
	e := o.ECEF()
	return OriginResponse{
		GeodeticJSON: geodeticJSON(o.Coordinate()),
		ECEF:         [3]float64{e.X, e.Y, e.Z},
		Smoothing:    h.service.Smoothing(),
	}
}

// CrossTrack builds the two tracks offset from a line
func (h *Handler) CrossTrack(w http.ResponseWriter, r *http.Request) {
	var req CrossTrackRequest
	if !h.decode(w, r, &req) {
		return
	}
	start, err := req.Start.coordinate()
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}
	end, err := req.End.coordinate()
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}
	limit, err := units.NewNonNegative(req.LimitM, units.Meters)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}

	build := geodetic.CrossTrack
	if req.Planar {
		build = geodetic.CrossTrack2D
	}
	res, err := build(start, end, limit)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}
	h.writeJSON(w, http.StatusOK, CrossTrackResponse{
		Left:  TrackJSON{Start: geodeticJSON(res.Left.Start), End: geodeticJSON(res.Left.End)},
		Right: TrackJSON{Start: geodeticJSON(res.Right.Start), End: geodeticJSON(res.Right.End)},
	})
}

// GetAreas summarizes the loaded mission
func (h *Handler) GetAreas(w http.ResponseWriter, r *http.Request) {
	sc := h.service.Constraints()
	resp := AreasResponse{
		Inclusions: summarizeAreas(sc.Inclusions()),
		Exclusions: summarizeAreas(sc.Exclusions()),
		Warnings:   make([]WarningSummary, 0, len(sc.WarningAreas())),
	}
	for _, wa := range sc.WarningAreas() {
		ws := WarningSummary{
			ID:      wa.ID(),
			Primary: wa.Primary().String(),
			Areas:   summarizeAreas(wa.Areas()),
		}
		if wa.HasSecondary() {
			ws.Secondary = wa.Secondary().String()
		}
		resp.Warnings = append(resp.Warnings, ws)
	}
	h.writeJSON(w, http.StatusOK, resp)
}

func summarizeAreas(areas []tactical.Area) []AreaSummary {
	out := make([]AreaSummary, 0, len(areas))
	for _, a := range areas {
		s := AreaSummary{ID: a.ID(), Segments: make([]string, 0, a.Len())}
		for _, seg := range a.Segments() {
			s.Segments = append(s.Segments, seg.ID())
		}
		if win := a.Window(); win.HasStart() {
			start := win.Start()
			s.Start = &start
		}
		if win := a.Window(); win.HasEnd() {
			end := win.End()
			s.End = &end
		}
		out = append(out, s)
	}
	return out
}

// GetEvaluations returns recent evaluations, or those between the start and
// end query parameters when both are given
func (h *Handler) GetEvaluations(w http.ResponseWriter, r *http.Request) {
	if !h.requireStorage(w) {
		return
	}
	var (
		records []*sqlite.EvaluationRecord
		err     error
	)
	startParam, endParam := r.URL.Query().Get("start"), r.URL.Query().Get("end")
	if startParam != "" || endParam != "" {
		start, err1 := time.Parse(time.RFC3339, startParam)
		end, err2 := time.Parse(time.RFC3339, endParam)
		if err := errors.Join(err1, err2); err != nil {
			h.writeError(w, http.StatusBadRequest, err)
			return
		}
		records, err = h.storage.GetEvaluationsByTimeRange(start, end)
	} else {
		limit, ok := h.limit(w, r)
		if !ok {
			return
		}
		records, err = h.storage.GetRecentEvaluations(limit)
	}
	if err != nil {
		h.logger.Error("Failed to query evaluations", logger.Error(err))
		h.writeError(w, http.StatusInternalServerError, err)
		return
	}
	h.writeJSON(w, http.StatusOK, nonNil(records))
}

// GetEvaluationsByEntity returns evaluations for one entity
func (h *Handler) GetEvaluationsByEntity(w http.ResponseWriter, r *http.Request) {
	if !h.requireStorage(w) {
		return
	}
	limit, ok := h.limit(w, r)
	if !ok {
		return
	}
	records, err := h.storage.GetEvaluationsByEntity(chi.URLParam(r, "id"), limit)
	if err != nil {
		h.logger.Error("Failed to query evaluations", logger.Error(err))
		h.writeError(w, http.StatusInternalServerError, err)
		return
	}
	h.writeJSON(w, http.StatusOK, nonNil(records))
}

// GetTransitionsByEntity returns transitions for one entity
func (h *Handler) GetTransitionsByEntity(w http.ResponseWriter, r *http.Request) {
	if !h.requireStorage(w) {
		return
	}
	limit, ok := h.limit(w, r)
	if !ok {
		return
	}
	records, err := h.storage.GetTransitionsByEntity(chi.URLParam(r, "id"), limit)
	if err != nil {
		h.logger.Error("Failed to query transitions", logger.Error(err))
		h.writeError(w, http.StatusInternalServerError, err)
		return
	}
	h.writeJSON(w, http.StatusOK, nonNil(records))
}

// GetHealth reports liveness and the size of the loaded mission
func (h *Handler) GetHealth(w http.ResponseWriter, r *http.Request) {
	sc := h.service.Constraints()
	h.writeJSON(w, http.StatusOK, map[string]any{
		"status":     "ok",
		"time":       time.Now().UTC(),
		"inclusions": len(sc.Inclusions()),
		"exclusions": len(sc.Exclusions()),
		"warnings":   len(sc.WarningAreas()),
		"storage":    h.storage != nil,
	})
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return false
	}
	return true
}

func (h *Handler) limit(w http.ResponseWriter, r *http.Request) (int, bool) {
	s := r.URL.Query().Get("limit")
	if s == "" {
		return defaultLimit, true
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		h.writeError(w, http.StatusBadRequest, errors.New("limit must be a positive integer"))
		return 0, false
	}
	return min(n, maxLimit), true
}

func (h *Handler) requireStorage(w http.ResponseWriter) bool {
	if h.storage == nil {
		h.writeError(w, http.StatusServiceUnavailable, errors.New("storage is disabled"))
		return false
	}
	return true
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("Failed to encode response", logger.Error(err))
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, err error) {
	h.writeJSON(w, status, errorResponse{Error: err.Error()})
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
