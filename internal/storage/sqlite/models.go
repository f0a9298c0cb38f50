package sqlite

import "time"

// EvaluationRecord is one position check and its outcome
type EvaluationRecord struct {
	ID                    string    `json:"id"`
	EntityID              string    `json:"entity_id,omitempty"`
	Latitude              float64   `json:"lat"`
	Longitude             float64   `json:"lon"`
	Altitude              float64   `json:"alt"`
	Timestamp             time.Time `json:"timestamp"` // time the position was evaluated at
	Allowed               bool      `json:"allowed"`
	UnsatisfiedInclusions []string  `json:"unsatisfied_inclusions"`
	ViolatedExclusions    []string  `json:"violated_exclusions"`
	Warnings              []string  `json:"warnings"`
	CreatedAt             time.Time `json:"created_at"`
}

// TransitionRecord is a change in an entity's geofence state
type TransitionRecord struct {
	ID        string    `json:"id"`
	EntityID  string    `json:"entity_id"`
	Kind      string    `json:"kind"` // "entered", "exited", "violation", "cleared"
	Areas     []string  `json:"areas,omitempty"`
	Latitude  float64   `json:"lat"`
	Longitude float64   `json:"lon"`
	Altitude  float64   `json:"alt"`
	Timestamp time.Time `json:"timestamp"`
	CreatedAt time.Time `json:"created_at"`
}
