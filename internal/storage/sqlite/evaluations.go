package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/westpoint-robotics/ros-cot/pkg/logger"
)

// Open opens (creating if needed) the SQLite database at path. ":memory:"
// gives a private in-memory database.
func Open(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// A second connection to ":memory:" would see a different database
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// EvaluationStorage handles storage of evaluation and transition records
type EvaluationStorage struct {
	db     *sql.DB
	logger *logger.Logger
}

// NewEvaluationStorage creates the tables if needed and returns the storage
func NewEvaluationStorage(db *sql.DB, log *logger.Logger) (*EvaluationStorage, error) {
	storage := &EvaluationStorage{
		db:     db,
		logger: log.Named("sqlite-evaluations"),
	}
	if err := storage.initDB(); err != nil {
		storage.logger.Error("Failed to initialize evaluation storage", logger.Error(err))
		return nil, err
	}
	return storage, nil
}

// initDB initializes the database tables
func (s *EvaluationStorage) initDB() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS evaluations (
			id TEXT PRIMARY KEY,
			entity_id TEXT NOT NULL DEFAULT '',
			latitude REAL NOT NULL,
			longitude REAL NOT NULL,
			altitude REAL NOT NULL,
			timestamp TEXT NOT NULL,
			allowed INTEGER NOT NULL,
			unsatisfied_inclusions TEXT NOT NULL,
			violated_exclusions TEXT NOT NULL,
			warnings TEXT NOT NULL,
			created_at TEXT NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create evaluations table: %w", err)
	}

	_, err = s.db.Exec(`
		CREATE TABLE IF NOT EXISTS transitions (
			id TEXT PRIMARY KEY,
			entity_id TEXT NOT NULL,
			kind TEXT NOT NULL,
			areas TEXT NOT NULL,
			latitude REAL NOT NULL,
			longitude REAL NOT NULL,
			altitude REAL NOT NULL,
			timestamp TEXT NOT NULL,
			created_at TEXT NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create transitions table: %w", err)
	}

	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_evaluations_entity ON evaluations(entity_id)`,
		`CREATE INDEX IF NOT EXISTS idx_evaluations_timestamp ON evaluations(timestamp)`,
		`CREATE INDEX IF NOT EXISTS idx_transitions_entity ON transitions(entity_id)`,
		`CREATE INDEX IF NOT EXISTS idx_transitions_timestamp ON transitions(timestamp)`,
	}
	for _, indexSQL := range indexes {
		if _, err := s.db.Exec(indexSQL); err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}
	return nil
}

// StoreEvaluation stores an evaluation record, assigning its ID and
// CreatedAt when unset, and returns the ID
func (s *EvaluationStorage) StoreEvaluation(record *EvaluationRecord) (string, error) {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}
	inc, err := encodeIDs(record.UnsatisfiedInclusions)
	if err != nil {
		return "", err
	}
	exc, err := encodeIDs(record.ViolatedExclusions)
	if err != nil {
		return "", err
	}
	warn, err := encodeIDs(record.Warnings)
	if err != nil {
		return "", err
	}

	_, err = s.db.Exec(
		`INSERT INTO evaluations
		(id, entity_id, latitude, longitude, altitude, timestamp, allowed, unsatisfied_inclusions, violated_exclusions, warnings, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		record.ID,
		record.EntityID,
		record.Latitude,
		record.Longitude,
		record.Altitude,
		formatTime(record.Timestamp),
		record.Allowed,
		inc,
		exc,
		warn,
		formatTime(record.CreatedAt),
	)
	if err != nil {
		return "", fmt.Errorf("failed to insert evaluation: %w", err)
	}
	return record.ID, nil
}

const evaluationColumns = `id, entity_id, latitude, longitude, altitude, timestamp, allowed, unsatisfied_inclusions, violated_exclusions, warnings, created_at`

// GetRecentEvaluations returns the most recent evaluations across all entities
func (s *EvaluationStorage) GetRecentEvaluations(limit int) ([]*EvaluationRecord, error) {
	rows, err := s.db.Query(
		`SELECT `+evaluationColumns+`
		FROM evaluations
		ORDER BY timestamp DESC, created_at DESC
		LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent evaluations: %w", err)
	}
	defer rows.Close()

	return scanEvaluationRows(rows)
}

// GetEvaluationsByEntity returns evaluations for a specific entity
func (s *EvaluationStorage) GetEvaluationsByEntity(entityID string, limit int) ([]*EvaluationRecord, error) {
	rows, err := s.db.Query(
		`SELECT `+evaluationColumns+`
		FROM evaluations
		WHERE entity_id = ?
		ORDER BY timestamp DESC, created_at DESC
		LIMIT ?`,
		entityID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query evaluations by entity: %w", err)
	}
	defer rows.Close()

	return scanEvaluationRows(rows)
}

// GetEvaluationsByTimeRange returns evaluations with timestamps in [startTime, endTime]
func (s *EvaluationStorage) GetEvaluationsByTimeRange(startTime, endTime time.Time) ([]*EvaluationRecord, error) {
	rows, err := s.db.Query(
		`SELECT `+evaluationColumns+`
		FROM evaluations
		WHERE timestamp BETWEEN ? AND ?
		ORDER BY timestamp DESC`,
		formatTime(startTime), formatTime(endTime),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query evaluations by time range: %w", err)
	}
	defer rows.Close()

	return scanEvaluationRows(rows)
}

// StoreTransition stores a transition record and returns its ID
func (s *EvaluationStorage) StoreTransition(record *TransitionRecord) (string, error) {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}
	areas, err := encodeIDs(record.Areas)
	if err != nil {
		return "", err
	}

	_, err = s.db.Exec(
		`INSERT INTO transitions
		(id, entity_id, kind, areas, latitude, longitude, altitude, timestamp, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		record.ID,
		record.EntityID,
		record.Kind,
		areas,
		record.Latitude,
		record.Longitude,
		record.Altitude,
		formatTime(record.Timestamp),
		formatTime(record.CreatedAt),
	)
	if err != nil {
		return "", fmt.Errorf("failed to insert transition: %w", err)
	}
	return record.ID, nil
}

// GetTransitionsByEntity returns the most recent transitions for an entity
func (s *EvaluationStorage) GetTransitionsByEntity(entityID string, limit int) ([]*TransitionRecord, error) {
	rows, err := s.db.Query(
		`SELECT id, entity_id, kind, areas, latitude, longitude, altitude, timestamp, created_at
		FROM transitions
		WHERE entity_id = ?
		ORDER BY timestamp DESC, created_at DESC
		LIMIT ?`,
		entityID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query transitions by entity: %w", err)
	}
	defer rows.Close()

	var records []*TransitionRecord
	for rows.Next() {
		var record TransitionRecord
		var areas, timestamp, createdAt string
		if err := rows.Scan(
			&record.ID,
			&record.EntityID,
			&record.Kind,
			&areas,
			&record.Latitude,
			&record.Longitude,
			&record.Altitude,
			&timestamp,
			&createdAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan transition: %w", err)
		}
		if record.Areas, err = decodeIDs(areas); err != nil {
			return nil, err
		}
		if record.Timestamp, err = time.Parse(time.RFC3339Nano, timestamp); err != nil {
			return nil, fmt.Errorf("failed to parse timestamp: %w", err)
		}
		if record.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
			return nil, fmt.Errorf("failed to parse created_at: %w", err)
		}
		records = append(records, &record)
	}
	return records, rows.Err()
}

// scanEvaluationRows scans database rows into EvaluationRecord structs
func scanEvaluationRows(rows *sql.Rows) ([]*EvaluationRecord, error) {
	var records []*EvaluationRecord
	for rows.Next() {
		var record EvaluationRecord
		var timestamp, createdAt, inc, exc, warn string

		if err := rows.Scan(
			&record.ID,
			&record.EntityID,
			&record.Latitude,
			&record.Longitude,
			&record.Altitude,
			&timestamp,
			&record.Allowed,
			&inc,
			&exc,
			&warn,
			&createdAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan evaluation: %w", err)
		}

		var err error
		if record.Timestamp, err = time.Parse(time.RFC3339Nano, timestamp); err != nil {
			return nil, fmt.Errorf("failed to parse timestamp: %w", err)
		}
		if record.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
			return nil, fmt.Errorf("failed to parse created_at: %w", err)
		}
		if record.UnsatisfiedInclusions, err = decodeIDs(inc); err != nil {
			return nil, err
		}
		if record.ViolatedExclusions, err = decodeIDs(exc); err != nil {
			return nil, err
		}
		if record.Warnings, err = decodeIDs(warn); err != nil {
			return nil, err
		}

		records = append(records, &record)
	}
	return records, rows.Err()
}

// timeLayout keeps every fractional digit at a fixed width so stored times
// sort lexically in time order.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string { return t.UTC().Format(timeLayout) }

func encodeIDs(ids []string) (string, error) {
	if ids == nil {
		ids = []string{}
	}
	b, err := json.Marshal(ids)
	if err != nil {
		return "", fmt.Errorf("failed to encode ids: %w", err)
	}
	return string(b), nil
}

func decodeIDs(s string) ([]string, error) {
	ids := []string{}
	if err := json.Unmarshal([]byte(s), &ids); err != nil {
		return nil, fmt.Errorf("failed to decode ids: %w", err)
	}
	return ids, nil
}
