package repository

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/MaxonPy/kanban/internal/models"
)

// SnapshotRepository keeps the last reconciled task list per scope so the
// board can render the previous state before the first fetch of a session
// completes.
type SnapshotRepository struct {
	db *sql.DB
}

func NewSnapshotRepository(db *sql.DB) *SnapshotRepository {
	return &SnapshotRepository{db: db}
}

func (r *SnapshotRepository) Save(scopeKey string, tasks []models.Task) error {
	payload, err := json.Marshal(tasks)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	query := `
		INSERT INTO snapshots (scope, payload, saved_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(scope) DO UPDATE SET payload = excluded.payload, saved_at = CURRENT_TIMESTAMP
	`

	if _, err := r.db.Exec(query, scopeKey, string(payload)); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

// Load returns the cached task list for a scope, or nil when none is stored.
func (r *SnapshotRepository) Load(scopeKey string) ([]models.Task, error) {
	var payload string
	err := r.db.QueryRow(`SELECT payload FROM snapshots WHERE scope = ?`, scopeKey).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}

	var tasks []models.Task
	if err := json.Unmarshal([]byte(payload), &tasks); err != nil {
		return nil, fmt.Errorf("parse snapshot: %w", err)
	}
	return tasks, nil
}
