package board

import (
	"time"

	"github.com/dustin/go-humanize"

	"github.com/MaxonPy/kanban/internal/models"
)

// Card is the presentational shape of one task on the board.
type Card struct {
	ID           int    `json:"id"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	AssignerName string `json:"assigner_name"`
	ExecutorName string `json:"executor_name"`
	Priority     string `json:"priority"`
	Due          string `json:"due"`
	GroupName    string `json:"group_name"`
	Files        int    `json:"files"`
	Ghost        bool   `json:"ghost"`
}

// Snapshot is what the renderer consumes: the three status columns plus the
// id of the task currently being dragged (zero when none).
type Snapshot struct {
	Assigned   []Card `json:"assigned"`
	InProgress []Card `json:"in_progress"`
	Completed  []Card `json:"completed"`
	ActiveID   int    `json:"active_id,omitempty"`
}

// BuildSnapshot partitions tasks into columns. The active task renders as a
// ghost placeholder in its origin column; it appears there exactly once, the
// drag overlay owns the moving copy.
func BuildSnapshot(tasks []models.Task, activeID int, now time.Time) Snapshot {
	snap := Snapshot{
		Assigned:   []Card{},
		InProgress: []Card{},
		Completed:  []Card{},
		ActiveID:   activeID,
	}

	for _, t := range tasks {
		card := newCard(t, now)
		card.Ghost = activeID != 0 && t.ID == activeID

		switch t.Status {
		case models.StatusAssigned:
			snap.Assigned = append(snap.Assigned, card)
		case models.StatusInProgress:
			snap.InProgress = append(snap.InProgress, card)
		case models.StatusCompleted:
			snap.Completed = append(snap.Completed, card)
		}
	}
	return snap
}

func newCard(t models.Task, now time.Time) Card {
	return Card{
		ID:           t.ID,
		Title:        t.Title,
		Description:  t.Description,
		AssignerName: t.AssignerName,
		ExecutorName: t.ExecutorName,
		Priority:     string(t.Priority),
		Due:          DueLabel(t.DueAt, now),
		GroupName:    t.GroupName,
		Files:        len(t.AttachedFiles),
	}
}

// DueLabel renders a deadline relative to now ("2 days left", "3 hours
// overdue"); a missing deadline gets the sentinel label.
func DueLabel(due *time.Time, now time.Time) string {
	if due == nil {
		return models.NoDeadlineLabel
	}
	return humanize.RelTime(*due, now, "overdue", "left")
}
