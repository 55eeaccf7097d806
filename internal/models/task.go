package models

import "time"

// Display sentinels used when a lookup or an optional field comes up empty.
const (
	UnknownAssigner = "unknown"
	UnassignedUser  = "unassigned"
	NoDeadlineLabel = "no deadline"
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Task is the synchronizer's unit of state. Assigner and executor names are
// resolved from the user directory at mapping time; GroupID/GroupName are
// denormalized from the scope the task was fetched under.
type Task struct {
	ID            int        `json:"id"`
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	AssignerID    int        `json:"assigner_id"`
	ExecutorIDs   []int      `json:"executor_ids,omitempty"`
	AssignerName  string     `json:"assigner_name"`
	ExecutorName  string     `json:"executor_name"`
	Priority      Priority   `json:"priority"`
	DueAt         *time.Time `json:"due_at,omitempty"`
	Status        Status     `json:"status"`
	GroupID       int        `json:"group_id"`
	GroupName     string     `json:"group_name"`
	AttachedFiles []string   `json:"attached_files"`
}

// TaskDraft carries the fields of a create intent. Executors and attachments
// are optional; the backend assigns the ID and timestamps.
type TaskDraft struct {
	Title         string
	Description   string
	Priority      Priority
	DueAt         *time.Time
	GroupID       int
	ExecutorIDs   []int
	AttachedFiles []string
}
