package models

import (
	"errors"
	"fmt"
	"strings"
)

// Status is the board-side status vocabulary: one value per column. The
// backend speaks a different vocabulary; translation happens at the client
// boundary via ParseRemoteStatus and Remote.
type Status string

const (
	StatusAssigned   Status = "assigned"
	StatusInProgress Status = "inProgress"
	StatusCompleted  Status = "completed"
)

// Backend status vocabulary.
const (
	remoteTodo       = "todo"
	remoteInProgress = "in_progress"
	remoteDone       = "done"
)

// ErrUnknownStatus reports a status value outside either vocabulary. There is
// no fallback column: an unrecognized value is a contract break, not a task
// to file somewhere quietly.
var ErrUnknownStatus = errors.New("unknown task status")

// AllStatuses lists the columns in board order.
func AllStatuses() []Status {
	return []Status{StatusAssigned, StatusInProgress, StatusCompleted}
}

func (s Status) Valid() bool {
	switch s {
	case StatusAssigned, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

// Remote translates a board status into the backend vocabulary.
func (s Status) Remote() (string, error) {
	switch s {
	case StatusAssigned:
		return remoteTodo, nil
	case StatusInProgress:
		return remoteInProgress, nil
	case StatusCompleted:
		return remoteDone, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownStatus, string(s))
}

// ParseStatus validates a board-vocabulary value, tolerating case and
// surrounding whitespace.
func ParseStatus(raw string) (Status, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "assigned":
		return StatusAssigned, nil
	case "inprogress":
		return StatusInProgress, nil
	case "completed":
		return StatusCompleted, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownStatus, raw)
}

// ParseRemoteStatus translates a backend status into the board vocabulary,
// tolerating case and surrounding whitespace.
func ParseRemoteStatus(raw string) (Status, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case remoteTodo:
		return StatusAssigned, nil
	case remoteInProgress:
		return StatusInProgress, nil
	case remoteDone:
		return StatusCompleted, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownStatus, raw)
}
