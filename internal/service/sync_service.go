package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"go.uber.org/zap"

	"github.com/MaxonPy/kanban/internal/client"
	"github.com/MaxonPy/kanban/internal/models"
	"github.com/MaxonPy/kanban/internal/session"
)

var (
	ErrPermission   = errors.New("operation not permitted for current role")
	ErrTaskNotFound = errors.New("task not present on the board")
)

type scopeKind int

const (
	scopeNone scopeKind = iota
	scopeGroup
	scopeUser
)

type scope struct {
	kind scopeKind
	id   int
}

func (s scope) key() string {
	switch s.kind {
	case scopeGroup:
		return "group:" + strconv.Itoa(s.id)
	case scopeUser:
		return "user:" + strconv.Itoa(s.id)
	}
	return ""
}

// SnapshotStore persists the last reconciled task list per scope so the board
// has something to show before the first fetch lands. Advisory only; the
// server stays the source of truth.
type SnapshotStore interface {
	Save(scopeKey string, tasks []models.Task) error
	Load(scopeKey string) ([]models.Task, error)
}

// SyncService owns the reconciled in-memory task list for the active scope.
// Mutations are optimistic with single-task rollback; reads of server state
// replace the list wholesale. A monotonic sequence number per issued fetch
// keeps stale responses from overwriting fresher ones.
type SyncService struct {
	api   client.TaskAPI
	dir   *DirectoryService
	sess  *session.Session
	cache SnapshotStore
	log   *zap.SugaredLogger

	mu            sync.Mutex
	tasks         []models.Task
	selectedGroup *models.Group
	seq           uint64
}

func NewSyncService(api client.TaskAPI, dir *DirectoryService, sess *session.Session, cache SnapshotStore, log *zap.SugaredLogger) *SyncService {
	return &SyncService{
		api:   api,
		dir:   dir,
		sess:  sess,
		cache: cache,
		log:   log,
	}
}

// currentScope resolves where the task list comes from: a student session is
// always scoped to their own assignments, a teacher to the selected group.
// Callers hold s.mu.
func (s *SyncService) currentScope() scope {
	if s.sess.Role() == session.RoleStudent {
		return scope{kind: scopeUser, id: s.sess.UserID()}
	}
	if s.selectedGroup != nil {
		return scope{kind: scopeGroup, id: s.selectedGroup.ID}
	}
	return scope{kind: scopeNone}
}

// Refresh fetches the canonical task list for the current scope and replaces
// the local list with it. No-op when nothing is scoped. On failure the
// previous list is left untouched and the error is reported to the caller,
// who treats it as recoverable.
func (s *SyncService) Refresh(ctx context.Context) error {
	s.mu.Lock()
	sc := s.currentScope()
	if sc.kind == scopeNone {
		s.mu.Unlock()
		return nil
	}
	s.seq++
	mySeq := s.seq
	var group models.Group
	if s.selectedGroup != nil {
		group = *s.selectedGroup
	}
	s.mu.Unlock()

	var (
		fetched []models.Task
		err     error
	)
	switch sc.kind {
	case scopeGroup:
		fetched, err = s.api.GetGroupTasks(ctx, sc.id)
	case scopeUser:
		fetched, err = s.api.GetUserTasks(ctx, sc.id)
	}
	if err != nil {
		return fmt.Errorf("refresh %s: %w", sc.key(), err)
	}

	mapped := s.decorate(fetched, sc, group)

	s.mu.Lock()
	if mySeq != s.seq || s.currentScope() != sc {
		// A newer fetch was issued (or the scope moved on) while this one was
		// in flight; applying it would overwrite fresher state.
		s.mu.Unlock()
		s.log.Debugw("discarding stale refresh", "scope", sc.key(), "seq", mySeq)
		return nil
	}
	s.tasks = mapped
	s.mu.Unlock()

	s.persistSnapshot(sc, mapped)
	return nil
}

// decorate resolves display names and denormalizes group information onto
// the fetched records. A directory miss yields a sentinel, never an error.
func (s *SyncService) decorate(fetched []models.Task, sc scope, group models.Group) []models.Task {
	mapped := make([]models.Task, len(fetched))
	for i, t := range fetched {
		if name, ok := s.dir.UserName(t.AssignerID); ok {
			t.AssignerName = name
		} else {
			t.AssignerName = models.UnknownAssigner
		}

		t.ExecutorName = models.UnassignedUser
		if len(t.ExecutorIDs) > 0 {
			if name, ok := s.dir.UserName(t.ExecutorIDs[0]); ok {
				t.ExecutorName = name
			}
		}

		if sc.kind == scopeGroup {
			t.GroupID = group.ID
			t.GroupName = group.Name
		} else if g, ok := s.dir.Group(t.GroupID); ok {
			t.GroupName = g.Name
		}
		mapped[i] = t
	}
	return mapped
}

// SelectGroup changes the board scope. In-flight refreshes for the previous
// scope are invalidated, the cached snapshot (if any) is shown immediately,
// and a fresh fetch is kicked off.
func (s *SyncService) SelectGroup(ctx context.Context, g models.Group) error {
	s.mu.Lock()
	s.selectedGroup = &g
	s.seq++
	s.tasks = nil
	sc := s.currentScope()
	s.mu.Unlock()

	s.primeFromCache(sc)
	return s.Refresh(ctx)
}

func (s *SyncService) SelectedGroup() *models.Group {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.selectedGroup == nil {
		return nil
	}
	g := *s.selectedGroup
	return &g
}

// Prime seeds the board from the snapshot cache for the current scope. Used
// right after login, before the first fetch completes.
func (s *SyncService) Prime(ctx context.Context) {
	s.mu.Lock()
	sc := s.currentScope()
	s.mu.Unlock()
	s.primeFromCache(sc)
}

func (s *SyncService) primeFromCache(sc scope) {
	if s.cache == nil || sc.kind == scopeNone {
		return
	}
	cached, err := s.cache.Load(sc.key())
	if err != nil {
		s.log.Warnw("snapshot cache load failed", "scope", sc.key(), "error", err)
		return
	}
	if cached == nil {
		return
	}

	s.mu.Lock()
	// Only seed while nothing fresher has landed for this scope.
	if len(s.tasks) == 0 && s.currentScope() == sc {
		s.tasks = cached
	}
	s.mu.Unlock()
}

func (s *SyncService) persistSnapshot(sc scope, tasks []models.Task) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Save(sc.key(), tasks); err != nil {
		s.log.Warnw("snapshot cache save failed", "scope", sc.key(), "error", err)
	}
}

// Tasks returns a copy of the reconciled list.
func (s *SyncService) Tasks() []models.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Task, len(s.tasks))
	copy(out, s.tasks)
	return out
}

// MoveTask applies a drag-and-drop status transition: the local task flips
// first so the board reacts immediately, then the server is told. A failed
// update reverts that one task, nothing else.
func (s *SyncService) MoveTask(ctx context.Context, taskID int, newStatus models.Status) error {
	if !newStatus.Valid() {
		return fmt.Errorf("%w: %q", models.ErrUnknownStatus, string(newStatus))
	}

	s.mu.Lock()
	idx := s.indexOf(taskID)
	if idx < 0 {
		s.mu.Unlock()
		return fmt.Errorf("move task %d: %w", taskID, ErrTaskNotFound)
	}
	prev := s.tasks[idx].Status
	if prev == newStatus {
		// The drag library fires drops onto the origin column too.
		s.mu.Unlock()
		return nil
	}
	s.tasks[idx].Status = newStatus
	s.mu.Unlock()

	if err := s.api.UpdateTaskStatus(ctx, taskID, newStatus); err != nil {
		s.mu.Lock()
		if idx := s.indexOf(taskID); idx >= 0 && s.tasks[idx].Status == newStatus {
			s.tasks[idx].Status = prev
		}
		s.mu.Unlock()
		return fmt.Errorf("move task %d: %w", taskID, err)
	}
	return nil
}

// DeleteTask removes the task optimistically and confirms with the server.
// A failed delete restores the task at its original position, keeping the
// failure policy consistent with MoveTask.
func (s *SyncService) DeleteTask(ctx context.Context, taskID int) error {
	if !s.sess.CanDeleteTasks() {
		return fmt.Errorf("delete task %d: %w", taskID, ErrPermission)
	}

	s.mu.Lock()
	idx := s.indexOf(taskID)
	if idx < 0 {
		s.mu.Unlock()
		return fmt.Errorf("delete task %d: %w", taskID, ErrTaskNotFound)
	}
	removed := s.tasks[idx]
	s.tasks = append(s.tasks[:idx], s.tasks[idx+1:]...)
	s.mu.Unlock()

	if err := s.api.DeleteTask(ctx, taskID); err != nil {
		s.mu.Lock()
		if s.indexOf(taskID) < 0 {
			pos := idx
			if pos > len(s.tasks) {
				pos = len(s.tasks)
			}
			s.tasks = append(s.tasks[:pos], append([]models.Task{removed}, s.tasks[pos:]...)...)
		}
		s.mu.Unlock()
		return fmt.Errorf("delete task %d: %w", taskID, err)
	}
	return nil
}

// CreateTask delegates to the backend. The list is not appended optimistically;
// the caller refreshes after a successful create to observe the new task.
func (s *SyncService) CreateTask(ctx context.Context, draft models.TaskDraft) (*models.Task, error) {
	if !s.sess.CanCreateTasks() {
		return nil, fmt.Errorf("create task: %w", ErrPermission)
	}
	created, err := s.api.CreateTask(ctx, draft)
	if err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}
	return created, nil
}

// HandlePushEvent reacts to a push-channel notification. The payload is only
// an invalidation hint: a known event addressed to the session user triggers
// a refresh, everything else is ignored.
func (s *SyncService) HandlePushEvent(ctx context.Context, event models.PushEvent) {
	if !event.Known() {
		s.log.Debugw("ignoring unknown push event", "event", event.Event)
		return
	}
	if !s.sess.Active() || event.UserID != s.sess.UserID() {
		return
	}
	if err := s.Refresh(ctx); err != nil {
		s.log.Warnw("push-triggered refresh failed", "error", err)
	}
}

// Reset clears board state on logout.
func (s *SyncService) Reset() {
	s.mu.Lock()
	s.tasks = nil
	s.selectedGroup = nil
	s.seq++
	s.mu.Unlock()
}

// indexOf finds a task by id. Callers hold s.mu.
func (s *SyncService) indexOf(taskID int) int {
	for i, t := range s.tasks {
		if t.ID == taskID {
			return i
		}
	}
	return -1
}
