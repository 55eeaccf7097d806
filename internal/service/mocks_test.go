package service

import (
	"context"
	"sync"

	"github.com/MaxonPy/kanban/internal/models"
)

// fakeTaskAPI scripts backend responses and records mutation calls.
type fakeTaskAPI struct {
	mu sync.Mutex

	groupTasks map[int][]models.Task
	userTasks  map[int][]models.Task

	fetchErr  error
	updateErr error
	deleteErr error
	createErr error

	fetchCalls  int
	updateCalls []statusUpdate
	deleteCalls []int
	created     []models.TaskDraft

	// When manual is set, each GetGroupTasks call blocks on its own gate
	// until the test releases it, enabling deterministic in-flight
	// interleavings.
	manual  bool
	pending []chan fetchResult
	// Signalled once per fetch as soon as the call is issued.
	fetchStarted chan struct{}
}

type statusUpdate struct {
	taskID int
	status models.Status
}

type fetchResult struct {
	tasks []models.Task
	err   error
}

func newFakeTaskAPI() *fakeTaskAPI {
	return &fakeTaskAPI{
		groupTasks: make(map[int][]models.Task),
		userTasks:  make(map[int][]models.Task),
	}
}

func (f *fakeTaskAPI) GetGroupTasks(ctx context.Context, groupID int) ([]models.Task, error) {
	f.mu.Lock()
	f.fetchCalls++
	manual := f.manual
	started := f.fetchStarted
	tasks := cloneTasks(f.groupTasks[groupID])
	err := f.fetchErr

	var gate chan fetchResult
	if manual {
		gate = make(chan fetchResult, 1)
		f.pending = append(f.pending, gate)
	}
	f.mu.Unlock()

	if started != nil {
		started <- struct{}{}
	}
	if manual {
		res := <-gate
		return cloneTasks(res.tasks), res.err
	}
	return tasks, err
}

// release resolves the i-th manually gated fetch.
func (f *fakeTaskAPI) release(i int, res fetchResult) {
	f.mu.Lock()
	gate := f.pending[i]
	f.mu.Unlock()
	gate <- res
}

func (f *fakeTaskAPI) GetUserTasks(ctx context.Context, userID int) ([]models.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetchCalls++
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	return cloneTasks(f.userTasks[userID]), nil
}

func (f *fakeTaskAPI) CreateTask(ctx context.Context, draft models.TaskDraft) (*models.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.created = append(f.created, draft)
	return &models.Task{ID: 100 + len(f.created), Title: draft.Title, Status: models.StatusAssigned}, nil
}

func (f *fakeTaskAPI) UpdateTaskStatus(ctx context.Context, taskID int, status models.Status) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updateCalls = append(f.updateCalls, statusUpdate{taskID: taskID, status: status})
	return f.updateErr
}

func (f *fakeTaskAPI) DeleteTask(ctx context.Context, taskID int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleteCalls = append(f.deleteCalls, taskID)
	return f.deleteErr
}

func (f *fakeTaskAPI) fetchCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fetchCalls
}

func cloneTasks(tasks []models.Task) []models.Task {
	out := make([]models.Task, len(tasks))
	copy(out, tasks)
	return out
}

// fakeDirectoryAPI feeds the DirectoryService.
type fakeDirectoryAPI struct {
	groups    []models.Group
	users     []models.User
	groupsErr error
	usersErr  error
}

func (f *fakeDirectoryAPI) GetGroups(ctx context.Context) ([]models.Group, error) {
	if f.groupsErr != nil {
		return nil, f.groupsErr
	}
	return f.groups, nil
}

func (f *fakeDirectoryAPI) GetUsers(ctx context.Context) ([]models.User, error) {
	if f.usersErr != nil {
		return nil, f.usersErr
	}
	return f.users, nil
}

// memorySnapshotStore is an in-memory SnapshotStore.
type memorySnapshotStore struct {
	mu    sync.Mutex
	saved map[string][]models.Task
}

func newMemorySnapshotStore() *memorySnapshotStore {
	return &memorySnapshotStore{saved: make(map[string][]models.Task)}
}

func (m *memorySnapshotStore) Save(scopeKey string, tasks []models.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saved[scopeKey] = cloneTasks(tasks)
	return nil
}

func (m *memorySnapshotStore) Load(scopeKey string) ([]models.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	tasks, ok := m.saved[scopeKey]
	if !ok {
		return nil, nil
	}
	return cloneTasks(tasks), nil
}

// fakeListener satisfies PushListener for runtime tests.
type fakeListener struct {
	mu      sync.Mutex
	running bool
	closed  bool
}

func (l *fakeListener) Run(ctx context.Context) {
	l.mu.Lock()
	l.running = true
	l.mu.Unlock()
	<-ctx.Done()
}

func (l *fakeListener) Close() {
	l.mu.Lock()
	l.closed = true
	l.mu.Unlock()
}

func (l *fakeListener) isClosed() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.closed
}
