package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/MaxonPy/kanban/internal/board"
	"github.com/MaxonPy/kanban/internal/client/kanban"
	"github.com/MaxonPy/kanban/internal/models"
	"github.com/MaxonPy/kanban/internal/service"
	"github.com/MaxonPy/kanban/internal/session"
)

// fakeBackend is an in-memory stand-in for the remote kanban API.
type fakeBackend struct {
	mu     sync.Mutex
	nextID int
	tasks  map[int]map[string]any // task_id -> raw record
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{nextID: 1, tasks: make(map[int]map[string]any)}
}

func (b *fakeBackend) addTask(title, status string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.nextID
	b.nextID++
	b.tasks[id] = map[string]any{
		"task_id": id, "title": title, "description": "",
		"status": status, "priority": "medium", "group_id": 10,
		"assigner_id": 1, "user_ids": []int{2},
		"created_at": "2025-05-01T10:00:00",
	}
	return id
}

func (b *fakeBackend) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /groups", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `[{"group_id":10,"name":"PI-21","description":"","created_at":"2025-01-10T09:00:00"}]`)
	})
	mux.HandleFunc("GET /users", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `[
			{"user_id":1,"name":"Bozhday A.S.","role":"teacher"},
			{"user_id":2,"name":"Maxim P.","role":"student"}
		]`)
	})
	mux.HandleFunc("GET /tasks/group/{id}", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		records := make([]map[string]any, 0, len(b.tasks))
		for id := 1; id < b.nextID; id++ {
			if rec, ok := b.tasks[id]; ok {
				records = append(records, rec)
			}
		}
		json.NewEncoder(w).Encode(records)
	})
	mux.HandleFunc("GET /users_tasks/{id}", func(w http.ResponseWriter, r *http.Request) {
		userID, _ := strconv.Atoi(r.PathValue("id"))
		b.mu.Lock()
		defer b.mu.Unlock()
		records := make([]map[string]any, 0)
		for id := 1; id < b.nextID; id++ {
			rec, ok := b.tasks[id]
			if !ok {
				continue
			}
			for _, uid := range rec["user_ids"].([]int) {
				if uid == userID {
					records = append(records, rec)
					break
				}
			}
		}
		json.NewEncoder(w).Encode(records)
	})
	mux.HandleFunc("POST /tasks", func(w http.ResponseWriter, r *http.Request) {
		var req map[string]any
		json.NewDecoder(r.Body).Decode(&req)
		id := b.addTask(req["title"].(string), req["status"].(string))
		b.mu.Lock()
		rec := b.tasks[id]
		b.mu.Unlock()
		json.NewEncoder(w).Encode(rec)
	})
	mux.HandleFunc("PATCH /tasks/{id}", func(w http.ResponseWriter, r *http.Request) {
		id, _ := strconv.Atoi(r.PathValue("id"))
		var req map[string]string
		json.NewDecoder(r.Body).Decode(&req)

		b.mu.Lock()
		defer b.mu.Unlock()
		rec, ok := b.tasks[id]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			io.WriteString(w, `{"detail":"Task not found"}`)
			return
		}
		rec["status"] = req["status"]
		json.NewEncoder(w).Encode(rec)
	})
	mux.HandleFunc("DELETE /tasks/{id}", func(w http.ResponseWriter, r *http.Request) {
		id, _ := strconv.Atoi(r.PathValue("id"))
		b.mu.Lock()
		defer b.mu.Unlock()
		if _, ok := b.tasks[id]; !ok {
			w.WriteHeader(http.StatusNotFound)
			io.WriteString(w, `{"detail":"Task not found"}`)
			return
		}
		delete(b.tasks, id)
		io.WriteString(w, `{"detail":"Task deleted successfully"}`)
	})
	mux.HandleFunc("POST /upload-file", func(w http.ResponseWriter, r *http.Request) {
		_, header, err := r.FormFile("file")
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		fmt.Fprintf(w, `{"file_path":"uploads/%s"}`, header.Filename)
	})

	return mux
}

type testApp struct {
	router  http.Handler
	backend *fakeBackend
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	backend := newFakeBackend()
	backendSrv := httptest.NewServer(backend.handler())
	t.Cleanup(backendSrv.Close)

	apiClient := kanban.NewClient(backendSrv.URL)
	logger := zap.NewNop().Sugar()

	sess := session.New(
		session.Credentials{Username: "teacher", Password: "teacher", UserID: 1},
		session.Credentials{Username: "student", Password: "student", UserID: 2},
	)
	dir := service.NewDirectoryService(apiClient, apiClient)
	syncSvc := service.NewSyncService(apiClient, dir, sess, nil, logger)

	runtime := service.NewRuntime(syncSvc, dir, time.Hour,
		func(handler func(models.PushEvent)) service.PushListener { return &nopListener{} },
		logger)
	t.Cleanup(runtime.Stop)

	return &testApp{
		router:  SetupRouter(sess, runtime, syncSvc, dir, apiClient, logger),
		backend: backend,
	}
}

type nopListener struct{}

func (*nopListener) Run(ctx context.Context) { <-ctx.Done() }
func (*nopListener) Close()                  {}

func (a *testApp) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

func (a *testApp) loginTeacher(t *testing.T) {
	t.Helper()
	rec := a.do(t, http.MethodPost, "/session/login", map[string]string{"username": "teacher", "password": "teacher"})
	require.Equal(t, http.StatusOK, rec.Code)
}

func (a *testApp) selectGroup(t *testing.T) {
	t.Helper()
	rec := a.do(t, http.MethodPost, "/board/group", map[string]int{"group_id": 10})
	require.Equal(t, http.StatusOK, rec.Code)
}

func (a *testApp) snapshot(t *testing.T) board.Snapshot {
	t.Helper()
	rec := a.do(t, http.MethodGet, "/board", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var snap board.Snapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	return snap
}

func TestLogin_RejectsBadCredentials(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(t, http.MethodPost, "/session/login", map[string]string{"username": "teacher", "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestBoardFlow_TeacherSession(t *testing.T) {
	app := newTestApp(t)
	taskID := app.backend.addTask("FP lab", "todo")

	app.loginTeacher(t)

	rec := app.do(t, http.MethodGet, "/groups", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "PI-21")

	app.selectGroup(t)

	snap := app.snapshot(t)
	require.Len(t, snap.Assigned, 1)
	assert.Equal(t, "FP lab", snap.Assigned[0].Title)
	assert.Equal(t, "Bozhday A.S.", snap.Assigned[0].AssignerName)
	assert.Equal(t, "Maxim P.", snap.Assigned[0].ExecutorName)

	// Drag to the completed column.
	rec = app.do(t, http.MethodPost, "/board/tasks/"+strconv.Itoa(taskID)+"/move", map[string]string{"status": "completed"})
	require.Equal(t, http.StatusOK, rec.Code)

	snap = app.snapshot(t)
	assert.Empty(t, snap.Assigned)
	require.Len(t, snap.Completed, 1)

	// Create shows up after the follow-up refresh.
	rec = app.do(t, http.MethodPost, "/board/tasks", map[string]any{
		"title": "OOP reading", "description": "delegates in C#", "priority": "medium",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	snap = app.snapshot(t)
	assert.Len(t, snap.Assigned, 1)

	// Delete the completed task.
	rec = app.do(t, http.MethodDelete, "/board/tasks/"+strconv.Itoa(taskID), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	snap = app.snapshot(t)
	assert.Empty(t, snap.Completed)
}

func TestSelectGroup_UnknownGroup(t *testing.T) {
	app := newTestApp(t)
	app.loginTeacher(t)

	rec := app.do(t, http.MethodPost, "/board/group", map[string]int{"group_id": 99})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStudentSession_SeesOwnAssignments(t *testing.T) {
	app := newTestApp(t)
	app.backend.addTask("FP lab", "todo")

	rec := app.do(t, http.MethodPost, "/session/login", map[string]string{"username": "student", "password": "student"})
	require.Equal(t, http.StatusOK, rec.Code)

	snap := app.snapshot(t)
	require.Len(t, snap.Assigned, 1)
	assert.Equal(t, "FP lab", snap.Assigned[0].Title)
	assert.Equal(t, "PI-21", snap.Assigned[0].GroupName)
}

func TestMoveTask_RejectsRemoteVocabulary(t *testing.T) {
	app := newTestApp(t)
	app.backend.addTask("FP lab", "todo")
	app.loginTeacher(t)
	app.selectGroup(t)

	// The facade speaks the board vocabulary only.
	rec := app.do(t, http.MethodPost, "/board/tasks/1/move", map[string]string{"status": "in_progress"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMoveTask_UnknownTask(t *testing.T) {
	app := newTestApp(t)
	app.loginTeacher(t)
	app.selectGroup(t)

	rec := app.do(t, http.MethodPost, "/board/tasks/42/move", map[string]string{"status": "completed"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteTask_ForbiddenForStudent(t *testing.T) {
	app := newTestApp(t)
	taskID := app.backend.addTask("FP lab", "todo")

	rec := app.do(t, http.MethodPost, "/session/login", map[string]string{"username": "student", "password": "student"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = app.do(t, http.MethodDelete, "/board/tasks/"+strconv.Itoa(taskID), nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestCreateTask_RequiresSelectedGroup(t *testing.T) {
	app := newTestApp(t)
	app.loginTeacher(t)

	rec := app.do(t, http.MethodPost, "/board/tasks", map[string]any{"title": "orphan"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUploadFile(t *testing.T) {
	app := newTestApp(t)
	app.loginTeacher(t)

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", "report.pdf")
	require.NoError(t, err)
	io.WriteString(part, "contents")
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/board/files", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	rec := httptest.NewRecorder()
	app.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "uploads/"))
	assert.True(t, strings.Contains(rec.Body.String(), "report.pdf"))
}

func TestLogout_ClearsBoard(t *testing.T) {
	app := newTestApp(t)
	app.backend.addTask("FP lab", "todo")
	app.loginTeacher(t)
	app.selectGroup(t)
	require.NotEmpty(t, app.snapshot(t).Assigned)

	rec := app.do(t, http.MethodPost, "/session/logout", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	snap := app.snapshot(t)
	assert.Empty(t, snap.Assigned)
	assert.Empty(t, snap.InProgress)
	assert.Empty(t, snap.Completed)
}
