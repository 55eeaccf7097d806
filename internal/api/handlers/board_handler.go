package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/MaxonPy/kanban/internal/board"
	"github.com/MaxonPy/kanban/internal/client"
	"github.com/MaxonPy/kanban/internal/models"
	"github.com/MaxonPy/kanban/internal/service"
)

const maxUploadBytes = 16 << 20

type BoardHandler struct {
	sync  *service.SyncService
	dir   *service.DirectoryService
	files client.FileAPI
	log   *zap.SugaredLogger
}

func NewBoardHandler(sync *service.SyncService, dir *service.DirectoryService, files client.FileAPI, log *zap.SugaredLogger) *BoardHandler {
	return &BoardHandler{sync: sync, dir: dir, files: files, log: log}
}

func (h *BoardHandler) GetGroups(w http.ResponseWriter, r *http.Request) {
	groups := h.dir.Groups()
	if len(groups) == 0 {
		if err := h.dir.Refresh(r.Context()); err != nil {
			writeError(w, http.StatusBadGateway, "group directory unavailable: "+err.Error())
			return
		}
		groups = h.dir.Groups()
	}
	writeJSON(w, http.StatusOK, map[string]any{"groups": groups})
}

type selectGroupRequest struct {
	GroupID int `json:"group_id"`
}

func (h *BoardHandler) SelectGroup(w http.ResponseWriter, r *http.Request) {
	var req selectGroupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	group, ok := h.dir.Group(req.GroupID)
	if !ok {
		writeError(w, http.StatusNotFound, "group not found")
		return
	}

	if err := h.sync.SelectGroup(r.Context(), group); err != nil {
		// Selection stuck; the cached snapshot (if any) is already showing
		// and the poller keeps retrying.
		h.log.Warnw("refresh after group selection failed", "group", group.ID, "error", err)
	}
	writeJSON(w, http.StatusOK, map[string]any{"group": group})
}

func (h *BoardHandler) GetBoard(w http.ResponseWriter, r *http.Request) {
	activeID := 0
	if raw := r.URL.Query().Get("active"); raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid active task id")
			return
		}
		activeID = id
	}

	snap := board.BuildSnapshot(h.sync.Tasks(), activeID, time.Now())
	writeJSON(w, http.StatusOK, snap)
}

type moveTaskRequest struct {
	Status string `json:"status"`
}

func (h *BoardHandler) MoveTask(w http.ResponseWriter, r *http.Request) {
	taskID, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid task id")
		return
	}

	var req moveTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	status, err := models.ParseStatus(req.Status)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.sync.MoveTask(r.Context(), taskID, status); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"detail": "task moved"})
}

func (h *BoardHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	taskID, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid task id")
		return
	}

	if err := h.sync.DeleteTask(r.Context(), taskID); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"detail": "task deleted"})
}

type createTaskRequest struct {
	Title         string   `json:"title"`
	Description   string   `json:"description"`
	Priority      string   `json:"priority"`
	Deadline      string   `json:"deadline"`
	ExecutorIDs   []int    `json:"executor_ids"`
	AttachedFiles []string `json:"attached_files"`
}

func (h *BoardHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	var req createTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Title == "" {
		writeError(w, http.StatusBadRequest, "title is required")
		return
	}

	group := h.sync.SelectedGroup()
	if group == nil {
		writeError(w, http.StatusBadRequest, "no group selected")
		return
	}

	draft := models.TaskDraft{
		Title:         req.Title,
		Description:   req.Description,
		Priority:      models.Priority(req.Priority),
		GroupID:       group.ID,
		ExecutorIDs:   req.ExecutorIDs,
		AttachedFiles: req.AttachedFiles,
	}
	if req.Deadline != "" {
		due, err := time.Parse("2006-01-02", req.Deadline)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid deadline, want YYYY-MM-DD")
			return
		}
		draft.DueAt = &due
	}

	created, err := h.sync.CreateTask(r.Context(), draft)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	// The new task becomes visible through a reconciling fetch, never by
	// appending locally.
	if err := h.sync.Refresh(r.Context()); err != nil {
		h.log.Warnw("refresh after create failed", "error", err)
	}

	writeJSON(w, http.StatusCreated, map[string]any{"task": created})
}

func (h *BoardHandler) UploadFile(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing file field")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "read uploaded file: "+err.Error())
		return
	}

	// Prefix with a generated id so same-named uploads never collide.
	name := uuid.New().String() + "_" + header.Filename
	ref, err := h.files.UploadFile(r.Context(), name, data)
	if err != nil {
		writeError(w, http.StatusBadGateway, "upload failed: "+err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"file_path": ref})
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrPermission):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrTaskNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, models.ErrUnknownStatus):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusBadGateway, err.Error())
	}
}
