package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/MaxonPy/kanban/internal/service"
	"github.com/MaxonPy/kanban/internal/session"
)

type SessionHandler struct {
	sess    *session.Session
	runtime *service.Runtime
	log     *zap.SugaredLogger
}

func NewSessionHandler(sess *session.Session, runtime *service.Runtime, log *zap.SugaredLogger) *SessionHandler {
	return &SessionHandler{sess: sess, runtime: runtime, log: log}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *SessionHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	role, err := h.sess.Login(req.Username, req.Password)
	if err != nil {
		if errors.Is(err, session.ErrBadCredentials) {
			writeError(w, http.StatusUnauthorized, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if err := h.runtime.Start(r.Context()); err != nil {
		// The session stays open; board data arrives once the backend is
		// reachable again.
		h.log.Warnw("session start incomplete", "error", err)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"role":    role,
		"user_id": h.sess.UserID(),
		"name":    h.sess.UserName(),
	})
}

func (h *SessionHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.runtime.Stop()
	h.sess.Logout()
	writeJSON(w, http.StatusOK, map[string]string{"detail": "logged out"})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
