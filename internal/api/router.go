package api

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/MaxonPy/kanban/internal/api/handlers"
	"github.com/MaxonPy/kanban/internal/client"
	"github.com/MaxonPy/kanban/internal/service"
	"github.com/MaxonPy/kanban/internal/session"
)

func SetupRouter(
	sess *session.Session,
	runtime *service.Runtime,
	syncSvc *service.SyncService,
	dir *service.DirectoryService,
	files client.FileAPI,
	log *zap.SugaredLogger,
) http.Handler {
	mux := http.NewServeMux()

	sessionHandler := handlers.NewSessionHandler(sess, runtime, log)
	boardHandler := handlers.NewBoardHandler(syncSvc, dir, files, log)

	mux.HandleFunc("POST /session/login", sessionHandler.Login)
	mux.HandleFunc("POST /session/logout", sessionHandler.Logout)

	mux.HandleFunc("GET /groups", boardHandler.GetGroups)
	mux.HandleFunc("POST /board/group", boardHandler.SelectGroup)
	mux.HandleFunc("GET /board", boardHandler.GetBoard)
	mux.HandleFunc("POST /board/tasks", boardHandler.CreateTask)
	mux.HandleFunc("POST /board/tasks/{id}/move", boardHandler.MoveTask)
	mux.HandleFunc("DELETE /board/tasks/{id}", boardHandler.DeleteTask)
	mux.HandleFunc("POST /board/files", boardHandler.UploadFile)

	return RequestLogger(log, mux)
}
