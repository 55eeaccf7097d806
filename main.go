package main

import (
	"log"
	"net/http"

	"github.com/joho/godotenv"

	"github.com/MaxonPy/kanban/internal/api"
	"github.com/MaxonPy/kanban/internal/client/kanban"
	"github.com/MaxonPy/kanban/internal/client/push"
	"github.com/MaxonPy/kanban/internal/config"
	"github.com/MaxonPy/kanban/internal/logging"
	"github.com/MaxonPy/kanban/internal/models"
	"github.com/MaxonPy/kanban/internal/repository"
	"github.com/MaxonPy/kanban/internal/service"
	"github.com/MaxonPy/kanban/internal/session"
)

func main() {
	// A missing .env is fine; the environment itself may carry the config.
	godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("load config: ", err)
	}

	logger := logging.New(cfg.LogFile)
	defer logger.Sync()

	db, err := repository.InitDB(cfg.CachePath)
	if err != nil {
		log.Fatal("init snapshot cache: ", err)
	}
	defer db.Close()

	backend := kanban.NewClient(cfg.BackendURL)
	snapshotRepo := repository.NewSnapshotRepository(db)

	sess := session.New(
		session.Credentials{Username: cfg.TeacherUsername, Password: cfg.TeacherPassword, UserID: cfg.TeacherUserID},
		session.Credentials{Username: cfg.StudentUsername, Password: cfg.StudentPassword, UserID: cfg.StudentUserID},
	)

	dir := service.NewDirectoryService(backend, backend)
	syncSvc := service.NewSyncService(backend, dir, sess, snapshotRepo, logger)

	newListener := func(handler func(models.PushEvent)) service.PushListener {
		return push.NewListener(cfg.PushURL, handler, logger,
			push.WithRetryPolicy(cfg.PushRetryDelay(), cfg.PushMaxAttempts))
	}
	runtime := service.NewRuntime(syncSvc, dir, cfg.PollInterval(), newListener, logger)

	router := api.SetupRouter(sess, runtime, syncSvc, dir, backend, logger)

	logger.Infow("board client listening", "addr", cfg.ListenAddr, "backend", cfg.BackendURL)
	if err := http.ListenAndServe(cfg.ListenAddr, router); err != nil {
		log.Fatal("serve: ", err)
	}
}
