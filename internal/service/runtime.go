package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/MaxonPy/kanban/internal/models"
)

// PushListener is the lifecycle surface the runtime needs from the
// notification channel.
type PushListener interface {
	Run(ctx context.Context)
	Close()
}

// Runtime supervises the per-session machinery: the directory snapshot, the
// polling loop and the push listener. A listener that exhausts its retry
// budget stays down until the next Start (i.e. the next login).
type Runtime struct {
	sync         *SyncService
	dir          *DirectoryService
	pollInterval time.Duration
	newListener  func(handler func(models.PushEvent)) PushListener
	log          *zap.SugaredLogger

	mu       sync.Mutex
	cancel   context.CancelFunc
	listener PushListener
}

func NewRuntime(
	syncSvc *SyncService,
	dir *DirectoryService,
	pollInterval time.Duration,
	newListener func(handler func(models.PushEvent)) PushListener,
	log *zap.SugaredLogger,
) *Runtime {
	return &Runtime{
		sync:         syncSvc,
		dir:          dir,
		pollInterval: pollInterval,
		newListener:  newListener,
		log:          log,
	}
}

// Start brings the session machinery up. Idempotent: a second Start tears
// the previous machinery down first.
func (r *Runtime) Start(ctx context.Context) error {
	r.Stop()

	if err := r.dir.Refresh(ctx); err != nil {
		return err
	}

	runCtx, cancel := context.WithCancel(context.Background())

	r.sync.Prime(runCtx)
	if err := r.sync.Refresh(runCtx); err != nil {
		// Recoverable: the poller retries on its next tick.
		r.log.Warnw("initial refresh failed", "error", err)
	}

	listener := r.newListener(func(event models.PushEvent) {
		r.sync.HandlePushEvent(runCtx, event)
	})
	go listener.Run(runCtx)

	poller := NewPoller(r.pollInterval, r.sync.Refresh, r.log)
	go poller.Run(runCtx)

	r.mu.Lock()
	r.cancel = cancel
	r.listener = listener
	r.mu.Unlock()
	return nil
}

// Stop tears down the poller and push listener and clears board state. Safe
// to call when nothing is running.
func (r *Runtime) Stop() {
	r.mu.Lock()
	cancel := r.cancel
	listener := r.listener
	r.cancel = nil
	r.listener = nil
	r.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if listener != nil {
		listener.Close()
	}
	if cancel != nil || listener != nil {
		r.sync.Reset()
	}
}
