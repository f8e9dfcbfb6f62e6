package worker

import (
	"context"
	"os"
	"sync"
	"time"

	"sjsage522/pricecontext/helpers"
	"sjsage522/pricecontext/internal"
)

// Worker runs one page session per configured URL
type Worker struct {
	ctx             context.Context
	deps            internal.Dependencies
	logger          helpers.LoggerInterface
	refreshInterval time.Duration

	mu       sync.Mutex
	sessions []*Session
}

// NewWorker creates a new worker
func NewWorker(
	ctx context.Context,
	pageURLs []string,
	deps internal.Dependencies,
	logger helpers.LoggerInterface,
	refreshInterval time.Duration,
) *Worker {
	w := &Worker{
		ctx:             ctx,
		deps:            deps,
		logger:          logger,
		refreshInterval: refreshInterval,
	}
	for _, u := range pageURLs {
		w.sessions = append(w.sessions, NewSession(u, deps, logger, refreshInterval))
	}
	return w
}

// Start runs every session on its own goroutine and blocks until the
// worker context is done and all sessions have stopped
func (w *Worker) Start() error {
	start := time.Now()

	var wg sync.WaitGroup
	for _, s := range w.Sessions() {
		wg.Add(1)
		go func(s *Session) {
			defer wg.Done()
			s.Run(w.ctx)
		}(s)
	}
	wg.Wait()

	if os.Getenv("PRICECONTEXT_ENVIRONMENT") != "production" {
		w.logger.LogInfo("Sessions ran for %s", time.Since(start))
	}
	return w.ctx.Err()
}

// Sessions returns the page sessions
func (w *Worker) Sessions() []*Session {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]*Session(nil), w.sessions...)
}
