package server

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"
)

// Hook priorities. Lower runs first.
const (
	PriorityHealth   = 5
	PriorityWorker   = 20
	PriorityTracing  = 80
	PriorityDatabase = 90
)

// ShutdownHook is a named step run during shutdown.
type ShutdownHook struct {
	Name     string
	Priority int
	Fn       func(ctx context.Context) error
}

// Shutdown runs registered hooks in priority order once a context ends.
type Shutdown struct {
	mu      sync.Mutex
	hooks   []ShutdownHook
	timeout time.Duration
	logger  *slog.Logger
	once    sync.Once
	done    chan struct{}
}

// NewShutdown returns a Shutdown that gives hooks timeout to finish.
// A non-positive timeout means 30 seconds.
func NewShutdown(timeout time.Duration, logger *slog.Logger) *Shutdown {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Shutdown{timeout: timeout, logger: logger, done: make(chan struct{})}
}

// RegisterHook adds a hook. Hooks of equal priority run in registration order.
func (s *Shutdown) RegisterHook(name string, priority int, fn func(ctx context.Context) error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hooks = append(s.hooks, ShutdownHook{Name: name, Priority: priority, Fn: fn})
	sort.SliceStable(s.hooks, func(i, j int) bool { return s.hooks[i].Priority < s.hooks[j].Priority })
}

// Wait blocks until ctx is done, then runs the hooks and returns the names of
// those that failed.
func (s *Shutdown) Wait(ctx context.Context) []string {
	<-ctx.Done()
	return s.Run()
}

// Run executes every hook once. Later calls return nil.
func (s *Shutdown) Run() []string {
	var failed []string
	s.once.Do(func() {
		defer close(s.done)

		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()

		s.mu.Lock()
		hooks := make([]ShutdownHook, len(s.hooks))
		copy(hooks, s.hooks)
		s.mu.Unlock()

		for _, h := range hooks {
			start := time.Now()
			if err := h.Fn(ctx); err != nil {
				s.logger.Error("shutdown hook failed", "hook", h.Name, "error", err)
				failed = append(failed, h.Name)
				continue
			}
			s.logger.Debug("shutdown hook done", "hook", h.Name, "duration", time.Since(start))
		}
	})
	return failed
}

// Done is closed after the hooks have run.
func (s *Shutdown) Done() <-chan struct{} {
	return s.done
}
