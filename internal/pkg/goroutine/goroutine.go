// Package goroutine runs fire-and-forget background work with a bounded
// number of concurrent goroutines and panic recovery.
package goroutine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"runtime/debug"
	"sync"

	"github.com/shandysiswandi/assetly/internal/pkg/stacktrace"
)

// DefaultMaxGoroutine is multiplied by NumCPU when NewManager receives a non-positive limit.
const DefaultMaxGoroutine int = 100

// maxKeptErrors caps what Wait can report. Tasks run for the whole process
// life, so later failures are only counted.
const maxKeptErrors = 64

// ErrPanic is collected when a task panics.
var ErrPanic = errors.New("goroutine: task panicked")

// Manager runs named tasks in goroutines with a concurrency limit.
//
// Errors returned by tasks are logged. The first maxKeptErrors are kept and
// Wait returns them joined.
type Manager struct {
	mu      sync.Mutex
	errs    []error
	dropped int
	wg      sync.WaitGroup
	sema    chan struct{}

	stateMu sync.RWMutex
	closed  bool
}

// NewManager creates a Manager with the provided maximum concurrency.
func NewManager(maxGoroutine int) *Manager {
	if maxGoroutine < 1 {
		maxGoroutine = runtime.NumCPU() * DefaultMaxGoroutine
	}

	return &Manager{sema: make(chan struct{}, maxGoroutine)}
}

// Go schedules f under name. It reports false when the manager is closed
// or saturated, in which case f never runs.
func (g *Manager) Go(ctx context.Context, name string, f func(ctx context.Context) error) bool {
	if g == nil {
		return false
	}

	g.stateMu.RLock()
	defer g.stateMu.RUnlock()

	if g.closed {
		slog.WarnContext(ctx, "goroutine manager is closed, task skipped", "task", name)
		return false
	}

	select {
	case g.sema <- struct{}{}:
	default:
		slog.WarnContext(ctx, "maximum goroutine limit reached, task skipped", "task", name)
		return false
	}

	g.wg.Go(func() {
		defer func() {
			<-g.sema

			if rvr := recover(); rvr != nil {
				stack := debug.Stack()
				if paths := stacktrace.InternalPaths(stack); len(paths) > 0 {
					slog.ErrorContext(ctx, "panic occurred in goroutine", "task", name, "because", rvr, "stack", paths)
				} else {
					slog.ErrorContext(ctx, "panic occurred in goroutine", "task", name, "because", rvr, "stack", string(stack))
				}
				g.collect(ErrPanic)
			}
		}()

		if err := ctx.Err(); err != nil {
			slog.WarnContext(ctx, "goroutine canceled before start", "task", name, "because", err)
			return
		}

		if err := f(ctx); err != nil {
			slog.WarnContext(ctx, "goroutine task failed", "task", name, "error", err)
			g.collect(err)
		}
	})

	return true
}

func (g *Manager) collect(err error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if len(g.errs) < maxKeptErrors {
		g.errs = append(g.errs, err)
		return
	}
	g.dropped++
}

// Wait stops accepting tasks, blocks until running ones finish and returns
// the collected errors. It satisfies the closer signature used at shutdown.
func (g *Manager) Wait() error {
	if g == nil {
		return nil
	}

	g.stateMu.Lock()
	g.closed = true
	g.stateMu.Unlock()

	g.wg.Wait()

	g.mu.Lock()
	defer g.mu.Unlock()

	if g.dropped > 0 {
		return errors.Join(append(g.errs, fmt.Errorf("goroutine: %d more task errors not kept", g.dropped))...)
	}
	return errors.Join(g.errs...)
}
