package console

import (
	"errors"
	"sync"
)

// ErrSubmitInFlight is returned when a form is submitted again before the
// previous submission finished.
var ErrSubmitInFlight = errors.New("console: submission already in progress")

// SubmitGuard allows one in-flight submission per form.
type SubmitGuard struct {
	mu   sync.Mutex
	busy map[string]bool
}

// Run executes submit unless form is already submitting.
func (g *SubmitGuard) Run(form string, submit func() error) error {
	g.mu.Lock()
	if g.busy == nil {
		g.busy = make(map[string]bool)
	}
	if g.busy[form] {
		g.mu.Unlock()
		return ErrSubmitInFlight
	}
	g.busy[form] = true
	g.mu.Unlock()

	defer func() {
		g.mu.Lock()
		delete(g.busy, form)
		g.mu.Unlock()
	}()
	return submit()
}

// Busy reports whether form is submitting.
func (g *SubmitGuard) Busy(form string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.busy[form]
}
