package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/sapta-dev/bimbel-admin-api/internal/dto"
	"github.com/sapta-dev/bimbel-admin-api/internal/models"
)

type conflictChecker interface {
	Check(ctx context.Context, req dto.ConflictCheckRequest) (*dto.ConflictCheckResponse, error)
}

// ConflictReport is the monitor's last published state.
type ConflictReport struct {
	Checking    bool                    `json:"checking"`
	Conflicts   []models.LessonConflict `json:"conflicts"`
	Suggestions []dto.DateSuggestion    `json:"suggestions,omitempty"`
	CheckedAt   time.Time               `json:"checked_at,omitempty"`
	Error       string                  `json:"error,omitempty"`
}

// ConflictMonitor debounces rapid conflict-check requests and discards
// results from superseded checks. Each Request bumps a generation counter
// and resets a single shared timer; when a check finishes, its result is
// published only if no newer request arrived in the meantime.
type ConflictMonitor struct {
	checker  conflictChecker
	debounce time.Duration
	logger   *zap.Logger

	mu         sync.Mutex
	generation uint64
	timer      *time.Timer
	report     ConflictReport
}

// NewConflictMonitor instantiates ConflictMonitor. A non-positive debounce
// fires checks immediately.
func NewConflictMonitor(checker conflictChecker, debounce time.Duration, logger *zap.Logger) *ConflictMonitor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConflictMonitor{checker: checker, debounce: debounce, logger: logger}
}

// Request schedules a conflict check for the given payload, replacing any
// pending one. It returns the generation token assigned to this request.
func (m *ConflictMonitor) Request(ctx context.Context, req dto.ConflictCheckRequest) uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.generation++
	gen := m.generation
	m.report.Checking = true

	if m.timer != nil {
		m.timer.Stop()
	}
	run := func() { m.run(ctx, gen, req) }
	if m.debounce <= 0 {
		go run()
		return gen
	}
	m.timer = time.AfterFunc(m.debounce, run)
	return gen
}

func (m *ConflictMonitor) run(ctx context.Context, gen uint64, req dto.ConflictCheckRequest) {
	if m.stale(gen) {
		return
	}

	resp, err := m.checker.Check(ctx, req)

	m.mu.Lock()
	defer m.mu.Unlock()
	if gen != m.generation {
		// A newer request took over while this check was in flight.
		return
	}

	m.report.Checking = false
	m.report.CheckedAt = time.Now()
	if err != nil {
		// An unavailable backend must not read as a clean schedule; the
		// report carries the failure until a later check succeeds.
		m.logger.Warn("conflict check failed", zap.Uint64("generation", gen), zap.Error(err))
		m.report.Conflicts = nil
		m.report.Suggestions = nil
		m.report.Error = err.Error()
		return
	}
	m.report.Conflicts = resp.Conflicts
	m.report.Suggestions = resp.Suggestions
	m.report.Error = ""
}

func (m *ConflictMonitor) stale(gen uint64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return gen != m.generation
}

// Latest returns a snapshot of the last published report.
func (m *ConflictMonitor) Latest() ConflictReport {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := m.report
	out.Conflicts = append([]models.LessonConflict(nil), m.report.Conflicts...)
	out.Suggestions = append([]dto.DateSuggestion(nil), m.report.Suggestions...)
	return out
}

// Stop cancels any pending debounced check.
func (m *ConflictMonitor) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
	m.generation++
	m.report.Checking = false
}
