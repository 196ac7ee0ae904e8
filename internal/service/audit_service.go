package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sapta-dev/bimbel-admin-api/internal/models"
	"github.com/sapta-dev/bimbel-admin-api/pkg/config"
	"github.com/sapta-dev/bimbel-admin-api/pkg/jobs"
)

type auditWriter interface {
	Create(ctx context.Context, entry *models.AuditLog) error
}

// AuditService writes audit trail entries off the request path. Entries are
// enqueued onto an in-memory worker queue and persisted by the repository;
// a full queue or a failed write never fails the originating request.
type AuditService struct {
	queue  *jobs.Queue
	logger *zap.Logger
}

// NewAuditService builds an AuditService backed by its own worker queue.
// Call Start before recording and Stop on shutdown.
func NewAuditService(repo auditWriter, cfg config.AuditConfig, logger *zap.Logger) *AuditService {
	if logger == nil {
		logger = zap.NewNop()
	}
	handler := func(ctx context.Context, job jobs.Job) error {
		entry, ok := job.Payload.(*models.AuditLog)
		if !ok {
			return fmt.Errorf("unexpected audit payload type %T", job.Payload)
		}
		return repo.Create(ctx, entry)
	}
	queue := jobs.NewQueue("audit", handler, jobs.QueueConfig{
		Workers:    cfg.Workers,
		BufferSize: cfg.BufferSize,
		MaxRetries: cfg.MaxRetries,
		RetryDelay: cfg.RetryDelay,
		Logger:     logger,
	})
	return &AuditService{queue: queue, logger: logger}
}

// Start launches the queue workers.
func (s *AuditService) Start(ctx context.Context) {
	s.queue.Start(ctx)
}

// Stop drains the workers.
func (s *AuditService) Stop() {
	s.queue.Stop()
}

// Record enqueues an audit entry for asynchronous persistence.
func (s *AuditService) Record(entry models.AuditLog) {
	job := jobs.Job{
		ID:      uuid.NewString(),
		Type:    entry.Action,
		Payload: &entry,
	}
	if err := s.queue.TryEnqueue(job); err != nil {
		s.logger.Warn("dropping audit entry",
			zap.String("action", entry.Action),
			zap.String("resource", entry.Resource),
			zap.Error(err))
	}
}
