package app

import (
	"context"
	"time"

	"github.com/vkarpovich/classbooker/internal/workflow"
	"go.uber.org/zap"
)

const (
	sessionCleanupInterval = 10 * time.Minute
	sessionMaxAge          = 30 * time.Minute
)

// Scheduler управляет фоновыми задачами
type Scheduler struct {
	wizard   *workflow.Wizard
	logger   *zap.Logger
	stopChan chan struct{}
}

// NewScheduler создаёт новый планировщик
func NewScheduler(wizard *workflow.Wizard, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		wizard:   wizard,
		logger:   logger,
		stopChan: make(chan struct{}),
	}
}

// Start запускает фоновые задачи
func (s *Scheduler) Start(ctx context.Context) {
	s.logger.Info("Starting background scheduler")

	go s.runSessionCleanupTask(ctx)
}

// Stop останавливает фоновые задачи
func (s *Scheduler) Stop() {
	s.logger.Info("Stopping background scheduler")
	close(s.stopChan)
}

// runSessionCleanupTask периодически удаляет брошенные сессии мастера
func (s *Scheduler) runSessionCleanupTask(ctx context.Context) {
	ticker := time.NewTicker(sessionCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			removed := s.wizard.Cleanup(sessionMaxAge)
			if removed > 0 {
				s.logger.Info("Cleaned up stale wizard sessions", zap.Int("removed", removed))
			}
		case <-s.stopChan:
			s.logger.Info("Session cleanup task stopped")
			return
		case <-ctx.Done():
			s.logger.Info("Session cleanup task cancelled")
			return
		}
	}
}
