package services

import (
	"context"

	"github.com/unetra-global/member-portal-sub000/internal/models"
	"github.com/unetra-global/member-portal-sub000/internal/repository"
	"github.com/unetra-global/member-portal-sub000/internal/tasks"
)

// AuditService writes audit entries in the background.
type AuditService struct {
	logs  repository.AuditLogRepository
	tasks tasks.Dispatcher
}

func NewAuditService(logs repository.AuditLogRepository, dispatcher tasks.Dispatcher) *AuditService {
	return &AuditService{logs: logs, tasks: dispatcher}
}

// Record queues entry for writing. A full queue drops the entry.
func (s *AuditService) Record(entry models.AuditLog) bool {
	return s.tasks.Submit("audit."+entry.Action, func(ctx context.Context) error {
		return s.logs.Create(ctx, &entry)
	})
}
