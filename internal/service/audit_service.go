package service

import (
	"context"
	"fmt"

	"github.com/maxwelmichira/timberflow/internal/model"
	"github.com/maxwelmichira/timberflow/internal/repository"
)

type AuditListFilter struct {
	Action string
	UserID string
	Page   int
	Limit  int
}

type AuditService interface {
	List(ctx context.Context, filter AuditListFilter) ([]model.AuditLog, int64, error)
}

type auditService struct {
	auditRepo repository.AuditRepository
}

func NewAuditService(auditRepo repository.AuditRepository) AuditService {
	return &auditService{auditRepo: auditRepo}
}

func (s *auditService) List(ctx context.Context, filter AuditListFilter) ([]model.AuditLog, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.Limit <= 0 {
		filter.Limit = 50
	}
	logs, total, err := s.auditRepo.List(ctx, repository.AuditFilter{
		Action: filter.Action,
		UserID: filter.UserID,
		Page:   filter.Page,
		Limit:  filter.Limit,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list audit logs: %w", err)
	}
	return logs, total, nil
}
