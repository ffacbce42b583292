package service

import (
	"context"
	"strings"
	"time"

	"github.com/eleven-freight/internal/models"
	"github.com/eleven-freight/internal/repository"
)

// AuditActor 操作人信息
type AuditActor struct {
	UserID *uint
	IP     string
}

// AuditRecordInput 审计记录输入
type AuditRecordInput struct {
	Actor   AuditActor
	Action  string
	Module  string
	OldData models.JSON
	NewData models.JSON
}

// AuditLogService 审计日志服务
type AuditLogService struct {
	repo  repository.AuditLogRepository
	clock func() time.Time
}

// NewAuditLogService 创建审计日志服务
func NewAuditLogService(repo repository.AuditLogRepository) *AuditLogService {
	return &AuditLogService{repo: repo, clock: time.Now}
}

// Record 记录审计日志
func (s *AuditLogService) Record(ctx context.Context, input AuditRecordInput) error {
	if s == nil || s.repo == nil {
		return nil
	}
	action := strings.TrimSpace(input.Action)
	if action == "" {
		return nil
	}
	return s.repo.Create(ctx, &models.AuditLog{
		UserID:    input.Actor.UserID,
		Action:    action,
		Module:    strings.TrimSpace(input.Module),
		OldData:   input.OldData,
		NewData:   input.NewData,
		IPAddress: strings.TrimSpace(input.Actor.IP),
		CreatedAt: s.clock(),
	})
}

// ListForAdmin 管理端查询审计日志
func (s *AuditLogService) ListForAdmin(ctx context.Context, filter repository.AuditLogListFilter) ([]models.AuditLog, int64, error) {
	if s == nil || s.repo == nil {
		return []models.AuditLog{}, 0, nil
	}
	return s.repo.ListAdmin(ctx, filter)
}
