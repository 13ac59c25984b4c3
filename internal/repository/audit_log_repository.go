package repository

import (
	"context"

	"iaction/internal/domain/model"
)

// 監査ログの絞り込み条件。
type AuditLogFilter struct {
	Actor        *string
	Action       *model.AuditAction
	ResourceType *model.AuditResourceType
	ResourceID   *string
	Limit        int
	Offset       int
}

// 監査ログの保存・一覧取得の約束。
type AuditLogRepository interface {
	Create(ctx context.Context, log model.AuditLog) error

	List(ctx context.Context, filter AuditLogFilter) ([]model.AuditLog, error)
}
