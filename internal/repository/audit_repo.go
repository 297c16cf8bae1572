package repository

import (
	"context"

	"reqtrack/internal/model"

	"gorm.io/gorm"
)

// AuditRepository appends and queries the immutable audit trail. Record is
// expected to run inside the same transaction as the mutation it describes
// (see TransactionManager); there is deliberately no update or delete.
type AuditRepository interface {
	Record(ctx context.Context, entry *model.AuditLog) error
	ListByRequest(ctx context.Context, requestID string) ([]model.AuditLog, error)
	List(ctx context.Context, page, limit int) ([]model.AuditLog, int64, error)
	CascadeDelete(ctx context.Context, requestID string) error
}

type auditRepository struct {
	db *gorm.DB
}

func NewAuditRepository(db *gorm.DB) AuditRepository {
	return &auditRepository{db: db}
}

func (r *auditRepository) Record(ctx context.Context, entry *model.AuditLog) error {
	return GetDB(ctx, r.db).Create(entry).Error
}

// ListByRequest returns a request's full history newest-first.
func (r *auditRepository) ListByRequest(ctx context.Context, requestID string) ([]model.AuditLog, error) {
	var logs []model.AuditLog
	err := GetDB(ctx, r.db).
		Preload("Actor").
		Where("request_id = ?", requestID).
		Order("created_at desc, seq desc").
		Find(&logs).Error
	return logs, err
}

func (r *auditRepository) List(ctx context.Context, page, limit int) ([]model.AuditLog, int64, error) {
	var logs []model.AuditLog
	var total int64

	db := GetDB(ctx, r.db)
	if err := db.Model(&model.AuditLog{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := db.Preload("Actor").Order("created_at desc, seq desc").Offset(offset).Limit(limit).Find(&logs).Error; err != nil {
		return nil, 0, err
	}

	return logs, total, nil
}

// CascadeDelete removes a deleted request's audit rows. The deletion tombstone
// written alongside it is the surviving record.
func (r *auditRepository) CascadeDelete(ctx context.Context, requestID string) error {
	return GetDB(ctx, r.db).Where("request_id = ?", requestID).Delete(&model.AuditLog{}).Error
}
