package repository

import (
	"context"

	"reqtrack/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AttachmentRepository interface {
	Create(ctx context.Context, attachment *model.Attachment) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Attachment, error)
	ListByRequest(ctx context.Context, requestID string) ([]model.Attachment, error)
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByRequest(ctx context.Context, requestID string) error
}

type attachmentRepository struct {
	db *gorm.DB
}

func NewAttachmentRepository(db *gorm.DB) AttachmentRepository {
	return &attachmentRepository{db: db}
}

func (r *attachmentRepository) Create(ctx context.Context, attachment *model.Attachment) error {
	return GetDB(ctx, r.db).Create(attachment).Error
}

func (r *attachmentRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Attachment, error) {
	var attachment model.Attachment
	if err := GetDB(ctx, r.db).Preload("Uploader").First(&attachment, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &attachment, nil
}

func (r *attachmentRepository) ListByRequest(ctx context.Context, requestID string) ([]model.Attachment, error) {
	var attachments []model.Attachment
	err := GetDB(ctx, r.db).
		Preload("Uploader").
		Where("request_id = ?", requestID).
		Order("created_at asc").
		Find(&attachments).Error
	return attachments, err
}

func (r *attachmentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.Attachment{}).Error
}

func (r *attachmentRepository) DeleteByRequest(ctx context.Context, requestID string) error {
	return GetDB(ctx, r.db).Where("request_id = ?", requestID).Delete(&model.Attachment{}).Error
}
