package repository

import (
	"context"

	"reqtrack/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CommentRepository interface {
	Create(ctx context.Context, comment *model.Comment) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Comment, error)
	ListByRequest(ctx context.Context, requestID string) ([]model.Comment, error)
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByRequest(ctx context.Context, requestID string) error
}

type commentRepository struct {
	db *gorm.DB
}

func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) Create(ctx context.Context, comment *model.Comment) error {
	return GetDB(ctx, r.db).Create(comment).Error
}

func (r *commentRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Comment, error) {
	var comment model.Comment
	if err := GetDB(ctx, r.db).Preload("Author").First(&comment, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &comment, nil
}

func (r *commentRepository) ListByRequest(ctx context.Context, requestID string) ([]model.Comment, error) {
	var comments []model.Comment
	err := GetDB(ctx, r.db).
		Preload("Author").
		Where("request_id = ?", requestID).
		Order("created_at asc").
		Find(&comments).Error
	return comments, err
}

func (r *commentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.Comment{}).Error
}

func (r *commentRepository) DeleteByRequest(ctx context.Context, requestID string) error {
	return GetDB(ctx, r.db).Where("request_id = ?", requestID).Delete(&model.Comment{}).Error
}
