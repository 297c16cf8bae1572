package repository

import (
	"context"

	"reqtrack/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BoardRepository interface {
	Create(ctx context.Context, msg *model.BoardMessage) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.BoardMessage, error)
	List(ctx context.Context, page, limit int) ([]model.BoardMessage, int64, error)
	SetPinned(ctx context.Context, id uuid.UUID, pinned bool) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type boardRepository struct {
	db *gorm.DB
}

func NewBoardRepository(db *gorm.DB) BoardRepository {
	return &boardRepository{db: db}
}

func (r *boardRepository) Create(ctx context.Context, msg *model.BoardMessage) error {
	return GetDB(ctx, r.db).Create(msg).Error
}

func (r *boardRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.BoardMessage, error) {
	var msg model.BoardMessage
	if err := GetDB(ctx, r.db).Preload("Author").First(&msg, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &msg, nil
}

// List returns pinned messages first, newest first within each group.
func (r *boardRepository) List(ctx context.Context, page, limit int) ([]model.BoardMessage, int64, error) {
	var msgs []model.BoardMessage
	var total int64

	db := GetDB(ctx, r.db)
	if err := db.Model(&model.BoardMessage{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	err := db.Preload("Author").
		Order("pinned desc, created_at desc").
		Offset(offset).
		Limit(limit).
		Find(&msgs).Error
	if err != nil {
		return nil, 0, err
	}

	return msgs, total, nil
}

func (r *boardRepository) SetPinned(ctx context.Context, id uuid.UUID, pinned bool) error {
	return GetDB(ctx, r.db).Model(&model.BoardMessage{}).Where("id = ?", id).Update("pinned", pinned).Error
}

func (r *boardRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.BoardMessage{}).Error
}
