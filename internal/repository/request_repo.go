package repository

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"reqtrack/internal/model"
	"reqtrack/internal/workflow"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RequestFilter narrows and orders request listings.
type RequestFilter struct {
	Status      workflow.Status
	Category    string
	Priority    string
	RequesterID *uuid.UUID
	Keyword     string // matched against title and description
	OrderBy     string // validated order clause, e.g. "created_at desc"
	Page        int
	Limit       int
}

// RequestRepository is the data-access surface of the lifecycle service. The
// ForUpdate load and NextID are only meaningful inside a transaction.
type RequestRepository interface {
	NextID(ctx context.Context, now time.Time) (string, error)
	Create(ctx context.Context, req *model.Request) error
	GetByID(ctx context.Context, id string) (*model.Request, error)
	GetForUpdate(ctx context.Context, id string) (*model.Request, error)
	Save(ctx context.Context, req *model.Request) error
	List(ctx context.Context, filter RequestFilter) ([]model.Request, int64, error)
	Delete(ctx context.Context, id string) error
	RecordDeletion(ctx context.Context, entry *model.DeletionLog) error
}

type requestRepository struct {
	db *gorm.DB
}

func NewRequestRepository(db *gorm.DB) RequestRepository {
	return &requestRepository{db: db}
}

// NextID allocates the next date-stamped sequential id ("20250102_001") by
// scanning today's max suffix under an advisory lock scoped to the date
// prefix. Concurrent allocators for the same day serialize on the lock;
// a duplicate-key insert afterwards still surfaces so the caller can retry.
func (r *requestRepository) NextID(ctx context.Context, now time.Time) (string, error) {
	db := GetDB(ctx, r.db)
	prefix := now.Format("20060102") + "_"

	if err := db.Exec("SELECT pg_advisory_xact_lock(hashtext(?))", prefix).Error; err != nil {
		return "", fmt.Errorf("acquire id allocation lock: %w", err)
	}

	// Order by length before value: suffixes grow past three digits on busy
	// days and "_1000" sorts below "_999" in plain string order.
	var last string
	err := db.Model(&model.Request{}).
		Select("id").
		Where("id LIKE ?", prefix+"%").
		Order("length(id) desc, id desc").
		Limit(1).
		Scan(&last).Error
	if err != nil {
		return "", fmt.Errorf("scan max request id: %w", err)
	}

	seq := 0
	if last != "" {
		raw := strings.TrimPrefix(last, prefix)
		if n, parseErr := strconv.Atoi(raw); parseErr == nil {
			seq = n
		}
	}

	return fmt.Sprintf("%s%03d", prefix, seq+1), nil
}

func (r *requestRepository) Create(ctx context.Context, req *model.Request) error {
	return GetDB(ctx, r.db).Create(req).Error
}

func (r *requestRepository) GetByID(ctx context.Context, id string) (*model.Request, error) {
	var req model.Request
	err := GetDB(ctx, r.db).
		Preload("Requester").
		Preload("Reviewer").
		Preload("Implementer").
		First(&req, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &req, nil
}

// GetForUpdate loads the row with a FOR UPDATE lock so concurrent lifecycle
// operations on the same request serialize; validation then runs against the
// row's actual current state.
func (r *requestRepository) GetForUpdate(ctx context.Context, id string) (*model.Request, error) {
	var req model.Request
	err := GetDB(ctx, r.db).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&req, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *requestRepository) Save(ctx context.Context, req *model.Request) error {
	return GetDB(ctx, r.db).Save(req).Error
}

func (r *requestRepository) List(ctx context.Context, filter RequestFilter) ([]model.Request, int64, error) {
	db := GetDB(ctx, r.db)

	apply := func(q *gorm.DB) *gorm.DB {
		if filter.Status != "" {
			q = q.Where("status = ?", filter.Status)
		}
		if filter.Category != "" {
			q = q.Where("category = ?", filter.Category)
		}
		if filter.Priority != "" {
			q = q.Where("priority = ?", filter.Priority)
		}
		if filter.RequesterID != nil {
			q = q.Where("requester_id = ?", *filter.RequesterID)
		}
		if filter.Keyword != "" {
			pattern := "%" + filter.Keyword + "%"
			q = q.Where("title ILIKE ? OR description ILIKE ?", pattern, pattern)
		}
		return q
	}

	var total int64
	if err := apply(db.Model(&model.Request{})).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	orderBy := filter.OrderBy
	if orderBy == "" {
		orderBy = "created_at desc"
	}

	var requests []model.Request
	err := apply(db.Model(&model.Request{})).
		Preload("Requester").
		Preload("Reviewer").
		Preload("Implementer").
		Order(orderBy).
		Offset((filter.Page - 1) * filter.Limit).
		Limit(filter.Limit).
		Find(&requests).Error
	if err != nil {
		return nil, 0, err
	}

	return requests, total, nil
}

func (r *requestRepository) Delete(ctx context.Context, id string) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.Request{}).Error
}

func (r *requestRepository) RecordDeletion(ctx context.Context, entry *model.DeletionLog) error {
	return GetDB(ctx, r.db).Create(entry).Error
}
