package service

import (
	"context"
	"fmt"
	"time"

	"reqtrack/internal/model"
	"reqtrack/internal/permission"
	"reqtrack/internal/repository"
	"reqtrack/pkg/apperr"
)

type AuditLogResponse struct {
	ID         string `json:"id"`
	RequestID  string `json:"request_id"`
	ActorID    string `json:"actor_id"`
	ActorName  string `json:"actor_name"`
	ActionType string `json:"action_type"`
	FromValue  string `json:"from_value,omitempty"`
	ToValue    string `json:"to_value,omitempty"`
	Note       string `json:"note,omitempty"`
	CreatedAt  string `json:"created_at"`
}

type AuditService interface {
	ListByRequest(ctx context.Context, actor permission.Actor, requestID string) ([]AuditLogResponse, error)
	List(ctx context.Context, page, limit int) ([]AuditLogResponse, int64, error)
}

type auditService struct {
	audits   repository.AuditRepository
	requests repository.RequestRepository
}

// NewAuditService creates a new AuditService instance
func NewAuditService(audits repository.AuditRepository, requests repository.RequestRepository) AuditService {
	return &auditService{audits: audits, requests: requests}
}

// ListByRequest returns a request's history newest-first.
func (s *auditService) ListByRequest(ctx context.Context, actor permission.Actor, requestID string) ([]AuditLogResponse, error) {
	entity, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		return nil, notFoundOr(err, "request %s not found", requestID)
	}
	if !permission.CanViewRequest(actor, subjectOf(entity)) {
		return nil, apperr.Unauthorized("you may not view this request")
	}

	logs, err := s.audits.ListByRequest(ctx, requestID)
	if err != nil {
		return nil, fmt.Errorf("list audit entries: %w", err)
	}

	result := make([]AuditLogResponse, 0, len(logs))
	for i := range logs {
		result = append(result, toAuditResponse(&logs[i]))
	}
	return result, nil
}

func (s *auditService) List(ctx context.Context, page, limit int) ([]AuditLogResponse, int64, error) {
	logs, total, err := s.audits.List(ctx, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("list audit entries: %w", err)
	}

	result := make([]AuditLogResponse, 0, len(logs))
	for i := range logs {
		result = append(result, toAuditResponse(&logs[i]))
	}
	return result, total, nil
}

func toAuditResponse(entry *model.AuditLog) AuditLogResponse {
	resp := AuditLogResponse{
		ID:         entry.ID.String(),
		RequestID:  entry.RequestID,
		ActionType: entry.ActionType,
		FromValue:  entry.FromValue,
		ToValue:    entry.ToValue,
		Note:       entry.Note,
		CreatedAt:  entry.CreatedAt.Format(time.RFC3339),
	}
	if entry.ActorID != nil {
		resp.ActorID = entry.ActorID.String()
	}
	if entry.Actor != nil {
		resp.ActorName = entry.Actor.Username
	}
	return resp
}
