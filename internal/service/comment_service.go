package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"reqtrack/internal/model"
	"reqtrack/internal/permission"
	"reqtrack/internal/repository"
	"reqtrack/pkg/apperr"

	"github.com/google/uuid"
)

type CreateCommentDTO struct {
	Content string `json:"content" binding:"required"`
}

type CommentResponse struct {
	ID         string `json:"id"`
	RequestID  string `json:"request_id"`
	AuthorID   string `json:"author_id"`
	AuthorName string `json:"author_name,omitempty"`
	Content    string `json:"content"`
	CreatedAt  string `json:"created_at"`
}

type CommentService interface {
	Create(ctx context.Context, actor permission.Actor, requestID string, req CreateCommentDTO) (*CommentResponse, error)
	ListByRequest(ctx context.Context, actor permission.Actor, requestID string) ([]CommentResponse, error)
	Delete(ctx context.Context, actor permission.Actor, commentID string) error
}

type commentService struct {
	tx       repository.TransactionManager
	requests repository.RequestRepository
	comments repository.CommentRepository
	audits   repository.AuditRepository
}

func NewCommentService(
	tx repository.TransactionManager,
	requests repository.RequestRepository,
	comments repository.CommentRepository,
	audits repository.AuditRepository,
) CommentService {
	return &commentService{tx: tx, requests: requests, comments: comments, audits: audits}
}

func (s *commentService) Create(ctx context.Context, actor permission.Actor, requestID string, req CreateCommentDTO) (*CommentResponse, error) {
	if strings.TrimSpace(req.Content) == "" {
		return nil, apperr.Validation("comment content is required")
	}

	comment := &model.Comment{
		RequestID: requestID,
		AuthorID:  actor.ID,
		Content:   req.Content,
	}

	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		entity, loadErr := s.requests.GetForUpdate(txCtx, requestID)
		if loadErr != nil {
			return notFoundOr(loadErr, "request %s not found", requestID)
		}
		if !permission.CanViewRequest(actor, subjectOf(entity)) {
			return apperr.Unauthorized("you may not comment on this request")
		}

		if createErr := s.comments.Create(txCtx, comment); createErr != nil {
			return fmt.Errorf("create comment: %w", createErr)
		}

		// A comment counts as activity on the request.
		entity.UpdatedAt = time.Now()
		if saveErr := s.requests.Save(txCtx, entity); saveErr != nil {
			return fmt.Errorf("bump request: %w", saveErr)
		}

		actorID := actor.ID
		entry := &model.AuditLog{
			RequestID:  requestID,
			ActorID:    &actorID,
			ActionType: model.ActionComment,
			Note:       "comment posted",
		}
		return s.audits.Record(txCtx, entry)
	})
	if err != nil {
		return nil, err
	}

	created, err := s.comments.GetByID(ctx, comment.ID)
	if err != nil {
		return nil, fmt.Errorf("reload comment: %w", err)
	}
	resp := toCommentResponse(created)
	return &resp, nil
}

func (s *commentService) ListByRequest(ctx context.Context, actor permission.Actor, requestID string) ([]CommentResponse, error) {
	entity, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		return nil, notFoundOr(err, "request %s not found", requestID)
	}
	if !permission.CanViewRequest(actor, subjectOf(entity)) {
		return nil, apperr.Unauthorized("you may not view this request")
	}

	comments, err := s.comments.ListByRequest(ctx, requestID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}

	result := make([]CommentResponse, 0, len(comments))
	for i := range comments {
		result = append(result, toCommentResponse(&comments[i]))
	}
	return result, nil
}

func (s *commentService) Delete(ctx context.Context, actor permission.Actor, commentID string) error {
	id, err := uuid.Parse(commentID)
	if err != nil {
		return apperr.Validation("invalid comment id")
	}

	return s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		comment, loadErr := s.comments.GetByID(txCtx, id)
		if loadErr != nil {
			return notFoundOr(loadErr, "comment not found")
		}
		if !permission.CanDeleteComment(actor, comment.AuthorID) {
			return apperr.Unauthorized("only the comment author or an admin may delete it")
		}

		entity, loadErr := s.requests.GetForUpdate(txCtx, comment.RequestID)
		if loadErr != nil {
			return notFoundOr(loadErr, "request %s not found", comment.RequestID)
		}

		if delErr := s.comments.Delete(txCtx, id); delErr != nil {
			return fmt.Errorf("delete comment: %w", delErr)
		}

		// Removing a comment is activity on the request too.
		entity.UpdatedAt = time.Now()
		if saveErr := s.requests.Save(txCtx, entity); saveErr != nil {
			return fmt.Errorf("bump request: %w", saveErr)
		}

		// Deletion is recorded as another comment-type entry with a note,
		// keeping the action type cardinality fixed.
		actorID := actor.ID
		entry := &model.AuditLog{
			RequestID:  comment.RequestID,
			ActorID:    &actorID,
			ActionType: model.ActionComment,
			Note:       "comment deleted",
		}
		return s.audits.Record(txCtx, entry)
	})
}

func toCommentResponse(comment *model.Comment) CommentResponse {
	resp := CommentResponse{
		ID:        comment.ID.String(),
		RequestID: comment.RequestID,
		AuthorID:  comment.AuthorID.String(),
		Content:   comment.Content,
		CreatedAt: comment.CreatedAt.Format(time.RFC3339),
	}
	if comment.Author != nil {
		resp.AuthorName = comment.Author.Username
	}
	return resp
}
