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

type CreateBoardMessageDTO struct {
	Content string `json:"content" binding:"required"`
}

type BoardMessageResponse struct {
	ID         string `json:"id"`
	AuthorID   string `json:"author_id"`
	AuthorName string `json:"author_name,omitempty"`
	Content    string `json:"content"`
	Pinned     bool   `json:"pinned"`
	CreatedAt  string `json:"created_at"`
}

type BoardService interface {
	Create(ctx context.Context, actor permission.Actor, req CreateBoardMessageDTO) (*BoardMessageResponse, error)
	List(ctx context.Context, page, limit int) ([]BoardMessageResponse, int64, error)
	SetPinned(ctx context.Context, actor permission.Actor, id string, pinned bool) error
	Delete(ctx context.Context, actor permission.Actor, id string) error
}

type boardService struct {
	board repository.BoardRepository
}

func NewBoardService(board repository.BoardRepository) BoardService {
	return &boardService{board: board}
}

func (s *boardService) Create(ctx context.Context, actor permission.Actor, req CreateBoardMessageDTO) (*BoardMessageResponse, error) {
	if strings.TrimSpace(req.Content) == "" {
		return nil, apperr.Validation("message content is required")
	}

	msg := &model.BoardMessage{AuthorID: actor.ID, Content: req.Content}
	if err := s.board.Create(ctx, msg); err != nil {
		return nil, fmt.Errorf("create board message: %w", err)
	}

	created, err := s.board.GetByID(ctx, msg.ID)
	if err != nil {
		return nil, fmt.Errorf("reload board message: %w", err)
	}
	resp := toBoardResponse(created)
	return &resp, nil
}

func (s *boardService) List(ctx context.Context, page, limit int) ([]BoardMessageResponse, int64, error) {
	msgs, total, err := s.board.List(ctx, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("list board messages: %w", err)
	}

	result := make([]BoardMessageResponse, 0, len(msgs))
	for i := range msgs {
		result = append(result, toBoardResponse(&msgs[i]))
	}
	return result, total, nil
}

func (s *boardService) SetPinned(ctx context.Context, actor permission.Actor, id string, pinned bool) error {
	if !permission.CanPinBoardMessage(actor) {
		return apperr.Unauthorized("only admins may pin board messages")
	}

	msgID, err := uuid.Parse(id)
	if err != nil {
		return apperr.Validation("invalid board message id")
	}
	if _, err := s.board.GetByID(ctx, msgID); err != nil {
		return notFoundOr(err, "board message not found")
	}
	return s.board.SetPinned(ctx, msgID, pinned)
}

func (s *boardService) Delete(ctx context.Context, actor permission.Actor, id string) error {
	msgID, err := uuid.Parse(id)
	if err != nil {
		return apperr.Validation("invalid board message id")
	}

	msg, err := s.board.GetByID(ctx, msgID)
	if err != nil {
		return notFoundOr(err, "board message not found")
	}
	if !permission.CanDeleteBoardMessage(actor, msg.AuthorID) {
		return apperr.Unauthorized("only the author or an admin may delete a board message")
	}
	return s.board.Delete(ctx, msgID)
}

func toBoardResponse(msg *model.BoardMessage) BoardMessageResponse {
	resp := BoardMessageResponse{
		ID:        msg.ID.String(),
		AuthorID:  msg.AuthorID.String(),
		Content:   msg.Content,
		Pinned:    msg.Pinned,
		CreatedAt: msg.CreatedAt.Format(time.RFC3339),
	}
	if msg.Author != nil {
		resp.AuthorName = msg.Author.Username
	}
	return resp
}
