package service

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"reqtrack/internal/model"
	"reqtrack/internal/permission"
	"reqtrack/internal/repository"
	"reqtrack/internal/storage"
	"reqtrack/pkg/apperr"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type AttachmentResponse struct {
	ID           string `json:"id"`
	RequestID    string `json:"request_id"`
	UploaderID   string `json:"uploader_id"`
	UploaderName string `json:"uploader_name,omitempty"`
	FileName     string `json:"file_name"`
	SizeBytes    int64  `json:"size_bytes"`
	ContentType  string `json:"content_type"`
	CreatedAt    string `json:"created_at"`
}

type AttachmentService interface {
	Upload(ctx context.Context, actor permission.Actor, requestID, fileName, contentType string, size int64, src io.Reader) (*AttachmentResponse, error)
	ListByRequest(ctx context.Context, actor permission.Actor, requestID string) ([]AttachmentResponse, error)
	Open(ctx context.Context, actor permission.Actor, attachmentID string) (*model.Attachment, io.ReadCloser, error)
	Delete(ctx context.Context, actor permission.Actor, attachmentID string) error
}

type attachmentService struct {
	tx          repository.TransactionManager
	requests    repository.RequestRepository
	attachments repository.AttachmentRepository
	store       storage.Store
	maxBytes    int64
}

func NewAttachmentService(
	tx repository.TransactionManager,
	requests repository.RequestRepository,
	attachments repository.AttachmentRepository,
	store storage.Store,
	maxBytes int64,
) AttachmentService {
	return &attachmentService{
		tx:          tx,
		requests:    requests,
		attachments: attachments,
		store:       store,
		maxBytes:    maxBytes,
	}
}

// Upload writes the payload to the store, then inserts the metadata row.
// Uploads are outside the workflow-critical path: no audit entry, no
// updated_at bump on the parent request.
func (s *attachmentService) Upload(ctx context.Context, actor permission.Actor, requestID, fileName, contentType string, size int64, src io.Reader) (*AttachmentResponse, error) {
	if fileName == "" {
		return nil, apperr.Validation("file name is required")
	}
	if size > s.maxBytes {
		return nil, apperr.Validation("attachment exceeds the %d MB limit", s.maxBytes/(1024*1024))
	}

	entity, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		return nil, notFoundOr(err, "request %s not found", requestID)
	}
	if !permission.CanViewRequest(actor, subjectOf(entity)) {
		return nil, apperr.Unauthorized("you may not attach files to this request")
	}

	key := filepath.Join(requestID, uuid.NewString()+filepath.Ext(fileName))
	locator, written, err := s.store.Save(key, io.LimitReader(src, s.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("store attachment: %w", err)
	}
	if written > s.maxBytes {
		if rmErr := s.store.Remove(locator); rmErr != nil {
			logrus.WithError(rmErr).Warn("failed to remove oversized attachment payload")
		}
		return nil, apperr.Validation("attachment exceeds the %d MB limit", s.maxBytes/(1024*1024))
	}

	attachment := &model.Attachment{
		RequestID:   requestID,
		UploaderID:  actor.ID,
		FileName:    fileName,
		SizeBytes:   written,
		ContentType: contentType,
		StoredPath:  locator,
	}
	if err := s.attachments.Create(ctx, attachment); err != nil {
		if rmErr := s.store.Remove(locator); rmErr != nil {
			logrus.WithError(rmErr).Warn("failed to remove orphaned attachment payload")
		}
		return nil, fmt.Errorf("create attachment row: %w", err)
	}

	resp := toAttachmentResponse(attachment)
	return &resp, nil
}

func (s *attachmentService) ListByRequest(ctx context.Context, actor permission.Actor, requestID string) ([]AttachmentResponse, error) {
	entity, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		return nil, notFoundOr(err, "request %s not found", requestID)
	}
	if !permission.CanViewRequest(actor, subjectOf(entity)) {
		return nil, apperr.Unauthorized("you may not view this request")
	}

	attachments, err := s.attachments.ListByRequest(ctx, requestID)
	if err != nil {
		return nil, fmt.Errorf("list attachments: %w", err)
	}

	result := make([]AttachmentResponse, 0, len(attachments))
	for i := range attachments {
		result = append(result, toAttachmentResponse(&attachments[i]))
	}
	return result, nil
}

func (s *attachmentService) Open(ctx context.Context, actor permission.Actor, attachmentID string) (*model.Attachment, io.ReadCloser, error) {
	id, err := uuid.Parse(attachmentID)
	if err != nil {
		return nil, nil, apperr.Validation("invalid attachment id")
	}

	attachment, err := s.attachments.GetByID(ctx, id)
	if err != nil {
		return nil, nil, notFoundOr(err, "attachment not found")
	}

	entity, err := s.requests.GetByID(ctx, attachment.RequestID)
	if err != nil {
		return nil, nil, notFoundOr(err, "request %s not found", attachment.RequestID)
	}
	if !permission.CanViewRequest(actor, subjectOf(entity)) {
		return nil, nil, apperr.Unauthorized("you may not download this attachment")
	}

	payload, err := s.store.Open(attachment.StoredPath)
	if err != nil {
		return nil, nil, fmt.Errorf("open attachment payload: %w", err)
	}
	return attachment, payload, nil
}

func (s *attachmentService) Delete(ctx context.Context, actor permission.Actor, attachmentID string) error {
	id, err := uuid.Parse(attachmentID)
	if err != nil {
		return apperr.Validation("invalid attachment id")
	}

	var locator string
	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		attachment, loadErr := s.attachments.GetByID(txCtx, id)
		if loadErr != nil {
			return notFoundOr(loadErr, "attachment not found")
		}
		// Same ownership rule as comments: uploader or admin.
		if !permission.CanDeleteComment(actor, attachment.UploaderID) {
			return apperr.Unauthorized("only the uploader or an admin may delete an attachment")
		}
		locator = attachment.StoredPath
		return s.attachments.Delete(txCtx, id)
	})
	if err != nil {
		return err
	}

	if rmErr := s.store.Remove(locator); rmErr != nil {
		logrus.WithError(rmErr).WithField("locator", locator).Warn("failed to remove attachment payload")
	}
	return nil
}

func toAttachmentResponse(attachment *model.Attachment) AttachmentResponse {
	resp := AttachmentResponse{
		ID:          attachment.ID.String(),
		RequestID:   attachment.RequestID,
		UploaderID:  attachment.UploaderID.String(),
		FileName:    attachment.FileName,
		SizeBytes:   attachment.SizeBytes,
		ContentType: attachment.ContentType,
		CreatedAt:   attachment.CreatedAt.Format(time.RFC3339),
	}
	if attachment.Uploader != nil {
		resp.UploaderName = attachment.Uploader.Username
	}
	return resp
}
