package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"reqtrack/internal/model"
	"reqtrack/internal/permission"
	"reqtrack/internal/repository"
	"reqtrack/internal/storage"
	"reqtrack/internal/workflow"
	"reqtrack/pkg/apperr"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// DefaultResubmitNote is recorded when a resubmit carries no caller note.
// The literal is part of the observed wire behavior ("back into review").
const DefaultResubmitNote = "重新进入评审"

const idAllocationAttempts = 3

// --- DTOs ---

type CreateRequestDTO struct {
	Title              string   `json:"title" binding:"required"`
	Description        string   `json:"description"`
	Why                string   `json:"why"`
	AcceptanceCriteria string   `json:"acceptance_criteria"`
	Category           string   `json:"category"`
	Priority           string   `json:"priority"`
	Domain             string   `json:"domain"`
	Tags               []string `json:"tags"`
	Links              []string `json:"links"`
	ImpactScope        string   `json:"impact_scope"`
	DeliveryMode       string   `json:"delivery_mode"`
	ContactPerson      string   `json:"contact_person"`
}

// UpdateRequestDTO carries a partial patch: nil means unchanged, a pointer to
// the zero value clears the field where it is nullable.
type UpdateRequestDTO struct {
	Title              *string    `json:"title"`
	Description        *string    `json:"description"`
	Why                *string    `json:"why"`
	AcceptanceCriteria *string    `json:"acceptance_criteria"`
	Category           *string    `json:"category"`
	Priority           *string    `json:"priority"`
	Domain             *string    `json:"domain"`
	Tags               *[]string  `json:"tags"`
	Links              *[]string  `json:"links"`
	ImpactScope        *string    `json:"impact_scope"`
	DeliveryMode       *string    `json:"delivery_mode"`
	ContactPerson      *string    `json:"contact_person"`
	ImplementerID      *string    `json:"implementer_id"` // reviewer-like only; "" clears
	CreatedAt          *time.Time `json:"created_at"`     // admin only
}

type ChangeStatusDTO struct {
	ToStatus         string     `json:"to_status" binding:"required"`
	Reason           string     `json:"reason"`
	SuspendUntil     *time.Time `json:"suspend_until"`
	SuspendCondition string     `json:"suspend_condition"`
	ImplementerID    string     `json:"implementer_id"`
}

type ResubmitDTO struct {
	Note string `json:"note"`
}

type ListRequestsDTO struct {
	Status    string
	Category  string
	Priority  string
	Requester string
	Keyword   string
	OrderBy   string
	Page      int
	Limit     int
}

type RequestResponse struct {
	ID                 string   `json:"id"`
	Title              string   `json:"title"`
	Description        string   `json:"description"`
	Why                string   `json:"why"`
	AcceptanceCriteria string   `json:"acceptance_criteria"`
	Category           string   `json:"category"`
	Priority           string   `json:"priority"`
	Domain             string   `json:"domain"`
	Tags               []string `json:"tags"`
	Links              []string `json:"links"`
	ImpactScope        string   `json:"impact_scope"`
	DeliveryMode       string   `json:"delivery_mode"`
	ContactPerson      string   `json:"contact_person"`

	Status           string  `json:"status"`
	RequesterID      string  `json:"requester_id"`
	RequesterName    string  `json:"requester_name,omitempty"`
	ReviewerID       *string `json:"reviewer_id"`
	ReviewerName     string  `json:"reviewer_name,omitempty"`
	ImplementerID    *string `json:"implementer_id"`
	ImplementerName  string  `json:"implementer_name,omitempty"`
	DecisionReason   string  `json:"decision_reason"`
	SuspendUntil     *string `json:"suspend_until"`
	SuspendCondition string  `json:"suspend_condition"`

	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`

	Comments    []CommentResponse    `json:"comments,omitempty"`
	Attachments []AttachmentResponse `json:"attachments,omitempty"`
}

// --- Interface ---

type RequestService interface {
	Create(ctx context.Context, actor permission.Actor, req CreateRequestDTO) (*RequestResponse, error)
	GetByID(ctx context.Context, actor permission.Actor, id string) (*RequestResponse, error)
	List(ctx context.Context, actor permission.Actor, filter ListRequestsDTO) ([]RequestResponse, int64, error)
	Update(ctx context.Context, actor permission.Actor, id string, patch UpdateRequestDTO) (*RequestResponse, error)
	ChangeStatus(ctx context.Context, actor permission.Actor, id string, req ChangeStatusDTO) (*RequestResponse, error)
	Resubmit(ctx context.Context, actor permission.Actor, id string, req ResubmitDTO) (*RequestResponse, error)
	Delete(ctx context.Context, actor permission.Actor, id string) error
}

type requestService struct {
	tx          repository.TransactionManager
	requests    repository.RequestRepository
	audits      repository.AuditRepository
	users       repository.UserRepository
	comments    repository.CommentRepository
	attachments repository.AttachmentRepository
	store       storage.Store

	// strictIntake makes description and why required at creation.
	strictIntake bool
}

func NewRequestService(
	tx repository.TransactionManager,
	requests repository.RequestRepository,
	audits repository.AuditRepository,
	users repository.UserRepository,
	comments repository.CommentRepository,
	attachments repository.AttachmentRepository,
	store storage.Store,
	strictIntake bool,
) RequestService {
	return &requestService{
		tx:           tx,
		requests:     requests,
		audits:       audits,
		users:        users,
		comments:     comments,
		attachments:  attachments,
		store:        store,
		strictIntake: strictIntake,
	}
}

// --- Implementation ---

func (s *requestService) Create(ctx context.Context, actor permission.Actor, req CreateRequestDTO) (*RequestResponse, error) {
	if strings.TrimSpace(req.Title) == "" {
		return nil, apperr.Validation("title is required")
	}
	if s.strictIntake {
		if strings.TrimSpace(req.Description) == "" {
			return nil, apperr.Validation("description is required")
		}
		if strings.TrimSpace(req.Why) == "" {
			return nil, apperr.Validation("why is required")
		}
	}
	if !model.ValidPriority(req.Priority) {
		return nil, apperr.Validation("priority must be one of P0, P1, P2, P3")
	}

	tags, err := normalizeList(req.Tags, model.MaxTags, "tags")
	if err != nil {
		return nil, err
	}
	links, err := normalizeList(req.Links, model.MaxLinks, "links")
	if err != nil {
		return nil, err
	}

	actorID := actor.ID
	var created *model.Request
	var lastErr error

	// The advisory lock in NextID serializes same-day allocators; a duplicate
	// id can still surface and is retried a bounded number of times before
	// failing — deliberate backpressure, not a bug.
	for attempt := 0; attempt < idAllocationAttempts; attempt++ {
		entity := &model.Request{
			Title:              strings.TrimSpace(req.Title),
			Description:        req.Description,
			Why:                req.Why,
			AcceptanceCriteria: req.AcceptanceCriteria,
			Category:           req.Category,
			Priority:           req.Priority,
			Domain:             req.Domain,
			Tags:               tags,
			Links:              links,
			ImpactScope:        req.ImpactScope,
			DeliveryMode:       req.DeliveryMode,
			ContactPerson:      req.ContactPerson,
			Status:             workflow.StatusSubmitted,
			RequesterID:        actorID,
		}

		txErr := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
			id, idErr := s.requests.NextID(txCtx, time.Now())
			if idErr != nil {
				return idErr
			}
			entity.ID = id

			if createErr := s.requests.Create(txCtx, entity); createErr != nil {
				return createErr
			}

			entry := &model.AuditLog{
				RequestID:  entity.ID,
				ActorID:    &actorID,
				ActionType: model.ActionCreate,
				ToValue:    model.MarshalSnapshot(model.StatusSnapshotOf(entity)),
			}
			return s.audits.Record(txCtx, entry)
		})

		if txErr == nil {
			created = entity
			break
		}
		if errors.Is(txErr, gorm.ErrDuplicatedKey) {
			lastErr = txErr
			continue
		}
		return nil, fmt.Errorf("create request: %w", txErr)
	}

	if created == nil {
		return nil, apperr.Wrap(apperr.KindConflict, lastErr, "could not allocate a request id, please retry")
	}

	return s.reload(ctx, created.ID)
}

func (s *requestService) GetByID(ctx context.Context, actor permission.Actor, id string) (*RequestResponse, error) {
	entity, err := s.requests.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "request %s not found", id)
	}

	if !permission.CanViewRequest(actor, subjectOf(entity)) {
		return nil, apperr.Unauthorized("you may not view this request")
	}

	resp := toRequestResponse(entity)

	comments, err := s.comments.ListByRequest(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load comments: %w", err)
	}
	for i := range comments {
		resp.Comments = append(resp.Comments, toCommentResponse(&comments[i]))
	}

	attachments, err := s.attachments.ListByRequest(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load attachments: %w", err)
	}
	for i := range attachments {
		resp.Attachments = append(resp.Attachments, toAttachmentResponse(&attachments[i]))
	}

	return resp, nil
}

func (s *requestService) List(ctx context.Context, actor permission.Actor, filter ListRequestsDTO) ([]RequestResponse, int64, error) {
	if !actor.Role.Valid() {
		return nil, 0, apperr.Unauthorized("authentication required")
	}

	repoFilter := repository.RequestFilter{
		Status:   workflow.Status(filter.Status),
		Category: filter.Category,
		Priority: filter.Priority,
		Keyword:  filter.Keyword,
		OrderBy:  filter.OrderBy,
		Page:     filter.Page,
		Limit:    filter.Limit,
	}
	if filter.Status != "" && !workflow.IsValid(repoFilter.Status) {
		return nil, 0, apperr.Validation("unknown status %q", filter.Status)
	}
	if filter.Requester != "" {
		requesterID, err := uuid.Parse(filter.Requester)
		if err != nil {
			return nil, 0, apperr.Validation("invalid requester id")
		}
		repoFilter.RequesterID = &requesterID
	}

	entities, total, err := s.requests.List(ctx, repoFilter)
	if err != nil {
		return nil, 0, fmt.Errorf("list requests: %w", err)
	}

	result := make([]RequestResponse, 0, len(entities))
	for i := range entities {
		result = append(result, *toRequestResponse(&entities[i]))
	}
	return result, total, nil
}

func (s *requestService) Update(ctx context.Context, actor permission.Actor, id string, patch UpdateRequestDTO) (*RequestResponse, error) {
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		entity, loadErr := s.requests.GetForUpdate(txCtx, id)
		if loadErr != nil {
			return notFoundOr(loadErr, "request %s not found", id)
		}

		if !permission.CanEditRequest(actor, subjectOf(entity)) {
			return apperr.Unauthorized("you may not edit this request in its current state")
		}

		changed, applyErr := s.applyPatch(txCtx, actor, entity, patch)
		if applyErr != nil {
			return applyErr
		}

		entity.UpdatedAt = time.Now()
		if saveErr := s.requests.Save(txCtx, entity); saveErr != nil {
			return fmt.Errorf("save request: %w", saveErr)
		}

		actorID := actor.ID
		entry := &model.AuditLog{
			RequestID:  entity.ID,
			ActorID:    &actorID,
			ActionType: model.ActionEdit,
			ToValue:    model.MarshalSnapshot(model.EditSnapshot{Fields: changed}),
		}
		return s.audits.Record(txCtx, entry)
	})
	if err != nil {
		return nil, err
	}

	return s.reload(ctx, id)
}

// applyPatch mutates entity in place and returns the names of touched fields.
func (s *requestService) applyPatch(ctx context.Context, actor permission.Actor, entity *model.Request, patch UpdateRequestDTO) ([]string, error) {
	var changed []string
	setString := func(name string, dst *string, src *string) {
		if src != nil {
			*dst = *src
			changed = append(changed, name)
		}
	}

	if patch.Title != nil {
		if strings.TrimSpace(*patch.Title) == "" {
			return nil, apperr.Validation("title cannot be emptied")
		}
		entity.Title = strings.TrimSpace(*patch.Title)
		changed = append(changed, "title")
	}
	setString("description", &entity.Description, patch.Description)
	setString("why", &entity.Why, patch.Why)
	setString("acceptance_criteria", &entity.AcceptanceCriteria, patch.AcceptanceCriteria)
	setString("category", &entity.Category, patch.Category)
	setString("domain", &entity.Domain, patch.Domain)
	setString("impact_scope", &entity.ImpactScope, patch.ImpactScope)
	setString("delivery_mode", &entity.DeliveryMode, patch.DeliveryMode)
	setString("contact_person", &entity.ContactPerson, patch.ContactPerson)

	if patch.Priority != nil {
		if !model.ValidPriority(*patch.Priority) {
			return nil, apperr.Validation("priority must be one of P0, P1, P2, P3")
		}
		entity.Priority = *patch.Priority
		changed = append(changed, "priority")
	}

	if patch.Tags != nil {
		tags, err := normalizeList(*patch.Tags, model.MaxTags, "tags")
		if err != nil {
			return nil, err
		}
		entity.Tags = tags
		changed = append(changed, "tags")
	}
	if patch.Links != nil {
		links, err := normalizeList(*patch.Links, model.MaxLinks, "links")
		if err != nil {
			return nil, err
		}
		entity.Links = links
		changed = append(changed, "links")
	}

	if patch.ImplementerID != nil {
		if !actor.Role.ReviewerLike() {
			return nil, apperr.Unauthorized("only reviewers may change the implementer")
		}
		if *patch.ImplementerID == "" {
			entity.ImplementerID = nil
		} else {
			implementerID, err := uuid.Parse(*patch.ImplementerID)
			if err != nil {
				return nil, apperr.Validation("invalid implementer id")
			}
			exists, err := s.users.ExistsByID(ctx, implementerID)
			if err != nil {
				return nil, fmt.Errorf("check implementer: %w", err)
			}
			if !exists {
				return nil, apperr.Validation("implementer user does not exist")
			}
			entity.ImplementerID = &implementerID
		}
		changed = append(changed, "implementer_id")
	}

	if patch.CreatedAt != nil {
		if actor.Role != permission.RoleAdmin {
			return nil, apperr.Unauthorized("only admins may backdate a request")
		}
		entity.CreatedAt = *patch.CreatedAt
		changed = append(changed, "created_at")
	}

	return changed, nil
}

func (s *requestService) ChangeStatus(ctx context.Context, actor permission.Actor, id string, req ChangeStatusDTO) (*RequestResponse, error) {
	if !permission.CanReview(actor) {
		return nil, apperr.Unauthorized("only reviewers may change request status")
	}

	to := workflow.Status(req.ToStatus)
	if !workflow.IsValid(to) {
		return nil, apperr.Validation("unknown status %q", req.ToStatus)
	}
	if strings.TrimSpace(req.Reason) == "" {
		return nil, apperr.Validation("reason is required")
	}

	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		entity, loadErr := s.requests.GetForUpdate(txCtx, id)
		if loadErr != nil {
			return notFoundOr(loadErr, "request %s not found", id)
		}

		// Validated against the freshly locked row: a concurrent writer that
		// lost the race fails here instead of overwriting the winner.
		if !workflow.IsTransitionAllowed(entity.Status, to) {
			return apperr.InvalidTransition("cannot move request from %s to %s", entity.Status, to)
		}

		from := model.StatusSnapshotOf(entity)

		if to == workflow.StatusSuspended {
			if req.SuspendUntil == nil && strings.TrimSpace(req.SuspendCondition) == "" {
				return apperr.Validation("suspending requires suspend_until or suspend_condition")
			}
		}

		if req.ImplementerID != "" {
			implementerID, parseErr := uuid.Parse(req.ImplementerID)
			if parseErr != nil {
				return apperr.Validation("invalid implementer id")
			}
			exists, checkErr := s.users.ExistsByID(txCtx, implementerID)
			if checkErr != nil {
				return fmt.Errorf("check implementer: %w", checkErr)
			}
			if !exists {
				return apperr.Validation("implementer user does not exist")
			}
			entity.ImplementerID = &implementerID
		}
		if to == workflow.StatusAccepted && entity.ImplementerID == nil {
			return apperr.Validation("an implementer is required when accepting a request")
		}

		actorID := actor.ID
		entity.Status = to
		entity.ReviewerID = &actorID
		entity.DecisionReason = strings.TrimSpace(req.Reason)
		if to == workflow.StatusSuspended {
			entity.SuspendUntil = req.SuspendUntil
			entity.SuspendCondition = strings.TrimSpace(req.SuspendCondition)
		} else {
			// Suspend metadata lives only while the request is Suspended.
			entity.SuspendUntil = nil
			entity.SuspendCondition = ""
		}
		entity.UpdatedAt = time.Now()

		if saveErr := s.requests.Save(txCtx, entity); saveErr != nil {
			return fmt.Errorf("save request: %w", saveErr)
		}

		entry := &model.AuditLog{
			RequestID:  entity.ID,
			ActorID:    &actorID,
			ActionType: model.ActionStatusChange,
			FromValue:  model.MarshalSnapshot(from),
			ToValue:    model.MarshalSnapshot(model.StatusSnapshotOf(entity)),
		}
		return s.audits.Record(txCtx, entry)
	})
	if err != nil {
		return nil, err
	}

	return s.reload(ctx, id)
}

func (s *requestService) Resubmit(ctx context.Context, actor permission.Actor, id string, req ResubmitDTO) (*RequestResponse, error) {
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		entity, loadErr := s.requests.GetForUpdate(txCtx, id)
		if loadErr != nil {
			return notFoundOr(loadErr, "request %s not found", id)
		}

		allowed, reviewerOnly := workflow.CanResubmitFrom(entity.Status)
		if !allowed {
			return apperr.InvalidTransition("cannot resubmit a request in status %s", entity.Status)
		}
		if reviewerOnly {
			if !actor.Role.ReviewerLike() {
				return apperr.Unauthorized("only reviewers may resubmit from %s", entity.Status)
			}
		} else if actor.ID != entity.RequesterID {
			return apperr.Unauthorized("only the original requester may resubmit")
		}

		from := model.StatusSnapshotOf(entity)
		entity.Status = workflow.StatusSubmitted
		entity.SuspendUntil = nil
		entity.SuspendCondition = ""
		entity.UpdatedAt = time.Now()

		if saveErr := s.requests.Save(txCtx, entity); saveErr != nil {
			return fmt.Errorf("save request: %w", saveErr)
		}

		note := strings.TrimSpace(req.Note)
		if note == "" {
			note = DefaultResubmitNote
		}

		actorID := actor.ID
		entry := &model.AuditLog{
			RequestID:  entity.ID,
			ActorID:    &actorID,
			ActionType: model.ActionStatusChange,
			FromValue:  model.MarshalSnapshot(from),
			ToValue:    model.MarshalSnapshot(model.StatusSnapshotOf(entity)),
			Note:       note,
		}
		return s.audits.Record(txCtx, entry)
	})
	if err != nil {
		return nil, err
	}

	return s.reload(ctx, id)
}

func (s *requestService) Delete(ctx context.Context, actor permission.Actor, id string) error {
	if !permission.CanDeleteRequest(actor) {
		return apperr.Unauthorized("only admins may delete requests")
	}

	var payloads []string
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		entity, loadErr := s.requests.GetForUpdate(txCtx, id)
		if loadErr != nil {
			return notFoundOr(loadErr, "request %s not found", id)
		}

		// Tombstone first: the only record surviving the cascade.
		tombstone := &model.DeletionLog{
			RequestID:  entity.ID,
			Title:      entity.Title,
			LastStatus: entity.Status,
			ActorID:    actor.ID,
		}
		if recErr := s.requests.RecordDeletion(txCtx, tombstone); recErr != nil {
			return fmt.Errorf("record deletion: %w", recErr)
		}

		attachments, listErr := s.attachments.ListByRequest(txCtx, id)
		if listErr != nil {
			return fmt.Errorf("list attachments: %w", listErr)
		}
		for _, a := range attachments {
			payloads = append(payloads, a.StoredPath)
		}

		if delErr := s.comments.DeleteByRequest(txCtx, id); delErr != nil {
			return fmt.Errorf("delete comments: %w", delErr)
		}
		if delErr := s.attachments.DeleteByRequest(txCtx, id); delErr != nil {
			return fmt.Errorf("delete attachments: %w", delErr)
		}
		if delErr := s.audits.CascadeDelete(txCtx, id); delErr != nil {
			return fmt.Errorf("delete audit rows: %w", delErr)
		}
		return s.requests.Delete(txCtx, id)
	})
	if err != nil {
		return err
	}

	// Payload removal happens after commit; a leftover file is harmless while
	// a dangling row would not be.
	for _, locator := range payloads {
		if rmErr := s.store.Remove(locator); rmErr != nil {
			logrus.WithError(rmErr).WithField("locator", locator).Warn("failed to remove attachment payload")
		}
	}
	return nil
}

// --- Helpers ---

func (s *requestService) reload(ctx context.Context, id string) (*RequestResponse, error) {
	entity, err := s.requests.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("reload request: %w", err)
	}
	return toRequestResponse(entity), nil
}

func subjectOf(entity *model.Request) permission.Subject {
	return permission.Subject{RequesterID: entity.RequesterID, Status: entity.Status}
}

func notFoundOr(err error, format string, args ...interface{}) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound(format, args...)
	}
	return err
}

// normalizeList trims, drops empties, deduplicates preserving order, and
// enforces the per-field cap.
func normalizeList(values []string, max int, field string) (model.StringList, error) {
	seen := make(map[string]bool, len(values))
	out := make(model.StringList, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	if len(out) > max {
		return nil, apperr.Validation("%s may hold at most %d entries", field, max)
	}
	return out, nil
}

func toRequestResponse(entity *model.Request) *RequestResponse {
	resp := &RequestResponse{
		ID:                 entity.ID,
		Title:              entity.Title,
		Description:        entity.Description,
		Why:                entity.Why,
		AcceptanceCriteria: entity.AcceptanceCriteria,
		Category:           entity.Category,
		Priority:           entity.Priority,
		Domain:             entity.Domain,
		Tags:               entity.Tags,
		Links:              entity.Links,
		ImpactScope:        entity.ImpactScope,
		DeliveryMode:       entity.DeliveryMode,
		ContactPerson:      entity.ContactPerson,
		Status:             string(entity.Status),
		RequesterID:        entity.RequesterID.String(),
		DecisionReason:     entity.DecisionReason,
		SuspendCondition:   entity.SuspendCondition,
		CreatedAt:          entity.CreatedAt.Format(time.RFC3339),
		UpdatedAt:          entity.UpdatedAt.Format(time.RFC3339),
	}

	if entity.Requester != nil {
		resp.RequesterName = entity.Requester.Username
	}
	if entity.ReviewerID != nil {
		v := entity.ReviewerID.String()
		resp.ReviewerID = &v
	}
	if entity.Reviewer != nil {
		resp.ReviewerName = entity.Reviewer.Username
	}
	if entity.ImplementerID != nil {
		v := entity.ImplementerID.String()
		resp.ImplementerID = &v
	}
	if entity.Implementer != nil {
		resp.ImplementerName = entity.Implementer.Username
	}
	if entity.SuspendUntil != nil {
		v := entity.SuspendUntil.Format(time.RFC3339)
		resp.SuspendUntil = &v
	}

	return resp
}
