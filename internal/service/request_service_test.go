package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"reqtrack/internal/model"
	"reqtrack/internal/permission"
	"reqtrack/internal/workflow"
	"reqtrack/pkg/apperr"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeList(t *testing.T) {
	t.Run("trims, drops empties and deduplicates preserving order", func(t *testing.T) {
		out, err := normalizeList([]string{" api ", "", "ux", "api", "  ", "infra"}, 20, "tags")
		require.NoError(t, err)
		assert.Equal(t, model.StringList{"api", "ux", "infra"}, out)
	})

	t.Run("nil input yields empty list", func(t *testing.T) {
		out, err := normalizeList(nil, 20, "tags")
		require.NoError(t, err)
		assert.Empty(t, out)
	})

	t.Run("rejects lists over the cap", func(t *testing.T) {
		values := make([]string, 21)
		for i := range values {
			values[i] = string(rune('a' + i))
		}
		_, err := normalizeList(values, 20, "links")
		require.Error(t, err)
		assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	})

	t.Run("duplicates do not count against the cap", func(t *testing.T) {
		values := make([]string, 0, 40)
		for i := 0; i < 20; i++ {
			v := string(rune('a' + i))
			values = append(values, v, v)
		}
		out, err := normalizeList(values, 20, "tags")
		require.NoError(t, err)
		assert.Len(t, out, 20)
	})
}

func TestToRequestResponse(t *testing.T) {
	requesterID := uuid.New()
	reviewerID := uuid.New()
	until := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	entity := &model.Request{
		ID:          "20250102_001",
		Title:       "Batch export",
		Status:      workflow.StatusSuspended,
		RequesterID: requesterID,
		Requester:   &model.User{Username: "alice"},
		ReviewerID:  &reviewerID,
		Reviewer:    &model.User{Username: "bob"},

		DecisionReason:   "waiting on upstream",
		SuspendUntil:     &until,
		SuspendCondition: "upstream ships v2",
		Tags:             model.StringList{"export"},
		CreatedAt:        time.Date(2025, 1, 2, 9, 0, 0, 0, time.UTC),
		UpdatedAt:        time.Date(2025, 1, 5, 9, 0, 0, 0, time.UTC),
	}

	resp := toRequestResponse(entity)

	assert.Equal(t, "20250102_001", resp.ID)
	assert.Equal(t, "Suspended", resp.Status)
	assert.Equal(t, requesterID.String(), resp.RequesterID)
	assert.Equal(t, "alice", resp.RequesterName)
	require.NotNil(t, resp.ReviewerID)
	assert.Equal(t, reviewerID.String(), *resp.ReviewerID)
	assert.Equal(t, "bob", resp.ReviewerName)
	assert.Nil(t, resp.ImplementerID)
	require.NotNil(t, resp.SuspendUntil)
	assert.Equal(t, "2025-03-01T00:00:00Z", *resp.SuspendUntil)
	assert.Equal(t, "2025-01-02T09:00:00Z", resp.CreatedAt)
}

// stubTxManager short-circuits the transaction so validation paths can be
// exercised without a database.
type stubTxManager struct{ err error }

func (s stubTxManager) RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	return s.err
}

func TestCreateIntakePolicy(t *testing.T) {
	actor := permission.Actor{ID: uuid.New(), Role: permission.RoleRequester}
	base := CreateRequestDTO{Title: "Batch export", Priority: "P2"}

	t.Run("strict policy requires description", func(t *testing.T) {
		svc := NewRequestService(nil, nil, nil, nil, nil, nil, nil, true)
		dto := base
		dto.Why = "exports take hours by hand"

		_, err := svc.Create(context.Background(), actor, dto)
		require.Error(t, err)
		assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
		assert.Contains(t, err.Error(), "description")
	})

	t.Run("strict policy requires why", func(t *testing.T) {
		svc := NewRequestService(nil, nil, nil, nil, nil, nil, nil, true)
		dto := base
		dto.Description = "nightly export of all open requests"

		_, err := svc.Create(context.Background(), actor, dto)
		require.Error(t, err)
		assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
		assert.Contains(t, err.Error(), "why")
	})

	t.Run("default policy admits empty description and why", func(t *testing.T) {
		txErr := errors.New("storage offline")
		svc := NewRequestService(stubTxManager{err: txErr}, nil, nil, nil, nil, nil, nil, false)

		_, err := svc.Create(context.Background(), actor, base)
		require.ErrorIs(t, err, txErr, "creation should reach storage, not fail validation")
		assert.Empty(t, apperr.KindOf(err))
	})

	t.Run("title stays required under either policy", func(t *testing.T) {
		svc := NewRequestService(nil, nil, nil, nil, nil, nil, nil, false)

		_, err := svc.Create(context.Background(), actor, CreateRequestDTO{Priority: "P2"})
		assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	})
}
