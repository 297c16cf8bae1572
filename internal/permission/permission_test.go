package permission

import (
	"testing"

	"reqtrack/internal/workflow"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

var (
	ownerID    = uuid.New()
	strangerID = uuid.New()

	owner     = Actor{ID: ownerID, Role: RoleRequester}
	stranger  = Actor{ID: strangerID, Role: RoleRequester}
	reviewer  = Actor{ID: uuid.New(), Role: RoleReviewer}
	adminUser = Actor{ID: uuid.New(), Role: RoleAdmin}
)

func subjectIn(status workflow.Status) Subject {
	return Subject{RequesterID: ownerID, Status: status}
}

func TestReviewerLike(t *testing.T) {
	require.False(t, RoleRequester.ReviewerLike())
	require.True(t, RoleReviewer.ReviewerLike())
	require.True(t, RoleAdmin.ReviewerLike())
	require.False(t, Role("manager").ReviewerLike())
}

func TestCanViewRequestIsUnconditional(t *testing.T) {
	for _, actor := range []Actor{owner, stranger, reviewer, adminUser} {
		for _, status := range workflow.All {
			require.True(t, CanViewRequest(actor, subjectIn(status)))
		}
	}
	// Unauthenticated / unknown role never passes.
	require.False(t, CanViewRequest(Actor{}, subjectIn(workflow.StatusSubmitted)))
}

func TestRequesterEditWindow(t *testing.T) {
	editable := map[workflow.Status]bool{
		workflow.StatusSubmitted: true,
		workflow.StatusNeedInfo:  true,
	}

	for _, status := range workflow.All {
		subject := subjectIn(status)
		require.Equal(t, editable[status], CanEditRequest(owner, subject),
			"owner edit in %s", status)
		// Non-owner requesters never get edit rights.
		require.False(t, CanEditRequest(stranger, subject), "stranger edit in %s", status)
		// Reviewer-like actors keep edit rights in every state.
		require.True(t, CanEditRequest(reviewer, subject), "reviewer edit in %s", status)
		require.True(t, CanEditRequest(adminUser, subject), "admin edit in %s", status)
	}
}

func TestCanReview(t *testing.T) {
	require.False(t, CanReview(owner))
	require.False(t, CanReview(stranger))
	require.True(t, CanReview(reviewer))
	require.True(t, CanReview(adminUser))
}

func TestCanDeleteRequestIsAdminOnly(t *testing.T) {
	require.False(t, CanDeleteRequest(owner))
	require.False(t, CanDeleteRequest(reviewer))
	require.True(t, CanDeleteRequest(adminUser))
}

func TestCommentAndBoardDeletion(t *testing.T) {
	authorID := uuid.New()

	require.True(t, CanDeleteComment(Actor{ID: authorID, Role: RoleRequester}, authorID))
	require.True(t, CanDeleteComment(adminUser, authorID))
	require.False(t, CanDeleteComment(reviewer, authorID))

	require.True(t, CanDeleteBoardMessage(Actor{ID: authorID, Role: RoleRequester}, authorID))
	require.True(t, CanDeleteBoardMessage(adminUser, authorID))
	require.False(t, CanDeleteBoardMessage(stranger, authorID))

	require.True(t, CanPinBoardMessage(adminUser))
	require.False(t, CanPinBoardMessage(reviewer))
	require.False(t, CanPinBoardMessage(owner))
}

func TestPredicatesArePure(t *testing.T) {
	subject := subjectIn(workflow.StatusNeedInfo)

	first := CanViewRequest(reviewer, subject)
	second := CanViewRequest(reviewer, subject)
	require.Equal(t, first, second)

	require.Equal(t, CanReview(reviewer), CanReview(reviewer))
	require.Equal(t, CanEditRequest(owner, subject), CanEditRequest(owner, subject))
}
