package permission

import (
	"reqtrack/internal/workflow"

	"github.com/google/uuid"
)

// Role is the closed set of user roles. Capabilities hang off the type so
// call sites never compare role strings directly.
type Role string

const (
	RoleRequester Role = "requester"
	RoleReviewer  Role = "reviewer"
	RoleAdmin     Role = "admin"
)

// Valid reports whether r is one of the three known roles.
func (r Role) Valid() bool {
	return r == RoleRequester || r == RoleReviewer || r == RoleAdmin
}

// ReviewerLike reports whether r carries review/edit/status-change capability
// beyond a plain requester.
func (r Role) ReviewerLike() bool {
	return r == RoleReviewer || r == RoleAdmin
}

// Actor is the already-authenticated caller of a lifecycle operation.
type Actor struct {
	ID   uuid.UUID
	Role Role
}

// Subject is the slice of a request that permission decisions depend on.
type Subject struct {
	RequesterID uuid.UUID
	Status      workflow.Status
}

// CanViewRequest reports whether the actor may read a request. Every request
// is globally visible to authenticated users today; this stays an explicit
// per-(actor, subject) check so visibility scoping can land without touching
// call sites.
func CanViewRequest(actor Actor, subject Subject) bool {
	_ = subject
	return actor.Role.Valid()
}

// CanEditRequest reports whether the actor may patch request fields.
// Reviewer-like actors always may; the owner only while the request is still
// Submitted or NeedInfo.
func CanEditRequest(actor Actor, subject Subject) bool {
	if actor.Role.ReviewerLike() {
		return true
	}
	if actor.ID != subject.RequesterID {
		return false
	}
	return subject.Status == workflow.StatusSubmitted || subject.Status == workflow.StatusNeedInfo
}

// CanReview reports whether the actor may drive status transitions.
func CanReview(actor Actor) bool {
	return actor.Role.ReviewerLike()
}

// CanDeleteRequest reports whether the actor may hard-delete a request.
func CanDeleteRequest(actor Actor) bool {
	return actor.Role == RoleAdmin
}

// CanDeleteComment reports whether the actor may remove a comment.
func CanDeleteComment(actor Actor, authorID uuid.UUID) bool {
	return actor.Role == RoleAdmin || actor.ID == authorID
}

// CanDeleteBoardMessage reports whether the actor may remove a board message.
func CanDeleteBoardMessage(actor Actor, authorID uuid.UUID) bool {
	return actor.Role == RoleAdmin || actor.ID == authorID
}

// CanPinBoardMessage reports whether the actor may pin or unpin a message.
func CanPinBoardMessage(actor Actor) bool {
	return actor.Role == RoleAdmin
}
