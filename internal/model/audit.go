package model

import (
	"encoding/json"
	"time"

	"reqtrack/internal/workflow"

	"github.com/google/uuid"
)

// Audit action types. Comment deletion is recorded as another comment-type
// entry with a note, keeping the type cardinality fixed.
const (
	ActionCreate       = "create"
	ActionEdit         = "edit"
	ActionComment      = "comment"
	ActionStatusChange = "status_change"
)

// Snapshot is the closed set of audit from/to value shapes. The audit log
// captures workflow-relevant state, never arbitrary row diffs.
type Snapshot interface {
	auditSnapshot()
}

// StatusSnapshot captures the workflow-relevant state of a request at one
// side of a status change (or the initial state of a created request).
type StatusSnapshot struct {
	Status           workflow.Status `json:"status"`
	DecisionReason   string          `json:"decision_reason,omitempty"`
	ImplementerID    string          `json:"implementer_id,omitempty"`
	SuspendUntil     *time.Time      `json:"suspend_until,omitempty"`
	SuspendCondition string          `json:"suspend_condition,omitempty"`
}

func (StatusSnapshot) auditSnapshot() {}

// EditSnapshot names the fields touched by an edit. Values are deliberately
// not recorded; the log stays small and human-readable.
type EditSnapshot struct {
	Fields []string `json:"fields"`
}

func (EditSnapshot) auditSnapshot() {}

// MarshalSnapshot serializes a snapshot for jsonb storage. A nil snapshot
// yields the empty string.
func MarshalSnapshot(s Snapshot) string {
	if s == nil {
		return ""
	}
	raw, err := json.Marshal(s)
	if err != nil {
		return ""
	}
	return string(raw)
}

// StatusSnapshotOf captures a request's current workflow state.
func StatusSnapshotOf(r *Request) StatusSnapshot {
	snap := StatusSnapshot{
		Status:           r.Status,
		DecisionReason:   r.DecisionReason,
		SuspendUntil:     r.SuspendUntil,
		SuspendCondition: r.SuspendCondition,
	}
	if r.ImplementerID != nil {
		snap.ImplementerID = r.ImplementerID.String()
	}
	return snap
}

// AuditLog is the append-only system of record for what happened to a request
// and why. Rows are immutable once written and totally ordered by creation
// time, ties broken by insertion order.
type AuditLog struct {
	ID uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	// Seq breaks created_at ties in insertion order; entries written within
	// one transaction share a timestamp.
	Seq        int64      `gorm:"autoIncrement;uniqueIndex" json:"-"`
	RequestID  string     `gorm:"type:varchar(16);not null;index" json:"request_id"`
	ActorID    *uuid.UUID `gorm:"type:uuid;index" json:"actor_id"`
	Actor      *User      `gorm:"foreignKey:ActorID" json:"actor,omitempty"`
	ActionType string     `gorm:"type:varchar(20);not null;index" json:"action_type"`
	FromValue  string     `gorm:"type:jsonb" json:"from_value,omitempty"`
	ToValue    string     `gorm:"type:jsonb" json:"to_value,omitempty"`
	Note       string     `gorm:"type:text" json:"note,omitempty"`
	CreatedAt  time.Time  `gorm:"index" json:"created_at"`
}

// DeletionLog survives the cascade when an admin hard-deletes a request; it
// is the only durable record that the request ever existed.
type DeletionLog struct {
	ID         uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	RequestID  string          `gorm:"type:varchar(16);not null;index" json:"request_id"`
	Title      string          `gorm:"type:varchar(256);not null" json:"title"`
	LastStatus workflow.Status `gorm:"type:varchar(20);not null" json:"last_status"`
	ActorID    uuid.UUID       `gorm:"type:uuid;not null" json:"actor_id"`
	CreatedAt  time.Time       `json:"created_at"`
}
