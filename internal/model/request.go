package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"reqtrack/internal/workflow"

	"github.com/google/uuid"
)

// Priority levels a request may carry. Empty means unset.
const (
	PriorityP0 = "P0"
	PriorityP1 = "P1"
	PriorityP2 = "P2"
	PriorityP3 = "P3"
)

// MaxTags and MaxLinks bound the free-form list fields.
const (
	MaxTags  = 20
	MaxLinks = 20
)

// ValidPriority reports whether p is empty or one of P0..P3.
func ValidPriority(p string) bool {
	switch p {
	case "", PriorityP0, PriorityP1, PriorityP2, PriorityP3:
		return true
	}
	return false
}

// StringList is a deduplicated string slice persisted as jsonb.
type StringList []string

// Value implements driver.Valuer for jsonb storage.
func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		l = StringList{}
	}
	return json.Marshal(l)
}

// Scan implements sql.Scanner for jsonb storage.
func (l *StringList) Scan(src interface{}) error {
	if src == nil {
		*l = StringList{}
		return nil
	}
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	default:
		return fmt.Errorf("unsupported StringList source type %T", src)
	}
}

// Request is the central tracked entity. Its ID is a date-stamped sequential
// string such as "20250102_001", allocated by the repository.
type Request struct {
	ID string `gorm:"type:varchar(16);primaryKey" json:"id"`

	// Content fields — free-form, only Title is always required.
	Title              string     `gorm:"type:varchar(256);not null" json:"title"`
	Description        string     `gorm:"type:text" json:"description"`
	Why                string     `gorm:"type:text" json:"why"`
	AcceptanceCriteria string     `gorm:"type:text" json:"acceptance_criteria"`
	Category           string     `gorm:"type:varchar(64);index" json:"category"`
	Priority           string     `gorm:"type:varchar(4);index" json:"priority"` // P0..P3 or empty
	Domain             string     `gorm:"type:varchar(64)" json:"domain"`
	Tags               StringList `gorm:"type:jsonb" json:"tags"`
	Links              StringList `gorm:"type:jsonb" json:"links"`
	ImpactScope        string     `gorm:"type:text" json:"impact_scope"`
	DeliveryMode       string     `gorm:"type:varchar(64)" json:"delivery_mode"`
	ContactPerson      string     `gorm:"type:varchar(128)" json:"contact_person"`

	// Workflow fields.
	Status           workflow.Status `gorm:"type:varchar(20);not null;index" json:"status"`
	RequesterID      uuid.UUID       `gorm:"type:uuid;not null;index" json:"requester_id"`
	Requester        *User           `gorm:"foreignKey:RequesterID" json:"requester,omitempty"`
	ReviewerID       *uuid.UUID      `gorm:"type:uuid" json:"reviewer_id"`
	Reviewer         *User           `gorm:"foreignKey:ReviewerID" json:"reviewer,omitempty"`
	ImplementerID    *uuid.UUID      `gorm:"type:uuid" json:"implementer_id"`
	Implementer      *User           `gorm:"foreignKey:ImplementerID" json:"implementer,omitempty"`
	DecisionReason   string          `gorm:"type:text" json:"decision_reason"`
	SuspendUntil     *time.Time      `json:"suspend_until"`
	SuspendCondition string          `gorm:"type:text" json:"suspend_condition"`

	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Comments    []Comment    `gorm:"foreignKey:RequestID" json:"comments,omitempty"`
	Attachments []Attachment `gorm:"foreignKey:RequestID" json:"attachments,omitempty"`
}
