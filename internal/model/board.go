package model

import (
	"time"

	"github.com/google/uuid"
)

// BoardMessage is a free-standing announcement. Deletion follows the comment
// rule (author or admin); pinning is admin-only.
type BoardMessage struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	AuthorID  uuid.UUID `gorm:"type:uuid;not null;index" json:"author_id"`
	Author    *User     `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	Pinned    bool      `gorm:"default:false;index" json:"pinned"`
	CreatedAt time.Time `json:"created_at"`
}
