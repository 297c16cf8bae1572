package model

import (
	"time"

	"github.com/google/uuid"
)

// Comment is a child of Request, authored by any viewer. Deletion is limited
// to the author or an admin.
type Comment struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	RequestID string    `gorm:"type:varchar(16);not null;index" json:"request_id"`
	AuthorID  uuid.UUID `gorm:"type:uuid;not null;index" json:"author_id"`
	Author    *User     `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	CreatedAt time.Time `json:"created_at"`
}
