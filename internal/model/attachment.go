package model

import (
	"time"

	"github.com/google/uuid"
)

// Attachment holds metadata for a binary payload stored outside the database.
// StoredPath is the locator into the payload store.
type Attachment struct {
	ID          uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	RequestID   string    `gorm:"type:varchar(16);not null;index" json:"request_id"`
	UploaderID  uuid.UUID `gorm:"type:uuid;not null" json:"uploader_id"`
	Uploader    *User     `gorm:"foreignKey:UploaderID" json:"uploader,omitempty"`
	FileName    string    `gorm:"type:varchar(255);not null" json:"file_name"`
	SizeBytes   int64     `gorm:"not null" json:"size_bytes"`
	ContentType string    `gorm:"type:varchar(128)" json:"content_type"`
	StoredPath  string    `gorm:"type:varchar(512);not null" json:"-"`
	CreatedAt   time.Time `json:"created_at"`
}
