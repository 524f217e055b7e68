package models

import (
	"time"

	"github.com/google/uuid"
)

// Document is an uploaded file (a CV) attached to a pipeline run.
type Document struct {
	ID               uuid.UUID  `gorm:"type:uuid;primary_key" json:"id"`
	RunID            *uuid.UUID `gorm:"type:uuid;index" json:"run_id,omitempty"`
	Filename         string     `gorm:"type:text" json:"filename"`
	OriginalFileName string     `gorm:"type:text" json:"original_filename"`
	FileType         string     `gorm:"type:text" json:"file_type"`
	FilePath         string     `gorm:"type:text" json:"file_path"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

func (d *Document) TableName() string {
	return "documents"
}
