package attachment

import (
	"io"
	"time"
)

// Attachment is one image stored in the blob store and owned by a task.
type Attachment struct {
	ID          uint64    `json:"id" gorm:"primaryKey"`
	TaskID      uint64    `json:"task_id" gorm:"not null;index"`
	FileName    string    `json:"file_name" gorm:"not null"`
	FileURL     string    `json:"file_url" gorm:"not null"`
	FileSize    int64     `json:"file_size" gorm:"not null"`
	ContentType string    `json:"content_type" gorm:"type:varchar(100);not null"`
	ObjectName  string    `json:"object_name" gorm:"type:varchar(500);not null"`
	CreatedAt   time.Time `json:"created_at"`
}

func (Attachment) TableName() string {
	return "task_attachments"
}

// File is an incoming upload. Open is called once, right before the upload.
type File struct {
	Name        string
	ContentType string
	Size        int64
	Open        func() (io.ReadCloser, error)
}
