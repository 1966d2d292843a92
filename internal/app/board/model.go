package board

import (
	"time"

	"todoboard/internal/app/attachment"
)

type Column struct {
	ID         uint64 `json:"id" gorm:"primaryKey"`
	Name       string `json:"name" gorm:"not null"`
	Order      int    `json:"order" gorm:"column:order;not null;default:0"`
	MenuItemID uint64 `json:"menu_item_id" gorm:"not null;index"`
}

func (Column) TableName() string {
	return "columns"
}

type Task struct {
	ID          uint64                  `json:"id" gorm:"primaryKey"`
	Title       string                  `json:"title" gorm:"not null"`
	Description string                  `json:"description" gorm:"not null;default:''"`
	DueDate     *time.Time              `json:"due_date" gorm:"type:date"`
	MenuItemID  uint64                  `json:"menu_item_id" gorm:"not null;index"`
	ColumnID    uint64                  `json:"column_id" gorm:"index"`
	Attachments []attachment.Attachment `json:"attachments" gorm:"foreignKey:TaskID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time               `json:"created_at"`
	UpdatedAt   time.Time               `json:"updated_at"`
}

func (Task) TableName() string {
	return "tasks"
}

func (t Task) clone() Task {
	out := t
	out.Attachments = append([]attachment.Attachment(nil), t.Attachments...)
	return out
}

type ColumnOrder struct {
	ID    uint64
	Order int
}

// TaskInput carries the editable task fields. Files are uploaded before the
// task row is written.
type TaskInput struct {
	Title       string     `validate:"required,max=200"`
	Description string     `validate:"max=5000"`
	DueDate     *time.Time `validate:"-"`
	Files       []attachment.File
}

type TaskView struct {
	Task
	// ImageURL is the comma-joined attachment URL list; "" when there are none.
	ImageURL string `json:"image_url"`
}

type ColumnView struct {
	Column
	Tasks []TaskView `json:"tasks"`
}

type Snapshot struct {
	BoardID uint64       `json:"board_id"`
	State   string       `json:"state"`
	Columns []ColumnView `json:"columns"`
	// Unassigned holds tasks whose column no longer exists on the board.
	Unassigned []TaskView `json:"unassigned,omitempty"`
}

type BoardResponse struct {
	Snapshot
	Synced bool `json:"synced"`
}

type CreateColumnRequest struct {
	Name string `json:"name" binding:"required"`
}

type RenameColumnRequest struct {
	Name string `json:"name" binding:"required"`
}

type ReorderColumnsRequest struct {
	SourceIndex      int `json:"source_index"`
	DestinationIndex int `json:"destination_index"`
}

type MoveTaskRequest struct {
	SourceColumnID      uint64 `json:"source_column_id" binding:"required"`
	SourceIndex         int    `json:"source_index"`
	DestinationColumnID uint64 `json:"destination_column_id" binding:"required"`
	DestinationIndex    int    `json:"destination_index"`
}

type TaskForm struct {
	Title       string `form:"title" json:"title" binding:"required"`
	Description string `form:"description" json:"description"`
	DueDate     string `form:"due_date" json:"due_date"`
	Column      string `form:"column" json:"column"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
