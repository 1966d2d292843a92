package board

import (
	"context"

	"todoboard/internal/app/attachment"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository is the relational half of the remote store for one board's
// columns, tasks and task attachments. Every write names the board it
// touches so caching layers can evict precisely.
type Repository interface {
	ListColumns(ctx context.Context, boardID uint64) ([]Column, error)
	ListTasks(ctx context.Context, boardID uint64) ([]Task, error)
	InsertColumn(ctx context.Context, col *Column) error
	UpdateColumn(ctx context.Context, boardID, id uint64, fields map[string]interface{}) error
	UpdateColumnOrders(ctx context.Context, boardID uint64, orders []ColumnOrder) error
	DeleteColumn(ctx context.Context, boardID, id uint64) error
	InsertTask(ctx context.Context, task *Task) error
	UpdateTask(ctx context.Context, boardID, id uint64, fields map[string]interface{}) error
	DeleteTask(ctx context.Context, boardID, id uint64) error
	AddAttachments(ctx context.Context, boardID, taskID uint64, atts []attachment.Attachment) error
	DeleteAttachment(ctx context.Context, boardID, id uint64) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func orderColumn() clause.OrderByColumn {
	return clause.OrderByColumn{Column: clause.Column{Name: "order"}}
}

func (r *repository) ListColumns(ctx context.Context, boardID uint64) ([]Column, error) {
	var columns []Column
	err := r.db.WithContext(ctx).
		Where("menu_item_id = ?", boardID).
		Order(orderColumn()).
		Order("id ASC").
		Find(&columns).Error
	return columns, err
}

func (r *repository) ListTasks(ctx context.Context, boardID uint64) ([]Task, error) {
	var tasks []Task
	err := r.db.WithContext(ctx).
		Preload("Attachments", func(db *gorm.DB) *gorm.DB {
			return db.Order("id ASC")
		}).
		Where("menu_item_id = ?", boardID).
		Order("id ASC").
		Find(&tasks).Error
	return tasks, err
}

func (r *repository) InsertColumn(ctx context.Context, col *Column) error {
	return r.db.WithContext(ctx).Create(col).Error
}

func (r *repository) UpdateColumn(ctx context.Context, boardID, id uint64, fields map[string]interface{}) error {
	res := r.db.WithContext(ctx).
		Model(&Column{}).
		Where("id = ? AND menu_item_id = ?", id, boardID).
		Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrColumnNotFound
	}
	return nil
}

// UpdateColumnOrders rewrites every order in one transaction; any failure
// leaves the stored ranking untouched.
func (r *repository) UpdateColumnOrders(ctx context.Context, boardID uint64, orders []ColumnOrder) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, o := range orders {
			res := tx.Model(&Column{}).
				Where("id = ? AND menu_item_id = ?", o.ID, boardID).
				Update("order", o.Order)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return ErrColumnNotFound
			}
		}
		return nil
	})
}

func (r *repository) DeleteColumn(ctx context.Context, boardID, id uint64) error {
	res := r.db.WithContext(ctx).
		Where("id = ? AND menu_item_id = ?", id, boardID).
		Delete(&Column{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrColumnNotFound
	}
	return nil
}

func (r *repository) InsertTask(ctx context.Context, task *Task) error {
	return r.db.WithContext(ctx).Create(task).Error
}

func (r *repository) UpdateTask(ctx context.Context, boardID, id uint64, fields map[string]interface{}) error {
	res := r.db.WithContext(ctx).
		Model(&Task{}).
		Where("id = ? AND menu_item_id = ?", id, boardID).
		Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrTaskNotFound
	}
	return nil
}

func (r *repository) DeleteTask(ctx context.Context, boardID, id uint64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ? AND menu_item_id = ?", id, boardID).Delete(&Task{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrTaskNotFound
		}
		return tx.Where("task_id = ?", id).Delete(&attachment.Attachment{}).Error
	})
}

func (r *repository) AddAttachments(ctx context.Context, boardID, taskID uint64, atts []attachment.Attachment) error {
	if len(atts) == 0 {
		return nil
	}
	for i := range atts {
		atts[i].TaskID = taskID
	}
	return r.db.WithContext(ctx).Create(&atts).Error
}

func (r *repository) DeleteAttachment(ctx context.Context, boardID, id uint64) error {
	res := r.db.WithContext(ctx).Delete(&attachment.Attachment{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrAttachmentNotFound
	}
	return nil
}
