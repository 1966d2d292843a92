package menu

import (
	"context"

	"todoboard/internal/app/attachment"
	"todoboard/internal/app/board"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository interface {
	List(ctx context.Context, userID string) ([]Item, error)
	Insert(ctx context.Context, item *Item) error
	InsertColumns(ctx context.Context, columns []board.Column) error
	UpdateOrders(ctx context.Context, userID string, orders []ItemOrder) error
	DeleteTasks(ctx context.Context, itemID uint64) error
	DeleteColumns(ctx context.Context, itemID uint64) error
	Delete(ctx context.Context, userID string, id uint64) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) List(ctx context.Context, userID string) ([]Item, error) {
	var items []Item
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "order"}}).
		Order("id ASC").
		Find(&items).Error
	return items, err
}

func (r *repository) Insert(ctx context.Context, item *Item) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *repository) InsertColumns(ctx context.Context, columns []board.Column) error {
	if len(columns) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&columns).Error
}

func (r *repository) UpdateOrders(ctx context.Context, userID string, orders []ItemOrder) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, o := range orders {
			res := tx.Model(&Item{}).
				Where("id = ? AND user_id = ?", o.ID, userID).
				Update("order", o.Order)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return ErrItemNotFound
			}
		}
		return nil
	})
}

func (r *repository) DeleteTasks(ctx context.Context, itemID uint64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		taskIDs := tx.Model(&board.Task{}).Select("id").Where("menu_item_id = ?", itemID)
		if err := tx.Where("task_id IN (?)", taskIDs).Delete(&attachment.Attachment{}).Error; err != nil {
			return err
		}
		return tx.Where("menu_item_id = ?", itemID).Delete(&board.Task{}).Error
	})
}

func (r *repository) DeleteColumns(ctx context.Context, itemID uint64) error {
	return r.db.WithContext(ctx).Where("menu_item_id = ?", itemID).Delete(&board.Column{}).Error
}

func (r *repository) Delete(ctx context.Context, userID string, id uint64) error {
	res := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&Item{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrItemNotFound
	}
	return nil
}
