package menu

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"todoboard/internal/app/board"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

var (
	ErrItemNotFound  = errors.New("menu item not found")
	ErrDuplicateName = errors.New("a list with this name already exists")
	ErrInvalidName   = errors.New("invalid list name")
)

var validate = validator.New()

type Service interface {
	// Load refreshes the user's list from the store.
	Load(ctx context.Context, userID string) ([]Item, error)
	Items(ctx context.Context, userID string) ([]Item, error)
	Add(ctx context.Context, userID, name string) (Item, error)
	Delete(ctx context.Context, userID string, id uint64) error
	Reorder(ctx context.Context, userID string, src, dst int) ([]Item, error)
	BoardID(ctx context.Context, userID, slug string) (uint64, error)
}

type service struct {
	mu     sync.Mutex
	lists  map[string][]Item
	repo   Repository
	events board.Publisher

	defaultColumns []string
	logger         *zap.SugaredLogger
}

func NewService(repo Repository, events board.Publisher, defaultColumns []string, logger *zap.Logger) Service {
	return &service{
		lists:          make(map[string][]Item),
		repo:           repo,
		events:         events,
		defaultColumns: defaultColumns,
		logger:         logger.Sugar(),
	}
}

func (s *service) Load(ctx context.Context, userID string) ([]Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx, userID)
}

func (s *service) load(ctx context.Context, userID string) ([]Item, error) {
	items, err := s.repo.List(ctx, userID)
	if err != nil {
		s.logger.Errorw("Error loading menu", "user_id", userID, "error", err)
		return slices.Clone(s.lists[userID]), fmt.Errorf("load menu: %w", err)
	}
	s.lists[userID] = items
	return slices.Clone(items), nil
}

func (s *service) Items(ctx context.Context, userID string) ([]Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.items(ctx, userID)
}

func (s *service) items(ctx context.Context, userID string) ([]Item, error) {
	if items, ok := s.lists[userID]; ok {
		return slices.Clone(items), nil
	}
	return s.load(ctx, userID)
}

// Add appends a list at the end and seeds its board with the default columns.
// A failed seed is logged; the list itself still exists.
func (s *service) Add(ctx context.Context, userID, name string) (Item, error) {
	name = strings.TrimSpace(name)
	if err := validate.Var(name, "required,max=100"); err != nil {
		return Item{}, fmt.Errorf("%w: %v", ErrInvalidName, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.items(ctx, userID)
	if err != nil {
		return Item{}, err
	}
	slug := Slugify(name)
	for _, item := range items {
		if Slugify(item.ItemName) == slug {
			return Item{}, ErrDuplicateName
		}
	}

	item := Item{ItemName: name, UserID: userID, Order: len(items)}
	if err := s.repo.Insert(ctx, &item); err != nil {
		s.logger.Errorw("Error adding menu item", "user_id", userID, "name", name, "error", err)
		return Item{}, fmt.Errorf("insert menu item: %w", err)
	}
	s.lists[userID] = append(items, item)

	columns := make([]board.Column, 0, len(s.defaultColumns))
	for i, col := range s.defaultColumns {
		columns = append(columns, board.Column{Name: col, Order: i, MenuItemID: item.ID})
	}
	if err := s.repo.InsertColumns(ctx, columns); err != nil {
		s.logger.Warnw("Error seeding default columns", "menu_item_id", item.ID, "error", err)
	}

	s.publish(userID)
	return item, nil
}

// Delete removes a list and its board. Tasks go first, then columns, then the
// list row; the local list only drops the item once the row is gone.
func (s *service) Delete(ctx context.Context, userID string, id uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.items(ctx, userID)
	if err != nil {
		return err
	}
	idx := slices.IndexFunc(items, func(item Item) bool { return item.ID == id })
	if idx < 0 {
		return ErrItemNotFound
	}

	if err := s.repo.DeleteTasks(ctx, id); err != nil {
		s.logger.Errorw("Error deleting tasks of menu item", "menu_item_id", id, "error", err)
		return fmt.Errorf("delete tasks: %w", err)
	}
	if err := s.repo.DeleteColumns(ctx, id); err != nil {
		s.logger.Errorw("Error deleting columns of menu item", "menu_item_id", id, "error", err)
		return fmt.Errorf("delete columns: %w", err)
	}
	if err := s.repo.Delete(ctx, userID, id); err != nil {
		s.logger.Errorw("Error deleting menu item", "menu_item_id", id, "error", err)
		return fmt.Errorf("delete menu item: %w", err)
	}

	s.lists[userID] = slices.Delete(items, idx, idx+1)
	s.publish(userID)
	return nil
}

// Reorder moves the item at src to dst and rewrites every order in one
// transaction. On failure the previous order is kept.
func (s *service) Reorder(ctx context.Context, userID string, src, dst int) ([]Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.items(ctx, userID)
	if err != nil {
		return nil, err
	}
	if src < 0 || src >= len(items) || dst < 0 || dst >= len(items) {
		return items, board.ErrInvalidIndex
	}
	if src == dst {
		return items, nil
	}

	moved := items[src]
	reordered := slices.Insert(slices.Delete(slices.Clone(items), src, src+1), dst, moved)
	orders := make([]ItemOrder, len(reordered))
	for i := range reordered {
		reordered[i].Order = i
		orders[i] = ItemOrder{ID: reordered[i].ID, Order: i}
	}

	if err := s.repo.UpdateOrders(ctx, userID, orders); err != nil {
		s.logger.Errorw("Error updating menu order", "user_id", userID, "error", err)
		return items, fmt.Errorf("update menu order: %w", err)
	}

	s.lists[userID] = reordered
	s.publish(userID)
	return slices.Clone(reordered), nil
}

// BoardID resolves a board slug against the user's lists.
func (s *service) BoardID(ctx context.Context, userID, slug string) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.items(ctx, userID)
	if err != nil {
		return 0, err
	}
	slug = Slugify(slug)
	for _, item := range items {
		if Slugify(item.ItemName) == slug {
			return item.ID, nil
		}
	}
	return 0, board.ErrBoardNotFound
}

func (s *service) publish(userID string) {
	if s.events != nil {
		s.events.Publish("menu_updated", userID, nil)
	}
}
