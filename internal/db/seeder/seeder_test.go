package seeder

import (
	"context"
	"testing"

	"todoboard/internal/app/menu"

	"go.uber.org/zap"
)

type fakeMenu struct {
	menu.Service
	items []menu.Item
	added []string
}

func (f *fakeMenu) Load(ctx context.Context, userID string) ([]menu.Item, error) {
	return f.items, nil
}

func (f *fakeMenu) Add(ctx context.Context, userID, name string) (menu.Item, error) {
	f.added = append(f.added, name)
	item := menu.Item{ID: uint64(len(f.added)), ItemName: name, UserID: userID}
	f.items = append(f.items, item)
	return item, nil
}

func TestSeedCreatesListsOnce(t *testing.T) {
	m := &fakeMenu{}
	s := NewSeeder(m, "dev-user", zap.NewNop())

	for i := 0; i < 2; i++ {
		if err := s.Seed(context.Background()); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
	if len(m.added) != len(defaultLists) {
		t.Fatalf("expected %d lists, got %v", len(defaultLists), m.added)
	}
}

func TestSeedWithoutUserIsNoop(t *testing.T) {
	m := &fakeMenu{}
	if err := NewSeeder(m, "", zap.NewNop()).Seed(context.Background()); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if len(m.added) != 0 {
		t.Fatalf("expected no lists, got %v", m.added)
	}
}
