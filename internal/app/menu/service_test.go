package menu

import (
	"context"
	"errors"
	"reflect"
	"sort"
	"testing"

	"todoboard/internal/app/board"

	"go.uber.org/zap"
)

var errRemote = errors.New("remote unavailable")

type fakeRepository struct {
	items   []Item
	columns []board.Column
	calls   []string
	fail    map[string]error
	nextID  uint64
}

func newFakeRepository(items ...Item) *fakeRepository {
	return &fakeRepository{items: items, fail: map[string]error{}, nextID: 100}
}

func (f *fakeRepository) record(call string) error {
	f.calls = append(f.calls, call)
	return f.fail[call]
}

func (f *fakeRepository) List(ctx context.Context, userID string) ([]Item, error) {
	if err := f.record("List"); err != nil {
		return nil, err
	}
	var out []Item
	for _, item := range f.items {
		if item.UserID == userID {
			out = append(out, item)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out, nil
}

func (f *fakeRepository) Insert(ctx context.Context, item *Item) error {
	if err := f.record("Insert"); err != nil {
		return err
	}
	f.nextID++
	item.ID = f.nextID
	f.items = append(f.items, *item)
	return nil
}

func (f *fakeRepository) InsertColumns(ctx context.Context, columns []board.Column) error {
	if err := f.record("InsertColumns"); err != nil {
		return err
	}
	f.columns = append(f.columns, columns...)
	return nil
}

func (f *fakeRepository) UpdateOrders(ctx context.Context, userID string, orders []ItemOrder) error {
	if err := f.record("UpdateOrders"); err != nil {
		return err
	}
	for _, o := range orders {
		for i := range f.items {
			if f.items[i].ID == o.ID {
				f.items[i].Order = o.Order
			}
		}
	}
	return nil
}

func (f *fakeRepository) DeleteTasks(ctx context.Context, itemID uint64) error {
	return f.record("DeleteTasks")
}

func (f *fakeRepository) DeleteColumns(ctx context.Context, itemID uint64) error {
	return f.record("DeleteColumns")
}

func (f *fakeRepository) Delete(ctx context.Context, userID string, id uint64) error {
	if err := f.record("Delete"); err != nil {
		return err
	}
	for i := range f.items {
		if f.items[i].ID == id {
			f.items = append(f.items[:i], f.items[i+1:]...)
			return nil
		}
	}
	return ErrItemNotFound
}

func fixtureItems() []Item {
	return []Item{
		{ID: 1, ItemName: "Work", UserID: "u1", Order: 0},
		{ID: 2, ItemName: "Home Chores", UserID: "u1", Order: 1},
		{ID: 3, ItemName: "Groceries", UserID: "u1", Order: 2},
		{ID: 4, ItemName: "Other", UserID: "u2", Order: 0},
	}
}

func names(items []Item) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, item.ItemName)
	}
	return out
}

func newTestService(repo *fakeRepository) Service {
	return NewService(repo, nil, []string{"ToDo", "In Progress", "Done"}, zap.NewNop())
}

func TestLoadReturnsUserItemsInOrder(t *testing.T) {
	repo := newFakeRepository(fixtureItems()...)
	svc := newTestService(repo)

	items, err := svc.Load(context.Background(), "u1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if want := []string{"Work", "Home Chores", "Groceries"}; !reflect.DeepEqual(names(items), want) {
		t.Fatalf("unexpected items: %v", names(items))
	}
}

func TestAddAppendsAndSeedsDefaultColumns(t *testing.T) {
	repo := newFakeRepository(fixtureItems()...)
	svc := newTestService(repo)

	item, err := svc.Add(context.Background(), "u1", "  Side Project ")
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if item.Order != 3 || item.ItemName != "Side Project" || item.ID == 0 {
		t.Fatalf("unexpected item: %+v", item)
	}
	if len(repo.columns) != 3 {
		t.Fatalf("expected three seeded columns, got %+v", repo.columns)
	}
	for i, col := range repo.columns {
		if col.MenuItemID != item.ID || col.Order != i {
			t.Fatalf("unexpected seeded column: %+v", col)
		}
	}
	if repo.columns[0].Name != "ToDo" {
		t.Fatalf("expected ToDo first, got %s", repo.columns[0].Name)
	}

	items, _ := svc.Items(context.Background(), "u1")
	if len(items) != 4 {
		t.Fatalf("expected local list to grow, got %v", names(items))
	}
}

func TestAddRejectsDuplicateAndEmptyNames(t *testing.T) {
	repo := newFakeRepository(fixtureItems()...)
	svc := newTestService(repo)

	if _, err := svc.Add(context.Background(), "u1", "home   chores"); !errors.Is(err, ErrDuplicateName) {
		t.Fatalf("expected ErrDuplicateName, got %v", err)
	}
	if _, err := svc.Add(context.Background(), "u1", "   "); !errors.Is(err, ErrInvalidName) {
		t.Fatalf("expected ErrInvalidName, got %v", err)
	}
	if _, err := svc.Add(context.Background(), "u2", "Work"); err != nil {
		t.Fatalf("names are scoped per user: %v", err)
	}
}

func TestDeleteRemovesChildrenBeforeParent(t *testing.T) {
	repo := newFakeRepository(fixtureItems()...)
	svc := newTestService(repo)
	if _, err := svc.Load(context.Background(), "u1"); err != nil {
		t.Fatalf("load: %v", err)
	}
	repo.calls = nil

	if err := svc.Delete(context.Background(), "u1", 2); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if want := []string{"DeleteTasks", "DeleteColumns", "Delete"}; !reflect.DeepEqual(repo.calls, want) {
		t.Fatalf("unexpected call order: %v", repo.calls)
	}
	items, _ := svc.Items(context.Background(), "u1")
	if want := []string{"Work", "Groceries"}; !reflect.DeepEqual(names(items), want) {
		t.Fatalf("unexpected items: %v", names(items))
	}
}

func TestDeleteTaskFailureAbortsBeforeParent(t *testing.T) {
	repo := newFakeRepository(fixtureItems()...)
	repo.fail["DeleteTasks"] = errRemote
	svc := newTestService(repo)
	if _, err := svc.Load(context.Background(), "u1"); err != nil {
		t.Fatalf("load: %v", err)
	}
	repo.calls = nil

	if err := svc.Delete(context.Background(), "u1", 2); !errors.Is(err, errRemote) {
		t.Fatalf("expected remote error, got %v", err)
	}
	if want := []string{"DeleteTasks"}; !reflect.DeepEqual(repo.calls, want) {
		t.Fatalf("parent must not be touched, got %v", repo.calls)
	}
	items, _ := svc.Items(context.Background(), "u1")
	if len(items) != 3 {
		t.Fatalf("item should remain locally, got %v", names(items))
	}
}

func TestDeleteParentFailureKeepsLocalItem(t *testing.T) {
	repo := newFakeRepository(fixtureItems()...)
	repo.fail["Delete"] = errRemote
	svc := newTestService(repo)

	if err := svc.Delete(context.Background(), "u1", 1); !errors.Is(err, errRemote) {
		t.Fatalf("expected remote error, got %v", err)
	}
	items, _ := svc.Items(context.Background(), "u1")
	if len(items) != 3 {
		t.Fatalf("item should remain locally, got %v", names(items))
	}
	if err := svc.Delete(context.Background(), "u1", 99); !errors.Is(err, ErrItemNotFound) {
		t.Fatalf("expected ErrItemNotFound, got %v", err)
	}
}

func TestReorderRewritesOrders(t *testing.T) {
	repo := newFakeRepository(fixtureItems()...)
	svc := newTestService(repo)

	items, err := svc.Reorder(context.Background(), "u1", 0, 2)
	if err != nil {
		t.Fatalf("reorder: %v", err)
	}
	if want := []string{"Home Chores", "Groceries", "Work"}; !reflect.DeepEqual(names(items), want) {
		t.Fatalf("unexpected order: %v", names(items))
	}
	for i, item := range items {
		if item.Order != i {
			t.Fatalf("item %s has order %d at %d", item.ItemName, item.Order, i)
		}
	}

	stored, _ := repo.List(context.Background(), "u1")
	if want := []string{"Home Chores", "Groceries", "Work"}; !reflect.DeepEqual(names(stored), want) {
		t.Fatalf("remote order not rewritten: %v", names(stored))
	}
}

func TestReorderFailureKeepsPreviousOrder(t *testing.T) {
	repo := newFakeRepository(fixtureItems()...)
	repo.fail["UpdateOrders"] = errRemote
	svc := newTestService(repo)

	items, err := svc.Reorder(context.Background(), "u1", 2, 0)
	if !errors.Is(err, errRemote) {
		t.Fatalf("expected remote error, got %v", err)
	}
	if want := []string{"Work", "Home Chores", "Groceries"}; !reflect.DeepEqual(names(items), want) {
		t.Fatalf("unexpected order: %v", names(items))
	}
	if _, err := svc.Reorder(context.Background(), "u1", 0, 3); !errors.Is(err, board.ErrInvalidIndex) {
		t.Fatalf("expected ErrInvalidIndex, got %v", err)
	}
}

func TestBoardIDResolvesSlug(t *testing.T) {
	svc := newTestService(newFakeRepository(fixtureItems()...))

	id, err := svc.BoardID(context.Background(), "u1", "home-chores")
	if err != nil || id != 2 {
		t.Fatalf("unexpected board id: %d %v", id, err)
	}
	if _, err := svc.BoardID(context.Background(), "u2", "home-chores"); !errors.Is(err, board.ErrBoardNotFound) {
		t.Fatalf("boards are scoped per user, got %v", err)
	}
}
