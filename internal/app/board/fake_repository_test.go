package board

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"todoboard/internal/app/attachment"
)

var errRemote = errors.New("remote unavailable")

// fakeRepository keeps one board's rows in memory and records every call.
type fakeRepository struct {
	mu      sync.Mutex
	columns []Column
	tasks   []Task
	nextID  uint64
	calls   []string
	fail    map[string]error
	updates []map[string]interface{}
}

func newFakeRepository(columns []Column, tasks []Task) *fakeRepository {
	repo := &fakeRepository{
		columns: append([]Column(nil), columns...),
		fail:    map[string]error{},
		nextID:  1000,
	}
	for _, task := range tasks {
		repo.tasks = append(repo.tasks, task.clone())
	}
	return repo
}

func (f *fakeRepository) record(call string) error {
	f.calls = append(f.calls, call)
	return f.fail[call]
}

func (f *fakeRepository) id() uint64 {
	f.nextID++
	return f.nextID
}

func (f *fakeRepository) ListColumns(ctx context.Context, boardID uint64) ([]Column, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("ListColumns"); err != nil {
		return nil, err
	}
	var out []Column
	for _, col := range f.columns {
		if col.MenuItemID == boardID {
			out = append(out, col)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Order != out[j].Order {
			return out[i].Order < out[j].Order
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (f *fakeRepository) ListTasks(ctx context.Context, boardID uint64) ([]Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("ListTasks"); err != nil {
		return nil, err
	}
	var out []Task
	for _, task := range f.tasks {
		if task.MenuItemID == boardID {
			out = append(out, task.clone())
		}
	}
	return out, nil
}

func (f *fakeRepository) InsertColumn(ctx context.Context, col *Column) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("InsertColumn"); err != nil {
		return err
	}
	col.ID = f.id()
	f.columns = append(f.columns, *col)
	return nil
}

func (f *fakeRepository) UpdateColumn(ctx context.Context, boardID, id uint64, fields map[string]interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("UpdateColumn"); err != nil {
		return err
	}
	for i := range f.columns {
		if f.columns[i].ID == id {
			if name, ok := fields["name"].(string); ok {
				f.columns[i].Name = name
			}
			return nil
		}
	}
	return ErrColumnNotFound
}

func (f *fakeRepository) UpdateColumnOrders(ctx context.Context, boardID uint64, orders []ColumnOrder) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("UpdateColumnOrders"); err != nil {
		return err
	}
	for _, o := range orders {
		for i := range f.columns {
			if f.columns[i].ID == o.ID {
				f.columns[i].Order = o.Order
			}
		}
	}
	return nil
}

func (f *fakeRepository) DeleteColumn(ctx context.Context, boardID, id uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("DeleteColumn"); err != nil {
		return err
	}
	for i := range f.columns {
		if f.columns[i].ID == id {
			f.columns = append(f.columns[:i], f.columns[i+1:]...)
			return nil
		}
	}
	return ErrColumnNotFound
}

func (f *fakeRepository) InsertTask(ctx context.Context, task *Task) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("InsertTask"); err != nil {
		return err
	}
	task.ID = f.id()
	for i := range task.Attachments {
		task.Attachments[i].ID = f.id()
		task.Attachments[i].TaskID = task.ID
	}
	f.tasks = append(f.tasks, task.clone())
	return nil
}

func (f *fakeRepository) UpdateTask(ctx context.Context, boardID, id uint64, fields map[string]interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates = append(f.updates, fields)
	if err := f.record("UpdateTask"); err != nil {
		return err
	}
	for i := range f.tasks {
		if f.tasks[i].ID != id {
			continue
		}
		if v, ok := fields["column_id"].(uint64); ok {
			f.tasks[i].ColumnID = v
		}
		if v, ok := fields["title"].(string); ok {
			f.tasks[i].Title = v
		}
		return nil
	}
	return ErrTaskNotFound
}

func (f *fakeRepository) DeleteTask(ctx context.Context, boardID, id uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("DeleteTask"); err != nil {
		return err
	}
	for i := range f.tasks {
		if f.tasks[i].ID == id {
			f.tasks = append(f.tasks[:i], f.tasks[i+1:]...)
			return nil
		}
	}
	return ErrTaskNotFound
}

func (f *fakeRepository) AddAttachments(ctx context.Context, boardID, taskID uint64, atts []attachment.Attachment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("AddAttachments"); err != nil {
		return err
	}
	for i := range f.tasks {
		if f.tasks[i].ID != taskID {
			continue
		}
		for j := range atts {
			atts[j].ID = f.id()
			atts[j].TaskID = taskID
		}
		f.tasks[i].Attachments = append(f.tasks[i].Attachments, atts...)
		return nil
	}
	return ErrTaskNotFound
}

func (f *fakeRepository) DeleteAttachment(ctx context.Context, boardID, id uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("DeleteAttachment"); err != nil {
		return err
	}
	for i := range f.tasks {
		for j, att := range f.tasks[i].Attachments {
			if att.ID == id {
				f.tasks[i].Attachments = append(f.tasks[i].Attachments[:j], f.tasks[i].Attachments[j+1:]...)
				return nil
			}
		}
	}
	return ErrAttachmentNotFound
}

func (f *fakeRepository) count(call string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == call {
			n++
		}
	}
	return n
}

func (f *fakeRepository) reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = nil
	f.updates = nil
}

// fakeFiles stands in for the attachment service.
type fakeFiles struct {
	uploaded  []string
	removed   []string
	failNames map[string]bool
	removeErr error
}

func (f *fakeFiles) UploadAll(ctx context.Context, userID string, files []attachment.File) []attachment.Attachment {
	var out []attachment.Attachment
	for _, file := range files {
		if f.failNames[file.Name] {
			continue
		}
		object := userID + "/" + file.Name
		f.uploaded = append(f.uploaded, object)
		out = append(out, attachment.Attachment{
			FileName:   file.Name,
			FileURL:    "http://blobs/img/" + object,
			ObjectName: object,
		})
	}
	return out
}

func (f *fakeFiles) Remove(ctx context.Context, objectName string) error {
	if f.removeErr != nil {
		return f.removeErr
	}
	f.removed = append(f.removed, objectName)
	return nil
}

func (f *fakeFiles) RemoveAll(ctx context.Context, atts []attachment.Attachment) {
	for _, att := range atts {
		_ = f.Remove(ctx, att.ObjectName)
	}
}

type publishedEvent struct {
	event  string
	userID string
	data   interface{}
}

type fakePublisher struct {
	events []publishedEvent
}

func (f *fakePublisher) Publish(event, userID string, data interface{}) {
	f.events = append(f.events, publishedEvent{event: event, userID: userID, data: data})
}

func taskIDs(view ColumnView) string {
	ids := make([]uint64, 0, len(view.Tasks))
	for _, t := range view.Tasks {
		ids = append(ids, t.ID)
	}
	return fmt.Sprint(ids)
}
