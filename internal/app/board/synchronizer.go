package board

import (
	"context"
	"fmt"
	"sync"
	"time"

	"todoboard/internal/app/attachment"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

type State string

const (
	StateUnloaded   State = "unloaded"
	StateLoading    State = "loading"
	StateLoaded     State = "loaded"
	StateMutating   State = "mutating"
	StateLoadFailed State = "load_failed"
)

const (
	OpLoad             = "load"
	OpReorderColumns   = "reorder_columns"
	OpMoveTask         = "move_task"
	OpAddTask          = "add_task"
	OpEditTask         = "edit_task"
	OpDeleteTask       = "delete_task"
	OpDeleteAttachment = "delete_attachment"
	OpAddColumn        = "add_column"
	OpRenameColumn     = "rename_column"
	OpDeleteColumn     = "delete_column"
)

// Result is returned by every synchronizer operation.
//
// Applied reports whether local state changed. Err carries the first failure,
// already logged. Stale means local state may now disagree with the remote
// store and the caller should Reload.
type Result struct {
	Op      string
	Applied bool
	Err     error
	Stale   bool
}

func (r Result) OK() bool {
	return r.Err == nil
}

type Publisher interface {
	Publish(event, userID string, data interface{})
}

type BoardEvent struct {
	BoardID uint64 `json:"board_id"`
	Op      string `json:"op"`
}

var validate = validator.New()

// Synchronizer owns the in-memory board (ordered columns and tasks) for one
// menu item and keeps it in step with the remote store. All access goes
// through its mutex.
type Synchronizer struct {
	mu sync.Mutex

	boardID uint64
	userID  string
	state   State
	columns []Column
	tasks   []Task

	repo          Repository
	files         attachment.Service
	events        Publisher
	logger        *zap.SugaredLogger
	defaultColumn string
	now           func() time.Time
}

type Options struct {
	DefaultColumn string
	Now           func() time.Time
}

func NewSynchronizer(
	boardID uint64,
	userID string,
	repo Repository,
	files attachment.Service,
	events Publisher,
	logger *zap.Logger,
	opts Options,
) *Synchronizer {
	if opts.DefaultColumn == "" {
		opts.DefaultColumn = "ToDo"
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Synchronizer{
		boardID:       boardID,
		userID:        userID,
		state:         StateUnloaded,
		repo:          repo,
		files:         files,
		events:        events,
		logger:        logger.Sugar().With("board_id", boardID, "user_id", userID),
		defaultColumn: opts.DefaultColumn,
		now:           opts.Now,
	}
}

func (s *Synchronizer) BoardID() uint64 {
	return s.boardID
}

func (s *Synchronizer) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Load fetches columns (ascending by order) and tasks. On failure the board
// is left empty or partial in StateLoadFailed; nothing is retried.
func (s *Synchronizer) Load(ctx context.Context) Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx)
}

// Reload is Load under the name callers use for reconciliation.
func (s *Synchronizer) Reload(ctx context.Context) Result {
	return s.Load(ctx)
}

func (s *Synchronizer) load(ctx context.Context) Result {
	s.state = StateLoading

	columns, err := s.repo.ListColumns(ctx, s.boardID)
	if err != nil {
		s.logger.Errorw("Error loading columns", "error", err)
		s.columns, s.tasks = nil, nil
		s.state = StateLoadFailed
		return Result{Op: OpLoad, Err: fmt.Errorf("load columns: %w", err)}
	}
	s.columns = columns

	tasks, err := s.repo.ListTasks(ctx, s.boardID)
	if err != nil {
		s.logger.Errorw("Error loading tasks", "error", err)
		s.tasks = nil
		s.state = StateLoadFailed
		return Result{Op: OpLoad, Applied: true, Err: fmt.Errorf("load tasks: %w", err)}
	}
	s.tasks = tasks
	s.state = StateLoaded

	if orphans := s.orphanCount(); orphans > 0 {
		s.logger.Warnw("Board has tasks referencing missing columns", "orphaned_tasks", orphans)
	}
	return Result{Op: OpLoad, Applied: true}
}

func (s *Synchronizer) begin(op string) error {
	if s.state != StateLoaded {
		s.logger.Warnw("Rejected mutation on board that is not loaded", "op", op, "state", s.state)
		return ErrNotLoaded
	}
	s.state = StateMutating
	return nil
}

func (s *Synchronizer) end(res *Result) {
	s.state = StateLoaded
	if res.Applied && s.events != nil {
		s.events.Publish("board_updated", s.userID, BoardEvent{BoardID: s.boardID, Op: res.Op})
	}
}

// ReorderColumns moves the column at src to dst and rewrites every column's
// order to its new position in a single transactional write. If that write
// fails the local order is restored, so local and remote still agree.
func (s *Synchronizer) ReorderColumns(ctx context.Context, src, dst int) (res Result) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res.Op = OpReorderColumns
	if err := s.begin(res.Op); err != nil {
		res.Err = err
		return res
	}
	defer s.end(&res)

	reordered, err := moveItem(s.columns, src, dst)
	if err != nil {
		res.Err = err
		return res
	}
	if src == dst {
		return res
	}

	previous := s.columns
	orders := make([]ColumnOrder, len(reordered))
	for i := range reordered {
		reordered[i].Order = i
		orders[i] = ColumnOrder{ID: reordered[i].ID, Order: i}
	}
	s.columns = reordered

	if err := s.repo.UpdateColumnOrders(ctx, s.boardID, orders); err != nil {
		s.logger.Errorw("Error updating column order, restoring previous order", "error", err)
		s.columns = previous
		res.Err = fmt.Errorf("update column order: %w", err)
		return res
	}

	res.Applied = true
	return res
}

// MoveTask moves the srcIndex-th task of srcColumnID to position dstIndex of
// dstColumnID. Only the task's column_id is persisted; position within a
// column lives in memory only.
func (s *Synchronizer) MoveTask(ctx context.Context, srcColumnID uint64, srcIndex int, dstColumnID uint64, dstIndex int) (res Result) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res.Op = OpMoveTask
	if srcColumnID == dstColumnID && srcIndex == dstIndex {
		return res
	}
	if err := s.begin(res.Op); err != nil {
		res.Err = err
		return res
	}
	defer s.end(&res)

	if s.columnIndex(dstColumnID) < 0 {
		res.Err = ErrColumnNotFound
		return res
	}

	tasks, moved, err := moveTask(s.tasks, srcColumnID, srcIndex, dstColumnID, dstIndex)
	if err != nil {
		res.Err = err
		return res
	}
	s.tasks = tasks
	res.Applied = true

	if srcColumnID == dstColumnID {
		return res
	}

	if err := s.repo.UpdateTask(ctx, s.boardID, moved.ID, map[string]interface{}{"column_id": dstColumnID}); err != nil {
		s.logger.Errorw("Error updating task", "task_id", moved.ID, "error", err)
		res.Err = fmt.Errorf("update task column: %w", err)
		res.Stale = true
	}
	return res
}

// AddTask creates a task in the column named columnName, or in the default
// column ("ToDo", exact match) when columnName is empty.
func (s *Synchronizer) AddTask(ctx context.Context, in TaskInput, columnName string) (res Result) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res.Op = OpAddTask
	if err := validate.Struct(in); err != nil {
		res.Err = fmt.Errorf("%w: %v", ErrInvalidInput, err)
		return res
	}
	if err := s.begin(res.Op); err != nil {
		res.Err = err
		return res
	}
	defer s.end(&res)

	if columnName == "" {
		columnName = s.defaultColumn
	}
	column := s.columnByName(columnName)
	if column == nil {
		res.Err = fmt.Errorf("%w: %q", ErrColumnNotFound, columnName)
		return res
	}

	dueDate := in.DueDate
	if dueDate == nil {
		tomorrow := truncateDay(s.now().UTC().Add(24 * time.Hour))
		dueDate = &tomorrow
	}

	task := Task{
		Title:       in.Title,
		Description: in.Description,
		DueDate:     dueDate,
		MenuItemID:  s.boardID,
		ColumnID:    column.ID,
		Attachments: s.upload(ctx, in.Files),
	}

	if err := s.repo.InsertTask(ctx, &task); err != nil {
		s.logger.Errorw("Error adding task", "error", err)
		s.discard(ctx, task.Attachments)
		res.Err = fmt.Errorf("insert task: %w", err)
		return res
	}

	s.tasks = append(s.tasks, task)
	res.Applied = true
	return res
}

// EditTask updates title, description and due date and appends newly
// uploaded images. A nil due date keeps the current one. The task stays in
// its current column.
func (s *Synchronizer) EditTask(ctx context.Context, taskID uint64, in TaskInput) (res Result) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res.Op = OpEditTask
	if err := validate.Struct(in); err != nil {
		res.Err = fmt.Errorf("%w: %v", ErrInvalidInput, err)
		return res
	}
	if err := s.begin(res.Op); err != nil {
		res.Err = err
		return res
	}
	defer s.end(&res)

	idx := s.taskIndex(taskID)
	if idx < 0 {
		res.Err = ErrTaskNotFound
		return res
	}

	uploaded := s.upload(ctx, in.Files)

	task := &s.tasks[idx]
	task.Title = in.Title
	task.Description = in.Description
	if in.DueDate != nil {
		task.DueDate = in.DueDate
	}
	res.Applied = true

	fields := map[string]interface{}{
		"title":       in.Title,
		"description": in.Description,
		"due_date":    task.DueDate,
	}
	if err := s.repo.UpdateTask(ctx, s.boardID, taskID, fields); err != nil {
		s.logger.Errorw("Error updating task", "task_id", taskID, "error", err)
		res.Err = fmt.Errorf("update task: %w", err)
		res.Stale = true
	}

	if len(uploaded) == 0 {
		return res
	}
	if err := s.repo.AddAttachments(ctx, s.boardID, taskID, uploaded); err != nil {
		s.logger.Errorw("Error saving task images", "task_id", taskID, "error", err)
		s.discard(ctx, uploaded)
		if res.Err == nil {
			res.Err = fmt.Errorf("add attachments: %w", err)
		}
		return res
	}
	task.Attachments = append(task.Attachments, uploaded...)
	return res
}

// DeleteTask removes the task remotely first; local state only changes once
// the remote delete succeeded.
func (s *Synchronizer) DeleteTask(ctx context.Context, taskID uint64) (res Result) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res.Op = OpDeleteTask
	if err := s.begin(res.Op); err != nil {
		res.Err = err
		return res
	}
	defer s.end(&res)

	idx := s.taskIndex(taskID)
	if idx < 0 {
		res.Err = ErrTaskNotFound
		return res
	}

	if err := s.repo.DeleteTask(ctx, s.boardID, taskID); err != nil {
		s.logger.Errorw("Error deleting task", "task_id", taskID, "error", err)
		res.Err = fmt.Errorf("delete task: %w", err)
		return res
	}

	removed := s.tasks[idx]
	s.tasks = append(s.tasks[:idx:idx], s.tasks[idx+1:]...)
	res.Applied = true

	s.discard(ctx, removed.Attachments)
	return res
}

// DeleteAttachment deletes the blob behind url and only then drops the
// attachment locally and remotely. A failed blob delete changes nothing.
func (s *Synchronizer) DeleteAttachment(ctx context.Context, taskID uint64, url string) (res Result) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res.Op = OpDeleteAttachment
	if err := s.begin(res.Op); err != nil {
		res.Err = err
		return res
	}
	defer s.end(&res)

	idx := s.taskIndex(taskID)
	if idx < 0 {
		res.Err = ErrTaskNotFound
		return res
	}
	task := &s.tasks[idx]

	attIdx := -1
	for i := range task.Attachments {
		if task.Attachments[i].FileURL == url {
			attIdx = i
			break
		}
	}
	if attIdx < 0 {
		res.Err = ErrAttachmentNotFound
		return res
	}
	att := task.Attachments[attIdx]

	objectName := att.ObjectName
	if objectName == "" {
		objectName = attachment.ObjectPathFromURL(s.userID, url)
	}
	if err := s.files.Remove(ctx, objectName); err != nil {
		s.logger.Errorw("Error deleting image", "task_id", taskID, "object_name", objectName, "error", err)
		res.Err = fmt.Errorf("delete blob: %w", err)
		return res
	}

	task.Attachments = append(task.Attachments[:attIdx:attIdx], task.Attachments[attIdx+1:]...)
	res.Applied = true

	if err := s.repo.DeleteAttachment(ctx, s.boardID, att.ID); err != nil {
		s.logger.Errorw("Error removing image from task", "task_id", taskID, "attachment_id", att.ID, "error", err)
		res.Err = fmt.Errorf("delete attachment: %w", err)
		res.Stale = true
	}
	return res
}

// AddColumn inserts a column with order 0, whatever columns already exist,
// and then reloads the board's columns.
func (s *Synchronizer) AddColumn(ctx context.Context, name string) (res Result) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res.Op = OpAddColumn
	if err := validate.Var(name, "required,max=64"); err != nil {
		res.Err = fmt.Errorf("%w: %v", ErrInvalidInput, err)
		return res
	}
	if err := s.begin(res.Op); err != nil {
		res.Err = err
		return res
	}
	defer s.end(&res)

	column := Column{Name: name, Order: 0, MenuItemID: s.boardID}
	if err := s.repo.InsertColumn(ctx, &column); err != nil {
		s.logger.Errorw("Error adding column", "name", name, "error", err)
		res.Err = fmt.Errorf("insert column: %w", err)
		return res
	}
	res.Applied = true

	columns, err := s.repo.ListColumns(ctx, s.boardID)
	if err != nil {
		s.logger.Errorw("Error loading columns", "error", err)
		s.columns = append(s.columns, column)
		res.Err = fmt.Errorf("reload columns: %w", err)
		res.Stale = true
		return res
	}
	s.columns = columns
	return res
}

func (s *Synchronizer) RenameColumn(ctx context.Context, columnID uint64, name string) (res Result) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res.Op = OpRenameColumn
	if err := validate.Var(name, "required,max=64"); err != nil {
		res.Err = fmt.Errorf("%w: %v", ErrInvalidInput, err)
		return res
	}
	if err := s.begin(res.Op); err != nil {
		res.Err = err
		return res
	}
	defer s.end(&res)

	idx := s.columnIndex(columnID)
	if idx < 0 {
		res.Err = ErrColumnNotFound
		return res
	}

	if err := s.repo.UpdateColumn(ctx, s.boardID, columnID, map[string]interface{}{"name": name}); err != nil {
		s.logger.Errorw("Error updating column name", "column_id", columnID, "error", err)
		res.Err = fmt.Errorf("rename column: %w", err)
		return res
	}

	s.columns[idx].Name = name
	res.Applied = true
	return res
}

// DeleteColumn removes the column only. Its tasks keep their column_id and
// show up as unassigned in snapshots.
func (s *Synchronizer) DeleteColumn(ctx context.Context, columnID uint64) (res Result) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res.Op = OpDeleteColumn
	if err := s.begin(res.Op); err != nil {
		res.Err = err
		return res
	}
	defer s.end(&res)

	idx := s.columnIndex(columnID)
	if idx < 0 {
		res.Err = ErrColumnNotFound
		return res
	}

	if err := s.repo.DeleteColumn(ctx, s.boardID, columnID); err != nil {
		s.logger.Errorw("Error deleting column", "column_id", columnID, "error", err)
		res.Err = fmt.Errorf("delete column: %w", err)
		return res
	}

	s.columns = append(s.columns[:idx:idx], s.columns[idx+1:]...)
	res.Applied = true

	if orphans := len(columnPositions(s.tasks, columnID)); orphans > 0 {
		s.logger.Warnw("Deleted column still referenced by tasks", "column_id", columnID, "orphaned_tasks", orphans)
	}
	return res
}

// Snapshot returns a copy of the board grouped by column for rendering.
func (s *Synchronizer) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		BoardID: s.boardID,
		State:   string(s.state),
		Columns: make([]ColumnView, 0, len(s.columns)),
	}
	for _, column := range s.columns {
		view := ColumnView{Column: column, Tasks: []TaskView{}}
		for _, pos := range columnPositions(s.tasks, column.ID) {
			view.Tasks = append(view.Tasks, newTaskView(s.tasks[pos]))
		}
		snap.Columns = append(snap.Columns, view)
	}
	for _, task := range s.tasks {
		if s.columnIndex(task.ColumnID) < 0 {
			snap.Unassigned = append(snap.Unassigned, newTaskView(task))
		}
	}
	return snap
}

func newTaskView(task Task) TaskView {
	task = task.clone()
	if task.Attachments == nil {
		task.Attachments = []attachment.Attachment{}
	}
	return TaskView{Task: task, ImageURL: attachment.JoinURLs(task.Attachments)}
}

func (s *Synchronizer) upload(ctx context.Context, files []attachment.File) []attachment.Attachment {
	if len(files) == 0 || s.files == nil {
		return nil
	}
	return s.files.UploadAll(ctx, s.userID, files)
}

func (s *Synchronizer) discard(ctx context.Context, atts []attachment.Attachment) {
	if len(atts) == 0 || s.files == nil {
		return
	}
	s.files.RemoveAll(ctx, atts)
}

func (s *Synchronizer) columnIndex(id uint64) int {
	for i := range s.columns {
		if s.columns[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Synchronizer) columnByName(name string) *Column {
	for i := range s.columns {
		if s.columns[i].Name == name {
			return &s.columns[i]
		}
	}
	return nil
}

func (s *Synchronizer) taskIndex(id uint64) int {
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Synchronizer) orphanCount() int {
	count := 0
	for _, task := range s.tasks {
		if s.columnIndex(task.ColumnID) < 0 {
			count++
		}
	}
	return count
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
