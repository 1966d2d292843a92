package board

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"todoboard/internal/app/attachment"
	"todoboard/internal/auth"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const dueDateLayout = "2006-01-02"

type Handler interface {
	GetBoard(c *gin.Context)
	Reload(c *gin.Context)
	AddColumn(c *gin.Context)
	ReorderColumns(c *gin.Context)
	RenameColumn(c *gin.Context)
	DeleteColumn(c *gin.Context)
	AddTask(c *gin.Context)
	EditTask(c *gin.Context)
	MoveTask(c *gin.Context)
	DeleteTask(c *gin.Context)
	DeleteAttachment(c *gin.Context)
}

type handler struct {
	service  Service
	maxFiles int
	logger   *zap.SugaredLogger
}

func NewHandler(service Service, maxFiles int, logger *zap.Logger) Handler {
	return &handler{
		service:  service,
		maxFiles: maxFiles,
		logger:   logger.Sugar(),
	}
}

func (h *handler) resolve(c *gin.Context) (*Synchronizer, bool) {
	b, err := h.service.Resolve(c.Request.Context(), auth.UserID(c), c.Param("slug"))
	if err != nil {
		if errors.Is(err, ErrBoardNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "board not found"})
			return nil, false
		}
		h.logger.Errorw("Failed to resolve board", "slug", c.Param("slug"), "error", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to resolve board"})
		return nil, false
	}
	return b, true
}

// respond maps a Result to HTTP. Remote failures never block the client: they
// answer 200 with the current board and synced=false, reloading first when
// the Result is stale.
func (h *handler) respond(c *gin.Context, b *Synchronizer, res Result, created bool) {
	switch {
	case errors.Is(res.Err, ErrInvalidInput), errors.Is(res.Err, ErrInvalidIndex):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: res.Err.Error()})
		return
	case errors.Is(res.Err, ErrColumnNotFound), errors.Is(res.Err, ErrTaskNotFound), errors.Is(res.Err, ErrAttachmentNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: res.Err.Error()})
		return
	case errors.Is(res.Err, ErrNotLoaded):
		c.JSON(http.StatusConflict, ErrorResponse{Error: res.Err.Error()})
		return
	}

	if res.Stale {
		h.logger.Infow("Reloading stale board", "board_id", b.BoardID(), "op", res.Op)
		b.Reload(c.Request.Context())
	}

	status := http.StatusOK
	if created && res.OK() {
		status = http.StatusCreated
	}
	c.JSON(status, BoardResponse{Snapshot: b.Snapshot(), Synced: res.OK()})
}

// @Summary Get board
// @Description Load a board by its slug and return its columns and tasks
// @Tags Boards
// @Produce json
// @Security BearerAuth
// @Param slug path string true "Board slug"
// @Success 200 {object} BoardResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/boards/{slug} [get]
func (h *handler) GetBoard(c *gin.Context) {
	b, ok := h.resolve(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, BoardResponse{Snapshot: b.Snapshot(), Synced: b.State() == StateLoaded})
}

// @Summary Reload board
// @Tags Boards
// @Produce json
// @Security BearerAuth
// @Param slug path string true "Board slug"
// @Success 200 {object} BoardResponse
// @Router /api/boards/{slug}/reload [post]
func (h *handler) Reload(c *gin.Context) {
	b, ok := h.resolve(c)
	if !ok {
		return
	}
	res := b.Reload(c.Request.Context())
	c.JSON(http.StatusOK, BoardResponse{Snapshot: b.Snapshot(), Synced: res.OK()})
}

// @Summary Add column
// @Description New columns are stored with order 0
// @Tags Columns
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param slug path string true "Board slug"
// @Param request body CreateColumnRequest true "Column"
// @Success 201 {object} BoardResponse
// @Failure 400 {object} ErrorResponse
// @Router /api/boards/{slug}/columns [post]
func (h *handler) AddColumn(c *gin.Context) {
	var req CreateColumnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}
	b, ok := h.resolve(c)
	if !ok {
		return
	}
	h.respond(c, b, b.AddColumn(c.Request.Context(), strings.TrimSpace(req.Name)), true)
}

// @Summary Reorder columns
// @Tags Columns
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param slug path string true "Board slug"
// @Param request body ReorderColumnsRequest true "Move"
// @Success 200 {object} BoardResponse
// @Failure 400 {object} ErrorResponse
// @Router /api/boards/{slug}/columns/order [patch]
func (h *handler) ReorderColumns(c *gin.Context) {
	var req ReorderColumnsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}
	b, ok := h.resolve(c)
	if !ok {
		return
	}
	h.respond(c, b, b.ReorderColumns(c.Request.Context(), req.SourceIndex, req.DestinationIndex), false)
}

// @Summary Rename column
// @Tags Columns
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param slug path string true "Board slug"
// @Param id path int true "Column ID"
// @Param request body RenameColumnRequest true "Name"
// @Success 200 {object} BoardResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/boards/{slug}/columns/{id} [patch]
func (h *handler) RenameColumn(c *gin.Context) {
	id, ok := parseID(c, "id", "invalid column ID")
	if !ok {
		return
	}
	var req RenameColumnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}
	b, ok := h.resolve(c)
	if !ok {
		return
	}
	h.respond(c, b, b.RenameColumn(c.Request.Context(), id, strings.TrimSpace(req.Name)), false)
}

// @Summary Delete column
// @Description Tasks of the column are kept and reported as unassigned
// @Tags Columns
// @Produce json
// @Security BearerAuth
// @Param slug path string true "Board slug"
// @Param id path int true "Column ID"
// @Success 200 {object} BoardResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/boards/{slug}/columns/{id} [delete]
func (h *handler) DeleteColumn(c *gin.Context) {
	id, ok := parseID(c, "id", "invalid column ID")
	if !ok {
		return
	}
	b, ok := h.resolve(c)
	if !ok {
		return
	}
	h.respond(c, b, b.DeleteColumn(c.Request.Context(), id), false)
}

// @Summary Add task
// @Description Creates a task in the named column, "ToDo" by default
// @Tags Tasks
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param slug path string true "Board slug"
// @Param title formData string true "Title"
// @Param description formData string false "Description"
// @Param due_date formData string false "Due date (YYYY-MM-DD)"
// @Param column formData string false "Column name"
// @Param images formData file false "Images"
// @Success 201 {object} BoardResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/boards/{slug}/tasks [post]
func (h *handler) AddTask(c *gin.Context) {
	in, column, ok := h.bindTask(c)
	if !ok {
		return
	}
	b, ok := h.resolve(c)
	if !ok {
		return
	}
	h.respond(c, b, b.AddTask(c.Request.Context(), in, column), true)
}

// @Summary Edit task
// @Description Replaces title and description. An omitted due date keeps the current one.
// @Tags Tasks
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param slug path string true "Board slug"
// @Param id path int true "Task ID"
// @Param title formData string true "Title"
// @Param description formData string false "Description"
// @Param due_date formData string false "Due date (YYYY-MM-DD)"
// @Param images formData file false "Images to append"
// @Success 200 {object} BoardResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/boards/{slug}/tasks/{id} [put]
func (h *handler) EditTask(c *gin.Context) {
	id, ok := parseID(c, "id", "invalid task ID")
	if !ok {
		return
	}
	in, _, ok := h.bindTask(c)
	if !ok {
		return
	}
	b, ok := h.resolve(c)
	if !ok {
		return
	}
	h.respond(c, b, b.EditTask(c.Request.Context(), id, in), false)
}

// @Summary Move task
// @Description Moves a task between or within columns. Only the column is persisted.
// @Tags Tasks
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param slug path string true "Board slug"
// @Param request body MoveTaskRequest true "Move"
// @Success 200 {object} BoardResponse
// @Failure 400 {object} ErrorResponse
// @Router /api/boards/{slug}/tasks/move [patch]
func (h *handler) MoveTask(c *gin.Context) {
	var req MoveTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}
	b, ok := h.resolve(c)
	if !ok {
		return
	}
	res := b.MoveTask(c.Request.Context(), req.SourceColumnID, req.SourceIndex, req.DestinationColumnID, req.DestinationIndex)
	h.respond(c, b, res, false)
}

// @Summary Delete task
// @Tags Tasks
// @Produce json
// @Security BearerAuth
// @Param slug path string true "Board slug"
// @Param id path int true "Task ID"
// @Success 200 {object} BoardResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/boards/{slug}/tasks/{id} [delete]
func (h *handler) DeleteTask(c *gin.Context) {
	id, ok := parseID(c, "id", "invalid task ID")
	if !ok {
		return
	}
	b, ok := h.resolve(c)
	if !ok {
		return
	}
	h.respond(c, b, b.DeleteTask(c.Request.Context(), id), false)
}

// @Summary Delete task image
// @Tags Tasks
// @Produce json
// @Security BearerAuth
// @Param slug path string true "Board slug"
// @Param id path int true "Task ID"
// @Param url query string true "Image URL"
// @Success 200 {object} BoardResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/boards/{slug}/tasks/{id}/attachments [delete]
func (h *handler) DeleteAttachment(c *gin.Context) {
	id, ok := parseID(c, "id", "invalid task ID")
	if !ok {
		return
	}
	url := c.Query("url")
	if url == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "url is required"})
		return
	}
	b, ok := h.resolve(c)
	if !ok {
		return
	}
	h.respond(c, b, b.DeleteAttachment(c.Request.Context(), id, url), false)
}

func (h *handler) bindTask(c *gin.Context) (TaskInput, string, bool) {
	var form TaskForm
	if err := c.ShouldBind(&form); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return TaskInput{}, "", false
	}

	in := TaskInput{
		Title:       strings.TrimSpace(form.Title),
		Description: form.Description,
	}
	if form.DueDate != "" {
		due, err := time.Parse(dueDateLayout, form.DueDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "due_date must be YYYY-MM-DD"})
			return TaskInput{}, "", false
		}
		in.DueDate = &due
	}

	if strings.HasPrefix(c.ContentType(), "multipart/") {
		mf, err := c.MultipartForm()
		if err != nil {
			h.logger.Warnw("Failed to parse multipart form", "error", err)
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "failed to parse form"})
			return TaskInput{}, "", false
		}
		headers := mf.File["images"]
		if h.maxFiles > 0 && len(headers) > h.maxFiles {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: fmt.Sprintf("at most %d images per request", h.maxFiles)})
			return TaskInput{}, "", false
		}
		for _, fh := range headers {
			in.Files = append(in.Files, fileFromHeader(fh))
		}
	}

	return in, strings.TrimSpace(form.Column), true
}

func fileFromHeader(fh *multipart.FileHeader) attachment.File {
	return attachment.File{
		Name:        fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
		Open: func() (io.ReadCloser, error) {
			return fh.Open()
		},
	}
}

func parseID(c *gin.Context, param, message string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(param), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: message})
		return 0, false
	}
	return id, true
}
