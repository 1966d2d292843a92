package menu

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"todoboard/internal/app/board"
	"todoboard/internal/auth"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Forgetter releases in-memory state of a deleted board.
type Forgetter interface {
	Forget(ctx context.Context, boardID uint64)
}

type Handler interface {
	GetMenu(c *gin.Context)
	CreateItem(c *gin.Context)
	ReorderItems(c *gin.Context)
	DeleteItem(c *gin.Context)
}

type handler struct {
	service Service
	boards  Forgetter
	logger  *zap.Logger
}

func NewHandler(service Service, boards Forgetter, logger *zap.Logger) Handler {
	return &handler{
		service: service,
		boards:  boards,
		logger:  logger,
	}
}

// @Summary Get menu
// @Description List the user's lists in sidebar order
// @Tags Menu
// @Produce json
// @Security BearerAuth
// @Success 200 {object} MenuResponse
// @Router /api/menu [get]
func (h *handler) GetMenu(c *gin.Context) {
	items, err := h.service.Load(c.Request.Context(), auth.UserID(c))
	c.JSON(http.StatusOK, MenuResponse{Items: newViews(items), Synced: err == nil})
}

// @Summary Create list
// @Description Adds a list at the end of the menu with the default columns
// @Tags Menu
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateItemRequest true "List"
// @Success 201 {object} ItemView
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Router /api/menu [post]
func (h *handler) CreateItem(c *gin.Context) {
	var req CreateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	item, err := h.service.Add(c.Request.Context(), auth.UserID(c), req.ItemName)
	switch {
	case errors.Is(err, ErrInvalidName):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	case errors.Is(err, ErrDuplicateName):
		c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error()})
	case err != nil:
		c.JSON(http.StatusBadGateway, ErrorResponse{Error: "failed to create list"})
	default:
		c.JSON(http.StatusCreated, ItemView{Item: item, Slug: Slugify(item.ItemName)})
	}
}

// @Summary Reorder lists
// @Tags Menu
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body ReorderRequest true "Move"
// @Success 200 {object} MenuResponse
// @Failure 400 {object} ErrorResponse
// @Router /api/menu/order [patch]
func (h *handler) ReorderItems(c *gin.Context) {
	var req ReorderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	items, err := h.service.Reorder(c.Request.Context(), auth.UserID(c), req.SourceIndex, req.DestinationIndex)
	if errors.Is(err, board.ErrInvalidIndex) {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, MenuResponse{Items: newViews(items), Synced: err == nil})
}

// @Summary Delete list
// @Description Deletes the list with its tasks and columns
// @Tags Menu
// @Produce json
// @Security BearerAuth
// @Param id path int true "List ID"
// @Success 200 {object} MenuResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/menu/{id} [delete]
func (h *handler) DeleteItem(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid list ID"})
		return
	}

	ctx := c.Request.Context()
	userID := auth.UserID(c)
	err = h.service.Delete(ctx, userID, id)
	if errors.Is(err, ErrItemNotFound) {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error()})
		return
	}
	if err == nil && h.boards != nil {
		h.boards.Forget(ctx, id)
	}

	items, _ := h.service.Items(ctx, userID)
	c.JSON(http.StatusOK, MenuResponse{Items: newViews(items), Synced: err == nil})
}
