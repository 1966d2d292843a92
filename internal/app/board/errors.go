package board

import "errors"

var (
	ErrBoardNotFound      = errors.New("board not found")
	ErrColumnNotFound     = errors.New("column not found")
	ErrTaskNotFound       = errors.New("task not found")
	ErrAttachmentNotFound = errors.New("attachment not found")
	ErrInvalidIndex       = errors.New("index out of range")
	ErrInvalidInput       = errors.New("invalid input")
	ErrNotLoaded          = errors.New("board is not loaded")
)
