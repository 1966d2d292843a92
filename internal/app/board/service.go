package board

import (
	"context"
	"sync"

	"todoboard/internal/app/attachment"

	"go.uber.org/zap"
)

// Lookup maps a user's board slug to its menu item id. The menu service
// implements it.
type Lookup interface {
	BoardID(ctx context.Context, userID, slug string) (uint64, error)
}

type Service interface {
	// Resolve returns the synchronizer for the user's board named by slug,
	// loading it on first use or after a failed load.
	Resolve(ctx context.Context, userID, slug string) (*Synchronizer, error)
	// Forget drops the synchronizer and cached rows of a deleted board.
	Forget(ctx context.Context, boardID uint64)
}

type evicter interface {
	Evict(ctx context.Context, boardID uint64)
}

type service struct {
	mu     sync.Mutex
	boards map[uint64]*Synchronizer

	lookup Lookup
	repo   Repository
	files  attachment.Service
	events Publisher
	logger *zap.Logger
	opts   Options
}

func NewService(lookup Lookup, repo Repository, files attachment.Service, events Publisher, logger *zap.Logger, opts Options) Service {
	return &service{
		boards: make(map[uint64]*Synchronizer),
		lookup: lookup,
		repo:   repo,
		files:  files,
		events: events,
		logger: logger,
		opts:   opts,
	}
}

func (s *service) Resolve(ctx context.Context, userID, slug string) (*Synchronizer, error) {
	boardID, err := s.lookup.BoardID(ctx, userID, slug)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	b, ok := s.boards[boardID]
	if !ok {
		b = NewSynchronizer(boardID, userID, s.repo, s.files, s.events, s.logger, s.opts)
		s.boards[boardID] = b
	}
	s.mu.Unlock()

	switch b.State() {
	case StateUnloaded, StateLoadFailed:
		b.Load(ctx)
	}
	return b, nil
}

func (s *service) Forget(ctx context.Context, boardID uint64) {
	s.mu.Lock()
	delete(s.boards, boardID)
	s.mu.Unlock()

	if e, ok := s.repo.(evicter); ok {
		e.Evict(ctx, boardID)
	}
	s.logger.Info("Board released", zap.Uint64("board_id", boardID))
}
