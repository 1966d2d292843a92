package seeder

import (
	"context"

	"todoboard/internal/app/menu"

	"go.uber.org/zap"
)

var defaultLists = []string{"Inbox", "Personal"}

// Seeder gives a development user a couple of lists to start from.
type Seeder struct {
	menu   menu.Service
	userID string
	logger *zap.Logger
}

func NewSeeder(menuSvc menu.Service, userID string, logger *zap.Logger) *Seeder {
	return &Seeder{
		menu:   menuSvc,
		userID: userID,
		logger: logger,
	}
}

func (s *Seeder) Seed(ctx context.Context) error {
	if s.userID == "" {
		s.logger.Info("SEED_USER_ID not set, skipping seed")
		return nil
	}
	s.logger.Info("Running database seeders...", zap.String("user_id", s.userID))

	items, err := s.menu.Load(ctx, s.userID)
	if err != nil {
		return err
	}
	if len(items) > 0 {
		s.logger.Info("Lists already exist, skipping seed", zap.Int("count", len(items)))
		return nil
	}

	for _, name := range defaultLists {
		if _, err := s.menu.Add(ctx, s.userID, name); err != nil {
			return err
		}
	}

	s.logger.Info("Seeded lists", zap.Int("count", len(defaultLists)))
	return nil
}
