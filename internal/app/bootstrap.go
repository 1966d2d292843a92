package app

import (
	"context"

	"todoboard/internal/app/attachment"
	"todoboard/internal/app/board"
	"todoboard/internal/app/health"
	"todoboard/internal/app/menu"
	"todoboard/internal/app/profile"
	"todoboard/internal/auth"
	"todoboard/internal/config"
	"todoboard/internal/db"
	"todoboard/internal/db/seeder"
	"todoboard/internal/gateways/websocket"
	"todoboard/internal/providers/minio"
	"todoboard/internal/providers/redis"
	"todoboard/internal/router"
	"todoboard/internal/utils"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Application struct {
	Router *router.Router
	DB     *gorm.DB

	redis    *redis.RedisProvider
	verifier *auth.Verifier
	cancel   context.CancelFunc
	logger   *zap.Logger
}

func Bootstrap(cfg *config.Config, logger *zap.Logger) (*Application, error) {
	dbConn, err := db.Connect(cfg, logger)
	if err != nil {
		return nil, err
	}

	if err := db.Migrate(dbConn, logger); err != nil {
		return nil, err
	}

	verifier, err := auth.NewVerifier(cfg, logger)
	if err != nil {
		return nil, err
	}

	redisProvider := redis.NewRedisProvider(cfg.RedisURL, logger, cfg.RedisTTL)
	minioProvider, err := minio.NewMinioProvider(cfg, logger)
	if err != nil {
		logger.Warn("Failed to initialize MinIO provider", zap.Error(err))
		minioProvider = nil
	}
	eventBus := utils.NewEventBus()

	var blobs attachment.BlobStore
	healthChecker := &utils.HealthChecker{
		DB:    dbConn,
		Redis: redisProvider.Client,
	}
	if minioProvider != nil {
		blobs = minioProvider
		healthChecker.Blob = minioProvider
	}

	boardRepo := board.NewCachedRepository(board.NewRepository(dbConn), redisProvider.Client, cfg.RedisTTL)
	menuRepo := menu.NewRepository(dbConn)
	profileRepo := profile.NewRepository(dbConn)

	attachmentService := attachment.NewService(blobs, minio.GenerateObjectName, logger)
	menuService := menu.NewService(menuRepo, eventBus, cfg.DefaultColumns, logger)
	boardService := board.NewService(menuService, boardRepo, attachmentService, eventBus, logger, board.Options{
		DefaultColumn: cfg.DefaultColumn,
	})
	profileService := profile.NewService(profileRepo, blobs, logger)

	seed := seeder.NewSeeder(menuService, cfg.SeedUserID, logger)
	if err := seed.Seed(context.Background()); err != nil {
		logger.Warn("Failed to run seeders", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	hub := websocket.NewHub(logger, eventBus, verifier)
	go hub.Run(ctx)

	healthHandler := health.NewHandler(healthChecker)
	menuHandler := menu.NewHandler(menuService, boardService, logger)
	boardHandler := board.NewHandler(boardService, cfg.MaxFilesPerTask, logger)
	profileHandler := profile.NewHandler(profileService, logger)

	r := router.NewRouter(logger, cfg.FrontendURLs, verifier)

	r.RegisterHealthRoutes(healthHandler)
	r.RegisterWebSocketRoutes(hub)
	r.RegisterMenuRoutes(menuHandler)
	r.RegisterBoardRoutes(boardHandler)
	r.RegisterProfileRoutes(profileHandler)
	r.RegisterSwaggerRoutes()

	return &Application{
		Router:   r,
		DB:       dbConn,
		redis:    redisProvider,
		verifier: verifier,
		cancel:   cancel,
		logger:   logger,
	}, nil
}

// Close stops background workers and releases connections.
func (a *Application) Close() {
	a.cancel()
	a.verifier.Close()
	if err := a.redis.Close(); err != nil {
		a.logger.Warn("Failed to close redis", zap.Error(err))
	}
	if sqlDB, err := a.DB.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
