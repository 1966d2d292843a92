package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"todoboard/internal/app/attachment"
	"todoboard/internal/app/menu"
	"todoboard/internal/config"
	"todoboard/internal/db"
	"todoboard/internal/db/seeder"
	"todoboard/internal/providers/minio"
	"todoboard/internal/utils"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func main() {
	logger, err := utils.NewLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize zap logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	utils.LoadEnv(logger)
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Failed to load config", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}

	app := &cli.App{
		Name:  "todoboard-admin",
		Usage: "maintenance tasks for the todoboard database and bucket",
		Commands: []*cli.Command{
			{
				Name:  "migrate",
				Usage: "create or update the database schema",
				Action: func(c *cli.Context) error {
					conn, err := db.Connect(&cfg, logger)
					if err != nil {
						return err
					}
					defer closeDB(conn)
					return db.Migrate(conn, logger)
				},
			},
			{
				Name:  "seed",
				Usage: "create the starter lists for a user without any",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "user",
						Usage: "user ID to seed, defaults to SEED_USER_ID",
						Value: cfg.SeedUserID,
					},
				},
				Action: func(c *cli.Context) error {
					userID := c.String("user")
					if userID == "" {
						return errors.New("no user given, pass --user or set SEED_USER_ID")
					}
					conn, err := db.Connect(&cfg, logger)
					if err != nil {
						return err
					}
					defer closeDB(conn)

					menuService := menu.NewService(menu.NewRepository(conn), nil, cfg.DefaultColumns, logger)
					return seeder.NewSeeder(menuService, userID, logger).Seed(c.Context)
				},
			},
			{
				Name:  "orphans",
				Usage: "report bucket objects no attachment references",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "delete",
						Usage: "remove the reported objects",
					},
					&cli.DurationFlag{
						Name:  "grace",
						Usage: "ignore objects modified more recently than this",
						Value: time.Hour,
					},
				},
				Action: func(c *cli.Context) error {
					return orphans(c.Context, &cfg, logger, c.Duration("grace"), c.Bool("delete"))
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		logger.Error("Command failed", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
}

func orphans(ctx context.Context, cfg *config.Config, logger *zap.Logger, grace time.Duration, remove bool) error {
	if ctx == nil {
		ctx = context.Background()
	}
	conn, err := db.Connect(cfg, logger)
	if err != nil {
		return err
	}
	defer closeDB(conn)

	blobs, err := minio.NewMinioProvider(cfg, logger)
	if err != nil {
		return err
	}

	objects, err := blobs.ListObjects(ctx, "")
	if err != nil {
		return fmt.Errorf("list objects: %w", err)
	}
	stored := make([]attachment.StoredObject, 0, len(objects))
	for _, object := range objects {
		stored = append(stored, attachment.StoredObject{Name: object.Key, LastModified: object.LastModified})
	}
	referenced, err := attachment.ReferencedObjects(ctx, conn)
	if err != nil {
		return fmt.Errorf("list attachments: %w", err)
	}

	found := attachment.FindOrphans(stored, referenced, time.Now().Add(-grace))
	logger.Info("Orphan scan finished",
		zap.Int("stored", len(stored)),
		zap.Int("referenced", len(referenced)),
		zap.Int("orphans", len(found)),
	)
	for _, name := range found {
		fmt.Println(name)
		if !remove {
			continue
		}
		if err := blobs.Delete(ctx, name); err != nil {
			logger.Warn("Failed to delete orphan", zap.String("object", name), zap.Error(err))
		}
	}
	return nil
}

func closeDB(conn *gorm.DB) {
	if sqlDB, err := conn.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
