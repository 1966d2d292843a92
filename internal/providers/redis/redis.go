package redis

import (
	"context"
	"net"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type RedisProvider struct {
	Client *redis.Client
	URL    string
	TTL    time.Duration
	logger *zap.SugaredLogger
	cancel context.CancelFunc
}

func NewRedisProvider(redisURL string, logger *zap.Logger, ttl time.Duration) *RedisProvider {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		opts = &redis.Options{
			Addr: redisURL,
			DB:   0,
		}
	}
	opts.MaxRetries = 3
	opts.MinRetryBackoff = 100 * time.Millisecond
	opts.MaxRetryBackoff = 500 * time.Millisecond

	client := redis.NewClient(opts)

	ctx, cancel := context.WithCancel(context.Background())
	provider := &RedisProvider{
		Client: client,
		URL:    redisURL,
		TTL:    ttl,
		logger: logger.Sugar(),
		cancel: cancel,
	}

	client.AddHook(&loggerHook{logger: provider.logger})

	if err := client.Ping(ctx).Err(); err != nil {
		provider.logger.Errorw("Redis connection failed at startup, board cache disabled until it recovers", "error", err)
	} else {
		provider.logger.Infow("Redis connected",
			"url", redisURL,
			"db", opts.DB,
			"default_ttl", ttl.String(),
		)
	}

	go provider.startConnectionMonitor(ctx)

	return provider
}

func (r *RedisProvider) Close() error {
	r.cancel()
	return r.Client.Close()
}

func (r *RedisProvider) startConnectionMonitor(ctx context.Context) {
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	wasConnected := r.Client.Ping(ctx).Err() == nil

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			err := r.Client.Ping(ctx).Err()
			switch {
			case err != nil && wasConnected:
				r.logger.Errorw("Redis disconnected", "error", err)
				wasConnected = false
			case err == nil && !wasConnected:
				r.logger.Infow("Redis reconnected", "url", r.URL)
				wasConnected = true
			}
		}
	}
}

type loggerHook struct {
	logger *zap.SugaredLogger
}

func (h *loggerHook) DialHook(next redis.DialHook) redis.DialHook {
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		conn, err := next(ctx, network, addr)
		if err != nil {
			h.logger.Errorw("Redis dial failed", "network", network, "addr", addr, "error", err)
		}
		return conn, err
	}
}

func (h *loggerHook) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		start := time.Now()
		err := next(ctx, cmd)
		h.log(cmd, time.Since(start), err)
		return err
	}
}

func (h *loggerHook) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []redis.Cmder) error {
		start := time.Now()
		err := next(ctx, cmds)
		duration := time.Since(start)
		for _, cmd := range cmds {
			h.log(cmd, duration, err)
		}
		return err
	}
}

func (h *loggerHook) log(cmd redis.Cmder, duration time.Duration, err error) {
	if cmd.Name() == "ping" && err == nil {
		return
	}
	// redis.Nil is a cache miss, not a failure.
	if err != nil && err != redis.Nil {
		h.logger.Errorw("Redis command failed",
			"command", cmd.Name(),
			"duration_ms", duration.Milliseconds(),
			"error", err,
		)
		return
	}
	h.logger.Debugw("Redis command executed",
		"command", cmd.Name(),
		"duration_ms", duration.Milliseconds(),
	)
}
