package board

import (
	"context"
	"strconv"
	"time"

	"todoboard/internal/app/attachment"

	"github.com/bytedance/sonic"
	"github.com/redis/go-redis/v9"
)

// CachedRepository serves board loads from Redis and evicts a board's keys on
// every write to it. Redis failures fall back to the wrapped repository.
type CachedRepository struct {
	base  Repository
	redis *redis.Client
	ttl   time.Duration
}

func NewCachedRepository(base Repository, client *redis.Client, ttl time.Duration) *CachedRepository {
	if base == nil {
		panic("board.NewCachedRepository: base repository is nil")
	}
	if ttl < 0 {
		ttl = 0
	}
	return &CachedRepository{base: base, redis: client, ttl: ttl}
}

func (c *CachedRepository) ListColumns(ctx context.Context, boardID uint64) ([]Column, error) {
	var columns []Column
	if c.load(ctx, columnsCacheKey(boardID), &columns) {
		return columns, nil
	}
	columns, err := c.base.ListColumns(ctx, boardID)
	if err != nil {
		return nil, err
	}
	c.store(ctx, columnsCacheKey(boardID), columns)
	return columns, nil
}

func (c *CachedRepository) ListTasks(ctx context.Context, boardID uint64) ([]Task, error) {
	var tasks []Task
	if c.load(ctx, tasksCacheKey(boardID), &tasks) {
		return tasks, nil
	}
	tasks, err := c.base.ListTasks(ctx, boardID)
	if err != nil {
		return nil, err
	}
	c.store(ctx, tasksCacheKey(boardID), tasks)
	return tasks, nil
}

func (c *CachedRepository) InsertColumn(ctx context.Context, col *Column) error {
	defer c.evict(ctx, col.MenuItemID)
	return c.base.InsertColumn(ctx, col)
}

func (c *CachedRepository) UpdateColumn(ctx context.Context, boardID, id uint64, fields map[string]interface{}) error {
	defer c.evict(ctx, boardID)
	return c.base.UpdateColumn(ctx, boardID, id, fields)
}

func (c *CachedRepository) UpdateColumnOrders(ctx context.Context, boardID uint64, orders []ColumnOrder) error {
	defer c.evict(ctx, boardID)
	return c.base.UpdateColumnOrders(ctx, boardID, orders)
}

func (c *CachedRepository) DeleteColumn(ctx context.Context, boardID, id uint64) error {
	defer c.evict(ctx, boardID)
	return c.base.DeleteColumn(ctx, boardID, id)
}

func (c *CachedRepository) InsertTask(ctx context.Context, task *Task) error {
	defer c.evict(ctx, task.MenuItemID)
	return c.base.InsertTask(ctx, task)
}

func (c *CachedRepository) UpdateTask(ctx context.Context, boardID, id uint64, fields map[string]interface{}) error {
	defer c.evict(ctx, boardID)
	return c.base.UpdateTask(ctx, boardID, id, fields)
}

func (c *CachedRepository) DeleteTask(ctx context.Context, boardID, id uint64) error {
	defer c.evict(ctx, boardID)
	return c.base.DeleteTask(ctx, boardID, id)
}

func (c *CachedRepository) AddAttachments(ctx context.Context, boardID, taskID uint64, atts []attachment.Attachment) error {
	defer c.evict(ctx, boardID)
	return c.base.AddAttachments(ctx, boardID, taskID, atts)
}

func (c *CachedRepository) DeleteAttachment(ctx context.Context, boardID, id uint64) error {
	defer c.evict(ctx, boardID)
	return c.base.DeleteAttachment(ctx, boardID, id)
}

// Evict drops the cached load for a board. Menu deletion calls it after
// removing a board's rows outside this repository.
func (c *CachedRepository) Evict(ctx context.Context, boardID uint64) {
	c.evict(ctx, boardID)
}

func (c *CachedRepository) load(ctx context.Context, key string, dst interface{}) bool {
	if c.redis == nil {
		return false
	}
	data, err := c.redis.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			_ = c.redis.Del(ctx, key).Err()
		}
		return false
	}
	if err := sonic.Unmarshal(data, dst); err != nil {
		_ = c.redis.Del(ctx, key).Err()
		return false
	}
	return true
}

func (c *CachedRepository) store(ctx context.Context, key string, value interface{}) {
	if c.redis == nil || c.ttl == 0 {
		return
	}
	data, err := sonic.Marshal(value)
	if err != nil {
		return
	}
	_ = c.redis.Set(ctx, key, data, c.ttl).Err()
}

func (c *CachedRepository) evict(ctx context.Context, boardID uint64) {
	if c.redis == nil {
		return
	}
	_, _ = c.redis.Del(ctx, columnsCacheKey(boardID), tasksCacheKey(boardID)).Result()
}

func columnsCacheKey(boardID uint64) string {
	return "board:" + strconv.FormatUint(boardID, 10) + ":columns"
}

func tasksCacheKey(boardID uint64) string {
	return "board:" + strconv.FormatUint(boardID, 10) + ":tasks"
}
