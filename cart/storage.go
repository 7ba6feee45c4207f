package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"storefront-orders/model"

	"github.com/redis/go-redis/v9"
)

// Storage loads and saves a session's cart. A session with nothing saved
// loads as an empty cart.
type Storage interface {
	Load(ctx context.Context, sessionID string) (*Cart, error)
	Save(ctx context.Context, sessionID string, c *Cart) error
	// Update runs fn on the current cart and saves the result as one step.
	// Nothing is saved when fn returns an error.
	Update(ctx context.Context, sessionID string, fn func(*Cart) error) error
}

// MemoryStorage keeps carts in process memory.
type MemoryStorage struct {
	mu    sync.Mutex
	carts map[string][]model.CartLine
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{carts: map[string][]model.CartLine{}}
}

func (m *MemoryStorage) Load(_ context.Context, sessionID string) (*Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return &Cart{lines: append([]model.CartLine(nil), m.carts[sessionID]...)}, nil
}

func (m *MemoryStorage) Save(_ context.Context, sessionID string, c *Cart) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c.Len() == 0 {
		delete(m.carts, sessionID)
		return nil
	}
	m.carts[sessionID] = c.List()
	return nil
}

func (m *MemoryStorage) Update(_ context.Context, sessionID string, fn func(*Cart) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := &Cart{lines: append([]model.CartLine(nil), m.carts[sessionID]...)}
	if err := fn(c); err != nil {
		return err
	}
	if c.Len() == 0 {
		delete(m.carts, sessionID)
		return nil
	}
	m.carts[sessionID] = c.List()
	return nil
}

const (
	cartKeyPrefix = "cart:"

	// maxUpdateAttempts bounds retries when another writer touches the
	// same cart between WATCH and EXEC.
	maxUpdateAttempts = 5
)

// cartCmds is the command subset shared by the client, a watched
// transaction and its pipeline.
type cartCmds interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// RedisStorage keeps each cart as a JSON array under cart:<session>.
type RedisStorage struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

func NewRedisStorage(redisURL string, ttl time.Duration, logger *slog.Logger) (*RedisStorage, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return &RedisStorage{client: client, ttl: ttl, logger: logger}, nil
}

func (r *RedisStorage) Close() error {
	return r.client.Close()
}

// Load treats an unreadable payload as an empty cart.
func (r *RedisStorage) Load(ctx context.Context, sessionID string) (*Cart, error) {
	return r.load(ctx, r.client, sessionID)
}

func (r *RedisStorage) load(ctx context.Context, c cartCmds, sessionID string) (*Cart, error) {
	data, err := c.Get(ctx, cartKeyPrefix+sessionID).Bytes()
	if errors.Is(err, redis.Nil) {
		return New(), nil
	}
	if err != nil {
		return nil, model.Persistence("load cart", err)
	}

	var lines []model.CartLine
	if err := json.Unmarshal(data, &lines); err != nil {
		r.logger.Warn("discarding unreadable cart", "session", sessionID, "error", err)
		return New(), nil
	}
	return New(lines...), nil
}

func (r *RedisStorage) Save(ctx context.Context, sessionID string, c *Cart) error {
	return r.save(ctx, r.client, sessionID, c)
}

func (r *RedisStorage) save(ctx context.Context, cmd cartCmds, sessionID string, c *Cart) error {
	key := cartKeyPrefix + sessionID
	if c.Len() == 0 {
		if err := cmd.Del(ctx, key).Err(); err != nil {
			return model.Persistence("clear cart", err)
		}
		return nil
	}
	data, err := json.Marshal(c.List())
	if err != nil {
		return fmt.Errorf("failed to marshal cart: %w", err)
	}
	if err := cmd.Set(ctx, key, data, r.ttl).Err(); err != nil {
		return model.Persistence("save cart", err)
	}
	return nil
}

// Update watches the cart key so a concurrent write aborts the EXEC and
// the read-modify-write starts over from the newer cart.
func (r *RedisStorage) Update(ctx context.Context, sessionID string, fn func(*Cart) error) error {
	key := cartKeyPrefix + sessionID
	txf := func(tx *redis.Tx) error {
		c, err := r.load(ctx, tx, sessionID)
		if err != nil {
			return err
		}
		if err := fn(c); err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			return r.save(ctx, pipe, sessionID, c)
		})
		return err
	}

	for attempt := 1; attempt <= maxUpdateAttempts; attempt++ {
		err := r.client.Watch(ctx, txf, key)
		if !errors.Is(err, redis.TxFailedErr) {
			return err
		}
		r.logger.Debug("cart changed during update, retrying", "session", sessionID, "attempt", attempt)
	}
	return fmt.Errorf("cart %s changed concurrently: %w", sessionID, model.ErrStateConflict)
}
