package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"tradeplan/internal/config"
	"tradeplan/internal/models"
)

// RedisStore implements Store on Redis. Permissions, agents and performance
// are JSON values; positions are hash fields per agent; usage buckets rely on
// INCRBYFLOAT, which is atomic server-side and so satisfies the IncrUsage
// contract without client-side locking.
type RedisStore struct {
	rdb    *redis.Client
	prefix string
}

func NewRedisStore(cfg config.RedisConfig) (*RedisStore, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("redis: ping %s: %w", cfg.Addr, err)
	}
	prefix := cfg.KeyPrefix
	if prefix == "" {
		prefix = "tradeplan"
	}
	return &RedisStore{rdb: rdb, prefix: prefix}, nil
}

func (s *RedisStore) Close() error {
	return s.rdb.Close()
}

func (s *RedisStore) key(parts ...string) string {
	k := s.prefix
	for _, p := range parts {
		k += ":" + p
	}
	return k
}

func (s *RedisStore) putJSON(ctx context.Context, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("redis: marshal %s: %w", key, err)
	}
	if err := s.rdb.Set(ctx, key, raw, 0).Err(); err != nil {
		return fmt.Errorf("redis: set %s: %w", key, err)
	}
	return nil
}

func (s *RedisStore) getJSON(ctx context.Context, key string, v any) error {
	raw, err := s.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("redis: get %s: %w", key, err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("redis: unmarshal %s: %w", key, err)
	}
	return nil
}

func (s *RedisStore) PutPermission(ctx context.Context, p *models.WalletPermission) error {
	if err := s.putJSON(ctx, s.key("perm", p.ID), p); err != nil {
		return err
	}
	if err := s.rdb.SAdd(ctx, s.key("perms"), p.ID).Err(); err != nil {
		return fmt.Errorf("redis: index perm %s: %w", p.ID, err)
	}
	return nil
}

func (s *RedisStore) GetPermission(ctx context.Context, id string) (*models.WalletPermission, error) {
	var p models.WalletPermission
	if err := s.getJSON(ctx, s.key("perm", id), &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *RedisStore) ListPermissions(ctx context.Context) ([]*models.WalletPermission, error) {
	ids, err := s.rdb.SMembers(ctx, s.key("perms")).Result()
	if err != nil {
		return nil, fmt.Errorf("redis: list perms: %w", err)
	}
	out := make([]*models.WalletPermission, 0, len(ids))
	for _, id := range ids {
		p, err := s.GetPermission(ctx, id)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func (s *RedisStore) IncrUsage(ctx context.Context, bucket string, amount decimal.Decimal) (decimal.Decimal, error) {
	total, err := s.rdb.IncrByFloat(ctx, s.key("usage", bucket), amount.InexactFloat64()).Result()
	if err != nil {
		return decimal.Zero, fmt.Errorf("redis: incr usage %s: %w", bucket, err)
	}
	return decimal.NewFromFloat(total), nil
}

func (s *RedisStore) GetUsage(ctx context.Context, bucket string) (decimal.Decimal, error) {
	raw, err := s.rdb.Get(ctx, s.key("usage", bucket)).Result()
	if errors.Is(err, redis.Nil) {
		return decimal.Zero, nil
	}
	if err != nil {
		return decimal.Zero, fmt.Errorf("redis: get usage %s: %w", bucket, err)
	}
	total, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("redis: parse usage %s: %w", bucket, err)
	}
	return total, nil
}

func (s *RedisStore) PutAgent(ctx context.Context, a *models.AgentConfig) error {
	if err := s.putJSON(ctx, s.key("agent", a.ID), a); err != nil {
		return err
	}
	if err := s.rdb.SAdd(ctx, s.key("agents"), a.ID).Err(); err != nil {
		return fmt.Errorf("redis: index agent %s: %w", a.ID, err)
	}
	return nil
}

func (s *RedisStore) GetAgent(ctx context.Context, id string) (*models.AgentConfig, error) {
	var a models.AgentConfig
	if err := s.getJSON(ctx, s.key("agent", id), &a); err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *RedisStore) ListAgents(ctx context.Context) ([]*models.AgentConfig, error) {
	ids, err := s.rdb.SMembers(ctx, s.key("agents")).Result()
	if err != nil {
		return nil, fmt.Errorf("redis: list agents: %w", err)
	}
	out := make([]*models.AgentConfig, 0, len(ids))
	for _, id := range ids {
		a, err := s.GetAgent(ctx, id)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

func (s *RedisStore) PutPerformance(ctx context.Context, p *models.AgentPerformance) error {
	return s.putJSON(ctx, s.key("perf", p.AgentID), p)
}

func (s *RedisStore) GetPerformance(ctx context.Context, agentID string) (*models.AgentPerformance, error) {
	var p models.AgentPerformance
	if err := s.getJSON(ctx, s.key("perf", agentID), &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *RedisStore) PutPosition(ctx context.Context, p *models.Position) error {
	raw, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("redis: marshal position %s: %w", p.ID, err)
	}
	if err := s.rdb.HSet(ctx, s.key("pos", p.AgentID), p.ID, raw).Err(); err != nil {
		return fmt.Errorf("redis: set position %s: %w", p.ID, err)
	}
	return nil
}

func (s *RedisStore) ListPositions(ctx context.Context, agentID string) ([]*models.Position, error) {
	vals, err := s.rdb.HGetAll(ctx, s.key("pos", agentID)).Result()
	if err != nil {
		return nil, fmt.Errorf("redis: list positions %s: %w", agentID, err)
	}
	out := make([]*models.Position, 0, len(vals))
	for id, raw := range vals {
		var p models.Position
		if err := json.Unmarshal([]byte(raw), &p); err != nil {
			return nil, fmt.Errorf("redis: unmarshal position %s: %w", id, err)
		}
		out = append(out, &p)
	}
	return out, nil
}

func (s *RedisStore) DeletePosition(ctx context.Context, agentID, positionID string) error {
	n, err := s.rdb.HDel(ctx, s.key("pos", agentID), positionID).Result()
	if err != nil {
		return fmt.Errorf("redis: del position %s: %w", positionID, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *RedisStore) ClearPositions(ctx context.Context, agentID string) (int, error) {
	key := s.key("pos", agentID)
	n, err := s.rdb.HLen(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("redis: count positions %s: %w", agentID, err)
	}
	if err := s.rdb.Del(ctx, key).Err(); err != nil {
		return 0, fmt.Errorf("redis: clear positions %s: %w", agentID, err)
	}
	return int(n), nil
}
