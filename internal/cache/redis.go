package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// generationTTL outlives any seat map entry so a bumped generation is still
// visible to a writer holding an older one.
const generationTTL = 24 * time.Hour

// setIfGeneration writes KEYS[1] only while KEYS[2] still holds ARGV[1].
// A missing generation key counts as 0.
var setIfGeneration = redis.NewScript(`
local current = redis.call('GET', KEYS[2]) or '0'
if current ~= ARGV[1] then
	return 0
end
redis.call('SET', KEYS[1], ARGV[2], 'PX', ARGV[3])
return 1
`)

type redisSeatMapCache struct {
	rdb *redis.Client
	ttl time.Duration
	log *zap.Logger
}

func NewRedis(rdb *redis.Client, ttl time.Duration, log *zap.Logger) SeatMapCache {
	return &redisSeatMapCache{
		rdb: rdb,
		ttl: ttl,
		log: log.With(zap.String("cache", "seat_map")),
	}
}

func Key(screeningID uuid.UUID) string {
	return fmt.Sprintf("seats:%s", screeningID.String())
}

func GenerationKey(screeningID uuid.UUID) string {
	return fmt.Sprintf("seats:%s:gen", screeningID.String())
}

func (c *redisSeatMapCache) Get(ctx context.Context, screeningID uuid.UUID) ([]SeatState, bool, error) {
	raw, err := c.rdb.Get(ctx, Key(screeningID)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get seat map: %w", err)
	}

	var seats []SeatState
	if err := json.Unmarshal([]byte(raw), &seats); err != nil {
		c.log.Warn("Dropping corrupt seat map entry",
			zap.Error(err),
			zap.String("screening_id", screeningID.String()),
		)
		return nil, false, nil
	}

	return seats, true, nil
}

func (c *redisSeatMapCache) Generation(ctx context.Context, screeningID uuid.UUID) (int64, error) {
	gen, err := c.rdb.Get(ctx, GenerationKey(screeningID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("get seat map generation: %w", err)
	}
	return gen, nil
}

func (c *redisSeatMapCache) Set(ctx context.Context, screeningID uuid.UUID, generation int64, seats []SeatState) error {
	body, err := json.Marshal(seats)
	if err != nil {
		return fmt.Errorf("marshal seat map: %w", err)
	}

	keys := []string{Key(screeningID), GenerationKey(screeningID)}
	stored, err := setIfGeneration.Run(ctx, c.rdb, keys, generation, string(body), c.ttl.Milliseconds()).Int64()
	if err != nil {
		return fmt.Errorf("set seat map: %w", err)
	}
	if stored == 0 {
		c.log.Debug("Skipping stale seat map",
			zap.String("screening_id", screeningID.String()),
			zap.Int64("generation", generation),
		)
	}
	return nil
}

func (c *redisSeatMapCache) Invalidate(ctx context.Context, screeningIDs ...uuid.UUID) error {
	if len(screeningIDs) == 0 {
		return nil
	}

	keys := make([]string, 0, len(screeningIDs))
	genKeys := make([]string, 0, len(screeningIDs))
	seen := make(map[uuid.UUID]struct{}, len(screeningIDs))
	for _, id := range screeningIDs {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		keys = append(keys, Key(id))
		genKeys = append(genKeys, GenerationKey(id))
	}

	_, err := c.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, genKey := range genKeys {
			pipe.Incr(ctx, genKey)
			pipe.Expire(ctx, genKey, generationTTL)
		}
		pipe.Del(ctx, keys...)
		return nil
	})
	if err != nil {
		return fmt.Errorf("invalidate seat map: %w", err)
	}
	return nil
}
