// README: Fleet repository backed by a Redis list of JSON vehicles.
package fleet

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const vehiclesKey = "fleet:vehicles"

type Store struct {
	redis *redis.Client
	key   string
}

func NewStore(redis *redis.Client) *Store {
	return &Store{redis: redis, key: vehiclesKey}
}

// Load returns the saved fleet in registration order.
func (s *Store) Load(ctx context.Context) ([]Vehicle, error) {
	raw, err := s.redis.LRange(ctx, s.key, 0, -1).Result()
	if err != nil {
		return nil, err
	}
	out := make([]Vehicle, 0, len(raw))
	for i, r := range raw {
		var v Vehicle
		if err := json.Unmarshal([]byte(r), &v); err != nil {
			return nil, fmt.Errorf("decode vehicle %d: %w", i, err)
		}
		out = append(out, v)
	}
	return out, nil
}

// Save replaces the stored fleet atomically.
func (s *Store) Save(ctx context.Context, vehicles []Vehicle) error {
	members := make([]interface{}, len(vehicles))
	for i, v := range vehicles {
		b, err := json.Marshal(v)
		if err != nil {
			return err
		}
		members[i] = string(b)
	}
	_, err := s.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, s.key)
		if len(members) > 0 {
			pipe.RPush(ctx, s.key, members...)
		}
		return nil
	})
	return err
}
