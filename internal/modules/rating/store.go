// README: Rating aggregates backed by one Redis hash per vehicle.
package rating

import (
	"context"
	"errors"
	"strconv"

	"github.com/redis/go-redis/v9"

	"citycab/internal/types"
)

const keyPrefix = "rating:"

type Store struct {
	redis *redis.Client
}

func NewStore(redis *redis.Client) *Store {
	return &Store{redis: redis}
}

func key(vehicleID types.ID) string { return keyPrefix + string(vehicleID) }

func (s *Store) AddRating(ctx context.Context, vehicleID types.ID, stars int) error {
	if !Valid(stars) {
		return ErrInvalidRating
	}
	k := key(vehicleID)
	_, err := s.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HIncrBy(ctx, k, "sum", int64(stars))
		pipe.HIncrBy(ctx, k, "count", 1)
		return nil
	})
	return err
}

func (s *Store) Summary(ctx context.Context, vehicleID types.ID) (Summary, error) {
	vals, err := s.redis.HMGet(ctx, key(vehicleID), "sum", "count").Result()
	if err != nil {
		return Summary{}, err
	}
	var out Summary
	if out.Sum, err = parseField(vals[0]); err != nil {
		return Summary{}, err
	}
	if out.Count, err = parseField(vals[1]); err != nil {
		return Summary{}, err
	}
	return out, nil
}

func (s *Store) AverageRating(ctx context.Context, vehicleID types.ID) (float64, error) {
	sum, err := s.Summary(ctx, vehicleID)
	if err != nil {
		return 0, err
	}
	return sum.Average(), nil
}

func parseField(v interface{}) (int64, error) {
	if v == nil {
		return 0, nil
	}
	str, ok := v.(string)
	if !ok {
		return 0, errors.New("unexpected rating field type")
	}
	return strconv.ParseInt(str, 10, 64)
}
