package cache

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
)

// ComputeFunc produces the value to store on a miss.
type ComputeFunc func(ctx context.Context) ([]byte, error)

// Fetch returns the value stored under key, or runs compute and stores its
// result for ttl. hit reports whether the value came from the store.
//
// The store is best-effort: read and write failures are logged at warn and
// never returned. Errors from compute are returned unchanged and nothing is
// stored.
func Fetch(ctx context.Context, s Store, key string, ttl time.Duration, logger zerolog.Logger, compute ComputeFunc) (value []byte, hit bool, err error) {
	cached, err := s.Get(ctx, key)
	switch {
	case err == nil:
		return cached, true, nil
	case !errors.Is(err, ErrMiss):
		logger.Warn().Err(err).Str("key", key).Msg("cache read failed")
	}

	value, err = compute(ctx)
	if err != nil {
		return nil, false, err
	}

	if err := s.SetEX(ctx, key, value, ttl); err != nil {
		logger.Warn().Err(err).Str("key", key).Msg("cache write failed")
	}
	return value, false, nil
}
