package hospital

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/firstaid/firstaid/internal/platform/cache"
	"github.com/firstaid/firstaid/internal/platform/places"
)

const (
	DefaultTTL = 300 * time.Second
	keyPrefix  = "hospitals:"
)

var (
	ErrMissingCoordinates = errors.New("latitude and longitude are required")
	ErrInvalidCoordinates = errors.New("invalid coordinates")
)

// Searcher looks up hospitals around a point. *places.Client satisfies it.
type Searcher interface {
	NearbyHospitals(ctx context.Context, lat, lng float64, radius int) ([]places.Place, error)
}

type Service struct {
	searcher Searcher
	store    cache.Store
	ttl      time.Duration
	radius   int
	logger   zerolog.Logger
}

type Option func(*Service)

func WithTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

func WithRadius(meters int) Option {
	return func(s *Service) {
		if meters > 0 {
			s.radius = meters
		}
	}
}

func WithLogger(l zerolog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

func NewService(searcher Searcher, store cache.Store, opts ...Option) *Service {
	s := &Service{
		searcher: searcher,
		store:    store,
		ttl:      DefaultTTL,
		radius:   places.DefaultRadius,
		logger:   zerolog.Nop(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// ParseCoordinates validates the raw query values. Both must be present,
// numeric and inside WGS84 bounds.
func ParseCoordinates(latRaw, longRaw string) (lat, lng float64, err error) {
	latRaw, longRaw = strings.TrimSpace(latRaw), strings.TrimSpace(longRaw)
	if latRaw == "" || longRaw == "" {
		return 0, 0, ErrMissingCoordinates
	}
	if lat, err = strconv.ParseFloat(latRaw, 64); err != nil {
		return 0, 0, fmt.Errorf("%w: lat %q is not a number", ErrInvalidCoordinates, latRaw)
	}
	if lng, err = strconv.ParseFloat(longRaw, 64); err != nil {
		return 0, 0, fmt.Errorf("%w: long %q is not a number", ErrInvalidCoordinates, longRaw)
	}
	if lat < -90 || lat > 90 {
		return 0, 0, fmt.Errorf("%w: lat must be between -90 and 90", ErrInvalidCoordinates)
	}
	if lng < -180 || lng > 180 {
		return 0, 0, fmt.Errorf("%w: long must be between -180 and 180", ErrInvalidCoordinates)
	}
	return lat, lng, nil
}

// CacheKey is built from the trimmed query strings, so "1.0" and "1" are
// cached separately.
func CacheKey(latRaw, longRaw string) string {
	return keyPrefix + strings.TrimSpace(latRaw) + ":" + strings.TrimSpace(longRaw)
}

// Respond returns the JSON array of hospitals near the given point.
func (s *Service) Respond(ctx context.Context, latRaw, longRaw string) (body []byte, hit bool, err error) {
	lat, lng, err := ParseCoordinates(latRaw, longRaw)
	if err != nil {
		return nil, false, err
	}

	return cache.Fetch(ctx, s.store, CacheKey(latRaw, longRaw), s.ttl, s.logger, func(ctx context.Context) ([]byte, error) {
		found, err := s.searcher.NearbyHospitals(ctx, lat, lng, s.radius)
		if err != nil {
			return nil, err
		}
		hospitals := FromPlaces(found)
		s.logger.Debug().
			Float64("lat", lat).
			Float64("lng", lng).
			Int("results", len(found)).
			Int("hospitals", len(hospitals)).
			Msg("nearby search")
		body, err := json.Marshal(hospitals)
		if err != nil {
			return nil, fmt.Errorf("marshal hospitals: %w", err)
		}
		return body, nil
	})
}
