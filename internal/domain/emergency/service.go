package emergency

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/firstaid/firstaid/internal/platform/cache"
	"github.com/firstaid/firstaid/internal/triage"
)

const (
	DefaultTTL = 600 * time.Second
	keyPrefix  = "classify:"
)

// Recorder persists computed classifications. incident.Service satisfies it.
type Recorder interface {
	Record(ctx context.Context, message string, res *triage.Result, classifier string) error
}

type Service struct {
	assessor  *triage.Assessor
	store     cache.Store
	ttl       time.Duration
	recorders []Recorder
	logger    zerolog.Logger
}

type Option func(*Service)

func WithTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithRecorder adds r to the recorders notified of each computed result.
func WithRecorder(r Recorder) Option {
	return func(s *Service) { s.recorders = append(s.recorders, r) }
}

func WithLogger(l zerolog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

func NewService(assessor *triage.Assessor, store cache.Store, opts ...Option) *Service {
	s := &Service{
		assessor: assessor,
		store:    store,
		ttl:      DefaultTTL,
		logger:   zerolog.Nop(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// CacheKey returns the store key for message.
func CacheKey(message string) string {
	return keyPrefix + triage.Normalize(message)
}

// Respond returns the JSON guidance for message. Identical normalised messages
// get byte-identical bodies until the cached entry expires.
func (s *Service) Respond(ctx context.Context, message string) (body []byte, hit bool, err error) {
	text := triage.Normalize(message)
	if text == "" {
		return nil, false, triage.ErrEmptyInput
	}

	return cache.Fetch(ctx, s.store, CacheKey(text), s.ttl, s.logger, func(ctx context.Context) ([]byte, error) {
		res, err := s.assessor.Assess(ctx, text)
		if err != nil {
			return nil, err
		}
		body, err := json.Marshal(res)
		if err != nil {
			return nil, fmt.Errorf("marshal result: %w", err)
		}
		s.record(ctx, text, res)
		return body, nil
	})
}

func (s *Service) record(ctx context.Context, text string, res *triage.Result) {
	name := s.assessor.ClassifierName()
	for _, r := range s.recorders {
		if err := r.Record(ctx, text, res, name); err != nil {
			s.logger.Warn().Err(err).Str("emergency_type", string(res.EmergencyType)).Msg("failed to record classification")
		}
	}
}
