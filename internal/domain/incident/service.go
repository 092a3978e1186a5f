package incident

import (
	"context"
	"errors"
	"fmt"

	"github.com/firstaid/firstaid/internal/triage"
)

// ErrInvalidFilter marks List and Stats arguments the caller must fix.
var ErrInvalidFilter = errors.New("invalid filter")

// MaxMessageLen bounds the stored message; longer input is truncated.
const MaxMessageLen = 2000

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Record stores one computed classification.
func (s *Service) Record(ctx context.Context, message string, res *triage.Result, classifier string) error {
	if res == nil {
		return fmt.Errorf("result is required")
	}
	if message == "" {
		return fmt.Errorf("message is required")
	}
	if r := []rune(message); len(r) > MaxMessageLen {
		message = string(r[:MaxMessageLen])
	}
	inc := &Incident{
		Message:       message,
		EmergencyType: string(res.EmergencyType),
		Confidence:    res.Confidence,
		Classifier:    classifier,
	}
	return s.repo.Create(ctx, inc)
}

func (s *Service) List(ctx context.Context, f Filter, limit, offset int) ([]*Incident, int, error) {
	if err := validateFilter(f); err != nil {
		return nil, 0, err
	}
	return s.repo.List(ctx, f, limit, offset)
}

func (s *Service) Stats(ctx context.Context, f Filter) ([]TypeCount, error) {
	if err := validateFilter(f); err != nil {
		return nil, err
	}
	return s.repo.CountByType(ctx, f)
}

// validateFilter accepts a known category or "unknown" as the type, and a
// since strictly before until when both are set.
func validateFilter(f Filter) error {
	if f.EmergencyType != "" && f.EmergencyType != string(triage.CategoryUnknown) {
		if _, ok := triage.ParseCategory(f.EmergencyType); !ok {
			return fmt.Errorf("%w: unknown emergency type %q", ErrInvalidFilter, f.EmergencyType)
		}
	}
	if f.Since != nil && f.Until != nil && !f.Since.Before(*f.Until) {
		return fmt.Errorf("%w: since must be before until", ErrInvalidFilter)
	}
	return nil
}
