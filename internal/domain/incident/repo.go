package incident

import (
	"context"
)

type Repository interface {
	Create(ctx context.Context, inc *Incident) error
	List(ctx context.Context, f Filter, limit, offset int) ([]*Incident, int, error)
	CountByType(ctx context.Context, f Filter) ([]TypeCount, error)
}
