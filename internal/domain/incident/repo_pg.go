package incident

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const table = "incidents"

var columns = []string{"id", "message", "emergency_type", "confidence", "classifier", "created_at"}

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type repoPG struct{ db queryable }

// NewRepoPG returns a Repository backed by PostgreSQL. db is usually a
// *pgxpool.Pool.
func NewRepoPG(db queryable) Repository { return &repoPG{db: db} }

func applyFilter(b sq.SelectBuilder, f Filter) sq.SelectBuilder {
	if f.EmergencyType != "" {
		b = b.Where(sq.Eq{"emergency_type": f.EmergencyType})
	}
	if f.Since != nil {
		b = b.Where(sq.GtOrEq{"created_at": *f.Since})
	}
	if f.Until != nil {
		b = b.Where(sq.Lt{"created_at": *f.Until})
	}
	return b
}

func insertQuery(inc *Incident) sq.InsertBuilder {
	return psql.Insert(table).
		Columns("id", "message", "emergency_type", "confidence", "classifier").
		Values(inc.ID, inc.Message, inc.EmergencyType, inc.Confidence, inc.Classifier).
		Suffix("RETURNING created_at")
}

func listQuery(f Filter, limit, offset int) sq.SelectBuilder {
	return applyFilter(psql.Select(columns...).From(table), f).
		OrderBy("created_at DESC", "id").
		Limit(uint64(limit)).
		Offset(uint64(offset))
}

func countQuery(f Filter) sq.SelectBuilder {
	return applyFilter(psql.Select("COUNT(*)").From(table), f)
}

func countByTypeQuery(f Filter) sq.SelectBuilder {
	return applyFilter(psql.Select("emergency_type", "COUNT(*)").From(table), f).
		GroupBy("emergency_type").
		OrderBy("COUNT(*) DESC", "emergency_type")
}

func (r *repoPG) Create(ctx context.Context, inc *Incident) error {
	if inc.ID == uuid.Nil {
		inc.ID = uuid.New()
	}
	query, args, err := insertQuery(inc).ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	if err := r.db.QueryRow(ctx, query, args...).Scan(&inc.CreatedAt); err != nil {
		return fmt.Errorf("insert incident: %w", err)
	}
	return nil
}

func (r *repoPG) List(ctx context.Context, f Filter, limit, offset int) ([]*Incident, int, error) {
	query, args, err := countQuery(f).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build count: %w", err)
	}
	var total int
	if err := r.db.QueryRow(ctx, query, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count incidents: %w", err)
	}

	query, args, err = listQuery(f, limit, offset).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list: %w", err)
	}
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list incidents: %w", err)
	}
	defer rows.Close()

	items := []*Incident{}
	for rows.Next() {
		var inc Incident
		if err := rows.Scan(&inc.ID, &inc.Message, &inc.EmergencyType, &inc.Confidence, &inc.Classifier, &inc.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("scan incident: %w", err)
		}
		items = append(items, &inc)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate incidents: %w", err)
	}
	return items, total, nil
}

func (r *repoPG) CountByType(ctx context.Context, f Filter) ([]TypeCount, error) {
	query, args, err := countByTypeQuery(f).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build stats: %w", err)
	}
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("count incidents by type: %w", err)
	}
	defer rows.Close()

	counts := []TypeCount{}
	for rows.Next() {
		var tc TypeCount
		if err := rows.Scan(&tc.EmergencyType, &tc.Count); err != nil {
			return nil, fmt.Errorf("scan type count: %w", err)
		}
		counts = append(counts, tc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate type counts: %w", err)
	}
	return counts, nil
}
