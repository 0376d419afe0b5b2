package transcripts

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"time"

	"transcript-analyzer/internal/shared/storage/db"
)

// SQLRepo implements Repo on Postgres or SQLite.
type SQLRepo struct {
	DB      *sql.DB
	Dialect db.Dialect
}

// NewSQLRepo constructs a SQLRepo for the dialect.
func NewSQLRepo(database *sql.DB, dialect db.Dialect) *SQLRepo {
	return &SQLRepo{DB: database, Dialect: dialect}
}

const upsertAnalysisQuery = `
INSERT INTO transcript_analyses (id, summary, action_items, created_at)
VALUES ($1, $2, $3, $4)
ON CONFLICT (id) DO UPDATE
SET summary = excluded.summary,
    action_items = excluded.action_items`

const selectAnalysisQuery = `
SELECT id, summary, action_items, created_at
FROM transcript_analyses
WHERE id = $1
LIMIT 1`

// Save upserts the analysis keyed by id.
func (r *SQLRepo) Save(ctx context.Context, analysis Analysis) error {
	items := analysis.ActionItems
	if items == nil {
		items = []string{}
	}
	payload, err := json.Marshal(items)
	if err != nil {
		return &RepositoryError{Op: "save", Err: fmt.Errorf("encode action items: %w", err)}
	}

	var createdAt any = analysis.CreatedAt.UTC()
	if r.Dialect == db.SQLite {
		createdAt = analysis.CreatedAt.UTC().Format(time.RFC3339Nano)
	}

	if _, err := r.DB.ExecContext(ctx, r.rebind(upsertAnalysisQuery),
		analysis.ID,
		analysis.Summary,
		string(payload),
		createdAt,
	); err != nil {
		return &RepositoryError{Op: "save", Err: err}
	}
	return nil
}

// GetByID loads one analysis.
func (r *SQLRepo) GetByID(ctx context.Context, id string) (Analysis, error) {
	var (
		a         Analysis
		items     string
		createdAt any
	)
	err := r.DB.QueryRowContext(ctx, r.rebind(selectAnalysisQuery), id).Scan(&a.ID, &a.Summary, &items, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Analysis{}, ErrNotFound
	}
	if err != nil {
		return Analysis{}, &RepositoryError{Op: "get", Err: err}
	}
	if err := json.Unmarshal([]byte(items), &a.ActionItems); err != nil {
		return Analysis{}, &RepositoryError{Op: "get", Err: fmt.Errorf("decode action items: %w", err)}
	}
	if a.ActionItems == nil {
		a.ActionItems = []string{}
	}
	a.CreatedAt, err = parseTimestamp(createdAt)
	if err != nil {
		return Analysis{}, &RepositoryError{Op: "get", Err: err}
	}
	return a, nil
}

var pgPlaceholder = regexp.MustCompile(`\$(\d+)`)

// rebind rewrites $N placeholders to SQLite's ?N form.
func (r *SQLRepo) rebind(query string) string {
	if r.Dialect != db.SQLite {
		return query
	}
	return pgPlaceholder.ReplaceAllString(query, "?$1")
}

func parseTimestamp(raw any) (time.Time, error) {
	switch v := raw.(type) {
	case time.Time:
		return v.UTC(), nil
	case string:
		return parseTimestampString(v)
	case []byte:
		return parseTimestampString(string(v))
	case nil:
		return time.Time{}, nil
	default:
		return time.Time{}, fmt.Errorf("unexpected created_at type %T", raw)
	}
}

func parseTimestampString(s string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02 15:04:05.999999999-07:00", "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("parse created_at %q", s)
}
