package repository

import (
	"context"
	"database/sql"
	_ "embed"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/okian/applytrack/internal/domain/dates"
	"github.com/okian/applytrack/internal/domain/types"
	"github.com/okian/applytrack/pkg/logger"
	"github.com/okian/applytrack/pkg/metrics"
)

//go:embed schema.sql
var schema string

// Fixed-width UTC layout so stored timestamps compare lexically.
const tsLayout = "2006-01-02T15:04:05.000000000Z07:00"

// SQLiteStore implements Store on a SQLite database file.
type SQLiteStore struct {
	db           *sql.DB
	log          logger.Logger
	now          func() time.Time
	maxOpenConns int
}

var _ Store = (*SQLiteStore)(nil)

// Open opens (creating if needed) the database at path and applies the schema.
// Use ":memory:" only in tests with WithMaxOpenConns(1).
func Open(ctx context.Context, path string, opts ...Option) (*SQLiteStore, error) {
	const op = "repository.Open"
	s := &SQLiteStore{
		log:          logger.Nop(),
		now:          time.Now,
		maxOpenConns: 4,
	}
	for _, opt := range opts {
		opt(s)
	}
	if path == "" {
		return nil, types.Invalid(op, "empty database path")
	}
	if path != ":memory:" {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, types.Wrap(op, err)
			}
		}
	}

	// Read-modify-write transactions take the write lock up front so two of
	// them cannot deadlock on the lock upgrade.
	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on&_busy_timeout=5000&_txlock=immediate")
	if err != nil {
		return nil, types.Wrap(op, err)
	}
	db.SetMaxOpenConns(s.maxOpenConns)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, types.Wrap(op, err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, types.Wrap(op, err)
	}
	s.db = db
	s.log.Info(ctx, "store opened", logger.String("path", path))
	return s, nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// observe records latency and returned rows for one operation.
func observe(op string, started time.Time, rows *int) {
	n := 0
	if rows != nil {
		n = *rows
	}
	metrics.ObserveStoreQuery(op, started, n)
}

func newID() string {
	return uuid.NewString()
}

func formatTS(t time.Time) string {
	return t.UTC().Format(tsLayout)
}

func nullTS(t *time.Time) any {
	if t == nil {
		return nil
	}
	return formatTS(*t)
}

func parseTS(ns sql.NullString) (*time.Time, error) {
	if !ns.Valid || ns.String == "" {
		return nil, nil
	}
	t, err := time.Parse(tsLayout, ns.String)
	if err != nil {
		// rows written by other tools may use plain RFC 3339
		t, err = time.Parse(time.RFC3339Nano, ns.String)
		if err != nil {
			return nil, err
		}
	}
	return &t, nil
}

func mustTS(ns sql.NullString) (time.Time, error) {
	t, err := parseTS(ns)
	if err != nil || t == nil {
		return time.Time{}, err
	}
	return *t, nil
}

func nullString(p *string) any {
	if p == nil {
		return nil
	}
	v := strings.TrimSpace(*p)
	if v == "" {
		return nil
	}
	return v
}

func strPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	v := ns.String
	return &v
}

func nullInt(p *int) any {
	if p == nil {
		return nil
	}
	return *p
}

func intPtr(ni sql.NullInt64) *int {
	if !ni.Valid {
		return nil
	}
	v := int(ni.Int64)
	return &v
}

func floatPtr(nf sql.NullFloat64) *float64 {
	if !nf.Valid {
		return nil
	}
	v := nf.Float64
	return &v
}

func nullFloat(p *float64) any {
	if p == nil {
		return nil
	}
	return *p
}

// isoOrNil validates an optional ISO date. Empty text means null.
func isoOrNil(op string, p *string) (any, error) {
	if p == nil || strings.TrimSpace(*p) == "" {
		return nil, nil
	}
	d, err := dates.ParseISO(*p, time.UTC)
	if err != nil {
		return nil, types.WrapKind(op, ErrInvalidArgument, err)
	}
	return dates.ISODate(d), nil
}

func checkOwner(op, owner string) error {
	if strings.TrimSpace(owner) == "" {
		return types.Invalid(op, "missing owner")
	}
	return nil
}

// expectOne turns a zero-row write into ErrNotFound.
func expectOne(op string, res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return types.Wrap(op, err)
	}
	if n == 0 {
		return types.NewKind(op, ErrNotFound)
	}
	return nil
}

func limitOr(limit, def int) int {
	if limit <= 0 {
		return def
	}
	return limit
}

// scanStrings reads a single text column, skipping NULLs.
func scanStrings(rows *sql.Rows) ([]string, error) {
	defer rows.Close()
	var out []string
	for rows.Next() {
		var ns sql.NullString
		if err := rows.Scan(&ns); err != nil {
			return nil, err
		}
		if ns.Valid && ns.String != "" {
			out = append(out, ns.String)
		}
	}
	return out, rows.Err()
}

// scanTimes reads a single timestamp column, skipping NULLs.
func scanTimes(rows *sql.Rows) ([]time.Time, error) {
	defer rows.Close()
	var out []time.Time
	for rows.Next() {
		var ns sql.NullString
		if err := rows.Scan(&ns); err != nil {
			return nil, err
		}
		t, err := parseTS(ns)
		if err != nil {
			return nil, err
		}
		if t != nil {
			out = append(out, *t)
		}
	}
	return out, rows.Err()
}
