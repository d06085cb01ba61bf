package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/okian/applytrack/internal/domain/model"
	"github.com/okian/applytrack/internal/domain/types"
)

const schoolCols = `id, name, location_text, website, env_eng, lat, lng, is_seeded, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSchool(r rowScanner) (*model.School, error) {
	var (
		sc       model.School
		loc, web sql.NullString
		env      sql.NullString
		lat, lng sql.NullFloat64
		created  sql.NullString
	)
	if err := r.Scan(&sc.ID, &sc.Name, &loc, &web, &env, &lat, &lng, &sc.IsSeeded, &created); err != nil {
		return nil, err
	}
	sc.LocationText = strPtr(loc)
	sc.Website = strPtr(web)
	sc.EnvEng = strPtr(env)
	sc.Lat = floatPtr(lat)
	sc.Lng = floatPtr(lng)
	t, err := mustTS(created)
	if err != nil {
		return nil, err
	}
	sc.CreatedAt = t
	return &sc, nil
}

// CreateSchool adds a catalog school. A missing ID is generated.
func (s *SQLiteStore) CreateSchool(ctx context.Context, sc model.School) (*model.School, error) {
	const op = "repository.CreateSchool"
	defer observe("create_school", time.Now(), nil)

	sc.Name = strings.TrimSpace(sc.Name)
	if sc.Name == "" {
		return nil, types.Invalid(op, "school name is required")
	}
	if sc.ID == "" {
		sc.ID = newID()
	}
	if sc.CreatedAt.IsZero() {
		sc.CreatedAt = s.now()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO schools (`+schoolCols+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, sc.ID, sc.Name, nullString(sc.LocationText), nullString(sc.Website), nullString(sc.EnvEng),
		nullFloat(sc.Lat), nullFloat(sc.Lng), sc.IsSeeded, formatTS(sc.CreatedAt))
	if err != nil {
		return nil, classify(op, err)
	}
	return s.GetSchool(ctx, sc.ID)
}

// GetSchool returns one catalog school.
func (s *SQLiteStore) GetSchool(ctx context.Context, id string) (*model.School, error) {
	const op = "repository.GetSchool"
	defer observe("get_school", time.Now(), nil)

	sc, err := scanSchool(s.db.QueryRowContext(ctx, `SELECT `+schoolCols+` FROM schools WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, types.NewKind(op, ErrNotFound)
	}
	if err != nil {
		return nil, types.Wrap(op, err)
	}
	return sc, nil
}

// ListSchools lists the catalog, seeded schools first, then by name.
// search matches name or location, case-insensitively.
func (s *SQLiteStore) ListSchools(ctx context.Context, search string, limit int) ([]model.School, error) {
	const op = "repository.ListSchools"
	var n int
	defer observe("list_schools", time.Now(), &n)

	query := `SELECT ` + schoolCols + ` FROM schools`
	args := []any{}
	if search = strings.TrimSpace(search); search != "" {
		query += ` WHERE name LIKE ? OR location_text LIKE ?`
		pattern := "%" + search + "%"
		args = append(args, pattern, pattern)
	}
	query += ` ORDER BY is_seeded DESC, name ASC LIMIT ?`
	args = append(args, limitOr(limit, 500))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, types.Wrap(op, err)
	}
	defer rows.Close()

	out := []model.School{}
	for rows.Next() {
		sc, err := scanSchool(rows)
		if err != nil {
			return nil, types.Wrap(op, err)
		}
		out = append(out, *sc)
	}
	if err := rows.Err(); err != nil {
		return nil, types.Wrap(op, err)
	}
	n = len(out)
	return out, nil
}
