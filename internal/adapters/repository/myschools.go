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

const mySchoolSelect = `
	SELECT ms.id, ms.owner_id, ms.school_id, ms.status, ms.ranking_bucket, ms.rank, ms.notes,
	       ms.prestige, ms.env_fit, ms.location_fit, ms.vibe_fit, ms.created_at,
	       s.id, s.name, s.location_text, s.website, s.env_eng, s.lat, s.lng, s.is_seeded, s.created_at
	FROM my_schools ms
	JOIN schools s ON s.id = ms.school_id`

func scanMySchool(r rowScanner) (*model.MySchool, error) {
	var (
		m                      model.MySchool
		sc                     model.School
		bucket, notes, created sql.NullString
		prestige, envFit       sql.NullInt64
		locFit, vibeFit        sql.NullInt64
		loc, web, env          sql.NullString
		lat, lng               sql.NullFloat64
		schoolCreated          sql.NullString
	)
	err := r.Scan(&m.ID, &m.OwnerID, &m.SchoolID, &m.Status, &bucket, &m.Rank, &notes,
		&prestige, &envFit, &locFit, &vibeFit, &created,
		&sc.ID, &sc.Name, &loc, &web, &env, &lat, &lng, &sc.IsSeeded, &schoolCreated)
	if err != nil {
		return nil, err
	}
	m.RankingBucket = strPtr(bucket)
	m.Notes = strPtr(notes)
	m.Prestige = intPtr(prestige)
	m.EnvFit = intPtr(envFit)
	m.LocationFit = intPtr(locFit)
	m.VibeFit = intPtr(vibeFit)
	if m.CreatedAt, err = mustTS(created); err != nil {
		return nil, err
	}
	sc.LocationText = strPtr(loc)
	sc.Website = strPtr(web)
	sc.EnvEng = strPtr(env)
	sc.Lat = floatPtr(lat)
	sc.Lng = floatPtr(lng)
	if sc.CreatedAt, err = mustTS(schoolCreated); err != nil {
		return nil, err
	}
	m.School = &sc
	return &m, nil
}

// AddMySchool puts a catalog school on the owner's list. Without an explicit
// rank the school goes to the end of the list.
func (s *SQLiteStore) AddMySchool(ctx context.Context, owner string, m model.MySchool) (*model.MySchool, error) {
	const op = "repository.AddMySchool"
	defer observe("add_my_school", time.Now(), nil)

	if err := checkOwner(op, owner); err != nil {
		return nil, err
	}
	if m.SchoolID == "" {
		return nil, types.Invalid(op, "school_id is required")
	}
	if m.ID == "" {
		m.ID = newID()
	}
	if strings.TrimSpace(m.Status) == "" {
		m.Status = model.MySchoolConsidering
	}
	if m.RankingBucket != nil {
		m.RankingBucket = model.NormalizeBucket(*m.RankingBucket)
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = s.now()
	}
	if m.Rank <= 0 {
		if err := s.db.QueryRowContext(ctx,
			`SELECT COALESCE(MAX(rank), 0) + 1 FROM my_schools WHERE owner_id = ? AND rank < ?`,
			owner, model.UnrankedRank).Scan(&m.Rank); err != nil {
			return nil, types.Wrap(op, err)
		}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO my_schools (id, owner_id, school_id, status, ranking_bucket, rank, notes,
		                        prestige, env_fit, location_fit, vibe_fit, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, m.ID, owner, m.SchoolID, strings.TrimSpace(m.Status), nullString(m.RankingBucket), m.Rank, nullString(m.Notes),
		nullInt(model.ClampRating(m.Prestige)), nullInt(model.ClampRating(m.EnvFit)),
		nullInt(model.ClampRating(m.LocationFit)), nullInt(model.ClampRating(m.VibeFit)),
		formatTS(m.CreatedAt))
	if err != nil {
		return nil, classify(op, err)
	}
	return s.GetMySchool(ctx, owner, m.ID)
}

// GetMySchool returns one list entry with its school.
func (s *SQLiteStore) GetMySchool(ctx context.Context, owner, id string) (*model.MySchool, error) {
	const op = "repository.GetMySchool"
	defer observe("get_my_school", time.Now(), nil)

	m, err := scanMySchool(s.db.QueryRowContext(ctx, mySchoolSelect+` WHERE ms.id = ? AND ms.owner_id = ?`, id, owner))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, types.NewKind(op, ErrNotFound)
	}
	if err != nil {
		return nil, types.Wrap(op, err)
	}
	return m, nil
}

// ListMySchools lists the owner's schools.
func (s *SQLiteStore) ListMySchools(ctx context.Context, owner string, f MySchoolFilter) ([]model.MySchool, error) {
	const op = "repository.ListMySchools"
	var n int
	defer observe("list_my_schools", time.Now(), &n)

	query := mySchoolSelect + ` WHERE ms.owner_id = ?`
	args := []any{owner}
	if f.Bucket != "" {
		query += ` AND LOWER(COALESCE(ms.ranking_bucket, '')) = LOWER(?)`
		args = append(args, f.Bucket)
	}
	if f.EnvEng != "" {
		query += ` AND COALESCE(s.env_eng, '') = ?`
		args = append(args, f.EnvEng)
	}
	switch f.Sort {
	case "", SortRank:
		query += ` ORDER BY ms.rank ASC, ms.created_at DESC`
	case SortName:
		query += ` ORDER BY s.name COLLATE NOCASE ASC`
	case SortStatus:
		query += ` ORDER BY ms.status COLLATE NOCASE ASC, ms.rank ASC`
	default:
		return nil, types.Invalid(op, "unknown sort %q", f.Sort)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, types.Wrap(op, err)
	}
	defer rows.Close()

	out := []model.MySchool{}
	for rows.Next() {
		m, err := scanMySchool(rows)
		if err != nil {
			return nil, types.Wrap(op, err)
		}
		out = append(out, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, types.Wrap(op, err)
	}
	n = len(out)
	return out, nil
}

// UpdateMySchool applies p. Fit ratings are clamped to 0..5.
func (s *SQLiteStore) UpdateMySchool(ctx context.Context, owner, id string, p MySchoolPatch) (*model.MySchool, error) {
	const op = "repository.UpdateMySchool"
	defer observe("update_my_school", time.Now(), nil)

	sets := []string{}
	args := []any{}
	if p.Status != nil {
		st := strings.TrimSpace(*p.Status)
		if st == "" {
			return nil, types.Invalid(op, "status must not be empty")
		}
		sets = append(sets, "status = ?")
		args = append(args, st)
	}
	switch {
	case p.ClearBucket:
		sets = append(sets, "ranking_bucket = NULL")
	case p.RankingBucket != nil:
		sets = append(sets, "ranking_bucket = ?")
		args = append(args, nullString(model.NormalizeBucket(*p.RankingBucket)))
	}
	if p.Notes != nil {
		sets = append(sets, "notes = ?")
		args = append(args, nullString(p.Notes))
	}
	for col, v := range map[string]*int{
		"prestige":     p.Prestige,
		"env_fit":      p.EnvFit,
		"location_fit": p.LocationFit,
		"vibe_fit":     p.VibeFit,
	} {
		if v != nil {
			sets = append(sets, col+" = ?")
			args = append(args, nullInt(model.ClampRating(v)))
		}
	}
	if len(sets) == 0 {
		return s.GetMySchool(ctx, owner, id)
	}

	args = append(args, id, owner)
	res, err := s.db.ExecContext(ctx,
		`UPDATE my_schools SET `+strings.Join(sets, ", ")+` WHERE id = ? AND owner_id = ?`, args...)
	if err != nil {
		return nil, classify(op, err)
	}
	if err := expectOne(op, res); err != nil {
		return nil, err
	}
	return s.GetMySchool(ctx, owner, id)
}

// DeleteMySchool removes a list entry together with its applications.
func (s *SQLiteStore) DeleteMySchool(ctx context.Context, owner, id string) error {
	const op = "repository.DeleteMySchool"
	defer observe("delete_my_school", time.Now(), nil)

	res, err := s.db.ExecContext(ctx, `DELETE FROM my_schools WHERE id = ? AND owner_id = ?`, id, owner)
	if err != nil {
		return classify(op, err)
	}
	return expectOne(op, res)
}

// ReorderMySchools sets rank = position+1 for every id. Unknown ids abort
// the whole reorder.
func (s *SQLiteStore) ReorderMySchools(ctx context.Context, owner string, ids []string) (err error) {
	const op = "repository.ReorderMySchools"
	defer observe("reorder_my_schools", time.Now(), nil)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return types.Wrap(op, err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	stmt, err := tx.PrepareContext(ctx, `UPDATE my_schools SET rank = ? WHERE id = ? AND owner_id = ?`)
	if err != nil {
		return types.Wrap(op, err)
	}
	defer stmt.Close()

	seen := make(map[string]struct{}, len(ids))
	for i, id := range ids {
		if _, dup := seen[id]; dup {
			return types.Invalid(op, "duplicate id %q", id)
		}
		seen[id] = struct{}{}
		res, err := stmt.ExecContext(ctx, i+1, id, owner)
		if err != nil {
			return types.Wrap(op, err)
		}
		if err := expectOne(op, res); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return types.Wrap(op, err)
	}
	return nil
}

// CountMySchools counts the owner's list.
func (s *SQLiteStore) CountMySchools(ctx context.Context, owner string) (int, error) {
	defer observe("count_my_schools", time.Now(), nil)

	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM my_schools WHERE owner_id = ?`, owner).Scan(&n)
	return n, types.Wrap("repository.CountMySchools", err)
}
