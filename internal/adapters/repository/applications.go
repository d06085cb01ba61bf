package repository

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/okian/applytrack/internal/domain/model"
	"github.com/okian/applytrack/internal/domain/types"
)

const applicationSelect = `
	SELECT a.id, a.owner_id, a.my_school_id, a.platform, a.decision_type, a.deadline_date,
	       a.status, a.portal_url, a.submitted_at, a.decided_at, a.created_at,
	       s.id, s.name
	FROM applications a
	LEFT JOIN my_schools ms ON ms.id = a.my_school_id
	LEFT JOIN schools s ON s.id = ms.school_id`

func scanApplication(r rowScanner) (*model.Application, error) {
	var (
		a                            model.Application
		mySchool, platform, decision sql.NullString
		deadline, status, portal     sql.NullString
		submitted, decided, created  sql.NullString
		schoolID, schoolName         sql.NullString
	)
	err := r.Scan(&a.ID, &a.OwnerID, &mySchool, &platform, &decision, &deadline,
		&status, &portal, &submitted, &decided, &created, &schoolID, &schoolName)
	if err != nil {
		return nil, err
	}
	a.MySchoolID = strPtr(mySchool)
	a.Platform = strPtr(platform)
	a.DecisionType = strPtr(decision)
	a.DeadlineDate = strPtr(deadline)
	a.Status = status.String
	a.PortalURL = strPtr(portal)
	if a.SubmittedAt, err = parseTS(submitted); err != nil {
		return nil, err
	}
	if a.DecidedAt, err = parseTS(decided); err != nil {
		return nil, err
	}
	if a.CreatedAt, err = mustTS(created); err != nil {
		return nil, err
	}
	if schoolID.Valid {
		a.School = &model.SchoolRef{ID: schoolID.String, Name: schoolName.String}
	}
	return &a, nil
}

func (s *SQLiteStore) queryApplications(ctx context.Context, op, query string, args ...any) ([]model.Application, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, types.Wrap(op, err)
	}
	defer rows.Close()

	out := []model.Application{}
	for rows.Next() {
		a, err := scanApplication(rows)
		if err != nil {
			return nil, types.Wrap(op, err)
		}
		out = append(out, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, types.Wrap(op, err)
	}
	return out, nil
}

// CreateApplication stores a new application. An empty status becomes
// "Not started"; creating it as Submitted or Decided stamps the timestamp.
func (s *SQLiteStore) CreateApplication(ctx context.Context, owner string, a model.Application) (*model.Application, error) {
	const op = "repository.CreateApplication"
	defer observe("create_application", time.Now(), nil)

	if err := checkOwner(op, owner); err != nil {
		return nil, err
	}
	deadline, err := isoOrNil(op, a.DeadlineDate)
	if err != nil {
		return nil, err
	}
	if a.ID == "" {
		a.ID = newID()
	}
	now := s.now()
	if a.CreatedAt.IsZero() {
		a.CreatedAt = now
	}
	a.ApplyStatus(a.Status, now)

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO applications (id, owner_id, my_school_id, platform, decision_type, deadline_date,
		                          status, portal_url, submitted_at, decided_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, a.ID, owner, nullString(a.MySchoolID), nullString(a.Platform), nullString(a.DecisionType), deadline,
		a.Status, nullString(a.PortalURL), nullTS(a.SubmittedAt), nullTS(a.DecidedAt), formatTS(a.CreatedAt))
	if err != nil {
		return nil, classify(op, err)
	}
	return s.GetApplication(ctx, owner, a.ID)
}

// GetApplication returns one application with its school.
func (s *SQLiteStore) GetApplication(ctx context.Context, owner, id string) (*model.Application, error) {
	const op = "repository.GetApplication"
	defer observe("get_application", time.Now(), nil)

	a, err := scanApplication(s.db.QueryRowContext(ctx, applicationSelect+` WHERE a.id = ? AND a.owner_id = ?`, id, owner))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, types.NewKind(op, ErrNotFound)
	}
	if err != nil {
		return nil, types.Wrap(op, err)
	}
	return a, nil
}

// ListApplications lists the owner's applications by deadline, undated last.
func (s *SQLiteStore) ListApplications(ctx context.Context, owner string, limit int) ([]model.Application, error) {
	var n int
	defer observe("list_applications", time.Now(), &n)

	out, err := s.queryApplications(ctx, "repository.ListApplications", applicationSelect+`
		WHERE a.owner_id = ?
		ORDER BY a.deadline_date IS NULL, a.deadline_date ASC, a.created_at ASC
		LIMIT ?`, owner, limitOr(limit, 500))
	n = len(out)
	return out, err
}

// ListApplicationsForMySchool lists the applications of one list entry.
func (s *SQLiteStore) ListApplicationsForMySchool(ctx context.Context, owner, mySchoolID string) ([]model.Application, error) {
	var n int
	defer observe("list_applications_for_my_school", time.Now(), &n)

	out, err := s.queryApplications(ctx, "repository.ListApplicationsForMySchool", applicationSelect+`
		WHERE a.owner_id = ? AND a.my_school_id = ?
		ORDER BY a.deadline_date IS NULL, a.deadline_date ASC`, owner, mySchoolID)
	n = len(out)
	return out, err
}

// SaveApplication reads the stored row, applies p and writes it back in one
// transaction.
func (s *SQLiteStore) SaveApplication(ctx context.Context, owner, id string, p ApplicationPatch, now time.Time) (_ *model.Application, err error) {
	const op = "repository.SaveApplication"
	defer observe("save_application", time.Now(), nil)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, types.Wrap(op, err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	cur, err := scanApplication(tx.QueryRowContext(ctx, applicationSelect+` WHERE a.id = ? AND a.owner_id = ?`, id, owner))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, types.NewKind(op, ErrNotFound)
	}
	if err != nil {
		return nil, types.Wrap(op, err)
	}

	if p.Platform != nil {
		cur.Platform = p.Platform
	}
	if p.DecisionType != nil {
		cur.DecisionType = p.DecisionType
	}
	if p.PortalURL != nil {
		cur.PortalURL = p.PortalURL
	}
	deadline, err := isoOrNil(op, cur.DeadlineDate)
	if p.DeadlineDate != nil {
		deadline, err = isoOrNil(op, p.DeadlineDate)
	}
	if err != nil {
		return nil, err
	}
	status := cur.Status
	if p.Status != nil {
		status = *p.Status
	}
	cur.ApplyStatus(status, now)

	_, err = tx.ExecContext(ctx, `
		UPDATE applications
		SET platform = ?, decision_type = ?, deadline_date = ?, status = ?, portal_url = ?,
		    submitted_at = ?, decided_at = ?
		WHERE id = ? AND owner_id = ?
	`, nullString(cur.Platform), nullString(cur.DecisionType), deadline, cur.Status, nullString(cur.PortalURL),
		nullTS(cur.SubmittedAt), nullTS(cur.DecidedAt), id, owner)
	if err != nil {
		return nil, classify(op, err)
	}
	if err = tx.Commit(); err != nil {
		return nil, types.Wrap(op, err)
	}
	return s.GetApplication(ctx, owner, id)
}

// DeleteApplication removes an application. Its tasks stay, detached.
func (s *SQLiteStore) DeleteApplication(ctx context.Context, owner, id string) error {
	const op = "repository.DeleteApplication"
	defer observe("delete_application", time.Now(), nil)

	res, err := s.db.ExecContext(ctx, `DELETE FROM applications WHERE id = ? AND owner_id = ?`, id, owner)
	if err != nil {
		return classify(op, err)
	}
	return expectOne(op, res)
}

// CountApplications counts the owner's applications.
func (s *SQLiteStore) CountApplications(ctx context.Context, owner string) (int, error) {
	defer observe("count_applications", time.Now(), nil)

	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM applications WHERE owner_id = ?`, owner).Scan(&n)
	return n, types.Wrap("repository.CountApplications", err)
}

// StatusCounts is the status histogram. Rows without a status count as
// "Unknown". Larger slices come first, ties by name.
func (s *SQLiteStore) StatusCounts(ctx context.Context, owner string) ([]model.StatusCount, error) {
	const op = "repository.StatusCounts"
	var n int
	defer observe("status_counts", time.Now(), &n)

	rows, err := s.db.QueryContext(ctx,
		`SELECT status, COUNT(*) FROM applications WHERE owner_id = ? GROUP BY status`, owner)
	if err != nil {
		return nil, types.Wrap(op, err)
	}
	defer rows.Close()

	merged := map[string]int{}
	for rows.Next() {
		var (
			status sql.NullString
			count  int
		)
		if err := rows.Scan(&status, &count); err != nil {
			return nil, types.Wrap(op, err)
		}
		merged[model.HistogramStatus(strPtr(status))] += count
	}
	if err := rows.Err(); err != nil {
		return nil, types.Wrap(op, err)
	}

	out := make([]model.StatusCount, 0, len(merged))
	for name, v := range merged {
		out = append(out, model.StatusCount{Name: name, Value: v})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Value != out[j].Value {
			return out[i].Value > out[j].Value
		}
		return out[i].Name < out[j].Name
	})
	n = len(out)
	return out, nil
}

// DeadlinesBetween returns the deadline dates inside [from, to].
func (s *SQLiteStore) DeadlinesBetween(ctx context.Context, owner, from, to string) ([]string, error) {
	const op = "repository.DeadlinesBetween"
	var n int
	defer observe("deadlines_between", time.Now(), &n)

	query, args := betweenClause(`SELECT deadline_date FROM applications WHERE owner_id = ? AND deadline_date IS NOT NULL`,
		"deadline_date", owner, from, to)
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, types.Wrap(op, err)
	}
	out, err := scanStrings(rows)
	n = len(out)
	return out, types.Wrap(op, err)
}

// ApplicationsDueOn lists the applications whose deadline is day.
func (s *SQLiteStore) ApplicationsDueOn(ctx context.Context, owner, day string, limit int) ([]model.Application, error) {
	var n int
	defer observe("applications_due_on", time.Now(), &n)

	out, err := s.queryApplications(ctx, "repository.ApplicationsDueOn", applicationSelect+`
		WHERE a.owner_id = ? AND a.deadline_date = ?
		ORDER BY a.created_at ASC
		LIMIT ?`, owner, day, limitOr(limit, 50))
	n = len(out)
	return out, err
}

// SubmittedSince returns submission timestamps at or after since.
func (s *SQLiteStore) SubmittedSince(ctx context.Context, owner string, since time.Time) ([]time.Time, error) {
	const op = "repository.SubmittedSince"
	var n int
	defer observe("submitted_since", time.Now(), &n)

	rows, err := s.db.QueryContext(ctx,
		`SELECT submitted_at FROM applications WHERE owner_id = ? AND submitted_at >= ? ORDER BY submitted_at`,
		owner, formatTS(since))
	if err != nil {
		return nil, types.Wrap(op, err)
	}
	out, err := scanTimes(rows)
	n = len(out)
	return out, types.Wrap(op, err)
}

// betweenClause appends inclusive bounds on col. Empty bounds are open.
func betweenClause(base, col, owner, from, to string) (string, []any) {
	var b strings.Builder
	b.WriteString(base)
	args := []any{owner}
	if from != "" {
		b.WriteString(" AND " + col + " >= ?")
		args = append(args, from)
	}
	if to != "" {
		b.WriteString(" AND " + col + " <= ?")
		args = append(args, to)
	}
	b.WriteString(" ORDER BY " + col)
	return b.String(), args
}
