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

const taskSelect = `
	SELECT t.id, t.owner_id, t.title, t.due_date, t.done, t.completed_at, t.application_id, t.created_at,
	       a.id, a.platform, a.decision_type, a.deadline_date, a.status, a.my_school_id,
	       s.id, s.name
	FROM tasks t
	LEFT JOIN applications a ON a.id = t.application_id
	LEFT JOIN my_schools ms ON ms.id = a.my_school_id
	LEFT JOIN schools s ON s.id = ms.school_id`

func scanTask(r rowScanner) (*model.Task, error) {
	var (
		t                            model.Task
		due, completed, appRef       sql.NullString
		created                      sql.NullString
		appID, platform, decision    sql.NullString
		deadline, status, mySchoolID sql.NullString
		schoolID, schoolName         sql.NullString
	)
	err := r.Scan(&t.ID, &t.OwnerID, &t.Title, &due, &t.Done, &completed, &appRef, &created,
		&appID, &platform, &decision, &deadline, &status, &mySchoolID,
		&schoolID, &schoolName)
	if err != nil {
		return nil, err
	}
	t.DueDate = strPtr(due)
	t.ApplicationID = strPtr(appRef)
	if t.CompletedAt, err = parseTS(completed); err != nil {
		return nil, err
	}
	if t.CreatedAt, err = mustTS(created); err != nil {
		return nil, err
	}
	if appID.Valid {
		app := &model.Application{
			ID:           appID.String,
			OwnerID:      t.OwnerID,
			MySchoolID:   strPtr(mySchoolID),
			Platform:     strPtr(platform),
			DecisionType: strPtr(decision),
			DeadlineDate: strPtr(deadline),
			Status:       status.String,
		}
		if schoolID.Valid {
			app.School = &model.SchoolRef{ID: schoolID.String, Name: schoolName.String}
		}
		t.Application = app
	}
	return &t, nil
}

func (s *SQLiteStore) queryTasks(ctx context.Context, op, query string, args ...any) ([]model.Task, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, types.Wrap(op, err)
	}
	defer rows.Close()

	out := []model.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, types.Wrap(op, err)
		}
		out = append(out, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, types.Wrap(op, err)
	}
	return out, nil
}

// CreateTask stores a task. The completion timestamp is made consistent
// with the done flag.
func (s *SQLiteStore) CreateTask(ctx context.Context, owner string, t model.Task) (*model.Task, error) {
	const op = "repository.CreateTask"
	defer observe("create_task", time.Now(), nil)

	if err := checkOwner(op, owner); err != nil {
		return nil, err
	}
	t.Title = strings.TrimSpace(t.Title)
	if t.Title == "" {
		return nil, types.Invalid(op, "task title is required")
	}
	due, err := isoOrNil(op, t.DueDate)
	if err != nil {
		return nil, err
	}
	if t.ID == "" {
		t.ID = newID()
	}
	now := s.now()
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	t.SetDone(t.Done, now)

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO tasks (id, owner_id, title, due_date, done, completed_at, application_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, t.ID, owner, t.Title, due, t.Done, nullTS(t.CompletedAt), nullString(t.ApplicationID), formatTS(t.CreatedAt))
	if err != nil {
		return nil, classify(op, err)
	}
	return s.GetTask(ctx, owner, t.ID)
}

// GetTask returns one task with its application and school.
func (s *SQLiteStore) GetTask(ctx context.Context, owner, id string) (*model.Task, error) {
	const op = "repository.GetTask"
	defer observe("get_task", time.Now(), nil)

	t, err := scanTask(s.db.QueryRowContext(ctx, taskSelect+` WHERE t.id = ? AND t.owner_id = ?`, id, owner))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, types.NewKind(op, ErrNotFound)
	}
	if err != nil {
		return nil, types.Wrap(op, err)
	}
	return t, nil
}

// ListTasksForApplication lists an application's tasks, open ones first,
// then by due date with undated last.
func (s *SQLiteStore) ListTasksForApplication(ctx context.Context, owner, applicationID string) ([]model.Task, error) {
	var n int
	defer observe("list_tasks_for_application", time.Now(), &n)

	out, err := s.queryTasks(ctx, "repository.ListTasksForApplication", taskSelect+`
		WHERE t.owner_id = ? AND t.application_id = ?
		ORDER BY t.done ASC, t.due_date IS NULL, t.due_date ASC, t.created_at ASC`, owner, applicationID)
	n = len(out)
	return out, err
}

// SetTaskDone marks a task done (stamping now) or open (clearing the stamp).
func (s *SQLiteStore) SetTaskDone(ctx context.Context, owner, id string, done bool, now time.Time) (*model.Task, error) {
	const op = "repository.SetTaskDone"
	defer observe("set_task_done", time.Now(), nil)

	t := model.Task{}
	t.SetDone(done, now)
	res, err := s.db.ExecContext(ctx,
		`UPDATE tasks SET done = ?, completed_at = ? WHERE id = ? AND owner_id = ?`,
		t.Done, nullTS(t.CompletedAt), id, owner)
	if err != nil {
		return nil, classify(op, err)
	}
	if err := expectOne(op, res); err != nil {
		return nil, err
	}
	return s.GetTask(ctx, owner, id)
}

// UpdateTask applies p.
func (s *SQLiteStore) UpdateTask(ctx context.Context, owner, id string, p TaskPatch) (*model.Task, error) {
	const op = "repository.UpdateTask"
	defer observe("update_task", time.Now(), nil)

	sets := []string{}
	args := []any{}
	if p.Title != nil {
		title := strings.TrimSpace(*p.Title)
		if title == "" {
			return nil, types.Invalid(op, "task title is required")
		}
		sets = append(sets, "title = ?")
		args = append(args, title)
	}
	if p.DueDate != nil {
		due, err := isoOrNil(op, p.DueDate)
		if err != nil {
			return nil, err
		}
		sets = append(sets, "due_date = ?")
		args = append(args, due)
	}
	if p.ApplicationID != nil {
		sets = append(sets, "application_id = ?")
		args = append(args, nullString(p.ApplicationID))
	}
	if len(sets) == 0 {
		return s.GetTask(ctx, owner, id)
	}

	args = append(args, id, owner)
	res, err := s.db.ExecContext(ctx,
		`UPDATE tasks SET `+strings.Join(sets, ", ")+` WHERE id = ? AND owner_id = ?`, args...)
	if err != nil {
		return nil, classify(op, err)
	}
	if err := expectOne(op, res); err != nil {
		return nil, err
	}
	return s.GetTask(ctx, owner, id)
}

// DeleteTask removes a task.
func (s *SQLiteStore) DeleteTask(ctx context.Context, owner, id string) error {
	const op = "repository.DeleteTask"
	defer observe("delete_task", time.Now(), nil)

	res, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ? AND owner_id = ?`, id, owner)
	if err != nil {
		return classify(op, err)
	}
	return expectOne(op, res)
}

// CountOpenTasks counts tasks not yet done.
func (s *SQLiteStore) CountOpenTasks(ctx context.Context, owner string) (int, error) {
	defer observe("count_open_tasks", time.Now(), nil)

	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tasks WHERE owner_id = ? AND done = 0`, owner).Scan(&n)
	return n, types.Wrap("repository.CountOpenTasks", err)
}

// OpenTasksDueBetween lists open tasks due inside [from, to] by due date.
func (s *SQLiteStore) OpenTasksDueBetween(ctx context.Context, owner, from, to string, limit int) ([]model.Task, error) {
	var n int
	defer observe("open_tasks_due_between", time.Now(), &n)

	query := taskSelect + ` WHERE t.owner_id = ? AND t.done = 0 AND t.due_date IS NOT NULL`
	args := []any{owner}
	if from != "" {
		query += ` AND t.due_date >= ?`
		args = append(args, from)
	}
	if to != "" {
		query += ` AND t.due_date <= ?`
		args = append(args, to)
	}
	query += ` ORDER BY t.due_date ASC, t.created_at ASC LIMIT ?`
	args = append(args, limitOr(limit, 500))

	out, err := s.queryTasks(ctx, "repository.OpenTasksDueBetween", query, args...)
	n = len(out)
	return out, err
}

// OpenTasksDueOn lists open tasks due on day.
func (s *SQLiteStore) OpenTasksDueOn(ctx context.Context, owner, day string, limit int) ([]model.Task, error) {
	var n int
	defer observe("open_tasks_due_on", time.Now(), &n)

	out, err := s.queryTasks(ctx, "repository.OpenTasksDueOn", taskSelect+`
		WHERE t.owner_id = ? AND t.done = 0 AND t.due_date = ?
		ORDER BY t.created_at ASC
		LIMIT ?`, owner, day, limitOr(limit, 50))
	n = len(out)
	return out, err
}

// OpenTaskDuesBetween returns the due dates of open tasks inside [from, to].
func (s *SQLiteStore) OpenTaskDuesBetween(ctx context.Context, owner, from, to string) ([]string, error) {
	const op = "repository.OpenTaskDuesBetween"
	var n int
	defer observe("open_task_dues_between", time.Now(), &n)

	query, args := betweenClause(`SELECT due_date FROM tasks WHERE owner_id = ? AND done = 0 AND due_date IS NOT NULL`,
		"due_date", owner, from, to)
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, types.Wrap(op, err)
	}
	out, err := scanStrings(rows)
	n = len(out)
	return out, types.Wrap(op, err)
}

// CompletedSince returns completion timestamps at or after since.
func (s *SQLiteStore) CompletedSince(ctx context.Context, owner string, since time.Time) ([]time.Time, error) {
	const op = "repository.CompletedSince"
	var n int
	defer observe("completed_since", time.Now(), &n)

	rows, err := s.db.QueryContext(ctx,
		`SELECT completed_at FROM tasks WHERE owner_id = ? AND done = 1 AND completed_at >= ? ORDER BY completed_at`,
		owner, formatTS(since))
	if err != nil {
		return nil, types.Wrap(op, err)
	}
	out, err := scanTimes(rows)
	n = len(out)
	return out, types.Wrap(op, err)
}
