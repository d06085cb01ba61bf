// Package repository is the owner-scoped record store behind the dashboard.
package repository

import (
	"context"
	"time"

	"github.com/okian/applytrack/internal/domain/model"
)

// Sort orders for ListMySchools.
const (
	SortRank   = "rank"
	SortName   = "name"
	SortStatus = "status"
)

// MySchoolFilter narrows ListMySchools. Empty fields do not filter.
type MySchoolFilter struct {
	Bucket string
	EnvEng string
	Sort   string
}

// MySchoolPatch lists the fields to change. Nil fields are left alone.
// Set a Clear* flag to null a nullable column.
type MySchoolPatch struct {
	Status        *string
	RankingBucket *string
	ClearBucket   bool
	Notes         *string
	Prestige      *int
	EnvFit        *int
	LocationFit   *int
	VibeFit       *int
}

// ApplicationPatch lists the application fields to change.
type ApplicationPatch struct {
	Platform     *string
	DecisionType *string
	DeadlineDate *string // empty string clears the deadline
	Status       *string
	PortalURL    *string
}

// TaskPatch lists the task fields to change.
type TaskPatch struct {
	Title         *string
	DueDate       *string // empty string clears the due date
	ApplicationID *string // empty string detaches the task
}

// Store provides owner-scoped access to schools, applications and tasks.
// Dates are ISO strings; ranges are inclusive and an empty bound is open.
type Store interface {
	CreateSchool(ctx context.Context, s model.School) (*model.School, error)
	GetSchool(ctx context.Context, id string) (*model.School, error)
	ListSchools(ctx context.Context, search string, limit int) ([]model.School, error)

	AddMySchool(ctx context.Context, owner string, m model.MySchool) (*model.MySchool, error)
	GetMySchool(ctx context.Context, owner, id string) (*model.MySchool, error)
	ListMySchools(ctx context.Context, owner string, f MySchoolFilter) ([]model.MySchool, error)
	UpdateMySchool(ctx context.Context, owner, id string, p MySchoolPatch) (*model.MySchool, error)
	DeleteMySchool(ctx context.Context, owner, id string) error
	// ReorderMySchools sets rank = position+1 for every id, atomically.
	ReorderMySchools(ctx context.Context, owner string, ids []string) error
	CountMySchools(ctx context.Context, owner string) (int, error)

	CreateApplication(ctx context.Context, owner string, a model.Application) (*model.Application, error)
	GetApplication(ctx context.Context, owner, id string) (*model.Application, error)
	ListApplications(ctx context.Context, owner string, limit int) ([]model.Application, error)
	ListApplicationsForMySchool(ctx context.Context, owner, mySchoolID string) ([]model.Application, error)
	// SaveApplication applies p on top of the stored row. Submitted and
	// decided timestamps are stamped with now on first transition only.
	SaveApplication(ctx context.Context, owner, id string, p ApplicationPatch, now time.Time) (*model.Application, error)
	DeleteApplication(ctx context.Context, owner, id string) error
	CountApplications(ctx context.Context, owner string) (int, error)
	StatusCounts(ctx context.Context, owner string) ([]model.StatusCount, error)
	DeadlinesBetween(ctx context.Context, owner, from, to string) ([]string, error)
	ApplicationsDueOn(ctx context.Context, owner, day string, limit int) ([]model.Application, error)
	SubmittedSince(ctx context.Context, owner string, since time.Time) ([]time.Time, error)

	CreateTask(ctx context.Context, owner string, t model.Task) (*model.Task, error)
	GetTask(ctx context.Context, owner, id string) (*model.Task, error)
	ListTasksForApplication(ctx context.Context, owner, applicationID string) ([]model.Task, error)
	SetTaskDone(ctx context.Context, owner, id string, done bool, now time.Time) (*model.Task, error)
	UpdateTask(ctx context.Context, owner, id string, p TaskPatch) (*model.Task, error)
	DeleteTask(ctx context.Context, owner, id string) error
	CountOpenTasks(ctx context.Context, owner string) (int, error)
	OpenTasksDueBetween(ctx context.Context, owner, from, to string, limit int) ([]model.Task, error)
	OpenTasksDueOn(ctx context.Context, owner, day string, limit int) ([]model.Task, error)
	OpenTaskDuesBetween(ctx context.Context, owner, from, to string) ([]string, error)
	CompletedSince(ctx context.Context, owner string, since time.Time) ([]time.Time, error)

	Close() error
}
