package importer

import (
	"time"

	"github.com/okian/applytrack/internal/domain/model"
)

// Export is the document produced by the hosted backend export.
type Export struct {
	Schools      []model.School   `json:"schools"`
	MySchools    []MySchoolRow    `json:"my_schools"`
	Applications []ApplicationRow `json:"applications"`
	Tasks        []TaskRow        `json:"tasks"`
}

// MySchoolRow is a my_schools row with its school join.
type MySchoolRow struct {
	model.MySchool
	Schools OneOrMany[model.School] `json:"schools"`
}

type mySchoolJoin struct {
	ID      string                     `json:"id"`
	Schools OneOrMany[model.SchoolRef] `json:"schools"`
}

// ApplicationRow is an applications row with its my_schools join.
type ApplicationRow struct {
	ID           string                  `json:"id"`
	OwnerID      string                  `json:"owner_id"`
	MySchoolID   *string                 `json:"my_school_id"`
	Platform     *string                 `json:"platform"`
	DecisionType *string                 `json:"decision_type"`
	DeadlineDate *string                 `json:"deadline_date"`
	Status       *string                 `json:"status"`
	PortalURL    *string                 `json:"portal_url"`
	SubmittedAt  *time.Time              `json:"submitted_at"`
	DecidedAt    *time.Time              `json:"decided_at"`
	CreatedAt    time.Time               `json:"created_at"`
	MySchools    OneOrMany[mySchoolJoin] `json:"my_schools"`
}

// TaskRow is a tasks row with its applications join.
type TaskRow struct {
	ID            string                    `json:"id"`
	OwnerID       string                    `json:"owner_id"`
	Title         string                    `json:"title"`
	DueDate       *string                   `json:"due_date"`
	Done          bool                      `json:"done"`
	CompletedAt   *time.Time                `json:"completed_at"`
	ApplicationID *string                   `json:"application_id"`
	CreatedAt     time.Time                 `json:"created_at"`
	Applications  OneOrMany[ApplicationRow] `json:"applications"`
}

// Application converts the row to the domain shape, flattening the
// my_schools -> schools join into a school reference.
func (r ApplicationRow) Application() model.Application {
	a := model.Application{
		ID:           r.ID,
		OwnerID:      r.OwnerID,
		MySchoolID:   r.MySchoolID,
		Platform:     r.Platform,
		DecisionType: r.DecisionType,
		DeadlineDate: r.DeadlineDate,
		PortalURL:    r.PortalURL,
		SubmittedAt:  r.SubmittedAt,
		DecidedAt:    r.DecidedAt,
		CreatedAt:    r.CreatedAt,
	}
	if r.Status != nil {
		a.Status = *r.Status
	}
	if ms := r.MySchools.Get(); ms != nil {
		if a.MySchoolID == nil && ms.ID != "" {
			id := ms.ID
			a.MySchoolID = &id
		}
		a.School = ms.Schools.Get()
	}
	return a
}

// Task converts the row to the domain shape.
func (r TaskRow) Task() model.Task {
	t := model.Task{
		ID:            r.ID,
		OwnerID:       r.OwnerID,
		Title:         r.Title,
		DueDate:       r.DueDate,
		Done:          r.Done,
		CompletedAt:   r.CompletedAt,
		ApplicationID: r.ApplicationID,
		CreatedAt:     r.CreatedAt,
	}
	if app := r.Applications.Get(); app != nil {
		a := app.Application()
		t.Application = &a
		if t.ApplicationID == nil && a.ID != "" {
			id := a.ID
			t.ApplicationID = &id
		}
	}
	return t
}

// Model converts the row to the domain shape.
func (r MySchoolRow) Model() model.MySchool {
	m := r.MySchool
	if sc := r.Schools.Get(); sc != nil {
		m.School = sc
		if m.SchoolID == "" {
			m.SchoolID = sc.ID
		}
	}
	return m
}
