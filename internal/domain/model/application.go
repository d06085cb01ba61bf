package model

import (
	"strings"
	"time"
)

// Application statuses. Status is free text; these are the conventional values.
const (
	StatusNotStarted = "Not started"
	StatusInProgress = "In progress"
	StatusSubmitted  = "Submitted"
	StatusDecided    = "Decided"

	// StatusUnknown labels rows without a status in histograms.
	StatusUnknown = "Unknown"
)

// Application is one application record for a school on the owner's list.
type Application struct {
	ID           string     `json:"id"`
	OwnerID      string     `json:"owner_id"`
	MySchoolID   *string    `json:"my_school_id"`
	Platform     *string    `json:"platform"`
	DecisionType *string    `json:"decision_type"`
	DeadlineDate *string    `json:"deadline_date"`
	Status       string     `json:"status"`
	PortalURL    *string    `json:"portal_url"`
	SubmittedAt  *time.Time `json:"submitted_at"`
	DecidedAt    *time.Time `json:"decided_at"`
	CreatedAt    time.Time  `json:"created_at"`
	School       *SchoolRef `json:"school,omitempty"`
}

// NormalizeStatus trims s and defaults empty text to StatusNotStarted.
func NormalizeStatus(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return StatusNotStarted
	}
	return s
}

// ApplyStatus sets the status and stamps SubmittedAt/DecidedAt on the first
// transition into Submitted/Decided. Timestamps already set are never
// overwritten, and moving to an earlier status keeps them.
func (a *Application) ApplyStatus(status string, now time.Time) {
	a.Status = NormalizeStatus(status)
	switch a.Status {
	case StatusSubmitted:
		if a.SubmittedAt == nil {
			t := now
			a.SubmittedAt = &t
		}
	case StatusDecided:
		if a.DecidedAt == nil {
			t := now
			a.DecidedAt = &t
		}
	}
}

// HistogramStatus is the label the status histogram files a row under.
func HistogramStatus(status *string) string {
	if status == nil || strings.TrimSpace(*status) == "" {
		return StatusUnknown
	}
	return *status
}

// StatusCount is one slice of the status histogram.
type StatusCount struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}
