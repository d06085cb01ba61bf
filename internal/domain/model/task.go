package model

import "time"

// Task is a to-do item, optionally tied to an application.
type Task struct {
	ID            string       `json:"id"`
	OwnerID       string       `json:"owner_id"`
	Title         string       `json:"title"`
	DueDate       *string      `json:"due_date"`
	Done          bool         `json:"done"`
	CompletedAt   *time.Time   `json:"completed_at"`
	ApplicationID *string      `json:"application_id"`
	CreatedAt     time.Time    `json:"created_at"`
	Application   *Application `json:"application,omitempty"`
}

// SetDone flips the completion flag keeping CompletedAt consistent: a done
// task carries the completion instant, an open task carries none.
func (t *Task) SetDone(done bool, now time.Time) {
	t.Done = done
	if !done {
		t.CompletedAt = nil
		return
	}
	if t.CompletedAt == nil {
		c := now
		t.CompletedAt = &c
	}
}

// School returns the school the task belongs to through its application.
func (t Task) School() *SchoolRef {
	if t.Application == nil {
		return nil
	}
	return t.Application.School
}
