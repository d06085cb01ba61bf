package calendar

import (
	"time"

	"github.com/okian/applytrack/internal/domain/dates"
	"github.com/okian/applytrack/internal/domain/model"
)

// DayAgenda lists what is due on one day.
type DayAgenda struct {
	Day          string              `json:"day"`
	Tasks        []model.Task        `json:"tasks"`
	Applications []model.Application `json:"applications"`
}

// Count is the number of agenda items.
func (a DayAgenda) Count() int {
	return len(a.Tasks) + len(a.Applications)
}

// Agenda selects the open tasks due on day and the applications whose
// deadline is day, keeping input order.
func Agenda(day string, tasks []model.Task, apps []model.Application) (DayAgenda, error) {
	d, err := dates.ParseISO(day, time.UTC)
	if err != nil {
		return DayAgenda{}, err
	}
	iso := dates.ISODate(d)

	out := DayAgenda{
		Day:          iso,
		Tasks:        []model.Task{},
		Applications: []model.Application{},
	}
	for _, t := range tasks {
		if !t.Done && t.DueDate != nil && *t.DueDate == iso {
			out.Tasks = append(out.Tasks, t)
		}
	}
	for _, a := range apps {
		if a.DeadlineDate != nil && *a.DeadlineDate == iso {
			out.Applications = append(out.Applications, a)
		}
	}
	return out, nil
}
