package importer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/okian/applytrack/internal/domain/model"
	"github.com/okian/applytrack/internal/domain/types"
	"github.com/okian/applytrack/pkg/logger"
)

// Sink is the part of the store the importer writes to.
type Sink interface {
	CreateSchool(ctx context.Context, s model.School) (*model.School, error)
	AddMySchool(ctx context.Context, owner string, m model.MySchool) (*model.MySchool, error)
	CreateApplication(ctx context.Context, owner string, a model.Application) (*model.Application, error)
	CreateTask(ctx context.Context, owner string, t model.Task) (*model.Task, error)
}

// Report counts what an import wrote. Rows that already exist are skipped.
type Report struct {
	Schools      int `json:"schools"`
	MySchools    int `json:"my_schools"`
	Applications int `json:"applications"`
	Tasks        int `json:"tasks"`
	Skipped      int `json:"skipped"`
}

// Decode reads an export document.
func Decode(r io.Reader) (*Export, error) {
	var exp Export
	dec := json.NewDecoder(r)
	if err := dec.Decode(&exp); err != nil {
		return nil, types.WrapKind("importer.Decode", types.ErrInvalidArgument, err)
	}
	return &exp, nil
}

// Import decodes an export from r and writes it for owner, keeping IDs.
// Schools only present as joins are created from the join.
func Import(ctx context.Context, sink Sink, owner string, r io.Reader, log logger.Logger) (Report, error) {
	exp, err := Decode(r)
	if err != nil {
		return Report{}, err
	}
	return Load(ctx, sink, owner, exp, log)
}

// Load writes an already decoded export.
func Load(ctx context.Context, sink Sink, owner string, exp *Export, log logger.Logger) (Report, error) {
	const op = "importer.Load"
	if log == nil {
		log = logger.Nop()
	}
	var rep Report

	write := func(kind, id string, err error, counter *int) error {
		switch {
		case err == nil:
			*counter++
			return nil
		case errors.Is(err, types.ErrConflict):
			rep.Skipped++
			log.Debug(ctx, "row exists, skipped", logger.String("kind", kind), logger.String("id", id))
			return nil
		default:
			return types.Wrap(op, fmt.Errorf("%s %s: %w", kind, id, err))
		}
	}

	schools := make(map[string]model.School)
	order := []string{}
	addSchool := func(sc model.School) {
		if sc.ID == "" {
			return
		}
		if _, ok := schools[sc.ID]; !ok {
			order = append(order, sc.ID)
		}
		schools[sc.ID] = sc
	}
	for _, sc := range exp.Schools {
		addSchool(sc)
	}
	for _, row := range exp.MySchools {
		if sc := row.Schools.Get(); sc != nil {
			if _, ok := schools[sc.ID]; !ok {
				addSchool(*sc)
			}
		}
	}
	for _, id := range order {
		_, err := sink.CreateSchool(ctx, schools[id])
		if err := write("school", id, err, &rep.Schools); err != nil {
			return rep, err
		}
	}

	for _, row := range exp.MySchools {
		m := row.Model()
		m.School = nil
		_, err := sink.AddMySchool(ctx, owner, m)
		if err := write("my_school", m.ID, err, &rep.MySchools); err != nil {
			return rep, err
		}
	}

	for _, row := range exp.Applications {
		a := row.Application()
		a.School = nil
		_, err := sink.CreateApplication(ctx, owner, a)
		if err := write("application", a.ID, err, &rep.Applications); err != nil {
			return rep, err
		}
	}

	for _, row := range exp.Tasks {
		t := row.Task()
		t.Application = nil
		_, err := sink.CreateTask(ctx, owner, t)
		if err := write("task", t.ID, err, &rep.Tasks); err != nil {
			return rep, err
		}
	}

	log.Info(ctx, "import finished",
		logger.String("owner", owner),
		logger.Int("schools", rep.Schools),
		logger.Int("my_schools", rep.MySchools),
		logger.Int("applications", rep.Applications),
		logger.Int("tasks", rep.Tasks),
		logger.Int("skipped", rep.Skipped))
	return rep, nil
}
