package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/okian/applytrack/internal/adapters/http/api"
	"github.com/okian/applytrack/internal/adapters/repository"
	service "github.com/okian/applytrack/internal/app"
	"github.com/okian/applytrack/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

var fixedNow = time.Date(2024, time.March, 15, 12, 0, 0, 0, time.UTC)

type client struct {
	t   *testing.T
	mux *http.ServeMux
}

func (c client) do(method, path, body string, headers ...string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, http.NoBody)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	c.mux.ServeHTTP(w, req)
	return w
}

func decode[T any](w *httptest.ResponseRecorder) T {
	var v T
	So(json.Unmarshal(w.Body.Bytes(), &v), ShouldBeNil)
	return v
}

func newClient(t *testing.T) client {
	ctx := context.Background()
	clock := func() time.Time { return fixedNow }
	store, err := repository.Open(ctx, filepath.Join(t.TempDir(), "api.db"), repository.WithClock(clock))
	So(err, ShouldBeNil)
	t.Cleanup(func() { _ = store.Close() })

	svc := service.New(
		service.WithStore(store),
		service.WithClock(clock),
		service.WithLocation(time.UTC),
		service.WithLogger(logger.Nop()),
	)
	So(svc.Start(ctx), ShouldBeNil)

	mux := http.NewServeMux()
	api.NewServer(svc, svc, api.WithDefaultOwner("me")).Register(ctx, mux)
	return client{t: t, mux: mux}
}

func TestHealthAndMetrics(t *testing.T) {
	Convey("Given a registered server", t, func() {
		c := newClient(t)

		Convey("When /healthz is requested", func() {
			w := c.do(http.MethodGet, "/healthz", "")

			Convey("Then it reports ok", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Body.String(), ShouldContainSubstring, `"status":"ok"`)
			})
		})

		Convey("When /metrics is requested after some traffic", func() {
			c.do(http.MethodGet, "/healthz", "")
			w := c.do(http.MethodGet, "/metrics", "")

			Convey("Then the request counter is exported", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Body.String(), ShouldContainSubstring, "applytrack_tracker_http_requests_total")
			})
		})

		Convey("When /stats is requested", func() {
			w := c.do(http.MethodGet, "/stats", "")

			Convey("Then the service stats are returned", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				stats := decode[map[string]any](w)
				So(stats["started"], ShouldEqual, true)
			})
		})

		Convey("When a route is called with the wrong method", func() {
			w := c.do(http.MethodPost, "/healthz", "")
			So(w.Code, ShouldEqual, http.StatusMethodNotAllowed)
		})
	})
}

func TestRecordRoutes(t *testing.T) {
	Convey("Given a school on the list with an application", t, func() {
		c := newClient(t)

		w := c.do(http.MethodPost, "/schools", `{"name":"Reed College","lat":45.48,"lng":-122.63}`)
		So(w.Code, ShouldEqual, http.StatusCreated)
		school := decode[map[string]any](w)

		w = c.do(http.MethodPost, "/my-schools", `{"school_id":"`+school["id"].(string)+`","ranking_bucket":"match"}`)
		So(w.Code, ShouldEqual, http.StatusCreated)
		mySchool := decode[map[string]any](w)
		mySchoolID := mySchool["id"].(string)
		So(mySchool["ranking_bucket"], ShouldEqual, "Match")

		w = c.do(http.MethodPost, "/applications", `{"my_school_id":"`+mySchoolID+`","deadline_date":"2024-03-20"}`)
		So(w.Code, ShouldEqual, http.StatusCreated)
		app := decode[map[string]any](w)
		appID := app["id"].(string)
		So(app["status"], ShouldEqual, "Not started")

		Convey("When the catalog is searched", func() {
			w := c.do(http.MethodGet, "/schools?q=reed", "")
			list := decode[[]map[string]any](w)

			Convey("Then the school is found", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(len(list), ShouldEqual, 1)
			})
		})

		Convey("When the list is read by another owner", func() {
			w := c.do(http.MethodGet, "/my-schools", "", api.OwnerHeader, "someone-else")
			list := decode[[]map[string]any](w)

			Convey("Then it is empty", func() {
				So(list, ShouldBeEmpty)
			})
		})

		Convey("When the list entry is patched", func() {
			w := c.do(http.MethodPatch, "/my-schools/"+mySchoolID, `{"ranking_bucket":"","prestige":9}`)
			got := decode[map[string]any](w)

			Convey("Then the bucket is cleared and the rating clamped", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(got["ranking_bucket"], ShouldBeNil)
				So(got["prestige"], ShouldEqual, 5)
			})
		})

		Convey("When the application is submitted", func() {
			w := c.do(http.MethodPatch, "/applications/"+appID, `{"status":"Submitted"}`)
			got := decode[map[string]any](w)

			Convey("Then the submission is stamped", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(got["status"], ShouldEqual, "Submitted")
				So(got["submitted_at"], ShouldNotBeNil)
			})
		})

		Convey("When the school's applications are listed", func() {
			w := c.do(http.MethodGet, "/my-schools/"+mySchoolID+"/applications", "")
			list := decode[[]map[string]any](w)

			Convey("Then the application carries its school", func() {
				So(len(list), ShouldEqual, 1)
				So(list[0]["school"].(map[string]any)["name"], ShouldEqual, "Reed College")
			})
		})

		Convey("When a task is created and completed", func() {
			w := c.do(http.MethodPost, "/tasks", `{"title":"Essay","due_date":"2024-03-18","application_id":"`+appID+`"}`)
			So(w.Code, ShouldEqual, http.StatusCreated)
			task := decode[map[string]any](w)
			taskID := task["id"].(string)

			w = c.do(http.MethodPatch, "/tasks/"+taskID, `{"done":true,"title":"Final essay"}`)
			got := decode[map[string]any](w)

			Convey("Then both fields change", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(got["done"], ShouldEqual, true)
				So(got["title"], ShouldEqual, "Final essay")
				So(got["completed_at"], ShouldNotBeNil)
			})

			Convey("Then the application lists the task", func() {
				w := c.do(http.MethodGet, "/applications/"+appID+"/tasks", "")
				list := decode[[]map[string]any](w)
				So(len(list), ShouldEqual, 1)
			})

			Convey("Then deleting it leaves nothing behind", func() {
				So(c.do(http.MethodDelete, "/tasks/"+taskID, "").Code, ShouldEqual, http.StatusNoContent)
				So(c.do(http.MethodDelete, "/tasks/"+taskID, "").Code, ShouldEqual, http.StatusNotFound)
			})
		})

		Convey("When the list entry is deleted", func() {
			So(c.do(http.MethodDelete, "/my-schools/"+mySchoolID, "").Code, ShouldEqual, http.StatusNoContent)

			Convey("Then its application goes with it", func() {
				w := c.do(http.MethodGet, "/applications/"+appID, "")
				So(w.Code, ShouldEqual, http.StatusNotFound)
				So(decode[map[string]any](w)["code"], ShouldEqual, "not_found")
			})
		})

		Convey("When the same school is added twice", func() {
			w := c.do(http.MethodPost, "/my-schools", `{"school_id":"`+school["id"].(string)+`"}`)

			Convey("Then the conflict is reported", func() {
				So(w.Code, ShouldEqual, http.StatusConflict)
			})
		})

		Convey("When a body carries unknown fields", func() {
			w := c.do(http.MethodPost, "/tasks", `{"title":"x","color":"red"}`)

			Convey("Then it is rejected", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				So(decode[map[string]any](w)["code"], ShouldEqual, "invalid_argument")
			})
		})

		Convey("When the list is reordered with an empty body", func() {
			w := c.do(http.MethodPut, "/my-schools/order", `{"ids":[]}`)
			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When the list is reordered", func() {
			w := c.do(http.MethodPut, "/my-schools/order", `{"ids":["`+mySchoolID+`"]}`)
			So(w.Code, ShouldEqual, http.StatusNoContent)
		})
	})
}

func TestDashboardRoutes(t *testing.T) {
	Convey("Given a tracker with a deadline and an overdue task", t, func() {
		c := newClient(t)

		w := c.do(http.MethodPost, "/schools", `{"name":"Bard College"}`)
		schoolID := decode[map[string]any](w)["id"].(string)
		w = c.do(http.MethodPost, "/my-schools", `{"school_id":"`+schoolID+`"}`)
		mySchoolID := decode[map[string]any](w)["id"].(string)
		c.do(http.MethodPost, "/applications", `{"my_school_id":"`+mySchoolID+`","deadline_date":"2024-03-20"}`)
		c.do(http.MethodPost, "/tasks", `{"title":"Transcript","due_date":"2024-03-12"}`)

		Convey("When the overview is requested", func() {
			w := c.do(http.MethodGet, "/dashboard/overview", "")
			got := decode[service.Overview](w)

			Convey("Then the overdue task is bucketed", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(got.Today, ShouldEqual, "2024-03-15")
				So(len(got.Due.Overdue), ShouldEqual, 1)
				So(got.Colleges, ShouldEqual, 1)
			})
		})

		Convey("When the calendar is requested", func() {
			w := c.do(http.MethodGet, "/dashboard/calendar?view=month&month=2024-03", "")
			got := decode[service.CalendarView](w)

			Convey("Then it spans 42 days with counts", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(len(got.Days), ShouldEqual, 42)
				So(got.From, ShouldEqual, "2024-02-25")
				total := 0
				for _, d := range got.Days {
					total += d.TasksDue + d.AppsDue
				}
				So(total, ShouldEqual, 2)
			})
		})

		Convey("When the calendar is requested with a selected day", func() {
			w := c.do(http.MethodGet, "/dashboard/calendar?view=month&month=2024-03&selected=2024-03-20", "")
			got := decode[service.CalendarView](w)

			Convey("Then only that cell is flagged", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(got.Selected, ShouldEqual, "2024-03-20")
				flagged := []string{}
				for _, d := range got.Days {
					if d.Selected {
						flagged = append(flagged, d.Date)
					}
				}
				So(flagged, ShouldResemble, []string{"2024-03-20"})
			})
		})

		Convey("When the selected day is malformed", func() {
			w := c.do(http.MethodGet, "/dashboard/calendar?view=month&selected=March+20", "")
			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When the calendar view is unknown", func() {
			w := c.do(http.MethodGet, "/dashboard/calendar?view=yearly", "")
			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When the agenda is requested", func() {
			w := c.do(http.MethodGet, "/dashboard/agenda?day=2024-03-20", "")
			got := decode[service.AgendaView](w)

			Convey("Then the deadline is listed", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(len(got.Applications), ShouldEqual, 1)
				So(got.Applications[0].DueLabel, ShouldEqual, "due in 5d")
			})
		})

		Convey("When the agenda day is missing", func() {
			So(c.do(http.MethodGet, "/dashboard/agenda", "").Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When progress is requested", func() {
			w := c.do(http.MethodGet, "/dashboard/progress", "")
			got := decode[service.ProgressView](w)

			Convey("Then twelve weeks are returned", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(len(got.Points), ShouldEqual, 12)
			})
		})

		Convey("When map pins are requested", func() {
			w := c.do(http.MethodGet, "/map/pins", "")
			got := decode[service.MapView](w)

			Convey("Then the school without coordinates is missing", func() {
				So(got.Pins, ShouldBeEmpty)
				So(len(got.Missing), ShouldEqual, 1)
			})
		})
	})

	Convey("Given a service that is not running", t, func() {
		svc := service.New(service.WithLogger(logger.Nop()))
		mux := http.NewServeMux()
		api.NewServer(svc, svc).Register(context.Background(), mux)

		Convey("Then dashboard calls fail with 500", func() {
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/dashboard/overview", http.NoBody))
			So(w.Code, ShouldEqual, http.StatusInternalServerError)
		})
	})
}
