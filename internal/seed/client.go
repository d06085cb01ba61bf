package seed

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// ownerHeader scopes every request to one owner.
const ownerHeader = "X-Owner-ID"

// APIError is a non-success response.
type APIError struct {
	Method  string
	Path    string
	Status  int
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s %s: %d %s: %s", e.Method, e.Path, e.Status, e.Code, e.Message)
}

// Client talks to the HTTP API as one owner.
type Client struct {
	http  *http.Client
	base  string
	owner string
}

// NewClient creates a client with the given request timeout.
func NewClient(baseURL, owner string, timeout time.Duration) *Client {
	return &Client{
		http:  &http.Client{Timeout: timeout},
		base:  baseURL,
		owner: owner,
	}
}

// do sends body as JSON, checks the status and decodes the response into
// out when out is non-nil.
func (c *Client) do(ctx context.Context, method, path string, body, out any, want int) error {
	var rd io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		rd = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, rd)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.owner != "" {
		req.Header.Set(ownerHeader, c.owner)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != want {
		apiErr := &APIError{Method: method, Path: path, Status: resp.StatusCode}
		_ = json.Unmarshal(data, apiErr)
		return apiErr
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode %s %s: %w", method, path, err)
	}
	return nil
}

// Health checks /healthz.
func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/healthz", nil, nil, http.StatusOK)
}

type idResponse struct {
	ID string `json:"id"`
}

// CreateSchool adds a catalog school.
func (c *Client) CreateSchool(ctx context.Context, s SchoolSeed) error {
	req := map[string]any{"id": s.ID, "name": s.Name, "location_text": s.Location}
	if s.Lat != nil && s.Lng != nil {
		req["lat"], req["lng"] = *s.Lat, *s.Lng
	}
	return c.do(ctx, http.MethodPost, "/schools", req, nil, http.StatusCreated)
}

// AddMySchool puts a school on the list and returns the entry ID.
func (c *Client) AddMySchool(ctx context.Context, it Item) (string, error) {
	req := map[string]any{
		"school_id": it.School.ID,
		"status":    it.Status,
		"prestige":  it.Prestige,
	}
	if it.Bucket != "" {
		req["ranking_bucket"] = it.Bucket
	}
	var out idResponse
	err := c.do(ctx, http.MethodPost, "/my-schools", req, &out, http.StatusCreated)
	return out.ID, err
}

// CreateApplication creates an in-progress application for a list entry.
func (c *Client) CreateApplication(ctx context.Context, mySchoolID string, a AppSeed) (string, error) {
	req := map[string]any{
		"my_school_id":  mySchoolID,
		"platform":      a.Platform,
		"decision_type": a.DecisionType,
		"deadline_date": a.Deadline,
		"status":        "In progress",
	}
	var out idResponse
	err := c.do(ctx, http.MethodPost, "/applications", req, &out, http.StatusCreated)
	return out.ID, err
}

// SetApplicationStatus patches the status of an application.
func (c *Client) SetApplicationStatus(ctx context.Context, id, status string) error {
	return c.do(ctx, http.MethodPatch, "/applications/"+url.PathEscape(id),
		map[string]any{"status": status}, nil, http.StatusOK)
}

// CreateTask creates an open task. applicationID may be empty.
func (c *Client) CreateTask(ctx context.Context, applicationID string, t TaskSeed) (string, error) {
	req := map[string]any{"title": t.Title, "due_date": t.Due}
	if applicationID != "" {
		req["application_id"] = applicationID
	}
	var out idResponse
	err := c.do(ctx, http.MethodPost, "/tasks", req, &out, http.StatusCreated)
	return out.ID, err
}

// SetTaskDone toggles a task.
func (c *Client) SetTaskDone(ctx context.Context, id string, done bool) error {
	return c.do(ctx, http.MethodPatch, "/tasks/"+url.PathEscape(id),
		map[string]any{"done": done}, nil, http.StatusOK)
}

// Overview mirrors the dashboard overview.
type Overview struct {
	Today        string `json:"today"`
	Colleges     int    `json:"colleges"`
	Applications int    `json:"applications"`
	OpenTasks    int    `json:"open_tasks"`
	Due          struct {
		Overdue []json.RawMessage `json:"overdue"`
		Week    []json.RawMessage `json:"week"`
		Month   []json.RawMessage `json:"month"`
	} `json:"due"`
}

// Calendar mirrors the calendar grid.
type Calendar struct {
	Mode  string `json:"mode"`
	Month string `json:"month"`
	From  string `json:"from"`
	To    string `json:"to"`
	Days  []struct {
		Date     string `json:"date"`
		TasksDue int    `json:"tasks_due"`
		AppsDue  int    `json:"apps_due"`
	} `json:"days"`
}

// Agenda mirrors the day agenda.
type Agenda struct {
	Day          string            `json:"day"`
	Tasks        []json.RawMessage `json:"tasks"`
	Applications []json.RawMessage `json:"applications"`
}

// Progress mirrors the twelve-week chart.
type Progress struct {
	Since  string `json:"since"`
	Points []struct {
		WeekStart             string `json:"week_start"`
		TasksCompleted        int    `json:"tasks_completed"`
		ApplicationsSubmitted int    `json:"applications_submitted"`
	} `json:"points"`
}

// MapPins mirrors the map view.
type MapPins struct {
	Pins    []json.RawMessage `json:"pins"`
	Missing []json.RawMessage `json:"missing"`
}

// GetOverview fetches /dashboard/overview.
func (c *Client) GetOverview(ctx context.Context) (*Overview, error) {
	var out Overview
	return &out, c.do(ctx, http.MethodGet, "/dashboard/overview", nil, &out, http.StatusOK)
}

// GetCalendar fetches the month grid of month (YYYY-MM).
func (c *Client) GetCalendar(ctx context.Context, month string) (*Calendar, error) {
	var out Calendar
	q := url.Values{"view": {"month"}, "month": {month}}
	return &out, c.do(ctx, http.MethodGet, "/dashboard/calendar?"+q.Encode(), nil, &out, http.StatusOK)
}

// GetAgenda fetches the agenda of day (YYYY-MM-DD).
func (c *Client) GetAgenda(ctx context.Context, day string) (*Agenda, error) {
	var out Agenda
	q := url.Values{"day": {day}}
	return &out, c.do(ctx, http.MethodGet, "/dashboard/agenda?"+q.Encode(), nil, &out, http.StatusOK)
}

// GetProgress fetches /dashboard/progress.
func (c *Client) GetProgress(ctx context.Context) (*Progress, error) {
	var out Progress
	return &out, c.do(ctx, http.MethodGet, "/dashboard/progress", nil, &out, http.StatusOK)
}

// GetMapPins fetches /map/pins.
func (c *Client) GetMapPins(ctx context.Context) (*MapPins, error) {
	var out MapPins
	return &out, c.do(ctx, http.MethodGet, "/map/pins", nil, &out, http.StatusOK)
}
