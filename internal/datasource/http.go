package datasource

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"sprintdeck/internal/board"
	"sprintdeck/internal/realtime"
)

const (
	defaultRequestTimeout = 5 * time.Second
	defaultPollInterval   = 2 * time.Second
)

// Logger records client diagnostics. It matches logging.Logger's signature.
type Logger interface {
	Printf(format string, args ...any)
}

// HTTPSource talks to a boardd instance. Every call that cannot reach the
// service is served by the fallback memory source instead and tagged
// OriginFallback; the caller never sees a transport error.
type HTTPSource struct {
	baseURL      string
	client       *http.Client
	fallback     *MemorySource
	logger       Logger
	pollInterval time.Duration
}

// HTTPOption customizes HTTPSource construction.
type HTTPOption func(*HTTPSource)

// HTTPWithClient overrides the underlying HTTP client.
func HTTPWithClient(client *http.Client) HTTPOption {
	return func(s *HTTPSource) {
		if client != nil {
			s.client = client
		}
	}
}

// HTTPWithLogger injects a logger for fallback diagnostics.
func HTTPWithLogger(logger Logger) HTTPOption {
	return func(s *HTTPSource) {
		s.logger = logger
	}
}

// HTTPWithPollInterval overrides the realtime poll cadence.
func HTTPWithPollInterval(interval time.Duration) HTTPOption {
	return func(s *HTTPSource) {
		if interval > 0 {
			s.pollInterval = interval
		}
	}
}

// HTTPWithFallback overrides the fallback source, for tests.
func HTTPWithFallback(fallback *MemorySource) HTTPOption {
	return func(s *HTTPSource) {
		if fallback != nil {
			s.fallback = fallback
		}
	}
}

// NewHTTPSource builds a client for the given base URL (e.g.
// "http://127.0.0.1:8090").
func NewHTTPSource(baseURL string, opts ...HTTPOption) *HTTPSource {
	s := &HTTPSource{
		baseURL:      baseURL,
		client:       &http.Client{Timeout: defaultRequestTimeout},
		fallback:     NewFallback(),
		pollInterval: defaultPollInterval,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// errTransport marks failures the fallback path recovers from.
type errTransport struct{ err error }

func (e errTransport) Error() string { return e.err.Error() }
func (e errTransport) Unwrap() error { return e.err }

func (s *HTTPSource) do(ctx context.Context, method, path string, query url.Values, body any, out any) error {
	target := s.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("datasource: encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return fmt.Errorf("datasource: build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return errTransport{err: err}
	}
	defer resp.Body.Close()
	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("datasource: %s %s: %w", method, path, ErrNotFound)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return errTransport{err: fmt.Errorf("datasource: %s %s: status %d", method, path, resp.StatusCode)}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errTransport{err: fmt.Errorf("datasource: decode response: %w", err)}
	}
	return nil
}

func (s *HTTPSource) fellBack(op string, err error) bool {
	if _, ok := err.(errTransport); !ok {
		return false
	}
	if s.logger != nil {
		s.logger.Printf("datasource: %s served by fallback: %v", op, err)
	}
	return true
}

func (s *HTTPSource) GetTasks(ctx context.Context, sprintID string) ([]board.Task, Origin, error) {
	query := url.Values{}
	if sprintID != "" {
		query.Set("sprint_id", sprintID)
	}
	var payload struct {
		Tasks []board.Task `json:"tasks"`
	}
	err := s.do(ctx, http.MethodGet, "/api/tasks", query, nil, &payload)
	if err == nil {
		return payload.Tasks, OriginLive, nil
	}
	if s.fellBack("get tasks", err) {
		return s.fallback.GetTasks(ctx, sprintID)
	}
	return nil, OriginLive, err
}

func (s *HTTPSource) CreateTask(ctx context.Context, input board.TaskInput) (board.Task, Origin, error) {
	var payload struct {
		Task board.Task `json:"task"`
	}
	err := s.do(ctx, http.MethodPost, "/api/tasks", nil, input, &payload)
	if err == nil {
		return payload.Task, OriginLive, nil
	}
	if s.fellBack("create task", err) {
		return s.fallback.CreateTask(ctx, input)
	}
	return board.Task{}, OriginLive, err
}

func (s *HTTPSource) UpdateTask(ctx context.Context, id string, patch board.TaskPatch) (board.Task, Origin, error) {
	var payload struct {
		Task board.Task `json:"task"`
	}
	err := s.do(ctx, http.MethodPatch, "/api/tasks/"+url.PathEscape(id), nil, patch, &payload)
	if err == nil {
		return payload.Task, OriginLive, nil
	}
	if s.fellBack("update task", err) {
		return s.fallback.UpdateTask(ctx, id, patch)
	}
	return board.Task{}, OriginLive, err
}

func (s *HTTPSource) DeleteTask(ctx context.Context, id string) (Origin, error) {
	err := s.do(ctx, http.MethodDelete, "/api/tasks/"+url.PathEscape(id), nil, nil, nil)
	if err == nil {
		return OriginLive, nil
	}
	if s.fellBack("delete task", err) {
		return s.fallback.DeleteTask(ctx, id)
	}
	return OriginLive, err
}

func (s *HTTPSource) GetCurrentSprint(ctx context.Context) (*board.Sprint, Origin, error) {
	var payload struct {
		Sprint *board.Sprint `json:"sprint"`
	}
	err := s.do(ctx, http.MethodGet, "/api/sprints/current", nil, nil, &payload)
	if err == nil {
		return payload.Sprint, OriginLive, nil
	}
	if s.fellBack("get current sprint", err) {
		return s.fallback.GetCurrentSprint(ctx)
	}
	return nil, OriginLive, err
}

func (s *HTTPSource) GetSprints(ctx context.Context, limit int) ([]board.Sprint, Origin, error) {
	query := url.Values{}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}
	var payload struct {
		Sprints []board.Sprint `json:"sprints"`
	}
	err := s.do(ctx, http.MethodGet, "/api/sprints", query, nil, &payload)
	if err == nil {
		return payload.Sprints, OriginLive, nil
	}
	if s.fellBack("get sprints", err) {
		return s.fallback.GetSprints(ctx, limit)
	}
	return nil, OriginLive, err
}

func (s *HTTPSource) GetUsers(ctx context.Context) ([]board.User, Origin, error) {
	var payload struct {
		Users []board.User `json:"users"`
	}
	err := s.do(ctx, http.MethodGet, "/api/users", nil, nil, &payload)
	if err == nil {
		return payload.Users, OriginLive, nil
	}
	if s.fellBack("get users", err) {
		return s.fallback.GetUsers(ctx)
	}
	return nil, OriginLive, err
}

func (s *HTTPSource) GetSuggestions(ctx context.Context) ([]board.AISuggestion, Origin, error) {
	var payload struct {
		Suggestions []board.AISuggestion `json:"suggestions"`
	}
	err := s.do(ctx, http.MethodGet, "/api/suggestions", nil, nil, &payload)
	if err == nil {
		return payload.Suggestions, OriginLive, nil
	}
	if s.fellBack("get suggestions", err) {
		return s.fallback.GetSuggestions(ctx)
	}
	return nil, OriginLive, err
}

func (s *HTTPSource) AcceptSuggestion(ctx context.Context, id string) (Origin, error) {
	err := s.do(ctx, http.MethodPost, "/api/suggestions/"+url.PathEscape(id)+"/accept", nil, nil, nil)
	if err == nil {
		return OriginLive, nil
	}
	if s.fellBack("accept suggestion", err) {
		return s.fallback.AcceptSuggestion(ctx, id)
	}
	return OriginLive, err
}

func (s *HTTPSource) DismissSuggestion(ctx context.Context, id string) (Origin, error) {
	err := s.do(ctx, http.MethodPost, "/api/suggestions/"+url.PathEscape(id)+"/dismiss", nil, nil, nil)
	if err == nil {
		return OriginLive, nil
	}
	if s.fellBack("dismiss suggestion", err) {
		return s.fallback.DismissSuggestion(ctx, id)
	}
	return OriginLive, err
}

func (s *HTTPSource) GetNotifications(ctx context.Context) ([]board.Notification, Origin, error) {
	var payload struct {
		Notifications []board.Notification `json:"notifications"`
	}
	err := s.do(ctx, http.MethodGet, "/api/notifications", nil, nil, &payload)
	if err == nil {
		return payload.Notifications, OriginLive, nil
	}
	if s.fellBack("get notifications", err) {
		return s.fallback.GetNotifications(ctx)
	}
	return nil, OriginLive, err
}

func (s *HTTPSource) MarkNotificationRead(ctx context.Context, id string) (Origin, error) {
	err := s.do(ctx, http.MethodPost, "/api/notifications/"+url.PathEscape(id)+"/read", nil, nil, nil)
	if err == nil {
		return OriginLive, nil
	}
	if s.fellBack("mark notification read", err) {
		return s.fallback.MarkNotificationRead(ctx, id)
	}
	return OriginLive, err
}

func (s *HTTPSource) GetTeamMetrics(ctx context.Context, sprintID string) (board.TeamMetrics, Origin, error) {
	query := url.Values{}
	if sprintID != "" {
		query.Set("sprint_id", sprintID)
	}
	var payload struct {
		Metrics board.TeamMetrics `json:"metrics"`
	}
	err := s.do(ctx, http.MethodGet, "/api/metrics", query, nil, &payload)
	if err == nil {
		return payload.Metrics, OriginLive, nil
	}
	if s.fellBack("get metrics", err) {
		return s.fallback.GetTeamMetrics(ctx, sprintID)
	}
	return board.TeamMetrics{}, OriginLive, err
}

// SubscribeUpdates long-polls /api/events on a background goroutine. Failed
// polls wait one interval and retry; the returned stop function ends the loop.
func (s *HTTPSource) SubscribeUpdates(onUpdate func(realtime.Update)) (func(), error) {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		var after int64
		for {
			select {
			case <-ctx.Done():
				return
			default:
			}
			query := url.Values{}
			query.Set("after", strconv.FormatInt(after, 10))
			var payload struct {
				Updates []realtime.Update `json:"updates"`
				Next    int64             `json:"next"`
			}
			err := s.do(ctx, http.MethodGet, "/api/events", query, nil, &payload)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				select {
				case <-ctx.Done():
					return
				case <-time.After(s.pollInterval):
				}
				continue
			}
			after = payload.Next
			for _, update := range payload.Updates {
				if onUpdate != nil {
					onUpdate(update)
				}
			}
			if len(payload.Updates) == 0 {
				select {
				case <-ctx.Done():
					return
				case <-time.After(s.pollInterval):
				}
			}
		}
	}()
	return cancel, nil
}
