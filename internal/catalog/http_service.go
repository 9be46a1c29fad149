package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// HTTPClient matches the subset of http.Client used by HTTPService.
type HTTPClient interface {
	Do(*http.Request) (*http.Response, error)
}

// Observer receives one callback per upstream call.
type Observer interface {
	ObserveAPICall(operation, outcome string, elapsed time.Duration)
}

// Outcome labels reported to the Observer.
const (
	OutcomeOK             = "ok"
	OutcomeHTTPError      = "http_error"
	OutcomeTransportError = "transport_error"
)

// HTTPService implements Service against the catalog REST API.
type HTTPService struct {
	base     *url.URL
	client   HTTPClient
	observer Observer
	now      func() time.Time
}

// HTTPOption customises an HTTPService.
type HTTPOption func(*HTTPService)

// WithObserver reports every upstream call to obs.
func WithObserver(obs Observer) HTTPOption {
	return func(s *HTTPService) {
		s.observer = obs
	}
}

// NewHTTPService constructs a Service that talks to the catalog API at baseURL.
func NewHTTPService(baseURL string, client HTTPClient, opts ...HTTPOption) (*HTTPService, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, errors.New("catalog: base URL is required")
	}
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("catalog: parse base URL: %w", err)
	}
	if !strings.HasSuffix(parsed.Path, "/") {
		parsed.Path += "/"
	}
	if client == nil {
		client = http.DefaultClient
	}
	svc := &HTTPService{
		base:   parsed,
		client: client,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// ListTools fetches /tools with the non-empty filters.
func (s *HTTPService) ListTools(ctx context.Context, filter Filter) ([]Tool, error) {
	endpoint := "/tools"
	if q := filter.Encode(); q != "" {
		endpoint += "?" + q
	}
	req, err := s.newRequest(ctx, http.MethodGet, endpoint, nil, "")
	if err != nil {
		return nil, err
	}
	op := "list_tools"
	if filter.IsZero() {
		op = "list_all_tools"
	}
	resp, err := s.do(req, op, http.StatusOK)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var tools []Tool
	if err := json.NewDecoder(resp.Body).Decode(&tools); err != nil {
		return nil, fmt.Errorf("catalog: decode tools: %w", err)
	}
	return tools, nil
}

// Login posts form-encoded credentials and returns the issued access token.
func (s *HTTPService) Login(ctx context.Context, email, password string) (string, error) {
	form := url.Values{}
	form.Set("username", email)
	form.Set("password", password)

	req, err := s.newRequest(ctx, http.MethodPost, "/admin/login", strings.NewReader(form.Encode()), "")
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.do(req, "login", http.StatusOK)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var payload struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("catalog: decode login: %w", err)
	}
	if strings.TrimSpace(payload.AccessToken) == "" {
		return "", errors.New("catalog: login response carried no access token")
	}
	return payload.AccessToken, nil
}

// CreateTool posts a new tool.
func (s *HTTPService) CreateTool(ctx context.Context, token string, input ToolInput) (*Tool, error) {
	req, err := s.newJSONRequest(ctx, http.MethodPost, "/admin/tools", input, token)
	if err != nil {
		return nil, err
	}
	resp, err := s.do(req, "create_tool", http.StatusOK, http.StatusCreated)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var tool Tool
	if err := json.NewDecoder(resp.Body).Decode(&tool); err != nil {
		return nil, fmt.Errorf("catalog: decode created tool: %w", err)
	}
	return &tool, nil
}

// UpdateTool puts the tool fields. The response body is not required.
func (s *HTTPService) UpdateTool(ctx context.Context, token string, id ID, input ToolInput) error {
	endpoint, err := itemPath("/admin/tools", id)
	if err != nil {
		return err
	}
	req, err := s.newJSONRequest(ctx, http.MethodPut, endpoint, input, token)
	if err != nil {
		return err
	}
	return s.expectSuccess(req, "update_tool")
}

// DeleteTool deletes the tool.
func (s *HTTPService) DeleteTool(ctx context.Context, token string, id ID) error {
	endpoint, err := itemPath("/admin/tools", id)
	if err != nil {
		return err
	}
	req, err := s.newRequest(ctx, http.MethodDelete, endpoint, nil, token)
	if err != nil {
		return err
	}
	return s.expectSuccess(req, "delete_tool")
}

// SubmitReview posts an unauthenticated review.
func (s *HTTPService) SubmitReview(ctx context.Context, input ReviewInput) error {
	req, err := s.newJSONRequest(ctx, http.MethodPost, "/review", input, "")
	if err != nil {
		return err
	}
	return s.expectSuccess(req, "submit_review")
}

// ListReviews fetches every review for moderation.
func (s *HTTPService) ListReviews(ctx context.Context, token string) ([]Review, error) {
	req, err := s.newRequest(ctx, http.MethodGet, "/admin/reviews", nil, token)
	if err != nil {
		return nil, err
	}
	resp, err := s.do(req, "list_reviews", http.StatusOK)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var reviews []Review
	if err := json.NewDecoder(resp.Body).Decode(&reviews); err != nil {
		return nil, fmt.Errorf("catalog: decode reviews: %w", err)
	}
	return reviews, nil
}

// ApproveReview issues the approve transition.
func (s *HTTPService) ApproveReview(ctx context.Context, token string, id ID) error {
	return s.moderate(ctx, token, id, "approve")
}

// RejectReview issues the reject transition.
func (s *HTTPService) RejectReview(ctx context.Context, token string, id ID) error {
	return s.moderate(ctx, token, id, "reject")
}

func (s *HTTPService) moderate(ctx context.Context, token string, id ID, action string) error {
	endpoint, err := itemPath("/admin/reviews", id)
	if err != nil {
		return err
	}
	req, err := s.newRequest(ctx, http.MethodPut, endpoint+"/"+action, nil, token)
	if err != nil {
		return err
	}
	return s.expectSuccess(req, action+"_review")
}

func (s *HTTPService) expectSuccess(req *http.Request, op string) error {
	resp, err := s.do(req, op)
	if err != nil {
		return err
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<16))
	return resp.Body.Close()
}

// do sends req and converts unexpected statuses into *APIError. When no
// statuses are listed any 2xx is accepted.
func (s *HTTPService) do(req *http.Request, op string, accepted ...int) (*http.Response, error) {
	start := s.now()
	resp, err := s.client.Do(req)
	if err != nil {
		s.observe(op, OutcomeTransportError, start)
		return nil, fmt.Errorf("catalog: %s request failed: %w", op, err)
	}
	if !statusAccepted(resp.StatusCode, accepted) {
		s.observe(op, OutcomeHTTPError, start)
		return nil, errorFromResponse(op, resp)
	}
	s.observe(op, OutcomeOK, start)
	return resp, nil
}

func (s *HTTPService) observe(op, outcome string, start time.Time) {
	if s.observer == nil {
		return
	}
	s.observer.ObserveAPICall(op, outcome, s.now().Sub(start))
}

func statusAccepted(code int, accepted []int) bool {
	if len(accepted) == 0 {
		return code >= 200 && code < 300
	}
	for _, c := range accepted {
		if code == c {
			return true
		}
	}
	return false
}

func (s *HTTPService) newRequest(ctx context.Context, method, endpoint string, body io.Reader, token string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, s.resolve(endpoint), body)
	if err != nil {
		return nil, fmt.Errorf("catalog: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req, nil
}

func (s *HTTPService) newJSONRequest(ctx context.Context, method, endpoint string, payload any, token string) (*http.Request, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(payload); err != nil {
		return nil, fmt.Errorf("catalog: encode payload: %w", err)
	}
	req, err := s.newRequest(ctx, method, endpoint, &buf, token)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

func (s *HTTPService) resolve(endpoint string) string {
	trimmed := strings.TrimPrefix(endpoint, "/")
	ref, err := url.Parse(trimmed)
	if err != nil {
		ref = &url.URL{Path: trimmed}
	}
	return s.base.ResolveReference(ref).String()
}

// itemPath appends id to collection as a single escaped segment. Dot
// segments are refused since URL resolution would collapse them.
func itemPath(collection string, id ID) (string, error) {
	seg := strings.TrimSpace(id.String())
	switch seg {
	case "", ".", "..":
		return "", fmt.Errorf("%w: invalid id %q", ErrInvalidInput, id)
	}
	return collection + "/" + url.PathEscape(seg), nil
}

func errorFromResponse(op string, resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	_ = resp.Body.Close()

	detail := strings.TrimSpace(string(body))
	if detail != "" && json.Valid(body) {
		var compact bytes.Buffer
		if err := json.Compact(&compact, body); err == nil {
			detail = compact.String()
		}
	}
	return &APIError{
		Operation: op,
		Status:    resp.StatusCode,
		Body:      detail,
	}
}
