package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"math"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/microcosm-cc/bluemonday"
)

const (
	defaultTokenLifetime = 60 * time.Minute
	adminRole            = "admin"
)

// StaticConfig configures the in-memory catalog.
type StaticConfig struct {
	AdminEmail    string
	AdminPassword string
	SigningKey    []byte
	TokenLifetime time.Duration
	Now           func() time.Time
}

// StaticService is an in-memory catalog used for demo mode and tests. It
// mirrors the API's behaviour, including its error payloads, so the front end
// exercises the same code paths either way.
type StaticService struct {
	mu       sync.Mutex
	tools    map[ID]Tool
	reviews  map[ID]Review
	nextTool int64
	nextRev  int64

	adminEmail    string
	adminPassword string
	signingKey    []byte
	lifetime      time.Duration
	now           func() time.Time
	policy        *bluemonday.Policy
}

// NewStaticService constructs an empty in-memory catalog.
func NewStaticService(cfg StaticConfig) *StaticService {
	if cfg.AdminEmail == "" {
		cfg.AdminEmail = "admin@example.com"
	}
	if cfg.AdminPassword == "" {
		cfg.AdminPassword = "admin"
	}
	if len(cfg.SigningKey) == 0 {
		cfg.SigningKey = []byte("toolfinder-demo-signing-key")
	}
	if cfg.TokenLifetime <= 0 {
		cfg.TokenLifetime = defaultTokenLifetime
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &StaticService{
		tools:         make(map[ID]Tool),
		reviews:       make(map[ID]Review),
		adminEmail:    cfg.AdminEmail,
		adminPassword: cfg.AdminPassword,
		signingKey:    cfg.SigningKey,
		lifetime:      cfg.TokenLifetime,
		now:           cfg.Now,
		policy:        bluemonday.StrictPolicy(),
	}
}

// Seed loads tools and reviews, keeping their ids. Aggregates of tools with
// approved reviews are recomputed.
func (s *StaticService) Seed(tools []Tool, reviews []Review) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, tool := range tools {
		if tool.ID.IsZero() {
			s.nextTool++
			tool.ID = ID(strconv.FormatInt(s.nextTool, 10))
		}
		s.bumpCounter(&s.nextTool, tool.ID)
		s.tools[tool.ID] = tool
	}
	touched := make(map[ID]struct{})
	for _, review := range reviews {
		if review.ID.IsZero() {
			s.nextRev++
			review.ID = ID(strconv.FormatInt(s.nextRev, 10))
		}
		if review.Status == "" {
			review.Status = StatusPending
		}
		s.bumpCounter(&s.nextRev, review.ID)
		s.reviews[review.ID] = review
		touched[review.ToolID] = struct{}{}
	}
	for toolID := range touched {
		s.recomputeAverage(toolID)
	}
}

func (s *StaticService) bumpCounter(counter *int64, id ID) {
	if n, err := strconv.ParseInt(id.String(), 10, 64); err == nil && n > *counter {
		*counter = n
	}
}

// ListTools filters by exact category and pricing and by minimum average rating.
func (s *StaticService) ListTools(_ context.Context, filter Filter) ([]Tool, error) {
	var minRating float64
	if filter.Rating != "" {
		v, err := strconv.ParseFloat(filter.Rating, 64)
		if err != nil {
			return nil, detailError("list_tools", http.StatusUnprocessableEntity, "rating must be a number")
		}
		minRating = v
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	result := make([]Tool, 0, len(s.tools))
	for _, tool := range s.tools {
		if filter.Category != "" && tool.Category != filter.Category {
			continue
		}
		if filter.Pricing != "" && tool.Pricing != filter.Pricing {
			continue
		}
		if minRating > 0 {
			if tool.AvgRating == nil || *tool.AvgRating < minRating {
				continue
			}
		}
		result = append(result, cloneTool(tool))
	}
	sortByID(result, func(i int) ID { return result[i].ID })
	return result, nil
}

// Login checks the configured credentials and issues an HS256 token.
func (s *StaticService) Login(_ context.Context, email, password string) (string, error) {
	if email != s.adminEmail || password != s.adminPassword {
		return "", detailError("login", http.StatusUnauthorized, "Invalid credentials")
	}
	now := s.now()
	claims := jwt.MapClaims{
		"sub":  email,
		"role": adminRole,
		"iat":  now.Unix(),
		"exp":  now.Add(s.lifetime).Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.signingKey)
	if err != nil {
		return "", fmt.Errorf("catalog: sign token: %w", err)
	}
	return signed, nil
}

// CreateTool validates and stores a new tool.
func (s *StaticService) CreateTool(_ context.Context, token string, input ToolInput) (*Tool, error) {
	if err := s.authorize("create_tool", token); err != nil {
		return nil, err
	}
	if err := validateToolInput("create_tool", input); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextTool++
	tool := toolFromInput(ID(strconv.FormatInt(s.nextTool, 10)), input)
	s.tools[tool.ID] = tool
	created := cloneTool(tool)
	return &created, nil
}

// UpdateTool replaces the editable fields, keeping the aggregate rating.
func (s *StaticService) UpdateTool(_ context.Context, token string, id ID, input ToolInput) error {
	if err := s.authorize("update_tool", token); err != nil {
		return err
	}
	if err := validateToolInput("update_tool", input); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.tools[id]
	if !ok {
		return detailError("update_tool", http.StatusNotFound, "Tool not found")
	}
	updated := toolFromInput(id, input)
	updated.AvgRating = existing.AvgRating
	s.tools[id] = updated
	return nil
}

// DeleteTool removes the tool and its reviews.
func (s *StaticService) DeleteTool(_ context.Context, token string, id ID) error {
	if err := s.authorize("delete_tool", token); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tools[id]; !ok {
		return detailError("delete_tool", http.StatusNotFound, "Tool not found")
	}
	delete(s.tools, id)
	for reviewID, review := range s.reviews {
		if review.ToolID == id {
			delete(s.reviews, reviewID)
		}
	}
	return nil
}

// SubmitReview stores a pending review for an existing tool.
func (s *StaticService) SubmitReview(_ context.Context, input ReviewInput) error {
	if input.Rating < 1 || input.Rating > 5 {
		return detailError("submit_review", http.StatusUnprocessableEntity, "rating must be between 1 and 5")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tools[input.ToolID]; !ok {
		return detailError("submit_review", http.StatusNotFound, "Tool not found")
	}
	s.nextRev++
	review := Review{
		ID:     ID(strconv.FormatInt(s.nextRev, 10)),
		ToolID: input.ToolID,
		Rating: input.Rating,
		Text:   s.sanitize(input.Text),
		Status: StatusPending,
	}
	s.reviews[review.ID] = review
	return nil
}

// ListReviews returns all reviews ordered by id.
func (s *StaticService) ListReviews(_ context.Context, token string) ([]Review, error) {
	if err := s.authorize("list_reviews", token); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	result := make([]Review, 0, len(s.reviews))
	for _, review := range s.reviews {
		result = append(result, review)
	}
	sortByID(result, func(i int) ID { return result[i].ID })
	return result, nil
}

// ApproveReview approves a pending review and recomputes the tool average.
func (s *StaticService) ApproveReview(_ context.Context, token string, id ID) error {
	return s.transition("approve_review", token, id, StatusApproved)
}

// RejectReview rejects a pending review.
func (s *StaticService) RejectReview(_ context.Context, token string, id ID) error {
	return s.transition("reject_review", token, id, StatusRejected)
}

func (s *StaticService) transition(op, token string, id ID, next Status) error {
	if err := s.authorize(op, token); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	review, ok := s.reviews[id]
	if !ok {
		return detailError(op, http.StatusNotFound, "Review not found")
	}
	if !review.Status.CanTransition(next) {
		return detailError(op, http.StatusConflict, fmt.Sprintf("Review is already %s", review.Status))
	}
	review.Status = next
	s.reviews[id] = review
	if next == StatusApproved {
		s.recomputeAverage(review.ToolID)
	}
	return nil
}

// recomputeAverage must be called with s.mu held.
func (s *StaticService) recomputeAverage(toolID ID) {
	tool, ok := s.tools[toolID]
	if !ok {
		return
	}
	var sum float64
	var count int
	for _, review := range s.reviews {
		if review.ToolID == toolID && review.Status == StatusApproved {
			sum += review.Rating
			count++
		}
	}
	if count == 0 {
		return
	}
	avg := math.Round(sum/float64(count)*100) / 100
	tool.AvgRating = &avg
	s.tools[toolID] = tool
}

func (s *StaticService) authorize(op, token string) error {
	if strings.TrimSpace(token) == "" {
		return detailError(op, http.StatusUnauthorized, "Not authenticated")
	}
	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return s.signingKey, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return detailError(op, http.StatusUnauthorized, "Invalid or expired token")
	}
	if role, _ := claims["role"].(string); role != adminRole {
		return detailError(op, http.StatusForbidden, "Not authorized")
	}
	return nil
}

func (s *StaticService) sanitize(text string) string {
	return strings.TrimSpace(html.UnescapeString(s.policy.Sanitize(text)))
}

func validateToolInput(op string, input ToolInput) error {
	if len(strings.TrimSpace(input.Name)) < 2 {
		return detailError(op, http.StatusUnprocessableEntity, "name must be at least 2 characters")
	}
	if strings.TrimSpace(input.Pricing) == "" {
		return detailError(op, http.StatusUnprocessableEntity, "pricing is required")
	}
	return nil
}

func toolFromInput(id ID, input ToolInput) Tool {
	return Tool{
		ID:          id,
		Name:        strings.TrimSpace(input.Name),
		Description: input.Description,
		UseCase:     input.UseCase,
		Category:    input.Category,
		Pricing:     input.Pricing,
	}
}

func cloneTool(tool Tool) Tool {
	if tool.AvgRating != nil {
		v := *tool.AvgRating
		tool.AvgRating = &v
	}
	return tool
}

func sortByID[T any](items []T, key func(int) ID) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := key(i), key(j)
		ai, errA := strconv.ParseInt(a.String(), 10, 64)
		bi, errB := strconv.ParseInt(b.String(), 10, 64)
		if errA == nil && errB == nil {
			return ai < bi
		}
		return a < b
	})
}

// detailError builds an APIError carrying the API's {"detail": ...} payload.
func detailError(op string, status int, detail string) error {
	body, _ := json.Marshal(map[string]string{"detail": detail})
	return &APIError{Operation: op, Status: status, Body: string(body)}
}
