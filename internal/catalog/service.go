package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// Service exposes the catalog API operations used by the front end.
type Service interface {
	// ListTools returns tools matching the filter; a zero filter lists everything.
	ListTools(ctx context.Context, filter Filter) ([]Tool, error)
	// Login exchanges admin credentials for a bearer token.
	Login(ctx context.Context, email, password string) (string, error)
	// CreateTool adds a new tool to the catalog.
	CreateTool(ctx context.Context, token string, input ToolInput) (*Tool, error)
	// UpdateTool replaces the editable fields of an existing tool.
	UpdateTool(ctx context.Context, token string, id ID, input ToolInput) error
	// DeleteTool removes the tool identified by id.
	DeleteTool(ctx context.Context, token string, id ID) error
	// SubmitReview files a guest review; it starts out pending.
	SubmitReview(ctx context.Context, input ReviewInput) error
	// ListReviews returns every review regardless of status.
	ListReviews(ctx context.Context, token string) ([]Review, error)
	// ApproveReview moves a pending review to approved.
	ApproveReview(ctx context.Context, token string, id ID) error
	// RejectReview moves a pending review to rejected.
	RejectReview(ctx context.Context, token string, id ID) error
}

// ID identifies tools and reviews. The API issues numeric ids but the front end
// treats them as opaque strings.
type ID string

// String returns the raw identifier.
func (id ID) String() string {
	return string(id)
}

// IsZero reports whether the identifier is empty.
func (id ID) IsZero() bool {
	return strings.TrimSpace(string(id)) == ""
}

func (id ID) numeric() (int64, bool) {
	n, err := strconv.ParseInt(string(id), 10, 64)
	return n, err == nil
}

// MarshalJSON emits numeric ids as JSON numbers in canonical form and
// everything else as strings.
func (id ID) MarshalJSON() ([]byte, error) {
	if n, ok := id.numeric(); ok {
		return strconv.AppendInt(nil, n, 10), nil
	}
	return json.Marshal(string(id))
}

// UnmarshalJSON accepts both JSON numbers and strings.
func (id *ID) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	switch {
	case raw == "null":
		*id = ""
		return nil
	case strings.HasPrefix(raw, `"`):
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	default:
		if _, err := strconv.ParseFloat(raw, 64); err != nil {
			return fmt.Errorf("catalog: invalid id %s", raw)
		}
		*id = ID(raw)
		return nil
	}
}

// Categories lists the tool categories in display order. The first entry is the
// default for new tools.
var Categories = []string{
	"Image Generation",
	"Text Generation",
	"Code Assistant",
	"Audio & Voice",
	"Video",
	"Productivity",
	"Research",
}

// PricingTiers lists the pricing models in display order.
var PricingTiers = []string{
	"Free",
	"Freemium",
	"Paid",
}

// DefaultPricing is preselected on the create form.
const DefaultPricing = "Free"

// Tool is a catalog entry.
type Tool struct {
	ID          ID       `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	UseCase     string   `json:"use_case,omitempty"`
	Category    string   `json:"category"`
	Pricing     string   `json:"pricing"`
	AvgRating   *float64 `json:"avg_rating,omitempty"`
}

// RatingLabel renders the aggregate rating, or "N/A" when there is none yet.
func (t Tool) RatingLabel() string {
	if t.AvgRating == nil || *t.AvgRating == 0 {
		return "N/A"
	}
	return FormatRating(*t.AvgRating)
}

// FormatRating prints ratings without trailing zeros (4, 4.5, 4.25).
func FormatRating(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// ToolInput is the payload for create and update calls.
type ToolInput struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	UseCase     string  `json:"use_case"`
	Category    string  `json:"category"`
	Pricing     string  `json:"pricing"`
	AvgRating   float64 `json:"avg_rating"`
}

// Status is the moderation state of a review.
type Status string

const (
	StatusPending  Status = "Pending"
	StatusApproved Status = "Approved"
	StatusRejected Status = "Rejected"
)

// IsPending reports whether moderation actions are still available.
func (s Status) IsPending() bool {
	return s == StatusPending
}

// CanTransition reports whether moving from s to next is a legal moderation step.
func (s Status) CanTransition(next Status) bool {
	return s == StatusPending && (next == StatusApproved || next == StatusRejected)
}

// BadgeClass returns the css modifier used by the status badge.
func (s Status) BadgeClass() string {
	return strings.ToLower(string(s))
}

// Review is a guest review awaiting or past moderation.
type Review struct {
	ID     ID      `json:"id"`
	ToolID ID      `json:"tool_id"`
	Rating float64 `json:"rating"`
	Text   string  `json:"review_text"`
	Status Status  `json:"status"`
}

// ReviewInput is the payload for guest review submission.
type ReviewInput struct {
	ToolID ID      `json:"tool_id"`
	Rating float64 `json:"rating"`
	Text   string  `json:"review_text"`
}

// Filter narrows the public tool listing.
type Filter struct {
	Category string
	Pricing  string
	Rating   string
}

// FilterFromValues reads a filter from submitted form or query values.
func FilterFromValues(values url.Values) Filter {
	return Filter{
		Category: strings.TrimSpace(values.Get("category")),
		Pricing:  strings.TrimSpace(values.Get("pricing")),
		Rating:   strings.TrimSpace(values.Get("rating")),
	}
}

// IsZero reports whether no filter is set.
func (f Filter) IsZero() bool {
	return f.Category == "" && f.Pricing == "" && f.Rating == ""
}

// Encode builds the query string with only the non-empty filters, in the order
// category, pricing, rating.
func (f Filter) Encode() string {
	parts := make([]string, 0, 3)
	add := func(key, value string) {
		if value == "" {
			return
		}
		parts = append(parts, key+"="+url.QueryEscape(value))
	}
	add("category", f.Category)
	add("pricing", f.Pricing)
	add("rating", f.Rating)
	return strings.Join(parts, "&")
}
