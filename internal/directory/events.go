package directory

import "finitefield.org/toolfinder/internal/catalog"

// Event is a user action that mutates server state. Each concrete type maps to
// one button or form in the UI.
type Event interface {
	eventName() string
}

// LoginEvent submits admin credentials.
type LoginEvent struct {
	Email    string
	Password string
}

// LogoutEvent ends the admin session.
type LogoutEvent struct{}

// SaveToolEvent creates or updates a tool depending on Form.ID.
type SaveToolEvent struct {
	Form ToolForm
}

// DeleteToolEvent deletes a tool after the user confirmed.
type DeleteToolEvent struct {
	ID catalog.ID
}

// SubmitReviewEvent posts a guest review.
type SubmitReviewEvent struct {
	ToolID catalog.ID
	Rating float64
	Text   string
}

// ApproveReviewEvent approves a pending review.
type ApproveReviewEvent struct {
	ID catalog.ID
}

// RejectReviewEvent rejects a pending review.
type RejectReviewEvent struct {
	ID catalog.ID
}

func (LoginEvent) eventName() string         { return "login" }
func (LogoutEvent) eventName() string        { return "logout" }
func (SaveToolEvent) eventName() string      { return "save-tool" }
func (DeleteToolEvent) eventName() string    { return "delete-tool" }
func (SubmitReviewEvent) eventName() string  { return "submit-review" }
func (ApproveReviewEvent) eventName() string { return "approve" }
func (RejectReviewEvent) eventName() string  { return "reject" }

// EventName returns the stable name of ev, used in logs and metrics.
func EventName(ev Event) string {
	if ev == nil {
		return ""
	}
	return ev.eventName()
}

// View names an independently fetched region of the page.
type View uint8

const (
	ViewCatalog View = 1 << iota
	ViewAdminCatalog
	ViewReviews
	ViewSession
)

// Refresh is a set of views to re-fetch after an event.
type Refresh uint8

// RefreshOf builds a set from views.
func RefreshOf(views ...View) Refresh {
	var r Refresh
	for _, v := range views {
		r |= Refresh(v)
	}
	return r
}

// Has reports whether v is part of the set.
func (r Refresh) Has(v View) bool {
	return r&Refresh(v) != 0
}

// Empty reports whether nothing needs refreshing.
func (r Refresh) Empty() bool {
	return r == 0
}

// Tone classifies a user-facing message.
type Tone string

const (
	ToneSuccess Tone = "success"
	ToneError   Tone = "error"
)

// Outcome is what the UI shows after an event.
type Outcome struct {
	Event   string
	Tone    Tone
	Message string
	// Refresh lists views to re-fetch. When Deferred is set the UI first shows
	// Message and re-fetches after its confirmation delay.
	Refresh  Refresh
	Deferred bool
}

// OK reports whether the event succeeded.
func (o Outcome) OK() bool {
	return o.Tone != ToneError
}
