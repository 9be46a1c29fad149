package admin

import (
	"finitefield.org/toolfinder/internal/catalog"
	"finitefield.org/toolfinder/internal/directory"
	"finitefield.org/toolfinder/internal/templates/partials"
)

// Panel tabs.
const (
	TabTools   = "tools"
	TabReviews = "reviews"
)

// NormalizeTab maps unknown values to the tools tab.
func NormalizeTab(tab string) string {
	if tab == TabReviews {
		return TabReviews
	}
	return TabTools
}

// PanelData is the admin section with both tabs.
type PanelData struct {
	Tab     string
	Tools   []catalog.Tool
	Reviews []catalog.Review
	OOB     bool
}

// GridData is the admin tool listing.
type GridData struct {
	Tools []catalog.Tool
	OOB   bool
}

// ReviewsData is the moderation list.
type ReviewsData struct {
	Reviews []catalog.Review
	OOB     bool
}

// ToolFormData drives the create/edit modal.
type ToolFormData struct {
	Form     directory.ToolForm
	Message  partials.MessageData
	FollowUp *partials.FollowUpData
}
