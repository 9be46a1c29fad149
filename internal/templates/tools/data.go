package tools

import (
	"finitefield.org/toolfinder/internal/catalog"
	"finitefield.org/toolfinder/internal/directory"
	"finitefield.org/toolfinder/internal/templates/partials"
)

// RatingOption is one entry of the minimum-rating filter.
type RatingOption struct {
	Value string
	Label string
}

// RatingOptions lists the minimum-rating filter choices.
var RatingOptions = []RatingOption{
	{Value: "4", Label: "4+ Stars"},
	{Value: "3", Label: "3+ Stars"},
	{Value: "2", Label: "2+ Stars"},
	{Value: "1", Label: "1+ Stars"},
}

// FiltersData carries the current filter selection.
type FiltersData struct {
	Filter catalog.Filter
}

// GridData is the public catalog listing.
type GridData struct {
	Tools []catalog.Tool
	OOB   bool
	// Unavailable marks a failed first load: the grid renders empty, without
	// the "No tools found" placeholder.
	Unavailable bool
}

// ReviewFormData drives the review modal.
type ReviewFormData struct {
	Form     directory.ReviewForm
	Message  partials.MessageData
	FollowUp *partials.FollowUpData
}

// StarsData drives the star widget.
type StarsData struct {
	ToolID catalog.ID
	Rating int
}
