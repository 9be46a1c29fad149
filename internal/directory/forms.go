package directory

import (
	"net/url"
	"strings"

	"finitefield.org/toolfinder/internal/catalog"
)

// FormMode tells the tool form whether it creates or edits.
type FormMode string

const (
	ModeCreate FormMode = "create"
	ModeEdit   FormMode = "edit"
)

// ToolForm is the shared create/edit form.
type ToolForm struct {
	ID          catalog.ID
	Name        string
	Description string
	UseCase     string
	Category    string
	Pricing     string
}

// Mode derives create vs edit from the presence of an id.
func (f ToolForm) Mode() FormMode {
	if f.ID.IsZero() {
		return ModeCreate
	}
	return ModeEdit
}

// Title is the modal heading for the form mode.
func (f ToolForm) Title() string {
	if f.Mode() == ModeEdit {
		return "Edit Tool"
	}
	return "Add Tool"
}

// Input converts the form into an API payload. avg_rating is always sent as 0;
// the API owns the aggregate.
func (f ToolForm) Input() catalog.ToolInput {
	return catalog.ToolInput{
		Name:        f.Name,
		Description: f.Description,
		UseCase:     f.UseCase,
		Category:    f.Category,
		Pricing:     f.Pricing,
		AvgRating:   0,
	}
}

// BlankToolForm returns the create form defaults: first category, Free pricing.
func BlankToolForm() ToolForm {
	category := ""
	if len(catalog.Categories) > 0 {
		category = catalog.Categories[0]
	}
	return ToolForm{
		Category: category,
		Pricing:  catalog.DefaultPricing,
	}
}

// ToolFormFromTool pre-fills the edit form.
func ToolFormFromTool(tool catalog.Tool) ToolForm {
	return ToolForm{
		ID:          tool.ID,
		Name:        tool.Name,
		Description: tool.Description,
		UseCase:     tool.UseCase,
		Category:    tool.Category,
		Pricing:     tool.Pricing,
	}
}

// ToolFormFromValues reads a submitted form.
func ToolFormFromValues(values url.Values) ToolForm {
	return ToolForm{
		ID:          catalog.ID(strings.TrimSpace(values.Get("id"))),
		Name:        values.Get("name"),
		Description: values.Get("description"),
		UseCase:     values.Get("use_case"),
		Category:    values.Get("category"),
		Pricing:     values.Get("pricing"),
	}
}

// ReviewForm is the guest review form bound to one tool.
type ReviewForm struct {
	ToolID catalog.ID
	Rating int
	Text   string
}

// Stars returns the lit positions for the form's rating.
func (f ReviewForm) Stars() [MaxRating]bool {
	return Stars(f.Rating)
}
