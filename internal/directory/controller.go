package directory

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"finitefield.org/toolfinder/internal/catalog"
	"finitefield.org/toolfinder/internal/observability"
)

// User-facing messages.
const (
	msgLoginOK        = "Login successful!"
	msgLoginRejected  = "Invalid credentials"
	msgLoginFailed    = "Login failed"
	msgToolSaved      = "Tool saved successfully!"
	msgToolSaveFailed = "Failed to save tool: %s"
	msgToolSaveError  = "Error saving tool: %s"
	msgDeleteFailed   = "Error deleting tool"
	msgReviewOK       = "Review submitted successfully!"
	msgReviewRejected = "Failed to submit review"
	msgReviewFailed   = "Error submitting review"
	msgApproveFailed  = "Error approving review"
	msgRejectFailed   = "Error rejecting review"
)

// Controller runs the directory's views and events against the catalog API.
// It holds no per-visitor data; that lives in State.
type Controller struct {
	service catalog.Service
	logger  *zap.Logger
}

// NewController wires the controller.
func NewController(service catalog.Service, logger *zap.Logger) *Controller {
	if service == nil {
		panic("directory: catalog service is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Controller{service: service, logger: logger}
}

func (c *Controller) log(ctx context.Context) *zap.Logger {
	return observability.FromContextOr(ctx, c.logger)
}

// RestoreSession copies the persisted token into the state. An empty token
// means guest mode.
func (c *Controller) RestoreSession(st *State, token string) {
	st.SetToken(token)
}

// LoadTools fetches the public listing for filter.
func (c *Controller) LoadTools(ctx context.Context, filter catalog.Filter) ([]catalog.Tool, error) {
	tools, err := c.service.ListTools(ctx, filter)
	if err != nil {
		c.log(ctx).Warn("load tools failed", zap.String("query", filter.Encode()), zap.Error(err))
		return nil, err
	}
	return tools, nil
}

// LoadAdminTools fetches the unfiltered listing and replaces the tool cache.
func (c *Controller) LoadAdminTools(ctx context.Context, st *State) ([]catalog.Tool, error) {
	tools, err := c.service.ListTools(ctx, catalog.Filter{})
	if err != nil {
		c.log(ctx).Warn("load admin tools failed", zap.Error(err))
		return nil, err
	}
	st.replaceTools(tools)
	return tools, nil
}

// LoadReviews fetches every review with the visitor's token.
func (c *Controller) LoadReviews(ctx context.Context, st *State) ([]catalog.Review, error) {
	reviews, err := c.service.ListReviews(ctx, st.Token())
	if err != nil {
		c.log(ctx).Warn("load reviews failed", zap.Error(err))
		return nil, err
	}
	return reviews, nil
}

// OpenCreate returns a blank tool form.
func (c *Controller) OpenCreate() ToolForm {
	return BlankToolForm()
}

// OpenEdit pre-fills the tool form from the cache. On a cache miss the admin
// listing is fetched once and the lookup retried; found is false when the tool
// is gone from the API as well.
func (c *Controller) OpenEdit(ctx context.Context, st *State, id catalog.ID) (form ToolForm, found bool, err error) {
	if tool, ok := st.lookupTool(id); ok {
		return ToolFormFromTool(tool), true, nil
	}
	if _, err := c.LoadAdminTools(ctx, st); err != nil {
		return ToolForm{}, false, err
	}
	if tool, ok := st.lookupTool(id); ok {
		return ToolFormFromTool(tool), true, nil
	}
	return ToolForm{}, false, nil
}

// OpenReviewForm resets the star selection and binds the form to toolID.
func (c *Controller) OpenReviewForm(st *State, toolID catalog.ID) ReviewForm {
	st.setRating(0)
	return ReviewForm{ToolID: toolID}
}

// SetRating records a star click.
func (c *Controller) SetRating(st *State, toolID catalog.ID, rating int) ReviewForm {
	return ReviewForm{ToolID: toolID, Rating: st.setRating(rating)}
}

// Dispatch runs ev. The returned Outcome is always usable for rendering; err
// carries the underlying failure for logging.
func (c *Controller) Dispatch(ctx context.Context, st *State, ev Event) (Outcome, error) {
	var (
		out Outcome
		err error
	)
	switch e := ev.(type) {
	case LoginEvent:
		out, err = c.login(ctx, st, e)
	case LogoutEvent:
		out = c.logout(st)
	case SaveToolEvent:
		out, err = c.saveTool(ctx, st, e)
	case DeleteToolEvent:
		out, err = c.deleteTool(ctx, st, e)
	case SubmitReviewEvent:
		out, err = c.submitReview(ctx, e)
	case ApproveReviewEvent:
		out, err = c.moderate(ctx, st, e.ID, true)
	case RejectReviewEvent:
		out, err = c.moderate(ctx, st, e.ID, false)
	default:
		return Outcome{Tone: ToneError}, fmt.Errorf("directory: unsupported event %T", ev)
	}
	out.Event = EventName(ev)
	if err != nil {
		reason, rejected := failureReason(err)
		fields := []zap.Field{zap.String("event", out.Event), zap.String("reason", reason), zap.Error(err)}
		if rejected {
			c.log(ctx).Info("event rejected", fields...)
		} else {
			c.log(ctx).Warn("event failed", fields...)
		}
	}
	return out, err
}

// failureReason classifies err for the logs. rejected is set when the API
// turned the request down on its merits, as opposed to failing to serve it.
func failureReason(err error) (reason string, rejected bool) {
	switch {
	case errors.Is(err, catalog.ErrUnauthorized):
		return "unauthorized", true
	case errors.Is(err, catalog.ErrNotFound):
		return "not_found", true
	case errors.Is(err, catalog.ErrInvalidTransition):
		return "invalid_transition", true
	case errors.Is(err, catalog.ErrInvalidInput):
		return "invalid_input", true
	}
	if _, ok := catalog.AsAPIError(err); ok {
		return "upstream", false
	}
	return "transport", false
}

func (c *Controller) login(ctx context.Context, st *State, e LoginEvent) (Outcome, error) {
	token, err := c.service.Login(ctx, e.Email, e.Password)
	if err != nil {
		if _, ok := catalog.AsAPIError(err); ok {
			return failure(msgLoginRejected), err
		}
		return failure(msgLoginFailed), err
	}
	st.SetToken(token)
	return Outcome{
		Tone:     ToneSuccess,
		Message:  msgLoginOK,
		Refresh:  RefreshOf(ViewSession, ViewAdminCatalog, ViewReviews),
		Deferred: true,
	}, nil
}

func (c *Controller) logout(st *State) Outcome {
	st.SetToken("")
	return Outcome{Tone: ToneSuccess, Refresh: RefreshOf(ViewSession)}
}

func (c *Controller) saveTool(ctx context.Context, st *State, e SaveToolEvent) (Outcome, error) {
	token := st.Token()
	var err error
	if e.Form.Mode() == ModeCreate {
		_, err = c.service.CreateTool(ctx, token, e.Form.Input())
	} else {
		err = c.service.UpdateTool(ctx, token, e.Form.ID, e.Form.Input())
	}
	if err != nil {
		if apiErr, ok := catalog.AsAPIError(err); ok {
			return failure(fmt.Sprintf(msgToolSaveFailed, apiErr.Detail())), err
		}
		return failure(fmt.Sprintf(msgToolSaveError, err.Error())), err
	}
	return Outcome{
		Tone:     ToneSuccess,
		Message:  msgToolSaved,
		Refresh:  RefreshOf(ViewAdminCatalog, ViewCatalog),
		Deferred: true,
	}, nil
}

func (c *Controller) deleteTool(ctx context.Context, st *State, e DeleteToolEvent) (Outcome, error) {
	if err := c.service.DeleteTool(ctx, st.Token(), e.ID); err != nil {
		return failure(msgDeleteFailed), err
	}
	return Outcome{Tone: ToneSuccess, Refresh: RefreshOf(ViewAdminCatalog, ViewCatalog)}, nil
}

func (c *Controller) submitReview(ctx context.Context, e SubmitReviewEvent) (Outcome, error) {
	err := c.service.SubmitReview(ctx, catalog.ReviewInput{
		ToolID: e.ToolID,
		Rating: e.Rating,
		Text:   e.Text,
	})
	if err != nil {
		if _, ok := catalog.AsAPIError(err); ok {
			return failure(msgReviewRejected), err
		}
		return failure(msgReviewFailed), err
	}
	return Outcome{Tone: ToneSuccess, Message: msgReviewOK, Deferred: true}, nil
}

// moderate approves or rejects. Approval can change a tool's aggregate rating,
// so it refreshes both catalogs; rejection only refreshes the review list.
func (c *Controller) moderate(ctx context.Context, st *State, id catalog.ID, approve bool) (Outcome, error) {
	if approve {
		if err := c.service.ApproveReview(ctx, st.Token(), id); err != nil {
			return failure(msgApproveFailed), err
		}
		return Outcome{Tone: ToneSuccess, Refresh: RefreshOf(ViewReviews, ViewAdminCatalog, ViewCatalog)}, nil
	}
	if err := c.service.RejectReview(ctx, st.Token(), id); err != nil {
		return failure(msgRejectFailed), err
	}
	return Outcome{Tone: ToneSuccess, Refresh: RefreshOf(ViewReviews)}, nil
}

func failure(message string) Outcome {
	return Outcome{Tone: ToneError, Message: message}
}

// Snapshot holds the results of a refresh. A view whose fetch failed has its
// Loaded flag unset and must keep its previous content.
type Snapshot struct {
	Tools            []catalog.Tool
	ToolsLoaded      bool
	AdminTools       []catalog.Tool
	AdminToolsLoaded bool
	Reviews          []catalog.Review
	ReviewsLoaded    bool
}

// Refresh re-fetches every view in r concurrently. Failures are logged and
// leave the corresponding view stale; they never affect the other views.
func (c *Controller) Refresh(ctx context.Context, st *State, r Refresh, filter catalog.Filter) Snapshot {
	var (
		snap Snapshot
		g    errgroup.Group
	)
	if r.Has(ViewCatalog) {
		g.Go(func() error {
			tools, err := c.LoadTools(ctx, filter)
			if err == nil {
				snap.Tools, snap.ToolsLoaded = tools, true
			}
			return nil
		})
	}
	if r.Has(ViewAdminCatalog) {
		g.Go(func() error {
			tools, err := c.LoadAdminTools(ctx, st)
			if err == nil {
				snap.AdminTools, snap.AdminToolsLoaded = tools, true
			}
			return nil
		})
	}
	if r.Has(ViewReviews) {
		g.Go(func() error {
			reviews, err := c.LoadReviews(ctx, st)
			if err == nil {
				snap.Reviews, snap.ReviewsLoaded = reviews, true
			}
			return nil
		})
	}
	_ = g.Wait()
	return snap
}
