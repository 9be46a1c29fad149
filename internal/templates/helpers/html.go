package helpers

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

// HTML writes markup for hand-assembled components. The first write error
// sticks and is returned by Err, so call sites can chain writes.
type HTML struct {
	ctx context.Context
	w   io.Writer
	err error
}

// NewHTML wraps w for the render pass of ctx.
func NewHTML(ctx context.Context, w io.Writer) *HTML {
	return &HTML{ctx: ctx, w: w}
}

// Context returns the render context.
func (h *HTML) Context() context.Context {
	return h.ctx
}

// Raw writes trusted markup verbatim.
func (h *HTML) Raw(markup string) *HTML {
	if h.err == nil {
		_, h.err = io.WriteString(h.w, markup)
	}
	return h
}

// Text writes an escaped text node.
func (h *HTML) Text(value string) *HTML {
	return h.Raw(templ.EscapeString(value))
}

// Attr writes ` name="value"` with value escaped.
func (h *HTML) Attr(name, value string) *HTML {
	return h.Raw(" " + name + `="` + templ.EscapeString(value) + `"`)
}

// AttrIf writes the attribute only when cond holds.
func (h *HTML) AttrIf(cond bool, name, value string) *HTML {
	if cond {
		return h.Attr(name, value)
	}
	return h
}

// Flag writes a boolean attribute when set.
func (h *HTML) Flag(set bool, name string) *HTML {
	if set {
		return h.Raw(" " + name)
	}
	return h
}

// Component renders a nested component into the same writer.
func (h *HTML) Component(c templ.Component) *HTML {
	if h.err == nil && c != nil {
		h.err = c.Render(h.ctx, h.w)
	}
	return h
}

// Err returns the first write error.
func (h *HTML) Err() error {
	return h.err
}

// Component adapts a render function built on HTML into a templ.Component.
func Component(render func(h *HTML)) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := NewHTML(ctx, w)
		render(h)
		return h.Err()
	})
}

// Join renders components back to back, e.g. a primary fragment followed by
// out-of-band swaps.
func Join(components ...templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		for _, c := range components {
			if c == nil {
				continue
			}
			if err := c.Render(ctx, w); err != nil {
				return err
			}
		}
		return nil
	})
}
