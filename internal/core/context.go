package core

import (
	"context"
	"log/slog"

	"github.com/jo-hoe/lensgallery/internal/gallery"
	"github.com/jo-hoe/lensgallery/internal/telemetry"
)

// Notifier shows a blocking notice to the user.
type Notifier interface {
	Notify(ctx context.Context, message string)
}

type NotifierFunc func(ctx context.Context, message string)

func (f NotifierFunc) Notify(ctx context.Context, message string) {
	f(ctx, message)
}

// Confirmer asks the user to confirm an action.
type Confirmer interface {
	Confirm(ctx context.Context, message string) bool
}

type ConfirmerFunc func(ctx context.Context, message string) bool

func (f ConfirmerFunc) Confirm(ctx context.Context, message string) bool {
	return f(ctx, message)
}

// Context is created once per page and shared by all components.
type Context struct {
	API       gallery.API
	View      *View
	Notifier  Notifier
	Confirmer Confirmer
	Logger    *slog.Logger
	Metrics   *telemetry.Metrics
}

type ContextOption func(*Context)

func WithNotifier(n Notifier) ContextOption {
	return func(c *Context) {
		c.Notifier = n
	}
}

func WithConfirmer(cf Confirmer) ContextOption {
	return func(c *Context) {
		c.Confirmer = cf
	}
}

func WithLogger(logger *slog.Logger) ContextOption {
	return func(c *Context) {
		c.Logger = logger
	}
}

func WithMetrics(m *telemetry.Metrics) ContextOption {
	return func(c *Context) {
		c.Metrics = m
	}
}

// NewContext builds a context over api with an empty view. Without options
// notices are only logged and confirmations are refused.
func NewContext(api gallery.API, opts ...ContextOption) *Context {
	c := &Context{
		API:    api,
		View:   NewView(),
		Logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.Notifier == nil {
		logger := c.Logger
		c.Notifier = NotifierFunc(func(_ context.Context, message string) {
			logger.Warn("user notice", "message", message)
		})
	}
	if c.Confirmer == nil {
		c.Confirmer = ConfirmerFunc(func(context.Context, string) bool { return false })
	}
	return c
}

// withView returns a copy of c that renders into view.
func (c *Context) withView(view *View) *Context {
	page := *c
	page.View = view
	return &page
}
