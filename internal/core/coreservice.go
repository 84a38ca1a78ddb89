package core

import (
	"context"
	"fmt"
	"html/template"

	"github.com/jo-hoe/lensgallery/internal/imageprocessing"
)

// GalleryClient wires the four components over one shared Context.
type GalleryClient struct {
	Context   *Context
	Renderer  *GalleryRenderer
	Mutations *MutationController
	Stats     *StatsPoller
	Previews  *PreviewController

	cardTemplate *template.Template
	invoker      *imageprocessing.CommandInvoker
}

// Page is the state of one open browser page: its own rendered gallery,
// upload form, previews and edit dialog. Stats stay shared on the client.
type Page struct {
	Context   *Context
	Renderer  *GalleryRenderer
	Mutations *MutationController
	Previews  *PreviewController
}

type clientOptions struct {
	cardTemplate *template.Template
}

type ClientOption func(*clientOptions)

// WithCardTemplate replaces DefaultCardTemplate for the gallery list.
func WithCardTemplate(tmpl *template.Template) ClientOption {
	return func(o *clientOptions) {
		o.cardTemplate = tmpl
	}
}

func NewGalleryClient(c *Context, config *ServiceConfig, opts ...ClientOption) (*GalleryClient, error) {
	var options clientOptions
	for _, opt := range opts {
		opt(&options)
	}

	formatter, err := NewCountFormatter(config.Stats.Locale)
	if err != nil {
		return nil, err
	}
	commands, err := imageprocessing.DefaultRegistry.Build(withPixelLimit(config.Preview.Commands, config.Preview.MaxPixels))
	if err != nil {
		return nil, fmt.Errorf("failed to build preview pipeline: %w", err)
	}

	invoker := imageprocessing.NewCommandInvoker(commands)
	renderer := NewGalleryRenderer(c, options.cardTemplate)
	return &GalleryClient{
		Context:      c,
		Renderer:     renderer,
		Mutations:    NewMutationController(c, renderer),
		Stats:        NewStatsPoller(c, formatter, config.Stats.Interval),
		Previews:     NewPreviewController(c, invoker),
		cardTemplate: options.cardTemplate,
		invoker:      invoker,
	}, nil
}

// NewPage starts an empty page that shares the API, notifier, confirmer,
// logger, metrics and preview pipeline of the client.
func (g *GalleryClient) NewPage() *Page {
	c := g.Context.withView(NewView())
	renderer := NewGalleryRenderer(c, g.cardTemplate)
	return &Page{
		Context:   c,
		Renderer:  renderer,
		Mutations: NewMutationController(c, renderer),
		Previews:  NewPreviewController(c, g.invoker),
	}
}

// Start renders the gallery once and starts the stats poller. A failed
// initial gallery fetch leaves the list empty and does not stop the start.
func (g *GalleryClient) Start(ctx context.Context) error {
	_ = g.Renderer.Refresh(ctx)
	return g.Stats.Start(ctx)
}

func (g *GalleryClient) Stop() {
	g.Stats.Stop()
}

// withPixelLimit sets maxPixels on every command that does not set its own.
func withPixelLimit(commands []imageprocessing.CommandConfig, maxPixels int) []imageprocessing.CommandConfig {
	if maxPixels <= 0 {
		return commands
	}
	limited := make([]imageprocessing.CommandConfig, len(commands))
	for i, cmd := range commands {
		params := make(map[string]any, len(cmd.Params)+1)
		for key, value := range cmd.Params {
			params[key] = value
		}
		if _, ok := params["maxPixels"]; !ok {
			params["maxPixels"] = maxPixels
		}
		limited[i] = imageprocessing.CommandConfig{Name: cmd.Name, Params: params}
	}
	return limited
}
