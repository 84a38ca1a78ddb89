package frontend

import (
	"bytes"
	"errors"
	"html/template"
	"io"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/jo-hoe/lensgallery/internal/core"
	"github.com/jo-hoe/lensgallery/internal/gallery"
)

const (
	MainPageName = "index.html"
	// HXReswapHeader overrides the swap of the triggering element.
	HXReswapHeader = "HX-Reswap"
)

// previewFields maps a preview slot to the upload field that feeds it.
var previewFields = map[core.PreviewSlotName]string{
	core.PreviewBefore: gallery.FieldBeforeImage,
	core.PreviewAfter:  gallery.FieldAfterImage,
}

type FrontendService struct {
	client *core.GalleryClient
	config *core.ServiceConfig
	pages  *pageStore
}

func NewFrontendService(config *core.ServiceConfig, client *core.GalleryClient) *FrontendService {
	return &FrontendService{
		client: client,
		config: config,
		pages:  newPageStore(client.NewPage, pageIdleTimeout),
	}
}

type previewData struct {
	Name    string
	Src     template.URL
	Visible bool
}

type pageData struct {
	PageID       string
	Gallery      template.HTML
	OOB          bool
	Stats        core.StatsBoard
	StatsSeconds int
	Upload       gallery.EntryForm
	Before       previewData
	After        previewData
	Dialog       core.EditDialog
}

// rootRedirectHandler redirects root path to index.html
func (service *FrontendService) rootRedirectHandler(ctx echo.Context) error {
	return ctx.Redirect(http.StatusMovedPermanently, "/"+MainPageName)
}

func (service *FrontendService) SetRoutes(e *echo.Echo) {
	e.Renderer = &Template{
		templates: newPageTemplates(),
	}

	e.GET("/", service.rootRedirectHandler)
	e.GET("/"+MainPageName, service.indexHandler)

	htmx := e.Group("/htmx", noticeMiddleware, service.pages.pageMiddleware)
	htmx.GET("/images", service.htmxListImagesHandler)
	htmx.POST("/images", service.htmxCreateImageHandler)
	htmx.GET("/images/:id/edit", service.htmxEditImageHandler)
	htmx.PUT("/images/:id", service.htmxUpdateImageHandler)
	htmx.DELETE("/images/:id", service.htmxDeleteImageHandler)
	htmx.POST("/dialog/close", service.htmxCloseDialogHandler)
	htmx.GET("/stats", service.htmxStatsHandler)
	htmx.POST("/preview/:slot", service.htmxPreviewHandler)
}

// indexHandler starts a new page; every load begins with an empty gallery.
func (service *FrontendService) indexHandler(ctx echo.Context) error {
	id, page := service.pages.create()
	data := service.pageData(page, false)
	data.PageID = id

	service.setNoCache(ctx)
	return ctx.Render(http.StatusOK, MainPageName, data)
}

func (service *FrontendService) htmxListImagesHandler(ctx echo.Context) error {
	page := pageFrom(ctx)
	// a failed refresh keeps the previous rendering, which is what gets returned
	_ = page.Renderer.Refresh(ctx.Request().Context())

	service.setNoCache(ctx)
	return service.renderPartials(ctx, service.pageData(page, false), "gallery")
}

func (service *FrontendService) htmxCreateImageHandler(ctx echo.Context) error {
	form, err := readEntryForm(ctx)
	if err != nil {
		slog.Error("htmxCreateImageHandler: failed to read submitted form",
			"status", http.StatusBadRequest, "error", err)
		return ctx.String(http.StatusBadRequest, "Failed to read submitted form")
	}

	page := pageFrom(ctx)
	if err := page.Mutations.Create(ctx.Request().Context(), form); err != nil {
		slog.Warn("htmxCreateImageHandler: entry not created", "title", form.Title, "error", err)
		return service.keepBrowserForm(ctx)
	}

	service.setNoCache(ctx)
	return service.renderPartials(ctx, service.pageData(page, true), "upload", "gallery")
}

func (service *FrontendService) htmxEditImageHandler(ctx echo.Context) error {
	id := ctx.Param("id")
	page := pageFrom(ctx)
	if err := page.Mutations.OpenEdit(id); err != nil {
		slog.Warn("htmxEditImageHandler: entry not available",
			"status", http.StatusNotFound, "entry_id", id, "error", err)
		return ctx.String(http.StatusNotFound, "Entry not available")
	}

	return service.renderPartials(ctx, service.pageData(page, false), "dialog")
}

func (service *FrontendService) htmxUpdateImageHandler(ctx echo.Context) error {
	form, err := readEntryForm(ctx)
	if err != nil {
		slog.Error("htmxUpdateImageHandler: failed to read submitted form",
			"status", http.StatusBadRequest, "error", err)
		return ctx.String(http.StatusBadRequest, "Failed to read submitted form")
	}
	form.ID = ctx.Param("id")

	page := pageFrom(ctx)
	if err := page.Mutations.Update(ctx.Request().Context(), form); err != nil {
		slog.Warn("htmxUpdateImageHandler: entry not updated", "entry_id", form.ID, "error", err)
		return service.keepBrowserForm(ctx)
	}

	service.setNoCache(ctx)
	return service.renderPartials(ctx, service.pageData(page, true), "dialog", "gallery")
}

func (service *FrontendService) htmxDeleteImageHandler(ctx echo.Context) error {
	id := ctx.Param("id")
	reqCtx := withConfirmation(ctx.Request().Context(), ctx.FormValue("confirmed") == "true")

	page := pageFrom(ctx)
	err := page.Mutations.Delete(reqCtx, id)
	switch {
	case errors.Is(err, core.ErrNotConfirmed):
		slog.Info("htmxDeleteImageHandler: delete not confirmed", "entry_id", id)
	case err != nil:
		slog.Warn("htmxDeleteImageHandler: entry not deleted", "entry_id", id, "error", err)
	}

	service.setNoCache(ctx)
	return service.renderPartials(ctx, service.pageData(page, false), "gallery")
}

func (service *FrontendService) htmxCloseDialogHandler(ctx echo.Context) error {
	page := pageFrom(ctx)
	value := ctx.FormValue("target")
	if value == "" {
		page.Mutations.CloseEdit()
		return service.renderPartials(ctx, service.pageData(page, false), "dialog")
	}

	target, ok := core.ParseClickTarget(value)
	if !ok {
		slog.Warn("htmxCloseDialogHandler: invalid click target",
			"status", http.StatusBadRequest, "target", value)
		return ctx.String(http.StatusBadRequest, "Invalid click target")
	}
	page.Mutations.ClickEditDialog(target)
	return service.renderPartials(ctx, service.pageData(page, false), "dialog")
}

func (service *FrontendService) htmxStatsHandler(ctx echo.Context) error {
	service.setNoCache(ctx)
	return service.renderPartials(ctx, service.statsData(), "stats")
}

func (service *FrontendService) htmxPreviewHandler(ctx echo.Context) error {
	slot, err := core.ParsePreviewSlot(ctx.Param("slot"))
	if err != nil {
		slog.Warn("htmxPreviewHandler: invalid slot",
			"status", http.StatusBadRequest, "slot", ctx.Param("slot"))
		return ctx.String(http.StatusBadRequest, "Invalid preview slot")
	}

	file, err := readUpload(ctx, previewFields[slot])
	if err != nil {
		slog.Error("htmxPreviewHandler: failed to read selected file",
			"status", http.StatusBadRequest, "slot", string(slot), "error", err)
		return ctx.String(http.StatusBadRequest, "Failed to read selected file")
	}
	page := pageFrom(ctx)
	if err := page.Previews.ShowPreview(slot, file); err != nil {
		slog.Error("htmxPreviewHandler: failed to show preview", "slot", string(slot), "error", err)
		return ctx.String(http.StatusInternalServerError, "Failed to show preview")
	}

	return service.renderPartials(ctx, service.preview(page, slot), "preview")
}

// renderPartials writes the named templates one after another into a single response.
func (service *FrontendService) renderPartials(ctx echo.Context, data any, names ...string) error {
	var buf bytes.Buffer
	for _, name := range names {
		if err := ctx.Echo().Renderer.Render(&buf, name, data, ctx); err != nil {
			slog.Error("renderPartials: failed to render template", "template", name, "error", err)
			return ctx.String(http.StatusInternalServerError, "Failed to render page")
		}
	}
	return ctx.HTMLBlob(http.StatusOK, buf.Bytes())
}

// keepBrowserForm answers a failed mutation without swapping anything, so the
// browser keeps the entered values and selected files. Notices still arrive
// through HX-Trigger.
func (service *FrontendService) keepBrowserForm(ctx echo.Context) error {
	ctx.Response().Header().Set(HXReswapHeader, "none")
	return ctx.NoContent(http.StatusOK)
}

// statsData holds the shared stats board; stats are the same for every page.
func (service *FrontendService) statsData() pageData {
	return pageData{
		Stats:        service.client.Context.View.Stats(),
		StatsSeconds: service.statsSeconds(),
	}
}

func (service *FrontendService) pageData(page *core.Page, oob bool) pageData {
	view := page.Context.View
	data := service.statsData()
	// the projection markup is produced by html/template
	data.Gallery = template.HTML(view.Projection().HTML)
	data.OOB = oob
	data.Upload = view.UploadForm()
	data.Before = service.preview(page, core.PreviewBefore)
	data.After = service.preview(page, core.PreviewAfter)
	data.Dialog = view.Dialog()
	return data
}

func (service *FrontendService) preview(page *core.Page, slot core.PreviewSlotName) previewData {
	current := page.Context.View.Preview(slot)
	return previewData{
		Name: string(slot),
		// preview sources are data URLs built from the selected file
		Src:     template.URL(current.Src),
		Visible: current.Visible,
	}
}

func (service *FrontendService) statsSeconds() int {
	seconds := int(service.config.Stats.Interval.Seconds())
	if seconds < 1 {
		return 1
	}
	return seconds
}

func (service *FrontendService) setNoCache(ctx echo.Context) {
	ctx.Response().Header().Set("Cache-Control", "no-store, no-cache, must-revalidate, max-age=0")
	ctx.Response().Header().Set("Pragma", "no-cache")
	ctx.Response().Header().Set("Expires", "0")
}

// readEntryForm reads the text fields and the optional files of a submitted entry.
func readEntryForm(ctx echo.Context) (gallery.EntryForm, error) {
	form := gallery.EntryForm{
		Title:       ctx.FormValue(gallery.FieldTitle),
		Description: ctx.FormValue(gallery.FieldDescription),
	}
	var err error
	if form.BeforeImage, err = readUpload(ctx, gallery.FieldBeforeImage); err != nil {
		return form, err
	}
	if form.AfterImage, err = readUpload(ctx, gallery.FieldAfterImage); err != nil {
		return form, err
	}
	return form, nil
}

// readUpload returns the file submitted as field, or nil when none was selected.
func readUpload(ctx echo.Context, field string) (*gallery.FileUpload, error) {
	header, err := ctx.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	src, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := src.Close(); cerr != nil {
			slog.Error("readUpload: failed to close uploaded file reader", "error", cerr, "filename", header.Filename)
		}
	}()

	data, err := io.ReadAll(src)
	if err != nil {
		return nil, err
	}
	return &gallery.FileUpload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}
