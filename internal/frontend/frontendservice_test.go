package frontend

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/jo-hoe/lensgallery/internal/core"
	"github.com/jo-hoe/lensgallery/internal/gallery"
	"github.com/jo-hoe/lensgallery/internal/imageprocessing"
)

type stubAPI struct {
	mu        sync.Mutex
	entries   []gallery.Entry
	stats     gallery.ViewStats
	createErr error
	updateErr error
	created   []gallery.EntryForm
	updated   []gallery.EntryForm
	deleted   []string
}

func (s *stubAPI) ListEntries(context.Context) ([]gallery.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]gallery.Entry(nil), s.entries...), nil
}

func (s *stubAPI) CreateEntry(_ context.Context, form *gallery.EntryForm) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.created = append(s.created, *form)
	return s.createErr
}

func (s *stubAPI) UpdateEntry(_ context.Context, form *gallery.EntryForm) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updated = append(s.updated, *form)
	return s.updateErr
}

func (s *stubAPI) DeleteEntry(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleted = append(s.deleted, id)
	return nil
}

func (s *stubAPI) FetchStats(context.Context) (gallery.ViewStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats, nil
}

const testPageID = "test-page"

func newTestServer(t *testing.T, api *stubAPI) (*echo.Echo, *FrontendService) {
	t.Helper()
	config := &core.ServiceConfig{
		Port:    core.DefaultPort,
		API:     core.APIConfig{BaseURL: "http://localhost:3000"},
		Stats:   core.StatsConfig{Interval: 15 * time.Second, Locale: "en"},
		Preview: core.PreviewConfig{Commands: []imageprocessing.CommandConfig{}},
	}
	c := core.NewContext(api, core.WithNotifier(Notifier()), core.WithConfirmer(Confirmer()))
	client, err := core.NewGalleryClient(c, config, core.WithCardTemplate(NewCardTemplate()))
	if err != nil {
		t.Fatalf("NewGalleryClient error: %v", err)
	}
	if err := client.Renderer.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh error: %v", err)
	}

	e := echo.New()
	service := NewFrontendService(config, client)
	service.SetRoutes(e)
	return e, service
}

// testView returns the view of the page every test request belongs to.
func testView(service *FrontendService) *core.View {
	return service.pages.get(testPageID).Context.View
}

func serve(e *echo.Echo, req *http.Request) *httptest.ResponseRecorder {
	if req.Header.Get(PageIDHeader) == "" {
		req.Header.Set(PageIDHeader, testPageID)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func multipartRequest(t *testing.T, method, target string, fields map[string]string, files map[string][]byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for name, value := range fields {
		if err := w.WriteField(name, value); err != nil {
			t.Fatalf("WriteField error: %v", err)
		}
	}
	for name, data := range files {
		part, err := w.CreateFormFile(name, name+".png")
		if err != nil {
			t.Fatalf("CreateFormFile error: %v", err)
		}
		if _, err := part.Write(data); err != nil {
			t.Fatalf("write file error: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close error: %v", err)
	}
	req := httptest.NewRequest(method, target, &body)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	return req
}

func formRequest(method, target string, values url.Values) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(values.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	return req
}

func noticeOf(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	value := rec.Header().Get(HXTriggerHeader)
	if value == "" {
		return ""
	}
	var events map[string]string
	if err := json.Unmarshal([]byte(value), &events); err != nil {
		t.Fatalf("invalid %s header %q: %v", HXTriggerHeader, value, err)
	}
	return events[noticeEvent]
}

func sampleEntries() []gallery.Entry {
	return []gallery.Entry{
		{ID: "1", Title: "Kitchen", Description: "new tiles", BeforeImage: &gallery.ImageRef{URL: "/img/b1"}, AfterImage: &gallery.ImageRef{URL: "/img/a1"}},
		{ID: "2", Title: "Hidden", BeforeImage: &gallery.ImageRef{URL: "/img/b2"}},
	}
}

func TestRootRedirect(t *testing.T) {
	e, _ := newTestServer(t, &stubAPI{})

	rec := serve(e, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusMovedPermanently || rec.Header().Get("Location") != "/"+MainPageName {
		t.Errorf("unexpected redirect %d to %q", rec.Code, rec.Header().Get("Location"))
	}
}

func TestIndexPage(t *testing.T) {
	e, service := newTestServer(t, &stubAPI{entries: sampleEntries(), stats: gallery.ViewStats{TotalUniqueVisitors: 1234, TotalViews: 98765}})
	if err := service.client.Stats.Refresh(context.Background()); err != nil {
		t.Fatalf("stats Refresh error: %v", err)
	}

	rec := serve(e, httptest.NewRequest(http.MethodGet, "/"+MainPageName, nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	body := rec.Body.String()
	for _, want := range []string{"1,234", "98,765", `hx-trigger="every 15s"`, `hx-get="/htmx/images" hx-trigger="load"`, PageIDHeader} {
		if !strings.Contains(body, want) {
			t.Errorf("expected %q in page", want)
		}
	}
	if strings.Contains(body, testPageID) {
		t.Error("every page load must get a fresh page id")
	}
	if strings.Contains(body, `data-id="1"`) {
		t.Error("the gallery is loaded by the page itself")
	}
}

func TestListImages_AfterIndexPage(t *testing.T) {
	e, _ := newTestServer(t, &stubAPI{entries: sampleEntries()})

	rec := serve(e, httptest.NewRequest(http.MethodGet, "/htmx/images", nil))
	body := rec.Body.String()
	if !strings.Contains(body, `data-id="1"`) || !strings.Contains(body, "Kitchen") {
		t.Errorf("expected rendered entry, got:\n%s", body)
	}
	if strings.Contains(body, `data-id="2"`) {
		t.Error("entry without after image must not be rendered")
	}
}

func TestListImages(t *testing.T) {
	api := &stubAPI{}
	e, _ := newTestServer(t, api)
	api.entries = sampleEntries()

	rec := serve(e, httptest.NewRequest(http.MethodGet, "/htmx/images", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, `id="gallery-list"`) || !strings.Contains(body, `hx-delete="/htmx/images/1"`) {
		t.Errorf("expected refreshed list with delete control, got:\n%s", body)
	}
	if !strings.Contains(body, core.DeleteConfirmMessage) {
		t.Error("expected delete confirmation text on the control")
	}
	if strings.Contains(body, "hx-swap-oob") {
		t.Error("plain list response must not be out of band")
	}
}

func TestCreateImage(t *testing.T) {
	api := &stubAPI{}
	e, _ := newTestServer(t, api)
	api.entries = sampleEntries()

	req := multipartRequest(t, http.MethodPost, "/htmx/images",
		map[string]string{gallery.FieldTitle: "Kitchen", gallery.FieldDescription: "new tiles"},
		map[string][]byte{gallery.FieldBeforeImage: {1}, gallery.FieldAfterImage: {2}})
	rec := serve(e, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if len(api.created) != 1 || api.created[0].Title != "Kitchen" || api.created[0].AfterImage == nil {
		t.Fatalf("unexpected create calls %+v", api.created)
	}
	body := rec.Body.String()
	if !strings.Contains(body, `hx-swap-oob="true"`) || !strings.Contains(body, `data-id="1"`) {
		t.Errorf("expected out of band list update, got:\n%s", body)
	}
	if notice := noticeOf(t, rec); notice != "" {
		t.Errorf("expected no notice, got %q", notice)
	}
}

func TestCreateImage_ServerRejects(t *testing.T) {
	api := &stubAPI{createErr: &gallery.StatusError{Operation: gallery.OperationCreate, StatusCode: http.StatusBadRequest, Message: "too big"}}
	e, _ := newTestServer(t, api)

	req := multipartRequest(t, http.MethodPost, "/htmx/images",
		map[string]string{gallery.FieldTitle: "Kitchen"},
		map[string][]byte{gallery.FieldBeforeImage: {1}, gallery.FieldAfterImage: {2}})
	rec := serve(e, req)

	if notice := noticeOf(t, rec); notice != "Upload failed: too big" {
		t.Errorf("unexpected notice %q", notice)
	}
	if rec.Code != http.StatusOK || rec.Header().Get(HXReswapHeader) != "none" {
		t.Errorf("expected 200 with %s none, got %d %q", HXReswapHeader, rec.Code, rec.Header().Get(HXReswapHeader))
	}
	if strings.Contains(rec.Body.String(), `id="upload-section"`) {
		t.Error("a rejected upload must leave the submitted form in place")
	}
}

func TestCreateImage_MissingFieldsKeepsForm(t *testing.T) {
	api := &stubAPI{}
	e, _ := newTestServer(t, api)

	req := multipartRequest(t, http.MethodPost, "/htmx/images",
		map[string]string{gallery.FieldTitle: "Kitchen"},
		map[string][]byte{gallery.FieldBeforeImage: {1}})
	rec := serve(e, req)

	if len(api.created) != 0 {
		t.Fatalf("expected no create call, got %+v", api.created)
	}
	if rec.Header().Get(HXReswapHeader) != "none" || rec.Body.Len() != 0 {
		t.Errorf("expected an empty response without swap, got %q: %s", rec.Header().Get(HXReswapHeader), rec.Body.String())
	}
	if notice := noticeOf(t, rec); !strings.HasPrefix(notice, "Upload failed: ") {
		t.Errorf("unexpected notice %q", notice)
	}
}

func TestCreateImage_FailureStaysOnPage(t *testing.T) {
	api := &stubAPI{createErr: &gallery.StatusError{Operation: gallery.OperationCreate, StatusCode: http.StatusInternalServerError}}
	e, service := newTestServer(t, api)

	req := multipartRequest(t, http.MethodPost, "/htmx/images",
		map[string]string{gallery.FieldTitle: "SecretTitleA"},
		map[string][]byte{gallery.FieldBeforeImage: {1}, gallery.FieldAfterImage: {2}})
	serve(e, req)
	if testView(service).UploadForm().Title != "SecretTitleA" {
		t.Fatal("expected the failed submission on its own page")
	}

	rec := serve(e, httptest.NewRequest(http.MethodGet, "/"+MainPageName, nil))
	if strings.Contains(rec.Body.String(), "SecretTitleA") {
		t.Error("a new page must not show another page's form")
	}

	other := httptest.NewRequest(http.MethodGet, "/htmx/images", nil)
	other.Header.Set(PageIDHeader, "other-page")
	serve(e, other)
	if title := service.pages.get("other-page").Context.View.UploadForm().Title; title != "" {
		t.Errorf("expected an empty form on another page, got %q", title)
	}
}

func TestDeleteImage_RequiresConfirmation(t *testing.T) {
	api := &stubAPI{entries: sampleEntries()}
	e, _ := newTestServer(t, api)

	serve(e, httptest.NewRequest(http.MethodDelete, "/htmx/images/1", nil))
	if len(api.deleted) != 0 {
		t.Fatalf("expected no delete without confirmation, got %v", api.deleted)
	}

	rec := serve(e, httptest.NewRequest(http.MethodDelete, "/htmx/images/1?confirmed=true", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if len(api.deleted) != 1 || api.deleted[0] != "1" {
		t.Errorf("unexpected delete calls %v", api.deleted)
	}
}

func TestEditDialogFlow(t *testing.T) {
	api := &stubAPI{entries: sampleEntries()}
	e, service := newTestServer(t, api)
	view := testView(service)
	serve(e, httptest.NewRequest(http.MethodGet, "/htmx/images", nil))

	rec := serve(e, httptest.NewRequest(http.MethodGet, "/htmx/images/2/edit", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 for an entry that is not rendered, got %d", rec.Code)
	}

	rec = serve(e, httptest.NewRequest(http.MethodGet, "/htmx/images/1/edit", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if body := rec.Body.String(); !strings.Contains(body, `value="Kitchen"`) || !strings.Contains(body, "new tiles") {
		t.Errorf("expected primed dialog, got:\n%s", body)
	}

	rec = serve(e, formRequest(http.MethodPost, "/htmx/dialog/close", url.Values{"target": {"content"}}))
	if rec.Code != http.StatusOK || !view.Dialog().IsOpen() {
		t.Fatal("content click must keep the dialog open")
	}

	rec = serve(e, formRequest(http.MethodPost, "/htmx/dialog/close", url.Values{"target": {"elsewhere"}}))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for unknown target, got %d", rec.Code)
	}

	rec = serve(e, formRequest(http.MethodPost, "/htmx/dialog/close", url.Values{"target": {"backdrop"}}))
	if rec.Code != http.StatusOK || view.Dialog().IsOpen() {
		t.Fatal("backdrop click must close the dialog")
	}
	if strings.Contains(rec.Body.String(), "modal-backdrop") {
		t.Error("closed dialog must render empty")
	}
}

func TestUpdateImage(t *testing.T) {
	api := &stubAPI{entries: sampleEntries()}
	e, service := newTestServer(t, api)

	serve(e, httptest.NewRequest(http.MethodGet, "/htmx/images", nil))
	serve(e, httptest.NewRequest(http.MethodGet, "/htmx/images/1/edit", nil))
	req := multipartRequest(t, http.MethodPut, "/htmx/images/1",
		map[string]string{gallery.FieldTitle: "Kitchen v2", gallery.FieldDescription: "grout"}, nil)
	rec := serve(e, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if len(api.updated) != 1 {
		t.Fatalf("expected one update, got %+v", api.updated)
	}
	updated := api.updated[0]
	if updated.ID != "1" || updated.Title != "Kitchen v2" || updated.BeforeImage != nil || updated.AfterImage != nil {
		t.Errorf("unexpected update %+v", updated)
	}
	if testView(service).Dialog().IsOpen() {
		t.Error("expected dialog to close after update")
	}
	if body := rec.Body.String(); strings.Contains(body, "modal-backdrop") || !strings.Contains(body, `hx-swap-oob="true"`) {
		t.Errorf("expected a closed dialog and an out of band list, got:\n%s", body)
	}
}

func TestUpdateImage_ServerRejects(t *testing.T) {
	api := &stubAPI{
		entries:   sampleEntries(),
		updateErr: &gallery.StatusError{Operation: gallery.OperationUpdate, StatusCode: http.StatusInternalServerError},
	}
	e, service := newTestServer(t, api)

	serve(e, httptest.NewRequest(http.MethodGet, "/htmx/images", nil))
	serve(e, httptest.NewRequest(http.MethodGet, "/htmx/images/1/edit", nil))
	req := multipartRequest(t, http.MethodPut, "/htmx/images/1",
		map[string]string{gallery.FieldTitle: "Kitchen edited", gallery.FieldDescription: "typed by hand"}, nil)
	rec := serve(e, req)

	if notice := noticeOf(t, rec); notice != core.UpdateFailedMessage {
		t.Errorf("unexpected notice %q", notice)
	}
	if rec.Code != http.StatusOK || rec.Header().Get(HXReswapHeader) != "none" {
		t.Errorf("expected 200 with %s none, got %d %q", HXReswapHeader, rec.Code, rec.Header().Get(HXReswapHeader))
	}
	body := rec.Body.String()
	if strings.Contains(body, "Kitchen") || strings.Contains(body, "new tiles") || strings.Contains(body, "edit-dialog") {
		t.Errorf("a rejected update must not replace the edited dialog, got:\n%s", body)
	}
	if !testView(service).Dialog().IsOpen() {
		t.Error("expected the dialog to stay open")
	}
}

func TestStatsPartial(t *testing.T) {
	api := &stubAPI{stats: gallery.ViewStats{TotalUniqueVisitors: 5, TotalViews: 1234}}
	e, service := newTestServer(t, api)
	_ = service.client.Stats.Refresh(context.Background())

	rec := serve(e, httptest.NewRequest(http.MethodGet, "/htmx/stats", nil))
	body := rec.Body.String()
	if !strings.Contains(body, `<strong id="total-views">1,234</strong>`) || !strings.Contains(body, `<strong id="total-unique-visitors">5</strong>`) {
		t.Errorf("unexpected stats partial:\n%s", body)
	}
}

func TestPreview(t *testing.T) {
	e, service := newTestServer(t, &stubAPI{})

	req := multipartRequest(t, http.MethodPost, "/htmx/preview/before", nil,
		map[string][]byte{gallery.FieldBeforeImage: []byte("\x89PNG\r\n\x1a\n")})
	rec := serve(e, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, `id="preview-before"`) || !strings.Contains(body, `src="data:`) {
		t.Errorf("expected data url preview, got:\n%s", body)
	}
	if strings.Contains(body, "hidden") {
		t.Error("expected preview to be visible")
	}
	if !testView(service).Preview(core.PreviewBefore).Visible {
		t.Error("expected view slot to be visible")
	}

	rec = serve(e, httptest.NewRequest(http.MethodPost, "/htmx/preview/middle", nil))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for unknown slot, got %d", rec.Code)
	}
}
