package core

import (
	"context"
	"sync"

	"github.com/jo-hoe/lensgallery/internal/gallery"
)

// fakeAPI is an in-memory gallery.API that records calls.
type fakeAPI struct {
	mu sync.Mutex

	entries   []gallery.Entry
	stats     gallery.ViewStats
	listErr   error
	statsErr  error
	createErr error
	updateErr error
	deleteErr error

	listCalls  int
	statsCalls int
	created    []gallery.EntryForm
	updated    []gallery.EntryForm
	deleted    []string
}

func (f *fakeAPI) ListEntries(context.Context) ([]gallery.Entry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]gallery.Entry, len(f.entries))
	copy(out, f.entries)
	return out, nil
}

func (f *fakeAPI) CreateEntry(_ context.Context, form *gallery.EntryForm) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, *form)
	return f.createErr
}

func (f *fakeAPI) UpdateEntry(_ context.Context, form *gallery.EntryForm) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updated = append(f.updated, *form)
	return f.updateErr
}

func (f *fakeAPI) DeleteEntry(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, id)
	return f.deleteErr
}

func (f *fakeAPI) FetchStats(context.Context) (gallery.ViewStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statsCalls++
	if f.statsErr != nil {
		return gallery.ViewStats{}, f.statsErr
	}
	return f.stats, nil
}

func (f *fakeAPI) setEntries(entries []gallery.Entry) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = entries
}

func (f *fakeAPI) setListErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listErr = err
}

func (f *fakeAPI) setStatsErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statsErr = err
}

func (f *fakeAPI) listCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.listCalls
}

func (f *fakeAPI) statsCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.statsCalls
}

// recordingNotifier collects notices.
type recordingNotifier struct {
	mu       sync.Mutex
	messages []string
}

func (n *recordingNotifier) Notify(_ context.Context, message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, message)
}

func (n *recordingNotifier) all() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.messages...)
}

func ref(url string) *gallery.ImageRef {
	return &gallery.ImageRef{URL: url}
}

func intPtr(i int) *int {
	return &i
}

// exampleEntries is one displayable entry followed by one without an after image.
func exampleEntries() []gallery.Entry {
	return []gallery.Entry{
		{ID: "1", Title: "A", Description: "d", BeforeImage: ref("b.png"), AfterImage: ref("a.png"), Likes: intPtr(5)},
		{ID: "2", Title: "B", BeforeImage: ref("x.png")},
	}
}
