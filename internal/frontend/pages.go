package frontend

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/jo-hoe/lensgallery/internal/core"
)

const (
	// PageIDHeader identifies the browser page an htmx request comes from.
	PageIDHeader    = "X-Page-ID"
	pageContextKey  = "page"
	pageIdleTimeout = 30 * time.Minute
)

type pageEntry struct {
	page     *core.Page
	lastSeen time.Time
}

// pageStore keeps the state of every open browser page. Pages that were not
// used for idleTimeout are dropped.
type pageStore struct {
	mu          sync.Mutex
	pages       map[string]*pageEntry
	newPage     func() *core.Page
	idleTimeout time.Duration
	now         func() time.Time
}

func newPageStore(newPage func() *core.Page, idleTimeout time.Duration) *pageStore {
	return &pageStore{
		pages:       make(map[string]*pageEntry),
		newPage:     newPage,
		idleTimeout: idleTimeout,
		now:         time.Now,
	}
}

// create starts an empty page under a fresh id.
func (s *pageStore) create() (string, *core.Page) {
	id := uuid.NewString()
	return id, s.get(id)
}

// get returns the page for id. Unknown or expired ids get an empty page.
func (s *pageStore) get(id string) *core.Page {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if entry, ok := s.pages[id]; ok {
		entry.lastSeen = now
		return entry.page
	}

	s.evictIdle(now)
	page := s.newPage()
	s.pages[id] = &pageEntry{page: page, lastSeen: now}
	return page
}

func (s *pageStore) evictIdle(now time.Time) {
	for id, entry := range s.pages {
		if now.Sub(entry.lastSeen) > s.idleTimeout {
			delete(s.pages, id)
		}
	}
}

func (s *pageStore) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pages)
}

// pageMiddleware resolves the page named by PageIDHeader. Requests without
// the header get a page of their own.
func (s *pageStore) pageMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		id := c.Request().Header.Get(PageIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(pageContextKey, s.get(id))
		return next(c)
	}
}

func pageFrom(c echo.Context) *core.Page {
	page, _ := c.Get(pageContextKey).(*core.Page)
	return page
}
