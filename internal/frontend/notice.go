package frontend

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"sync"

	"github.com/labstack/echo/v4"

	"github.com/jo-hoe/lensgallery/internal/core"
)

const (
	// HXTriggerHeader makes htmx dispatch the named events in the browser.
	HXTriggerHeader = "HX-Trigger"
	noticeEvent     = "showNotice"
)

type noticesKey struct{}

type confirmedKey struct{}

// notices collects the user notices raised while handling one request.
type notices struct {
	mu       sync.Mutex
	messages []string
}

func (n *notices) add(message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, message)
}

// header returns the HX-Trigger value for the collected notices, or "" when there are none.
func (n *notices) header() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.messages) == 0 {
		return ""
	}
	value, err := json.Marshal(map[string]string{noticeEvent: strings.Join(n.messages, "\n")})
	if err != nil {
		return ""
	}
	return string(value)
}

func withNotices(ctx context.Context) (context.Context, *notices) {
	collected := &notices{}
	return context.WithValue(ctx, noticesKey{}, collected), collected
}

func noticesFrom(ctx context.Context) *notices {
	collected, _ := ctx.Value(noticesKey{}).(*notices)
	return collected
}

func withConfirmation(ctx context.Context, confirmed bool) context.Context {
	return context.WithValue(ctx, confirmedKey{}, confirmed)
}

// Notifier hands notices to the request that raised them. Notices raised
// outside a request, e.g. by the stats scheduler, are logged.
func Notifier() core.Notifier {
	return core.NotifierFunc(func(ctx context.Context, message string) {
		if collected := noticesFrom(ctx); collected != nil {
			collected.add(message)
			return
		}
		slog.Warn("notice raised outside of a request", "message", message)
	})
}

// Confirmer accepts only requests the browser flagged as confirmed.
func Confirmer() core.Confirmer {
	return core.ConfirmerFunc(func(ctx context.Context, _ string) bool {
		confirmed, _ := ctx.Value(confirmedKey{}).(bool)
		return confirmed
	})
}

// noticeMiddleware attaches a notice collector to the request and sends the
// collected notices as an HX-Trigger header before the response is written.
func noticeMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx, collected := withNotices(c.Request().Context())
		c.SetRequest(c.Request().WithContext(ctx))
		c.Response().Before(func() {
			if value := collected.header(); value != "" {
				c.Response().Header().Set(HXTriggerHeader, value)
			}
		})
		return next(c)
	}
}
