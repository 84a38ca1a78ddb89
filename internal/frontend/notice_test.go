package frontend

import (
	"context"
	"testing"
)

func TestNotifier_CollectsPerRequest(t *testing.T) {
	ctx, collected := withNotices(context.Background())
	notifier := Notifier()

	notifier.Notify(ctx, "first")
	notifier.Notify(ctx, "second")
	notifier.Notify(context.Background(), "elsewhere")

	if got := collected.header(); got != `{"showNotice":"first\nsecond"}` {
		t.Errorf("unexpected header %q", got)
	}
}

func TestNotices_EmptyHeader(t *testing.T) {
	_, collected := withNotices(context.Background())
	if got := collected.header(); got != "" {
		t.Errorf("expected no header, got %q", got)
	}
}

func TestConfirmer(t *testing.T) {
	confirmer := Confirmer()
	ctx := context.Background()

	if confirmer.Confirm(ctx, "delete?") {
		t.Error("expected unflagged request to be refused")
	}
	if confirmer.Confirm(withConfirmation(ctx, false), "delete?") {
		t.Error("expected declined request to be refused")
	}
	if !confirmer.Confirm(withConfirmation(ctx, true), "delete?") {
		t.Error("expected confirmed request to be accepted")
	}
}
