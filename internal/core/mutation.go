package core

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/jo-hoe/lensgallery/internal/gallery"
)

const (
	DeleteConfirmMessage = "Are you sure you want to delete this entry?"
	UpdateFailedMessage  = "Failed to update entry."
	DeleteFailedMessage  = "Failed to delete entry"
	uploadFailedPrefix   = "Upload failed: "
)

var (
	// ErrNotConfirmed is returned by Delete when the user declined.
	ErrNotConfirmed = errors.New("delete not confirmed")
	// ErrUnknownEntry is returned by OpenEdit when no card is rendered for the id.
	ErrUnknownEntry = errors.New("entry is not rendered")
)

// MutationController issues create, update and delete requests and
// resynchronizes the rendered list after each success.
type MutationController struct {
	c        *Context
	renderer *GalleryRenderer
}

func NewMutationController(c *Context, renderer *GalleryRenderer) *MutationController {
	return &MutationController{c: c, renderer: renderer}
}

// Create submits a new entry. The submitted values become the upload form
// state and stay there unless the request succeeds.
func (m *MutationController) Create(ctx context.Context, form gallery.EntryForm) error {
	m.c.View.SetUploadForm(form)

	if err := form.ValidateForCreate(); err != nil {
		m.c.Notifier.Notify(ctx, uploadFailedPrefix+"title, before image and after image are required")
		return err
	}

	if err := m.c.API.CreateEntry(ctx, &form); err != nil {
		if statusErr, ok := gallery.AsStatusError(err); ok {
			m.c.Notifier.Notify(ctx, uploadFailedPrefix+serverMessage(statusErr))
		} else {
			m.c.Logger.Error("error uploading entry", "error", err)
		}
		return err
	}

	m.c.View.resetUploadForm()
	m.resync(ctx)
	return nil
}

// Update submits edited fields for form.ID.
func (m *MutationController) Update(ctx context.Context, form gallery.EntryForm) error {
	if err := form.ValidateForUpdate(); err != nil {
		m.c.Notifier.Notify(ctx, UpdateFailedMessage)
		return err
	}

	if err := m.c.API.UpdateEntry(ctx, &form); err != nil {
		if _, ok := gallery.AsStatusError(err); ok {
			m.c.Notifier.Notify(ctx, UpdateFailedMessage)
		} else {
			m.c.Logger.Error("error updating entry", "entry_id", form.ID, "error", err)
		}
		return err
	}

	m.c.View.closeDialog()
	m.resync(ctx)
	return nil
}

// Delete removes the entry after the user confirmed.
func (m *MutationController) Delete(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("delete: missing entry id")
	}
	if !m.c.Confirmer.Confirm(ctx, DeleteConfirmMessage) {
		return ErrNotConfirmed
	}

	if err := m.c.API.DeleteEntry(ctx, id); err != nil {
		if _, ok := gallery.AsStatusError(err); ok {
			m.c.Notifier.Notify(ctx, DeleteFailedMessage)
		} else {
			m.c.Logger.Error("error deleting entry", "entry_id", id, "error", err)
		}
		return err
	}

	m.resync(ctx)
	return nil
}

// OpenEdit primes the edit form from the text rendered for id and opens the dialog.
func (m *MutationController) OpenEdit(id string) error {
	title, description, ok := m.c.View.Projection().CardText(id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownEntry, id)
	}
	m.c.View.openDialog(gallery.EntryForm{
		ID:          id,
		Title:       title,
		Description: description,
	})
	return nil
}

// CloseEdit is the explicit close control of the dialog.
func (m *MutationController) CloseEdit() {
	m.c.View.closeDialog()
}

// ClickEditDialog handles a click on the open dialog; only backdrop clicks close it.
func (m *MutationController) ClickEditDialog(target ClickTarget) bool {
	return m.c.View.clickDialog(target)
}

// resync re-fetches the collection. Its failure is handled by the renderer.
func (m *MutationController) resync(ctx context.Context) {
	_ = m.renderer.Refresh(ctx)
}

func serverMessage(err *gallery.StatusError) string {
	if err.Message != "" {
		return err.Message
	}
	return http.StatusText(err.StatusCode)
}
