package gallery

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/textproto"

	"github.com/jo-hoe/lensgallery/internal/common"
)

const (
	FieldTitle       = "title"
	FieldDescription = "description"
	FieldBeforeImage = "beforeImage"
	FieldAfterImage  = "afterImage"
)

// FileUpload is a locally selected file.
type FileUpload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// EntryForm carries the fields submitted for a create or an update.
// ID is only used to address the entry on update and is never sent in the body.
type EntryForm struct {
	ID          string      `validate:"required"`
	Title       string      `validate:"required"`
	Description string
	BeforeImage *FileUpload `validate:"required"`
	AfterImage  *FileUpload `validate:"required"`
}

// ValidateForCreate checks the fields a new entry needs.
func (f *EntryForm) ValidateForCreate() error {
	return common.ValidatePartial(f, "Title", "BeforeImage", "AfterImage")
}

// ValidateForUpdate checks that the form addresses an entry.
func (f *EntryForm) ValidateForUpdate() error {
	return common.ValidatePartial(f, "ID")
}

// IsEmpty reports whether no field has been filled in.
func (f *EntryForm) IsEmpty() bool {
	return f.ID == "" && f.Title == "" && f.Description == "" && f.BeforeImage == nil && f.AfterImage == nil
}

// encode writes the form as multipart/form-data and returns the body and its content type.
func (f *EntryForm) encode() (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	if err := w.WriteField(FieldTitle, f.Title); err != nil {
		return nil, "", fmt.Errorf("failed to write %s field: %w", FieldTitle, err)
	}
	if err := w.WriteField(FieldDescription, f.Description); err != nil {
		return nil, "", fmt.Errorf("failed to write %s field: %w", FieldDescription, err)
	}
	if err := writeFile(w, FieldBeforeImage, f.BeforeImage); err != nil {
		return nil, "", err
	}
	if err := writeFile(w, FieldAfterImage, f.AfterImage); err != nil {
		return nil, "", err
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to finish multipart body: %w", err)
	}
	return &buf, w.FormDataContentType(), nil
}

func writeFile(w *multipart.Writer, field string, file *FileUpload) error {
	if file == nil {
		return nil
	}
	contentType := file.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, field, file.Filename))
	header.Set("Content-Type", contentType)

	part, err := w.CreatePart(header)
	if err != nil {
		return fmt.Errorf("failed to create %s part: %w", field, err)
	}
	if _, err := part.Write(file.Data); err != nil {
		return fmt.Errorf("failed to write %s part: %w", field, err)
	}
	return nil
}
