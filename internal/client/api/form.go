package api

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"strings"
)

// Upload describes a file to send in a multipart body.
type Upload struct {
	Name        string
	ContentType string
	Size        int64
	Reader      io.Reader
}

// Form is a multipart/form-data body. Requests carrying a Form never get
// the JSON content type; the multipart writer supplies its own boundary.
type Form struct {
	fields []formField
	files  []formFile
}

type formField struct {
	name, value string
}

type formFile struct {
	field, filename, contentType string
	r                            io.Reader
}

// NewForm returns an empty multipart body.
func NewForm() *Form { return &Form{} }

// Set appends a text field.
func (f *Form) Set(name, value string) *Form {
	f.fields = append(f.fields, formField{name: name, value: value})
	return f
}

// File appends a file part. contentType may be empty.
func (f *Form) File(field, filename, contentType string, r io.Reader) *Form {
	f.files = append(f.files, formFile{field: field, filename: filename, contentType: contentType, r: r})
	return f
}

// Upload appends u as a file part named field.
func (f *Form) Upload(field string, u Upload) *Form {
	return f.File(field, u.Name, u.ContentType, u.Reader)
}

// Fields returns the names of all parts in insertion order.
func (f *Form) Fields() []string {
	names := make([]string, 0, len(f.fields)+len(f.files))
	for _, fld := range f.fields {
		names = append(names, fld.name)
	}
	for _, file := range f.files {
		names = append(names, file.field)
	}
	return names
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// encode buffers the whole body so the request can be replayed on redirects.
func (f *Form) encode() (*bytes.Buffer, string, error) {
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)

	for _, fld := range f.fields {
		if err := w.WriteField(fld.name, fld.value); err != nil {
			return nil, "", fmt.Errorf("write field %s: %w", fld.name, err)
		}
	}
	for _, file := range f.files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
			quoteEscaper.Replace(file.field), quoteEscaper.Replace(file.filename)))
		ct := file.contentType
		if ct == "" {
			ct = "application/octet-stream"
		}
		h.Set("Content-Type", ct)

		part, err := w.CreatePart(h)
		if err != nil {
			return nil, "", fmt.Errorf("create part %s: %w", file.field, err)
		}
		if _, err := io.Copy(part, file.r); err != nil {
			return nil, "", fmt.Errorf("copy file %s: %w", file.field, err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("close multipart writer: %w", err)
	}
	return buf, w.FormDataContentType(), nil
}
