package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"path"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/atinyakov/GophTube/internal/models"
	"github.com/atinyakov/GophTube/internal/service"
)

const (
	// maxUploadSize bounds multipart bodies; videos may be up to 100 MiB.
	maxUploadSize = 110 << 20
	// maxMemory is the part of a multipart body kept in memory.
	maxMemory = 32 << 20
	// mediaPrefix is the URI prefix of recorded upload names.
	mediaPrefix = "/media/"
)

// respond writes data wrapped in the response envelope.
func respond(w http.ResponseWriter, status int, data any, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(models.Envelope[any]{
		StatusCode: status,
		Data:       data,
		Message:    msg,
		Success:    status < http.StatusBadRequest,
	})
}

// fail writes err as an error envelope. Internal errors are logged and
// their details withheld.
func fail(w http.ResponseWriter, log *zap.Logger, err error) {
	status := statusOf(service.KindOf(err))
	msg := "Something went wrong"
	var svcErr *service.Error
	if errors.As(err, &svcErr) && svcErr.Kind != service.KindInternal {
		msg = svcErr.Message
	}
	if status == http.StatusInternalServerError && log != nil {
		log.Error("request failed", zap.Error(err))
	}
	respond(w, status, nil, msg)
}

func badRequest(w http.ResponseWriter, msg string) {
	respond(w, http.StatusBadRequest, nil, msg)
}

func statusOf(kind service.Kind) int {
	switch kind {
	case service.KindInvalid:
		return http.StatusBadRequest
	case service.KindUnauthorized:
		return http.StatusUnauthorized
	case service.KindForbidden:
		return http.StatusForbidden
	case service.KindNotFound:
		return http.StatusNotFound
	case service.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// decodeJSON reads a JSON body into v. An empty body leaves v unchanged.
func decodeJSON(r *http.Request, v any) error {
	if r.ContentLength == 0 {
		return nil
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("decode body: %w", err)
	}
	return nil
}

// parseMultipart parses a multipart body of at most maxUploadSize bytes.
func parseMultipart(w http.ResponseWriter, r *http.Request) error {
	if !strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		return errors.New("expected multipart/form-data body")
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	return r.ParseMultipartForm(maxMemory)
}

// mediaURI records the uploaded file of field and returns the URI it is
// published under, or "" when the field is absent. File contents are not
// kept.
func mediaURI(r *http.Request, field string) string {
	if r.MultipartForm == nil {
		return ""
	}
	files := r.MultipartForm.File[field]
	if len(files) == 0 || files[0].Size == 0 {
		return ""
	}
	return mediaPrefix + uuid.NewString() + strings.ToLower(path.Ext(files[0].Filename))
}
