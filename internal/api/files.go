package api

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/starford/weekplan/internal/eventservice"
	"github.com/starford/weekplan/internal/ics"
	"github.com/starford/weekplan/internal/week"
)

const maxUploadBytes = 5 << 20 // 5 MB

// CalendarFileHandler accepts and serves iCalendar files.
type CalendarFileHandler struct {
	svc *eventservice.Service
}

// NewCalendarFileHandler creates a handler over the event service.
func NewCalendarFileHandler(svc *eventservice.Service) *CalendarFileHandler {
	return &CalendarFileHandler{svc: svc}
}

// safeName validates that the upload is a plain .ics file name.
func safeName(name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("filename is required")
	}
	cleaned := filepath.Base(filepath.Clean(name))
	if cleaned != name || strings.Contains(cleaned, "..") {
		return "", fmt.Errorf("invalid filename: %s", name)
	}
	if !strings.EqualFold(filepath.Ext(cleaned), ".ics") {
		return "", fmt.Errorf("only .ics files are accepted")
	}
	return cleaned, nil
}

// Import handles POST /api/import (multipart/form-data, field "file").
//
//	@Summary		Import events from an iCalendar file
//	@Tags			calendar
//	@Accept			mpfd
//	@Produce		json
//	@Param			file	formData	file	true	"iCalendar file"
//	@Success		201		{object}	ImportResponse
//	@Failure		400		{object}	errResponse
//	@Router			/import [post]
func (h *CalendarFileHandler) Import(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("file too large or invalid multipart"))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("missing 'file' field in multipart form"))
		return
	}
	defer file.Close()

	name, err := safeName(header.Filename)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}

	body, err := io.ReadAll(file)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("failed to read file"))
		return
	}
	events, err := ics.Decode(body, h.svc.Location())
	if err != nil {
		msg := "invalid calendar"
		if errors.Is(err, ics.ErrEmpty) {
			msg = "calendar has no events"
		}
		writeJSON(w, http.StatusBadRequest, errorBody(msg))
		return
	}

	n, err := h.svc.Import(r.Context(), events)
	if err != nil {
		writeError(w, "import calendar", err, slog.String("filename", name))
		return
	}
	writeJSON(w, http.StatusCreated, ImportResponse{Filename: name, Imported: n})
}

// Export handles GET /api/export.ics.
//
//	@Summary		Export events as iCalendar
//	@Tags			calendar
//	@Produce		text/calendar
//	@Param			from	query	string	false	"First day (YYYY-MM-DD), default start of the selected week"
//	@Param			to		query	string	false	"Day after the last (YYYY-MM-DD), default end of the selected week"
//	@Success		200		{file}	file
//	@Failure		400		{object}	errResponse
//	@Router			/export.ics [get]
func (h *CalendarFileHandler) Export(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	from, to := week.Range(h.svc.SelectedDate())
	var err error
	if v := q.Get("from"); v != "" {
		if from, err = h.svc.ParseDate(v); err != nil {
			writeError(w, "export calendar", err)
			return
		}
	}
	if v := q.Get("to"); v != "" {
		if to, err = h.svc.ParseDate(v); err != nil {
			writeError(w, "export calendar", err)
			return
		}
	}

	events, err := h.svc.Events(r.Context(), from, to)
	if err != nil {
		writeError(w, "export calendar", err)
		return
	}
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="weekplan.ics"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(ics.Encode(events, h.svc.Location()))
}
