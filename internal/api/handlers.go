package api

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/starford/weekplan/internal/eventservice"
	"github.com/starford/weekplan/internal/indicator"
	"github.com/starford/weekplan/internal/week"
)

// Handler holds API route handlers.
type Handler struct {
	svc        *eventservice.Service
	indicators *indicator.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *eventservice.Service, indicators *indicator.Service) *Handler {
	return &Handler{svc: svc, indicators: indicators}
}

// dateParam parses an optional YYYY-MM-DD value, falling back to the
// selected day when empty.
func (h *Handler) dateParam(v string) (time.Time, error) {
	if strings.TrimSpace(v) == "" {
		return h.svc.SelectedDate(), nil
	}
	return h.svc.ParseDate(v)
}

// ListEvents handles GET /api/events.
//
//	@Summary		List event occurrences in a date range
//	@Tags			events
//	@Produce		json
//	@Param			from	query		string	false	"First day (YYYY-MM-DD), default start of the selected week"
//	@Param			to		query		string	false	"Day after the last (YYYY-MM-DD), default end of the selected week"
//	@Success		200		{object}	OccurrenceListResponse
//	@Failure		400		{object}	errResponse
//	@Router			/events [get]
func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	from, to := week.Range(h.svc.SelectedDate())
	var err error
	if v := q.Get("from"); v != "" {
		if from, err = h.svc.ParseDate(v); err != nil {
			writeError(w, "list events", err)
			return
		}
	}
	if v := q.Get("to"); v != "" {
		if to, err = h.svc.ParseDate(v); err != nil {
			writeError(w, "list events", err)
			return
		}
	}
	if !to.After(from) {
		writeJSON(w, http.StatusBadRequest, errorBody("'to' must be after 'from'"))
		return
	}
	occ, err := h.svc.List(r.Context(), from, to)
	if err != nil {
		writeError(w, "list events", err)
		return
	}
	writeJSON(w, http.StatusOK, OccurrenceListResponse{Occurrences: occ})
}

// GetEvent handles GET /api/events/{id}.
//
//	@Summary		Get a single event
//	@Tags			events
//	@Produce		json
//	@Param			id	path		string	true	"Event id"
//	@Success		200	{object}	EventDetail
//	@Failure		404	{object}	errResponse
//	@Router			/events/{id} [get]
func (h *Handler) GetEvent(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	ev, err := h.svc.Get(r.Context(), id)
	if err != nil {
		writeError(w, "get event", err, slog.String("id", id))
		return
	}
	w.Header().Set("ETag", strconv.Quote(ev.Checksum))
	writeJSON(w, http.StatusOK, ev)
}

// CreateEvent handles POST /api/events.
//
//	@Summary		Create an event
//	@Tags			events
//	@Accept			json
//	@Produce		json
//	@Param			body	body		EventForm	true	"Event to create"
//	@Success		201		{object}	EventDetail
//	@Failure		400		{object}	errResponse
//	@Router			/events [post]
func (h *Handler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var f EventForm
	if !decodeJSON(w, r, &f) {
		return
	}
	ev, err := h.svc.Create(r.Context(), f)
	if err != nil {
		writeError(w, "create event", err)
		return
	}
	w.Header().Set("ETag", strconv.Quote(ev.Checksum))
	writeJSON(w, http.StatusCreated, ev)
}

// UpdateEvent handles PUT /api/events/{id}.
//
//	@Summary		Update an event with optimistic concurrency
//	@Tags			events
//	@Accept			json
//	@Produce		json
//	@Param			id			path		string		true	"Event id"
//	@Param			If-Match	header		string		false	"Checksum for optimistic concurrency"
//	@Param			body		body		EventForm	true	"Updated event"
//	@Success		200			{object}	EventDetail
//	@Failure		400			{object}	errResponse
//	@Failure		404			{object}	errResponse
//	@Failure		409			{object}	errResponse
//	@Router			/events/{id} [put]
func (h *Handler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var f EventForm
	if !decodeJSON(w, r, &f) {
		return
	}

	// Strip surrounding quotes if present (standard ETag format).
	ifMatch := strings.Trim(r.Header.Get("If-Match"), `"`)

	ev, err := h.svc.Update(r.Context(), id, f, ifMatch)
	if err != nil {
		writeError(w, "update event", err, slog.String("id", id))
		return
	}
	w.Header().Set("ETag", strconv.Quote(ev.Checksum))
	writeJSON(w, http.StatusOK, ev)
}

// DeleteEvent handles DELETE /api/events/{id}.
//
//	@Summary		Delete an event
//	@Tags			events
//	@Param			id	path	string	true	"Event id"
//	@Success		204	"Event deleted"
//	@Failure		404	{object}	errResponse
//	@Router			/events/{id} [delete]
func (h *Handler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.svc.Delete(r.Context(), id); err != nil {
		writeError(w, "delete event", err, slog.String("id", id))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DuplicateEvent handles POST /api/events/{id}/duplicate.
//
//	@Summary		Copy an event under a new id
//	@Tags			events
//	@Produce		json
//	@Param			id	path		string	true	"Event id"
//	@Success		201	{object}	EventDetail
//	@Failure		404	{object}	errResponse
//	@Router			/events/{id}/duplicate [post]
func (h *Handler) DuplicateEvent(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	ev, err := h.svc.Duplicate(r.Context(), id)
	if err != nil {
		writeError(w, "duplicate event", err, slog.String("id", id))
		return
	}
	writeJSON(w, http.StatusCreated, ev)
}

// MoveEvent handles POST /api/events/{id}/move.
//
//	@Summary		Reschedule an event by a number of minutes
//	@Tags			events
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string		true	"Event id"
//	@Param			body	body		MoveRequest	true	"Offset and optional target day"
//	@Success		200		{object}	EventDetail
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Router			/events/{id}/move [post]
func (h *Handler) MoveEvent(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req MoveRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	var date time.Time
	if req.Date != "" {
		d, err := h.svc.ParseDate(req.Date)
		if err != nil {
			writeError(w, "move event", err)
			return
		}
		date = d
	}
	ev, err := h.svc.Move(r.Context(), id, req.Minutes, date)
	if err != nil {
		writeError(w, "move event", err, slog.String("id", id))
		return
	}
	writeJSON(w, http.StatusOK, ev)
}

// Search handles GET /api/search.
//
//	@Summary		Full-text search across event text
//	@Tags			search
//	@Produce		json
//	@Param			q		query		string	true	"Search query"
//	@Param			limit	query		int		false	"Max results"
//	@Success		200		{object}	SearchResponse
//	@Failure		400		{object}	errResponse
//	@Router			/search [get]
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if strings.TrimSpace(q) == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'q' is required"))
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	results, err := h.svc.Search(r.Context(), q, limit)
	if err != nil {
		writeError(w, "search", err, slog.String("query", q))
		return
	}
	writeJSON(w, http.StatusOK, SearchResponse{Results: results})
}
