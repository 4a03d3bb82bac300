package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/weekplan/internal/eventservice"
	"github.com/starford/weekplan/internal/indicator"
)

// NewRouter creates a chi router with all API routes mounted.
// sseHandler, if non-nil, is mounted at GET /stream.
func NewRouter(events *eventservice.Service, indicators *indicator.Service, sseHandler http.Handler) chi.Router {
	h := NewHandler(events, indicators)
	fh := NewCalendarFileHandler(events)

	r := chi.NewRouter()
	r.Use(NoStore)

	r.Group(func(r chi.Router) {
		r.Use(RequireJSON)

		// Events.
		r.Get("/events", h.ListEvents)
		r.Post("/events", h.CreateEvent)
		r.Get("/events/{id}", h.GetEvent)
		r.Put("/events/{id}", h.UpdateEvent)
		r.Delete("/events/{id}", h.DeleteEvent)
		r.Post("/events/{id}/duplicate", h.DuplicateEvent)
		r.Post("/events/{id}/move", h.MoveEvent)
		r.Get("/search", h.Search)

		// Calendar.
		r.Get("/week", h.Week)
		r.Get("/days/{date}", h.Day)
		r.Get("/selected-date", h.SelectedDate)
		r.Put("/selected-date", h.SelectDate)
		r.Get("/month", h.Month)
		r.Get("/event-types", h.EventTypes)
		r.Get("/forms/new", h.NewForm)

		// Drag and undo.
		r.Post("/drag/start", h.DragStart)
		r.Post("/drag/move", h.DragMove)
		r.Post("/drag/end", h.DragEnd)
		r.Post("/drag/cancel", h.DragCancel)
		r.Get("/undo", h.PendingUndo)
		r.Post("/undo", h.Undo)

		// Indicators.
		r.Get("/indicators", h.ListIndicators)
		r.Post("/indicators", h.CreateIndicator)
		r.Put("/indicators/{id}", h.UpdateIndicator)
		r.Delete("/indicators/{id}", h.DeleteIndicator)
	})

	// iCalendar import and export.
	r.Post("/import", fh.Import)
	r.Get("/export.ics", fh.Export)

	if sseHandler != nil {
		r.Get("/stream", sseHandler.ServeHTTP)
	}

	return r
}
