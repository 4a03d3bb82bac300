package api

import (
	"github.com/starford/weekplan/internal/drag"
	"github.com/starford/weekplan/internal/eventservice"
	"github.com/starford/weekplan/internal/models"
	"github.com/starford/weekplan/internal/store"
)

// EventForm is the create and update request body.
type EventForm = eventservice.Form

// EventDetail is the full event response type (aliased from the domain layer).
type EventDetail = eventservice.EventDetail

// MoveRequest is the body of POST /events/{id}/move.
type MoveRequest struct {
	Minutes int    `json:"minutes" example:"90"`
	Date    string `json:"date,omitempty" example:"2026-04-02"`
}

// SelectDateRequest is the body of PUT /selected-date.
type SelectDateRequest struct {
	Date string `json:"date" example:"2026-04-02" validate:"required"`
}

// SelectedDateResponse reports the displayed day.
type SelectedDateResponse struct {
	Date   string `json:"date" example:"2026-04-02"`
	Header string `json:"header" example:"Apr 2, 2026"`
}

// DragStartRequest begins a drag on an event.
type DragStartRequest struct {
	ID string `json:"id" validate:"required"`
	drag.Point
}

// DragMoveRequest reports a pointer move and the visible viewport.
type DragMoveRequest struct {
	drag.Point
	Viewport drag.Viewport `json:"viewport"`
}

// DragEndRequest releases the pointer.
type DragEndRequest struct {
	drag.Point
}

// OccurrenceListResponse wraps a range listing.
type OccurrenceListResponse struct {
	Occurrences []eventservice.Occurrence `json:"occurrences" validate:"required"`
}

// SearchResponse wraps search results.
type SearchResponse struct {
	Results []store.SearchResult `json:"results" validate:"required"`
}

// MonthResponse is the date-picker grid of one month. Days holds the cells
// Sunday first, with 0 for the blanks before the 1st.
type MonthResponse struct {
	Year     int    `json:"year" example:"2026"`
	Month    int    `json:"month" example:"4"`
	Title    string `json:"title" example:"April 2026"`
	Days     []int  `json:"days"`
	Selected int    `json:"selected" example:"2"`
}

// EventTypesResponse lists the palette and the repeat options.
type EventTypesResponse struct {
	Types         []models.EventType `json:"types"`
	RepeatOptions []models.Repeat    `json:"repeat_options"`
}

// IndicatorListResponse wraps the home-screen counters.
type IndicatorListResponse struct {
	Indicators []models.Indicator `json:"indicators" validate:"required"`
}

// ImportResponse is returned after an iCalendar upload.
type ImportResponse struct {
	Filename string `json:"filename" example:"holidays.ics"`
	Imported int    `json:"imported" example:"12"`
}
