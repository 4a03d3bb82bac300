package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/starford/weekplan/internal/clock"
	"github.com/starford/weekplan/internal/eventservice"
	"github.com/starford/weekplan/internal/models"
	"github.com/starford/weekplan/internal/week"
)

// Week handles GET /api/week.
//
//	@Summary		Week strip with laid-out day columns
//	@Tags			calendar
//	@Produce		json
//	@Param			date	query		string	false	"Any day of the week (YYYY-MM-DD), default the selected day"
//	@Success		200		{object}	eventservice.WeekView
//	@Failure		400		{object}	errResponse
//	@Router			/week [get]
func (h *Handler) Week(w http.ResponseWriter, r *http.Request) {
	ref, err := h.dateParam(r.URL.Query().Get("date"))
	if err != nil {
		writeError(w, "week", err)
		return
	}
	v, err := h.svc.Week(r.Context(), ref)
	if err != nil {
		writeError(w, "week", err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// Day handles GET /api/days/{date}.
//
//	@Summary		One day column
//	@Tags			calendar
//	@Produce		json
//	@Param			date	path		string	true	"Day (YYYY-MM-DD)"
//	@Success		200		{object}	eventservice.DayView
//	@Failure		400		{object}	errResponse
//	@Router			/days/{date} [get]
func (h *Handler) Day(w http.ResponseWriter, r *http.Request) {
	d, err := h.svc.ParseDate(chi.URLParam(r, "date"))
	if err != nil {
		writeError(w, "day", err)
		return
	}
	v, err := h.svc.Day(r.Context(), d)
	if err != nil {
		writeError(w, "day", err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// SelectedDate handles GET /api/selected-date.
//
//	@Summary		The displayed day
//	@Tags			calendar
//	@Produce		json
//	@Success		200	{object}	SelectedDateResponse
//	@Router			/selected-date [get]
func (h *Handler) SelectedDate(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, selectedBody(h.svc.SelectedDate()))
}

// SelectDate handles PUT /api/selected-date.
//
//	@Summary		Change the displayed day
//	@Tags			calendar
//	@Accept			json
//	@Produce		json
//	@Param			body	body		SelectDateRequest	true	"New day"
//	@Success		200		{object}	SelectedDateResponse
//	@Failure		400		{object}	errResponse
//	@Router			/selected-date [put]
func (h *Handler) SelectDate(w http.ResponseWriter, r *http.Request) {
	var req SelectDateRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	d, err := h.svc.ParseDate(req.Date)
	if err != nil {
		writeError(w, "select date", err)
		return
	}
	writeJSON(w, http.StatusOK, selectedBody(h.svc.Select(r.Context(), d)))
}

// Month handles GET /api/month.
//
//	@Summary		Date-picker grid of a month
//	@Tags			calendar
//	@Produce		json
//	@Param			year	query		int	false	"Year, default the selected day's"
//	@Param			month	query		int	false	"Month 1-12, default the selected day's"
//	@Success		200		{object}	MonthResponse
//	@Failure		400		{object}	errResponse
//	@Router			/month [get]
func (h *Handler) Month(w http.ResponseWriter, r *http.Request) {
	sel := h.svc.SelectedDate()
	year, month := sel.Year(), int(sel.Month())

	q := r.URL.Query()
	if v := q.Get("year"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 9999 {
			writeJSON(w, http.StatusBadRequest, errorBody("year must be 1-9999"))
			return
		}
		year = n
	}
	if v := q.Get("month"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 12 {
			writeJSON(w, http.StatusBadRequest, errorBody("month must be 1-12"))
			return
		}
		month = n
	}

	resp := MonthResponse{
		Year:  year,
		Month: month,
		Title: time.Month(month).String() + " " + strconv.Itoa(year),
		Days:  week.MonthGrid(year, time.Month(month)),
	}
	if sel.Year() == year && int(sel.Month()) == month {
		resp.Selected = sel.Day()
	}
	writeJSON(w, http.StatusOK, resp)
}

// EventTypes handles GET /api/event-types.
//
//	@Summary		Event type palette and repeat options
//	@Tags			calendar
//	@Produce		json
//	@Success		200	{object}	EventTypesResponse
//	@Router			/event-types [get]
func (h *Handler) EventTypes(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, EventTypesResponse{
		Types:         models.EventTypes,
		RepeatOptions: models.RepeatOptions,
	})
}

// NewForm handles GET /api/forms/new.
//
// Without hour it returns the plus-button defaults; with hour it returns the
// defaults of tapping that empty slot.
//
//	@Summary		Defaults for the create screen
//	@Tags			calendar
//	@Produce		json
//	@Param			date	query		string	false	"Day (YYYY-MM-DD), default the selected day"
//	@Param			hour	query		int		false	"Tapped hour slot, 0-23"
//	@Success		200		{object}	EventForm
//	@Failure		400		{object}	errResponse
//	@Router			/forms/new [get]
func (h *Handler) NewForm(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	d, err := h.dateParam(q.Get("date"))
	if err != nil {
		writeError(w, "new form", err)
		return
	}
	raw := q.Get("hour")
	if raw == "" {
		writeJSON(w, http.StatusOK, eventservice.NewForm(d))
		return
	}
	hour, err := strconv.Atoi(raw)
	if err != nil || hour < 0 || hour > 23 {
		writeJSON(w, http.StatusBadRequest, errorBody("hour must be 0-23"))
		return
	}
	writeJSON(w, http.StatusOK, eventservice.SlotForm(d, hour))
}

func selectedBody(d time.Time) SelectedDateResponse {
	return SelectedDateResponse{Date: eventservice.FormatDate(d), Header: clock.FormatHeaderDate(d)}
}
