package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/weekplan/internal/indicator"
)

// ListIndicators handles GET /api/indicators.
//
//	@Summary		Home-screen habit counters
//	@Tags			indicators
//	@Produce		json
//	@Success		200	{object}	IndicatorListResponse
//	@Router			/indicators [get]
func (h *Handler) ListIndicators(w http.ResponseWriter, r *http.Request) {
	items, err := h.indicators.List(r.Context())
	if err != nil {
		writeError(w, "list indicators", err)
		return
	}
	writeJSON(w, http.StatusOK, IndicatorListResponse{Indicators: items})
}

// CreateIndicator handles POST /api/indicators.
//
//	@Summary		Append a new indicator
//	@Tags			indicators
//	@Produce		json
//	@Success		201	{object}	models.Indicator
//	@Router			/indicators [post]
func (h *Handler) CreateIndicator(w http.ResponseWriter, r *http.Request) {
	in, err := h.indicators.Create(r.Context())
	if err != nil {
		writeError(w, "create indicator", err)
		return
	}
	writeJSON(w, http.StatusCreated, in)
}

// UpdateIndicator handles PUT /api/indicators/{id}.
//
//	@Summary		Edit an indicator
//	@Tags			indicators
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string			true	"Indicator id"
//	@Param			body	body		indicator.Input	true	"Label and counts"
//	@Success		200		{object}	models.Indicator
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Router			/indicators/{id} [put]
func (h *Handler) UpdateIndicator(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req indicator.Input
	if !decodeJSON(w, r, &req) {
		return
	}
	in, err := h.indicators.Update(r.Context(), id, req)
	if err != nil {
		writeError(w, "update indicator", err, slog.String("id", id))
		return
	}
	writeJSON(w, http.StatusOK, in)
}

// DeleteIndicator handles DELETE /api/indicators/{id}.
//
//	@Summary		Remove an indicator
//	@Tags			indicators
//	@Param			id	path	string	true	"Indicator id"
//	@Success		204	"Indicator deleted"
//	@Failure		404	{object}	errResponse
//	@Router			/indicators/{id} [delete]
func (h *Handler) DeleteIndicator(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.indicators.Delete(r.Context(), id); err != nil {
		writeError(w, "delete indicator", err, slog.String("id", id))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
