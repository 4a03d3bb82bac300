package api

import (
	"log/slog"
	"net/http"

	"github.com/starford/weekplan/internal/drag"
)

// DragStart handles POST /api/drag/start.
//
//	@Summary		Begin dragging an event
//	@Tags			drag
//	@Accept			json
//	@Produce		json
//	@Param			body	body		DragStartRequest	true	"Event id and pointer position"
//	@Success		200		{object}	drag.Session
//	@Failure		404		{object}	errResponse
//	@Failure		409		{object}	errResponse
//	@Router			/drag/start [post]
func (h *Handler) DragStart(w http.ResponseWriter, r *http.Request) {
	var req DragStartRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.ID == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("id is required"))
		return
	}
	sess, err := h.svc.BeginDrag(r.Context(), req.ID, req.Point)
	if err != nil {
		writeError(w, "drag start", err, slog.String("id", req.ID))
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

// DragMove handles POST /api/drag/move.
//
//	@Summary		Report a pointer move during a drag
//	@Tags			drag
//	@Accept			json
//	@Produce		json
//	@Param			body	body		DragMoveRequest	true	"Pointer position and viewport"
//	@Success		200		{object}	drag.MoveResult
//	@Router			/drag/move [post]
func (h *Handler) DragMove(w http.ResponseWriter, r *http.Request) {
	var req DragMoveRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	res, err := h.svc.MoveDrag(r.Context(), req.Point, req.Viewport)
	if err != nil {
		writeError(w, "drag move", err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// DragEnd handles POST /api/drag/end.
//
//	@Summary		Release the pointer, committing the move
//	@Tags			drag
//	@Accept			json
//	@Produce		json
//	@Param			body	body		DragEndRequest	true	"Pointer position"
//	@Success		200		{object}	drag.Outcome
//	@Router			/drag/end [post]
func (h *Handler) DragEnd(w http.ResponseWriter, r *http.Request) {
	var req DragEndRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	out, err := h.svc.EndDrag(r.Context(), req.Point)
	if err != nil {
		writeError(w, "drag end", err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// DragCancel handles POST /api/drag/cancel.
//
//	@Summary		Abandon the active drag
//	@Tags			drag
//	@Produce		json
//	@Success		200	{object}	drag.Session
//	@Failure		409	{object}	errResponse
//	@Router			/drag/cancel [post]
func (h *Handler) DragCancel(w http.ResponseWriter, r *http.Request) {
	sess, err := h.svc.CancelDrag(r.Context())
	if err != nil {
		writeError(w, "drag cancel", err)
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

// PendingUndo handles GET /api/undo.
//
//	@Summary		The current undo offer
//	@Tags			drag
//	@Produce		json
//	@Success		200	{object}	drag.UndoTicket
//	@Failure		404	{object}	errResponse
//	@Router			/undo [get]
func (h *Handler) PendingUndo(w http.ResponseWriter, _ *http.Request) {
	t, ok := h.svc.PendingUndo()
	if !ok {
		writeJSON(w, http.StatusNotFound, errorBody(drag.ErrNothingToUndo.Error()))
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// Undo handles POST /api/undo.
//
//	@Summary		Revert the most recent drag
//	@Tags			drag
//	@Produce		json
//	@Success		200	{object}	EventDetail
//	@Failure		404	{object}	errResponse
//	@Router			/undo [post]
func (h *Handler) Undo(w http.ResponseWriter, r *http.Request) {
	ev, err := h.svc.Undo(r.Context())
	if err != nil {
		writeError(w, "undo", err)
		return
	}
	writeJSON(w, http.StatusOK, ev)
}
