package handler

import (
	"log/slog"
	"net/http"

	"github.com/dukerupert/tripkit/internal/apperr"
	"github.com/dukerupert/tripkit/internal/auth"
	"github.com/dukerupert/tripkit/internal/guard"
	"github.com/dukerupert/tripkit/internal/model"
	"github.com/dukerupert/tripkit/internal/store"
)

type PackingListHandler struct {
	listStore *store.PackingListStore
	guard     *guard.Guard
	logger    *slog.Logger
}

func NewPackingListHandler(ls *store.PackingListStore, g *guard.Guard, logger *slog.Logger) *PackingListHandler {
	return &PackingListHandler{listStore: ls, guard: g, logger: logger}
}

type packingListRequest struct {
	ListName *string       `json:"list_name"`
	Items    []itemRequest `json:"items"`
}

func (h *PackingListHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req packingListRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if req.ListName == nil {
		writeError(w, r, h.logger, apperr.Validation("list_name is required"))
		return
	}

	drafts := make([]model.ItemDraft, 0, len(req.Items))
	for _, it := range req.Items {
		d, err := it.draft()
		if err != nil {
			writeError(w, r, h.logger, err)
			return
		}
		drafts = append(drafts, d)
	}

	l, err := h.listStore.Create(r.Context(), auth.UserID(r.Context()), *req.ListName, drafts)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, packingListEnvelope{
		Message:     "packing list created",
		PackingList: toPackingListResponse(l),
	})
}

func (h *PackingListHandler) List(w http.ResponseWriter, r *http.Request) {
	lists, err := h.listStore.ListByUser(r.Context(), auth.UserID(r.Context()))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toPackingListResponses(lists))
}

func (h *PackingListHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.authorize(w, r)
	if !ok {
		return
	}
	l, err := h.listStore.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if l == nil {
		writeError(w, r, h.logger, apperr.NotFound("packing list"))
		return
	}
	writeJSON(w, http.StatusOK, toPackingListResponse(l))
}

func (h *PackingListHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.authorize(w, r)
	if !ok {
		return
	}

	var req packingListRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	update := model.ListUpdate{Name: req.ListName}
	for _, it := range req.Items {
		change := model.ItemChange{ID: it.ID}
		if it.ID != nil {
			change.Patch = it.patch()
		} else {
			d, err := it.draft()
			if err != nil {
				writeError(w, r, h.logger, err)
				return
			}
			change.Draft = d
		}
		update.Items = append(update.Items, change)
	}

	l, err := h.listStore.Update(r.Context(), auth.UserID(r.Context()), id, update)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, packingListEnvelope{
		Message:     "packing list updated",
		PackingList: toPackingListResponse(l),
	})
}

func (h *PackingListHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.authorize(w, r)
	if !ok {
		return
	}
	// Snapshot before deleting so the response carries what was removed.
	l, err := h.listStore.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if l == nil {
		writeError(w, r, h.logger, apperr.NotFound("packing list"))
		return
	}
	if err := h.listStore.Delete(r.Context(), auth.UserID(r.Context()), id); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, packingListEnvelope{
		Message:     "packing list deleted",
		PackingList: toPackingListResponse(l),
	})
}

func (h *PackingListHandler) authorize(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		writeError(w, r, h.logger, err)
		return 0, false
	}
	if err := h.guard.PackingList(r.Context(), auth.UserID(r.Context()), id); err != nil {
		writeError(w, r, h.logger, err)
		return 0, false
	}
	return id, true
}
