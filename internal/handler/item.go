package handler

import (
	"log/slog"
	"net/http"

	"github.com/dukerupert/tripkit/internal/apperr"
	"github.com/dukerupert/tripkit/internal/auth"
	"github.com/dukerupert/tripkit/internal/guard"
	"github.com/dukerupert/tripkit/internal/store"
)

// ItemHandler serves items nested under /packing-list/{listId}/items.
type ItemHandler struct {
	listStore *store.PackingListStore
	guard     *guard.Guard
	logger    *slog.Logger
}

func NewItemHandler(ls *store.PackingListStore, g *guard.Guard, logger *slog.Logger) *ItemHandler {
	return &ItemHandler{listStore: ls, guard: g, logger: logger}
}

func (h *ItemHandler) Create(w http.ResponseWriter, r *http.Request) {
	listID, ok := h.authorizeList(w, r)
	if !ok {
		return
	}

	var req itemRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	d, err := req.draft()
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	it, err := h.listStore.AddItem(r.Context(), auth.UserID(r.Context()), listID, d)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, itemEnvelope{Message: "item added", Item: toItemResponse(it)})
}

func (h *ItemHandler) List(w http.ResponseWriter, r *http.Request) {
	listID, ok := h.authorizeList(w, r)
	if !ok {
		return
	}
	items, err := h.listStore.ListItems(r.Context(), listID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toItemResponses(items))
}

func (h *ItemHandler) Get(w http.ResponseWriter, r *http.Request) {
	listID, itemID, ok := h.authorizeItem(w, r)
	if !ok {
		return
	}
	it, err := h.listStore.GetItem(r.Context(), listID, itemID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if it == nil {
		writeError(w, r, h.logger, apperr.NotFound("item"))
		return
	}
	writeJSON(w, http.StatusOK, toItemResponse(it))
}

func (h *ItemHandler) Update(w http.ResponseWriter, r *http.Request) {
	listID, itemID, ok := h.authorizeItem(w, r)
	if !ok {
		return
	}

	var req itemRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	it, err := h.listStore.UpdateItem(r.Context(), auth.UserID(r.Context()), listID, itemID, req.patch())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, itemEnvelope{Message: "item updated", Item: toItemResponse(it)})
}

// Delete removes the item and responds with the updated parent list.
func (h *ItemHandler) Delete(w http.ResponseWriter, r *http.Request) {
	listID, itemID, ok := h.authorizeItem(w, r)
	if !ok {
		return
	}
	l, err := h.listStore.DeleteItem(r.Context(), auth.UserID(r.Context()), listID, itemID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, packingListEnvelope{
		Message:     "item deleted",
		PackingList: toPackingListResponse(l),
	})
}

func (h *ItemHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	listID, itemID, ok := h.authorizeItem(w, r)
	if !ok {
		return
	}
	it, err := h.listStore.ToggleItem(r.Context(), auth.UserID(r.Context()), listID, itemID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, itemEnvelope{Message: "item packed status toggled", Item: toItemResponse(it)})
}

func (h *ItemHandler) authorizeList(w http.ResponseWriter, r *http.Request) (int64, bool) {
	listID, err := parseIDParam(r, "listId")
	if err != nil {
		writeError(w, r, h.logger, err)
		return 0, false
	}
	if err := h.guard.PackingList(r.Context(), auth.UserID(r.Context()), listID); err != nil {
		writeError(w, r, h.logger, err)
		return 0, false
	}
	return listID, true
}

func (h *ItemHandler) authorizeItem(w http.ResponseWriter, r *http.Request) (int64, int64, bool) {
	listID, err := parseIDParam(r, "listId")
	if err != nil {
		writeError(w, r, h.logger, err)
		return 0, 0, false
	}
	itemID, err := parseIDParam(r, "id")
	if err != nil {
		writeError(w, r, h.logger, err)
		return 0, 0, false
	}
	if err := h.guard.Item(r.Context(), auth.UserID(r.Context()), listID, itemID); err != nil {
		writeError(w, r, h.logger, err)
		return 0, 0, false
	}
	return listID, itemID, true
}
