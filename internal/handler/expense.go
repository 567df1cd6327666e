package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/dukerupert/tripkit/internal/apperr"
	"github.com/dukerupert/tripkit/internal/auth"
	"github.com/dukerupert/tripkit/internal/guard"
	"github.com/dukerupert/tripkit/internal/model"
	"github.com/dukerupert/tripkit/internal/store"
)

type ExpenseHandler struct {
	expenseStore *store.ExpenseStore
	guard        *guard.Guard
	logger       *slog.Logger
}

func NewExpenseHandler(es *store.ExpenseStore, g *guard.Guard, logger *slog.Logger) *ExpenseHandler {
	return &ExpenseHandler{expenseStore: es, guard: g, logger: logger}
}

type expenseRequest struct {
	Amount      *amount `json:"amount"`
	Description *string `json:"description"`
	Category    *string `json:"category"`
	Date        *string `json:"date"`
}

func (h *ExpenseHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req expenseRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	var missing []string
	if req.Amount == nil {
		missing = append(missing, "amount")
	}
	if req.Description == nil {
		missing = append(missing, "description")
	}
	if req.Category == nil {
		missing = append(missing, "category")
	}
	if req.Date == nil {
		missing = append(missing, "date")
	}
	if len(missing) > 0 {
		writeError(w, r, h.logger, apperr.Validation("missing required fields: %s", strings.Join(missing, ", ")))
		return
	}

	cents, err := req.Amount.cents()
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	date, err := parseDate(*req.Date)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	e, err := h.expenseStore.Create(r.Context(), model.Expense{
		UserID:      auth.UserID(r.Context()),
		AmountCents: cents,
		Description: *req.Description,
		Category:    *req.Category,
		Date:        date,
	})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, toExpenseResponse(e))
}

func (h *ExpenseHandler) List(w http.ResponseWriter, r *http.Request) {
	expenses, err := h.expenseStore.ListByUser(r.Context(), auth.UserID(r.Context()))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toExpenseResponses(expenses))
}

func (h *ExpenseHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.authorize(w, r)
	if !ok {
		return
	}
	e, err := h.expenseStore.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if e == nil {
		writeError(w, r, h.logger, apperr.NotFound("expense"))
		return
	}
	writeJSON(w, http.StatusOK, toExpenseResponse(e))
}

func (h *ExpenseHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.authorize(w, r)
	if !ok {
		return
	}

	var req expenseRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	patch := model.ExpensePatch{Description: req.Description, Category: req.Category}
	if req.Amount != nil {
		cents, err := req.Amount.cents()
		if err != nil {
			writeError(w, r, h.logger, err)
			return
		}
		patch.AmountCents = &cents
	}
	if req.Date != nil {
		date, err := parseDate(*req.Date)
		if err != nil {
			writeError(w, r, h.logger, err)
			return
		}
		patch.Date = &date
	}

	e, err := h.expenseStore.Update(r.Context(), auth.UserID(r.Context()), id, patch)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toExpenseResponse(e))
}

func (h *ExpenseHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.authorize(w, r)
	if !ok {
		return
	}
	if err := h.expenseStore.Delete(r.Context(), auth.UserID(r.Context()), id); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "expense deleted"})
}

// authorize parses the expense id and runs the ownership check, writing the
// error response itself when either fails.
func (h *ExpenseHandler) authorize(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		writeError(w, r, h.logger, err)
		return 0, false
	}
	if err := h.guard.Expense(r.Context(), auth.UserID(r.Context()), id); err != nil {
		writeError(w, r, h.logger, err)
		return 0, false
	}
	return id, true
}
