package handler

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/dukerupert/tripkit/internal/apperr"
	"github.com/dukerupert/tripkit/internal/model"
)

type userResponse struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func toUserResponse(u *model.User) userResponse {
	return userResponse{ID: u.ID, Username: u.Username, Email: u.Email, CreatedAt: u.CreatedAt}
}

type expenseResponse struct {
	ID          int64       `json:"id"`
	Amount      json.Number `json:"amount"`
	Description string      `json:"description"`
	Category    string      `json:"category"`
	Date        string      `json:"date"`
	UserID      int64       `json:"user_id"`
}

func toExpenseResponse(e *model.Expense) expenseResponse {
	return expenseResponse{
		ID:          e.ID,
		Amount:      json.Number(model.FormatAmount(e.AmountCents)),
		Description: e.Description,
		Category:    e.Category,
		Date:        e.Date.Format(model.DateLayout),
		UserID:      e.UserID,
	}
}

func toExpenseResponses(es []model.Expense) []expenseResponse {
	out := make([]expenseResponse, 0, len(es))
	for i := range es {
		out = append(out, toExpenseResponse(&es[i]))
	}
	return out
}

type itemResponse struct {
	ID             int64  `json:"id"`
	ItemName       string `json:"item_name"`
	Quantity       int    `json:"quantity"`
	PackedQuantity int    `json:"packed_quantity"`
	IsPacked       bool   `json:"is_packed"`
	PackingListID  int64  `json:"packing_list_id"`
}

func toItemResponse(it *model.Item) itemResponse {
	return itemResponse{
		ID:             it.ID,
		ItemName:       it.Name,
		Quantity:       it.Quantity,
		PackedQuantity: it.PackedQuantity,
		IsPacked:       it.IsPacked,
		PackingListID:  it.PackingListID,
	}
}

func toItemResponses(items []model.Item) []itemResponse {
	out := make([]itemResponse, 0, len(items))
	for i := range items {
		out = append(out, toItemResponse(&items[i]))
	}
	return out
}

type packingListResponse struct {
	ID        int64          `json:"id"`
	ListName  string         `json:"list_name"`
	UserID    int64          `json:"user_id"`
	CreatedAt time.Time      `json:"created_at"`
	Items     []itemResponse `json:"items"`
}

func toPackingListResponse(l *model.PackingList) packingListResponse {
	return packingListResponse{
		ID:        l.ID,
		ListName:  l.Name,
		UserID:    l.UserID,
		CreatedAt: l.CreatedAt,
		Items:     toItemResponses(l.Items),
	}
}

func toPackingListResponses(ls []model.PackingList) []packingListResponse {
	out := make([]packingListResponse, 0, len(ls))
	for i := range ls {
		out = append(out, toPackingListResponse(&ls[i]))
	}
	return out
}

type packingListEnvelope struct {
	Message     string              `json:"message"`
	PackingList packingListResponse `json:"packing_list"`
}

type itemEnvelope struct {
	Message string       `json:"message"`
	Item    itemResponse `json:"item"`
}

// amount accepts either a JSON number or a decimal string.
type amount string

func (a *amount) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*a = amount(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*a = amount(n)
	return nil
}

func (a amount) cents() (int64, error) {
	c, err := model.ParseAmount(string(a))
	if err != nil {
		return 0, apperr.Validation("%s", err.Error())
	}
	return c, nil
}

func parseDate(s string) (time.Time, error) {
	d, err := time.Parse(model.DateLayout, s)
	if err != nil {
		return time.Time{}, apperr.Validation("date must be formatted YYYY-MM-DD")
	}
	return d, nil
}

type itemRequest struct {
	ID             *int64  `json:"id"`
	ItemName       *string `json:"item_name"`
	Quantity       *int    `json:"quantity"`
	PackedQuantity *int    `json:"packed_quantity"`
	IsPacked       *bool   `json:"is_packed"`
}

func (req itemRequest) draft() (model.ItemDraft, error) {
	var d model.ItemDraft
	if req.ItemName != nil {
		d.Name = *req.ItemName
	}
	if req.Quantity != nil {
		// The store treats zero as "use the default", so reject an explicit zero here.
		if *req.Quantity < 1 {
			return d, apperr.Validation("quantity must be at least 1")
		}
		d.Quantity = *req.Quantity
	}
	if req.PackedQuantity != nil {
		d.PackedQuantity = *req.PackedQuantity
	}
	if req.IsPacked != nil {
		d.IsPacked = *req.IsPacked
	}
	return d, nil
}

func (req itemRequest) patch() model.ItemPatch {
	return model.ItemPatch{
		Name:           req.ItemName,
		Quantity:       req.Quantity,
		PackedQuantity: req.PackedQuantity,
		IsPacked:       req.IsPacked,
	}
}
