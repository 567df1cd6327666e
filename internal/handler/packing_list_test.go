package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dukerupert/tripkit/internal/auth"
	"github.com/dukerupert/tripkit/internal/database"
	"github.com/dukerupert/tripkit/internal/guard"
	"github.com/dukerupert/tripkit/internal/store"
)

type listFixture struct {
	mux   *http.ServeMux
	alice int64
	bob   int64
}

func setupListHandlers(t *testing.T) *listFixture {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	users := store.NewUserStore(db)
	alice, err := users.Create(context.Background(), "alice", "hash", "")
	if err != nil {
		t.Fatalf("create alice: %v", err)
	}
	bob, err := users.Create(context.Background(), "bob", "hash", "")
	if err != nil {
		t.Fatalf("create bob: %v", err)
	}

	lists := store.NewPackingListStore(db)
	g := guard.New(store.NewExpenseStore(db), lists)
	lh := NewPackingListHandler(lists, g, discardLogger)
	ih := NewItemHandler(lists, g, discardLogger)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /packing-list", lh.Create)
	mux.HandleFunc("GET /packing-list/{id}", lh.Get)
	mux.HandleFunc("PUT /packing-list/{id}", lh.Update)
	mux.HandleFunc("POST /packing-list/{listId}/items", ih.Create)
	mux.HandleFunc("PATCH /packing-list/{listId}/items/{id}/toggle", ih.Toggle)

	return &listFixture{mux: mux, alice: alice.ID, bob: bob.ID}
}

func (f *listFixture) serve(t *testing.T, userID int64, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req = req.WithContext(auth.WithIdentity(req.Context(), auth.Identity{UserID: userID}))
	rec := httptest.NewRecorder()
	f.mux.ServeHTTP(rec, req)
	return rec
}

func TestPackingListCreateDefaults(t *testing.T) {
	f := setupListHandlers(t)

	rec := f.serve(t, f.alice, "POST", "/packing-list", `{"list_name":"Trip","items":[{"item_name":"Socks"},{"item_name":"Hat","quantity":3}]}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}
	var env packingListEnvelope
	if err := json.NewDecoder(rec.Body).Decode(&env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if env.PackingList.UserID != f.alice {
		t.Errorf("user_id = %d, want %d", env.PackingList.UserID, f.alice)
	}
	if len(env.PackingList.Items) != 2 {
		t.Fatalf("items = %d, want 2", len(env.PackingList.Items))
	}
	if env.PackingList.Items[0].Quantity != 1 || env.PackingList.Items[1].Quantity != 3 {
		t.Errorf("quantities = %d, %d", env.PackingList.Items[0].Quantity, env.PackingList.Items[1].Quantity)
	}
}

func TestPackingListCreateValidation(t *testing.T) {
	f := setupListHandlers(t)

	for _, body := range []string{
		`{"items":[]}`,
		`{"list_name":"   "}`,
		`{"list_name":"Trip","items":[{"quantity":2}]}`,
		`{"list_name":"Trip","items":[{"item_name":"Socks","quantity":1,"packed_quantity":2}]}`,
		`not json`,
	} {
		rec := f.serve(t, f.alice, "POST", "/packing-list", body)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", body, rec.Code)
		}
	}
}

func TestPackingListForeignAccess(t *testing.T) {
	f := setupListHandlers(t)

	rec := f.serve(t, f.alice, "POST", "/packing-list", `{"list_name":"Trip","items":[{"item_name":"Socks"}]}`)
	var env packingListEnvelope
	json.NewDecoder(rec.Body).Decode(&env)
	listPath := "/packing-list/" + jsonID(env.PackingList.ID)
	itemPath := listPath + "/items/" + jsonID(env.PackingList.Items[0].ID)

	for _, tc := range []struct{ method, path, body string }{
		{"GET", listPath, ""},
		{"PUT", listPath, `{"list_name":"Mine"}`},
		{"POST", listPath + "/items", `{"item_name":"x"}`},
		{"PATCH", itemPath + "/toggle", ""},
	} {
		rec := f.serve(t, f.bob, tc.method, tc.path, tc.body)
		if rec.Code != http.StatusForbidden {
			t.Errorf("%s %s: status = %d, want 403", tc.method, tc.path, rec.Code)
		}
	}

	rec = f.serve(t, f.bob, "GET", "/packing-list/9999", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("missing list: status = %d, want 404", rec.Code)
	}
}

func TestToggleDoesNotTouchQuantities(t *testing.T) {
	f := setupListHandlers(t)

	rec := f.serve(t, f.alice, "POST", "/packing-list", `{"list_name":"Trip","items":[{"item_name":"Socks","quantity":4,"packed_quantity":2}]}`)
	var env packingListEnvelope
	json.NewDecoder(rec.Body).Decode(&env)
	path := "/packing-list/" + jsonID(env.PackingList.ID) + "/items/" + jsonID(env.PackingList.Items[0].ID) + "/toggle"

	rec = f.serve(t, f.alice, "PATCH", path, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("toggle status = %d: %s", rec.Code, rec.Body)
	}
	var got itemEnvelope
	json.NewDecoder(rec.Body).Decode(&got)
	if !got.Item.IsPacked || got.Item.Quantity != 4 || got.Item.PackedQuantity != 2 {
		t.Errorf("item after toggle = %+v", got.Item)
	}
}

func jsonID(id int64) string {
	b, _ := json.Marshal(id)
	return string(b)
}
