package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/dukerupert/tripkit/internal/apperr"
	"github.com/dukerupert/tripkit/internal/database"
	"github.com/dukerupert/tripkit/internal/model"
)

type PackingListStore struct {
	db *sql.DB
}

func NewPackingListStore(db *sql.DB) *PackingListStore {
	return &PackingListStore{db: db}
}

func scanPackingList(s scanner) (*model.PackingList, error) {
	var l model.PackingList
	err := s.Scan(&l.ID, &l.UserID, &l.Name, &l.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func scanItem(s scanner) (*model.Item, error) {
	var it model.Item
	var packed int
	err := s.Scan(&it.ID, &it.PackingListID, &it.Name, &it.Quantity, &it.PackedQuantity, &packed, &it.CreatedAt)
	if err != nil {
		return nil, err
	}
	it.IsPacked = packed != 0
	return &it, nil
}

const packingListCols = `id, user_id, name, created_at`

const itemCols = `id, packing_list_id, name, quantity, packed_quantity, is_packed, created_at`

func normalizeDraft(d model.ItemDraft) (model.ItemDraft, error) {
	d.Name = strings.TrimSpace(d.Name)
	if d.Name == "" {
		return d, apperr.Validation("item_name is required")
	}
	if d.Quantity == 0 {
		d.Quantity = 1
	}
	if err := checkQuantities(d.Quantity, d.PackedQuantity); err != nil {
		return d, err
	}
	return d, nil
}

func checkQuantities(quantity, packed int) error {
	if quantity < 1 {
		return apperr.Validation("quantity must be at least 1")
	}
	if packed < 0 {
		return apperr.Validation("packed_quantity must not be negative")
	}
	if packed > quantity {
		return apperr.Validation("packed_quantity must not exceed quantity")
	}
	return nil
}

func applyItemPatch(it *model.Item, p model.ItemPatch) error {
	if p.Name != nil {
		name := strings.TrimSpace(*p.Name)
		if name == "" {
			return apperr.Validation("item_name must not be empty")
		}
		it.Name = name
	}
	if p.Quantity != nil {
		it.Quantity = *p.Quantity
	}
	if p.PackedQuantity != nil {
		it.PackedQuantity = *p.PackedQuantity
	}
	if p.IsPacked != nil {
		it.IsPacked = *p.IsPacked
	}
	return checkQuantities(it.Quantity, it.PackedQuantity)
}

func validListName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", apperr.Validation("list_name is required")
	}
	return name, nil
}

// Create inserts a list and its inline items. Drafts are validated before the
// transaction starts; nothing is persisted if any insert fails.
func (s *PackingListStore) Create(ctx context.Context, userID int64, name string, drafts []model.ItemDraft) (*model.PackingList, error) {
	name, err := validListName(name)
	if err != nil {
		return nil, err
	}
	normalized := make([]model.ItemDraft, len(drafts))
	for i, d := range drafts {
		nd, err := normalizeDraft(d)
		if err != nil {
			return nil, err
		}
		normalized[i] = nd
	}

	var created *model.PackingList
	err = database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx,
			`INSERT INTO packing_lists (user_id, name) VALUES (?, ?)`,
			userID, name,
		)
		if err != nil {
			return fmt.Errorf("insert packing list: %w", err)
		}
		listID, err := result.LastInsertId()
		if err != nil {
			return fmt.Errorf("last insert id: %w", err)
		}
		for _, d := range normalized {
			if _, err := insertItem(ctx, tx, listID, d); err != nil {
				return err
			}
		}
		created, err = loadList(ctx, tx, listID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func insertItem(ctx context.Context, q querier, listID int64, d model.ItemDraft) (int64, error) {
	result, err := q.ExecContext(ctx,
		`INSERT INTO packing_list_items (packing_list_id, name, quantity, packed_quantity, is_packed) VALUES (?, ?, ?, ?, ?)`,
		listID, d.Name, d.Quantity, d.PackedQuantity, boolToInt(d.IsPacked),
	)
	if err != nil {
		return 0, fmt.Errorf("insert item: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}
	return id, nil
}

// loadList returns the list with its items, or nil if the list does not exist.
func loadList(ctx context.Context, q querier, id int64) (*model.PackingList, error) {
	row := q.QueryRowContext(ctx, `SELECT `+packingListCols+` FROM packing_lists WHERE id = ?`, id)
	l, err := scanPackingList(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get packing list: %w", err)
	}
	l.Items, err = listItems(ctx, q, id)
	if err != nil {
		return nil, err
	}
	return l, nil
}

func listItems(ctx context.Context, q querier, listID int64) ([]model.Item, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT `+itemCols+` FROM packing_list_items WHERE packing_list_id = ? ORDER BY id`,
		listID,
	)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()

	items := []model.Item{}
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		items = append(items, *it)
	}
	return items, rows.Err()
}

func getItem(ctx context.Context, q querier, listID, itemID int64) (*model.Item, error) {
	row := q.QueryRowContext(ctx,
		`SELECT `+itemCols+` FROM packing_list_items WHERE id = ? AND packing_list_id = ?`,
		itemID, listID,
	)
	it, err := scanItem(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}
	return it, nil
}

// ownedList checks inside a transaction that the list still exists for userID.
func ownedList(ctx context.Context, q querier, userID, listID int64) error {
	var n int
	err := q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM packing_lists WHERE id = ? AND user_id = ?`,
		listID, userID,
	).Scan(&n)
	if err != nil {
		return fmt.Errorf("check packing list: %w", err)
	}
	if n == 0 {
		return apperr.NotFound("packing list")
	}
	return nil
}

// GetByID returns the list with its items, or nil if it does not exist.
func (s *PackingListStore) GetByID(ctx context.Context, id int64) (*model.PackingList, error) {
	return loadList(ctx, s.db, id)
}

// ListByUser returns the user's lists in creation order, items included.
func (s *PackingListStore) ListByUser(ctx context.Context, userID int64) ([]model.PackingList, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+packingListCols+` FROM packing_lists WHERE user_id = ? ORDER BY id`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list packing lists: %w", err)
	}
	var lists []model.PackingList
	for rows.Next() {
		l, err := scanPackingList(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan packing list: %w", err)
		}
		lists = append(lists, *l)
	}
	// Close before querying items: an in-memory database has a single connection.
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list packing lists: %w", err)
	}

	for i := range lists {
		lists[i].Items, err = listItems(ctx, s.db, lists[i].ID)
		if err != nil {
			return nil, err
		}
	}
	return lists, nil
}

// Update renames the list when u.Name is set and merges u.Items by id.
// A descriptor referencing an item outside this list aborts the whole update.
func (s *PackingListStore) Update(ctx context.Context, userID, id int64, u model.ListUpdate) (*model.PackingList, error) {
	var name string
	if u.Name != nil {
		var err error
		if name, err = validListName(*u.Name); err != nil {
			return nil, err
		}
	}
	for i, c := range u.Items {
		if c.ID != nil {
			continue
		}
		d, err := normalizeDraft(c.Draft)
		if err != nil {
			return nil, err
		}
		u.Items[i].Draft = d
	}

	var updated *model.PackingList
	err := database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		if err := ownedList(ctx, tx, userID, id); err != nil {
			return err
		}
		if u.Name != nil {
			if _, err := tx.ExecContext(ctx,
				`UPDATE packing_lists SET name = ? WHERE id = ? AND user_id = ?`,
				name, id, userID,
			); err != nil {
				return fmt.Errorf("rename packing list: %w", err)
			}
		}
		for _, c := range u.Items {
			if c.ID == nil {
				if _, err := insertItem(ctx, tx, id, c.Draft); err != nil {
					return err
				}
				continue
			}
			if _, err := patchItem(ctx, tx, id, *c.ID, c.Patch); err != nil {
				return err
			}
		}
		var err error
		updated, err = loadList(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func patchItem(ctx context.Context, q querier, listID, itemID int64, p model.ItemPatch) (*model.Item, error) {
	it, err := getItem(ctx, q, listID, itemID)
	if err != nil {
		return nil, err
	}
	if it == nil {
		return nil, apperr.NotFound("item")
	}
	if err := applyItemPatch(it, p); err != nil {
		return nil, err
	}
	_, err = q.ExecContext(ctx,
		`UPDATE packing_list_items SET name = ?, quantity = ?, packed_quantity = ?, is_packed = ? WHERE id = ? AND packing_list_id = ?`,
		it.Name, it.Quantity, it.PackedQuantity, boolToInt(it.IsPacked), itemID, listID,
	)
	if err != nil {
		return nil, fmt.Errorf("update item: %w", err)
	}
	return it, nil
}

// Delete removes the list and all of its items.
func (s *PackingListStore) Delete(ctx context.Context, userID, id int64) error {
	return database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		if err := ownedList(ctx, tx, userID, id); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM packing_list_items WHERE packing_list_id = ?`, id); err != nil {
			return fmt.Errorf("delete items: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM packing_lists WHERE id = ? AND user_id = ?`, id, userID); err != nil {
			return fmt.Errorf("delete packing list: %w", err)
		}
		return nil
	})
}

// ListOwner reports the owning user of a packing list.
func (s *PackingListStore) ListOwner(ctx context.Context, id int64) (int64, bool, error) {
	var userID int64
	err := s.db.QueryRowContext(ctx, `SELECT user_id FROM packing_lists WHERE id = ?`, id).Scan(&userID)
	if err == sql.ErrNoRows {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("packing list owner: %w", err)
	}
	return userID, true, nil
}

// ItemOwner reports the owning user of an item through its parent list.
// An item that exists under a different list is reported as absent.
func (s *PackingListStore) ItemOwner(ctx context.Context, listID, itemID int64) (int64, bool, error) {
	var userID int64
	err := s.db.QueryRowContext(ctx,
		`SELECT l.user_id FROM packing_list_items i
		 JOIN packing_lists l ON l.id = i.packing_list_id
		 WHERE i.id = ? AND i.packing_list_id = ?`,
		itemID, listID,
	).Scan(&userID)
	if err == sql.ErrNoRows {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("item owner: %w", err)
	}
	return userID, true, nil
}

func (s *PackingListStore) AddItem(ctx context.Context, userID, listID int64, d model.ItemDraft) (*model.Item, error) {
	d, err := normalizeDraft(d)
	if err != nil {
		return nil, err
	}
	var created *model.Item
	err = database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		if err := ownedList(ctx, tx, userID, listID); err != nil {
			return err
		}
		id, err := insertItem(ctx, tx, listID, d)
		if err != nil {
			return err
		}
		created, err = getItem(ctx, tx, listID, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// GetItem returns the item, or nil if it does not exist under listID.
func (s *PackingListStore) GetItem(ctx context.Context, listID, itemID int64) (*model.Item, error) {
	return getItem(ctx, s.db, listID, itemID)
}

func (s *PackingListStore) ListItems(ctx context.Context, listID int64) ([]model.Item, error) {
	return listItems(ctx, s.db, listID)
}

func (s *PackingListStore) UpdateItem(ctx context.Context, userID, listID, itemID int64, p model.ItemPatch) (*model.Item, error) {
	var updated *model.Item
	err := database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		if err := ownedList(ctx, tx, userID, listID); err != nil {
			return err
		}
		var err error
		updated, err = patchItem(ctx, tx, listID, itemID, p)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteItem removes the item and returns the updated parent list.
func (s *PackingListStore) DeleteItem(ctx context.Context, userID, listID, itemID int64) (*model.PackingList, error) {
	var list *model.PackingList
	err := database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		if err := ownedList(ctx, tx, userID, listID); err != nil {
			return err
		}
		result, err := tx.ExecContext(ctx,
			`DELETE FROM packing_list_items WHERE id = ? AND packing_list_id = ?`,
			itemID, listID,
		)
		if err != nil {
			return fmt.Errorf("delete item: %w", err)
		}
		n, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("rows affected: %w", err)
		}
		if n == 0 {
			return apperr.NotFound("item")
		}
		list, err = loadList(ctx, tx, listID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return list, nil
}

// ToggleItem flips is_packed in place.
func (s *PackingListStore) ToggleItem(ctx context.Context, userID, listID, itemID int64) (*model.Item, error) {
	var toggled *model.Item
	err := database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		if err := ownedList(ctx, tx, userID, listID); err != nil {
			return err
		}
		result, err := tx.ExecContext(ctx,
			`UPDATE packing_list_items SET is_packed = 1 - is_packed WHERE id = ? AND packing_list_id = ?`,
			itemID, listID,
		)
		if err != nil {
			return fmt.Errorf("toggle item: %w", err)
		}
		n, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("rows affected: %w", err)
		}
		if n == 0 {
			return apperr.NotFound("item")
		}
		toggled, err = getItem(ctx, tx, listID, itemID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return toggled, nil
}
