package model

import "time"

type PackingList struct {
	ID        int64
	UserID    int64
	Name      string
	CreatedAt time.Time
	Items     []Item
}

type Item struct {
	ID             int64
	PackingListID  int64
	Name           string
	Quantity       int
	PackedQuantity int
	IsPacked       bool
	CreatedAt      time.Time
}

// ItemDraft describes an item to insert. Zero Quantity means the default of 1.
type ItemDraft struct {
	Name           string
	Quantity       int
	PackedQuantity int
	IsPacked       bool
}

// ItemPatch holds the fields of a partial item update. Nil fields keep their
// stored value.
type ItemPatch struct {
	Name           *string
	Quantity       *int
	PackedQuantity *int
	IsPacked       *bool
}

// ItemChange is one descriptor of a packing list update: with ID set it
// patches that item, otherwise Draft is appended as a new item.
type ItemChange struct {
	ID    *int64
	Patch ItemPatch
	Draft ItemDraft
}

// ListUpdate is a partial packing list update. A nil Name keeps the stored name.
type ListUpdate struct {
	Name  *string
	Items []ItemChange
}
