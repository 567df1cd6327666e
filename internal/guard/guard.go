// Package guard is the single place where the authenticated user is compared
// with the owner of a stored resource.
package guard

import (
	"context"
	"fmt"

	"github.com/dukerupert/tripkit/internal/apperr"
)

// ExpenseOwners resolves the owning user of an expense.
type ExpenseOwners interface {
	ExpenseOwner(ctx context.Context, id int64) (userID int64, found bool, err error)
}

// ListOwners resolves the owning user of a packing list and of an item
// through its parent list.
type ListOwners interface {
	ListOwner(ctx context.Context, id int64) (userID int64, found bool, err error)
	ItemOwner(ctx context.Context, listID, itemID int64) (userID int64, found bool, err error)
}

type Guard struct {
	expenses ExpenseOwners
	lists    ListOwners
	conceal  bool
}

type Option func(*Guard)

// WithConcealOwnership reports resources owned by someone else as not found.
func WithConcealOwnership(conceal bool) Option {
	return func(g *Guard) { g.conceal = conceal }
}

func New(expenses ExpenseOwners, lists ListOwners, opts ...Option) *Guard {
	g := &Guard{expenses: expenses, lists: lists}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *Guard) Expense(ctx context.Context, userID, expenseID int64) error {
	owner, found, err := g.expenses.ExpenseOwner(ctx, expenseID)
	return g.decide("expense", userID, owner, found, err)
}

func (g *Guard) PackingList(ctx context.Context, userID, listID int64) error {
	owner, found, err := g.lists.ListOwner(ctx, listID)
	return g.decide("packing list", userID, owner, found, err)
}

// Item checks the parent list first so a foreign list is reported as such
// before the item id is considered.
func (g *Guard) Item(ctx context.Context, userID, listID, itemID int64) error {
	if err := g.PackingList(ctx, userID, listID); err != nil {
		return err
	}
	owner, found, err := g.lists.ItemOwner(ctx, listID, itemID)
	return g.decide("item", userID, owner, found, err)
}

func (g *Guard) decide(what string, userID, owner int64, found bool, err error) error {
	switch {
	case err != nil:
		return fmt.Errorf("check %s owner: %w", what, err)
	case !found:
		return apperr.NotFound(what)
	case owner != userID:
		if g.conceal {
			return apperr.NotFound(what)
		}
		return apperr.Forbidden("you do not have access to this " + what)
	}
	return nil
}
