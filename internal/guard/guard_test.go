package guard

import (
	"context"
	"errors"
	"testing"

	"github.com/dukerupert/tripkit/internal/apperr"
)

type stubOwners struct {
	expenses map[int64]int64
	lists    map[int64]int64
	items    map[[2]int64]int64
	err      error
}

func (s stubOwners) ExpenseOwner(_ context.Context, id int64) (int64, bool, error) {
	u, ok := s.expenses[id]
	return u, ok, s.err
}

func (s stubOwners) ListOwner(_ context.Context, id int64) (int64, bool, error) {
	u, ok := s.lists[id]
	return u, ok, s.err
}

func (s stubOwners) ItemOwner(_ context.Context, listID, itemID int64) (int64, bool, error) {
	u, ok := s.items[[2]int64{listID, itemID}]
	return u, ok, s.err
}

func newStub() stubOwners {
	return stubOwners{
		expenses: map[int64]int64{10: 1},
		lists:    map[int64]int64{20: 1, 21: 2},
		items:    map[[2]int64]int64{{20, 30}: 1, {21, 31}: 2},
	}
}

func TestGuardDecisions(t *testing.T) {
	s := newStub()
	g := New(s, s)
	ctx := context.Background()

	tests := []struct {
		name string
		err  error
		want apperr.Kind
		ok   bool
	}{
		{"own expense", g.Expense(ctx, 1, 10), 0, true},
		{"other's expense", g.Expense(ctx, 2, 10), apperr.KindForbidden, false},
		{"missing expense", g.Expense(ctx, 1, 99), apperr.KindNotFound, false},
		{"own list", g.PackingList(ctx, 1, 20), 0, true},
		{"other's list", g.PackingList(ctx, 1, 21), apperr.KindForbidden, false},
		{"missing list", g.PackingList(ctx, 1, 99), apperr.KindNotFound, false},
		{"own item", g.Item(ctx, 1, 20, 30), 0, true},
		{"item under other's list", g.Item(ctx, 1, 21, 31), apperr.KindForbidden, false},
		{"item under wrong list", g.Item(ctx, 1, 20, 31), apperr.KindNotFound, false},
		{"item under missing list", g.Item(ctx, 1, 99, 30), apperr.KindNotFound, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.ok {
				if tt.err != nil {
					t.Errorf("err = %v, want nil", tt.err)
				}
				return
			}
			if !apperr.Is(tt.err, tt.want) {
				t.Errorf("err = %v, want %v", tt.err, tt.want)
			}
		})
	}
}

func TestGuardConcealOwnership(t *testing.T) {
	s := newStub()
	g := New(s, s, WithConcealOwnership(true))
	ctx := context.Background()

	if err := g.Expense(ctx, 2, 10); !apperr.Is(err, apperr.KindNotFound) {
		t.Errorf("err = %v, want not found", err)
	}
	if err := g.Item(ctx, 1, 21, 31); !apperr.Is(err, apperr.KindNotFound) {
		t.Errorf("err = %v, want not found", err)
	}
}

func TestGuardLookupError(t *testing.T) {
	s := newStub()
	s.err = errors.New("database is locked")
	g := New(s, s)

	err := g.Expense(context.Background(), 1, 10)
	if !errors.Is(err, s.err) {
		t.Errorf("err = %v, want wrapped lookup error", err)
	}
	if apperr.KindOf(err) != apperr.KindInternal {
		t.Errorf("kind = %v, want internal", apperr.KindOf(err))
	}
}
