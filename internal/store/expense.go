package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/dukerupert/tripkit/internal/apperr"
	"github.com/dukerupert/tripkit/internal/database"
	"github.com/dukerupert/tripkit/internal/model"
)

type ExpenseStore struct {
	db *sql.DB
}

func NewExpenseStore(db *sql.DB) *ExpenseStore {
	return &ExpenseStore{db: db}
}

func scanExpense(s scanner) (*model.Expense, error) {
	var e model.Expense
	var date string
	err := s.Scan(&e.ID, &e.UserID, &e.AmountCents, &e.Description, &e.Category, &date, &e.CreatedAt)
	if err != nil {
		return nil, err
	}
	e.Date, err = time.Parse(model.DateLayout, date)
	if err != nil {
		return nil, fmt.Errorf("parse expense date %q: %w", date, err)
	}
	return &e, nil
}

const expenseCols = `id, user_id, amount_cents, description, category, date, created_at`

func validateExpense(e *model.Expense) error {
	e.Description = strings.TrimSpace(e.Description)
	e.Category = strings.TrimSpace(e.Category)
	switch {
	case e.AmountCents <= 0:
		return apperr.Validation("amount must be positive")
	case e.Description == "":
		return apperr.Validation("description is required")
	case e.Category == "":
		return apperr.Validation("category is required")
	case e.Date.IsZero():
		return apperr.Validation("date is required")
	}
	return nil
}

// Create inserts an expense owned by e.UserID.
func (s *ExpenseStore) Create(ctx context.Context, e model.Expense) (*model.Expense, error) {
	if err := validateExpense(&e); err != nil {
		return nil, err
	}

	var created *model.Expense
	err := database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx,
			`INSERT INTO expenses (user_id, amount_cents, description, category, date) VALUES (?, ?, ?, ?, ?)`,
			e.UserID, e.AmountCents, e.Description, e.Category, e.Date.Format(model.DateLayout),
		)
		if err != nil {
			return fmt.Errorf("insert expense: %w", err)
		}
		id, err := result.LastInsertId()
		if err != nil {
			return fmt.Errorf("last insert id: %w", err)
		}
		created, err = getExpense(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func getExpense(ctx context.Context, q querier, id int64) (*model.Expense, error) {
	row := q.QueryRowContext(ctx, `SELECT `+expenseCols+` FROM expenses WHERE id = ?`, id)
	e, err := scanExpense(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get expense: %w", err)
	}
	return e, nil
}

// GetByID returns the expense, or nil if it does not exist.
func (s *ExpenseStore) GetByID(ctx context.Context, id int64) (*model.Expense, error) {
	return getExpense(ctx, s.db, id)
}

// ListByUser returns the user's expenses, most recent date first.
func (s *ExpenseStore) ListByUser(ctx context.Context, userID int64) ([]model.Expense, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+expenseCols+` FROM expenses WHERE user_id = ? ORDER BY date DESC, id DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	defer rows.Close()

	var expenses []model.Expense
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		expenses = append(expenses, *e)
	}
	return expenses, rows.Err()
}

// Update applies the non-nil fields of p to the user's expense.
func (s *ExpenseStore) Update(ctx context.Context, userID, id int64, p model.ExpensePatch) (*model.Expense, error) {
	var updated *model.Expense
	err := database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		e, err := getExpense(ctx, tx, id)
		if err != nil {
			return err
		}
		if e == nil || e.UserID != userID {
			return apperr.NotFound("expense")
		}

		if p.AmountCents != nil {
			e.AmountCents = *p.AmountCents
		}
		if p.Description != nil {
			e.Description = *p.Description
		}
		if p.Category != nil {
			e.Category = *p.Category
		}
		if p.Date != nil {
			e.Date = *p.Date
		}
		if err := validateExpense(e); err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx,
			`UPDATE expenses SET amount_cents = ?, description = ?, category = ?, date = ? WHERE id = ? AND user_id = ?`,
			e.AmountCents, e.Description, e.Category, e.Date.Format(model.DateLayout), id, userID,
		)
		if err != nil {
			return fmt.Errorf("update expense: %w", err)
		}
		updated, err = getExpense(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *ExpenseStore) Delete(ctx context.Context, userID, id int64) error {
	return database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, `DELETE FROM expenses WHERE id = ? AND user_id = ?`, id, userID)
		if err != nil {
			return fmt.Errorf("delete expense: %w", err)
		}
		n, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("rows affected: %w", err)
		}
		if n == 0 {
			return apperr.NotFound("expense")
		}
		return nil
	})
}

// ExpenseOwner reports the owning user of an expense.
func (s *ExpenseStore) ExpenseOwner(ctx context.Context, id int64) (int64, bool, error) {
	var userID int64
	err := s.db.QueryRowContext(ctx, `SELECT user_id FROM expenses WHERE id = ?`, id).Scan(&userID)
	if err == sql.ErrNoRows {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("expense owner: %w", err)
	}
	return userID, true, nil
}
