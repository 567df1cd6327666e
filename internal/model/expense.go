package model

import "time"

// DateLayout is the wire and storage format of Expense.Date.
const DateLayout = "2006-01-02"

type Expense struct {
	ID          int64
	UserID      int64
	AmountCents int64
	Description string
	Category    string
	Date        time.Time
	CreatedAt   time.Time
}

// ExpensePatch holds the fields of a partial expense update. Nil fields keep
// their stored value.
type ExpensePatch struct {
	AmountCents *int64
	Description *string
	Category    *string
	Date        *time.Time
}
