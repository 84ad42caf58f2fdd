package sqlite

import (
	"context"
	"database/sql"
)

const expenseColumns = `id, title, amount, category, notes, receipt_image_url, timestamp`

const insertExpense = `INSERT INTO expenses (` + expenseColumns + `)
VALUES (?, ?, ?, ?, ?, ?, ?)`

type InsertExpenseParams struct {
	ID              string
	Title           string
	Amount          float64
	Category        string
	Notes           sql.NullString
	ReceiptImageUrl sql.NullString
	Timestamp       int64
}

func (q *Queries) InsertExpense(ctx context.Context, arg InsertExpenseParams) error {
	_, err := q.db.ExecContext(ctx, insertExpense,
		arg.ID, arg.Title, arg.Amount, arg.Category, arg.Notes, arg.ReceiptImageUrl, arg.Timestamp)
	return err
}

const updateExpense = `UPDATE expenses
SET title = ?, amount = ?, category = ?, notes = ?, receipt_image_url = ?, timestamp = ?
WHERE id = ?`

func (q *Queries) UpdateExpense(ctx context.Context, arg InsertExpenseParams) (int64, error) {
	res, err := q.db.ExecContext(ctx, updateExpense,
		arg.Title, arg.Amount, arg.Category, arg.Notes, arg.ReceiptImageUrl, arg.Timestamp, arg.ID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const deleteExpense = `DELETE FROM expenses WHERE id = ?`

func (q *Queries) DeleteExpense(ctx context.Context, id string) (int64, error) {
	res, err := q.db.ExecContext(ctx, deleteExpense, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const deleteAllExpenses = `DELETE FROM expenses`

func (q *Queries) DeleteAllExpenses(ctx context.Context) error {
	_, err := q.db.ExecContext(ctx, deleteAllExpenses)
	return err
}

const getExpense = `SELECT ` + expenseColumns + ` FROM expenses WHERE id = ?`

func (q *Queries) GetExpense(ctx context.Context, id string) (Expense, error) {
	row := q.db.QueryRowContext(ctx, getExpense, id)
	var i Expense
	err := row.Scan(&i.ID, &i.Title, &i.Amount, &i.Category, &i.Notes, &i.ReceiptImageUrl, &i.Timestamp)
	return i, err
}

const listExpenses = `SELECT ` + expenseColumns + ` FROM expenses ORDER BY timestamp DESC, id`

func (q *Queries) ListExpenses(ctx context.Context) ([]Expense, error) {
	return q.list(ctx, listExpenses)
}

const listExpensesByRange = `SELECT ` + expenseColumns + ` FROM expenses
WHERE timestamp BETWEEN ? AND ?
ORDER BY timestamp DESC, id`

func (q *Queries) ListExpensesByRange(ctx context.Context, start, end int64) ([]Expense, error) {
	return q.list(ctx, listExpensesByRange, start, end)
}

const listExpensesByCategory = `SELECT ` + expenseColumns + ` FROM expenses
WHERE category = ? COLLATE NOCASE
ORDER BY timestamp DESC, id`

func (q *Queries) ListExpensesByCategory(ctx context.Context, category string) ([]Expense, error) {
	return q.list(ctx, listExpensesByCategory, category)
}

const listExpensesByRangeAndCategory = `SELECT ` + expenseColumns + ` FROM expenses
WHERE (timestamp BETWEEN ? AND ?) AND category = ? COLLATE NOCASE
ORDER BY timestamp DESC, id`

func (q *Queries) ListExpensesByRangeAndCategory(ctx context.Context, start, end int64, category string) ([]Expense, error) {
	return q.list(ctx, listExpensesByRangeAndCategory, start, end, category)
}

// LIKE is case-insensitive for ASCII in SQLite.
const searchExpenses = `SELECT ` + expenseColumns + ` FROM expenses
WHERE title LIKE '%' || ? || '%' OR notes LIKE '%' || ? || '%'
ORDER BY timestamp DESC, id`

func (q *Queries) SearchExpenses(ctx context.Context, query string) ([]Expense, error) {
	return q.list(ctx, searchExpenses, query, query)
}

const countExpensesByRange = `SELECT COUNT(*) FROM expenses WHERE timestamp BETWEEN ? AND ?`

func (q *Queries) CountExpensesByRange(ctx context.Context, start, end int64) (int64, error) {
	row := q.db.QueryRowContext(ctx, countExpensesByRange, start, end)
	var count int64
	err := row.Scan(&count)
	return count, err
}

func (q *Queries) list(ctx context.Context, query string, args ...interface{}) ([]Expense, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Expense
	for rows.Next() {
		var i Expense
		if err := rows.Scan(&i.ID, &i.Title, &i.Amount, &i.Category, &i.Notes, &i.ReceiptImageUrl, &i.Timestamp); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
