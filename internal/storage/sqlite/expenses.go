package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/settleup/internal/models"
	"github.com/mmynk/settleup/internal/money"
	"github.com/mmynk/settleup/internal/storage"
)

const expenseColumns = "e.id, e.group_id, e.description, e.amount_cents, e.payer_id, e.split_count, e.category_id, e.created_at"

// CreateExpense persists an expense and its splits atomically.
func (s *SQLiteStore) CreateExpense(ctx context.Context, expense *models.Expense) error {
	if err := expense.Validate(); err != nil {
		return fmt.Errorf("refusing to store expense: %w", err)
	}
	if expense.ID == "" {
		expense.ID = uuid.New().String()
	}
	if expense.CreatedAt == 0 {
		expense.CreatedAt = time.Now().Unix()
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO expenses (id, group_id, description, amount_cents, payer_id, split_count, category_id, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			expense.ID, expense.GroupID, expense.Description, int64(expense.Amount),
			expense.PayerID, expense.SplitCount, expense.CategoryID, expense.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert expense: %w", err)
		}

		for i := range expense.Splits {
			split := &expense.Splits[i]
			if split.ID == "" {
				split.ID = uuid.New().String()
			}
			split.ExpenseID = expense.ID

			_, err = tx.ExecContext(ctx,
				"INSERT INTO expense_splits (id, expense_id, user_id, amount_cents, position) VALUES (?, ?, ?, ?, ?)",
				split.ID, split.ExpenseID, split.UserID, int64(split.Amount), i,
			)
			if isUniqueViolation(err) {
				return fmt.Errorf("duplicate participant %s: %w", split.UserID, storage.ErrConflict)
			}
			if err != nil {
				return fmt.Errorf("failed to insert split: %w", err)
			}
		}
		return nil
	})
}

// GetExpense retrieves an expense with its splits.
func (s *SQLiteStore) GetExpense(ctx context.Context, expenseID string) (*models.Expense, error) {
	expenses, err := queryExpenses(ctx, s.db,
		"SELECT "+expenseColumns+" FROM expenses e WHERE e.id = ?",
		"SELECT s.id, s.expense_id, s.user_id, s.amount_cents FROM expense_splits s WHERE s.expense_id = ? ORDER BY s.position",
		expenseID,
	)
	if err != nil {
		return nil, err
	}
	if len(expenses) == 0 {
		return nil, fmt.Errorf("expense %s: %w", expenseID, storage.ErrNotFound)
	}
	return &expenses[0], nil
}

// ListExpensesByGroup returns a group's expenses, newest first.
func (s *SQLiteStore) ListExpensesByGroup(ctx context.Context, groupID string) ([]models.Expense, error) {
	return groupExpenses(ctx, s.db, groupID)
}

func groupExpenses(ctx context.Context, q querier, groupID string) ([]models.Expense, error) {
	return queryExpenses(ctx, q,
		"SELECT "+expenseColumns+" FROM expenses e WHERE e.group_id = ? ORDER BY e.created_at DESC, e.rowid DESC",
		`SELECT s.id, s.expense_id, s.user_id, s.amount_cents
		FROM expense_splits s JOIN expenses e ON e.id = s.expense_id
		WHERE e.group_id = ? ORDER BY s.expense_id, s.position`,
		groupID,
	)
}

// GroupLedger reads a group's state inside one transaction.
func (s *SQLiteStore) GroupLedger(ctx context.Context, groupID string) (*storage.Ledger, error) {
	ledger := &storage.Ledger{}
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		group, err := getGroup(ctx, tx, groupID)
		if err != nil {
			return err
		}
		members, err := listMembers(ctx, tx, groupID)
		if err != nil {
			return err
		}
		expenses, err := groupExpenses(ctx, tx, groupID)
		if err != nil {
			return err
		}
		ledger.Group, ledger.Members, ledger.Expenses = group, members, expenses
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ledger, nil
}

// UserLedger reads every expense the user paid or participates in.
func (s *SQLiteStore) UserLedger(ctx context.Context, userID string) (*storage.UserLedger, error) {
	const involved = "e.payer_id = ? OR e.id IN (SELECT expense_id FROM expense_splits WHERE user_id = ?)"

	ledger := &storage.UserLedger{UserID: userID}
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		expenses, err := queryExpenses(ctx, tx,
			"SELECT "+expenseColumns+" FROM expenses e WHERE "+involved+" ORDER BY e.created_at DESC, e.rowid DESC",
			`SELECT s.id, s.expense_id, s.user_id, s.amount_cents
			FROM expense_splits s JOIN expenses e ON e.id = s.expense_id
			WHERE `+involved+` ORDER BY s.expense_id, s.position`,
			userID, userID,
		)
		if err != nil {
			return err
		}
		ledger.Expenses = expenses
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ledger, nil
}

// queryExpenses runs the expense query and the matching split query with the
// same arguments and attaches splits to their expenses.
func queryExpenses(ctx context.Context, q querier, expenseQuery, splitQuery string, args ...any) ([]models.Expense, error) {
	rows, err := q.QueryContext(ctx, expenseQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get expenses: %w", err)
	}
	defer rows.Close()

	var expenses []models.Expense
	index := make(map[string]int)
	for rows.Next() {
		var e models.Expense
		var amount int64
		if err := rows.Scan(&e.ID, &e.GroupID, &e.Description, &amount, &e.PayerID, &e.SplitCount, &e.CategoryID, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		e.Amount = money.Cents(amount)
		index[e.ID] = len(expenses)
		expenses = append(expenses, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expenses: %w", err)
	}
	rows.Close()

	if len(expenses) == 0 {
		return nil, nil
	}

	splitRows, err := q.QueryContext(ctx, splitQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get splits: %w", err)
	}
	defer splitRows.Close()

	for splitRows.Next() {
		var sp models.ExpenseSplit
		var amount int64
		if err := splitRows.Scan(&sp.ID, &sp.ExpenseID, &sp.UserID, &amount); err != nil {
			return nil, fmt.Errorf("failed to scan split: %w", err)
		}
		sp.Amount = money.Cents(amount)
		if i, ok := index[sp.ExpenseID]; ok {
			expenses[i].Splits = append(expenses[i].Splits, sp)
		}
	}
	if err := splitRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate splits: %w", err)
	}
	return expenses, nil
}
