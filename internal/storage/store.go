// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/mmynk/settleup/internal/models"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// ErrConflict is returned when a write violates a uniqueness constraint,
// such as registering an email twice or adding an existing member.
var ErrConflict = errors.New("already exists")

// Ledger is a consistent snapshot of one group's members and expenses.
type Ledger struct {
	Group    *models.Group
	Members  []models.Member
	Expenses []models.Expense
}

// UserLedger holds every expense, across all groups, that a user paid or
// participates in. Splits are attached to each expense.
type UserLedger struct {
	UserID   string
	Expenses []models.Expense
}

// Store defines the interface for ledger storage operations.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL, etc.)
// without changing the service layer.
type Store interface {
	UserStore
	GroupStore
	ExpenseStore

	// Close releases any resources held by the store.
	Close() error
}

// UserStore persists user accounts.
type UserStore interface {
	// CreateUser inserts a user. Returns ErrConflict if the email is taken.
	CreateUser(ctx context.Context, user *models.User) error

	// GetUserByEmail returns ErrNotFound if no user has that email.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	// GetUserByID returns ErrNotFound if the user does not exist.
	GetUserByID(ctx context.Context, id string) (*models.User, error)

	// GetUsersByIDs returns the users that exist, keyed by ID.
	GetUsersByIDs(ctx context.Context, ids []string) (map[string]*models.User, error)
}

// GroupStore persists groups and their memberships.
type GroupStore interface {
	// CreateGroup inserts the group and makes creator its admin, atomically.
	CreateGroup(ctx context.Context, group *models.Group, creator *models.User) error

	// GetGroup returns ErrNotFound if the group does not exist.
	GetGroup(ctx context.Context, groupID string) (*models.Group, error)

	// ListGroupsForUser returns the groups the user is a member of, newest first.
	ListGroupsForUser(ctx context.Context, userID string) ([]models.Group, error)

	// ListGroupIDs returns the ID of every group.
	ListGroupIDs(ctx context.Context) ([]string, error)

	// DeleteGroup removes the group with its memberships and expenses.
	DeleteGroup(ctx context.Context, groupID string) error

	// AddMember returns ErrConflict if the user is already a member.
	AddMember(ctx context.Context, member *models.Member) error

	// GetMember returns ErrNotFound if the user is not in the group.
	GetMember(ctx context.Context, groupID, userID string) (*models.Member, error)

	// ListMembers returns members in join order.
	ListMembers(ctx context.Context, groupID string) ([]models.Member, error)
}

// ExpenseStore persists expenses with their splits.
type ExpenseStore interface {
	// CreateExpense writes the expense and all its splits in one transaction.
	// IDs and CreatedAt are assigned when empty.
	CreateExpense(ctx context.Context, expense *models.Expense) error

	// GetExpense returns ErrNotFound if the expense does not exist.
	GetExpense(ctx context.Context, expenseID string) (*models.Expense, error)

	// ListExpensesByGroup returns the group's expenses, newest first,
	// with their splits.
	ListExpensesByGroup(ctx context.Context, groupID string) ([]models.Expense, error)

	// GroupLedger reads the group, its members and its expenses from a single
	// snapshot, so balances computed from it always net to zero.
	GroupLedger(ctx context.Context, groupID string) (*Ledger, error)

	// UserLedger reads every expense the user paid or shares, across groups.
	UserLedger(ctx context.Context, userID string) (*UserLedger, error)
}
