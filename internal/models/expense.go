package models

import (
	"github.com/mmynk/settleup/internal/calculator"
	"github.com/mmynk/settleup/internal/money"
)

// Expense is an amount paid by one member and shared among participants.
// Expenses are immutable once created.
type Expense struct {
	// ID is the unique identifier for the expense (UUID format).
	ID string

	GroupID string

	// Description is free text, also used to derive the category.
	Description string

	// Amount is the total paid, exact to the cent.
	Amount money.Cents

	// PayerID is the user ID of the member who paid.
	PayerID string

	// SplitCount is the number of participants sharing the expense.
	SplitCount int

	// CategoryID is assigned by the categorizer at creation time.
	CategoryID string

	// CreatedAt is the Unix timestamp when the expense was created.
	CreatedAt int64

	// Splits are the participants' shares. They sum to Amount.
	Splits []ExpenseSplit
}

// ExpenseSplit is one participant's share of an expense.
type ExpenseSplit struct {
	ID        string
	ExpenseID string
	UserID    string
	Amount    money.Cents
}

// Validate checks the expense invariants: a non-negative amount, at least
// one split, a split count matching the splits and splits summing exactly
// to the amount.
func (e *Expense) Validate() error {
	amounts := make([]money.Cents, len(e.Splits))
	for i, s := range e.Splits {
		amounts[i] = s.Amount
	}
	if err := calculator.ValidateSplits(e.Amount, amounts); err != nil {
		return err
	}
	if e.SplitCount != len(e.Splits) {
		return calculator.ErrInvalidInput
	}
	return nil
}

// ForBalance converts the expense for the balance calculator.
func (e *Expense) ForBalance() calculator.ExpenseForBalance {
	return calculator.ExpenseForBalance{
		ID:      e.ID,
		GroupID: e.GroupID,
		PayerID: e.PayerID,
		Amount:  e.Amount,
	}
}

// ForBalance converts the split for the balance calculator.
func (s ExpenseSplit) ForBalance() calculator.SplitForBalance {
	return calculator.SplitForBalance{
		ExpenseID: s.ExpenseID,
		MemberID:  s.UserID,
		Amount:    s.Amount,
	}
}
