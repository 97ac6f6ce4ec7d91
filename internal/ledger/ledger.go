// Package ledger derives balances and settlement plans from stored ledgers.
package ledger

import (
	"github.com/mmynk/settleup/internal/calculator"
	"github.com/mmynk/settleup/internal/models"
	"github.com/mmynk/settleup/internal/money"
	"github.com/mmynk/settleup/internal/storage"
)

// Summary is the derived state of one group.
type Summary struct {
	Balances   []calculator.MemberBalance
	Plan       calculator.Plan
	TotalSpent money.Cents
}

// Inputs flattens expenses for the balance calculator.
func Inputs(expenses []models.Expense) ([]calculator.ExpenseForBalance, []calculator.SplitForBalance) {
	flat := make([]calculator.ExpenseForBalance, 0, len(expenses))
	var splits []calculator.SplitForBalance
	for _, e := range expenses {
		flat = append(flat, e.ForBalance())
		for _, sp := range e.Splits {
			splits = append(splits, sp.ForBalance())
		}
	}
	return flat, splits
}

// Members converts memberships for the balance calculator, keeping order.
func Members(members []models.Member) []calculator.MemberRef {
	refs := make([]calculator.MemberRef, len(members))
	for i, m := range members {
		refs[i] = calculator.MemberRef{ID: m.UserID, Name: m.Name}
	}
	return refs
}

// Balances computes every member's balance in the ledger's group.
func Balances(l *storage.Ledger) []calculator.MemberBalance {
	expenses, splits := Inputs(l.Expenses)
	return calculator.GroupBalances(l.Group.ID, Members(l.Members), expenses, splits)
}

// TotalSpent sums the amounts of the expenses.
func TotalSpent(expenses []models.Expense) money.Cents {
	var total money.Cents
	for _, e := range expenses {
		total += e.Amount
	}
	return total
}

// Summarize computes balances and the settlement plan for a group. The error
// is the minimizer's: an *calculator.ImbalanceError when the balances do not
// net to zero and opts rejects imbalances.
func Summarize(l *storage.Ledger, opts calculator.SettleOptions) (*Summary, error) {
	balances := Balances(l)
	plan, err := calculator.MinimizeSettlements(balances, opts)
	if err != nil {
		return nil, err
	}
	return &Summary{
		Balances:   balances,
		Plan:       plan,
		TotalSpent: TotalSpent(l.Expenses),
	}, nil
}
