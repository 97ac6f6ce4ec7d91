package calculator

import (
	"sort"

	"github.com/mmynk/settleup/internal/money"
)

// ExpenseForBalance is the minimal view of an expense needed for balances.
type ExpenseForBalance struct {
	ID      string
	GroupID string
	PayerID string
	Amount  money.Cents
}

// SplitForBalance is the minimal view of an expense split needed for balances.
type SplitForBalance struct {
	ExpenseID string
	MemberID  string
	Amount    money.Cents
}

// MemberRef identifies a member for balance and settlement output.
type MemberRef struct {
	ID   string
	Name string
}

// MemberBalance is one member's position within a group.
type MemberBalance struct {
	MemberID   string
	MemberName string
	TotalPaid  money.Cents
	TotalOwed  money.Cents
	NetBalance money.Cents // Positive = owed money, Negative = owes money
}

// Balance computes a member's net position in a group: everything the
// member paid for the group's expenses minus the member's splits of those
// same expenses. Expenses and splits from other groups are ignored, so the
// inputs may safely contain a user's whole history.
func Balance(memberID, groupID string, expenses []ExpenseForBalance, splits []SplitForBalance) MemberBalance {
	inGroup := make(map[string]bool, len(expenses))
	bal := MemberBalance{MemberID: memberID, MemberName: memberID}

	for _, e := range expenses {
		if e.GroupID != groupID {
			continue
		}
		inGroup[e.ID] = true
		if e.PayerID == memberID {
			bal.TotalPaid += e.Amount
		}
	}

	for _, s := range splits {
		if s.MemberID == memberID && inGroup[s.ExpenseID] {
			bal.TotalOwed += s.Amount
		}
	}

	bal.NetBalance = bal.TotalPaid - bal.TotalOwed
	return bal
}

// GroupBalances computes the balance of every member of a group.
//
// Results follow the order of members. Anyone who paid for or owes a split
// of a group expense but is missing from members is appended, sorted by ID,
// so the returned balances always net to zero for a consistent ledger.
func GroupBalances(groupID string, members []MemberRef, expenses []ExpenseForBalance, splits []SplitForBalance) []MemberBalance {
	seen := make(map[string]bool, len(members))
	ordered := make([]MemberRef, 0, len(members))
	for _, m := range members {
		if seen[m.ID] {
			continue
		}
		seen[m.ID] = true
		ordered = append(ordered, m)
	}

	inGroup := make(map[string]bool, len(expenses))
	var extra []string
	addExtra := func(id string) {
		if !seen[id] {
			seen[id] = true
			extra = append(extra, id)
		}
	}
	for _, e := range expenses {
		if e.GroupID != groupID {
			continue
		}
		inGroup[e.ID] = true
		addExtra(e.PayerID)
	}
	for _, s := range splits {
		if inGroup[s.ExpenseID] {
			addExtra(s.MemberID)
		}
	}
	sort.Strings(extra)
	for _, id := range extra {
		ordered = append(ordered, MemberRef{ID: id, Name: id})
	}

	balances := make([]MemberBalance, len(ordered))
	for i, m := range ordered {
		balances[i] = Balance(m.ID, groupID, expenses, splits)
		if m.Name != "" {
			balances[i].MemberName = m.Name
		}
	}
	return balances
}

// GroupBalanceSummary is a member's balance within one group, used for
// cross-group summaries.
type GroupBalanceSummary struct {
	GroupID    string
	NetBalance money.Cents
}

// OverallBalance sums a member's balance across every group present in
// expenses. Per-group balances are returned sorted by group ID.
func OverallBalance(memberID string, expenses []ExpenseForBalance, splits []SplitForBalance) (money.Cents, []GroupBalanceSummary) {
	groups := make(map[string]bool)
	for _, e := range expenses {
		groups[e.GroupID] = true
	}
	ids := make([]string, 0, len(groups))
	for id := range groups {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var total money.Cents
	perGroup := make([]GroupBalanceSummary, 0, len(ids))
	for _, id := range ids {
		b := Balance(memberID, id, expenses, splits)
		total += b.NetBalance
		perGroup = append(perGroup, GroupBalanceSummary{GroupID: id, NetBalance: b.NetBalance})
	}
	return total, perGroup
}

// SumBalances returns the total of the net balances.
func SumBalances(balances []MemberBalance) money.Cents {
	var total money.Cents
	for _, b := range balances {
		total += b.NetBalance
	}
	return total
}
