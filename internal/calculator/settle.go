package calculator

import (
	"container/heap"

	"github.com/mmynk/settleup/internal/money"
)

// SuspenseID is the member ID of the synthetic party used by
// SettleViaSuspense to absorb an imbalance.
const SuspenseID = "suspense"

// ImbalancePolicy decides what happens when balances do not net to zero.
type ImbalancePolicy int

const (
	// RejectImbalance fails with an *ImbalanceError.
	RejectImbalance ImbalancePolicy = iota

	// SettleViaSuspense adds a suspense party holding the negated sum and
	// settles everything to zero, reporting the imbalance on the plan.
	SettleViaSuspense
)

func (p ImbalancePolicy) String() string {
	switch p {
	case RejectImbalance:
		return "reject"
	case SettleViaSuspense:
		return "suspense"
	default:
		return "unknown"
	}
}

// SettleOptions tune MinimizeSettlements.
type SettleOptions struct {
	// Tolerance is the largest absolute sum of balances accepted as
	// rounding noise.
	Tolerance money.Cents
	Policy    ImbalancePolicy
}

// DefaultSettleOptions rejects imbalances larger than one cent.
func DefaultSettleOptions() SettleOptions {
	return SettleOptions{Tolerance: 1, Policy: RejectImbalance}
}

// Settlement is a proposed transfer from a debtor to a creditor.
type Settlement struct {
	FromID   string
	FromName string
	ToID     string
	ToName   string
	Amount   money.Cents
}

// Plan is the output of MinimizeSettlements.
type Plan struct {
	Settlements []Settlement

	// Imbalance is the sum of the input balances.
	Imbalance money.Cents

	// Residual is what remained unsettled because it was within tolerance.
	Residual money.Cents
}

// party is one side of the matching with its remaining absolute balance.
type party struct {
	id        string
	name      string
	remaining money.Cents
	index     int // input position, used as tie-break
}

// partyHeap is a max-heap on remaining, ties broken by lower input index.
type partyHeap []*party

func (h partyHeap) Len() int { return len(h) }
func (h partyHeap) Less(i, j int) bool {
	if h[i].remaining != h[j].remaining {
		return h[i].remaining > h[j].remaining
	}
	return h[i].index < h[j].index
}
func (h partyHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }
func (h *partyHeap) Push(x any)   { *h = append(*h, x.(*party)) }
func (h *partyHeap) Pop() any {
	old := *h
	n := len(old)
	p := old[n-1]
	*h = old[:n-1]
	return p
}

// MinimizeSettlements turns signed balances into a short list of transfers
// that brings every balance to zero.
//
// It is the greedy largest-magnitude heuristic for the minimum cash-flow
// problem: repeatedly match the largest remaining creditor with the largest
// remaining debtor and transfer the smaller of the two amounts. Each step
// zeroes at least one party, so at most creditors+debtors-1 settlements are
// produced. Equal magnitudes are matched in input order.
//
// Balances that do not sum to zero within opts.Tolerance are handled per
// opts.Policy. Within tolerance, whatever cannot be matched is left as
// Plan.Residual.
func MinimizeSettlements(balances []MemberBalance, opts SettleOptions) (Plan, error) {
	if opts.Tolerance < 0 {
		return Plan{}, invalidInput("tolerance %s is negative", opts.Tolerance)
	}

	sum := SumBalances(balances)
	plan := Plan{Imbalance: sum}

	entries := balances
	if sum.Abs() > opts.Tolerance {
		if opts.Policy != SettleViaSuspense {
			return plan, &ImbalanceError{Sum: sum, Tolerance: opts.Tolerance}
		}
		entries = make([]MemberBalance, len(balances), len(balances)+1)
		copy(entries, balances)
		entries = append(entries, MemberBalance{
			MemberID:   SuspenseID,
			MemberName: "Suspense",
			NetBalance: -sum,
		})
	}

	creditors := &partyHeap{}
	debtors := &partyHeap{}
	for i, b := range entries {
		switch {
		case b.NetBalance > 0:
			*creditors = append(*creditors, &party{id: b.MemberID, name: b.MemberName, remaining: b.NetBalance, index: i})
		case b.NetBalance < 0:
			*debtors = append(*debtors, &party{id: b.MemberID, name: b.MemberName, remaining: -b.NetBalance, index: i})
		}
	}
	heap.Init(creditors)
	heap.Init(debtors)

	for creditors.Len() > 0 && debtors.Len() > 0 {
		creditor := heap.Pop(creditors).(*party)
		debtor := heap.Pop(debtors).(*party)

		amount := money.Min(creditor.remaining, debtor.remaining)
		plan.Settlements = append(plan.Settlements, Settlement{
			FromID:   debtor.id,
			FromName: debtor.name,
			ToID:     creditor.id,
			ToName:   creditor.name,
			Amount:   amount,
		})

		creditor.remaining -= amount
		debtor.remaining -= amount
		if creditor.remaining > 0 {
			heap.Push(creditors, creditor)
		}
		if debtor.remaining > 0 {
			heap.Push(debtors, debtor)
		}
	}

	for _, p := range *creditors {
		plan.Residual += p.remaining
	}
	for _, p := range *debtors {
		plan.Residual -= p.remaining
	}

	return plan, nil
}
