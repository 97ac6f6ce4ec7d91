package calculator

import (
	"github.com/shopspring/decimal"

	"github.com/mmynk/settleup/internal/money"
)

// DistributeCents splits total evenly among participantCount people.
//
// Every participant receives total/participantCount cents and the first
// total%participantCount participants, in input order, receive one extra
// cent. The result always sums to total and no two shares differ by more
// than one cent. A participantCount of zero yields an empty slice; callers
// must not create splits in that case.
func DistributeCents(total money.Cents, participantCount int) ([]money.Cents, error) {
	if participantCount < 0 {
		return nil, invalidInput("participant count %d is negative", participantCount)
	}
	if total < 0 {
		return nil, invalidInput("total %s is negative", total)
	}
	if participantCount == 0 {
		return []money.Cents{}, nil
	}

	n := money.Cents(participantCount)
	base := total / n
	remainder := int(total % n)

	shares := make([]money.Cents, participantCount)
	for i := range shares {
		shares[i] = base
		if i < remainder {
			shares[i]++
		}
	}

	if sum := money.Sum(shares); sum != total {
		return nil, &RoundingViolationError{Total: total, Sum: sum}
	}
	return shares, nil
}

// Distribute is DistributeCents for decimal amounts. The total is rounded
// to the nearest cent before splitting.
func Distribute(total decimal.Decimal, participantCount int) ([]decimal.Decimal, error) {
	cents, err := money.FromDecimal(total)
	if err != nil {
		return nil, invalidInput("total %s: %v", total.String(), err)
	}

	shares, err := DistributeCents(cents, participantCount)
	if err != nil {
		return nil, err
	}

	out := make([]decimal.Decimal, len(shares))
	for i, s := range shares {
		out[i] = s.Decimal()
	}
	return out, nil
}

// DistributeFloat is DistributeCents for float amounts. Non-finite totals
// are rejected and finite ones are rounded to the nearest cent.
func DistributeFloat(total float64, participantCount int) ([]float64, error) {
	cents, err := money.FromFloat(total)
	if err != nil {
		return nil, invalidInput("total %v: %v", total, err)
	}

	shares, err := DistributeCents(cents, participantCount)
	if err != nil {
		return nil, err
	}

	out := make([]float64, len(shares))
	for i, s := range shares {
		out[i] = s.Float64()
	}
	return out, nil
}

// ValidateSplits checks that an expense's splits account for its amount
// exactly and that no split is negative.
func ValidateSplits(amount money.Cents, splits []money.Cents) error {
	if amount < 0 {
		return invalidInput("amount %s is negative", amount)
	}
	if len(splits) == 0 {
		return invalidInput("expense has no splits")
	}
	for i, s := range splits {
		if s < 0 {
			return invalidInput("split %d is negative (%s)", i, s)
		}
	}
	if sum := money.Sum(splits); sum != amount {
		return invalidInput("splits sum to %s, expense amount is %s", sum, amount)
	}
	return nil
}
