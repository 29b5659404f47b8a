package approval

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// NullBudgetPolicy decides how a project with no configured budget ceiling is
// treated by the evaluator. The reviewed screens disagreed on this, so it is
// an explicit configuration choice rather than a hardcoded behavior.
type NullBudgetPolicy string

const (
	// NullBudgetUnlimited treats a missing ceiling as "no limit enforced";
	// approval never rejects on budget grounds. This is the default.
	NullBudgetUnlimited NullBudgetPolicy = "unlimited"
	// NullBudgetZero treats a missing ceiling as zero spending capacity; any
	// positive order amount is rejected.
	NullBudgetZero NullBudgetPolicy = "zero"
)

// ParsePolicy validates a configured policy string.
func ParsePolicy(s string) (NullBudgetPolicy, error) {
	switch NullBudgetPolicy(s) {
	case NullBudgetUnlimited, NullBudgetZero:
		return NullBudgetPolicy(s), nil
	case "":
		return NullBudgetUnlimited, nil
	}
	return "", fmt.Errorf("unsupported null budget policy: %s", s)
}

// budgetSummary is the evaluator's picture of project spend after approval.
// Ceiling and Remaining are invalid when the project is unconstrained.
type budgetSummary struct {
	Ceiling   decimal.NullDecimal
	Projected decimal.Decimal
	Remaining decimal.NullDecimal
}

// evaluateBudget decides whether adding poAmount to the already-approved
// total passes the project's ceiling. It performs no I/O; the caller supplies
// the ledger numbers.
func evaluateBudget(policy NullBudgetPolicy, ceiling decimal.NullDecimal, approvedTotal, poAmount decimal.Decimal) (budgetSummary, error) {
	projected := approvedTotal.Add(poAmount)

	if !ceiling.Valid {
		if policy == NullBudgetUnlimited {
			return budgetSummary{Projected: projected}, nil
		}
		ceiling = decimal.NewNullDecimal(decimal.Zero)
	}

	if projected.GreaterThan(ceiling.Decimal) {
		return budgetSummary{}, &BudgetExceededError{
			ProjectBudget:        ceiling.Decimal,
			CurrentApprovedTotal: approvedTotal,
			POAmount:             poAmount,
			OverBy:               projected.Sub(ceiling.Decimal),
		}
	}

	return budgetSummary{
		Ceiling:   ceiling,
		Projected: projected,
		Remaining: decimal.NewNullDecimal(ceiling.Decimal.Sub(projected)),
	}, nil
}
