// Package policy holds the commission strategies. Each strategy is a pure function of an
// amount and an upline and returns a distribution plan; it never touches storage.
package policy

import (
	"errors"
	"fmt"

	"github.com/SscSPs/referral_ledger/internal/apperrors"
	"github.com/SscSPs/referral_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// MaxUplineDepth is the number of ancestors that can receive a commission.
const MaxUplineDepth = 5

// MaxAmountScale bounds the decimal places of a distributable amount. With the three-place
// percent tables every share then fits the eight-place storage precision exactly.
const MaxAmountScale = 5

// ErrPlanNotConserved indicates that a plan's shares and unassigned remainder do not add up
// to the commission pool.
var ErrPlanNotConserved = errors.New("distribution plan does not conserve amount")

// Policy turns an amount and an upline (nearest ancestor first) into a plan.
type Policy interface {
	Kind() domain.EventKind
	Plan(amount decimal.Decimal, upline []string) (domain.Plan, error)
}

// ForEvent returns the policy for an event kind.
func ForEvent(kind domain.EventKind) (Policy, error) {
	switch kind {
	case domain.EventLevelUpgrade:
		return LevelUpgrade{}, nil
	case domain.EventBetLoss:
		return BetLoss{}, nil
	default:
		return nil, fmt.Errorf("%w: unknown event kind '%s'", apperrors.ErrValidation, kind)
	}
}

// ValidateAmount rejects non-positive amounts and amounts finer than MaxAmountScale.
func ValidateAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return fmt.Errorf("%w: amount must be positive, got %s", apperrors.ErrInvalidAmount, amount.String())
	}
	if !amount.Equal(amount.Truncate(MaxAmountScale)) {
		return fmt.Errorf("%w: amount %s has more than %d decimal places", apperrors.ErrInvalidAmount, amount.String(), MaxAmountScale)
	}
	return nil
}

func rates(values ...string) []decimal.Decimal {
	out := make([]decimal.Decimal, len(values))
	for i, v := range values {
		out[i] = decimal.RequireFromString(v)
	}
	return out
}

func sum(ds ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, d := range ds {
		total = total.Add(d)
	}
	return total
}

func truncateUpline(upline []string) []string {
	if len(upline) > MaxUplineDepth {
		return upline[:MaxUplineDepth]
	}
	return upline
}

// checkConserved compares a plan against its pool: the whole amount for a bet loss, the sum
// of the depth rates times the price for an upgrade.
func checkConserved(plan domain.Plan, pool decimal.Decimal) error {
	if got := plan.Distributed().Add(plan.Unassigned); !got.Equal(pool) {
		return fmt.Errorf("%w: %s planned against %s", ErrPlanNotConserved, got.String(), pool.String())
	}
	return nil
}
