package policy_test

import (
	"fmt"
	"testing"

	"github.com/SscSPs/referral_ledger/internal/apperrors"
	"github.com/SscSPs/referral_ledger/internal/core/domain"
	"github.com/SscSPs/referral_ledger/internal/core/policy"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func sharesByRecipient(plan domain.Plan) map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal)
	for _, s := range plan.Shares {
		out[s.Recipient] = out[s.Recipient].Add(s.Amount)
	}
	return out
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...interface{}) {
	t.Helper()
	assert.True(t, dec(want).Equal(got), append([]interface{}{"want %s got %s", want, got.String()}, msgAndArgs...)...)
}

func TestBetLoss_SixDeepChain(t *testing.T) {
	// U6 is the bettor; nearest ancestor first.
	upline := []string{"U5", "U4", "U3", "U2", "U1"}

	plan, err := policy.BetLoss{}.Plan(dec("10"), upline)
	require.NoError(t, err)

	got := sharesByRecipient(plan)
	assertDecimal(t, "1.10", got["U5"])
	assertDecimal(t, "0.90", got["U4"])
	assertDecimal(t, "0.20", got["U3"])
	assertDecimal(t, "0.15", got["U2"])
	assertDecimal(t, "0.15", got["U1"])
	assertDecimal(t, "1.00", got[domain.SalaryFund.Principal()])
	assertDecimal(t, "6.50", got[domain.ReserveFund.Principal()])
	assertDecimal(t, "10", plan.Distributed())
	assert.True(t, plan.Unassigned.IsZero())
}

func TestBetLoss_ShortChainOverflowsToReserve(t *testing.T) {
	plan, err := policy.BetLoss{}.Plan(dec("10"), []string{"A1", "A2"})
	require.NoError(t, err)

	got := sharesByRecipient(plan)
	assertDecimal(t, "1.10", got["A1"])
	assertDecimal(t, "0.90", got["A2"])
	assertDecimal(t, "1.00", got[domain.SalaryFund.Principal()])
	assertDecimal(t, "7.00", got[domain.ReserveFund.Principal()])
	assert.Len(t, plan.Shares, 4)
}

func TestBetLoss_Depths(t *testing.T) {
	plan, err := policy.BetLoss{}.Plan(dec("10"), []string{"A1", "A2", "A3"})
	require.NoError(t, err)

	for _, s := range plan.Shares {
		switch s.Role {
		case domain.RoleUpline:
			assert.Equal(t, fmt.Sprintf("A%d", s.Depth), s.Recipient)
		case domain.RoleSalaryFund, domain.RoleReserveFund:
			assert.Zero(t, s.Depth)
		default:
			t.Fatalf("unexpected role %s", s.Role)
		}
	}
}

func TestBetLoss_ConservesEveryAmountAndChainLength(t *testing.T) {
	amounts := []string{"0.01", "0.07", "1", "3.33", "10", "99.99", "123.45678", "1000000"}
	chain := []string{"A1", "A2", "A3", "A4", "A5"}

	for _, a := range amounts {
		for n := 0; n <= len(chain); n++ {
			t.Run(fmt.Sprintf("%s/%d", a, n), func(t *testing.T) {
				plan, err := policy.BetLoss{}.Plan(dec(a), chain[:n])
				require.NoError(t, err)
				assertDecimal(t, a, plan.Distributed())
				for _, s := range plan.Shares {
					assert.True(t, s.Amount.Equal(s.Amount.Truncate(8)), "share %s exceeds storage precision", s.Amount)
				}
			})
		}
	}
}

func TestLevelUpgrade_ShortChainLeavesRemainderUnassigned(t *testing.T) {
	plan, err := policy.LevelUpgrade{}.Plan(dec("100"), []string{"A1", "A2"})
	require.NoError(t, err)

	got := sharesByRecipient(plan)
	assertDecimal(t, "10.00", got["A1"])
	assertDecimal(t, "8.00", got["A2"])
	assert.Len(t, plan.Shares, 2)
	// Depths 3..5 at 5%, 3% and 2%.
	assertDecimal(t, "10.00", plan.Unassigned)
	assertDecimal(t, "28", plan.Distributed().Add(plan.Unassigned))

	for _, s := range plan.Shares {
		assert.Equal(t, domain.RoleUpline, s.Role)
		assert.NotEqual(t, domain.ReserveFund.Principal(), s.Recipient)
	}
}

func TestLevelUpgrade_FullChain(t *testing.T) {
	plan, err := policy.LevelUpgrade{}.Plan(dec("200"), []string{"A1", "A2", "A3", "A4", "A5", "A6"})
	require.NoError(t, err)

	require.Len(t, plan.Shares, 5)
	want := []string{"20", "16", "10", "6", "4"}
	for i, s := range plan.Shares {
		assertDecimal(t, want[i], s.Amount)
		assert.Equal(t, i+1, s.Depth)
	}
	assert.True(t, plan.Unassigned.IsZero())
}

func TestLevelUpgrade_NoUpline(t *testing.T) {
	plan, err := policy.LevelUpgrade{}.Plan(dec("100"), nil)
	require.NoError(t, err)
	assert.Empty(t, plan.Shares)
	assertDecimal(t, "28", plan.Unassigned)
}

func TestLevelUpgrade_UnassignedCoversOnlyMissingDepths(t *testing.T) {
	chain := []string{"A1", "A2", "A3", "A4", "A5"}
	wantUnassigned := []string{"28", "18", "10", "5", "2", "0"}

	for n := 0; n <= len(chain); n++ {
		plan, err := policy.LevelUpgrade{}.Plan(dec("100"), chain[:n])
		require.NoError(t, err)
		assertDecimal(t, wantUnassigned[n], plan.Unassigned, "upline of %d", n)
		assertDecimal(t, "28", plan.Distributed().Add(plan.Unassigned), "upline of %d", n)
	}
}

func TestPolicies_RejectInvalidAmounts(t *testing.T) {
	for _, p := range []policy.Policy{policy.BetLoss{}, policy.LevelUpgrade{}} {
		for _, a := range []string{"0", "-1", "0.000001"} {
			_, err := p.Plan(dec(a), nil)
			assert.ErrorIs(t, err, apperrors.ErrInvalidAmount, "%s amount %s", p.Kind(), a)
			assert.ErrorIs(t, err, apperrors.ErrValidation)
		}
	}
}

func TestForEvent(t *testing.T) {
	p, err := policy.ForEvent(domain.EventBetLoss)
	require.NoError(t, err)
	assert.Equal(t, domain.EventBetLoss, p.Kind())

	p, err = policy.ForEvent(domain.EventLevelUpgrade)
	require.NoError(t, err)
	assert.Equal(t, domain.EventLevelUpgrade, p.Kind())

	_, err = policy.ForEvent("JACKPOT")
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}
