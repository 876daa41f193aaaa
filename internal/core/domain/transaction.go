package domain

import (
	"fmt"
	"time"

	"github.com/SscSPs/referral_ledger/internal/apperrors"
	"github.com/shopspring/decimal"
)

// TransactionKind is the business reason for a balance movement.
type TransactionKind string

const (
	KindDeposit         TransactionKind = "DEPOSIT"
	KindWithdrawal      TransactionKind = "WITHDRAWAL"
	KindCommission      TransactionKind = "COMMISSION"
	KindBetWin          TransactionKind = "BET_WIN"
	KindBetLoss         TransactionKind = "BET_LOSS"
	KindRegistrationFee TransactionKind = "REGISTRATION_FEE"
)

// TransactionStatus is the review state of a ledger row.
type TransactionStatus string

const (
	StatusPending   TransactionStatus = "PENDING"
	StatusCompleted TransactionStatus = "COMPLETED"
	StatusRejected  TransactionStatus = "REJECTED"
)

// IsTerminal reports whether no further transition is allowed.
func (s TransactionStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusRejected
}

// CommissionRole describes why a commission recipient was paid.
type CommissionRole string

const (
	RoleUpline      CommissionRole = "UPLINE"
	RoleSalaryFund  CommissionRole = "SALARY_FUND"
	RoleReserveFund CommissionRole = "RESERVE_FUND"
)

// Transaction is one ledger row. Amount is always positive; Kind implies direction.
type Transaction struct {
	TransactionID string            `json:"transactionID"`
	Principal     string            `json:"principal"` // Owning account
	Amount        decimal.Decimal   `json:"amount"`
	Kind          TransactionKind   `json:"kind"`
	Status        TransactionStatus `json:"status"`
	Description   string            `json:"description"`
	Counterparty  *string           `json:"counterparty,omitempty"` // Paying user for commissions
	Role          *CommissionRole   `json:"role,omitempty"`
	Depth         *int              `json:"depth,omitempty"` // Ancestor depth for upline commissions
	ReviewedBy    *string           `json:"reviewedBy,omitempty"`
	ReviewedAt    *time.Time        `json:"reviewedAt,omitempty"`
	CreatedAt     time.Time         `json:"createdAt"`
}

// IsReviewable reports whether the kind goes through the pending review flow.
func (k TransactionKind) IsReviewable() bool {
	return k == KindDeposit || k == KindWithdrawal
}

// Validate checks the invariants a newly created row must satisfy.
func (t *Transaction) Validate() error {
	if t.Principal == "" {
		return fmt.Errorf("%w: transaction principal is required", apperrors.ErrValidation)
	}
	if !t.Amount.IsPositive() {
		return fmt.Errorf("%w: transaction amount must be positive", apperrors.ErrInvalidAmount)
	}
	switch t.Kind {
	case KindDeposit:
		if t.Status != StatusPending {
			return fmt.Errorf("%w: %s must be created pending", apperrors.ErrValidation, t.Kind)
		}
	case KindWithdrawal:
		// Withdrawal requests start pending; level purchases are recorded as completed withdrawals.
		if t.Status != StatusPending && t.Status != StatusCompleted {
			return fmt.Errorf("%w: %s must be created pending or completed", apperrors.ErrValidation, t.Kind)
		}
	case KindCommission, KindBetWin, KindBetLoss, KindRegistrationFee:
		if t.Status != StatusCompleted {
			return fmt.Errorf("%w: %s must be created completed", apperrors.ErrValidation, t.Kind)
		}
	default:
		return fmt.Errorf("%w: unknown transaction kind '%s'", apperrors.ErrValidation, t.Kind)
	}
	return nil
}

// Review moves a pending request into a terminal status. It returns ErrAlreadyProcessed
// when the row is already terminal.
func (t *Transaction) Review(to TransactionStatus, reviewer string, at time.Time) error {
	if t.Status.IsTerminal() {
		return fmt.Errorf("%w: transaction %s is %s", apperrors.ErrAlreadyProcessed, t.TransactionID, t.Status)
	}
	if !t.Kind.IsReviewable() {
		return fmt.Errorf("%w: %s transactions are not reviewable", apperrors.ErrValidation, t.Kind)
	}
	if !to.IsTerminal() {
		return fmt.Errorf("%w: cannot transition to %s", apperrors.ErrValidation, to)
	}
	t.Status = to
	t.ReviewedBy = &reviewer
	t.ReviewedAt = &at
	return nil
}

// BalanceEffect returns the signed change a review decision applies to the owning account.
// Deposits are credited on approval; withdrawals were debited at request time and are
// refunded on rejection.
func (t *Transaction) BalanceEffect(to TransactionStatus) decimal.Decimal {
	switch {
	case t.Kind == KindDeposit && to == StatusCompleted:
		return t.Amount
	case t.Kind == KindWithdrawal && to == StatusRejected:
		return t.Amount
	default:
		return decimal.Zero
	}
}
