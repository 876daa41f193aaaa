package services

import (
	"context"

	"github.com/SscSPs/referral_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// RequestWriterSvc opens deposit and withdrawal requests
type RequestWriterSvc interface {
	// RequestDeposit records a PENDING deposit. The balance changes only on approval.
	RequestDeposit(ctx context.Context, userID string, amount decimal.Decimal, description string) (*domain.Transaction, error)

	// RequestWithdrawal debits the amount immediately and records a PENDING withdrawal.
	RequestWithdrawal(ctx context.Context, userID string, amount decimal.Decimal, description string) (*domain.Transaction, error)
}

// RequestReviewerSvc moves pending requests to a terminal status
type RequestReviewerSvc interface {
	// Approve completes a request. A second review fails with apperrors.ErrAlreadyProcessed.
	Approve(ctx context.Context, transactionID string, reviewer string) (*domain.Transaction, error)

	// Reject rejects a request, refunding withdrawals.
	Reject(ctx context.Context, transactionID string, reviewer string) (*domain.Transaction, error)

	// ListPending returns open requests, oldest first.
	ListPending(ctx context.Context, limit int) ([]domain.Transaction, error)
}

// RequestSvcFacade combines all request operations
type RequestSvcFacade interface {
	RequestWriterSvc
	RequestReviewerSvc
}
