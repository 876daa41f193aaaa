package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/referral_ledger/internal/apperrors"
	"github.com/SscSPs/referral_ledger/internal/core/domain"
	"github.com/SscSPs/referral_ledger/internal/core/policy"
	portsrepo "github.com/SscSPs/referral_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/referral_ledger/internal/core/ports/services"
	"github.com/SscSPs/referral_ledger/internal/platform/metrics"
	"github.com/shopspring/decimal"
)

// requestService handles the deposit and withdrawal request lifecycle:
// PENDING -> COMPLETED | REJECTED, exactly once.
type requestService struct {
	BaseService
	uow             portsrepo.UnitOfWork
	userRepo        portsrepo.UserReader
	transactionRepo portsrepo.TransactionReader
	now             func() time.Time
}

// RequestOption is a functional option for configuring the request service
type RequestOption func(*requestService)

// WithRequestClock replaces time.Now.
func WithRequestClock(now func() time.Time) RequestOption {
	return func(s *requestService) {
		s.now = now
	}
}

// NewRequestService creates a RequestSvcFacade.
func NewRequestService(uow portsrepo.UnitOfWork, userRepo portsrepo.UserReader, transactionRepo portsrepo.TransactionReader, options ...RequestOption) portssvc.RequestSvcFacade {
	svc := &requestService{
		uow:             uow,
		userRepo:        userRepo,
		transactionRepo: transactionRepo,
		now:             func() time.Time { return time.Now().UTC() },
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

var _ portssvc.RequestSvcFacade = (*requestService)(nil)

func (s *requestService) RequestDeposit(ctx context.Context, userID string, amount decimal.Decimal, description string) (*domain.Transaction, error) {
	if err := s.validateRequest(ctx, userID, amount); err != nil {
		return nil, err
	}
	if description == "" {
		description = "Deposit request"
	}

	var row domain.Transaction
	err := s.uow.WithinTx(ctx, func(ctx context.Context, tx portsrepo.TxRepositories) error {
		// The lock creates the account the row belongs to.
		if _, err := lockAccountStore(ctx, tx.Accounts(), userID); err != nil {
			return err
		}
		row = ledgerRow(userID, amount, domain.KindDeposit, domain.StatusPending, description, s.now())
		return tx.Transactions().SaveTransactions(ctx, []domain.Transaction{row})
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to record deposit request", slog.String("user_id", userID))
		return nil, err
	}
	s.LogInfo(ctx, "Deposit requested", slog.String("user_id", userID), slog.String("transaction_id", row.TransactionID), slog.String("amount", amount.String()))
	return &row, nil
}

func (s *requestService) RequestWithdrawal(ctx context.Context, userID string, amount decimal.Decimal, description string) (*domain.Transaction, error) {
	if err := s.validateRequest(ctx, userID, amount); err != nil {
		return nil, err
	}
	if description == "" {
		description = "Withdrawal request"
	}

	var row domain.Transaction
	err := s.uow.WithinTx(ctx, func(ctx context.Context, tx portsrepo.TxRepositories) error {
		now := s.now()
		store, err := lockAccountStore(ctx, tx.Accounts(), userID)
		if err != nil {
			return err
		}
		if err := store.Debit(userID, amount); err != nil {
			return err
		}
		if err := store.Flush(ctx, now); err != nil {
			return err
		}
		row = ledgerRow(userID, amount, domain.KindWithdrawal, domain.StatusPending, description, now)
		return tx.Transactions().SaveTransactions(ctx, []domain.Transaction{row})
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to record withdrawal request", slog.String("user_id", userID))
		return nil, err
	}
	s.LogInfo(ctx, "Withdrawal requested", slog.String("user_id", userID), slog.String("transaction_id", row.TransactionID), slog.String("amount", amount.String()))
	return &row, nil
}

func (s *requestService) Approve(ctx context.Context, transactionID string, reviewer string) (*domain.Transaction, error) {
	return s.review(ctx, transactionID, reviewer, domain.StatusCompleted)
}

func (s *requestService) Reject(ctx context.Context, transactionID string, reviewer string) (*domain.Transaction, error) {
	return s.review(ctx, transactionID, reviewer, domain.StatusRejected)
}

func (s *requestService) ListPending(ctx context.Context, limit int) ([]domain.Transaction, error) {
	return s.transactionRepo.ListPendingTransactions(ctx, limit)
}

func (s *requestService) review(ctx context.Context, transactionID, reviewer string, to domain.TransactionStatus) (*domain.Transaction, error) {
	if reviewer == "" {
		return nil, fmt.Errorf("%w: reviewer is required", apperrors.ErrValidation)
	}

	var reviewed domain.Transaction
	err := s.uow.WithinTx(ctx, func(ctx context.Context, tx portsrepo.TxRepositories) error {
		now := s.now()
		txn, err := tx.Transactions().FindTransactionForUpdate(ctx, transactionID)
		if err != nil {
			return err
		}
		if err := txn.Review(to, reviewer, now); err != nil {
			return err
		}

		if effect := txn.BalanceEffect(to); effect.IsPositive() {
			store, err := lockAccountStore(ctx, tx.Accounts(), txn.Principal)
			if err != nil {
				return err
			}
			if err := store.Credit(txn.Principal, effect); err != nil {
				return err
			}
			if err := store.Flush(ctx, now); err != nil {
				return err
			}
		}
		if err := tx.Transactions().UpdateTransactionReview(ctx, *txn); err != nil {
			return err
		}
		reviewed = *txn
		return nil
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to review request", slog.String("transaction_id", transactionID), slog.String("to", string(to)))
		return nil, err
	}

	metrics.RequestReviews.WithLabelValues(string(reviewed.Kind), string(to)).Inc()
	s.LogInfo(ctx, "Request reviewed",
		slog.String("transaction_id", transactionID),
		slog.String("kind", string(reviewed.Kind)),
		slog.String("status", string(to)),
		slog.String("reviewer", reviewer))
	return &reviewed, nil
}

func (s *requestService) validateRequest(ctx context.Context, userID string, amount decimal.Decimal) error {
	if err := policy.ValidateAmount(amount); err != nil {
		return err
	}
	if userID == "" || domain.IsSystemPrincipal(userID) {
		return fmt.Errorf("%w: principal '%s' cannot open requests", apperrors.ErrValidation, userID)
	}
	user, err := s.userRepo.FindUserByID(ctx, userID)
	if err != nil {
		return err
	}
	if !user.CanTransact {
		return fmt.Errorf("%w: user %s", apperrors.ErrAccountInactive, userID)
	}
	return nil
}
