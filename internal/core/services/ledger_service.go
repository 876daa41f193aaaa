package services

import (
	"context"
	"errors"
	"time"

	"github.com/SscSPs/referral_ledger/internal/apperrors"
	"github.com/SscSPs/referral_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/referral_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/referral_ledger/internal/core/ports/services"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ledgerService struct {
	BaseService
	accountRepo     portsrepo.AccountReader
	transactionRepo portsrepo.TransactionReader
	commissionRepo  portsrepo.CommissionReader
}

// NewLedgerService creates a LedgerSvc.
func NewLedgerService(accountRepo portsrepo.AccountReader, transactionRepo portsrepo.TransactionReader, commissionRepo portsrepo.CommissionReader) portssvc.LedgerSvc {
	return &ledgerService{accountRepo: accountRepo, transactionRepo: transactionRepo, commissionRepo: commissionRepo}
}

var _ portssvc.LedgerSvc = (*ledgerService)(nil)

func (s *ledgerService) GetBalance(ctx context.Context, principal string) (decimal.Decimal, error) {
	acc, err := s.accountRepo.FindAccountByPrincipal(ctx, principal)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return decimal.Zero, nil
		}
		return decimal.Zero, err
	}
	return acc.Balance, nil
}

func (s *ledgerService) GetTransaction(ctx context.Context, principal string, transactionID string) (*domain.Transaction, error) {
	txn, err := s.transactionRepo.FindTransactionByID(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	// Rows of other principals are reported as missing.
	if txn.Principal != principal {
		return nil, apperrors.ErrNotFound
	}
	return txn, nil
}

func (s *ledgerService) ListTransactions(ctx context.Context, principal string, limit int, nextToken *string) ([]domain.Transaction, *string, error) {
	return s.transactionRepo.ListTransactionsByPrincipal(ctx, principal, limit, nextToken)
}

func (s *ledgerService) ListCommissions(ctx context.Context, principal string, limit int) ([]domain.Commission, error) {
	return s.commissionRepo.ListCommissionsByRecipient(ctx, principal, limit)
}

// ledgerRow builds a new row with a fresh ID.
func ledgerRow(principal string, amount decimal.Decimal, kind domain.TransactionKind, status domain.TransactionStatus, description string, now time.Time) domain.Transaction {
	return domain.Transaction{
		TransactionID: uuid.NewString(),
		Principal:     principal,
		Amount:        amount,
		Kind:          kind,
		Status:        status,
		Description:   description,
		CreatedAt:     now,
	}
}
