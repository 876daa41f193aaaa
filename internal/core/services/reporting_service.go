package services

import (
	"context"
	"errors"

	"github.com/SscSPs/referral_ledger/internal/apperrors"
	"github.com/SscSPs/referral_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/referral_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/referral_ledger/internal/core/ports/services"
)

type reportingService struct {
	BaseService
	ledger          portssvc.LedgerSvc
	transactionRepo portsrepo.TransactionReader
	commissionRepo  portsrepo.CommissionReader
	levelRepo       portsrepo.LevelReader
	userRepo        portsrepo.UserReader
}

// NewReportingService creates a ReportingSvc.
func NewReportingService(
	ledger portssvc.LedgerSvc,
	transactionRepo portsrepo.TransactionReader,
	commissionRepo portsrepo.CommissionReader,
	levelRepo portsrepo.LevelReader,
	userRepo portsrepo.UserReader,
) portssvc.ReportingSvc {
	return &reportingService{
		ledger:          ledger,
		transactionRepo: transactionRepo,
		commissionRepo:  commissionRepo,
		levelRepo:       levelRepo,
		userRepo:        userRepo,
	}
}

var _ portssvc.ReportingSvc = (*reportingService)(nil)

// Dashboard reports completed deposits and withdrawals only. Total investment is the price
// of the level currently owned, not the sum of every purchase.
func (s *reportingService) Dashboard(ctx context.Context, userID string) (*domain.DashboardStats, error) {
	if _, err := s.userRepo.FindUserByID(ctx, userID); err != nil {
		return nil, err
	}

	var stats domain.DashboardStats
	var err error
	if stats.Balance, err = s.ledger.GetBalance(ctx, userID); err != nil {
		return nil, err
	}
	if stats.TotalEarnings, err = s.commissionRepo.SumCommissionsByRecipient(ctx, userID); err != nil {
		return nil, err
	}
	if stats.TotalDeposit, err = s.transactionRepo.SumTransactions(ctx, userID, domain.KindDeposit, domain.StatusCompleted); err != nil {
		return nil, err
	}
	if stats.TotalWithdrawal, err = s.transactionRepo.SumTransactions(ctx, userID, domain.KindWithdrawal, domain.StatusCompleted); err != nil {
		return nil, err
	}

	ul, err := s.levelRepo.FindUserLevel(ctx, userID)
	switch {
	case err == nil:
		stats.CurrentLevel = ul.Level
		level, err := s.levelRepo.FindLevel(ctx, ul.Level)
		if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
			return nil, err
		}
		if level != nil {
			stats.TotalInvestment = level.Price
		}
	case !errors.Is(err, apperrors.ErrNotFound):
		return nil, err
	}

	referrals, err := s.userRepo.ListReferrals(ctx, userID)
	if err != nil {
		return nil, err
	}
	stats.DirectUsers = len(referrals)
	return &stats, nil
}
