package handlers_test

import (
	"context"

	"github.com/SscSPs/referral_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/referral_ledger/internal/core/ports/services"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// --- Mock DistributorService ---
type MockDistributorService struct {
	mock.Mock
}

func (m *MockDistributorService) ApplyUpgrade(ctx context.Context, userID string, level int) (*domain.DistributionResult, error) {
	args := m.Called(ctx, userID, level)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DistributionResult), args.Error(1)
}
func (m *MockDistributorService) ApplyBetLoss(ctx context.Context, userID string, amount decimal.Decimal) (*domain.DistributionResult, error) {
	args := m.Called(ctx, userID, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DistributionResult), args.Error(1)
}
func (m *MockDistributorService) ApplyBetWin(ctx context.Context, userID string, stake, payout decimal.Decimal) (*domain.DistributionResult, error) {
	args := m.Called(ctx, userID, stake, payout)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DistributionResult), args.Error(1)
}
func (m *MockDistributorService) ChargeRegistrationFee(ctx context.Context, userID string) (*domain.DistributionResult, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DistributionResult), args.Error(1)
}

var _ portssvc.DistributorSvc = (*MockDistributorService)(nil)

// --- Mock LedgerService ---
type MockLedgerService struct {
	mock.Mock
}

func (m *MockLedgerService) GetBalance(ctx context.Context, principal string) (decimal.Decimal, error) {
	args := m.Called(ctx, principal)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}
func (m *MockLedgerService) GetTransaction(ctx context.Context, principal string, transactionID string) (*domain.Transaction, error) {
	args := m.Called(ctx, principal, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}
func (m *MockLedgerService) ListTransactions(ctx context.Context, principal string, limit int, nextToken *string) ([]domain.Transaction, *string, error) {
	args := m.Called(ctx, principal, limit, nextToken)
	var next *string
	if n := args.Get(1); n != nil {
		next = n.(*string)
	}
	if args.Get(0) == nil {
		return nil, next, args.Error(2)
	}
	return args.Get(0).([]domain.Transaction), next, args.Error(2)
}
func (m *MockLedgerService) ListCommissions(ctx context.Context, principal string, limit int) ([]domain.Commission, error) {
	args := m.Called(ctx, principal, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Commission), args.Error(1)
}

var _ portssvc.LedgerSvc = (*MockLedgerService)(nil)

// --- Mock RequestService ---
type MockRequestService struct {
	mock.Mock
}

func (m *MockRequestService) transaction(args mock.Arguments) (*domain.Transaction, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}
func (m *MockRequestService) RequestDeposit(ctx context.Context, userID string, amount decimal.Decimal, description string) (*domain.Transaction, error) {
	return m.transaction(m.Called(ctx, userID, amount, description))
}
func (m *MockRequestService) RequestWithdrawal(ctx context.Context, userID string, amount decimal.Decimal, description string) (*domain.Transaction, error) {
	return m.transaction(m.Called(ctx, userID, amount, description))
}
func (m *MockRequestService) Approve(ctx context.Context, transactionID string, reviewer string) (*domain.Transaction, error) {
	return m.transaction(m.Called(ctx, transactionID, reviewer))
}
func (m *MockRequestService) Reject(ctx context.Context, transactionID string, reviewer string) (*domain.Transaction, error) {
	return m.transaction(m.Called(ctx, transactionID, reviewer))
}
func (m *MockRequestService) ListPending(ctx context.Context, limit int) ([]domain.Transaction, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Transaction), args.Error(1)
}

var _ portssvc.RequestSvcFacade = (*MockRequestService)(nil)

// --- Mock ReferralService ---
type MockReferralService struct {
	mock.Mock
}

func (m *MockReferralService) Upline(ctx context.Context, userID string, maxDepth int) ([]string, error) {
	args := m.Called(ctx, userID, maxDepth)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}
func (m *MockReferralService) Downline(ctx context.Context, userID string, maxDepth int) (*domain.ReferralNode, error) {
	args := m.Called(ctx, userID, maxDepth)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ReferralNode), args.Error(1)
}

var _ portssvc.ReferralSvc = (*MockReferralService)(nil)

// --- Mock LevelService ---
type MockLevelService struct {
	mock.Mock
}

func (m *MockLevelService) ListLevels(ctx context.Context) ([]domain.Level, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Level), args.Error(1)
}
func (m *MockLevelService) GetLevel(ctx context.Context, level int) (*domain.Level, error) {
	args := m.Called(ctx, level)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Level), args.Error(1)
}
func (m *MockLevelService) GetUserLevel(ctx context.Context, userID string) (*domain.UserLevel, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.UserLevel), args.Error(1)
}
func (m *MockLevelService) SeedLevels(ctx context.Context, levels []domain.Level) error {
	return m.Called(ctx, levels).Error(0)
}

var _ portssvc.LevelSvcFacade = (*MockLevelService)(nil)

// --- Mock ReportingService ---
type MockReportingService struct {
	mock.Mock
}

func (m *MockReportingService) Dashboard(ctx context.Context, userID string) (*domain.DashboardStats, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DashboardStats), args.Error(1)
}

var _ portssvc.ReportingSvc = (*MockReportingService)(nil)

// --- Mock UserService ---
type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) GetUserByID(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}
func (m *MockUserService) UpsertUser(ctx context.Context, userID string, referrerID *string, canTransact bool) (*domain.User, error) {
	args := m.Called(ctx, userID, referrerID, canTransact)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

var _ portssvc.UserSvcFacade = (*MockUserService)(nil)

// --- Mock FundService ---
type MockFundService struct {
	mock.Mock
}

func (m *MockFundService) GetFund(ctx context.Context, name string) (*domain.Account, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}
func (m *MockFundService) ListFunds(ctx context.Context) ([]domain.Account, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Account), args.Error(1)
}

var _ portssvc.FundSvc = (*MockFundService)(nil)
