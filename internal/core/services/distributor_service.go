package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/referral_ledger/internal/apperrors"
	"github.com/SscSPs/referral_ledger/internal/core/domain"
	"github.com/SscSPs/referral_ledger/internal/core/policy"
	portsrepo "github.com/SscSPs/referral_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/referral_ledger/internal/core/ports/services"
	"github.com/SscSPs/referral_ledger/internal/platform/metrics"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Operation labels used in logs and metrics.
const (
	opUpgrade         = "upgrade"
	opBetLoss         = "bet_loss"
	opBetWin          = "bet_win"
	opRegistrationFee = "registration_fee"
)

const (
	defaultMaxAttempts    = 3
	defaultAttemptTimeout = 10 * time.Second
)

type distributorService struct {
	BaseService
	uow       portsrepo.UnitOfWork
	userRepo  portsrepo.UserReader
	levelRepo portsrepo.LevelReader
	referrals portssvc.ReferralSvc

	maxAttempts     int
	attemptTimeout  time.Duration
	registrationFee decimal.Decimal
	now             func() time.Time
}

// DistributorOption is a functional option for configuring the distributor
type DistributorOption func(*distributorService)

// WithMaxAttempts bounds how often a unit is run when it keeps hitting concurrency conflicts.
func WithMaxAttempts(n int) DistributorOption {
	return func(s *distributorService) {
		if n > 0 {
			s.maxAttempts = n
		}
	}
}

// WithAttemptTimeout sets the deadline of a single attempt.
func WithAttemptTimeout(d time.Duration) DistributorOption {
	return func(s *distributorService) {
		if d > 0 {
			s.attemptTimeout = d
		}
	}
}

// WithRegistrationFee sets the amount ChargeRegistrationFee moves.
func WithRegistrationFee(fee decimal.Decimal) DistributorOption {
	return func(s *distributorService) {
		s.registrationFee = fee
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) DistributorOption {
	return func(s *distributorService) {
		s.now = now
	}
}

// NewDistributorService creates the distributor with the provided options
func NewDistributorService(
	uow portsrepo.UnitOfWork,
	userRepo portsrepo.UserReader,
	levelRepo portsrepo.LevelReader,
	referrals portssvc.ReferralSvc,
	options ...DistributorOption,
) portssvc.DistributorSvc {
	svc := &distributorService{
		uow:             uow,
		userRepo:        userRepo,
		levelRepo:       levelRepo,
		referrals:       referrals,
		maxAttempts:     defaultMaxAttempts,
		attemptTimeout:  defaultAttemptTimeout,
		registrationFee: decimal.RequireFromString("10.00"),
		now:             func() time.Time { return time.Now().UTC() },
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

var _ portssvc.DistributorSvc = (*distributorService)(nil)

func (s *distributorService) ApplyUpgrade(ctx context.Context, userID string, levelNumber int) (*domain.DistributionResult, error) {
	started := time.Now()
	level, err := s.levelRepo.FindLevel(ctx, levelNumber)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			err = fmt.Errorf("%w: level %d is not in the catalog", apperrors.ErrInvalidLevel, levelNumber)
		}
		return nil, s.finish(ctx, opUpgrade, started, err)
	}
	plan, err := s.prepare(ctx, userID, policy.LevelUpgrade{}, level.Price)
	if err != nil {
		return nil, s.finish(ctx, opUpgrade, started, err)
	}

	var result *domain.DistributionResult
	err = s.runUnit(ctx, opUpgrade, func(ctx context.Context, tx portsrepo.TxRepositories) error {
		now := s.now()
		store, err := lockAccountStore(ctx, tx.Accounts(), append([]string{userID}, plan.Recipients()...)...)
		if err != nil {
			return err
		}
		if err := store.Debit(userID, level.Price); err != nil {
			return err
		}
		purchase := ledgerRow(userID, level.Price, domain.KindWithdrawal, domain.StatusCompleted,
			fmt.Sprintf("Level %d (%s) upgrade", level.Level, level.Name), now)
		if err := tx.Levels().AssignUserLevel(ctx, userID, level.Level, now); err != nil {
			return err
		}
		if err := s.applyPlan(ctx, tx, store, userID, plan, []domain.Transaction{purchase}, now); err != nil {
			return err
		}
		result = &domain.DistributionResult{
			EventID:    purchase.TransactionID,
			Principal:  userID,
			Debited:    level.Price,
			Credited:   decimal.Zero,
			NewBalance: store.Balance(userID),
			Plan:       plan,
		}
		return nil
	})
	if err != nil {
		return nil, s.finish(ctx, opUpgrade, started, err)
	}

	metrics.AddAmount(metrics.UnassignedAmount.WithLabelValues(opUpgrade), plan.Unassigned)
	s.LogInfo(ctx, "Level upgrade applied",
		slog.String("user_id", userID),
		slog.Int("level", level.Level),
		slog.String("price", level.Price.String()),
		slog.Int("recipients", len(plan.Shares)),
		slog.String("unassigned", plan.Unassigned.String()))
	return result, s.finish(ctx, opUpgrade, started, nil, plan.Shares...)
}

func (s *distributorService) ApplyBetLoss(ctx context.Context, userID string, amount decimal.Decimal) (*domain.DistributionResult, error) {
	started := time.Now()
	plan, err := s.prepare(ctx, userID, policy.BetLoss{}, amount)
	if err != nil {
		return nil, s.finish(ctx, opBetLoss, started, err)
	}

	var result *domain.DistributionResult
	err = s.runUnit(ctx, opBetLoss, func(ctx context.Context, tx portsrepo.TxRepositories) error {
		now := s.now()
		store, err := lockAccountStore(ctx, tx.Accounts(), append([]string{userID}, plan.Recipients()...)...)
		if err != nil {
			return err
		}
		if err := store.Debit(userID, amount); err != nil {
			return err
		}
		loss := ledgerRow(userID, amount, domain.KindBetLoss, domain.StatusCompleted, "Bet loss", now)
		if err := s.applyPlan(ctx, tx, store, userID, plan, []domain.Transaction{loss}, now); err != nil {
			return err
		}
		result = &domain.DistributionResult{
			EventID:    loss.TransactionID,
			Principal:  userID,
			Debited:    amount,
			Credited:   decimal.Zero,
			NewBalance: store.Balance(userID),
			Plan:       plan,
		}
		return nil
	})
	if err != nil {
		return nil, s.finish(ctx, opBetLoss, started, err)
	}

	s.LogInfo(ctx, "Bet loss distributed",
		slog.String("user_id", userID),
		slog.String("amount", amount.String()),
		slog.Int("shares", len(plan.Shares)))
	return result, s.finish(ctx, opBetLoss, started, nil, plan.Shares...)
}

func (s *distributorService) ApplyBetWin(ctx context.Context, userID string, stake, payout decimal.Decimal) (*domain.DistributionResult, error) {
	started := time.Now()
	if err := policy.ValidateAmount(stake); err != nil {
		return nil, s.finish(ctx, opBetWin, started, fmt.Errorf("stake: %w", err))
	}
	if err := policy.ValidateAmount(payout); err != nil {
		return nil, s.finish(ctx, opBetWin, started, fmt.Errorf("payout: %w", err))
	}
	if err := s.checkCanTransact(ctx, userID); err != nil {
		return nil, s.finish(ctx, opBetWin, started, err)
	}

	var result *domain.DistributionResult
	err := s.runUnit(ctx, opBetWin, func(ctx context.Context, tx portsrepo.TxRepositories) error {
		now := s.now()
		store, err := lockAccountStore(ctx, tx.Accounts(), userID)
		if err != nil {
			return err
		}
		if err := store.Debit(userID, stake); err != nil {
			return err
		}
		if err := store.Credit(userID, payout); err != nil {
			return err
		}
		win := ledgerRow(userID, payout, domain.KindBetWin, domain.StatusCompleted,
			fmt.Sprintf("Bet win: stake %s, payout %s", stake.String(), payout.String()), now)
		if err := store.Flush(ctx, now); err != nil {
			return err
		}
		if err := tx.Transactions().SaveTransactions(ctx, []domain.Transaction{win}); err != nil {
			return err
		}
		result = &domain.DistributionResult{
			EventID:    win.TransactionID,
			Principal:  userID,
			Debited:    stake,
			Credited:   payout,
			NewBalance: store.Balance(userID),
			Plan:       domain.Plan{Amount: decimal.Zero, Unassigned: decimal.Zero},
		}
		return nil
	})
	if err != nil {
		return nil, s.finish(ctx, opBetWin, started, err)
	}

	s.LogInfo(ctx, "Bet win settled", slog.String("user_id", userID), slog.String("stake", stake.String()), slog.String("payout", payout.String()))
	return result, s.finish(ctx, opBetWin, started, nil)
}

func (s *distributorService) ChargeRegistrationFee(ctx context.Context, userID string) (*domain.DistributionResult, error) {
	started := time.Now()
	fee := s.registrationFee
	if err := s.checkCanTransact(ctx, userID); err != nil {
		return nil, s.finish(ctx, opRegistrationFee, started, err)
	}
	if !fee.IsPositive() {
		return nil, s.finish(ctx, opRegistrationFee, started, fmt.Errorf("%w: no registration fee is configured", apperrors.ErrValidation))
	}

	reserve := domain.ReserveFund.Principal()
	share := domain.Share{Recipient: reserve, Amount: fee, Role: domain.RoleReserveFund}
	plan := domain.Plan{Amount: fee, Shares: []domain.Share{share}, Unassigned: decimal.Zero}

	var result *domain.DistributionResult
	err := s.runUnit(ctx, opRegistrationFee, func(ctx context.Context, tx portsrepo.TxRepositories) error {
		now := s.now()
		store, err := lockAccountStore(ctx, tx.Accounts(), userID, reserve)
		if err != nil {
			return err
		}
		if err := store.Debit(userID, fee); err != nil {
			return err
		}
		charge := ledgerRow(userID, fee, domain.KindRegistrationFee, domain.StatusCompleted, "Registration fee", now)
		if err := s.applyPlan(ctx, tx, store, userID, plan, []domain.Transaction{charge}, now); err != nil {
			return err
		}
		result = &domain.DistributionResult{
			EventID:    charge.TransactionID,
			Principal:  userID,
			Debited:    fee,
			Credited:   decimal.Zero,
			NewBalance: store.Balance(userID),
			Plan:       plan,
		}
		return nil
	})
	if err != nil {
		return nil, s.finish(ctx, opRegistrationFee, started, err)
	}

	s.LogInfo(ctx, "Registration fee charged", slog.String("user_id", userID), slog.String("fee", fee.String()))
	return result, s.finish(ctx, opRegistrationFee, started, nil, share)
}

// prepare runs everything that needs no lock: the gate, the upline walk and the plan.
func (s *distributorService) prepare(ctx context.Context, userID string, p policy.Policy, amount decimal.Decimal) (domain.Plan, error) {
	if err := policy.ValidateAmount(amount); err != nil {
		return domain.Plan{}, err
	}
	if err := s.checkCanTransact(ctx, userID); err != nil {
		return domain.Plan{}, err
	}
	upline, err := s.referrals.Upline(ctx, userID, policy.MaxUplineDepth)
	if err != nil {
		return domain.Plan{}, err
	}
	return p.Plan(amount, upline)
}

func (s *distributorService) checkCanTransact(ctx context.Context, userID string) error {
	if userID == "" || domain.IsSystemPrincipal(userID) {
		return fmt.Errorf("%w: principal '%s' cannot transact", apperrors.ErrValidation, userID)
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

// applyPlan credits every share, then writes the balances, the ledger rows and the
// earnings records of the unit.
func (s *distributorService) applyPlan(
	ctx context.Context,
	tx portsrepo.TxRepositories,
	store *accountStore,
	payer string,
	plan domain.Plan,
	rows []domain.Transaction,
	now time.Time,
) error {
	commissions := make([]domain.Commission, 0, len(plan.Shares))
	for _, share := range plan.Shares {
		if err := store.Credit(share.Recipient, share.Amount); err != nil {
			return err
		}
		row := ledgerRow(share.Recipient, share.Amount, domain.KindCommission, domain.StatusCompleted, commissionDescription(plan.Kind, payer, share), now)
		role := share.Role
		row.Counterparty = &payer
		row.Role = &role
		if share.Depth > 0 {
			depth := share.Depth
			row.Depth = &depth
		}
		rows = append(rows, row)
		commissions = append(commissions, domain.Commission{
			CommissionID:  uuid.NewString(),
			Recipient:     share.Recipient,
			SourceUser:    payer,
			Amount:        share.Amount,
			Role:          share.Role,
			Depth:         share.Depth,
			TransactionID: row.TransactionID,
			CreatedAt:     now,
		})
	}

	if err := store.Flush(ctx, now); err != nil {
		return err
	}
	if err := tx.Transactions().SaveTransactions(ctx, rows); err != nil {
		return err
	}
	if len(commissions) == 0 {
		return nil
	}
	return tx.Commissions().SaveCommissions(ctx, commissions)
}

func commissionDescription(kind domain.EventKind, payer string, share domain.Share) string {
	var event string
	switch kind {
	case domain.EventLevelUpgrade:
		event = "level upgrade"
	case domain.EventBetLoss:
		event = "bet loss"
	default:
		event = "registration fee"
	}
	switch share.Role {
	case domain.RoleSalaryFund:
		return fmt.Sprintf("Salary fund share of %s's %s", payer, event)
	case domain.RoleReserveFund:
		return fmt.Sprintf("Reserve fund share of %s's %s", payer, event)
	default:
		return fmt.Sprintf("Level %d commission from %s's %s", share.Depth, payer, event)
	}
}

// runUnit runs fn as a unit of work, rerunning the whole unit on a concurrency conflict.
// Each attempt gets its own deadline.
func (s *distributorService) runUnit(ctx context.Context, operation string, fn func(ctx context.Context, tx portsrepo.TxRepositories) error) error {
	var err error
	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		attemptCtx, cancel := context.WithTimeout(ctx, s.attemptTimeout)
		err = s.uow.WithinTx(attemptCtx, fn)
		cancel()
		if err == nil || !apperrors.IsRetryable(err) || ctx.Err() != nil {
			return err
		}
		if attempt < s.maxAttempts {
			metrics.Retries.WithLabelValues(operation).Inc()
			s.LogDebug(ctx, "Unit of work conflicted, retrying",
				slog.String("operation", operation), slog.Int("attempt", attempt), slog.String("error", err.Error()))
		}
	}
	return err
}

// finish records the outcome of an operation and returns err unchanged.
func (s *distributorService) finish(ctx context.Context, operation string, started time.Time, err error, shares ...domain.Share) error {
	metrics.Duration.WithLabelValues(operation).Observe(time.Since(started).Seconds())

	outcome := metrics.OutcomeSuccess
	switch {
	case err == nil:
		for _, share := range shares {
			metrics.AddAmount(metrics.DistributedAmount.WithLabelValues(operation, string(share.Role)), share.Amount)
		}
	case errors.Is(err, apperrors.ErrValidation), errors.Is(err, apperrors.ErrInsufficientFunds), errors.Is(err, apperrors.ErrNotFound):
		outcome = metrics.OutcomeRejected
		s.LogDebug(ctx, "Distributor operation rejected", slog.String("operation", operation), slog.String("error", err.Error()))
	case apperrors.IsRetryable(err):
		outcome = metrics.OutcomeConflict
		s.LogError(ctx, err, "Distributor operation gave up after concurrency conflicts", slog.String("operation", operation))
	default:
		outcome = metrics.OutcomeFailed
		s.LogError(ctx, err, "Distributor operation failed", slog.String("operation", operation))
	}
	metrics.Distributions.WithLabelValues(operation, outcome).Inc()
	return err
}
