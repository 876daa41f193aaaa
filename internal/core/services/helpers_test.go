package services_test

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/SscSPs/referral_ledger/internal/adapters/database/memory"
	"github.com/SscSPs/referral_ledger/internal/apperrors"
	"github.com/SscSPs/referral_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/referral_ledger/internal/core/ports/repositories"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// ledgerSuite wires services over a fresh in-memory store for every test.
type ledgerSuite struct {
	suite.Suite
	ctx   context.Context
	store *memory.Store
	repos portsrepo.RepositoryProvider
}

func (s *ledgerSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = memory.NewStore()
	s.repos = memory.NewRepositoryProvider(s.store)
}

func (s *ledgerSuite) addUser(userID string, referrerID string) {
	user := domain.User{UserID: userID, CanTransact: true, CreatedAt: time.Now()}
	if referrerID != "" {
		ref := referrerID
		user.ReferrerID = &ref
	}
	s.Require().NoError(s.store.SaveUser(s.ctx, user))
}

// addChain registers ids[0] <- ids[1] <- ... so every user is referred by the one before it.
func (s *ledgerSuite) addChain(ids ...string) {
	for i, id := range ids {
		referrer := ""
		if i > 0 {
			referrer = ids[i-1]
		}
		s.addUser(id, referrer)
	}
}

// fund sets a balance directly, without writing a ledger row.
func (s *ledgerSuite) fund(principal string, amount string) {
	s.Require().NoError(s.store.WithinTx(s.ctx, func(ctx context.Context, tx portsrepo.TxRepositories) error {
		if _, err := tx.Accounts().LockAccounts(ctx, []string{principal}); err != nil {
			return err
		}
		return tx.Accounts().UpdateBalances(ctx, map[string]decimal.Decimal{principal: dec(amount)}, time.Now())
	}))
}

func (s *ledgerSuite) seedLevels() {
	for _, l := range []domain.Level{
		{Level: 1, Name: "Starter", Price: dec("100"), CommissionPercent: dec("10")},
		{Level: 2, Name: "Bronze", Price: dec("200"), CommissionPercent: dec("8")},
	} {
		s.Require().NoError(s.store.SaveLevel(s.ctx, l))
	}
}

func (s *ledgerSuite) balance(principal string) decimal.Decimal {
	acc, err := s.store.FindAccountByPrincipal(s.ctx, principal)
	if err != nil {
		return decimal.Zero
	}
	return acc.Balance
}

func (s *ledgerSuite) assertBalance(principal string, want string) {
	got := s.balance(principal)
	s.True(dec(want).Equal(got), "balance of %s: want %s got %s", principal, want, got.String())
}

func (s *ledgerSuite) rows() []domain.Transaction {
	_, txns := s.store.Snapshot()
	return txns
}

func (s *ledgerSuite) rowsOfKind(kind domain.TransactionKind) []domain.Transaction {
	var out []domain.Transaction
	for _, t := range s.rows() {
		if t.Kind == kind {
			out = append(out, t)
		}
	}
	return out
}

// contendedUnitOfWork commits a competing credit to victim while the first `conflicts`
// units are in flight, so each of them fails its commit with a concurrency conflict.
type contendedUnitOfWork struct {
	store     *memory.Store
	victim    string
	conflicts int32
	attempts  atomic.Int32
}

func (u *contendedUnitOfWork) WithinTx(ctx context.Context, fn func(ctx context.Context, tx portsrepo.TxRepositories) error) error {
	attempt := u.attempts.Add(1)
	return u.store.WithinTx(ctx, func(ctx context.Context, tx portsrepo.TxRepositories) error {
		if err := fn(ctx, tx); err != nil {
			return err
		}
		if attempt > u.conflicts {
			return nil
		}
		return u.store.WithinTx(ctx, func(ctx context.Context, other portsrepo.TxRepositories) error {
			accounts, err := other.Accounts().LockAccounts(ctx, []string{u.victim})
			if err != nil {
				return err
			}
			return other.Accounts().UpdateBalances(ctx, map[string]decimal.Decimal{
				u.victim: accounts[u.victim].Balance.Add(decimal.NewFromInt(1)),
			}, time.Now())
		})
	})
}

// slowUnitOfWork holds every unit open until its context expires.
type slowUnitOfWork struct {
	store *memory.Store
}

func (u slowUnitOfWork) WithinTx(ctx context.Context, fn func(ctx context.Context, tx portsrepo.TxRepositories) error) error {
	return u.store.WithinTx(ctx, func(ctx context.Context, tx portsrepo.TxRepositories) error {
		if err := fn(ctx, tx); err != nil {
			return err
		}
		<-ctx.Done()
		return nil
	})
}

func assignLevel(userID string, level int) func(ctx context.Context, tx portsrepo.TxRepositories) error {
	return func(ctx context.Context, tx portsrepo.TxRepositories) error {
		return tx.Levels().AssignUserLevel(ctx, userID, level, time.Now())
	}
}

// failingCommissionsUnitOfWork runs units on the store but fails every commission write,
// after the unit has already staged its debit, credits and ledger rows.
type failingCommissionsUnitOfWork struct {
	store    *memory.Store
	attempts atomic.Int32
}

func (u *failingCommissionsUnitOfWork) WithinTx(ctx context.Context, fn func(ctx context.Context, tx portsrepo.TxRepositories) error) error {
	u.attempts.Add(1)
	return u.store.WithinTx(ctx, func(ctx context.Context, tx portsrepo.TxRepositories) error {
		return fn(ctx, failingCommissionsTx{tx})
	})
}

type failingCommissionsTx struct {
	portsrepo.TxRepositories
}

func (failingCommissionsTx) Commissions() portsrepo.CommissionTxWriter { return failingCommissionWriter{} }

type failingCommissionWriter struct{}

func (failingCommissionWriter) SaveCommissions(context.Context, []domain.Commission) error {
	return apperrors.NewAppError(500, "failed to save commissions", nil)
}
