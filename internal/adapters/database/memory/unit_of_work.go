package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/SscSPs/referral_ledger/internal/apperrors"
	"github.com/SscSPs/referral_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/referral_ledger/internal/core/ports/repositories"
	"github.com/shopspring/decimal"
)

// accountRead is the version a unit observed. absent marks an account the unit created.
type accountRead struct {
	version int64
	absent  bool
}

// unit buffers one unit of work. It is used by a single goroutine.
type unit struct {
	store *Store

	accountReads map[string]accountRead
	accounts     map[string]domain.Account
	dirty        map[string]struct{}

	txnReads   map[string]domain.TransactionStatus
	txnUpdates map[string]domain.Transaction
	newTxns    []domain.Transaction

	userLevels  map[string]domain.UserLevel
	commissions []domain.Commission
}

var (
	_ portsrepo.TxRepositories      = (*unit)(nil)
	_ portsrepo.AccountTxWriter     = (*unit)(nil)
	_ portsrepo.TransactionTxWriter = (*unit)(nil)
	_ portsrepo.UserLevelTxWriter   = (*unit)(nil)
	_ portsrepo.CommissionTxWriter  = (*unit)(nil)
)

// WithinTx implements portsrepo.UnitOfWork.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, tx portsrepo.TxRepositories) error) error {
	u := &unit{
		store:        s,
		accountReads: make(map[string]accountRead),
		accounts:     make(map[string]domain.Account),
		dirty:        make(map[string]struct{}),
		txnReads:     make(map[string]domain.TransactionStatus),
		txnUpdates:   make(map[string]domain.Transaction),
		userLevels:   make(map[string]domain.UserLevel),
	}
	if err := fn(ctx, u); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("unit of work abandoned before commit: %w", err)
	}
	return u.commit()
}

func (u *unit) Accounts() portsrepo.AccountTxWriter         { return u }
func (u *unit) Transactions() portsrepo.TransactionTxWriter { return u }
func (u *unit) Levels() portsrepo.UserLevelTxWriter         { return u }
func (u *unit) Commissions() portsrepo.CommissionTxWriter   { return u }

// LockAccounts implements portsrepo.AccountTxWriter.
func (u *unit) LockAccounts(_ context.Context, principals []string) (map[string]domain.Account, error) {
	out := make(map[string]domain.Account, len(principals))

	u.store.mu.RLock()
	defer u.store.mu.RUnlock()
	for _, p := range principals {
		if p == "" {
			return nil, fmt.Errorf("%w: empty principal", apperrors.ErrValidation)
		}
		if acc, ok := u.accounts[p]; ok {
			out[p] = acc
			continue
		}
		acc, ok := u.store.accounts[p]
		if ok {
			u.accountReads[p] = accountRead{version: acc.Version}
		} else {
			t := now()
			acc = domain.Account{
				Principal:   p,
				Balance:     decimal.Zero,
				AuditFields: domain.AuditFields{CreatedAt: t, LastUpdatedAt: t},
			}
			u.accountReads[p] = accountRead{absent: true}
		}
		u.accounts[p] = acc
		out[p] = acc
	}
	return out, nil
}

// UpdateBalances implements portsrepo.AccountTxWriter.
func (u *unit) UpdateBalances(_ context.Context, balances map[string]decimal.Decimal, at time.Time) error {
	for p, balance := range balances {
		acc, ok := u.accounts[p]
		if !ok {
			return apperrors.NewAppError(500, "account "+p+" was not locked in this unit", apperrors.ErrStorageFailure)
		}
		acc.Balance = balance
		acc.LastUpdatedAt = at
		u.accounts[p] = acc
		u.dirty[p] = struct{}{}
	}
	return nil
}

// SaveTransactions implements portsrepo.TransactionTxWriter.
func (u *unit) SaveTransactions(_ context.Context, transactions []domain.Transaction) error {
	for _, txn := range transactions {
		if err := txn.Validate(); err != nil {
			return err
		}
	}
	u.newTxns = append(u.newTxns, transactions...)
	return nil
}

// FindTransactionForUpdate implements portsrepo.TransactionTxWriter.
func (u *unit) FindTransactionForUpdate(_ context.Context, transactionID string) (*domain.Transaction, error) {
	if txn, ok := u.txnUpdates[transactionID]; ok {
		return &txn, nil
	}
	u.store.mu.RLock()
	txn, ok := u.store.transactions[transactionID]
	u.store.mu.RUnlock()
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	u.txnReads[transactionID] = txn.Status
	return &txn, nil
}

// UpdateTransactionReview implements portsrepo.TransactionTxWriter.
func (u *unit) UpdateTransactionReview(_ context.Context, transaction domain.Transaction) error {
	if _, ok := u.txnReads[transaction.TransactionID]; !ok {
		return apperrors.NewAppError(500, "transaction "+transaction.TransactionID+" was not locked in this unit", apperrors.ErrStorageFailure)
	}
	u.txnUpdates[transaction.TransactionID] = transaction
	return nil
}

// AssignUserLevel implements portsrepo.UserLevelTxWriter.
func (u *unit) AssignUserLevel(_ context.Context, userID string, level int, at time.Time) error {
	u.userLevels[userID] = domain.UserLevel{UserID: userID, Level: level, ActivatedAt: at}
	return nil
}

// SaveCommissions implements portsrepo.CommissionTxWriter.
func (u *unit) SaveCommissions(_ context.Context, commissions []domain.Commission) error {
	u.commissions = append(u.commissions, commissions...)
	return nil
}

// commit validates every read against the store and applies the buffer, or applies nothing.
func (u *unit) commit() error {
	s := u.store
	s.mu.Lock()
	defer s.mu.Unlock()

	principals := make([]string, 0, len(u.accountReads))
	for p := range u.accountReads {
		principals = append(principals, p)
	}
	sort.Strings(principals)
	for _, p := range principals {
		read := u.accountReads[p]
		current, exists := s.accounts[p]
		switch {
		case read.absent && exists:
			return fmt.Errorf("%w: account %s was created concurrently", apperrors.ErrConcurrencyConflict, p)
		case !read.absent && (!exists || current.Version != read.version):
			return fmt.Errorf("%w: account %s changed since it was read", apperrors.ErrConcurrencyConflict, p)
		}
	}
	for id, status := range u.txnReads {
		if current, ok := s.transactions[id]; !ok || current.Status != status {
			return fmt.Errorf("%w: transaction %s changed since it was read", apperrors.ErrConcurrencyConflict, id)
		}
	}
	seen := make(map[string]struct{}, len(u.newTxns))
	for _, txn := range u.newTxns {
		if _, ok := s.transactions[txn.TransactionID]; ok {
			return fmt.Errorf("%w: transaction %s", apperrors.ErrDuplicate, txn.TransactionID)
		}
		if _, ok := seen[txn.TransactionID]; ok {
			return fmt.Errorf("%w: transaction %s", apperrors.ErrDuplicate, txn.TransactionID)
		}
		seen[txn.TransactionID] = struct{}{}
	}

	for _, p := range principals {
		acc := u.accounts[p]
		if _, changed := u.dirty[p]; changed {
			acc.Version++
		} else if !u.accountReads[p].absent {
			continue
		}
		s.accounts[p] = acc
	}
	for _, txn := range u.newTxns {
		s.transactions[txn.TransactionID] = txn
	}
	for id, txn := range u.txnUpdates {
		s.transactions[id] = txn
	}
	for id, ul := range u.userLevels {
		s.userLevels[id] = ul
	}
	s.commissions = append(s.commissions, u.commissions...)
	return nil
}
