// Package memory is an in-process implementation of the repository ports. Units of work are
// optimistic: reads record the version they saw, writes are buffered, and the commit validates
// every recorded version under the store lock before applying the buffer.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/SscSPs/referral_ledger/internal/apperrors"
	"github.com/SscSPs/referral_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/referral_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/referral_ledger/internal/utils/pagination"
	"github.com/shopspring/decimal"
)

// Store keeps every table in maps guarded by one mutex.
type Store struct {
	mu           sync.RWMutex
	accounts     map[string]domain.Account
	users        map[string]domain.User
	levels       map[int]domain.Level
	userLevels   map[string]domain.UserLevel
	transactions map[string]domain.Transaction
	commissions  []domain.Commission
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		accounts:     make(map[string]domain.Account),
		users:        make(map[string]domain.User),
		levels:       make(map[int]domain.Level),
		userLevels:   make(map[string]domain.UserLevel),
		transactions: make(map[string]domain.Transaction),
	}
}

// NewRepositoryProvider wires a store into every repository port.
func NewRepositoryProvider(store *Store) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		UnitOfWork:      store,
		AccountRepo:     store,
		TransactionRepo: store,
		UserRepo:        store,
		LevelRepo:       store,
		CommissionRepo:  store,
	}
}

var (
	_ portsrepo.UnitOfWork            = (*Store)(nil)
	_ portsrepo.AccountReader         = (*Store)(nil)
	_ portsrepo.TransactionReader     = (*Store)(nil)
	_ portsrepo.UserRepositoryFacade  = (*Store)(nil)
	_ portsrepo.LevelRepositoryFacade = (*Store)(nil)
	_ portsrepo.CommissionReader      = (*Store)(nil)
)

// FindAccountByPrincipal implements portsrepo.AccountReader.
func (s *Store) FindAccountByPrincipal(_ context.Context, principal string) (*domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	acc, ok := s.accounts[principal]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &acc, nil
}

// FindTransactionByID implements portsrepo.TransactionReader.
func (s *Store) FindTransactionByID(_ context.Context, transactionID string) (*domain.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	txn, ok := s.transactions[transactionID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &txn, nil
}

// ListTransactionsByPrincipal implements portsrepo.TransactionReader.
func (s *Store) ListTransactionsByPrincipal(_ context.Context, principal string, limit int, nextToken *string) ([]domain.Transaction, *string, error) {
	limit = pagination.NormalizeLimit(limit)

	var cursor *pagination.Cursor
	if nextToken != nil && *nextToken != "" {
		c, err := pagination.DecodeToken(*nextToken)
		if err != nil {
			return nil, nil, apperrors.NewAppError(400, "invalid nextToken", fmt.Errorf("%w: %v", apperrors.ErrValidation, err))
		}
		cursor = &c
	}

	s.mu.RLock()
	rows := make([]domain.Transaction, 0)
	for _, txn := range s.transactions {
		if txn.Principal != principal {
			continue
		}
		if cursor != nil && !cursor.After(txn.CreatedAt, txn.TransactionID) {
			continue
		}
		rows = append(rows, txn)
	}
	s.mu.RUnlock()

	sortNewestFirst(rows)

	var next *string
	if len(rows) > limit {
		last := rows[limit-1]
		token := pagination.EncodeToken(last.CreatedAt, last.TransactionID)
		next = &token
		rows = rows[:limit]
	}
	return rows, next, nil
}

// ListPendingTransactions implements portsrepo.TransactionReader.
func (s *Store) ListPendingTransactions(_ context.Context, limit int) ([]domain.Transaction, error) {
	limit = pagination.NormalizeLimit(limit)

	s.mu.RLock()
	rows := make([]domain.Transaction, 0)
	for _, txn := range s.transactions {
		if txn.Status == domain.StatusPending {
			rows = append(rows, txn)
		}
	}
	s.mu.RUnlock()

	sortNewestFirst(rows)
	for i, j := 0, len(rows)-1; i < j; i, j = i+1, j-1 {
		rows[i], rows[j] = rows[j], rows[i]
	}
	if len(rows) > limit {
		rows = rows[:limit]
	}
	return rows, nil
}

// SumTransactions implements portsrepo.TransactionReader.
func (s *Store) SumTransactions(_ context.Context, principal string, kind domain.TransactionKind, status domain.TransactionStatus) (decimal.Decimal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	total := decimal.Zero
	for _, txn := range s.transactions {
		if txn.Principal == principal && txn.Kind == kind && txn.Status == status {
			total = total.Add(txn.Amount)
		}
	}
	return total, nil
}

// FindUserByID implements portsrepo.UserReader.
func (s *Store) FindUserByID(_ context.Context, userID string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[userID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &user, nil
}

// ListReferrals implements portsrepo.UserReader.
func (s *Store) ListReferrals(_ context.Context, referrerID string) ([]domain.User, error) {
	s.mu.RLock()
	out := make([]domain.User, 0)
	for _, user := range s.users {
		if user.ReferrerID != nil && *user.ReferrerID == referrerID {
			out = append(out, user)
		}
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].UserID < out[j].UserID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

// SaveUser implements portsrepo.UserWriter.
func (s *Store) SaveUser(_ context.Context, user domain.User) error {
	if user.UserID == "" || domain.IsSystemPrincipal(user.UserID) {
		return fmt.Errorf("%w: user ID '%s' is not allowed", apperrors.ErrValidation, user.UserID)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.users[user.UserID]; ok && user.CreatedAt.IsZero() {
		user.CreatedAt = existing.CreatedAt
	}
	s.users[user.UserID] = user
	return nil
}

// FindLevel implements portsrepo.LevelReader.
func (s *Store) FindLevel(_ context.Context, level int) (*domain.Level, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	l, ok := s.levels[level]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &l, nil
}

// ListLevels implements portsrepo.LevelReader.
func (s *Store) ListLevels(_ context.Context) ([]domain.Level, error) {
	s.mu.RLock()
	out := make([]domain.Level, 0, len(s.levels))
	for _, l := range s.levels {
		out = append(out, l)
	}
	s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Level < out[j].Level })
	return out, nil
}

// FindUserLevel implements portsrepo.LevelReader.
func (s *Store) FindUserLevel(_ context.Context, userID string) (*domain.UserLevel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ul, ok := s.userLevels[userID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &ul, nil
}

// SaveLevel implements portsrepo.LevelWriter.
func (s *Store) SaveLevel(_ context.Context, level domain.Level) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.levels[level.Level] = level
	return nil
}

// SumCommissionsByRecipient implements portsrepo.CommissionReader.
func (s *Store) SumCommissionsByRecipient(_ context.Context, recipient string) (decimal.Decimal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	total := decimal.Zero
	for _, c := range s.commissions {
		if c.Recipient == recipient {
			total = total.Add(c.Amount)
		}
	}
	return total, nil
}

// ListCommissionsByRecipient implements portsrepo.CommissionReader.
func (s *Store) ListCommissionsByRecipient(_ context.Context, recipient string, limit int) ([]domain.Commission, error) {
	limit = pagination.NormalizeLimit(limit)
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Commission, 0)
	for i := len(s.commissions) - 1; i >= 0 && len(out) < limit; i-- {
		if s.commissions[i].Recipient == recipient {
			out = append(out, s.commissions[i])
		}
	}
	return out, nil
}

// Snapshot returns copies of every account and every ledger row. Used by tests and the CLI.
func (s *Store) Snapshot() ([]domain.Account, []domain.Transaction) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	accounts := make([]domain.Account, 0, len(s.accounts))
	for _, a := range s.accounts {
		accounts = append(accounts, a)
	}
	sort.Slice(accounts, func(i, j int) bool { return accounts[i].Principal < accounts[j].Principal })

	txns := make([]domain.Transaction, 0, len(s.transactions))
	for _, t := range s.transactions {
		txns = append(txns, t)
	}
	sortNewestFirst(txns)
	return accounts, txns
}

func sortNewestFirst(rows []domain.Transaction) {
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].CreatedAt.Equal(rows[j].CreatedAt) {
			return rows[i].TransactionID > rows[j].TransactionID
		}
		return rows[i].CreatedAt.After(rows[j].CreatedAt)
	})
}

func now() time.Time {
	return time.Now().UTC()
}
