package services

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

// accountStore applies credits and debits to the accounts locked by one unit of work.
// Every principal the unit touches is locked up front, in sorted order, by a single call.
type accountStore struct {
	writer   portsrepo.AccountTxWriter
	accounts map[string]domain.Account
	changed  map[string]struct{}
}

func lockAccountStore(ctx context.Context, writer portsrepo.AccountTxWriter, principals ...string) (*accountStore, error) {
	unique := make([]string, 0, len(principals))
	seen := make(map[string]struct{}, len(principals))
	for _, p := range principals {
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		unique = append(unique, p)
	}
	sort.Strings(unique)

	accounts, err := writer.LockAccounts(ctx, unique)
	if err != nil {
		return nil, err
	}
	return &accountStore{writer: writer, accounts: accounts, changed: make(map[string]struct{})}, nil
}

// GetOrCreate returns the locked account of principal. Missing accounts were created with a
// zero balance by the lock.
func (a *accountStore) GetOrCreate(principal string) (domain.Account, error) {
	acc, ok := a.accounts[principal]
	if !ok {
		return domain.Account{}, apperrors.NewAppError(500, "account "+principal+" is not part of this unit", apperrors.ErrStorageFailure)
	}
	return acc, nil
}

// Credit increases principal's balance.
func (a *accountStore) Credit(principal string, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return fmt.Errorf("%w: credit of %s to %s", apperrors.ErrInvalidAmount, amount.String(), principal)
	}
	acc, err := a.GetOrCreate(principal)
	if err != nil {
		return err
	}
	acc.Balance = acc.Balance.Add(amount)
	a.accounts[principal] = acc
	a.changed[principal] = struct{}{}
	return nil
}

// Debit decreases principal's balance, leaving it unchanged when the balance is too small.
func (a *accountStore) Debit(principal string, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return fmt.Errorf("%w: debit of %s from %s", apperrors.ErrInvalidAmount, amount.String(), principal)
	}
	acc, err := a.GetOrCreate(principal)
	if err != nil {
		return err
	}
	if acc.Balance.LessThan(amount) {
		return fmt.Errorf("%w: balance %s is less than %s", apperrors.ErrInsufficientFunds, acc.Balance.String(), amount.String())
	}
	acc.Balance = acc.Balance.Sub(amount)
	a.accounts[principal] = acc
	a.changed[principal] = struct{}{}
	return nil
}

// Balance returns principal's balance as seen by this unit.
func (a *accountStore) Balance(principal string) decimal.Decimal {
	return a.accounts[principal].Balance
}

// Flush writes every changed balance through the unit.
func (a *accountStore) Flush(ctx context.Context, now time.Time) error {
	if len(a.changed) == 0 {
		return nil
	}
	balances := make(map[string]decimal.Decimal, len(a.changed))
	for p := range a.changed {
		balances[p] = a.accounts[p].Balance
	}
	return a.writer.UpdateBalances(ctx, balances, now)
}
