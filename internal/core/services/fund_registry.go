package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/SscSPs/referral_ledger/internal/apperrors"
	"github.com/SscSPs/referral_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/referral_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/referral_ledger/internal/core/ports/services"
	"github.com/shopspring/decimal"
)

// fundRegistry resolves fund names to their reserved principals. Fund accounts themselves
// are created lazily by the first unit of work that credits them.
type fundRegistry struct {
	accountRepo portsrepo.AccountReader
}

// NewFundRegistry creates a FundSvc.
func NewFundRegistry(accountRepo portsrepo.AccountReader) portssvc.FundSvc {
	return &fundRegistry{accountRepo: accountRepo}
}

var _ portssvc.FundSvc = (*fundRegistry)(nil)

// lookupFund maps a well-known name to its fund.
func lookupFund(name string) (domain.FundName, error) {
	for _, f := range domain.Funds {
		if string(f) == name {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: unknown fund '%s'", apperrors.ErrNotFound, name)
}

func (r *fundRegistry) GetFund(ctx context.Context, name string) (*domain.Account, error) {
	fund, err := lookupFund(name)
	if err != nil {
		return nil, err
	}
	acc, err := r.accountRepo.FindAccountByPrincipal(ctx, fund.Principal())
	if errors.Is(err, apperrors.ErrNotFound) {
		return &domain.Account{Principal: fund.Principal(), Balance: decimal.Zero}, nil
	}
	return acc, err
}

func (r *fundRegistry) ListFunds(ctx context.Context) ([]domain.Account, error) {
	out := make([]domain.Account, 0, len(domain.Funds))
	for _, f := range domain.Funds {
		acc, err := r.GetFund(ctx, string(f))
		if err != nil {
			return nil, err
		}
		out = append(out, *acc)
	}
	return out, nil
}
