package services

import (
	portsrepo "github.com/SscSPs/referral_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/referral_ledger/internal/core/ports/services"
	"github.com/SscSPs/referral_ledger/internal/platform/config"
)

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	container.Users = NewUserService(repos.UserRepo)
	container.Levels = NewLevelService(repos.LevelRepo)
	container.Funds = NewFundRegistry(repos.AccountRepo)
	container.Referrals = NewReferralService(repos.UserRepo, repos.LevelRepo)
	container.Ledger = NewLedgerService(repos.AccountRepo, repos.TransactionRepo, repos.CommissionRepo)

	// The distributor walks the upline through the referral service
	container.Distributor = NewDistributorService(
		repos.UnitOfWork,
		repos.UserRepo,
		repos.LevelRepo,
		container.Referrals,
		WithMaxAttempts(cfg.DistributionMaxAttempts),
		WithAttemptTimeout(cfg.DistributionTimeout),
		WithRegistrationFee(cfg.RegistrationFee),
	)
	container.Requests = NewRequestService(repos.UnitOfWork, repos.UserRepo, repos.TransactionRepo)
	container.Reporting = NewReportingService(container.Ledger, repos.TransactionRepo, repos.CommissionRepo, repos.LevelRepo, repos.UserRepo)

	return container
}
