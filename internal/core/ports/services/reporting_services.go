package services

import (
	"context"

	"github.com/SscSPs/referral_ledger/internal/core/domain"
)

// ReportingSvc builds read-only summaries
type ReportingSvc interface {
	// Dashboard summarises userID's ledger position.
	Dashboard(ctx context.Context, userID string) (*domain.DashboardStats, error)
}
