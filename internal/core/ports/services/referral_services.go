package services

import (
	"context"

	"github.com/SscSPs/referral_ledger/internal/core/domain"
)

// ReferralSvc walks the referral graph
type ReferralSvc interface {
	// Upline returns up to maxDepth ancestors of userID, nearest first. The walk stops at a
	// user without referrer or at the first principal it has already visited.
	Upline(ctx context.Context, userID string, maxDepth int) ([]string, error)

	// Downline returns the referral tree below userID, maxDepth levels deep.
	Downline(ctx context.Context, userID string, maxDepth int) (*domain.ReferralNode, error)
}
