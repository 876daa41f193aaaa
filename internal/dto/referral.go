package dto

import (
	"time"

	"github.com/SscSPs/referral_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// LevelResponse is one catalog level.
type LevelResponse struct {
	Level             int             `json:"level"`
	Name              string          `json:"name"`
	Price             decimal.Decimal `json:"price"`
	CommissionPercent decimal.Decimal `json:"commissionPercent"`
}

// UserLevelResponse is the level a user currently owns.
type UserLevelResponse struct {
	Level       int       `json:"level"`
	Name        string    `json:"name,omitempty"`
	ActivatedAt time.Time `json:"activatedAt"`
}

// TreeParams defines query parameters for the downline tree.
type TreeParams struct {
	Depth int `form:"depth" binding:"min=0,max=10"`
}

// UplineResponse lists ancestors, nearest first.
type UplineResponse struct {
	UserID string   `json:"userID"`
	Upline []string `json:"upline"`
}

// UpsertUserRequest defines the payload for registering or updating a user's referral edge.
type UpsertUserRequest struct {
	ReferrerID  *string `json:"referrerID"`
	CanTransact *bool   `json:"canTransact" binding:"required"`
}

// UserResponse defines the structure for user data returned by the API.
type UserResponse struct {
	UserID      string    `json:"userID"`
	ReferrerID  *string   `json:"referrerID,omitempty"`
	CanTransact bool      `json:"canTransact"`
	CreatedAt   time.Time `json:"createdAt"`
}

// ToLevelResponses converts a slice of domain.Level.
func ToLevelResponses(levels []domain.Level) []LevelResponse {
	res := make([]LevelResponse, len(levels))
	for i, l := range levels {
		res[i] = LevelResponse{
			Level:             l.Level,
			Name:              l.Name,
			Price:             l.Price,
			CommissionPercent: l.CommissionPercent,
		}
	}
	return res
}

// ToUserResponse converts a domain.User to a UserResponse.
func ToUserResponse(u *domain.User) UserResponse {
	return UserResponse{
		UserID:      u.UserID,
		ReferrerID:  u.ReferrerID,
		CanTransact: u.CanTransact,
		CreatedAt:   u.CreatedAt,
	}
}
