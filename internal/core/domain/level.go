package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Level is a level catalog entry.
type Level struct {
	Level             int             `json:"level" toml:"level"`
	Name              string          `json:"name" toml:"name"`
	Price             decimal.Decimal `json:"price" toml:"price"`
	CommissionPercent decimal.Decimal `json:"commissionPercent" toml:"commission_percent"` // Nominal, informational
}

// UserLevel is the single currently-owned level of a user. It is overwritten on upgrade.
type UserLevel struct {
	UserID      string    `json:"userID"`
	Level       int       `json:"level"`
	ActivatedAt time.Time `json:"activatedAt"`
}
