package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Level is a row of the levels table.
type Level struct {
	Level             int             `db:"level"`
	Name              string          `db:"name"`
	Price             decimal.Decimal `db:"price"`
	CommissionPercent decimal.Decimal `db:"commission_percent"`
}

// UserLevel is a row of the user_levels table.
type UserLevel struct {
	UserID      string    `db:"user_id"`
	Level       int       `db:"level"`
	ActivatedAt time.Time `db:"activated_at"`
}
