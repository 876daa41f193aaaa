package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Commission is a row of the commissions table.
type Commission struct {
	CommissionID  string          `db:"commission_id"`
	Recipient     string          `db:"recipient"`
	SourceUser    string          `db:"source_user"`
	Amount        decimal.Decimal `db:"amount"`
	Role          string          `db:"role"`
	Depth         int             `db:"depth"`
	TransactionID string          `db:"transaction_id"`
	CreatedAt     time.Time       `db:"created_at"`
}
