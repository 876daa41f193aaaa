package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Commission is the earnings record written next to every commission credit.
type Commission struct {
	CommissionID  string          `json:"commissionID"`
	Recipient     string          `json:"recipient"`
	SourceUser    string          `json:"sourceUser"`
	Amount        decimal.Decimal `json:"amount"`
	Role          CommissionRole  `json:"role"`
	Depth         int             `json:"depth"` // 0 for fund roles
	TransactionID string          `json:"transactionID"`
	CreatedAt     time.Time       `json:"createdAt"`
}
