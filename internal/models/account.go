package models

import (
	"github.com/shopspring/decimal"
)

// Account is a row of the accounts table.
type Account struct {
	Principal string          `db:"principal"`
	Balance   decimal.Decimal `db:"balance"`
	Version   int64           `db:"version"`
	AuditFields
}
