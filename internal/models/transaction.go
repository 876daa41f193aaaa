package models

import (
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is a row of the transactions table. Nullable columns use the sql.Null* types.
type Transaction struct {
	TransactionID string          `db:"transaction_id"`
	Principal     string          `db:"principal"`
	Amount        decimal.Decimal `db:"amount"`
	Kind          string          `db:"kind"`
	Status        string          `db:"status"`
	Description   string          `db:"description"`
	Counterparty  sql.NullString  `db:"counterparty"`
	Role          sql.NullString  `db:"role"`
	Depth         sql.NullInt32   `db:"depth"`
	ReviewedBy    sql.NullString  `db:"reviewed_by"`
	ReviewedAt    sql.NullTime    `db:"reviewed_at"`
	CreatedAt     time.Time       `db:"created_at"`
}
