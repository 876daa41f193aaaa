package models

import (
	"database/sql"
	"time"
)

// User is a row of the users table.
type User struct {
	UserID      string         `db:"user_id"`
	ReferrerID  sql.NullString `db:"referrer_id"`
	CanTransact bool           `db:"can_transact"`
	CreatedAt   time.Time      `db:"created_at"`
}
