package domain

import "time"

// User is the read-only view of a registered principal the ledger needs: its referrer edge
// and whether it may transact.
type User struct {
	UserID      string    `json:"userID"`
	ReferrerID  *string   `json:"referrerID,omitempty"`
	CanTransact bool      `json:"canTransact"`
	CreatedAt   time.Time `json:"createdAt"`
}

// ReferralNode is one node of a downline tree.
type ReferralNode struct {
	UserID   string          `json:"userID"`
	Level    int             `json:"level"` // Currently owned catalog level, 0 when none
	Active   bool            `json:"active"`
	Children []*ReferralNode `json:"children"`
}
