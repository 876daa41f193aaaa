package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// systemPrincipalPrefix reserves a namespace for non-login principals such as fund accounts.
const systemPrincipalPrefix = "system:"

// FundName identifies a system fund by its well-known name.
type FundName string

const (
	SalaryFund  FundName = "salary_fund"
	ReserveFund FundName = "reserve_fund"
)

// Funds lists every fund the registry knows about.
var Funds = []FundName{SalaryFund, ReserveFund}

// Principal returns the reserved principal that owns the fund's account.
func (f FundName) Principal() string {
	return systemPrincipalPrefix + string(f)
}

// IsSystemPrincipal reports whether principal lives in the reserved system namespace.
func IsSystemPrincipal(principal string) bool {
	return strings.HasPrefix(principal, systemPrincipalPrefix)
}

// Account is the durable balance held by one principal (a user or a system fund).
type Account struct {
	Principal string          `json:"principal"` // Primary Key; user ID or reserved system principal
	Balance   decimal.Decimal `json:"balance"`
	Version   int64           `json:"version"` // Incremented on every balance change
	AuditFields
}

// FundFromPrincipal returns the fund that owns principal.
func FundFromPrincipal(principal string) (FundName, bool) {
	for _, f := range Funds {
		if f.Principal() == principal {
			return f, true
		}
	}
	return "", false
}
