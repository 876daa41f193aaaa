package mapping

import (
	"github.com/SscSPs/referral_ledger/internal/core/domain"
	"github.com/SscSPs/referral_ledger/internal/models"
)

// ToModelUser converts a domain User to a model User
func ToModelUser(d domain.User) models.User {
	return models.User{
		UserID:      d.UserID,
		ReferrerID:  toNullString(d.ReferrerID),
		CanTransact: d.CanTransact,
		CreatedAt:   d.CreatedAt,
	}
}

// ToDomainUser converts a model User to a domain User
func ToDomainUser(m models.User) domain.User {
	return domain.User{
		UserID:      m.UserID,
		ReferrerID:  fromNullString(m.ReferrerID),
		CanTransact: m.CanTransact,
		CreatedAt:   m.CreatedAt,
	}
}
