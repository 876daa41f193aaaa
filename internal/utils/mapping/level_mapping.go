package mapping

import (
	"github.com/SscSPs/referral_ledger/internal/core/domain"
	"github.com/SscSPs/referral_ledger/internal/models"
)

func ToModelLevel(d domain.Level) models.Level {
	return models.Level{
		Level:             d.Level,
		Name:              d.Name,
		Price:             d.Price,
		CommissionPercent: d.CommissionPercent,
	}
}

func ToDomainLevel(m models.Level) domain.Level {
	return domain.Level{
		Level:             m.Level,
		Name:              m.Name,
		Price:             m.Price,
		CommissionPercent: m.CommissionPercent,
	}
}

func ToDomainUserLevel(m models.UserLevel) domain.UserLevel {
	return domain.UserLevel{UserID: m.UserID, Level: m.Level, ActivatedAt: m.ActivatedAt}
}
