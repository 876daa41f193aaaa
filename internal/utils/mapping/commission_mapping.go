package mapping

import (
	"github.com/SscSPs/referral_ledger/internal/core/domain"
	"github.com/SscSPs/referral_ledger/internal/models"
)

// ToModelCommission converts a domain Commission to a model Commission
func ToModelCommission(d domain.Commission) models.Commission {
	return models.Commission{
		CommissionID:  d.CommissionID,
		Recipient:     d.Recipient,
		SourceUser:    d.SourceUser,
		Amount:        d.Amount,
		Role:          string(d.Role),
		Depth:         d.Depth,
		TransactionID: d.TransactionID,
		CreatedAt:     d.CreatedAt,
	}
}

// ToDomainCommission converts a model Commission to a domain Commission
func ToDomainCommission(m models.Commission) domain.Commission {
	return domain.Commission{
		CommissionID:  m.CommissionID,
		Recipient:     m.Recipient,
		SourceUser:    m.SourceUser,
		Amount:        m.Amount,
		Role:          domain.CommissionRole(m.Role),
		Depth:         m.Depth,
		TransactionID: m.TransactionID,
		CreatedAt:     m.CreatedAt,
	}
}
