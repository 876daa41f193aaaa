package mapping

import (
	"database/sql"

	"github.com/SscSPs/referral_ledger/internal/core/domain"
	"github.com/SscSPs/referral_ledger/internal/models"
)

// ToModelTransaction converts a domain Transaction to a model Transaction
func ToModelTransaction(d domain.Transaction) models.Transaction {
	m := models.Transaction{
		TransactionID: d.TransactionID,
		Principal:     d.Principal,
		Amount:        d.Amount,
		Kind:          string(d.Kind),
		Status:        string(d.Status),
		Description:   d.Description,
		Counterparty:  toNullString(d.Counterparty),
		ReviewedBy:    toNullString(d.ReviewedBy),
		ReviewedAt:    toNullTime(d.ReviewedAt),
		CreatedAt:     d.CreatedAt,
	}
	if d.Role != nil {
		m.Role = sql.NullString{String: string(*d.Role), Valid: true}
	}
	if d.Depth != nil {
		m.Depth = sql.NullInt32{Int32: int32(*d.Depth), Valid: true}
	}
	return m
}

// ToDomainTransaction converts a model Transaction to a domain Transaction
func ToDomainTransaction(m models.Transaction) domain.Transaction {
	d := domain.Transaction{
		TransactionID: m.TransactionID,
		Principal:     m.Principal,
		Amount:        m.Amount,
		Kind:          domain.TransactionKind(m.Kind),
		Status:        domain.TransactionStatus(m.Status),
		Description:   m.Description,
		Counterparty:  fromNullString(m.Counterparty),
		ReviewedBy:    fromNullString(m.ReviewedBy),
		ReviewedAt:    fromNullTime(m.ReviewedAt),
		CreatedAt:     m.CreatedAt,
	}
	if m.Role.Valid {
		role := domain.CommissionRole(m.Role.String)
		d.Role = &role
	}
	if m.Depth.Valid {
		depth := int(m.Depth.Int32)
		d.Depth = &depth
	}
	return d
}

// ToDomainTransactionSlice converts a slice of model Transactions to domain Transactions
func ToDomainTransactionSlice(ms []models.Transaction) []domain.Transaction {
	ds := make([]domain.Transaction, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainTransaction(m)
	}
	return ds
}
