package mapping

import (
	"github.com/SscSPs/prompt_books/internal/core/domain"
	"github.com/SscSPs/prompt_books/internal/models"
)

// ToModelJournalEntry converts a domain JournalEntry header to its row.
func ToModelJournalEntry(d domain.JournalEntry) models.JournalEntry {
	return models.JournalEntry{
		EntryID:       d.EntryID,
		TenantID:      d.TenantID,
		EntryDate:     d.EntryDate,
		Description:   d.Description,
		Status:        models.JournalStatus(d.Status),
		SourceDraftID: d.SourceDraftID,
		ApprovedBy:    d.ApprovedBy,
		PostedAt:      d.PostedAt,
		AuditFields:   ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainJournalEntry converts a header row to the domain type. Lines are loaded separately.
func ToDomainJournalEntry(m models.JournalEntry) domain.JournalEntry {
	return domain.JournalEntry{
		EntryID:       m.EntryID,
		TenantID:      m.TenantID,
		EntryDate:     m.EntryDate,
		Description:   m.Description,
		Status:        domain.JournalStatus(m.Status),
		SourceDraftID: m.SourceDraftID,
		ApprovedBy:    m.ApprovedBy,
		PostedAt:      m.PostedAt,
		AuditFields:   ToDomainAuditFields(m.AuditFields),
	}
}

// ToModelJournalLine converts a domain JournalLine to its row. An empty memo is stored as NULL.
func ToModelJournalLine(d domain.JournalLine) models.JournalLine {
	var memo *string
	if d.Memo != "" {
		m := d.Memo
		memo = &m
	}
	return models.JournalLine{
		LineID:    d.LineID,
		EntryID:   d.EntryID,
		AccountID: d.AccountID,
		Debit:     d.Debit,
		Credit:    d.Credit,
		Memo:      memo,
	}
}

// ToDomainJournalLine converts a line row to the domain type.
func ToDomainJournalLine(m models.JournalLine) domain.JournalLine {
	l := domain.JournalLine{
		LineID:    m.LineID,
		EntryID:   m.EntryID,
		AccountID: m.AccountID,
		Debit:     m.Debit,
		Credit:    m.Credit,
	}
	if m.Memo != nil {
		l.Memo = *m.Memo
	}
	return l
}

// ToDomainJournalLineSlice converts a slice of line rows.
func ToDomainJournalLineSlice(ms []models.JournalLine) []domain.JournalLine {
	ds := make([]domain.JournalLine, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainJournalLine(m)
	}
	return ds
}
