package models

import (
	"time"

	"github.com/google/uuid"
)

// FinanceRecord is a single income or expense entry. Whether it is income is
// derived from Category; the sign of Amount gives the direction within that
// category (a negative expense is a refund).
type FinanceRecord struct {
	ID              string          `json:"id"`
	UserID          string          `json:"user_id" validate:"required"`
	Amount          float64         `json:"amount"`
	Category        FinanceCategory `json:"category" validate:"enum"`
	Description     *string         `json:"description,omitempty" validate:"omitempty,max=500"`
	Source          string          `json:"source"`
	Note            string          `json:"note" validate:"max=500"`
	IsRecurring     bool            `json:"is_recurring"`
	TransactionDate time.Time       `json:"transaction_date"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
	Tags            []string        `json:"tags,omitempty"`
}

func NewFinanceRecord(userID string, amount float64, category FinanceCategory, transactionDate time.Time) *FinanceRecord {
	now := Now()
	return &FinanceRecord{
		ID:              uuid.NewString(),
		UserID:          userID,
		Amount:          amount,
		Category:        category,
		TransactionDate: transactionDate.UTC(),
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

func (f *FinanceRecord) IsIncome() bool {
	return f.Category == FinanceCategoryIncome
}

func (f *FinanceRecord) IsExpense() bool {
	return !f.IsIncome()
}

func (f *FinanceRecord) ToRow() (Row, error) {
	category, err := encodeTag(TableFinanceEntries, f.ID, "category", f.Category)
	if err != nil {
		return nil, err
	}
	tags, err := encodeTags(f.Tags)
	if err != nil {
		return nil, &SerializationError{Table: TableFinanceEntries, ID: f.ID, Column: "tags", Err: err}
	}
	return Row{
		"id":               f.ID,
		"user_id":          f.UserID,
		"amount":           f.Amount,
		"category":         category,
		"description":      stringValue(f.Description),
		"source":           f.Source,
		"note":             f.Note,
		"is_recurring":     f.IsRecurring,
		"transaction_date": FormatTime(f.TransactionDate),
		"created_at":       FormatTime(f.CreatedAt),
		"updated_at":       FormatTime(f.UpdatedAt),
		"tags":             tags,
	}, nil
}

func FinanceRecordFromRow(row Row) (*FinanceRecord, error) {
	d := newRowDecoder(TableFinanceEntries, row)
	f := &FinanceRecord{
		ID:              d.id,
		UserID:          d.str("user_id"),
		Amount:          d.float("amount"),
		Category:        decodeTag(d, "category", ParseFinanceCategory),
		Description:     d.optStr("description"),
		Source:          d.str("source"),
		Note:            d.str("note"),
		IsRecurring:     d.bool("is_recurring"),
		TransactionDate: d.time("transaction_date"),
		CreatedAt:       d.time("created_at"),
		UpdatedAt:       d.time("updated_at"),
		Tags:            d.tags("tags"),
	}
	if d.err != nil {
		return nil, d.err
	}
	return f, nil
}
