package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType is the direction of a ledger transaction.
type TransactionType string

const (
	TxCredited TransactionType = "credited"
	TxDebited  TransactionType = "debited"
)

// CompanyLedgerID is the primary key of the single ledger row.
const CompanyLedgerID = 1

// Ledger holds the company's running balance. There is exactly one row.
type Ledger struct {
	ID        uint            `gorm:"primaryKey;autoIncrement:false" json:"-"`
	Balance   decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"balance"`
	CreatedAt time.Time       `json:"-"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// LedgerTransaction is an immutable entry in the company ledger.
// Amount is always a positive magnitude; Type carries the sign.
type LedgerTransaction struct {
	ID           string          `gorm:"type:varchar(36);primaryKey" json:"id"`
	Date         time.Time       `gorm:"not null;index" json:"date"`
	Amount       decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"amount"`
	Purpose      string          `gorm:"type:text;not null" json:"purpose"`
	Remarks      string          `gorm:"type:text" json:"remarks,omitempty"`
	Type         TransactionType `gorm:"type:varchar(10);not null;index" json:"type"`
	BalanceAfter decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"balanceAfter"`
	RequestID    *string         `gorm:"type:varchar(36);index" json:"requestId,omitempty"`
	RequestType  *RequestType    `gorm:"type:varchar(20)" json:"requestType,omitempty"`
	CreatedAt    time.Time       `json:"-"`
}

// Signed returns the transaction's contribution to the balance.
func (t LedgerTransaction) Signed() decimal.Decimal {
	if t.Type == TxDebited {
		return t.Amount.Neg()
	}
	return t.Amount
}

// LedgerTotals aggregates the transaction log.
type LedgerTotals struct {
	Credited decimal.Decimal `json:"credited"`
	Debited  decimal.Decimal `json:"debited"`
	Count    int64           `json:"count"`
}

// Net is credited minus debited, which must equal the stored balance.
func (t LedgerTotals) Net() decimal.Decimal {
	return t.Credited.Sub(t.Debited)
}
