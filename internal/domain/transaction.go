package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type TransactionKind string

const (
	TransactionKindBuy  TransactionKind = "buy"
	TransactionKindSell TransactionKind = "sell"
)

// RawTransaction is a decoded statement row before normalization.
// RowNumber refers back to the source statement for error reporting.
type RawTransaction struct {
	RowNumber    int             `json:"rowNumber"`
	Symbol       string          `json:"symbol"`
	Name         string          `json:"name"`
	Kind         TransactionKind `json:"kind"`
	Date         time.Time       `json:"date"`
	QuantityLots decimal.Decimal `json:"quantityLots"`
	Amount       decimal.Decimal `json:"amount"`
	Fee          decimal.Decimal `json:"fee"`
	Tax          decimal.Decimal `json:"tax"`
}

// Transaction is a validated record. Immutable after normalization.
// QuantityLots is in lots of 1000 shares.
type Transaction struct {
	ID           uuid.UUID       `json:"id"`
	Symbol       string          `json:"symbol"`
	Name         string          `json:"name"`
	Kind         TransactionKind `json:"kind"`
	Date         time.Time       `json:"date"`
	QuantityLots decimal.Decimal `json:"quantityLots"`
	Amount       decimal.Decimal `json:"amount"`
	Fee          decimal.Decimal `json:"fee"`
	Tax          decimal.Decimal `json:"tax"`
	SourceRow    int             `json:"sourceRow"`
}

type IssueSeverity string

const (
	IssueSeverityWarning IssueSeverity = "warning"
	IssueSeverityError   IssueSeverity = "error"
)

type IssueCode string

const (
	IssueCodeMissingFields        IssueCode = "MISSING_FIELDS"
	IssueCodeInvalidNumber        IssueCode = "INVALID_NUMBER"
	IssueCodeInsufficientHoldings IssueCode = "INSUFFICIENT_HOLDINGS"
)

// ValidationIssue is attached to a normalize result. Only error-severity
// issues block downstream processing.
type ValidationIssue struct {
	Index    int           `json:"index"`
	Code     IssueCode     `json:"code"`
	Severity IssueSeverity `json:"severity"`
	Message  string        `json:"message"`
}

// TransactionSummary is descriptive stats over a normalized set.
type TransactionSummary struct {
	Total             int             `json:"total"`
	BuyCount          int             `json:"buyCount"`
	SellCount         int             `json:"sellCount"`
	UniqueInstruments int             `json:"uniqueInstruments"`
	StartDate         *time.Time      `json:"startDate"`
	EndDate           *time.Time      `json:"endDate"`
	TotalInvested     decimal.Decimal `json:"totalInvested"`
}
