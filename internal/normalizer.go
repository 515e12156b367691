package internal

import (
	"beat0050/internal/domain"
	"beat0050/internal/logger"
	"beat0050/internal/util"
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// oversellToleranceLots absorbs rounding noise when the replayed holdings
// counter checks a sell. Sells beyond tracked holdings by more than this are
// flagged as warnings, not rejected - the statement may simply predate the
// user's earliest buys.
var oversellToleranceLots = decimal.NewFromFloat(0.001)

type NormalizeResult struct {
	Transactions   []domain.Transaction      `json:"transactions"`
	DuplicateCount int                       `json:"duplicateCount"`
	Issues         []domain.ValidationIssue  `json:"issues"`
	Summary        domain.TransactionSummary `json:"summary"`
}

// Valid reports whether downstream processing may run. Warnings don't
// block; error-severity issues do.
func (r NormalizeResult) Valid() bool {
	for _, issue := range r.Issues {
		if issue.Severity == domain.IssueSeverityError {
			return false
		}
	}
	return true
}

// NormalizeTransactions deduplicates, sorts and validates raw statement
// records. Dedup key is (date, symbol, kind, quantity, amount); colliding
// records collapse to one and the collapse count is reported. Sorting is
// stable, so same-date records keep their statement order.
func NormalizeTransactions(ctx context.Context, raw []domain.RawTransaction) NormalizeResult {
	log := logger.FromContext(ctx)

	deduped, duplicateCount := removeDuplicates(raw)

	sort.SliceStable(deduped, func(i, j int) bool {
		return deduped[i].Date.Before(deduped[j].Date)
	})

	transactions := make([]domain.Transaction, 0, len(deduped))
	for _, r := range deduped {
		transactions = append(transactions, domain.Transaction{
			ID:           uuid.New(),
			Symbol:       r.Symbol,
			Name:         r.Name,
			Kind:         r.Kind,
			Date:         util.TruncateToDay(r.Date),
			QuantityLots: r.QuantityLots,
			Amount:       r.Amount,
			Fee:          r.Fee,
			Tax:          r.Tax,
			SourceRow:    r.RowNumber,
		})
	}

	issues := validateTransactions(transactions)

	if duplicateCount > 0 {
		log.Infof("collapsed %d duplicate transaction records", duplicateCount)
	}

	return NormalizeResult{
		Transactions:   transactions,
		DuplicateCount: duplicateCount,
		Issues:         issues,
		Summary:        summarize(transactions),
	}
}

func dedupKey(r domain.RawTransaction) string {
	return fmt.Sprintf("%s_%s_%s_%s_%s",
		r.Date.Format("2006-01-02"),
		r.Symbol,
		r.Kind,
		r.QuantityLots.String(),
		r.Amount.String(),
	)
}

func removeDuplicates(raw []domain.RawTransaction) ([]domain.RawTransaction, int) {
	seen := map[string]bool{}
	unique := make([]domain.RawTransaction, 0, len(raw))

	for _, r := range raw {
		key := dedupKey(r)
		if seen[key] {
			continue
		}
		seen[key] = true
		unique = append(unique, r)
	}

	return unique, len(raw) - len(unique)
}

// validateTransactions replays the sorted records against a running
// per-instrument holdings counter. Structural problems (missing fields,
// non-positive numbers) are hard errors; overselling tracked holdings is
// only a warning.
func validateTransactions(transactions []domain.Transaction) []domain.ValidationIssue {
	issues := []domain.ValidationIssue{}
	holdings := map[string]decimal.Decimal{}

	for i, txn := range transactions {
		if txn.Symbol == "" || txn.Date.IsZero() ||
			(txn.Kind != domain.TransactionKindBuy && txn.Kind != domain.TransactionKindSell) {
			issues = append(issues, domain.ValidationIssue{
				Index:    i,
				Code:     domain.IssueCodeMissingFields,
				Severity: domain.IssueSeverityError,
				Message:  fmt.Sprintf("transaction %d is missing required fields", i+1),
			})
			continue
		}

		if !txn.QuantityLots.IsPositive() || !txn.Amount.IsPositive() {
			issues = append(issues, domain.ValidationIssue{
				Index:    i,
				Code:     domain.IssueCodeInvalidNumber,
				Severity: domain.IssueSeverityError,
				Message:  fmt.Sprintf("transaction %d must have quantity and amount > 0", i+1),
			})
			continue
		}

		switch txn.Kind {
		case domain.TransactionKindBuy:
			holdings[txn.Symbol] = holdings[txn.Symbol].Add(txn.QuantityLots)
		case domain.TransactionKindSell:
			held := holdings[txn.Symbol]
			if txn.QuantityLots.GreaterThan(held.Add(oversellToleranceLots)) {
				issues = append(issues, domain.ValidationIssue{
					Index:    i,
					Code:     domain.IssueCodeInsufficientHoldings,
					Severity: domain.IssueSeverityWarning,
					Message: fmt.Sprintf("transaction %d sells %s lots of %s but only %s lots are tracked",
						i+1, txn.QuantityLots.String(), txn.Symbol, held.String()),
				})
			}
			remaining := held.Sub(txn.QuantityLots)
			if remaining.IsNegative() {
				remaining = decimal.Zero
			}
			holdings[txn.Symbol] = remaining
		}
	}

	return issues
}

func summarize(transactions []domain.Transaction) domain.TransactionSummary {
	summary := domain.TransactionSummary{
		Total:         len(transactions),
		TotalInvested: decimal.Zero,
	}

	instruments := map[string]bool{}
	for _, txn := range transactions {
		instruments[txn.Symbol] = true
		switch txn.Kind {
		case domain.TransactionKindBuy:
			summary.BuyCount++
			summary.TotalInvested = summary.TotalInvested.Add(txn.Amount)
		case domain.TransactionKindSell:
			summary.SellCount++
		}
		date := txn.Date
		if summary.StartDate == nil || date.Before(*summary.StartDate) {
			summary.StartDate = &date
		}
		if summary.EndDate == nil || date.After(*summary.EndDate) {
			summary.EndDate = &date
		}
	}
	summary.UniqueInstruments = len(instruments)

	return summary
}
