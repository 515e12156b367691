package statement

import (
	"beat0050/internal/domain"
	"beat0050/internal/util"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/shopspring/decimal"
)

// cathayRow mirrors the Cathay Securities transaction export columns.
// Numbers come through as strings because the export thousands-separates
// them.
type cathayRow struct {
	StockName       string `csv:"股票名稱"`
	Date            string `csv:"日期"`
	Shares          string `csv:"股數"`
	TransactionType string `csv:"交易別"`
	BuyAmount       string `csv:"買進價金"`
	SellAmount      string `csv:"賣出價金"`
	Fee             string `csv:"手續費"`
	Tax             string `csv:"交易稅"`
}

// RowError reports one statement row that could not be decoded.
type RowError struct {
	RowNumber int    `json:"rowNumber"`
	Message   string `json:"message"`
}

var sharesPerLot = decimal.NewFromInt(1000)

// ParseCathayStatement decodes a Cathay Securities CSV export into raw
// transaction records. Bad rows don't abort the parse; each maps to a
// RowError and the rest of the statement still comes through.
func ParseCathayStatement(r io.Reader, nameMap *NameMap) ([]domain.RawTransaction, []RowError, error) {
	rows := []cathayRow{}
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return nil, nil, fmt.Errorf("failed to parse statement csv: %w", err)
	}

	transactions := []domain.RawTransaction{}
	rowErrors := []RowError{}

	for i, row := range rows {
		rowNumber := i + 1
		txn, err := parseCathayRow(row, rowNumber, nameMap)
		if err != nil {
			rowErrors = append(rowErrors, RowError{
				RowNumber: rowNumber,
				Message:   err.Error(),
			})
			continue
		}
		transactions = append(transactions, *txn)
	}

	return transactions, rowErrors, nil
}

func parseCathayRow(row cathayRow, rowNumber int, nameMap *NameMap) (*domain.RawTransaction, error) {
	stockName := strings.TrimSpace(row.StockName)
	transactionType := strings.TrimSpace(row.TransactionType)

	if stockName == "" || strings.TrimSpace(row.Date) == "" ||
		strings.TrimSpace(row.Shares) == "" || transactionType == "" {
		return nil, fmt.Errorf("row %d: missing required fields", rowNumber)
	}

	symbol := nameMap.Lookup(stockName)
	if symbol == "" {
		return nil, fmt.Errorf("row %d: unknown instrument %q", rowNumber, stockName)
	}

	kind := domain.TransactionKindSell
	amountStr := row.SellAmount
	if strings.Contains(transactionType, "買") {
		kind = domain.TransactionKindBuy
		amountStr = row.BuyAmount
	}

	amount, err := parseAmount(amountStr)
	if err != nil || !amount.IsPositive() {
		return nil, fmt.Errorf("row %d: invalid transaction amount %q", rowNumber, amountStr)
	}

	shares, err := parseAmount(row.Shares)
	if err != nil || !shares.IsPositive() {
		return nil, fmt.Errorf("row %d: invalid share count %q", rowNumber, row.Shares)
	}

	date, err := util.ParseFlexibleDate(row.Date)
	if err != nil {
		return nil, fmt.Errorf("row %d: invalid date %q", rowNumber, row.Date)
	}
	if date.After(time.Now().UTC()) {
		return nil, fmt.Errorf("row %d: date %s is in the future", rowNumber, date.Format("2006-01-02"))
	}

	fee, _ := parseAmount(row.Fee)
	tax, _ := parseAmount(row.Tax)

	return &domain.RawTransaction{
		RowNumber:    rowNumber,
		Symbol:       symbol,
		Name:         stockName,
		Kind:         kind,
		Date:         date,
		QuantityLots: shares.Div(sharesPerLot),
		Amount:       amount,
		Fee:          fee,
		Tax:          tax,
	}, nil
}

func parseAmount(s string) (decimal.Decimal, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(s)
}
