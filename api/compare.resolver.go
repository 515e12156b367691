package api

import (
	"beat0050/internal/domain"
	"beat0050/internal/util"
	"errors"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type apiTransaction struct {
	RowNumber    int             `json:"rowNumber"`
	Symbol       string          `json:"symbol"`
	Name         string          `json:"name"`
	Kind         string          `json:"kind"`
	Date         string          `json:"date"`
	QuantityLots decimal.Decimal `json:"quantityLots"`
	Amount       decimal.Decimal `json:"amount"`
	Fee          decimal.Decimal `json:"fee"`
	Tax          decimal.Decimal `json:"tax"`
}

type compareRequest struct {
	Transactions []apiTransaction `json:"transactions"`
}

func rawTransactionsFromRequest(in []apiTransaction) ([]domain.RawTransaction, error) {
	out := make([]domain.RawTransaction, 0, len(in))
	for i, txn := range in {
		date, err := util.ParseFlexibleDate(txn.Date)
		if err != nil {
			return nil, fmt.Errorf("transaction %d: %w", i+1, err)
		}
		out = append(out, domain.RawTransaction{
			RowNumber:    txn.RowNumber,
			Symbol:       txn.Symbol,
			Name:         txn.Name,
			Kind:         domain.TransactionKind(txn.Kind),
			Date:         date,
			QuantityLots: txn.QuantityLots,
			Amount:       txn.Amount,
			Fee:          txn.Fee,
			Tax:          txn.Tax,
		})
	}
	return out, nil
}

func (m ApiHandler) compare(c *gin.Context) {
	var requestBody compareRequest
	if err := c.ShouldBindJSON(&requestBody); err != nil {
		returnErrorJsonCode(fmt.Errorf("failed to read request body: %w", err), c, 400)
		return
	}

	raw, err := rawTransactionsFromRequest(requestBody.Transactions)
	if err != nil {
		returnErrorJsonCode(err, c, 400)
		return
	}

	result, err := m.CompareHandler.Compare(c.Request.Context(), raw)
	if errors.Is(err, domain.ErrInvalidTransactions) {
		c.AbortWithStatusJSON(400, gin.H{
			"error":  err.Error(),
			"issues": result.Normalize.Issues,
		})
		return
	}
	if domain.IsPriceUnavailable(err) {
		returnErrorJsonCode(err, c, 422)
		return
	}
	if err != nil {
		returnErrorJson(err, c)
		return
	}

	c.JSON(200, result)
}
