package api

import (
	"beat0050/internal"
	"fmt"

	"github.com/gin-gonic/gin"
)

type normalizeRequest struct {
	Transactions []apiTransaction `json:"transactions"`
}

func (m ApiHandler) normalize(c *gin.Context) {
	var requestBody normalizeRequest
	if err := c.ShouldBindJSON(&requestBody); err != nil {
		returnErrorJsonCode(fmt.Errorf("failed to read request body: %w", err), c, 400)
		return
	}

	raw, err := rawTransactionsFromRequest(requestBody.Transactions)
	if err != nil {
		returnErrorJsonCode(err, c, 400)
		return
	}

	result := internal.NormalizeTransactions(c.Request.Context(), raw)

	c.JSON(200, gin.H{
		"transactions":   result.Transactions,
		"duplicateCount": result.DuplicateCount,
		"issues":         result.Issues,
		"summary":        result.Summary,
		"valid":          result.Valid(),
	})
}
