package api

import (
	"fmt"

	"github.com/gin-gonic/gin"
)

type latestPricesRequest struct {
	Symbols []string `json:"symbols"`
}

func (m ApiHandler) latestPrices(c *gin.Context) {
	var requestBody latestPricesRequest
	if err := c.ShouldBindJSON(&requestBody); err != nil {
		returnErrorJsonCode(fmt.Errorf("failed to read request body: %w", err), c, 400)
		return
	}

	prices := m.PriceService.ResolveBatchLatest(c.Request.Context(), requestBody.Symbols)

	c.JSON(200, gin.H{"prices": prices})
}
