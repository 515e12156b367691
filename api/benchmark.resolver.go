package api

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
)

type benchmarkRequest struct {
	Symbol      string `json:"symbol"`
	Start       string `json:"start"`
	End         string `json:"end"`
	Granularity string `json:"granularity"`
}

type benchmarkResponse struct {
	Changes         map[string]float64 `json:"changes"`
	AnnualizedStdev float64            `json:"annualizedStdev"`
}

func (m ApiHandler) benchmark(c *gin.Context) {
	var requestBody benchmarkRequest

	if err := c.ShouldBindJSON(&requestBody); err != nil {
		returnErrorJsonCode(fmt.Errorf("failed to read request body: %w", err), c, 400)
		return
	}

	start, err := time.Parse("2006-01-02", requestBody.Start)
	if err != nil {
		returnErrorJsonCode(err, c, 400)
		return
	}
	end, err := time.Parse("2006-01-02", requestBody.End)
	if err != nil {
		returnErrorJsonCode(err, c, 400)
		return
	}

	granularity := time.Hour * 24
	if requestBody.Granularity == "weekly" {
		granularity *= 7
	} else if requestBody.Granularity == "monthly" {
		granularity *= 30
	}

	result, err := m.ChartHandler.GetIntraPeriodChange(
		c.Request.Context(),
		requestBody.Symbol,
		start,
		end,
		granularity,
	)
	if err != nil {
		returnErrorJson(err, c)
		return
	}

	out := benchmarkResponse{
		Changes:         map[string]float64{},
		AnnualizedStdev: result.AnnualizedStdev,
	}
	for k, v := range result.Changes {
		out.Changes[k.Format("2006-01-02")] = v
	}

	c.JSON(200, out)
}
