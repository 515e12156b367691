package api

import (
	"beat0050/internal/statement"
	"fmt"

	"github.com/gin-gonic/gin"
)

// statement accepts a broker CSV export as a multipart upload and returns
// the decoded records plus per-row decode errors. The caller feeds the
// records back into /compare.
func (m ApiHandler) statement(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		returnErrorJsonCode(fmt.Errorf("failed to read uploaded file: %w", err), c, 400)
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		returnErrorJson(fmt.Errorf("failed to open uploaded file: %w", err), c)
		return
	}
	defer f.Close()

	transactions, rowErrors, err := statement.ParseCathayStatement(f, m.NameMap)
	if err != nil {
		returnErrorJsonCode(err, c, 400)
		return
	}

	c.JSON(200, gin.H{
		"transactions": transactions,
		"errors":       rowErrors,
	})
}
