package api

import (
	"beat0050/internal"
	"beat0050/internal/app"
	"beat0050/internal/logger"
	"beat0050/internal/service"
	"beat0050/internal/statement"
	"fmt"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type ApiHandler struct {
	CompareHandler app.CompareHandler
	ChartHandler   internal.BenchmarkChartHandler
	PriceService   service.PriceService
	NameMap        *statement.NameMap
	ApiPort        int
}

func (m ApiHandler) InitializeRouterEngine() *gin.Engine {
	router := gin.Default()
	router.Use(cors.Default())
	router.Use(logRequestMiddleware)

	router.GET("/", func(ctx *gin.Context) {
		ctx.JSON(200, map[string]string{"message": "welcome to beat0050"})
	})
	router.POST("/compare", m.compare)
	router.POST("/normalize", m.normalize)
	router.POST("/benchmark", m.benchmark)
	router.POST("/latestPrices", m.latestPrices)
	router.POST("/statement", m.statement)

	return router
}

func (m ApiHandler) StartApi(port int) error {
	router := m.InitializeRouterEngine()
	return router.Run(fmt.Sprintf(":%d", port))
}

func returnErrorJson(err error, c *gin.Context) {
	returnErrorJsonCode(err, c, 500)
}

func returnErrorJsonCode(err error, c *gin.Context, code int) {
	logger.FromContext(c.Request.Context()).Warnf("request failed: %v", err)
	c.AbortWithStatusJSON(code, gin.H{
		"error": err.Error(),
	})
}

func logRequestMiddleware(ctx *gin.Context) {
	log := logger.FromContext(ctx.Request.Context())
	start := time.Now().UTC()

	ctx.Next()

	log.Infow("handled request",
		"method", ctx.Request.Method,
		"route", ctx.Request.URL.Path,
		"status", ctx.Writer.Status(),
		"durationMs", time.Since(start).Milliseconds(),
		"clientIp", ctx.ClientIP(),
	)
}
