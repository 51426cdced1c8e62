package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	handler "drop-auction/services/bidding/handler"
)

// Options configures the optional parts of the router
type Options struct {
	AllowOrigins []string
	MetricsPath  string // empty disables the metrics endpoint
}

// SetupRouter configures all Gin routes for the application
func SetupRouter(biddingService handler.BiddingServiceInterface, invoiceService handler.InvoiceServiceInterface, opts Options) *gin.Engine {
	router := gin.New() // New router without default middleware for full control over middleware and logging

	router.Use(gin.Recovery())          // recover from panics
	router.Use(RequestLoggerMiddleware) // custom request logging
	router.Use(corsMiddleware(opts.AllowOrigins))

	biddingHandler := handler.NewBiddingHandler(biddingService, invoiceService)

	bids := router.Group("/bids")
	{
		bids.POST("", biddingHandler.RecordBidHandler)
	}

	items := router.Group("/items")
	{
		items.GET("/:item_id", biddingHandler.GetItemHandler)
		items.GET("/:item_id/bids", biddingHandler.GetBidsByItemHandler)
		items.GET("/:item_id/timer", biddingHandler.GetTimerHandler)
	}

	users := router.Group("/users")
	{
		users.GET("/:user_id/items", biddingHandler.GetItemsByUserHandler)
	}

	invoices := router.Group("/invoices")
	{
		invoices.POST("", biddingHandler.CreateInvoiceHandler)
	}

	if opts.MetricsPath != "" {
		router.GET(opts.MetricsPath, gin.WrapH(promhttp.Handler()))
	}

	return router
}

func corsMiddleware(origins []string) gin.HandlerFunc {
	cfg := cors.DefaultConfig()
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cors.New(cfg)
}
