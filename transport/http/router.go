package http

import (
	"github.com/gin-gonic/gin"
	walletlink "github.com/layer-3/walletlink"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// SetupRouter sets up the Gin router
func SetupRouter(client walletlink.Client, gatherer prometheus.Gatherer, logger zerolog.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), RequestLogger(logger))

	// Create handlers
	handlers := NewWalletHandlers(client, logger)

	router.GET("/healthz", handlers.Health)
	if gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}

	// Wallet routes
	wallet := router.Group("/wallet")
	{
		wallet.POST("/initialize", handlers.Initialize)
		wallet.POST("/connect", handlers.Connect)
		wallet.POST("/disconnect", handlers.Disconnect)
		wallet.GET("/state", handlers.State)
		wallet.GET("/events", handlers.Events)
		wallet.GET("/address/:address", handlers.ValidateAddress)
		wallet.GET("/convert", handlers.Convert)
	}

	// Routes that need a connected wallet
	connected := router.Group("/wallet")
	connected.Use(RequireSession(client))
	{
		connected.POST("/sign", handlers.Sign)
		connected.POST("/pay", handlers.Pay)
		connected.POST("/trustline", handlers.TrustLine)
		connected.POST("/refresh", handlers.Refresh)
	}

	return router
}
