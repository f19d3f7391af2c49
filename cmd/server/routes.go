package main

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"blackwallet.backend/internal/interfaces/http/handlers"
	"blackwallet.backend/internal/interfaces/http/middleware"
	"blackwallet.backend/pkg/metrics"
)

const (
	serviceName    = "blackwallet-backend"
	serviceVersion = "0.1.0"
)

type routeDeps struct {
	authHandler         *handlers.AuthHandler
	walletHandler       *handlers.WalletHandler
	ledgerHandler       *handlers.LedgerHandler
	approvalHandler     *handlers.ApprovalHandler
	notificationHandler *handlers.NotificationHandler
	contactHandler      *handlers.ContactHandler
	authMiddleware      gin.HandlerFunc
}

func applyCORSMiddleware(r *gin.Engine) {
	r.Use(func(c *gin.Context) {
		if origin := c.GetHeader("Origin"); origin != "" {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Vary", "Origin")
			c.Header("Access-Control-Allow-Credentials", "true")
		}
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Authorization, Content-Type, Idempotency-Key, X-Request-ID")
		c.Header("Access-Control-Expose-Headers", "X-Request-ID, X-Idempotency-Hit")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	})
}

func registerHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": serviceName,
			"version": serviceVersion,
		})
	})
}

func registerMetricsRoute(r *gin.Engine) {
	r.GET("/metrics", gin.WrapH(metrics.Handler()))
}

func registerAPIV1Routes(r *gin.Engine, d routeDeps) {
	v1 := r.Group("/api/v1")
	{
		// Auth routes (public)
		auth := v1.Group("/auth")
		{
			auth.POST("/register", d.authHandler.Register)
			auth.POST("/login", d.authHandler.Login)
			auth.POST("/refresh", d.authHandler.Refresh)
			auth.GET("/me", d.authMiddleware, d.authHandler.Me)
		}

		// Emergency approval (public, the code is the credential)
		v1.GET("/approve", d.approvalHandler.ApprovePage)
		v1.POST("/wallets/limit/approve", d.approvalHandler.Approve)

		wallets := v1.Group("/wallets")
		wallets.Use(d.authMiddleware)
		{
			wallets.POST("", d.walletHandler.CreateWallet)
			wallets.GET("", d.walletHandler.ListWallets)
			wallets.GET("/me", d.walletHandler.GetMyWallet)
			wallets.GET("/:id", d.walletHandler.GetWallet)
			wallets.PUT("/:id/profile", d.walletHandler.UpdateProfile)

			wallets.POST("/deposit", middleware.IdempotencyMiddleware(), d.ledgerHandler.Deposit)
			wallets.POST("/withdraw", middleware.IdempotencyMiddleware(), d.ledgerHandler.Withdraw)
			wallets.POST("/transfer", middleware.IdempotencyMiddleware(), d.ledgerHandler.Transfer)
			wallets.POST("/reward", middleware.IdempotencyMiddleware(), d.ledgerHandler.Reward)
			wallets.GET("/:id/balance", d.ledgerHandler.Balance)
			wallets.GET("/:id/transactions", d.ledgerHandler.Transactions)

			wallets.POST("/:id/request-unlock", d.approvalHandler.RequestUnlock)
			wallets.GET("/:id/approval", d.approvalHandler.ApprovalStatus)
		}

		notifications := v1.Group("/notifications")
		notifications.Use(d.authMiddleware)
		{
			notifications.GET("", d.notificationHandler.List)
			notifications.PUT("/:id/read", d.notificationHandler.MarkRead)
		}

		contacts := v1.Group("/contacts")
		contacts.Use(d.authMiddleware)
		{
			contacts.GET("", d.contactHandler.List)
			contacts.POST("", d.contactHandler.Save)
			contacts.DELETE("/:id", d.contactHandler.Delete)
		}
	}
}
