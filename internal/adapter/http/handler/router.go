package handler

import (
	"revpay/internal/adapter/http/middleware"
	redisStore "revpay/internal/adapter/storage/redis"
	"revpay/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	AuthSvc         ports.AuthService
	LedgerSvc       ports.LedgerService
	ReportingSvc    ports.ReportingService
	MoneyRequestSvc ports.MoneyRequestService
	InvoiceSvc      ports.InvoiceService
	LoanSvc         ports.LoanService
	MethodSvc       ports.PaymentMethodService
	NotificationSvc ports.NotificationService // nil = notifications disabled
	TokenSvc        ports.TokenService
	RateLimitStore  *redisStore.RateLimitStore // nil = rate limiting disabled
	HealthCheckers  []ports.HealthChecker
	Logger          zerolog.Logger
}

// SetupRouter initialises the Gin engine with all routes and middleware.
func SetupRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.MaxBodySize(1 << 20)) // 1 MB request body limit

	// Security notifications (after response)
	if deps.NotificationSvc != nil {
		r.Use(middleware.SecurityNotifier(deps.NotificationSvc))
	}

	// Health check (deep — verifies PostgreSQL + Redis)
	r.GET("/health", HealthCheck(deps.HealthCheckers...))

	// Rate limit rules
	rules := middleware.DefaultRateLimitRules()

	// Helper: return rate limiter middleware if store is available, else noop.
	rl := func(group string) gin.HandlerFunc {
		if deps.RateLimitStore == nil {
			return func(c *gin.Context) { c.Next() }
		}
		rule, ok := rules[group]
		if !ok {
			return func(c *gin.Context) { c.Next() }
		}
		return middleware.RateLimiter(deps.RateLimitStore, group, rule, deps.Logger)
	}

	// API v1 routes
	v1 := r.Group("/api/v1")

	// --- Public routes (no auth) ---
	authHandler := NewAuthHandler(deps.AuthSvc)
	auth := v1.Group("/auth")
	{
		auth.POST("/register", rl("auth_register"), authHandler.Register)
		auth.POST("/login", rl("auth_login"), authHandler.Login)
	}

	// --- JWT-authenticated routes ---
	jwtAuth := middleware.JWTAuth(deps.TokenSvc, deps.Logger)

	v1.PUT("/auth/pin", jwtAuth, rl("writes"), authHandler.SetPin)

	walletHandler := NewWalletHandler(deps.LedgerSvc, deps.ReportingSvc, deps.NotificationSvc)
	wallet := v1.Group("/wallet", jwtAuth)
	{
		wallet.GET("/balance", rl("reads"), walletHandler.GetBalance)
		wallet.GET("/history", rl("reads"), walletHandler.GetHistory)
		wallet.POST("/deposit", rl("movements"), walletHandler.Deposit)
		wallet.POST("/withdraw", rl("movements"), walletHandler.Withdraw)
	}

	transferHandler := NewTransferHandler(deps.LedgerSvc, deps.NotificationSvc)
	v1.POST("/transfers", jwtAuth, rl("movements"), transferHandler.Transfer)
	v1.POST("/payments/collect", jwtAuth, rl("movements"), transferHandler.AcceptPayment)

	requestHandler := NewMoneyRequestHandler(deps.MoneyRequestSvc)
	requests := v1.Group("/money-requests", jwtAuth)
	{
		requests.POST("", rl("writes"), requestHandler.Create)
		requests.GET("", rl("reads"), requestHandler.List)
		requests.POST("/:id/accept", rl("movements"), requestHandler.Accept)
		requests.POST("/:id/decline", rl("writes"), requestHandler.Decline)
		requests.POST("/:id/cancel", rl("writes"), requestHandler.Cancel)
	}

	invoiceHandler := NewInvoiceHandler(deps.InvoiceSvc)
	invoices := v1.Group("/invoices", jwtAuth)
	{
		invoices.POST("", rl("writes"), invoiceHandler.Issue)
		invoices.GET("/issued", rl("reads"), invoiceHandler.ListIssued)
		invoices.GET("/received", rl("reads"), invoiceHandler.ListReceived)
		invoices.POST("/:id/pay", rl("movements"), invoiceHandler.Pay)
		invoices.POST("/:id/cancel", rl("writes"), invoiceHandler.Cancel)
	}

	loanHandler := NewLoanHandler(deps.LoanSvc)
	loans := v1.Group("/loans", jwtAuth)
	{
		loans.POST("", rl("writes"), loanHandler.Apply)
		loans.GET("", rl("reads"), loanHandler.List)
		loans.POST("/:id/decide", rl("writes"), loanHandler.Decide)
	}

	methodHandler := NewPaymentMethodHandler(deps.MethodSvc)
	methods := v1.Group("/payment-methods", jwtAuth)
	{
		methods.POST("", rl("writes"), methodHandler.Add)
		methods.GET("", rl("reads"), methodHandler.List)
		methods.DELETE("/:id", rl("writes"), methodHandler.Deactivate)
	}

	if deps.NotificationSvc != nil {
		notificationHandler := NewNotificationHandler(deps.NotificationSvc)
		notifications := v1.Group("/notifications", jwtAuth)
		{
			notifications.GET("", rl("reads"), notificationHandler.List)
			notifications.POST("/:id/read", rl("writes"), notificationHandler.MarkRead)
			notifications.POST("/read-all", rl("writes"), notificationHandler.MarkAllRead)
		}
	}

	return r
}
