package server

import (
	"context"
	"net/http"

	"github.com/soyaya/boardling/internal/auth"
	"github.com/soyaya/boardling/internal/config"
	"github.com/soyaya/boardling/internal/earnings"
	"github.com/soyaya/boardling/internal/grant"
	"github.com/soyaya/boardling/internal/invoice"
	"github.com/soyaya/boardling/internal/ledger"
	"github.com/soyaya/boardling/internal/privacy"
	"github.com/soyaya/boardling/internal/resource"
	"github.com/soyaya/boardling/internal/user"
	"github.com/soyaya/boardling/internal/withdrawal"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
)

// Deps carries the services constructed in main. Handlers that only need a
// repository build their own from the db handle.
type Deps struct {
	Invoices       invoice.Service
	Withdrawals    withdrawal.Service
	WithdrawalRepo withdrawal.Repository
	Resources      resource.Repository
	Privacy        privacy.Service
}

type Server struct {
	router *gin.Engine
	srv    *http.Server
	db     *sqlx.DB
	config *config.Config
}

func New(db *sqlx.DB, cfg *config.Config, deps Deps) *Server {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(corsMiddleware())
	router.Use(RequestLoggingMiddleware())
	router.Use(MetricsMiddleware())
	router.Use(RateLimitMiddleware(20, 40))

	userHandler := user.NewHandler(db, cfg.JWTSecret)
	ledgerHandler := ledger.NewHandler(db)
	invoiceHandler := invoice.NewHandler(db, deps.Invoices)
	withdrawalHandler := withdrawal.NewHandler(db, deps.Withdrawals, deps.WithdrawalRepo)
	resourceHandler := resource.NewHandler(db, deps.Resources, deps.Privacy)
	earningsHandler := earnings.NewHandler(db)
	grantHandler := grant.NewHandler(db)

	public := router.Group("/auth")
	{
		public.POST("/register", userHandler.Register)
		public.POST("/login", userHandler.Login)
		public.POST("/refresh", userHandler.Refresh)
	}

	callbacks := router.Group("/callbacks")
	callbacks.Use(CallbackAuthMiddleware(cfg.CallbackToken))
	{
		callbacks.POST("/payments", invoiceHandler.Confirm)
		callbacks.POST("/payouts/:withdrawalID/complete", withdrawalHandler.ResolveComplete)
		callbacks.POST("/payouts/:withdrawalID/fail", withdrawalHandler.ResolveFail)
	}

	authMiddleware := auth.AuthMiddleware(cfg.JWTSecret)
	protected := router.Group("/")
	protected.Use(authMiddleware)
	{
		protected.GET("/me", userHandler.GetMe)

		protected.GET("/balance", ledgerHandler.GetBalance)
		protected.GET("/ledger/entries", ledgerHandler.ListEntries)

		protected.POST("/invoices", invoiceHandler.Create)
		protected.GET("/invoices", invoiceHandler.List)
		protected.GET("/invoices/:invoiceID", invoiceHandler.Get)

		protected.POST("/withdrawals", withdrawalHandler.Request)
		protected.GET("/withdrawals", withdrawalHandler.List)
		protected.GET("/withdrawals/:withdrawalID", withdrawalHandler.Get)

		protected.POST("/resources", resourceHandler.Register)
		protected.GET("/resources", resourceHandler.List)
		protected.GET("/resources/:resourceID/stats", resourceHandler.Stats)
		protected.GET("/resources/:resourceID/access", resourceHandler.CheckAccess)
		protected.PUT("/resources/:resourceID/privacy", resourceHandler.SetPrivacy)
		protected.GET("/resources/:resourceID/audit", resourceHandler.Audit)

		protected.GET("/earnings", earningsHandler.List)
		protected.GET("/grants", grantHandler.List)
	}

	adminMiddleware := auth.RequireRole("admin")
	admin := router.Group("/admin")
	admin.Use(authMiddleware, adminMiddleware)
	{
		admin.POST("/invoices/expire", invoiceHandler.ExpireNow)
	}

	router.GET("/health", Health)
	router.GET("/metrics", Metrics())

	return &Server{
		router: router,
		db:     db,
		config: cfg,
	}
}

func (s *Server) Start(port string) error {
	s.srv = &http.Server{
		Addr:    ":" + port,
		Handler: s.router,
	}
	return s.srv.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	return s.srv.Shutdown(ctx)
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}
