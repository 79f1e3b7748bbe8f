package app

import (
	"log/slog"
	"time"

	"github.com/hamstergame/platform/internal/auth"
	"github.com/hamstergame/platform/internal/guard"
	"github.com/hamstergame/platform/internal/handler"
	"github.com/hamstergame/platform/internal/ledger"
	"github.com/hamstergame/platform/internal/metrics"
	"github.com/hamstergame/platform/internal/repository"
	"github.com/hamstergame/platform/internal/service"
	"github.com/go-chi/chi/v5"
)

// RouterDeps holds all dependencies needed by NewRouter.
type RouterDeps struct {
	Store  repository.Store
	JWTMgr *auth.JWTManager
	Logger *slog.Logger

	StartingCashCents   int64
	DailyQuestionCount  int
	MaxPurchaseQuantity int
	CORSOrigin          string

	// Limiter guards mutating routes. Nil disables rate limiting.
	Limiter *guard.RateLimiter

	// Now overrides the engine clock. Nil means time.Now.
	Now func() time.Time
}

// NewRouter assembles the chi.Router with all routes and middleware.
func NewRouter(deps RouterDeps) chi.Router {
	store := deps.Store
	jwtMgr := deps.JWTMgr
	logger := deps.Logger

	// Ledger engine
	engine := ledger.NewEngine(store, logger, ledger.Options{
		MaxPurchaseQuantity: deps.MaxPurchaseQuantity,
		Now:                 deps.Now,
	})

	// Services
	authSvc := service.NewAuthService(store, jwtMgr, deps.StartingCashCents)
	catalogSvc := service.NewCatalogService(store, deps.DailyQuestionCount)
	profileSvc := service.NewProfileService(store, deps.Now)

	// Handlers
	authHandler := handler.NewAuthHandler(authSvc)
	shopHandler := handler.NewShopHandler(catalogSvc, engine)
	dailyHandler := handler.NewDailyHandler(catalogSvc, engine)
	playerHandler := handler.NewPlayerHandler(profileSvc)

	limited := func(r chi.Router) chi.Router { return r }
	if deps.Limiter != nil {
		limited = func(r chi.Router) chi.Router {
			return r.With(handler.RateLimit(deps.Limiter, logger))
		}
	}

	// Router
	r := chi.NewRouter()

	// Global middleware (order matters)
	r.Use(handler.Recovery(logger))
	r.Use(handler.RequestID)
	r.Use(metrics.InstrumentHandler)
	r.Use(handler.RequestLogger(logger))
	r.Use(handler.CORSWithOrigins(deps.CORSOrigin))

	// Prometheus exposition keeps its own content type.
	r.Handle("/metrics", metrics.Handler())

	r.Group(func(r chi.Router) {
		r.Use(handler.JSONContentType)

		// Public
		r.Get("/health", handler.HealthHandler(store))
		limited(r).Post("/auth/login", authHandler.Login)
		r.Get("/catalog", shopHandler.ListCatalog)
		r.Get("/daily/questions", dailyHandler.Questions)

		// Session-authenticated
		r.Group(func(r chi.Router) {
			r.Use(auth.Authenticate(jwtMgr))

			limited(r).Post("/purchase", shopHandler.Purchase)
			limited(r).Post("/daily/answer", dailyHandler.Answer)
			r.Get("/me", playerHandler.GetMe)
			r.Get("/me/transactions", playerHandler.GetTransactions)
		})
	})

	return r
}
