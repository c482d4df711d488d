package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/hitoshi/autobazar/internal/metrics"
	"github.com/hitoshi/autobazar/internal/middleware"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	PrincipalResolver middleware.PrincipalResolver
	CORSAllowedOrigin string
	SecurityHeaders   middleware.SecurityHeadersConfig
	CSRFConfig        middleware.CSRFConfig
	Metrics           metrics.MetricsCollector
	Logger            *slog.Logger

	// 運用
	HealthChecker  HealthChecker
	MetricsHandler http.Handler

	// 認証
	AuthService AuthServiceInterface
	AuthConfig  AuthHandlerConfig

	// 掲載
	ListingService ListingServiceInterface
	Catalog        CatalogReader
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	RequestID → Recovery → SecurityHeaders → CORS → Metrics → Session → Logging → CSRF
//
// Sessionは未ログインのリクエストも拒否せず匿名として通す。
// 認証の要否は各ユースケースが判定する。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	mc := deps.Metrics
	if mc == nil {
		mc = metrics.Nop{}
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r.Use(chimw.RequestID)
	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewSecurityHeadersMiddleware(deps.SecurityHeaders))
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	r.Use(middleware.NewMetricsMiddleware(mc))

	// --- 運用エンドポイント（セッション解決・CSRF不要） ---
	r.Get("/health", NewHealthHandler(deps.HealthChecker))
	if deps.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", deps.MetricsHandler)
	}

	authHandler := NewAuthHandler(deps.AuthService, deps.AuthConfig)
	listingHandler := NewListingHandler(deps.ListingService)
	catalogHandler := NewCatalogHandler(deps.Catalog)

	r.Group(func(r chi.Router) {
		r.Use(middleware.NewSessionMiddleware(deps.PrincipalResolver))
		r.Use(middleware.NewLoggingMiddleware(logger))
		r.Use(middleware.NewCSRFMiddleware(deps.CSRFConfig))

		r.Get("/api/csrf-token", middleware.NewCSRFTokenHandler(deps.CSRFConfig).ServeHTTP)

		// アカウント
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)
			r.Post("/logout", authHandler.Logout)
			r.Get("/me", authHandler.Me)
			r.Get("/logins", authHandler.RecentLogins)
		})

		// ブランド・モデル一覧
		r.Route("/api/brands", func(r chi.Router) {
			r.Get("/", catalogHandler.ListBrands)
			r.Get("/{brand}/models", catalogHandler.ListModels)
		})

		// 掲載管理
		r.Route("/api/listings", func(r chi.Router) {
			r.Get("/", listingHandler.ListMyListings)
			r.Post("/", listingHandler.AddListing)
			r.Delete("/{id}", listingHandler.DeleteListing)
		})
	})

	return r
}
