// Package app はサブコマンドの解析と依存関係のワイヤリングを行う。
package app

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/hitoshi/autobazar/internal/auth"
	"github.com/hitoshi/autobazar/internal/catalog"
	"github.com/hitoshi/autobazar/internal/config"
	"github.com/hitoshi/autobazar/internal/database"
	"github.com/hitoshi/autobazar/internal/handler"
	"github.com/hitoshi/autobazar/internal/listing"
	"github.com/hitoshi/autobazar/internal/logger"
	"github.com/hitoshi/autobazar/internal/metrics"
	"github.com/hitoshi/autobazar/internal/middleware"
	"github.com/hitoshi/autobazar/internal/repository"
	"github.com/hitoshi/autobazar/internal/user"
	"github.com/hitoshi/autobazar/internal/worker/cleanup"
)

// Init はアプリケーションの初期化を行う。
// 環境変数からConfigを読み込み、JSON構造化ログをセットアップする。
// writerが指定された場合はログ出力先としてそのwriterを使用する。
func Init(w io.Writer) (*config.Config, error) {
	// 1. ログの初期化（設定読み込み前にログを使えるようにする）
	logger.SetupDefault(w, slog.LevelInfo)

	// 2. 環境変数から設定を読み込む
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// 3. 設定されたログレベルで再初期化
	logger.SetupDefault(w, cfg.LogLevel)

	return cfg, nil
}

// Run はアプリケーションのメインエントリーポイント。
// コマンドライン引数からサブコマンドを解析し、対応するモードで起動する。
// argsにはos.Args[1:]を渡す。
func Run(w io.Writer, args []string) error {
	cmd := ParseCommand(args)

	// healthcheck は軽量サブコマンドのため、フル初期化をスキップする
	if cmd == CommandHealthcheck {
		port := os.Getenv("SERVER_PORT")
		if port == "" {
			port = "8080"
		}
		return runHealthcheck(port)
	}

	cfg, err := Init(w)
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	slog.Info("starting application",
		slog.String("command", string(cmd)),
		slog.String("port", cfg.ServerPort),
		slog.String("base_url", cfg.BaseURL),
	)

	switch cmd {
	case CommandMigrate:
		return runMigrate(cfg)
	case CommandCleanup:
		return runCleanup(cfg)
	default:
		return runServe(cfg)
	}
}

// openDatabase はDB接続を開き、疎通を確認する。
func openDatabase(cfg *config.Config) (*sql.DB, database.Dialect, error) {
	db, dialect, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open database: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, "", fmt.Errorf("failed to connect to database: %w", err)
	}

	slog.Info("database connection established", slog.String("dialect", string(dialect)))
	return db, dialect, nil
}

// buildRouter は全依存関係をワイヤリングしてHTTPハンドラーを構築する。
// メトリクスはregに登録する。
func buildRouter(cfg *config.Config, db *sql.DB, dialect database.Dialect, reg *prometheus.Registry) (http.Handler, error) {
	// 1. 車種カタログ
	cat, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}

	policy, err := auth.NewIdentityPolicy(cfg.AllowedEmailDomains)
	if err != nil {
		return nil, fmt.Errorf("invalid ALLOWED_EMAIL_DOMAINS: %w", err)
	}

	// 2. リポジトリの初期化
	userRepo := repository.NewSQLUserRepo(db, dialect)
	sessionRepo := repository.NewSQLSessionRepo(db, dialect)
	listingRepo := repository.NewSQLListingRepo(db, dialect)
	auditRepo := repository.NewSQLLoginAuditRepo(db, dialect)

	// 3. メトリクス
	collector := metrics.NewCollector(reg)

	// 4. ドメインサービスの初期化
	credentials := auth.NewCredentialStore(userRepo, policy, auth.CredentialConfig{BcryptCost: cfg.BcryptCost})
	sessions := auth.NewSessionManager(sessionRepo, time.Duration(cfg.SessionMaxAge)*time.Second)

	userService := user.NewService(credentials, sessions, userRepo, auditRepo, collector)
	listingService := listing.NewService(listingRepo, listing.Rules{
		Catalog:      cat,
		YearMin:      cfg.YearMin,
		YearMax:      cfg.YearMax,
		PriceMileage: cfg.ListingPriceMileage,
	}, collector)

	// 5. ルーターの構築
	deps := &handler.RouterDeps{
		PrincipalResolver: sessions,
		CORSAllowedOrigin: cfg.CORSAllowedOrigin,
		SecurityHeaders:   middleware.SecurityHeadersConfig{HSTS: cfg.CookieSecure},
		CSRFConfig: middleware.CSRFConfig{
			CookieSecure: cfg.CookieSecure,
			CookieDomain: cfg.CookieDomain,
		},
		Metrics: collector,
		Logger:  slog.Default(),

		HealthChecker:  db,
		MetricsHandler: metrics.Handler(reg),

		AuthService: userService,
		AuthConfig: handler.AuthHandlerConfig{
			CookieDomain:    cfg.CookieDomain,
			CookieSecure:    cfg.CookieSecure,
			SessionMaxAge:   cfg.SessionMaxAge,
			SessionRemember: cfg.SessionRemember,
		},

		ListingService: listingService,
		Catalog:        cat,
	}

	return handler.NewRouter(deps), nil
}

// runServe はAPIサーバーモードで起動する。
// DB接続を開き、全依存関係をワイヤリングし、HTTPサーバーを起動する。
// SIGINTまたはSIGTERMシグナルを受信するとグレースフルシャットダウンを行う。
func runServe(cfg *config.Config) error {
	db, dialect, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	router, err := buildRouter(cfg, db, dialect, reg)
	if err != nil {
		return err
	}

	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// グレースフルシャットダウンのためのシグナルハンドリング
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("API server starting",
			slog.String("addr", server.Addr),
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		return fmt.Errorf("server listen error: %w", err)
	case <-stop:
	}
	slog.Info("shutting down API server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	slog.Info("API server stopped gracefully")
	return nil
}

// runMigrate はデータベースマイグレーションを実行する。
// すべての未適用マイグレーションを順番に適用する。
func runMigrate(cfg *config.Config) error {
	slog.Info("running database migrations",
		slog.String("database_url", database.RedactURL(cfg.DatabaseURL)),
	)

	if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	slog.Info("database migrations completed successfully")
	return nil
}

// runCleanup は期限切れセッションの削除を1回実行する。
func runCleanup(cfg *config.Config) error {
	db, dialect, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	job := cleanup.NewCleanupJob(repository.NewSQLSessionRepo(db, dialect), slog.Default())
	job.RetentionDays = cfg.SessionRetentionDays

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	return job.Run(ctx)
}

// runHealthcheck はヘルスチェックを実行する。
// distroless環境でのDockerヘルスチェック用サブコマンド。
// /health エンドポイントにHTTPリクエストを送り、結果を返す。
func runHealthcheck(port string) error {
	url := fmt.Sprintf("http://localhost:%s/health", port)
	client := &http.Client{Timeout: 5 * time.Second}

	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}

	return nil
}
