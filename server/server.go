package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"crateaudit/cache"
	"crateaudit/config"
	"crateaudit/core/analytics"
	"crateaudit/core/auth"
	"crateaudit/core/library"
	"crateaudit/db"
	"crateaudit/logger"
	"crateaudit/repository"
	"crateaudit/storage"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Start initializes and starts the HTTP server.
func Start(cfg *config.Config) {
	InitLogger(cfg)
	defer logger.Sync()

	gdb, err := db.ConnectGormDB(cfg)
	if err != nil {
		logger.Fatal("Failed to connect to database", logger.ErrorField(err))
	}
	defer db.CloseGormDB()

	// Redis 不可用时视图缓存退化为每次重新计算
	if err := cache.ConnectRedis(cfg); err != nil {
		logger.Warn("Redis unavailable, view cache disabled", logger.ErrorField(err))
	} else {
		defer cache.CloseRedis()
	}
	views := cache.NewViewCache(cache.RedisClient, cfg.ViewCacheTTL)

	var store library.ExportStore
	if exports, err := NewExportStore(cfg); err != nil {
		logger.Warn("MinIO unavailable, raw exports will not be archived", logger.ErrorField(err))
	} else {
		store = exports
	}

	agg := NewAggregator(cfg)
	libraries := library.NewService(repository.NewGormLibraryRepository(gdb), store, views, agg)
	tokens := auth.NewTokenIssuer(cfg.JWTSecret, cfg.JWTTTL)
	apiHandler := NewAPIHandler(repository.NewGormUserRepository(gdb), libraries, tokens)

	RegisterMetrics()

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      NewRouter(apiHandler),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Server starting",
			logger.String("addr", cfg.HTTPAddr),
			logger.String("vocabulary", agg.Vocabulary().Version),
			logger.Bool("view_cache", views.Enabled()))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", logger.ErrorField(err))
		}
	}()

	<-stop
	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", logger.ErrorField(err))
	}
	logger.Info("Server stopped")
}

// NewRouter wires every API route.
func NewRouter(h *APIHandler) *mux.Router {
	router := mux.NewRouter()
	router.Use(corsMiddleware, metricsMiddleware)

	router.HandleFunc("/api/auth/login", h.LoginHandler).Methods(http.MethodPost)
	router.HandleFunc("/api/auth/register", h.RegisterHandler).Methods(http.MethodPost)

	router.HandleFunc("/api/libraries", h.AuthMiddleware(h.UploadLibraryHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/libraries", h.AuthMiddleware(h.ListLibrariesHandler)).Methods(http.MethodGet)
	router.HandleFunc("/api/libraries/latest", h.AuthMiddleware(h.LatestLibraryHandler)).Methods(http.MethodGet)
	router.HandleFunc("/api/libraries/{id}/analysis", h.AuthMiddleware(h.AnalysisHandler)).Methods(http.MethodGet)
	router.HandleFunc("/api/libraries/{id}/playlists", h.AuthMiddleware(h.PlaylistsHandler)).Methods(http.MethodGet)
	router.HandleFunc("/api/libraries/{id}/export", h.AuthMiddleware(h.ExportHandler)).Methods(http.MethodGet)
	router.HandleFunc("/api/libraries/{id}", h.AuthMiddleware(h.DeleteLibraryHandler)).Methods(http.MethodDelete)

	router.HandleFunc("/ws/dashboard", h.DashboardWebSocketHandler)
	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	// 预检请求由 CORS 中间件应答
	router.Methods(http.MethodOptions).HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})

	return router
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Max-Age", "86400") // 24 hours

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// InitLogger configures the global logger from cfg.
func InitLogger(cfg *config.Config) {
	logger.InitLogger(logger.Config{
		Level:      cfg.LogLevel,
		OutputPath: cfg.LogFile,
		MaxSize:    cfg.LogMaxSize,
		MaxBackups: cfg.LogMaxBackups,
		MaxAge:     cfg.LogMaxAge,
		Compress:   cfg.LogCompress,
	})
}

// NewAggregator builds the aggregator for the configured issue vocabulary.
func NewAggregator(cfg *config.Config) *analytics.Aggregator {
	vocab := analytics.DefaultVocabulary.Extend(cfg.IssueVocabularyVersion, cfg.IssueTypesExtra...)
	return analytics.NewAggregator(vocab)
}

// NewExportStore connects to MinIO and makes sure the export bucket exists.
func NewExportStore(cfg *config.Config) (*storage.ExportStore, error) {
	store, err := storage.NewExportStore(cfg)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := store.EnsureBucket(ctx); err != nil {
		return nil, err
	}
	return store, nil
}
