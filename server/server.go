package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ListenTogether/cache"
	"ListenTogether/config"
	"ListenTogether/core/room"
	"ListenTogether/logger"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewHandler 在路由外层包裹 CORS，预检请求不经过路由的方法匹配
func NewHandler(handler *SessionHandler, store *cache.SessionStore) http.Handler {
	return corsMiddleware(NewRouter(handler, store))
}

// NewRouter 组装路由和中间件
func NewRouter(handler *SessionHandler, store *cache.SessionStore) *mux.Router {
	router := mux.NewRouter()
	router.Use(accessMiddleware)

	router.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{
			"status":  "ok",
			"backend": store.BackendName(),
		})
	}).Methods(http.MethodGet)
	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	RegisterSessionRoutes(router, handler)
	return router
}

// Start initializes and starts the HTTP server, blocking until SIGINT/SIGTERM.
func Start(cfg *config.Config) {
	// 内存回退存储在进程启动时构造一次
	fallback := cache.NewFallbackStore(cache.WithFallbackTTL(cfg.SessionTTL))
	provider := cache.NewEnvRedisProvider(cfg.KeyPrefix, cfg.SessionTTL)
	defer provider.Close()

	store := cache.NewSessionStore(fallback, cache.WithDurable(provider))
	engine := room.NewSyncEngine(store)
	manager := room.NewManager(store, room.NewCodeGenerator())

	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      NewHandler(NewSessionHandler(engine, manager), store),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go RunJanitor(ctx, store, cfg.CleanupInterval)

	// 创建一个通道来接收操作系统信号
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("服务器启动",
			logger.String("addr", server.Addr),
			logger.String("backend", store.BackendName()))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("服务器启动失败", logger.ErrorField(err))
		}
	}()

	// 等待中断信号
	<-stop
	logger.Info("正在关闭服务器...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("服务器强制关闭", logger.ErrorField(err))
		return
	}
	logger.Info("服务器已停止")
}
