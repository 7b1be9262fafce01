package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
	"jo3qma.com/gixen/internal/config"
	"jo3qma.com/gixen/internal/handler"
	"jo3qma.com/gixen/internal/infrastructure/gixen"
	"jo3qma.com/gixen/internal/usecase"
)

func main() {
	configPath := flag.String("config", "", "path to config.toml")
	flag.Parse()

	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatal("❌ Failed to load config", zap.Error(err))
	}

	// 依存関係の組み立て（依存性注入）
	// Gixen のクライアントをリポジトリとして注入する
	opts := []gixen.Option{
		gixen.WithBaseURL(cfg.BaseURL),
		gixen.WithTimeout(cfg.Timeout),
	}
	if cfg.TrustAnchor != "" {
		opts = append(opts, gixen.WithTrustAnchorFile(cfg.TrustAnchor))
	}
	client, err := gixen.NewGixenClient(cfg.Username, cfg.Password, opts...)
	if err != nil {
		logger.Fatal("❌ Failed to create gixen client", zap.Error(err))
	}

	uc := usecase.NewSnipeUsecase(client)
	h := handler.NewSnipeHandler(uc, logger)

	// Connectハンドラーの登録
	mux := http.NewServeMux()
	path, svc := handler.NewSnipeServiceHandler(h)
	mux.Handle(path, svc)

	srv := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      otelhttp.NewHandler(mux, handler.SnipeServiceName),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.Timeout*2 + 15*time.Second, // ListSnipes は2回リクエストする
		IdleTimeout:  60 * time.Second,
	}

	// グレースフルシャットダウンの設定
	go func() {
		logger.Info("🚀 Server starting", zap.String("addr", cfg.ListenAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("❌ Server failed to start", zap.Error(err))
		}
	}()

	// シグナル待機（Ctrl+Cなど）
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("🛑 Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("❌ Server forced to shutdown", zap.Error(err))
	}

	logger.Info("✅ Server exited")
}
