package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	config "github.com/davicafu/eventpub/internal/config"
	"github.com/davicafu/eventpub/internal/event/application"
	"github.com/davicafu/eventpub/internal/event/domain"
	eventHttp "github.com/davicafu/eventpub/internal/event/infra/inbound/http"
	"github.com/davicafu/eventpub/internal/event/infra/metrics"
	"github.com/davicafu/eventpub/internal/event/infra/relayer"
	"github.com/davicafu/eventpub/pkg/logger"
)

// ---------------- Main ----------------
func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Init("info")
		logger.Logger().Fatal("invalid configuration", zap.Error(err))
	}

	logger.Init(cfg.LogLevel)
	log := logger.With(zap.String("service", cfg.ServiceName))
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ---------------- Tablas ----------------
	routes, err := domain.NewDefaultRoutingTable()
	if err != nil {
		log.Fatal("invalid routing table", zap.Error(err))
	}
	shapes, err := domain.NewDefaultShapeTable()
	if err != nil {
		log.Fatal("invalid payload shape table", zap.Error(err))
	}

	// ---------------- Métricas ----------------
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(registry)

	// ---------------- Transporte ----------------
	sender, closeSender := buildSender(cfg, log)
	defer closeSender()
	instrumentedSender := metrics.NewInstrumentedSender(sender, m)

	// ---------------- Persistencia ----------------
	backup, err := buildPersistence(ctx, cfg, log)
	if err != nil {
		log.Fatal("failed to initialize persistence backend",
			zap.String("backend", cfg.Persistence),
			zap.Error(err))
	}
	defer backup.close()
	persistence := metrics.NewInstrumentedPersistence(backup.persistence, cfg.Persistence, m)

	// ---------------- Publisher ----------------
	publisher, err := application.NewPublisher(routes, shapes, instrumentedSender, persistence, log)
	if err != nil {
		log.Fatal("publisher self-check failed", zap.Error(err))
	}

	// ------------ Replay Worker ------------
	if cfg.ReplayEnabled {
		if backup.replay == nil {
			log.Warn("⚠️ Reenvío activado pero el backend no lo soporta",
				zap.String("backend", cfg.Persistence))
		} else {
			worker := relayer.NewReplayWorker(backup.replay, instrumentedSender, cfg.ReplayPeriod, cfg.ReplayBatchSize, m, log)
			go worker.Start(ctx)
		}
	}

	// ---------------- HTTP ----------------
	router := gin.New()
	router.Use(gin.Recovery())
	eventHttp.RegisterEventRoutes(router, eventHttp.NewEventHandler(publisher))
	eventHttp.RegisterOpsRoutes(router, registry)

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info("🚀 Server running",
			zap.String("url", "http://localhost:"+cfg.HTTPPort),
			zap.String("sender", cfg.Sender),
			zap.String("persistence", cfg.Persistence))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("🛑 Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", zap.Error(err))
	}
}
