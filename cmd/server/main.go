// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal services packages.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"unemigw/internal/audit"
	"unemigw/internal/httpx"
	"unemigw/internal/platform/config"
	"unemigw/internal/platform/httpserver"
	"unemigw/internal/platform/logger"
	"unemigw/internal/platform/metrics"
	platformredis "unemigw/internal/platform/redis"
	"unemigw/internal/student"
	"unemigw/internal/student/cache"
	"unemigw/internal/student/flow"
	studenthandler "unemigw/internal/student/handler"
	"unemigw/internal/student/search"
	httptransport "unemigw/internal/transport/http"
	"unemigw/internal/upstream/matricula"
	"unemigw/internal/upstream/posgrado"
	"unemigw/internal/upstream/sga"
)

func main() {
	cfg := config.FromEnv()
	log := logger.New(cfg.VerboseLogs)
	m := metrics.New()

	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		log.Error("redis connection failed", "error", err)
		os.Exit(1)
	}

	var store cache.Store
	var redisHealth httptransport.HealthChecker
	if redisClient != nil {
		store = cache.NewRedisStore(redisClient.Client)
		redisHealth = redisClient
		defer redisClient.Close()
	} else {
		log.Warn("no redis configured, using in-process cache")
		store = cache.NewInMemoryStore()
	}

	sgaClient := sga.New(httpx.New(cfg.SGA.Timeout, log), cfg.SGA.BaseURL, m)
	posgradoClient := posgrado.New(httpx.New(cfg.Posgrado.Timeout, log), cfg.Posgrado, m)
	matriculaClient := matricula.New(httpx.New(cfg.Matricula.Timeout, log), cfg.Matricula.BaseURL, m)

	recorder := audit.NewRecorder(256, log)
	auditWorker := audit.NewWorker(audit.NewInMemoryStore(), recorder.Inbox())

	searcher := search.New(sgaClient, posgradoClient, matriculaClient, search.WithLogger(log))
	flowRunner := flow.New(sgaClient, matriculaClient, cfg.DefaultReset,
		flow.WithLogger(log), flow.WithRecorder(recorder))
	svc := student.New(searcher, flowRunner, store, cfg.Cache, m, student.WithLogger(log))

	router := httptransport.NewRouter(studenthandler.New(svc, log), log, redisHealth)
	srv := httpserver.New(cfg.Addr, router)

	workerCtx, stopWorker := context.WithCancel(context.Background())
	defer stopWorker()
	go func() {
		if err := auditWorker.Run(workerCtx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error("audit worker stopped", "error", err)
		}
	}()

	go func() {
		log.Info("starting unemigw", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}
	log.Info("shutdown complete")
}
