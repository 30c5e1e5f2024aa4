package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"

	"github.com/npda-audit/platform/pkg/common/config"
	"github.com/npda-audit/platform/pkg/common/database"
	"github.com/npda-audit/platform/pkg/common/kafka"
	"github.com/npda-audit/platform/pkg/common/logger"
	"github.com/npda-audit/platform/pkg/kpi"
	"github.com/npda-audit/platform/pkg/observability/metrics"
	"github.com/npda-audit/platform/pkg/report"
	"github.com/npda-audit/platform/pkg/submission"
)

func main() {
	logger.Init()
	metrics.Init()
	cfg := config.Load()

	db, err := database.GetPostgres()
	if err != nil {
		logger.Log.WithError(err).Fatal("Failed to connect to PostgreSQL")
	}

	repo := submission.NewRepository(db)
	if err := repo.AutoMigrate(); err != nil {
		logger.Log.WithError(err).Fatal("Failed to migrate schema")
	}

	meta, err := report.LoadMetadata(cfg.ReportMetadataPath)
	if err != nil {
		logger.Log.WithError(err).Warn("Falling back to default report metadata")
	}

	cache := submission.NewReportCache(database.GetRedis(), cfg.ReportCacheTTL)
	producer := kafka.NewProducer()
	defer producer.Close()

	service := submission.NewService(
		repo,
		kpi.NewCalculator(cfg.CalculationWorkers),
		report.NewAssembler(meta),
		cache,
		producer,
	)

	// Other instances' submissions invalidate this instance's cached
	// reports.
	consumer := kafka.NewConsumer(kafka.TopicSubmissionFinalized, cfg.KafkaGroupID)
	defer consumer.Close()
	consumerCtx, stopConsumer := context.WithCancel(context.Background())
	go func() {
		if err := consumer.Consume(consumerCtx, service.HandleEvent); err != nil && consumerCtx.Err() == nil {
			logger.Log.WithError(err).Error("Submission event consumer stopped")
		}
	}()

	router := mux.NewRouter()
	router.HandleFunc("/health", healthCheck).Methods("GET")
	router.HandleFunc("/metrics", func(w http.ResponseWriter, r *http.Request) {
		metrics.WritePrometheus(w)
	}).Methods("GET")

	api := router.PathPrefix("/api/v1").Subrouter()
	handler := submission.NewHTTPHandler(service, cfg.MaxRequestBody)
	handler.Register(api)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.ServerHost, cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	go func() {
		logger.Log.WithFields(map[string]interface{}{
			"host": cfg.ServerHost,
			"port": cfg.ServerPort,
		}).Info("KPI Service started")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.WithError(err).Fatal("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Log.Info("Shutting down KPI Service...")
	stopConsumer()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Log.WithError(err).Error("Server forced to shutdown")
	}

	if err := database.ClosePostgres(); err != nil {
		logger.Log.WithError(err).Error("Failed to close PostgreSQL")
	}
	if err := database.CloseRedis(); err != nil {
		logger.Log.WithError(err).Error("Failed to close Redis")
	}

	logger.Log.Info("KPI Service stopped")
}

func healthCheck(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy"}`))
}
