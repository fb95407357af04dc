package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bocwatch/aud-cny-rate-widget/internal/application/service"
	"github.com/bocwatch/aud-cny-rate-widget/internal/config"
	"github.com/bocwatch/aud-cny-rate-widget/internal/infrastructure/api"
	"github.com/bocwatch/aud-cny-rate-widget/internal/infrastructure/handler"
	"github.com/bocwatch/aud-cny-rate-widget/internal/infrastructure/logger"
	"github.com/bocwatch/aud-cny-rate-widget/internal/infrastructure/middleware"
	"github.com/bocwatch/aud-cny-rate-widget/internal/infrastructure/widget"
	"github.com/gorilla/mux"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLogger := logger.NewJSONLogger(os.Stdout, logger.ParseLevel(cfg.LogLevel))
	logger.SetDefaultLogger(appLogger)

	appLogger.Info("Starting BOC CNY/AUD rate widget server", map[string]interface{}{
		"addr":     cfg.Addr,
		"upstream": cfg.UpstreamBaseURL,
	})

	// Initialize the fetch pipeline
	ratesClient := api.NewBOCRatesClient(cfg.UpstreamBaseURL, nil, appLogger)
	chartService := service.NewChartService(ratesClient, appLogger)

	// Mount the widget with the process lifetime as its scope
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	component := widget.NewComponent(chartService, appLogger)
	component.Mount(ctx)

	// Setup router
	widgetHandler := handler.NewWidgetHandler(component, appLogger)

	router := mux.NewRouter()
	router.Use(middleware.RequestIDMiddleware)
	router.Use(middleware.LoggingMiddleware(appLogger))
	widgetHandler.RegisterRoutes(router)

	srv := &http.Server{
		Addr:    cfg.Addr,
		Handler: router,
	}

	go func() {
		<-ctx.Done()
		appLogger.Info("Shutting down", nil)
		component.Unmount()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			appLogger.Error("Server shutdown failed", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}()

	appLogger.Info("Server listening", map[string]interface{}{
		"addr": cfg.Addr,
	})
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		appLogger.Fatal("Server failed", map[string]interface{}{
			"error": err.Error(),
		})
	}
}
