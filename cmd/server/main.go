package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/jo-hoe/lensgallery/internal/common"
	"github.com/jo-hoe/lensgallery/internal/core"
	frontend "github.com/jo-hoe/lensgallery/internal/frontend"
	"github.com/jo-hoe/lensgallery/internal/gallery"
	"github.com/jo-hoe/lensgallery/internal/telemetry"
)

const uploadBodyLimit = "32M"

func getConfigPath() string {
	// First check if config path is provided via environment variable
	if configPath := os.Getenv("CONFIG_PATH"); configPath != "" {
		return configPath
	}

	// Default to config.yaml in current working directory
	cwd, err := os.Getwd()
	if err != nil {
		panic(err)
	}
	return filepath.Join(cwd, "config.yaml")
}

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("failed to load .env file", "error", err)
	}

	// Load configuration
	configPath := getConfigPath()
	config, err := core.LoadConfig(configPath)
	if err != nil {
		slog.Error("failed to load config", "path", configPath, "error", err)
		os.Exit(1)
	}

	logger := core.NewLogger(config.Log, os.Stdout)
	slog.SetDefault(logger)

	metrics := telemetry.NewMetrics()
	api, err := gallery.NewClient(config.API.BaseURL, config.API.Timeout,
		gallery.WithMetrics(metrics),
		gallery.WithLogger(logger))
	if err != nil {
		slog.Error("failed to create gallery api client", "error", err)
		os.Exit(1)
	}

	clientContext := core.NewContext(api,
		core.WithNotifier(frontend.Notifier()),
		core.WithConfirmer(frontend.Confirmer()),
		core.WithLogger(logger),
		core.WithMetrics(metrics))
	galleryClient, err := core.NewGalleryClient(clientContext, config,
		core.WithCardTemplate(frontend.NewCardTemplate()))
	if err != nil {
		slog.Error("failed to create gallery client", "error", err)
		os.Exit(1)
	}

	appCtx, stopApp := context.WithCancel(context.Background())
	defer stopApp()
	if err := galleryClient.Start(appCtx); err != nil {
		slog.Error("failed to start gallery client", "error", err)
		os.Exit(1)
	}

	server := defineServer(metrics)
	frontendService := frontend.NewFrontendService(config, galleryClient)
	frontendService.SetRoutes(server)

	portString := fmt.Sprintf(":%d", config.Port)

	// Start HTTP server in a goroutine to allow graceful shutdown
	go func() {
		if err := server.Start(portString); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server error", "error", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	slog.Info("shutdown signal received")

	galleryClient.Stop()
	stopApp()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		slog.Error("server shutdown error", "error", err)
	}
}

func defineServer(metrics *telemetry.Metrics) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	// Configure request logger to skip the probe and metrics endpoints
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/probe" || c.Path() == "/metrics"
		},
		LogStatus:    true,
		LogLatency:   true,
		LogMethod:    true,
		LogURI:       true,
		LogError:     true,
		LogRemoteIP:  true,
		LogUserAgent: true,
		LogRoutePath: true,
		HandleError:  false,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			attrs := []any{
				"method", v.Method,
				"uri", v.URI,
				"route", v.RoutePath,
				"status", v.Status,
				"latency", v.Latency,
				"remote_ip", v.RemoteIP,
				"user_agent", v.UserAgent,
			}
			if v.Error != nil {
				slog.Error("request failed", append(attrs, "error", v.Error)...)
				return nil
			}
			slog.Info("request", attrs...)
			return nil
		},
	}))

	e.Use(middleware.Recover())
	e.Use(middleware.BodyLimit(uploadBodyLimit))
	e.Pre(middleware.RemoveTrailingSlash())

	e.Validator = &common.GenericEchoValidator{}

	e.GET("/probe", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	e.GET("/metrics", echo.WrapHandler(metrics.Handler()))

	return e
}
