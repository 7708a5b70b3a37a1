/**
 * Prescription OCR Service - Main Entry Point
 *
 * Hosts the prescription analyzer behind a small HTTP API.
 *
 * Pipeline per request:
 * 1. Base64 encode the uploaded image
 * 2. Google Cloud Vision DOCUMENT_TEXT_DETECTION (ko, en)
 * 3. Flatten blocks into word blocks
 * 4. Relay recognized text to the backend parser (bounded by BACKEND_TIMEOUT)
 */

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

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/adverant/nexus/prescription-ocr/internal/clients"
	"github.com/adverant/nexus/prescription-ocr/internal/config"
	"github.com/adverant/nexus/prescription-ocr/internal/httpapi"
	"github.com/adverant/nexus/prescription-ocr/internal/logging"
	"github.com/adverant/nexus/prescription-ocr/internal/processor"
)

func main() {
	if os.Getenv("APP_ENV") != "production" {
		if err := godotenv.Load(); err != nil {
			log.Printf("Warning: .env not found, using system environment variables")
		}
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	log.Printf("Prescription OCR service starting...")
	log.Printf("Configuration loaded: VisionEndpoint=%s, Backend=%s, BackendParsing=%t, BackendTimeout=%dms",
		cfg.VisionEndpoint, cfg.BackendURL, cfg.BackendParsingEnabled, cfg.BackendTimeoutMs)
	if cfg.VisionAPIKey == "" {
		log.Printf("WARNING: GOOGLE_CLOUD_API_KEY is empty. Vision requests will be rejected.")
	}

	ctx := context.Background()

	visionClient, err := clients.NewVisionClient(ctx, &clients.VisionConfig{
		APIKey:   cfg.VisionAPIKey,
		Endpoint: cfg.VisionEndpoint,
	})
	if err != nil {
		log.Fatalf("Failed to initialize vision client: %v", err)
	}

	parserClient := clients.NewParserClient(&clients.ParserConfig{
		BaseURL: cfg.BackendURL,
		Enabled: cfg.BackendParsingEnabled,
		Timeout: cfg.BackendTimeout(),
	})

	if parserClient.Enabled() {
		hctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		if err := parserClient.HealthCheck(hctx); err != nil {
			log.Printf("WARNING: Backend parser health check failed: %v. Relayed requests may fail.", err)
		} else {
			log.Printf("Backend parser connection verified: %s", cfg.BackendURL)
		}
		cancel()
	} else {
		log.Printf("Backend parsing disabled. Analyze requests will return no content.")
	}

	analyzer, err := processor.NewPrescriptionAnalyzer(&processor.AnalyzerConfig{
		Detector:     visionClient,
		Relay:        parserClient,
		MaxImageSize: cfg.MaxImageSize,
	})
	if err != nil {
		log.Fatalf("Failed to initialize prescription analyzer: %v", err)
	}

	router := httpapi.NewRouter(httpapi.NewHandler(analyzer, logging.NewLogger("HTTP")))
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("Listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("HTTP server failed: %v", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	sig := <-sigChan
	log.Printf("Received signal %v, initiating graceful shutdown...", sig)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Error shutting down HTTP server: %v", err)
	}

	log.Printf("Shutdown complete")
}
