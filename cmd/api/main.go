package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/financepro/financepro/internal/api/handlers"
	"github.com/financepro/financepro/internal/api/middleware"
	"github.com/financepro/financepro/internal/attachments"
	"github.com/financepro/financepro/internal/authn"
	"github.com/financepro/financepro/internal/domain"
	"github.com/financepro/financepro/internal/insight"
	"github.com/financepro/financepro/internal/jobs"
	"github.com/financepro/financepro/internal/jobs/inmemory"
	"github.com/financepro/financepro/internal/logger"
	"github.com/financepro/financepro/internal/notify"
	"github.com/financepro/financepro/internal/state"
	"github.com/financepro/financepro/internal/store"
)

func main() {
	var (
		port         = flag.String("port", "8080", "HTTP server port")
		notifiedPath = flag.String("notified-file", defaultNotifiedPath(), "File persisting the daily reminder set")
	)
	flag.Parse()

	log := logger.New()
	ctx := context.Background()

	// Record store. Degraded mode (no BigQuery project) still serves the
	// default categories and accepts sign-ins.
	recordStore := store.New(ctx, log)
	defer recordStore.Close()

	auth := authn.New(ctx, log)
	gateway := notify.NewPush(log)

	controller := state.NewController(recordStore, gateway, *notifiedPath, log)
	defer controller.EndSession()

	var insightSvc handlers.InsightService
	var scanner receiptScanner
	if gen, err := insight.New(ctx, log); err != nil {
		log.Warn().Err(err).Msg("Model client unavailable - insights degraded to placeholders")
		insightSvc = insight.Unavailable{}
		scanner = insight.Unavailable{}
	} else {
		insightSvc = gen
		scanner = gen
	}

	var storage attachments.Service
	if gcs, err := attachments.NewGCSService(); err != nil {
		log.Warn().Err(err).Msg("No attachment bucket configured - receipt uploads disabled")
	} else {
		storage = gcs
	}

	// Receipt scan jobs run on an in-process worker pool.
	jobStore := inmemory.NewStore()
	jobQueue := inmemory.NewQueue(100, jobStore)

	workerCtx, cancelWorker := context.WithCancel(ctx)
	defer cancelWorker()

	jobHandler := makeScanHandler(storage, scanner, log)
	go func() {
		log.Info().Msg("Starting receipt scan worker")
		if err := jobQueue.Start(workerCtx, jobHandler); err != nil {
			log.Error().Err(err).Msg("Receipt scan worker stopped with error")
		}
	}()

	// Handlers
	authHandler := handlers.NewAuthHandler(auth, controller, log)
	transactionsHandler := handlers.NewTransactionsHandler(controller, log)
	categoriesHandler := handlers.NewCategoriesHandler(controller, log)
	insightsHandler := handlers.NewInsightsHandler(controller, insightSvc, log)
	summaryHandler := handlers.NewSummaryHandler(controller)
	receiptsHandler := handlers.NewReceiptsHandler(storage, jobQueue, jobStore, log)
	exportsHandler := handlers.NewExportsHandler(controller, log)
	backupHandler := handlers.NewBackupHandler(controller)

	protect := middleware.Auth(auth.CurrentUser)

	mux := http.NewServeMux()

	// Public auth endpoints
	mux.HandleFunc("/api/auth/signin", postOnly(authHandler.SignIn))
	mux.HandleFunc("/api/auth/signup", postOnly(authHandler.SignUp))
	mux.HandleFunc("/api/auth/reset", postOnly(authHandler.ResetPassword))

	// Protected session endpoints
	mux.Handle("/api/auth/signout", protect(http.HandlerFunc(postOnly(authHandler.SignOut))))
	mux.Handle("/api/auth/session", protect(http.HandlerFunc(getOnly(authHandler.Session))))

	// Transactions
	mux.Handle("/api/transactions", protect(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			transactionsHandler.List(w, r)
		case http.MethodPost:
			transactionsHandler.Create(w, r)
		default:
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})))
	mux.Handle("/api/transactions/", protect(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimPrefix(r.URL.Path, "/api/transactions/")
		if id == "" {
			middleware.WriteError(w, http.StatusBadRequest, "Transaction ID is required")
			return
		}
		switch r.Method {
		case http.MethodPut:
			transactionsHandler.Update(w, r, id)
		case http.MethodDelete:
			transactionsHandler.Delete(w, r, id)
		default:
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})))

	// Categories
	mux.Handle("/api/categories", protect(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			categoriesHandler.List(w, r)
		case http.MethodPost:
			categoriesHandler.Create(w, r)
		default:
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})))
	mux.Handle("/api/categories/", protect(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimPrefix(r.URL.Path, "/api/categories/")
		if id == "" {
			middleware.WriteError(w, http.StatusBadRequest, "Category ID is required")
			return
		}
		switch r.Method {
		case http.MethodPut:
			categoriesHandler.Update(w, r, id)
		case http.MethodDelete:
			categoriesHandler.Delete(w, r, id)
		default:
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})))

	// Analysis
	mux.Handle("/api/insights", protect(http.HandlerFunc(getOnly(insightsHandler.Insights))))
	mux.Handle("/api/forecast", protect(http.HandlerFunc(getOnly(insightsHandler.Forecast))))
	mux.Handle("/api/summary", protect(http.HandlerFunc(getOnly(summaryHandler.Summary))))

	// Receipts
	mux.Handle("/api/receipts", protect(http.HandlerFunc(postOnly(receiptsHandler.Upload))))
	mux.Handle("/api/receipts/jobs", protect(http.HandlerFunc(getOnly(receiptsHandler.ListJobs))))
	mux.Handle("/api/receipts/jobs/", protect(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}
		jobID := strings.TrimPrefix(r.URL.Path, "/api/receipts/jobs/")
		if jobID == "" {
			middleware.WriteError(w, http.StatusBadRequest, "Job ID is required")
			return
		}
		receiptsHandler.GetJob(w, r, jobID)
	})))

	// Exports and backup status
	mux.Handle("/api/exports/csv", protect(http.HandlerFunc(getOnly(exportsHandler.CSV))))
	mux.Handle("/api/exports/xlsx", protect(http.HandlerFunc(getOnly(exportsHandler.Excel))))
	mux.Handle("/api/backup", protect(http.HandlerFunc(getOnly(backupHandler.Status))))

	// Health check endpoint
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteJSON(w, http.StatusOK, map[string]string{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	handler := middleware.Recovery(log)(
		middleware.Logger(log)(
			middleware.RequestID(
				middleware.CORS(mux),
			),
		),
	)

	server := &http.Server{
		Addr:         ":" + *port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("port", *port).Msg("Starting API server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	cancelWorker()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	if err := jobQueue.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error stopping job queue")
	}

	log.Info().Msg("Server exited")
}

// receiptScanner is the model surface the scan worker needs.
type receiptScanner interface {
	AnalyzeReceipt(ctx context.Context, image []byte, mimeType string) *domain.ReceiptExtraction
}

// makeScanHandler builds the job handler that fetches the uploaded image
// and runs the extraction, storing the result on the job record.
func makeScanHandler(storage attachments.Service, scanner receiptScanner, log zerolog.Logger) jobs.JobHandler {
	return func(ctx context.Context, job jobs.Job) error {
		scanJob, ok := job.(*jobs.ReceiptScanJob)
		if !ok {
			return fmt.Errorf("unexpected job type: %T", job)
		}
		if storage == nil {
			return fmt.Errorf("no attachment storage configured")
		}

		image, err := storage.Fetch(ctx, scanJob.GCSURI)
		if err != nil {
			return fmt.Errorf("fetch receipt: %w", err)
		}

		extraction := scanner.AnalyzeReceipt(ctx, image, scanJob.MIMEType)
		if extraction == nil {
			return fmt.Errorf("extraction failed for %s", scanJob.GCSURI)
		}

		scanJob.Extraction = extraction
		log.Info().
			Str("job_id", scanJob.JobID).
			Str("gcs_uri", scanJob.GCSURI).
			Msg("Receipt scan completed")
		return nil
	}
}

func defaultNotifiedPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "notified.json"
	}
	return filepath.Join(home, ".financepro", "notified.json")
}

func postOnly(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}
		h(w, r)
	}
}

func getOnly(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}
		h(w, r)
	}
}
