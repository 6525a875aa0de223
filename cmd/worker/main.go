// Command worker runs the receipt-scan worker as a standalone process.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/financepro/financepro/internal/attachments"
	"github.com/financepro/financepro/internal/insight"
	"github.com/financepro/financepro/internal/jobs"
	"github.com/financepro/financepro/internal/jobs/inmemory"
	"github.com/financepro/financepro/internal/logger"
)

func main() {
	log := logger.New()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	storage, err := attachments.NewGCSService()
	if err != nil {
		log.Fatal().Err(err).Msg("Attachment storage is required for the scan worker")
	}

	gen, err := insight.New(ctx, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Model client is required for the scan worker")
	}

	// In-memory queue; a multi-instance deployment would swap in Cloud Tasks
	// or Pub/Sub behind the same interfaces.
	jobStore := inmemory.NewStore()
	jobQueue := inmemory.NewQueue(100, jobStore)

	log.Info().Msg("Starting worker service")

	handler := func(ctx context.Context, job jobs.Job) error {
		scanJob, ok := job.(*jobs.ReceiptScanJob)
		if !ok {
			return fmt.Errorf("unexpected job type: %T", job)
		}

		log.Info().
			Str("job_id", scanJob.JobID).
			Str("gcs_uri", scanJob.GCSURI).
			Msg("Processing receipt scan")

		image, err := storage.Fetch(ctx, scanJob.GCSURI)
		if err != nil {
			log.Error().Err(err).Str("job_id", scanJob.JobID).Msg("Failed to fetch receipt")
			return err
		}

		extraction := gen.AnalyzeReceipt(ctx, image, scanJob.MIMEType)
		if extraction == nil {
			return fmt.Errorf("extraction failed for %s", scanJob.GCSURI)
		}
		scanJob.Extraction = extraction

		log.Info().
			Str("job_id", scanJob.JobID).
			Str("description", extraction.Description).
			Msg("Receipt scan completed")
		return nil
	}

	if err := jobQueue.Start(ctx, handler); err != nil {
		log.Fatal().Err(err).Msg("Failed to start job consumer")
	}

	log.Info().Msg("Worker service started, waiting for jobs...")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down worker service...")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := jobQueue.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error during graceful shutdown")
	}

	log.Info().Msg("Worker service exited")
}
