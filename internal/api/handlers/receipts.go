package handlers

import (
	"io"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/financepro/financepro/internal/api/middleware"
	"github.com/financepro/financepro/internal/attachments"
	"github.com/financepro/financepro/internal/jobs"
)

// maxReceiptBytes caps receipt uploads at 10 MB.
const maxReceiptBytes = 10 << 20

// ReceiptsHandler handles receipt upload and scan status endpoints.
type ReceiptsHandler struct {
	storage   attachments.Service
	publisher jobs.Publisher
	store     jobs.JobStore
	log       zerolog.Logger
}

// NewReceiptsHandler creates a receipts handler.
func NewReceiptsHandler(storage attachments.Service, publisher jobs.Publisher, store jobs.JobStore, log zerolog.Logger) *ReceiptsHandler {
	return &ReceiptsHandler{storage: storage, publisher: publisher, store: store, log: log}
}

// Upload handles POST /api/receipts. The raw image is the request body; the
// filename comes from a query parameter. A scan job is enqueued and its ID
// returned so the client can poll for the extraction.
func (h *ReceiptsHandler) Upload(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())
	if user == nil {
		middleware.WriteError(w, http.StatusUnauthorized, "No active session")
		return
	}

	if h.storage == nil {
		middleware.WriteError(w, http.StatusServiceUnavailable, "Receipt uploads are disabled")
		return
	}

	filename := r.URL.Query().Get("filename")
	if filename == "" {
		filename = "recibo.jpg"
	}
	contentType := r.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "image/jpeg"
	}

	data, err := io.ReadAll(io.LimitReader(r.Body, maxReceiptBytes+1))
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Failed to read upload")
		return
	}
	if len(data) == 0 {
		middleware.WriteError(w, http.StatusBadRequest, "Empty upload")
		return
	}
	if len(data) > maxReceiptBytes {
		middleware.WriteError(w, http.StatusRequestEntityTooLarge, "Receipt too large")
		return
	}

	uri, err := h.storage.Upload(r.Context(), user.ID, filename, data)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to store receipt")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to store receipt")
		return
	}

	job := &jobs.ReceiptScanJob{
		UserID:   user.ID,
		GCSURI:   uri,
		MIMEType: contentType,
	}
	if err := h.publisher.PublishReceiptScan(r.Context(), job); err != nil {
		h.log.Error().Err(err).Msg("Failed to enqueue receipt scan")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to enqueue receipt scan")
		return
	}

	h.log.Info().Str("job_id", job.JobID).Str("gcs_uri", uri).Msg("Receipt scan enqueued")

	middleware.WriteJSON(w, http.StatusAccepted, map[string]string{
		"job_id":  job.JobID,
		"gcs_uri": uri,
		"status":  string(job.Status),
	})
}

// GetJob handles GET /api/receipts/jobs/{id}
func (h *ReceiptsHandler) GetJob(w http.ResponseWriter, r *http.Request, jobID string) {
	user := middleware.UserFromContext(r.Context())

	job, err := h.store.GetJob(r.Context(), jobID)
	if err != nil {
		middleware.WriteError(w, http.StatusNotFound, "Job not found")
		return
	}
	if user != nil && job.UserID != user.ID {
		middleware.WriteError(w, http.StatusNotFound, "Job not found")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, job)
}

// ListJobs handles GET /api/receipts/jobs
func (h *ReceiptsHandler) ListJobs(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())
	if user == nil {
		middleware.WriteError(w, http.StatusUnauthorized, "No active session")
		return
	}

	query := r.URL.Query()
	filter := jobs.JobFilter{
		UserID: user.ID,
		Status: jobs.JobStatus(query.Get("status")),
	}
	if limitStr := query.Get("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil {
			filter.Limit = limit
		}
	}
	if offsetStr := query.Get("offset"); offsetStr != "" {
		if offset, err := strconv.Atoi(offsetStr); err == nil {
			filter.Offset = offset
		}
	}

	jobsList, err := h.store.ListJobs(r.Context(), filter)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list jobs")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to list jobs")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"jobs":  jobsList,
		"count": len(jobsList),
	})
}
