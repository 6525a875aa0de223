package inmemory

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/financepro/financepro/internal/jobs"
)

func TestPublishFillsDefaults(t *testing.T) {
	store := NewStore()
	q := NewQueue(4, store)
	defer q.Close()

	job := &jobs.ReceiptScanJob{UserID: "u1", GCSURI: "gs://b/receipts/u1/r.jpg", MIMEType: "image/jpeg"}
	if err := q.PublishReceiptScan(context.Background(), job); err != nil {
		t.Fatal(err)
	}

	if job.JobID == "" {
		t.Error("job ID not assigned")
	}
	if job.Status != jobs.JobStatusPending {
		t.Errorf("status = %s, want pending", job.Status)
	}
	if job.MaxRetries != 3 {
		t.Errorf("max retries = %d, want 3", job.MaxRetries)
	}

	saved, err := store.GetJob(context.Background(), job.JobID)
	if err != nil {
		t.Fatalf("job not persisted: %v", err)
	}
	if saved.UserID != "u1" {
		t.Errorf("saved user = %q", saved.UserID)
	}
}

func TestWorkerCompletesJob(t *testing.T) {
	store := NewStore()
	q := NewQueue(4, store)
	defer q.Close()

	done := make(chan string, 1)
	handler := func(ctx context.Context, job jobs.Job) error {
		done <- job.GetID()
		return nil
	}
	if err := q.Start(context.Background(), handler); err != nil {
		t.Fatal(err)
	}

	job := &jobs.ReceiptScanJob{UserID: "u1", GCSURI: "gs://b/r.jpg"}
	if err := q.PublishReceiptScan(context.Background(), job); err != nil {
		t.Fatal(err)
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("handler never invoked")
	}

	// Status is written after the handler returns; poll briefly.
	deadline := time.Now().Add(2 * time.Second)
	for {
		saved, err := store.GetJob(context.Background(), job.JobID)
		if err == nil && saved.Status == jobs.JobStatusCompleted {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("job never reached completed state")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestFailedJobRetries(t *testing.T) {
	store := NewStore()
	q := NewQueue(4, store)
	defer q.Close()

	var attempts atomic.Int32
	var once sync.Once
	succeeded := make(chan struct{})
	handler := func(ctx context.Context, job jobs.Job) error {
		if attempts.Add(1) == 1 {
			return errors.New("transient failure")
		}
		once.Do(func() { close(succeeded) })
		return nil
	}
	if err := q.Start(context.Background(), handler); err != nil {
		t.Fatal(err)
	}

	job := &jobs.ReceiptScanJob{UserID: "u1", GCSURI: "gs://b/r.jpg"}
	if err := q.PublishReceiptScan(context.Background(), job); err != nil {
		t.Fatal(err)
	}

	select {
	case <-succeeded:
	case <-time.After(5 * time.Second):
		t.Fatal("retry never ran")
	}
	if attempts.Load() < 2 {
		t.Errorf("attempts = %d, want at least 2", attempts.Load())
	}
}

func TestPublishAfterCloseFails(t *testing.T) {
	q := NewQueue(1, nil)
	if err := q.Close(); err != nil {
		t.Fatal(err)
	}
	err := q.PublishReceiptScan(context.Background(), &jobs.ReceiptScanJob{})
	if err == nil {
		t.Error("publish on closed queue must fail")
	}
}

func TestListJobsFilters(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	seed := []*jobs.ReceiptScanJob{
		{JobID: "1", UserID: "u1", Status: jobs.JobStatusPending},
		{JobID: "2", UserID: "u1", Status: jobs.JobStatusCompleted},
		{JobID: "3", UserID: "u2", Status: jobs.JobStatusPending},
	}
	for _, j := range seed {
		if err := store.SaveJob(ctx, j); err != nil {
			t.Fatal(err)
		}
	}

	got, err := store.ListJobs(ctx, jobs.JobFilter{UserID: "u1", Status: jobs.JobStatusPending})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].JobID != "1" {
		t.Errorf("filtered list = %+v", got)
	}
}
