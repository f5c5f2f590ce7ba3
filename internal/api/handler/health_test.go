package handler

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/iconidentify/reelgrab/internal/domain"
	"github.com/iconidentify/reelgrab/internal/repository"
)

func TestHealthLive(t *testing.T) {
	h := NewHealthHandler(repository.NewInMemoryJobRepository(), nil)

	rec := httptest.NewRecorder()
	h.Live(rec, httptest.NewRequest("GET", "/health", nil))

	if rec.Code != 200 {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", ct)
	}

	var resp HealthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Status != "ok" {
		t.Errorf("Status = %q, want ok", resp.Status)
	}
	if resp.Timestamp == "" {
		t.Error("Timestamp is empty")
	}
}

func TestHealthReady(t *testing.T) {
	repo := repository.NewInMemoryJobRepository()
	job := domain.NewJob("job1", 42, 7, "https://www.instagram.com/reel/ABC123/", "ABC123")
	if err := repo.Enqueue(context.Background(), job); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}

	h := NewHealthHandler(repo, nil)

	rec := httptest.NewRecorder()
	h.Ready(rec, httptest.NewRequest("GET", "/ready", nil))

	if rec.Code != 200 {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp HealthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Queue == nil {
		t.Fatal("Queue stats missing")
	}
	if resp.Queue.Queued != 1 {
		t.Errorf("Queued = %d, want 1", resp.Queue.Queued)
	}
}

func TestHealthStats(t *testing.T) {
	repo := repository.NewInMemoryJobRepository()
	events := testEvents(t)
	events.EmitInfo(domain.EventCategorySystem, "test", "started", nil)

	h := NewHealthHandler(repo, events)

	rec := httptest.NewRecorder()
	h.Stats(rec, httptest.NewRequest("GET", "/api/v1/stats", nil))

	if rec.Code != 200 {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp StatsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Queue == nil {
		t.Fatal("Queue stats missing")
	}
	if resp.Events == nil {
		t.Fatal("Event stats missing")
	}
	if resp.Events.BufferUsed != 1 {
		t.Errorf("BufferUsed = %d, want 1", resp.Events.BufferUsed)
	}
}
