package services

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestGetRetriesUntilSuccess(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") != userAgent {
			t.Errorf("unexpected User-Agent %q", r.Header.Get("User-Agent"))
		}
		if hits.Add(1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte("contenido"))
	}))
	defer srv.Close()

	fetcher := NewFetcher(5*time.Second, 3, time.Millisecond)
	body, err := fetcher.Get(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if string(body) != "contenido" {
		t.Fatalf("Get() body = %q", body)
	}
	if got := hits.Load(); got != 3 {
		t.Fatalf("server received %d requests, want 3", got)
	}
}

func TestGetExhaustsRetries(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	fetcher := NewFetcher(5*time.Second, 3, time.Millisecond)
	_, err := fetcher.Get(context.Background(), srv.URL)
	if err == nil {
		t.Fatal("expected error after exhausting retries")
	}

	var fetchErr *FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("error %v is not a *FetchError", err)
	}
	if fetchErr.Attempts != 3 {
		t.Fatalf("FetchError.Attempts = %d, want 3", fetchErr.Attempts)
	}
	if fetchErr.URL != srv.URL {
		t.Fatalf("FetchError.URL = %q, want %q", fetchErr.URL, srv.URL)
	}
	if got := hits.Load(); got != 3 {
		t.Fatalf("server received %d requests, want 3", got)
	}
}

func TestGetConnectionErrorRetries(t *testing.T) {
	// A closed server refuses connections; the transport error should still
	// be retried and wrapped.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	fetcher := NewFetcher(time.Second, 2, time.Millisecond)
	_, err := fetcher.Get(context.Background(), url)

	var fetchErr *FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("error %v is not a *FetchError", err)
	}
	if fetchErr.Attempts != 2 {
		t.Fatalf("FetchError.Attempts = %d, want 2", fetchErr.Attempts)
	}
}
