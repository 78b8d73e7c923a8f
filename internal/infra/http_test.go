package infra

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func fastRetries(t *testing.T) {
	t.Helper()
	old := retryBaseDelay
	retryBaseDelay = time.Millisecond
	t.Cleanup(func() { retryBaseDelay = old })
}

func TestFetchSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"000"}`))
	}))
	defer srv.Close()

	body, err := Fetch(context.Background(), srv.URL, 2, time.Second)
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if string(body) != `{"status":"000"}` {
		t.Errorf("unexpected body: %s", body)
	}
}

func TestFetchDoesNotRetryHTTPErrors(t *testing.T) {
	fastRetries(t)
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := Fetch(context.Background(), srv.URL, 3, time.Second)
	if err == nil {
		t.Fatal("expected error for 500 response")
	}
	var se *StatusError
	if !errors.As(err, &se) {
		t.Fatalf("expected *StatusError, got %T: %v", err, err)
	}
	if se.Code != http.StatusInternalServerError {
		t.Errorf("expected code 500, got %d", se.Code)
	}
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Errorf("500 must not be retried: %d calls", got)
	}
}

func TestFetchRetriesConnectionFailure(t *testing.T) {
	fastRetries(t)
	// A server that is immediately closed: connections are refused.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	start := time.Now()
	_, err := Fetch(context.Background(), url, 2, time.Second)
	if err == nil {
		t.Fatal("expected error for refused connection")
	}
	// Two retries at 1ms and 2ms of backoff must have happened.
	if elapsed := time.Since(start); elapsed < 3*time.Millisecond {
		t.Errorf("expected linear backoff across retries, finished in %v", elapsed)
	}
}

func TestFetchRetriesTimeout(t *testing.T) {
	fastRetries(t)
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	_, err := Fetch(context.Background(), srv.URL, 2, 20*time.Millisecond)
	if err == nil {
		t.Fatal("expected timeout error")
	}
	if got := atomic.LoadInt32(&calls); got != 3 {
		t.Errorf("expected 3 attempts (1 + 2 retries), got %d", got)
	}
}

func TestFetchErrorOmitsQueryString(t *testing.T) {
	fastRetries(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer srv.Close()

	_, err := Fetch(context.Background(), srv.URL+"/api/company.json?crtfc_key=supersecret", 0, time.Second)
	if err == nil {
		t.Fatal("expected error")
	}
	if strings.Contains(err.Error(), "supersecret") {
		t.Errorf("error must not contain credentials: %v", err)
	}
	if !strings.Contains(err.Error(), "/api/company.json") {
		t.Errorf("error should name the endpoint path: %v", err)
	}
}

func TestFetchContextCancellation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	// retryBaseDelay left at its default: the cancelled context must win
	// before the first backoff sleep completes.
	_, err := Fetch(ctx, url, 3, time.Second)
	if err == nil {
		t.Fatal("expected error with cancelled context")
	}
}

func TestDoGet(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Accept") != "application/json" {
			t.Errorf("expected Accept header to pass through")
		}
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	body, code, err := DoGet(context.Background(), srv.URL, map[string]string{"Accept": "application/json"})
	if err != nil {
		t.Fatalf("DoGet failed: %v", err)
	}
	defer body.Close()
	if code != http.StatusOK {
		t.Errorf("expected 200, got %d", code)
	}
}

func TestDoGetStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	}))
	defer srv.Close()

	_, code, err := DoGet(context.Background(), srv.URL, nil)
	if err == nil {
		t.Fatal("expected error for 404")
	}
	if code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", code)
	}
}
