package whttp

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestSendHTTPRequestCancelledContext(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := SendHTTPRequest(ctx, &WHTTPReq{Method: "GET", URL: srv.URL}, nil)
	if err == nil {
		t.Fatal("expected an error for an already-cancelled context")
	}
	if n := atomic.LoadInt32(&hits); n != 0 {
		t.Fatalf("cancelled request reached the server %d times", n)
	}
}

func TestSendHTTPRequestDeadlineStopsSlowUpstream(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := SendHTTPRequest(ctx, &WHTTPReq{Method: "GET", URL: srv.URL}, nil)
	if err == nil {
		t.Fatal("expected a deadline error from the hung upstream")
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Fatalf("deadline did not bound the request, took %v", elapsed)
	}
}

func TestSendHTTPRequestTitleSniffing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte("<html><head><title>Maintenance\n</title></head></html>"))
	}))
	defer srv.Close()

	res, err := SendHTTPRequest(context.Background(), &WHTTPReq{Method: "GET", URL: srv.URL}, nil)
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if res.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d", res.StatusCode)
	}
	if res.HTTPTitle != "Maintenance" {
		t.Fatalf("title = %q", res.HTTPTitle)
	}
}
