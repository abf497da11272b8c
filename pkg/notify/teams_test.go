package notify

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/domzcondes/opsmon/pkg/logging"
)

func testLogger() *logging.Logger {
	l := logging.NewLogger(logging.ERROR, false)
	l.SetOutput(io.Discard)
	return l
}

func TestWebhookSink_Deliver(t *testing.T) {
	var received webhookMessage
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("content type = %s", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Errorf("decode failed: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	sink := NewWebhookSink(5*time.Second, testLogger())
	if !sink.Deliver(context.Background(), srv.URL, "hello ops") {
		t.Error("expected delivery to succeed")
	}
	if received.Text != "hello ops" {
		t.Errorf("delivered text = %q", received.Text)
	}
}

func TestWebhookSink_DeliverFailureIsFalseNotFatal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "throttled", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	sink := NewWebhookSink(5*time.Second, testLogger())
	if sink.Deliver(context.Background(), srv.URL, "msg") {
		t.Error("expected delivery to fail")
	}
}

func TestWebhookSink_UnreachableTarget(t *testing.T) {
	sink := NewWebhookSink(time.Second, testLogger())
	if sink.Deliver(context.Background(), "http://127.0.0.1:1/hook", "msg") {
		t.Error("expected delivery to an unreachable target to fail")
	}
}
