package sentiment

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestFetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/sentiment/NIFTY" {
			t.Errorf("unexpected path %s", r.URL.Path)
			http.NotFound(w, r)
			return
		}
		fmt.Fprint(w, `{
			"success": true,
			"index_name": "NIFTY",
			"sentiment": {
				"overall_score": 0.4,
				"compound_score": 0.35,
				"confidence": 0.8,
				"sentiment_label": "positive"
			}
		}`)
	}))
	defer server.Close()

	client := NewClient(ClientOptions{BaseURL: server.URL, RequestTimeout: 2 * time.Second})

	score, err := client.Fetch(context.Background(), "NIFTY")
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if score.CompoundScore != 0.35 {
		t.Errorf("compound score = %v, want 0.35", score.CompoundScore)
	}
	if score.Confidence != 0.8 {
		t.Errorf("confidence = %v, want 0.8", score.Confidence)
	}
	if score.Label != "positive" {
		t.Errorf("label = %q, want positive", score.Label)
	}
}

func TestFetchRetriesTransientFailure(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts == 1 {
			http.Error(w, "temporarily unavailable", http.StatusServiceUnavailable)
			return
		}
		fmt.Fprint(w, `{"sentiment": {"compound_score": 0.2, "confidence": 0.7, "sentiment_label": "neutral"}}`)
	}))
	defer server.Close()

	client := NewClient(ClientOptions{BaseURL: server.URL, RequestTimeout: 2 * time.Second})

	score, err := client.Fetch(context.Background(), "NIFTY")
	if err != nil {
		t.Fatalf("Fetch should survive one transient failure: %v", err)
	}
	if attempts < 2 {
		t.Fatalf("expected a retry after the 503, got %d attempts", attempts)
	}
	if score.CompoundScore != 0.2 {
		t.Errorf("compound score = %v, want 0.2", score.CompoundScore)
	}
}

func TestFetchMalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "not json")
	}))
	defer server.Close()

	client := NewClient(ClientOptions{BaseURL: server.URL, RequestTimeout: 2 * time.Second})

	if _, err := client.Fetch(context.Background(), "NIFTY"); err == nil {
		t.Fatal("expected a parse error")
	}
}
