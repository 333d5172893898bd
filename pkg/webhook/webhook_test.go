package webhook

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestPostSuccessPayload(t *testing.T) {
	t.Parallel()

	var got map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Fatalf("content-type = %q", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Fatalf("decode body: %v", err)
		}
	}))
	t.Cleanup(server.Close)

	client := NewClient(Config{})
	err := client.Post(context.Background(), server.URL, Message{ResponseType: "in_channel", Text: "found 3 gas stations"})
	if err != nil {
		t.Fatalf("Post() error = %v", err)
	}
	if got["response_type"] != "in_channel" {
		t.Fatalf("response_type = %v", got["response_type"])
	}
	if got["text"] != "found 3 gas stations" {
		t.Fatalf("text = %v", got["text"])
	}
}

func TestPostErrorShapeOmitsResponseType(t *testing.T) {
	t.Parallel()

	var got map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Fatalf("decode body: %v", err)
		}
	}))
	t.Cleanup(server.Close)

	client := NewClient(Config{})
	if err := client.Post(context.Background(), server.URL, Message{Text: "Error while processing: boom"}); err != nil {
		t.Fatalf("Post() error = %v", err)
	}
	if _, ok := got["response_type"]; ok {
		t.Fatal("response_type present on error payload")
	}
}

func TestPostNon2xxIsError(t *testing.T) {
	t.Parallel()

	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		http.Error(w, "gone", http.StatusGone)
	}))
	t.Cleanup(server.Close)

	client := NewClient(Config{})
	if err := client.Post(context.Background(), server.URL, Message{Text: "x"}); err == nil {
		t.Fatal("Post() error = nil, want non-nil")
	}
	if calls != 1 {
		t.Fatalf("delivery attempts = %d, want exactly 1 (no retry)", calls)
	}
}

func TestPostRejectsInvalidURL(t *testing.T) {
	t.Parallel()

	client := NewClient(Config{})
	if err := client.Post(context.Background(), "not a url", Message{Text: "x"}); err == nil {
		t.Fatal("Post() accepted an invalid url")
	}
}
