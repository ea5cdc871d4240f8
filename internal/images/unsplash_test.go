package images

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/relayforge/chatrelay/pkg/logging"
)

func TestSearchReturnsFirstResult(t *testing.T) {
	var gotAuth, gotQuery, gotPerPage string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotQuery = r.URL.Query().Get("query")
		gotPerPage = r.URL.Query().Get("per_page")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"results":[{"urls":{"regular":"https://images.unsplash.com/cat.jpg"}}]}`))
	}))
	defer server.Close()

	client := NewClient("test-key", server.URL, logging.Default())
	url, found, err := client.Search(context.Background(), "cats")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if !found {
		t.Fatal("expected a result")
	}
	if url != "https://images.unsplash.com/cat.jpg" {
		t.Fatalf("unexpected url %q", url)
	}
	if gotAuth != "Client-ID test-key" {
		t.Fatalf("unexpected authorization header %q", gotAuth)
	}
	if gotQuery != "cats" || gotPerPage != "1" {
		t.Fatalf("unexpected query params query=%q per_page=%q", gotQuery, gotPerPage)
	}
}

func TestSearchNoResultsIsNotAnError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"results":[]}`))
	}))
	defer server.Close()

	client := NewClient("test-key", server.URL, logging.Default())
	url, found, err := client.Search(context.Background(), "nonexistent")
	if err != nil {
		t.Fatalf("zero results must not error: %v", err)
	}
	if found || url != "" {
		t.Fatalf("expected no result, got %q", url)
	}
}

func TestSearchProviderErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusForbidden)
	}))
	defer server.Close()

	client := NewClient("test-key", server.URL, logging.Default())
	if _, _, err := client.Search(context.Background(), "cats"); err == nil {
		t.Fatal("expected error for non-success status")
	}
}

func TestSearchMalformedResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	}))
	defer server.Close()

	client := NewClient("test-key", server.URL, logging.Default())
	if _, _, err := client.Search(context.Background(), "cats"); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestSearchEscapesKeyword(t *testing.T) {
	var gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("query")
		_, _ = w.Write([]byte(`{"results":[]}`))
	}))
	defer server.Close()

	client := NewClient("test-key", server.URL, logging.Default())
	if _, _, err := client.Search(context.Background(), "sunset over water"); err != nil {
		t.Fatalf("Search: %v", err)
	}
	if gotQuery != "sunset over water" {
		t.Fatalf("expected decoded query, got %q", gotQuery)
	}
}
