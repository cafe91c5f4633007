package amazon_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"brickmatch/internal/marketplace"
	"brickmatch/internal/marketplace/amazon"
	"brickmatch/internal/services"
)

func TestNewRequiresAPIKey(t *testing.T) {
	if _, err := amazon.New("", "https://example.com", "UK"); err == nil {
		t.Fatal("expected error when api key missing")
	}
}

func TestSearchByIdentifierSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("x-api-key") != "key" {
			t.Fatalf("expected api key header, got %q", r.Header.Get("x-api-key"))
		}
		if got := r.URL.Query().Get("identifier_type"); got != "EAN" {
			t.Fatalf("expected identifier_type EAN, got %q", got)
		}
		if got := r.URL.Query().Get("marketplace"); got != "UK" {
			t.Fatalf("expected marketplace UK, got %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"items":[{"asin":"B075SDMMMV","title":"LEGO Star Wars 75192 Millennium Falcon"}]}`))
	}))
	t.Cleanup(server.Close)

	client, err := amazon.New("key", server.URL, "UK")
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	candidates, err := client.SearchByIdentifier(context.Background(), "5702016617839", marketplace.KindEAN)
	if err != nil {
		t.Fatalf("SearchByIdentifier returned error: %v", err)
	}
	if len(candidates) != 1 || candidates[0].ASIN != "B075SDMMMV" {
		t.Fatalf("unexpected candidates: %#v", candidates)
	}
}

func TestSearchByKeywordsRateLimitIsTransient(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	t.Cleanup(server.Close)

	client, err := amazon.New("key", server.URL, "")
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	_, err = client.SearchByKeywords(context.Background(), "LEGO 75192")
	if err == nil {
		t.Fatal("expected error on 429")
	}
	if !services.IsTransient(err) {
		t.Fatalf("expected 429 to classify as transient, got %v", err)
	}
}

func TestSearchByKeywordsClientErrorIsNotTransient(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	t.Cleanup(server.Close)

	client, err := amazon.New("key", server.URL, "")
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	_, err = client.SearchByKeywords(context.Background(), "LEGO 75192")
	if err == nil {
		t.Fatal("expected error on 400")
	}
	if services.IsTransient(err) {
		t.Fatalf("400 should not classify as transient: %v", err)
	}
}

func TestSearchByKeywordsEmptyQuery(t *testing.T) {
	client, err := amazon.New("key", "https://example.com", "")
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if _, err := client.SearchByKeywords(context.Background(), "  "); err == nil {
		t.Fatal("expected error for empty query")
	}
}

func TestSearchSkipsItemsWithoutASIN(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"items":[{"asin":"","title":"ghost"},{"asin":"B0CVS1SGRK","title":"LEGO 10330"}]}`))
	}))
	t.Cleanup(server.Close)

	client, err := amazon.New("key", server.URL, "")
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	candidates, err := client.SearchByKeywords(context.Background(), "LEGO 10330")
	if err != nil {
		t.Fatalf("SearchByKeywords returned error: %v", err)
	}
	if len(candidates) != 1 || candidates[0].ASIN != "B0CVS1SGRK" {
		t.Fatalf("unexpected candidates: %#v", candidates)
	}
}
