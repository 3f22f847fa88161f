package webfetch

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestFetchConvertsHTML(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") != DefaultUserAgent {
			t.Errorf("unexpected user agent %q", r.Header.Get("User-Agent"))
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, `<html><body><h1>The Cat</h1><p>A cat learns to <strong>fly</strong>.</p></body></html>`)
	}))
	defer server.Close()

	page, err := New().Fetch(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if !strings.Contains(page.Content, "# The Cat") || !strings.Contains(page.Content, "**fly**") {
		t.Errorf("unexpected markdown: %q", page.Content)
	}
	if strings.Contains(page.Content, "<p>") {
		t.Errorf("markup left in content: %q", page.Content)
	}
	if page.URL != server.URL {
		t.Errorf("URL = %q, want %q", page.URL, server.URL)
	}
}

func TestFetchPlainTextPassThrough(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		fmt.Fprint(w, "  once upon a <time>  ")
	}))
	defer server.Close()

	page, err := New().Fetch(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if page.Content != "once upon a <time>" {
		t.Errorf("Content = %q", page.Content)
	}
}

func TestFetchTruncates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		fmt.Fprint(w, strings.Repeat("가", 50))
	}))
	defer server.Close()

	page, err := New(WithMaxChars(10)).Fetch(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if !page.Truncated || page.Content != strings.Repeat("가", 10) {
		t.Errorf("page = %+v", page)
	}
}

func TestFetchErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	if _, err := New().Fetch(context.Background(), "  "); !errors.Is(err, ErrEmptyURL) {
		t.Errorf("expected ErrEmptyURL, got %v", err)
	}
	if _, err := New().Fetch(context.Background(), server.URL); err == nil || !strings.Contains(err.Error(), "404") {
		t.Errorf("expected 404 error, got %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := New().Fetch(ctx, server.URL); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestIsHTMLSniffsWithoutContentType(t *testing.T) {
	if !isHTML("", "<!DOCTYPE html><html></html>") {
		t.Error("expected doctype to be detected")
	}
	if isHTML("", "plain words") {
		t.Error("plain text detected as HTML")
	}
}
