package extractor

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestExtractor_Fetch_CleansContent(t *testing.T) {
	page := `<!DOCTYPE html>
<html>
<head><title>Feline Facts</title><style>body { color: red; }</style></head>
<body>
<nav><a href="/">Home</a><a href="/about">About</a></nav>
<header>Site banner</header>
<main>
<h1>Cats</h1>
<p>Cats are mammals.</p>
<script>console.log("tracking");</script>
<p>Dogs are mammals too.</p>
</main>
<footer>Copyright 2025</footer>
</body>
</html>`

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") == "" {
			t.Error("expected a User-Agent header")
		}
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(page))
	}))
	defer srv.Close()

	e := New()
	text, err := e.Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}

	if !strings.HasPrefix(text, "Title: Feline Facts") {
		t.Errorf("text should be prefixed with the document title, got %q", text)
	}
	if !strings.Contains(text, "Cats are mammals.") {
		t.Errorf("text missing main content: %q", text)
	}
	for _, unwanted := range []string{"tracking", "color: red", "Site banner", "Copyright 2025", "About"} {
		if strings.Contains(text, unwanted) {
			t.Errorf("text should not contain %q, got %q", unwanted, text)
		}
	}
}

func TestExtractor_Fetch_ContentClassFallback(t *testing.T) {
	page := `<html><body><div class="sidebar content-list">nope</div><div class="page content">The real body.</div></body></html>`

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(page))
	}))
	defer srv.Close()

	e := New()
	text, err := e.Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if !strings.Contains(text, "The real body.") {
		t.Errorf("expected content-class container text, got %q", text)
	}
	if strings.Contains(text, "nope") {
		t.Errorf("content-list should not match the content class token, got %q", text)
	}
}

func TestExtractor_Fetch_Blocked(t *testing.T) {
	tests := []struct {
		name   string
		status int
	}{
		{name: "forbidden", status: http.StatusForbidden},
		{name: "rate limited", status: http.StatusTooManyRequests},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			e := New()
			_, err := e.Fetch(context.Background(), srv.URL)

			var blocked *BlockedError
			if !errors.As(err, &blocked) {
				t.Fatalf("Fetch() error = %v, want *BlockedError", err)
			}
			if blocked.StatusCode != tt.status {
				t.Errorf("StatusCode = %d, want %d", blocked.StatusCode, tt.status)
			}
		})
	}
}

func TestExtractor_Fetch_NonBlockedFailuresAreGenericErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	e := New()
	_, err := e.Fetch(context.Background(), srv.URL)
	if err == nil {
		t.Fatal("Fetch() expected error for 500 response")
	}

	var blocked *BlockedError
	if errors.As(err, &blocked) {
		t.Errorf("a 500 must not be classified as blocked: %v", err)
	}
}

func TestExtractor_Fetch_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // Shut down so the fetch fails at the dial

	e := New()
	_, err := e.Fetch(context.Background(), srv.URL)
	if err == nil {
		t.Fatal("Fetch() expected error for unreachable server")
	}
	var blocked *BlockedError
	if errors.As(err, &blocked) {
		t.Errorf("network errors must not be classified as blocked: %v", err)
	}
}

func TestCleanText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "collapses blank lines",
			input: "one\n\n\ntwo\n",
			want:  "one\ntwo",
		},
		{
			name:  "splits double space artifacts",
			input: "left  right",
			want:  "left\nright",
		},
		{
			name:  "trims whitespace",
			input: "   padded   \n\t tabbed \n",
			want:  "padded\ntabbed",
		},
		{
			name:  "empty input",
			input: "",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := cleanText(tt.input); got != tt.want {
				t.Errorf("cleanText(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
