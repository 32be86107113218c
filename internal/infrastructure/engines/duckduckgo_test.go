package engines

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"searchhub/internal/domain/search"
)

const ddgFixture = `{
	"Heading": "Go (programming language)",
	"AbstractText": "Go is a statically typed language.",
	"AbstractURL": "https://en.wikipedia.org/wiki/Go_(programming_language)",
	"Answer": "",
	"RelatedTopics": [
		{"Text": "Gopher - The Go mascot", "FirstURL": "https://go.dev/blog/gopher"},
		{"Text": "Topic without a URL", "FirstURL": ""},
		{"Topics": [
			{"Text": "Go modules - Dependency management", "FirstURL": "https://go.dev/ref/mod"}
		]}
	]
}`

func newDDGTestAdapter(t *testing.T, handler http.Handler) *DuckDuckGoAdapter {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	adapter, err := NewDuckDuckGoAdapter(search.EngineConfig{
		Engine:   search.EngineDuckDuckGo,
		CacheTTL: time.Minute,
		Endpoint: server.URL,
	})
	require.NoError(t, err)
	return adapter
}

func TestDuckDuckGoFlattensRelatedTopics(t *testing.T) {
	adapter := newDDGTestAdapter(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "json", r.URL.Query().Get("format"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(ddgFixture))
	}))

	resp, err := adapter.Search(context.Background(), search.Query{Q: "golang", MaxResults: 10})
	require.NoError(t, err)

	// Abstract first, then topics in tree order; the URL-less topic is dropped.
	require.Len(t, resp.Results, 3)
	require.Equal(t, "Go (programming language)", resp.Results[0].Title)
	require.Equal(t, "https://en.wikipedia.org/wiki/Go_(programming_language)", resp.Results[0].URL)
	require.Equal(t, "abstract", resp.Results[0].Metadata["source"])

	require.Equal(t, "Gopher", resp.Results[1].Title)
	require.Equal(t, "The Go mascot", resp.Results[1].Snippet)
	require.Equal(t, "go.dev", resp.Results[1].Domain)

	require.Equal(t, "Go modules", resp.Results[2].Title)
	require.InDelta(t, 0.98, resp.Results[2].Score, 1e-9)
}

func TestDuckDuckGoOffsetAndTruncation(t *testing.T) {
	adapter := newDDGTestAdapter(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(ddgFixture))
	}))

	resp, err := adapter.Search(context.Background(), search.Query{Q: "golang", MaxResults: 1, Offset: 1})
	require.NoError(t, err)
	require.Len(t, resp.Results, 1)
	require.Equal(t, "Gopher", resp.Results[0].Title)

	resp, err = adapter.Search(context.Background(), search.Query{Q: "golang", MaxResults: 5, Offset: 10})
	require.NoError(t, err)
	require.Empty(t, resp.Results)
}

func TestDuckDuckGoSplitTopicText(t *testing.T) {
	title, snippet := splitTopicText("Gopher - The Go mascot")
	require.Equal(t, "Gopher", title)
	require.Equal(t, "The Go mascot", snippet)

	title, snippet = splitTopicText("No separator here")
	require.Equal(t, "No separator here", title)
	require.Empty(t, snippet)
}
