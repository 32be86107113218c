package engines

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"searchhub/internal/domain/search"
)

type csePage struct {
	num   int
	start int
}

// newCSETestServer serves synthetic items and records each page request. The
// available parameter caps how many items exist in total.
func newCSETestServer(t *testing.T, available int) (*httptest.Server, func() []csePage) {
	t.Helper()

	var mu sync.Mutex
	var pages []csePage

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		num, _ := strconv.Atoi(r.URL.Query().Get("num"))
		start, _ := strconv.Atoi(r.URL.Query().Get("start"))
		mu.Lock()
		pages = append(pages, csePage{num: num, start: start})
		mu.Unlock()

		var items []googleCSEItem
		for i := 0; i < num; i++ {
			rank := start + i
			if rank > available {
				break
			}
			items = append(items, googleCSEItem{
				Title:       fmt.Sprintf("Result %d", rank),
				Link:        fmt.Sprintf("https://example.com/%d", rank),
				Snippet:     fmt.Sprintf("Snippet %d", rank),
				DisplayLink: "example.com",
			})
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(googleCSEResponse{Items: items})
	}))
	t.Cleanup(server.Close)

	return server, func() []csePage {
		mu.Lock()
		defer mu.Unlock()
		return append([]csePage(nil), pages...)
	}
}

func newCSETestAdapter(t *testing.T, endpoint string) *GoogleCSEAdapter {
	t.Helper()
	adapter, err := NewGoogleCSEAdapter(search.EngineConfig{
		Engine:      search.EngineGoogleCSE,
		APIKey:      "test-key",
		CacheTTL:    time.Minute,
		Endpoint:    endpoint,
		ExtraParams: map[string]string{"cse_id": "test-cse"},
	})
	require.NoError(t, err)
	return adapter
}

func TestNewGoogleCSEAdapterValidation(t *testing.T) {
	_, err := NewGoogleCSEAdapter(search.EngineConfig{
		Engine:      search.EngineGoogleCSE,
		ExtraParams: map[string]string{"cse_id": "test-cse"},
	})
	require.True(t, search.IsErrorType(err, search.ErrorTypeConfig))

	_, err = NewGoogleCSEAdapter(search.EngineConfig{
		Engine: search.EngineGoogleCSE,
		APIKey: "test-key",
	})
	require.True(t, search.IsErrorType(err, search.ErrorTypeConfig))
}

func TestGoogleCSEPaginatesSequentially(t *testing.T) {
	server, pages := newCSETestServer(t, 100)
	adapter := newCSETestAdapter(t, server.URL)

	resp, err := adapter.Search(context.Background(), search.Query{Q: "golang", MaxResults: 25})
	require.NoError(t, err)
	require.Len(t, resp.Results, 25)

	require.Equal(t, []csePage{
		{num: 10, start: 1},
		{num: 10, start: 11},
		{num: 5, start: 21},
	}, pages())

	// Rank index spans the whole logical call, not a single page.
	require.InDelta(t, 1.0, resp.Results[0].Score, 1e-9)
	require.InDelta(t, 1.0-0.01*24, resp.Results[24].Score, 1e-9)
	require.Equal(t, "https://example.com/25", resp.Results[24].URL)
}

func TestGoogleCSEStopsOnShortPage(t *testing.T) {
	server, pages := newCSETestServer(t, 13)
	adapter := newCSETestAdapter(t, server.URL)

	resp, err := adapter.Search(context.Background(), search.Query{Q: "golang", MaxResults: 30})
	require.NoError(t, err)
	require.Len(t, resp.Results, 13)
	require.Len(t, pages(), 2)
}

func TestGoogleCSERefusesOffsetBeyondMaximum(t *testing.T) {
	server, pages := newCSETestServer(t, 200)
	adapter := newCSETestAdapter(t, server.URL)

	// First page starts at 96; the follow-up would start at 106 which is
	// past the documented maximum, so pagination stops without an error.
	resp, err := adapter.Search(context.Background(), search.Query{Q: "golang", MaxResults: 20, Offset: 95})
	require.NoError(t, err)
	require.Len(t, resp.Results, 10)
	require.Equal(t, []csePage{{num: 10, start: 96}}, pages())

	// A fully out-of-range offset yields an empty response, not an error.
	resp, err = adapter.Search(context.Background(), search.Query{Q: "golang", MaxResults: 10, Offset: 150})
	require.NoError(t, err)
	require.Empty(t, resp.Results)
}

func TestGoogleCSEQuotaClassification(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": {"message": "Quota exceeded for quota metric 'Queries'"}}`, http.StatusForbidden)
	}))
	t.Cleanup(server.Close)
	adapter := newCSETestAdapter(t, server.URL)

	_, err := adapter.Search(context.Background(), search.Query{Q: "golang", MaxResults: 5})
	require.Error(t, err)
	require.True(t, search.IsErrorType(err, search.ErrorTypeQuota))
}
