package engines

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"searchhub/internal/domain/search"
)

func TestCacheKeyIgnoresMapInsertionOrder(t *testing.T) {
	a := search.Query{Q: "golang", MaxResults: 10, Offset: 0, Extra: map[string]string{
		"country": "us",
		"lang":    "en",
	}}
	b := search.Query{Q: "golang", MaxResults: 10, Offset: 0, Extra: map[string]string{
		"lang":    "en",
		"country": "us",
	}}

	require.Equal(t, cacheKey(a), cacheKey(b))
}

func TestCacheKeyDependsOnEffectiveParameters(t *testing.T) {
	base := search.Query{Q: "golang", MaxResults: 10}

	changedQuery := base
	changedQuery.Q = "rust"
	changedMax := base
	changedMax.MaxResults = 5
	changedOffset := base
	changedOffset.Offset = 10
	changedExtra := base
	changedExtra.Extra = map[string]string{"lang": "en"}

	key := cacheKey(base)
	require.NotEqual(t, key, cacheKey(changedQuery))
	require.NotEqual(t, key, cacheKey(changedMax))
	require.NotEqual(t, key, cacheKey(changedOffset))
	require.NotEqual(t, key, cacheKey(changedExtra))
}

func TestResponseCacheExpiry(t *testing.T) {
	cache := newResponseCache(30 * time.Millisecond)
	cache.Set("k", &search.Response{Query: "golang"})

	_, ok := cache.Get("k")
	require.True(t, ok)
	require.Equal(t, 1, cache.Len())

	time.Sleep(50 * time.Millisecond)

	_, ok = cache.Get("k")
	require.False(t, ok)
	require.Equal(t, 0, cache.Len())
}

func TestResponseCacheReturnsIsolatedCopies(t *testing.T) {
	cache := newResponseCache(time.Minute)
	cache.Set("k", &search.Response{
		Query: "golang",
		Results: []search.Result{
			{URL: "https://go.dev", Metadata: map[string]any{"language": "en"}},
		},
		Metadata: map[string]any{"answer": "42"},
	})

	first, ok := cache.Get("k")
	require.True(t, ok)
	first.Results[0].URL = "mutated"
	first.Results[0].Metadata["language"] = "mutated"
	first.Metadata["answer"] = "mutated"
	first.FromCache = true

	second, ok := cache.Get("k")
	require.True(t, ok)
	require.Equal(t, "https://go.dev", second.Results[0].URL)
	require.Equal(t, "en", second.Results[0].Metadata["language"])
	require.Equal(t, "42", second.Metadata["answer"])
	require.False(t, second.FromCache)
}
