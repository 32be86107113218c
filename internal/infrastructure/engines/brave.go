package engines

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"searchhub/internal/domain/search"
)

const (
	braveSearchEndpointDefault = "https://api.search.brave.com/res/v1/web/search"
	// Brave caps count at 20 per request.
	braveMaxCount         = 20
	braveDefaultRateLimit = 60
)

// BraveAdapter queries the Brave Search API.
type BraveAdapter struct {
	*baseAdapter
}

var _ Adapter = (*BraveAdapter)(nil)

// NewBraveAdapter validates cfg and wires the adapter. The API key is
// mandatory.
func NewBraveAdapter(cfg search.EngineConfig) (*BraveAdapter, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, search.NewConfigError(search.EngineBrave, "api key is required")
	}
	return &BraveAdapter{newBaseAdapter(search.EngineBrave, cfg, braveDefaultRateLimit)}, nil
}

// Type identifies the provider.
func (a *BraveAdapter) Type() search.EngineType {
	return search.EngineBrave
}

// Search executes one logical query against Brave, paging past the
// per-request cap when more results are wanted. A short page means the
// provider has no more results, so pagination stops there.
func (a *BraveAdapter) Search(ctx context.Context, query search.Query) (*search.Response, error) {
	return a.run(ctx, query, func(ctx context.Context) (*search.Response, error) {
		want := query.MaxResults
		if want <= 0 {
			want = 10
		}

		var items []braveResult
		for len(items) < want {
			count := want - len(items)
			if count > braveMaxCount {
				count = braveMaxCount
			}

			page, err := a.fetchPage(ctx, query, count, query.Offset+len(items))
			if err != nil {
				return nil, asEngineError(search.EngineBrave, err)
			}

			items = append(items, page...)
			if len(page) < count {
				break
			}
		}
		if len(items) > want {
			items = items[:want]
		}

		results := make([]search.Result, 0, len(items))
		for i, item := range items {
			result, ok := newResult(search.EngineBrave, i, item.Title, item.URL, item.Description)
			if !ok {
				continue
			}
			result.PublishedDate = item.PageAge
			result.Metadata = map[string]any{}
			if item.Language != "" {
				result.Metadata["language"] = item.Language
			}
			if item.Type != "" {
				result.Metadata["type"] = item.Type
			}
			result.Metadata["family_friendly"] = item.FamilyFriendly
			results = append(results, result)
		}

		return &search.Response{
			Results:      results,
			Engine:       search.EngineBrave,
			Query:        query.Q,
			TotalResults: len(results),
			Page:         query.Offset,
		}, nil
	})
}

func (a *BraveAdapter) fetchPage(ctx context.Context, query search.Query, count, offset int) ([]braveResult, error) {
	raw, err := withRetry(ctx, a.retry, "brave_search", func() (*braveResponse, error) {
		var res braveResponse
		resp, err := a.client.R().
			SetContext(ctx).
			SetHeader("X-Subscription-Token", a.cfg.APIKey).
			SetHeader("Accept", "application/json").
			SetQueryParam("q", query.Q).
			SetQueryParam("count", strconv.Itoa(count)).
			SetQueryParam("offset", strconv.Itoa(offset)).
			SetQueryParams(query.Extra).
			SetResult(&res).
			Get(a.endpoint())

		if err != nil {
			return nil, search.NewEngineError(search.EngineBrave, "request failed", err)
		}
		if resp.IsError() {
			return nil, a.statusError(resp.StatusCode(), resp.String())
		}
		return &res, nil
	})
	if err != nil {
		return nil, err
	}
	return raw.Web.Results, nil
}

// TestConnection reports provider reachability.
func (a *BraveAdapter) TestConnection(ctx context.Context) bool {
	return probeConnection(ctx, a)
}

// Stats reports process-lifetime counters.
func (a *BraveAdapter) Stats() search.Stats {
	return a.stats()
}

func (a *BraveAdapter) endpoint() string {
	if strings.TrimSpace(a.cfg.Endpoint) != "" {
		return a.cfg.Endpoint
	}
	return braveSearchEndpointDefault
}

type braveResponse struct {
	Web struct {
		Results []braveResult `json:"results"`
	} `json:"web"`
}

type braveResult struct {
	Title          string `json:"title"`
	URL            string `json:"url"`
	Description    string `json:"description"`
	PageAge        string `json:"page_age"`
	Language       string `json:"language"`
	FamilyFriendly bool   `json:"family_friendly"`
	Type           string `json:"type"`
}

// asEngineError keeps the adapter error contract intact when the retry layer
// wraps the final failure in its attempt-count message.
func asEngineError(engine search.EngineType, err error) error {
	var engineErr *search.EngineError
	if errors.As(err, &engineErr) {
		return err
	}
	return search.NewEngineError(engine, "search failed", err)
}
