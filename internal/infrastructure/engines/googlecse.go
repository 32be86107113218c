package engines

import (
	"context"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"searchhub/internal/domain/search"
)

const (
	googleCSEEndpointDefault = "https://www.googleapis.com/customsearch/v1"
	// Google CSE returns at most 10 items per request and rejects start
	// offsets past 100.
	googleCSEPageSize      = 10
	googleCSEMaxStart      = 100
	googleDefaultRateLimit = 10
)

// GoogleCSEAdapter queries a Google Programmable Search Engine. Requests for
// more than 10 results are satisfied with sequential paginated calls.
type GoogleCSEAdapter struct {
	*baseAdapter
	cseID string
}

var _ Adapter = (*GoogleCSEAdapter)(nil)

// NewGoogleCSEAdapter validates cfg and wires the adapter. Both the API key
// and the extra_params "cse_id" are mandatory.
func NewGoogleCSEAdapter(cfg search.EngineConfig) (*GoogleCSEAdapter, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, search.NewConfigError(search.EngineGoogleCSE, "api key is required")
	}
	cseID := strings.TrimSpace(cfg.ExtraParams["cse_id"])
	if cseID == "" {
		return nil, search.NewConfigError(search.EngineGoogleCSE, `extra param "cse_id" is required`)
	}
	return &GoogleCSEAdapter{
		baseAdapter: newBaseAdapter(search.EngineGoogleCSE, cfg, googleDefaultRateLimit),
		cseID:       cseID,
	}, nil
}

// Type identifies the provider.
func (a *GoogleCSEAdapter) Type() search.EngineType {
	return search.EngineGoogleCSE
}

// Search executes one logical query, paging through the provider as needed.
// Pagination stops early once a page comes back short (no more results) or
// the next start offset would exceed the provider's documented maximum.
func (a *GoogleCSEAdapter) Search(ctx context.Context, query search.Query) (*search.Response, error) {
	return a.run(ctx, query, func(ctx context.Context) (*search.Response, error) {
		want := query.MaxResults
		if want <= 0 {
			want = googleCSEPageSize
		}

		var items []googleCSEItem
		for len(items) < want {
			// The CSE API uses a 1-based start index.
			start := query.Offset + len(items) + 1
			if start > googleCSEMaxStart {
				log.Warn().
					Str("engine", string(search.EngineGoogleCSE)).
					Int("start", start).
					Int("collected", len(items)).
					Msg("start offset beyond provider maximum, stopping pagination")
				break
			}

			num := want - len(items)
			if num > googleCSEPageSize {
				num = googleCSEPageSize
			}

			page, err := a.fetchPage(ctx, query.Q, num, start)
			if err != nil {
				return nil, asEngineError(search.EngineGoogleCSE, err)
			}

			items = append(items, page...)
			if len(page) < num {
				break
			}
		}
		if len(items) > want {
			items = items[:want]
		}

		results := make([]search.Result, 0, len(items))
		for i, item := range items {
			result, ok := newResult(search.EngineGoogleCSE, i, item.Title, item.Link, item.Snippet)
			if !ok {
				continue
			}
			meta := map[string]any{}
			if item.DisplayLink != "" {
				meta["display_link"] = item.DisplayLink
			}
			if item.Mime != "" {
				meta["mime"] = item.Mime
			}
			if item.FileFormat != "" {
				meta["file_format"] = item.FileFormat
			}
			if len(meta) > 0 {
				result.Metadata = meta
			}
			results = append(results, result)
		}

		return &search.Response{
			Results:      results,
			Engine:       search.EngineGoogleCSE,
			Query:        query.Q,
			TotalResults: len(results),
			Page:         query.Offset,
		}, nil
	})
}

func (a *GoogleCSEAdapter) fetchPage(ctx context.Context, q string, num, start int) ([]googleCSEItem, error) {
	raw, err := withRetry(ctx, a.retry, "google_cse_search", func() (*googleCSEResponse, error) {
		var res googleCSEResponse
		resp, err := a.client.R().
			SetContext(ctx).
			SetQueryParam("key", a.cfg.APIKey).
			SetQueryParam("cx", a.cseID).
			SetQueryParam("q", q).
			SetQueryParam("num", strconv.Itoa(num)).
			SetQueryParam("start", strconv.Itoa(start)).
			SetResult(&res).
			Get(a.endpoint())

		if err != nil {
			return nil, search.NewEngineError(search.EngineGoogleCSE, "request failed", err)
		}
		if resp.IsError() {
			return nil, a.statusError(resp.StatusCode(), resp.String())
		}
		return &res, nil
	})
	if err != nil {
		return nil, err
	}
	return raw.Items, nil
}

// TestConnection reports provider reachability.
func (a *GoogleCSEAdapter) TestConnection(ctx context.Context) bool {
	return probeConnection(ctx, a)
}

// Stats reports process-lifetime counters.
func (a *GoogleCSEAdapter) Stats() search.Stats {
	return a.stats()
}

func (a *GoogleCSEAdapter) endpoint() string {
	if strings.TrimSpace(a.cfg.Endpoint) != "" {
		return a.cfg.Endpoint
	}
	return googleCSEEndpointDefault
}

type googleCSEResponse struct {
	Items []googleCSEItem `json:"items"`
}

type googleCSEItem struct {
	Title       string `json:"title"`
	Link        string `json:"link"`
	Snippet     string `json:"snippet"`
	DisplayLink string `json:"displayLink"`
	Mime        string `json:"mime"`
	FileFormat  string `json:"fileFormat"`
}
