package engines

import (
	"context"
	"strings"

	"searchhub/internal/domain/search"
)

const (
	ddgEndpointDefault  = "https://api.duckduckgo.com/"
	ddgDefaultRateLimit = 30
)

// DuckDuckGoAdapter queries the DuckDuckGo instant answer API. The API is
// keyless; hits come from the related-topics tree rather than a conventional
// paginated result list.
type DuckDuckGoAdapter struct {
	*baseAdapter
}

var _ Adapter = (*DuckDuckGoAdapter)(nil)

// NewDuckDuckGoAdapter wires the adapter. No credential is required.
func NewDuckDuckGoAdapter(cfg search.EngineConfig) (*DuckDuckGoAdapter, error) {
	return &DuckDuckGoAdapter{newBaseAdapter(search.EngineDuckDuckGo, cfg, ddgDefaultRateLimit)}, nil
}

// Type identifies the provider.
func (a *DuckDuckGoAdapter) Type() search.EngineType {
	return search.EngineDuckDuckGo
}

// Search executes one query and flattens the related-topics tree into the
// normalized result shape.
func (a *DuckDuckGoAdapter) Search(ctx context.Context, query search.Query) (*search.Response, error) {
	return a.run(ctx, query, func(ctx context.Context) (*search.Response, error) {
		raw, err := withRetry(ctx, a.retry, "duckduckgo_search", func() (*ddgResponse, error) {
			var res ddgResponse
			resp, err := a.client.R().
				SetContext(ctx).
				SetQueryParam("q", query.Q).
				SetQueryParam("format", "json").
				SetQueryParam("no_html", "1").
				SetQueryParam("skip_disambig", "1").
				SetResult(&res).
				// The instant answer API labels its JSON as x-javascript.
				ForceContentType("application/json").
				Get(a.endpoint())

			if err != nil {
				return nil, search.NewEngineError(search.EngineDuckDuckGo, "request failed", err)
			}
			if resp.IsError() {
				return nil, a.statusError(resp.StatusCode(), resp.String())
			}
			return &res, nil
		})
		if err != nil {
			return nil, asEngineError(search.EngineDuckDuckGo, err)
		}

		results := flattenTopics(raw)

		// The instant answer API has no pagination; offset and max are
		// applied to the flattened list.
		max := query.MaxResults
		if max <= 0 {
			max = 10
		}
		if query.Offset >= len(results) {
			results = nil
		} else {
			results = results[query.Offset:]
			if len(results) > max {
				results = results[:max]
			}
		}

		response := &search.Response{
			Results:      results,
			Engine:       search.EngineDuckDuckGo,
			Query:        query.Q,
			TotalResults: len(results),
			Page:         query.Offset,
		}
		meta := map[string]any{}
		if raw.Answer != "" {
			meta["answer"] = raw.Answer
			meta["answer_type"] = raw.AnswerType
		}
		if raw.Definition != "" {
			meta["definition"] = raw.Definition
		}
		if len(meta) > 0 {
			response.Metadata = meta
		}
		return response, nil
	})
}

// TestConnection reports provider reachability.
func (a *DuckDuckGoAdapter) TestConnection(ctx context.Context) bool {
	return probeConnection(ctx, a)
}

// Stats reports process-lifetime counters.
func (a *DuckDuckGoAdapter) Stats() search.Stats {
	return a.stats()
}

func (a *DuckDuckGoAdapter) endpoint() string {
	if strings.TrimSpace(a.cfg.Endpoint) != "" {
		return a.cfg.Endpoint
	}
	return ddgEndpointDefault
}

// flattenTopics walks the related-topics tree depth-first, producing
// normalized results. The abstract, when it carries a URL, ranks first.
func flattenTopics(raw *ddgResponse) []search.Result {
	var results []search.Result

	if raw.AbstractURL != "" {
		if result, ok := newResult(search.EngineDuckDuckGo, 0, raw.Heading, raw.AbstractURL, raw.AbstractText); ok {
			result.Metadata = map[string]any{"source": "abstract"}
			results = append(results, result)
		}
	}

	var walk func(topic ddgTopic)
	walk = func(topic ddgTopic) {
		if topic.Text != "" {
			title, snippet := splitTopicText(topic.Text)
			if result, ok := newResult(search.EngineDuckDuckGo, len(results), title, topic.FirstURL, snippet); ok {
				result.Metadata = map[string]any{"source": "related_topics"}
				results = append(results, result)
			}
		}
		for _, child := range topic.Topics {
			walk(child)
		}
	}
	for _, topic := range raw.RelatedTopics {
		walk(topic)
	}

	return results
}

// splitTopicText splits a related-topic text of the form "Title - Snippet".
func splitTopicText(text string) (title string, snippet string) {
	parts := strings.SplitN(text, " - ", 2)
	if len(parts) == 2 {
		return strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
	}
	return strings.TrimSpace(text), ""
}

type ddgTopic struct {
	Text     string     `json:"Text"`
	FirstURL string     `json:"FirstURL"`
	Topics   []ddgTopic `json:"Topics"`
}

type ddgResponse struct {
	AbstractText  string     `json:"AbstractText"`
	AbstractURL   string     `json:"AbstractURL"`
	Answer        string     `json:"Answer"`
	AnswerType    string     `json:"AnswerType"`
	Definition    string     `json:"Definition"`
	Heading       string     `json:"Heading"`
	RelatedTopics []ddgTopic `json:"RelatedTopics"`
}
