package reranker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sort"
	"time"

	"minirag/internal/rag"
)

const (
	cohereURL = "https://api.cohere.com/v1/rerank"
	jinaURL   = "https://api.jina.ai/v1/rerank"
)

type Client struct {
	apiKey   string
	provider string
	model    string
	client   *http.Client
	baseURL  string
}

func NewClient(provider, apiKey, model string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		provider: provider,
		apiKey:   apiKey,
		model:    model,
		client:   &http.Client{Timeout: timeout},
	}
}

func (c *Client) SetBaseURL(url string) {
	c.baseURL = url
}

// Rerank returns at most topN of candidates, most relevant first. The
// returned candidates carry the provider's relevance score; candidates is
// left untouched.
func (c *Client) Rerank(ctx context.Context, query string, candidates []rag.Candidate, topN int) ([]rag.Candidate, error) {
	if topN <= 0 || topN > len(candidates) {
		topN = len(candidates)
	}
	if len(candidates) == 0 {
		return []rag.Candidate{}, nil
	}

	switch c.provider {
	case "cohere":
		return c.rerank(ctx, c.endpoint(cohereURL), map[string]interface{}{
			"model":            c.modelOr("rerank-english-v3.0"),
			"query":            query,
			"documents":        rag.Contents(candidates),
			"top_n":            topN,
			"return_documents": false,
		}, candidates, topN)
	case "jina":
		return c.rerank(ctx, c.endpoint(jinaURL), map[string]interface{}{
			"model":     c.modelOr("jina-reranker-v1-base-en"),
			"query":     query,
			"documents": rag.Contents(candidates),
			"top_n":     topN,
		}, candidates, topN)
	}

	// No provider: keep the vector search order
	out := make([]rag.Candidate, topN)
	copy(out, candidates[:topN])
	return out, nil
}

func (c *Client) endpoint(def string) string {
	if c.baseURL != "" {
		return c.baseURL
	}
	return def
}

func (c *Client) modelOr(def string) string {
	if c.model != "" {
		return c.model
	}
	return def
}

func (c *Client) rerank(ctx context.Context, url string, reqBody map[string]interface{}, candidates []rag.Candidate, topN int) ([]rag.Candidate, error) {
	if c.apiKey == "" {
		return nil, rag.NewProviderError(c.provider, "rerank", rag.ErrMissingAPIKey)
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonBody))
	if err != nil {
		return nil, err
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, rag.NewProviderError(c.provider, "rerank", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, rag.NewProviderError(c.provider, "rerank", &rag.StatusError{StatusCode: resp.StatusCode, Body: string(body)})
	}

	var result struct {
		Results []struct {
			Index int     `json:"index"`
			Score float64 `json:"relevance_score"`
		} `json:"results"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, rag.NewProviderError(c.provider, "rerank", fmt.Errorf("decode response: %w", err))
	}

	out := make([]rag.Candidate, 0, topN)
	seen := make(map[int]bool, len(result.Results))
	for _, r := range result.Results {
		if r.Index < 0 || r.Index >= len(candidates) || seen[r.Index] {
			slog.WarnContext(ctx, "reranker returned unusable index", "provider", c.provider, "index", r.Index)
			continue
		}
		seen[r.Index] = true
		cand := candidates[r.Index]
		cand.Score = float32(r.Score)
		out = append(out, cand)
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	if len(out) > topN {
		out = out[:topN]
	}
	return out, nil
}
