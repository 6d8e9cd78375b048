// Package newsapi implements the news-sentiment probe against a
// NewsAPI-compatible endpoint. Headlines mentioning a company are scanned
// for adverse-event keywords and converted into a bounded risk delta.
package newsapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/veritaslabs/veritas/internal/domain"
)

// MaxRiskDelta caps the sentiment contribution regardless of headline count.
const MaxRiskDelta = 20.0

// defaultTimeout bounds the HTTP round trip when no timeout is configured.
const defaultTimeout = 10 * time.Second

// adverseKeywords maps headline keywords to risk points. Scoring is a plain
// keyword scan; this is a coarse external signal, not an NLP pipeline.
var adverseKeywords = map[string]float64{
	"fraud":         8,
	"investigation": 6,
	"probe":         6,
	"raid":          6,
	"default":       5,
	"lawsuit":       4,
	"scandal":       4,
	"resignation":   3,
	"downgrade":     3,
	"penalty":       3,
	"fine":          2,
	"delay":         1,
}

// Client queries a NewsAPI-compatible "everything" endpoint.
type Client struct {
	baseURL string
	apiKey  string
	client  *http.Client
	log     zerolog.Logger
}

// NewClient creates a news sentiment client. An empty apiKey disables the
// probe; Search then always reports no signal. A non-positive timeout
// selects the default.
func NewClient(baseURL, apiKey string, timeout time.Duration, log zerolog.Logger) *Client {
	if baseURL == "" {
		baseURL = "https://newsapi.org/v2/everything"
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: timeout},
		log:     log.With().Str("client", "newsapi").Logger(),
	}
}

type articlesResponse struct {
	Status   string `json:"status"`
	Articles []struct {
		Title       string `json:"title"`
		Description string `json:"description"`
	} `json:"articles"`
}

// Search fetches recent headlines for a company and scores them. The
// caller treats any returned error as "no signal".
func (c *Client) Search(ctx context.Context, companyName string) (domain.SentimentResult, error) {
	if c.apiKey == "" {
		return domain.SentimentResult{}, nil
	}

	q := url.Values{}
	q.Set("q", companyName)
	q.Set("sortBy", "publishedAt")
	q.Set("pageSize", "50")
	q.Set("apiKey", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return domain.SentimentResult{}, fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return domain.SentimentResult{}, fmt.Errorf("news request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.SentimentResult{}, fmt.Errorf("news API returned status %d", resp.StatusCode)
	}

	var payload articlesResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return domain.SentimentResult{}, fmt.Errorf("failed to parse news response: %w", err)
	}

	result := scoreHeadlines(payload)
	c.log.Debug().
		Str("company", companyName).
		Int("articles", len(payload.Articles)).
		Float64("risk_delta", result.RiskDelta).
		Msg("sentiment probe complete")

	return result, nil
}

// scoreHeadlines sums keyword points across headlines, capping at
// MaxRiskDelta. Each keyword is reported at most once in Factors.
func scoreHeadlines(payload articlesResponse) domain.SentimentResult {
	keywords := make([]string, 0, len(adverseKeywords))
	for k := range adverseKeywords {
		keywords = append(keywords, k)
	}
	sort.Strings(keywords)

	var result domain.SentimentResult
	seen := make(map[string]bool)

	for _, article := range payload.Articles {
		text := strings.ToLower(article.Title + " " + article.Description)
		for _, keyword := range keywords {
			if !strings.Contains(text, keyword) {
				continue
			}
			result.RiskDelta += adverseKeywords[keyword]
			if !seen[keyword] {
				seen[keyword] = true
				result.Factors = append(result.Factors, "adverse news: "+keyword)
			}
		}
	}

	if result.RiskDelta > MaxRiskDelta {
		result.RiskDelta = MaxRiskDelta
	}
	return result
}
