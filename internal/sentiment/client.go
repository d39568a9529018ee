package sentiment

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/kushalmehta2868/nifty-trading-bot/models"
)

// Client talks to the external sentiment analysis service. The fusion
// engine treats a failed fetch as "sentiment absent", so callers log
// the error and pass nil onward rather than aborting the decision.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     zerolog.Logger
}

// ClientOptions holds options for creating a sentiment client.
type ClientOptions struct {
	BaseURL        string
	RequestTimeout time.Duration
	RequestsPerSec int
}

// NewClient creates a rate-limited sentiment client with retries.
func NewClient(opts ClientOptions) *Client {
	if opts.RequestTimeout == 0 {
		opts.RequestTimeout = 30 * time.Second
	}
	if opts.RequestsPerSec == 0 {
		opts.RequestsPerSec = 5
	}

	return &Client{
		baseURL: opts.BaseURL,
		httpClient: &http.Client{
			Timeout: opts.RequestTimeout,
		},
		limiter: rate.NewLimiter(rate.Every(time.Second), opts.RequestsPerSec),
		logger:  log.With().Str("component", "sentiment_client").Logger(),
	}
}

type sentimentResponse struct {
	Success   bool   `json:"success"`
	IndexName string `json:"index_name"`
	Sentiment struct {
		OverallScore  float64 `json:"overall_score"`
		CompoundScore float64 `json:"compound_score"`
		Confidence    float64 `json:"confidence"`
		Label         string  `json:"sentiment_label"`
	} `json:"sentiment"`
}

// Fetch retrieves the current sentiment score for an instrument.
func (c *Client) Fetch(ctx context.Context, instrument string) (*models.SentimentScore, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	endpoint := fmt.Sprintf("%s/sentiment/%s", c.baseURL, url.PathEscape(instrument))

	var body []byte
	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("creating request: %w", err))
		}
		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("HTTP request failed: %w", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("non-200 status code: %d", resp.StatusCode)
		}
		body, err = io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("reading response body: %w", err)
		}
		return nil
	}

	backoffStrategy := backoff.NewExponentialBackOff()
	backoffStrategy.MaxElapsedTime = 30 * time.Second

	if err := backoff.Retry(operation, backoff.WithContext(backoffStrategy, ctx)); err != nil {
		return nil, fmt.Errorf("after retries: %w", err)
	}

	var data sentimentResponse
	if err := json.Unmarshal(body, &data); err != nil {
		c.logger.Error().Err(err).Str("response", string(body)).Msg("Error parsing sentiment JSON")
		return nil, fmt.Errorf("parsing JSON: %w", err)
	}

	score := &models.SentimentScore{
		CompoundScore: data.Sentiment.CompoundScore,
		Confidence:    data.Sentiment.Confidence,
		Label:         data.Sentiment.Label,
	}

	c.logger.Debug().
		Str("instrument", instrument).
		Float64("compound_score", score.CompoundScore).
		Str("label", score.Label).
		Msg("fetched sentiment")

	return score, nil
}
