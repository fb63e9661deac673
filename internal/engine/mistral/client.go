// internal/engine/mistral/client.go
package mistral

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	stderrors "review-rating-engine/internal/common/errors"
	commonhttp "review-rating-engine/internal/common/http"
	"review-rating-engine/internal/common/logger"
	"review-rating-engine/internal/common/metrics"
	"review-rating-engine/internal/engine/cache"
)

// Client is the gateway to the remote model API. Responses are memoized
// in the cache store under a content hash of the prompt and call
// parameters. Concurrent calls with the same key are collapsed into a
// single in-flight request: later callers wait for and share the first
// caller's result.
type Client struct {
	config *Config
	client *commonhttp.Client
	cache  cache.Store
	group  singleflight.Group
	logger logger.Logger
}

func NewClient(config *Config, store cache.Store, log logger.Logger) *Client {
	return &Client{
		config: config,
		// No client timeout, the per-call context carries the deadline.
		client: commonhttp.NewContextClient(),
		cache:  store,
		logger: log.WithFields(map[string]interface{}{
			"component": "mistral",
		}),
	}
}

// AnalyzeSentiment runs the sentiment-analysis prompt on a review text.
func (c *Client) AnalyzeSentiment(ctx context.Context, text string) (*SentimentPayload, error) {
	raw, err := c.complete(ctx, "sentiment", buildSentimentPrompt(text))
	if err != nil {
		return nil, err
	}

	body := stripJSONFence(raw)
	if err := validatePayload(sentimentSchemaLoader, body); err != nil {
		return nil, err
	}

	var payload SentimentPayload
	if err := json.Unmarshal([]byte(body), &payload); err != nil {
		return nil, stderrors.NewResponsePayloadError(err.Error())
	}
	return &payload, nil
}

// SynthesizeRating runs the rating-synthesis prompt on a sentiment
// result and a questionnaire composite.
func (c *Client) SynthesizeRating(ctx context.Context, sentiment *SentimentPayload, questionnaireComposite float64) (*RatingPayload, error) {
	raw, err := c.complete(ctx, "rating", buildRatingPrompt(sentiment, questionnaireComposite))
	if err != nil {
		return nil, err
	}

	body := stripJSONFence(raw)
	if err := validatePayload(ratingSchemaLoader, body); err != nil {
		return nil, err
	}

	var payload RatingPayload
	if err := json.Unmarshal([]byte(body), &payload); err != nil {
		return nil, stderrors.NewResponsePayloadError(err.Error())
	}
	return &payload, nil
}

// CheckCoherence asks the model whether a proposed rating matches the
// review text.
func (c *Client) CheckCoherence(ctx context.Context, text string, rating float64) (*CoherencePayload, error) {
	raw, err := c.complete(ctx, "coherence", buildCoherencePrompt(text, rating))
	if err != nil {
		return nil, err
	}

	body := stripJSONFence(raw)
	if err := validatePayload(coherenceSchemaLoader, body); err != nil {
		return nil, err
	}

	var payload CoherencePayload
	if err := json.Unmarshal([]byte(body), &payload); err != nil {
		return nil, stderrors.NewResponsePayloadError(err.Error())
	}
	return &payload, nil
}

// GenerateTitle produces a short summary title for a review. The
// response is plain text, not JSON.
func (c *Client) GenerateTitle(ctx context.Context, text string) (string, error) {
	raw, err := c.complete(ctx, "title", buildTitlePrompt(text))
	if err != nil {
		return "", err
	}

	title := strings.Trim(strings.TrimSpace(raw), "\"«» ")
	if title == "" {
		return "", stderrors.NewResponsePayloadError("empty title in model response")
	}
	return title, nil
}

// complete runs one prompt through cache, single-flight and the retry
// policy, returning the raw message content.
func (c *Client) complete(ctx context.Context, operation, prompt string) (string, error) {
	params := map[string]interface{}{
		"model":       c.config.Model,
		"temperature": c.config.Temperature,
		"max_tokens":  c.config.MaxTokens,
	}
	key := cache.Key(prompt, params)

	if value, ok := c.cache.Get(ctx, key); ok {
		c.logger.Debug("cache hit", map[string]interface{}{
			"operation": operation,
			"key":       key,
		})
		return value, nil
	}

	result, err, _ := c.group.Do(key, func() (interface{}, error) {
		content, callErr := c.call(ctx, operation, prompt)
		if callErr != nil {
			return "", callErr
		}
		c.cache.Put(ctx, key, content, c.config.CacheTTL)
		return content, nil
	})
	if err != nil {
		return "", err
	}

	return result.(string), nil
}

// call performs the HTTP exchange with bounded retries. Only rate-limit
// and transient classifications are retried; auth, timeout and payload
// failures surface immediately.
func (c *Client) call(ctx context.Context, operation, prompt string) (string, error) {
	started := time.Now()
	outcome := "error"
	defer func() {
		metrics.GatewayCalls.WithLabelValues(operation, outcome).Inc()
		metrics.GatewayCallDuration.WithLabelValues(operation).Observe(time.Since(started).Seconds())
	}()

	ctx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	body, _ := json.Marshal(chatRequest{
		Model: c.config.Model,
		Messages: []chatMessage{
			{Role: "user", Content: prompt},
		},
		Temperature: c.config.Temperature,
		MaxTokens:   c.config.MaxTokens,
	})

	var lastErr error

	for attempt := 0; attempt <= c.config.MaxRetries; attempt++ {
		if attempt > 0 {
			// Apply exponential backoff
			backoff := time.Duration(100*(1<<(attempt-1))) * time.Millisecond
			select {
			case <-time.After(backoff):
				// Continue with retry
			case <-ctx.Done():
				return "", stderrors.NewGatewayTimeoutError(operation)
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+"/chat/completions", bytes.NewReader(body))
		if err != nil {
			return "", stderrors.NewGatewayTransientNetworkError(err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+c.config.APIKey)

		resp, err := c.client.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return "", stderrors.NewGatewayTimeoutError(operation)
			}
			lastErr = stderrors.NewGatewayTransientNetworkError(err)
			continue
		}

		content, err := c.handleResponse(resp, operation)
		if err == nil {
			outcome = "success"
			c.logger.Info("model call completed", map[string]interface{}{
				"operation": operation,
				"attempts":  attempt + 1,
				"duration":  time.Since(started).String(),
			})
			return content, nil
		}

		if !stderrors.IsRetryableErrorCode(stderrors.CodeOf(err)) {
			return "", err
		}
		lastErr = err
	}

	if lastErr == nil {
		lastErr = stderrors.NewGatewayTransientNetworkError(fmt.Errorf("no attempt completed"))
	}
	c.logger.Error("model call failed", map[string]interface{}{
		"operation": operation,
		"error":     lastErr.Error(),
	})
	return "", lastErr
}

func (c *Client) handleResponse(resp *http.Response, operation string) (string, error) {
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		// Decoded below.
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return "", stderrors.NewGatewayAuthError(fmt.Sprintf("operation: %s, status: %d", operation, resp.StatusCode))
	case resp.StatusCode == http.StatusTooManyRequests:
		return "", stderrors.NewGatewayRateLimitedError(operation)
	case resp.StatusCode == http.StatusRequestTimeout || resp.StatusCode == http.StatusGatewayTimeout:
		return "", stderrors.NewGatewayTimeoutError(operation)
	case resp.StatusCode >= 500:
		return "", stderrors.NewGatewayUnavailableError(operation)
	default:
		return "", stderrors.NewGatewayTransientNetworkError(fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", stderrors.NewGatewayTransientNetworkError(err)
	}

	var apiResponse chatResponse
	if err := json.Unmarshal(raw, &apiResponse); err != nil {
		return "", stderrors.NewResponsePayloadError(fmt.Sprintf("decode error: %v", err))
	}
	if len(apiResponse.Choices) == 0 {
		return "", stderrors.NewResponsePayloadError("no choices in model response")
	}

	content := strings.TrimSpace(apiResponse.Choices[0].Message.Content)
	if content == "" {
		return "", stderrors.NewResponsePayloadError("empty message content in model response")
	}
	return content, nil
}
