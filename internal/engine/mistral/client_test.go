package mistral

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	stderrors "review-rating-engine/internal/common/errors"
	"review-rating-engine/internal/common/logger"
	"review-rating-engine/internal/engine/cache"
)

func createTestConfig(baseURL string) *Config {
	return &Config{
		BaseURL:     baseURL,
		APIKey:      "test-key",
		Model:       "mistral-small-latest",
		Temperature: 0.3,
		MaxTokens:   1000,
		Timeout:     5 * time.Second,
		MaxRetries:  2,
		CacheTTL:    time.Hour,
	}
}

func newTestClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	return NewClient(createTestConfig(baseURL), cache.NewMemoryStore(100), logger.NewTestLogger(t))
}

func chatBody(content string) string {
	resp := map[string]interface{}{
		"choices": []map[string]interface{}{
			{"message": map[string]interface{}{"role": "assistant", "content": content}},
		},
	}
	body, _ := json.Marshal(resp)
	return string(body)
}

func sentimentJSON(sentiment string, confidence, intensity float64) string {
	return fmt.Sprintf(`{"sentiment":%q,"confidence":%v,"emotional_intensity":%v,"positive_indicators":["accueil chaleureux"],"negative_indicators":[],"key_themes":["accueil"]}`,
		sentiment, confidence, intensity)
}

func TestAnalyzeSentiment_Success(t *testing.T) {
	var calls int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&calls, 1)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "mistral-small-latest", req.Model)
		assert.InDelta(t, 0.3, req.Temperature, 0.001)

		fmt.Fprint(w, chatBody(sentimentJSON("positif", 0.9, 0.7)))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	payload, err := client.AnalyzeSentiment(context.Background(), "Personnel très attentif, je recommande cet établissement")
	require.NoError(t, err)

	assert.Equal(t, "positif", payload.Sentiment)
	assert.InDelta(t, 0.9, payload.Confidence, 0.001)
	assert.InDelta(t, 0.7, payload.EmotionalIntensity, 0.001)
	assert.Equal(t, []string{"accueil"}, payload.KeyThemes)
	assert.Equal(t, int64(1), atomic.LoadInt64(&calls))
}

func TestAnalyzeSentiment_CacheIdempotence(t *testing.T) {
	var calls int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&calls, 1)
		fmt.Fprint(w, chatBody(sentimentJSON("neutre", 0.8, 0.2)))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	ctx := context.Background()

	first, err := client.AnalyzeSentiment(ctx, "Séjour correct dans l'ensemble, sans plus")
	require.NoError(t, err)
	second, err := client.AnalyzeSentiment(ctx, "Séjour correct dans l'ensemble, sans plus")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, int64(1), atomic.LoadInt64(&calls), "second call must be served from cache")
}

func TestAnalyzeSentiment_StripsMarkdownFence(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fenced := "```json\n" + sentimentJSON("negatif", 0.85, 0.9) + "\n```"
		fmt.Fprint(w, chatBody(fenced))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	payload, err := client.AnalyzeSentiment(context.Background(), "Service inadmissible, personnel débordé et négligent")
	require.NoError(t, err)
	assert.Equal(t, "negatif", payload.Sentiment)
}

func TestAnalyzeSentiment_SchemaViolations(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name:    "sentiment outside enum",
			content: `{"sentiment":"mixed","confidence":0.9,"emotional_intensity":0.5}`,
		},
		{
			name:    "confidence out of range",
			content: `{"sentiment":"positif","confidence":1.4,"emotional_intensity":0.5}`,
		},
		{
			name:    "missing intensity",
			content: `{"sentiment":"positif","confidence":0.9}`,
		},
		{
			name:    "not json at all",
			content: "Je ne peux pas analyser cet avis.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls int64
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				atomic.AddInt64(&calls, 1)
				fmt.Fprint(w, chatBody(tt.content))
			}))
			defer server.Close()

			client := newTestClient(t, server.URL)

			_, err := client.AnalyzeSentiment(context.Background(), "Un avis suffisamment long pour être analysé")
			require.Error(t, err)
			assert.Equal(t, stderrors.ErrCodeResponsePayloadInvalid, stderrors.CodeOf(err))
			assert.Equal(t, int64(1), atomic.LoadInt64(&calls), "payload errors must not be retried")
		})
	}
}

func TestCall_AuthErrorNotRetried(t *testing.T) {
	var calls int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&calls, 1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	_, err := client.AnalyzeSentiment(context.Background(), "Un avis suffisamment long pour être analysé")
	require.Error(t, err)
	assert.Equal(t, stderrors.ErrCodeGatewayAuthError, stderrors.CodeOf(err))
	assert.Equal(t, int64(1), atomic.LoadInt64(&calls))
}

func TestCall_RateLimitRetriedThenSucceeds(t *testing.T) {
	var calls int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt64(&calls, 1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		fmt.Fprint(w, chatBody(sentimentJSON("positif", 0.9, 0.4)))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	payload, err := client.AnalyzeSentiment(context.Background(), "Excellente prise en charge, équipe compétente")
	require.NoError(t, err)
	assert.Equal(t, "positif", payload.Sentiment)
	assert.Equal(t, int64(2), atomic.LoadInt64(&calls))
}

func TestCall_UnavailableExhaustsRetries(t *testing.T) {
	var calls int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&calls, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	_, err := client.AnalyzeSentiment(context.Background(), "Un avis suffisamment long pour être analysé")
	require.Error(t, err)
	assert.Equal(t, stderrors.ErrCodeGatewayUnavailable, stderrors.CodeOf(err))
	// Initial attempt plus MaxRetries.
	assert.Equal(t, int64(3), atomic.LoadInt64(&calls))
}

func TestCall_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		fmt.Fprint(w, chatBody(sentimentJSON("positif", 0.9, 0.4)))
	}))
	defer server.Close()

	cfg := createTestConfig(server.URL)
	cfg.Timeout = 50 * time.Millisecond
	client := NewClient(cfg, cache.NewMemoryStore(100), logger.NewTestLogger(t))

	_, err := client.AnalyzeSentiment(context.Background(), "Un avis suffisamment long pour être analysé")
	require.Error(t, err)
	assert.Equal(t, stderrors.ErrCodeGatewayTimeout, stderrors.CodeOf(err))
}

func TestSynthesizeRating_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, chatBody(`{"suggested_rating":4.5,"confidence":0.9,"justification":"Avis très positif confirmé par le questionnaire"}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	sentiment := &SentimentPayload{Sentiment: "positif", Confidence: 0.9, EmotionalIntensity: 0.7}

	payload, err := client.SynthesizeRating(context.Background(), sentiment, 3.8)
	require.NoError(t, err)
	assert.InDelta(t, 4.5, payload.SuggestedRating, 0.001)
	assert.InDelta(t, 0.9, payload.Confidence, 0.001)
}

func TestSynthesizeRating_OutOfRangeFailsClosed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, chatBody(`{"suggested_rating":7.2,"confidence":0.9}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	sentiment := &SentimentPayload{Sentiment: "positif", Confidence: 0.9, EmotionalIntensity: 0.7}

	_, err := client.SynthesizeRating(context.Background(), sentiment, 3.8)
	require.Error(t, err)
	assert.Equal(t, stderrors.ErrCodeResponsePayloadInvalid, stderrors.CodeOf(err))
}

func TestCheckCoherence_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, chatBody(`{"coherent":false,"score":0.3,"explanation":"La note ne correspond pas au ton de l'avis"}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	payload, err := client.CheckCoherence(context.Background(), "Tout était parfait, merci à toute l'équipe", 1.0)
	require.NoError(t, err)
	assert.False(t, payload.Coherent)
	assert.InDelta(t, 0.3, payload.Score, 0.001)
}

func TestGenerateTitle_TrimsDecoration(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, chatBody("\"Excellent séjour, personnel attentif\""))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	title, err := client.GenerateTitle(context.Background(), "Le personnel a été très attentif pendant tout mon séjour")
	require.NoError(t, err)
	assert.Equal(t, "Excellent séjour, personnel attentif", title)
}

func TestAnalyzeSentiment_ConcurrentCallsCollapse(t *testing.T) {
	var calls int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&calls, 1)
		// Hold the first request long enough for the others to queue
		// behind it on the flight group.
		time.Sleep(50 * time.Millisecond)
		fmt.Fprint(w, chatBody(sentimentJSON("positif", 0.9, 0.7)))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	const workers = 8
	var wg sync.WaitGroup
	results := make([]*SentimentPayload, workers)
	errs := make([]error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = client.AnalyzeSentiment(context.Background(), "Personnel très attentif et disponible")
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int64(1), atomic.LoadInt64(&calls))
	for i := 0; i < workers; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, "positif", results[i].Sentiment)
	}
}
