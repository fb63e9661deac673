// internal/engine/mistral/models.go
package mistral

// SentimentPayload is the structured result of a sentiment-analysis call.
// Sentiment values follow the French review vocabulary used by the
// prompts: "positif", "negatif" or "neutre".
type SentimentPayload struct {
	Sentiment          string   `json:"sentiment"`
	Confidence         float64  `json:"confidence"`
	EmotionalIntensity float64  `json:"emotional_intensity"`
	PositiveIndicators []string `json:"positive_indicators"`
	NegativeIndicators []string `json:"negative_indicators"`
	KeyThemes          []string `json:"key_themes"`
}

// RatingPayload is the structured result of a rating-synthesis call.
type RatingPayload struct {
	SuggestedRating float64 `json:"suggested_rating"`
	Confidence      float64 `json:"confidence"`
	Justification   string  `json:"justification"`
}

// CoherencePayload is the structured result of a coherence check between
// a free-text review and a proposed rating.
type CoherencePayload struct {
	Coherent    bool    `json:"coherent"`
	Score       float64 `json:"score"`
	Explanation string  `json:"explanation"`
}

// --- chat completions wire types ---

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}
