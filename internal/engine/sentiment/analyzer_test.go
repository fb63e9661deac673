package sentiment

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAnalyzeLocally_Categories(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected string
	}{
		{
			name:     "clearly positive",
			text:     "Personnel excellent, accueil parfait, je recommande cet établissement",
			expected: SentimentPositive,
		},
		{
			name:     "clearly negative",
			text:     "Service inadmissible, personnel négligent, chambre sale, très déçu",
			expected: SentimentNegative,
		},
		{
			name:     "no indicators",
			text:     "Je suis resté trois jours dans le service de cardiologie",
			expected: SentimentNeutral,
		},
		{
			name:     "balanced indicators",
			text:     "Médecin compétent et rassurant mais attente interminable et chambre bruyante",
			expected: SentimentNeutral,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := AnalyzeLocally(tt.text)
			assert.Equal(t, tt.expected, result.Sentiment)
		})
	}
}

func TestAnalyzeLocally_HeuristicInvariants(t *testing.T) {
	result := AnalyzeLocally("Équipe formidable, soins efficaces, merci pour tout")

	assert.Equal(t, 0.0, result.Confidence, "heuristic results must never claim confidence")
	assert.True(t, result.FallbackUsed)
	assert.GreaterOrEqual(t, result.EmotionalIntensity, 0.0)
	assert.LessOrEqual(t, result.EmotionalIntensity, 1.0)
	assert.NotEmpty(t, result.PositiveIndicators)
}

func TestAnalyzeLocally_Score(t *testing.T) {
	// 3 positive hits, 0 negative: score = 3/4 = 0.75.
	result := AnalyzeLocally("excellent parfait recommande")
	assert.Equal(t, SentimentPositive, result.Sentiment)
	assert.InDelta(t, 0.75, result.EmotionalIntensity, 0.001)
}

func TestAnalyzeLocally_Themes(t *testing.T) {
	result := AnalyzeLocally("L'accueil était chaleureux, les infirmières attentives et la chambre propre")

	assert.Contains(t, result.KeyThemes, "accueil")
	assert.Contains(t, result.KeyThemes, "personnel")
	assert.Contains(t, result.KeyThemes, "confort")
	assert.LessOrEqual(t, len(result.KeyThemes), 5)
}

func TestCleanText(t *testing.T) {
	assert.Equal(t, "un avis avec des espaces", cleanText("  un \t avis\n\navec   des espaces  "))
	assert.Equal(t, "sans controle", cleanText("sans\x00 contr\x07ole"))

	long := strings.Repeat("a", 3000)
	assert.Len(t, cleanText(long), 2000)
}
