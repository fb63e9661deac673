// internal/engine/mistral/prompts.go
package mistral

import (
	"fmt"
	"strings"
)

func buildSentimentPrompt(text string) string {
	var parts []string

	parts = append(parts, "Tu es un expert en analyse d'avis patients sur des établissements de santé.")
	parts = append(parts, "Analyse le sentiment de l'avis suivant :")
	parts = append(parts, fmt.Sprintf("\nAvis : \"%s\"", text))
	parts = append(parts, "\nRéponds UNIQUEMENT avec un objet JSON de la forme :")
	parts = append(parts, `{
  "sentiment": "positif" | "negatif" | "neutre",
  "confidence": 0.0-1.0,
  "emotional_intensity": 0.0-1.0,
  "positive_indicators": ["..."],
  "negative_indicators": ["..."],
  "key_themes": ["..."]
}`)
	parts = append(parts, "\nAucun texte en dehors du JSON.")

	return strings.Join(parts, "\n")
}

func buildRatingPrompt(sentiment *SentimentPayload, questionnaireComposite float64) string {
	var parts []string

	parts = append(parts, "Tu es un expert en évaluation de la satisfaction des patients.")
	parts = append(parts, "Propose une note globale entre 1 et 5 à partir des signaux suivants :")
	parts = append(parts, fmt.Sprintf("- Sentiment de l'avis : %s (confiance %.2f, intensité émotionnelle %.2f)",
		sentiment.Sentiment, sentiment.Confidence, sentiment.EmotionalIntensity))
	if len(sentiment.KeyThemes) > 0 {
		parts = append(parts, fmt.Sprintf("- Thèmes identifiés : %s", strings.Join(sentiment.KeyThemes, ", ")))
	}
	parts = append(parts, fmt.Sprintf("- Note moyenne du questionnaire structuré : %.1f/5", questionnaireComposite))
	parts = append(parts, "\nRéponds UNIQUEMENT avec un objet JSON de la forme :")
	parts = append(parts, `{
  "suggested_rating": 1.0-5.0,
  "confidence": 0.0-1.0,
  "justification": "..."
}`)
	parts = append(parts, "\nAucun texte en dehors du JSON.")

	return strings.Join(parts, "\n")
}

func buildCoherencePrompt(text string, rating float64) string {
	var parts []string

	parts = append(parts, "Tu es un expert en analyse d'avis patients.")
	parts = append(parts, fmt.Sprintf("Le patient a donné la note %.1f/5 avec l'avis suivant :", rating))
	parts = append(parts, fmt.Sprintf("\nAvis : \"%s\"", text))
	parts = append(parts, "\nLa note est-elle cohérente avec le contenu de l'avis ?")
	parts = append(parts, "Réponds UNIQUEMENT avec un objet JSON de la forme :")
	parts = append(parts, `{
  "coherent": true | false,
  "score": 0.0-1.0,
  "explanation": "..."
}`)
	parts = append(parts, "\nAucun texte en dehors du JSON.")

	return strings.Join(parts, "\n")
}

func buildTitlePrompt(text string) string {
	var parts []string

	parts = append(parts, "Génère un titre court (maximum 10 mots) qui résume cet avis patient.")
	parts = append(parts, fmt.Sprintf("\nAvis : \"%s\"", text))
	parts = append(parts, "\nRéponds uniquement avec le titre, sans guillemets ni ponctuation finale.")

	return strings.Join(parts, "\n")
}
