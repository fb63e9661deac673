// Package sentiment derives a sentiment signal from a patient review,
// preferring the remote model and falling back to a keyword heuristic.
package sentiment

import (
	"strings"
	"unicode"
)

// Sentiment categories shared with the model payloads.
const (
	SentimentPositive = "positif"
	SentimentNegative = "negatif"
	SentimentNeutral  = "neutre"
)

// Curated healthcare-review vocabulary for the offline heuristic.
var positiveKeywords = []string{
	"excellent", "excellente", "parfait", "parfaite", "recommande",
	"professionnel", "professionnelle", "attentif", "attentive",
	"efficace", "rassurant", "rassurante", "compétent", "compétente",
	"bienveillant", "bienveillante", "satisfait", "satisfaite",
	"merci", "formidable", "remarquable", "chaleureux", "chaleureuse",
	"agréable", "rapide", "propre", "disponible", "écoute",
}

var negativeKeywords = []string{
	"déçu", "déçue", "décevant", "problème", "inadmissible",
	"négligent", "négligente", "froid", "froide", "débordé", "débordée",
	"sale", "bruyant", "bruyante", "incompétent", "incompétente",
	"insatisfait", "insatisfaite", "catastrophe", "catastrophique",
	"horrible", "attente", "lent", "lente", "désagréable",
	"douleur", "erreur", "oublié", "ignoré",
}

// themeKeywords maps a display theme to the terms that indicate it.
var themeKeywords = map[string][]string{
	"accueil":        {"accueil", "réception", "secrétariat"},
	"soins":          {"soin", "soins", "traitement", "opération", "intervention"},
	"personnel":      {"personnel", "infirmier", "infirmière", "équipe", "aide-soignant"},
	"médecin":        {"médecin", "docteur", "chirurgien", "spécialiste"},
	"confort":        {"chambre", "lit", "repas", "confort", "propreté"},
	"organisation":   {"attente", "rendez-vous", "horaire", "organisation", "délai"},
	"communication":  {"explication", "information", "écoute", "communication"},
	"établissement":  {"hôpital", "clinique", "établissement", "service"},
}

const maxThemes = 5

const maxAnalyzedLength = 2000

// cleanText normalizes a review before analysis: control characters are
// dropped, whitespace runs collapse to one space, and very long input
// is truncated.
func cleanText(text string) string {
	var sb strings.Builder
	sb.Grow(len(text))

	lastSpace := false
	for _, r := range text {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			if !lastSpace && sb.Len() > 0 {
				sb.WriteRune(' ')
				lastSpace = true
			}
			continue
		}
		sb.WriteRune(r)
		lastSpace = false
	}

	cleaned := strings.TrimSpace(sb.String())
	if len(cleaned) > maxAnalyzedLength {
		cleaned = cleaned[:maxAnalyzedLength]
	}
	return cleaned
}

// extractThemes returns up to maxThemes themes whose keywords occur in
// the lowercased text, in stable display order.
func extractThemes(lower string) []string {
	ordered := []string{"accueil", "soins", "personnel", "médecin", "confort", "organisation", "communication", "établissement"}

	var themes []string
	for _, theme := range ordered {
		for _, keyword := range themeKeywords[theme] {
			if strings.Contains(lower, keyword) {
				themes = append(themes, theme)
				break
			}
		}
		if len(themes) == maxThemes {
			break
		}
	}
	return themes
}
