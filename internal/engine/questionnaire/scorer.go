// Package questionnaire converts structured satisfaction questionnaires
// into numeric sub-ratings.
package questionnaire

import (
	"math"
)

// Kind discriminates the two supported questionnaire shapes.
type Kind string

const (
	KindEstablishment Kind = "establishment"
	KindPhysician     Kind = "physician"
)

// Score is the numeric outcome of one questionnaire.
type Score struct {
	Kind      Kind               `json:"kind"`
	PerAspect map[string]float64 `json:"per_aspect"`
	Composite float64            `json:"composite"`
}

// EstablishmentAspects is the closed set of rated establishment aspects.
var EstablishmentAspects = []string{
	"medecins",
	"personnel",
	"accueil",
	"prise_en_charge",
	"confort",
}

// neutralValue replaces any missing or out-of-domain answer.
const neutralValue = 3.0

// Physician questionnaires use fixed five-level wordings per aspect.
// The text-to-integer correspondence is a contract: the exact strings
// below map to 1..5, anything else scores neutral.
var physicianAspectLevels = map[string]map[string]float64{
	"explications": {
		"Très insuffisantes": 1,
		"Insuffisantes":      2,
		"Correctes":          3,
		"Bonnes":             4,
		"Excellentes":        5,
	},
	"confiance": {
		"Aucune confiance":   1,
		"Peu de confiance":   2,
		"Confiance modérée":  3,
		"Bonne confiance":    4,
		"Confiance totale":   5,
	},
	"motivation": {
		"Aucune motivation":   1,
		"Peu motivé":          2,
		"Moyennement motivé":  3,
		"Bien motivé":         4,
		"Très motivé":         5,
	},
	"respect": {
		"Pas du tout":             1,
		"Peu respectueux":         2,
		"Modérément respectueux":  3,
		"Respectueux":             4,
		"Très respectueux":        5,
	},
}

// PhysicianAspects is the closed set of physician aspects, in scoring order.
var PhysicianAspects = []string{"explications", "confiance", "motivation", "respect"}

// ScoreEstablishment maps the five numeric aspects to a composite.
// Every value is clamped to [1,5]; a missing aspect counts as neutral,
// so an invalid answer can never skew the composite outside the domain.
func ScoreEstablishment(aspects map[string]float64) Score {
	perAspect := make(map[string]float64, len(EstablishmentAspects))
	sum := 0.0

	for _, name := range EstablishmentAspects {
		value, ok := aspects[name]
		if !ok || value < 1 || value > 5 {
			value = neutralValue
		}
		perAspect[name] = value
		sum += value
	}

	return Score{
		Kind:      KindEstablishment,
		PerAspect: perAspect,
		Composite: round1(sum / float64(len(EstablishmentAspects))),
	}
}

// ScorePhysician maps the four categorical aspects through their
// wording tables to a composite. Unrecognized answers score neutral.
func ScorePhysician(answers map[string]string) Score {
	perAspect := make(map[string]float64, len(PhysicianAspects))
	sum := 0.0

	for _, name := range PhysicianAspects {
		value := neutralValue
		if levels, ok := physicianAspectLevels[name]; ok {
			if mapped, ok := levels[answers[name]]; ok {
				value = mapped
			}
		}
		perAspect[name] = value
		sum += value
	}

	return Score{
		Kind:      KindPhysician,
		PerAspect: perAspect,
		Composite: round1(sum / float64(len(PhysicianAspects))),
	}
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
