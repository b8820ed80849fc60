package catalog

import (
	"strings"

	"sales-assistant-be/pkg/textnorm"
)

// Feature is a product property customers ask for by adjective. Keywords
// select it in chat text; Hints suggest it in a product name. Both are
// stored in normalized form.
type Feature struct {
	Name     string   `json:"name"`
	Keywords []string `json:"keywords"`
	Hints    []string `json:"hints"`
}

var Features = []Feature{
	{
		Name:     "quiet",
		Keywords: []string{"leise", "leiser", "leisen", "gerauscharm", "quiet", "silent", "low noise", "sessiz"},
		Hints:    []string{"quiet", "silent", "low noise", "gerauscharm", "leise"},
	},
	{
		Name:     "energy-efficient",
		Keywords: []string{"energieeffizient", "sparsam", "energy efficient", "efficient", "enerji verimli"},
		Hints:    []string{"energy", "efficient", "saving", "sparsam", "energieeffizient", "eco"},
	},
	{
		Name:     "compact",
		Keywords: []string{"kompakt", "klein", "kleiner", "compact", "small", "kucuk"},
		Hints:    []string{"compact", "small", "mini", "kompakt", "klein"},
	},
	{
		Name:     "powerful",
		Keywords: []string{"leistungsstark", "stark", "powerful", "strong", "guclu"},
		Hints:    []string{"powerful", "strong", "high performance", "leistungsstark", "stark"},
	},
}

// ExtractFeatures returns the names of the features whose keywords occur as
// whole words in text, in Features order.
func ExtractFeatures(text string) []string {
	normalized := textnorm.Normalize(text)
	if normalized == "" {
		return nil
	}
	var out []string
	for _, f := range Features {
		for _, kw := range f.Keywords {
			if textnorm.ContainsWord(normalized, kw) {
				out = append(out, f.Name)
				break
			}
		}
	}
	return out
}

// FeatureScore counts the hints of the named features found in a product
// name. Unknown feature names score nothing.
func FeatureScore(productName string, features []string) int {
	if len(features) == 0 {
		return 0
	}
	name := textnorm.Normalize(productName)
	score := 0
	for _, want := range features {
		for _, f := range Features {
			if f.Name != want {
				continue
			}
			for _, h := range f.Hints {
				if strings.Contains(name, h) {
					score++
				}
			}
		}
	}
	return score
}
