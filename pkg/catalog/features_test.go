package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractFeatures(t *testing.T) {
	tests := []struct {
		text string
		want []string
	}{
		{"Ich suche einen leisen, kompakten Kompressor", []string{"quiet"}},
		{"a small and energy-efficient unit", []string{"energy-efficient", "compact"}},
		{"sessiz ve güçlü bir kompresör", []string{"quiet", "powerful"}},
		{"Kleiner Kühlschrank, sehr leise", []string{"quiet", "compact"}},
		{"Embraco NJ 9238", nil},
		{"", nil},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractFeatures(tt.text))
		})
	}
}

func TestFeatureScore(t *testing.T) {
	assert.Equal(t, 2, FeatureScore("Mini Kühlschrank Compact 40L", []string{"compact"}))
	assert.Equal(t, 1, FeatureScore("Silent Verflüssigungssatz", []string{"quiet", "compact"}))
	assert.Equal(t, 0, FeatureScore("Embraco NJ 9238", []string{"quiet"}))
	assert.Equal(t, 0, FeatureScore("Silent Verflüssigungssatz", []string{"loud"}))
	assert.Equal(t, 0, FeatureScore("Silent Verflüssigungssatz", nil))
}
