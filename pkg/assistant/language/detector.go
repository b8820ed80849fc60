// Package language guesses the language of a chat message.
package language

import (
	"strings"

	"sales-assistant-be/pkg/textnorm"
)

const (
	German  = "de"
	English = "en"
	Turkish = "tr"
)

// Default is used when nothing points at a particular language.
const Default = German

// Detector guesses the language of a message.
type Detector interface {
	Detect(text string) string
}

// KeywordDetector counts marker words per language. A tie, or no marker
// word at all, yields the default language.
type KeywordDetector struct {
	fallback string
	markers  map[string]map[string]struct{}
	order    []string
}

var defaultMarkers = map[string][]string{
	German: {
		"der", "die", "das", "und", "ist", "fur", "mit", "auf", "ich", "sie", "haben",
		"suche", "gibt", "es", "ein", "eine", "einen", "welche", "wie", "was", "kostet",
		"preis", "kompressor", "kompressoren", "kuhlung", "bestellung", "unter", "zwischen",
		"bitte", "danke", "hallo", "mehr", "anzeigen", "dieses", "meine", "wann",
	},
	English: {
		"the", "and", "is", "for", "with", "on", "i", "you", "have", "do", "does", "what",
		"which", "how", "much", "price", "compressor", "compressors", "cooling", "order",
		"under", "between", "please", "thanks", "hello", "show", "more", "that", "this",
		"my", "where", "tell", "me",
	},
	Turkish: {
		"bir", "ve", "icin", "ile", "bu", "mi", "mu", "var", "ne", "kadar", "nerede",
		"kompresor", "sogutma", "fiyat", "fiyati", "siparis", "siparisim", "altinda",
		"arasinda", "lutfen", "tesekkurler", "merhaba", "daha", "fazla", "goster",
		"urun", "hakkinda", "stokta",
	},
}

func NewKeywordDetector() *KeywordDetector {
	d := &KeywordDetector{
		fallback: Default,
		markers:  make(map[string]map[string]struct{}, len(defaultMarkers)),
		order:    []string{German, English, Turkish},
	}
	for lang, words := range defaultMarkers {
		set := make(map[string]struct{}, len(words))
		for _, w := range words {
			set[w] = struct{}{}
		}
		d.markers[lang] = set
	}
	return d
}

func (d *KeywordDetector) Detect(text string) string {
	counts := make(map[string]int, len(d.order))
	for _, w := range textnorm.Words(text) {
		for _, lang := range d.order {
			if _, ok := d.markers[lang][w]; ok {
				counts[lang]++
			}
		}
	}

	best, bestCount, tie := d.fallback, 0, false
	for _, lang := range d.order {
		switch c := counts[lang]; {
		case c > bestCount:
			best, bestCount, tie = lang, c, false
		case c == bestCount && c > 0:
			tie = true
		}
	}
	if bestCount == 0 || tie {
		return d.fallback
	}
	return best
}

// Supported reports whether lang is one of the assistant's languages.
func Supported(lang string) bool {
	switch lang {
	case German, English, Turkish:
		return true
	}
	return false
}

// Resolve picks the message language: a supported hint from the inbound
// channel wins over detection.
func Resolve(d Detector, text, hint string) string {
	hint = strings.ToLower(strings.TrimSpace(hint))
	if len(hint) > 2 {
		hint = hint[:2]
	}
	if Supported(hint) {
		return hint
	}
	return d.Detect(text)
}
