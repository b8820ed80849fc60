package reference

import (
	"regexp"

	"sales-assistant-be/pkg/store"
)

// pattern is one anaphora phrase. Patterns run against normalized text, so
// they are written lowercase and without diacritics.
type pattern struct {
	kind     store.EntityKind
	language string
	re       *regexp.Regexp
	// generic phrases ("of that", "is it") also occur inside category and
	// order references; they are dropped when a specific phrase matched.
	generic bool
}

type rawPattern struct {
	kind     store.EntityKind
	language string
	expr     string
	generic  bool
}

var rawPatterns = []rawPattern{
	// product, en
	{store.EntityProduct, "en", `\b(?:that|this|the same) (?:one|product|item|model|compressor|part|unit)\b`, false},
	{store.EntityProduct, "en", `\bthat one\b`, false},
	{store.EntityProduct, "en", `\b(?:the )?(?:first|second|third|last|previous) (?:one|product|item)\b`, false},
	{store.EntityProduct, "en", `\btell me more\b`, false},
	{store.EntityProduct, "en", `\bmore (?:info|information|details)\b`, false},
	{store.EntityProduct, "en", `\b(?:of|for|about|on|with) (?:that|this|it)\b`, true},
	{store.EntityProduct, "en", `\b(?:is|does|has|can) (?:it|that|this)\b`, true},

	// product, de
	{store.EntityProduct, "de", `\b(?:dieses|diesem|dieser|das|dem|den) (?:produkt|modell|artikel|gerat|teil)\b`, false},
	{store.EntityProduct, "de", `\bdas erste produkt\b`, false},
	{store.EntityProduct, "de", `\b(?:mehr|weitere) (?:details|informationen|infos)\b`, false},
	{store.EntityProduct, "de", `\b(?:zeig mir|zeige) (?:das|dieses)\b`, false},
	{store.EntityProduct, "de", `\bder preis (?:fur|von) (?:dieses|das|diesem|dem)\b`, false},
	{store.EntityProduct, "de", `\bist das erste\b`, false},
	{store.EntityProduct, "de", `\b(?:davon|dazu|daruber)\b`, true},

	// product, tr
	{store.EntityProduct, "tr", `\bbu (?:urun|model|parca|cihaz)\b`, false},
	{store.EntityProduct, "tr", `\bdaha fazla (?:bilgi|detay|ayrinti)\b`, false},
	{store.EntityProduct, "tr", `\b(?:bunun|onun) (?:hakkinda|fiyati|stogu)\b`, false},
	{store.EntityProduct, "tr", `\bhakkinda\b`, true},

	// category
	{store.EntityCategory, "en", `\b(?:that|this|the same) category\b`, false},
	{store.EntityCategory, "de", `\b(?:diese|dieser|jene|die|derselben) kategorie\b`, false},
	{store.EntityCategory, "tr", `\b(?:bu|o|su) kategori(?:de|den|deki|nin)?\b`, false},

	// order
	{store.EntityOrder, "en", `\b(?:that|this|the|my) order\b`, false},
	{store.EntityOrder, "de", `\b(?:meine|meiner|diese|dieser|die) bestellung\b`, false},
	{store.EntityOrder, "tr", `\b(?:siparisim|siparisimi|siparisimin)\b`, false},
	{store.EntityOrder, "tr", `\bbu siparis\b`, false},
}

// patterns is compiled once; a bad expression is a programming error.
var patterns = compile(rawPatterns)

func compile(raw []rawPattern) []pattern {
	out := make([]pattern, 0, len(raw))
	for _, r := range raw {
		out = append(out, pattern{
			kind:     r.kind,
			language: r.language,
			re:       regexp.MustCompile(r.expr),
			generic:  r.generic,
		})
	}
	return out
}
