// Package textnorm canonicalizes free chat text and product names into a
// comparison form and extracts model-number and brand tokens from them.
package textnorm

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Runes that NFD does not decompose but that users type interchangeably
// with their ASCII counterparts.
var specialFolds = strings.NewReplacer(
	"ß", "ss",
	"ı", "i",
	"ø", "o",
	"æ", "ae",
	"œ", "oe",
)

// fold strips diacritics ("kühlschrank" → "kuhlschrank", "kompresör" →
// "kompresor"). A fresh transformer is built per call since transform
// chains keep state and are not safe for concurrent use.
func fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, specialFolds.Replace(s))
	if err != nil {
		return s
	}
	return out
}

// Fold lowercases text and strips diacritics, leaving punctuation alone.
func Fold(text string) string {
	return fold(strings.ToLower(text))
}

// Normalize returns the comparison form of text: lowercased, accent-folded,
// separators collapsed into single spaces. A '.' or ',' between two digits
// survives as '.', so "FF 8,5" and "ff 8.5" compare equal.
func Normalize(text string) string {
	in := []rune(fold(strings.ToLower(text)))

	var b strings.Builder
	b.Grow(len(in))
	pendingSpace := false

	for i, r := range in {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			if pendingSpace && b.Len() > 0 {
				b.WriteByte(' ')
			}
			pendingSpace = false
			b.WriteRune(r)
		case (r == '.' || r == ',') && i > 0 && i+1 < len(in) &&
			unicode.IsDigit(in[i-1]) && unicode.IsDigit(in[i+1]):
			b.WriteByte('.')
		default:
			pendingSpace = true
		}
	}

	return b.String()
}

// Compact is the normalized form with all spaces removed, used to compare
// concatenated model numbers ("NJ9238") against spaced ones ("NJ 9238").
func Compact(text string) string {
	return strings.ReplaceAll(Normalize(text), " ", "")
}

// Words splits the normalized text into words.
func Words(text string) []string {
	return strings.Fields(Normalize(text))
}

// ContentWords returns the normalized words of text minus stop-words.
func ContentWords(text string) []string {
	words := Words(text)
	out := make([]string, 0, len(words))
	for _, w := range words {
		if !IsStopWord(w) {
			out = append(out, w)
		}
	}
	return out
}

// ContainsWord reports whether word occurs as a whole word in the
// normalized text.
func ContainsWord(normalized, word string) bool {
	if word == "" {
		return false
	}
	return strings.Contains(" "+normalized+" ", " "+word+" ")
}

var (
	// letter-run + digit-run + optional concatenated suffix: "nj 9238",
	// "emy80clp", "nek-6160-z", "ff 8.5"
	letterDigitRule = regexp.MustCompile(`\b([a-z]{1,4})[ -]?(\d{1,5}(?:\.\d{1,2})?)([a-z]{1,4})?\b`)
	// bare digit runs of three or more digits: "9238"
	bareDigitsRule = regexp.MustCompile(`\b\d{3,}\b`)
	// letter-digit concatenations of any length: "dcb31", "sc15cl"
	concatRule = regexp.MustCompile(`\b([a-z]+)(\d+[a-z0-9]*)\b`)
)

// ExtractModelTokens applies the model-number rules to both the lowercased
// original text and its normalized form and returns every distinct match
// together with its spaced, hyphenated and concatenated variants, in the
// order they were found.
func ExtractModelTokens(text string) []string {
	seen := make(map[string]bool)
	tokens := make([]string, 0, 8)
	add := func(variants ...string) {
		for _, v := range variants {
			v = strings.TrimSpace(v)
			if v == "" || seen[v] {
				continue
			}
			seen[v] = true
			tokens = append(tokens, v)
		}
	}

	sources := []string{Fold(text), Normalize(text)}
	for _, src := range sources {
		for _, m := range letterDigitRule.FindAllStringSubmatch(src, -1) {
			letters, digits, suffix := m[1], m[2], m[3]
			if IsStopWord(letters) || len(letters)+len(digits) < 3 {
				continue
			}
			add(variantsOf(letters, digits)...)
			if suffix != "" {
				add(
					letters+" "+digits+" "+suffix,
					letters+"-"+digits+"-"+suffix,
					letters+digits+suffix,
				)
			}
		}

		for _, m := range bareDigitsRule.FindAllString(src, -1) {
			add(m)
		}

		for _, m := range concatRule.FindAllStringSubmatch(src, -1) {
			if IsStopWord(m[1]) {
				continue
			}
			add(variantsOf(m[1], m[2])...)
		}
	}

	return tokens
}

func variantsOf(letters, rest string) []string {
	return []string{
		letters + " " + rest,
		letters + "-" + rest,
		letters + rest,
	}
}

// brandMisspellings maps frequent typos to the brand they mean.
var brandMisspellings = map[string]string{
	"embracco": "embraco",
	"embracho": "embraco",
	"danfos":   "danfoss",
	"bitser":   "bitzer",
	"copland":  "copeland",
	"tecumse":  "tecumseh",
}

// ExtractBrand returns the first known brand, in list order, that occurs as
// a whole word in text (directly or through a known misspelling). The brand
// is returned in its normalized form; "" means no brand.
func ExtractBrand(text string, knownBrands []string) string {
	normalized := Normalize(text)
	if normalized == "" {
		return ""
	}

	for _, brand := range knownBrands {
		b := Normalize(brand)
		if b != "" && ContainsWord(normalized, b) {
			return b
		}
	}

	for _, w := range strings.Fields(normalized) {
		correct, ok := brandMisspellings[w]
		if !ok {
			continue
		}
		for _, brand := range knownBrands {
			if Normalize(brand) == correct {
				return correct
			}
		}
	}

	return ""
}
