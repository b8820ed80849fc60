// Package scoring gives catalog products a deterministic relevance score
// against a chat query and ranks them in a total order.
package scoring

import (
	"sort"
	"strings"
	"unicode"

	"sales-assistant-be/pkg/catalog"
	"sales-assistant-be/pkg/textnorm"
)

// Signal names the strongest rule that contributed to a score.
type Signal string

const (
	SignalExactName      Signal = "exact_name"
	SignalNormalizedName Signal = "normalized_name"
	SignalContainment    Signal = "containment"
	SignalModelToken     Signal = "model_token"
	SignalBrandToken     Signal = "brand_token"
	SignalWordOverlap    Signal = "word_overlap"
	SignalNone           Signal = ""
)

var signalStrength = map[Signal]int{
	SignalExactName:      6,
	SignalNormalizedName: 5,
	SignalContainment:    4,
	SignalModelToken:     3,
	SignalBrandToken:     2,
	SignalWordOverlap:    1,
	SignalNone:           0,
}

// Strength orders signals for tie-breaking; higher is stronger.
func (s Signal) Strength() int {
	return signalStrength[s]
}

// Config holds the score weights. Zero fields take the defaults.
type Config struct {
	ExactName          float64
	NormalizedName     float64
	Containment        float64
	ModelToken         float64
	ShortTokenBoundary float64
	Brand              float64
	WordOverlap        float64
}

func DefaultConfig() Config {
	return Config{
		ExactName:          100,
		NormalizedName:     80,
		Containment:        40,
		ModelToken:         30,
		ShortTokenBoundary: 15,
		Brand:              15,
		WordOverlap:        5,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.ExactName == 0 {
		c.ExactName = d.ExactName
	}
	if c.NormalizedName == 0 {
		c.NormalizedName = d.NormalizedName
	}
	if c.Containment == 0 {
		c.Containment = d.Containment
	}
	if c.ModelToken == 0 {
		c.ModelToken = d.ModelToken
	}
	if c.ShortTokenBoundary == 0 {
		c.ShortTokenBoundary = d.ShortTokenBoundary
	}
	if c.Brand == 0 {
		c.Brand = d.Brand
	}
	if c.WordOverlap == 0 {
		c.WordOverlap = d.WordOverlap
	}
	return c
}

// Candidate is a product with its score for one query.
type Candidate struct {
	catalog.ProductRecord
	Score         float64 `json:"score"`
	MatchedSignal Signal  `json:"matched_signal"`
}

// Scorer is stateless; one instance can serve all goroutines.
type Scorer struct {
	cfg Config
}

func NewScorer(cfg Config) *Scorer {
	return &Scorer{cfg: cfg.withDefaults()}
}

// Score sums every rule that fires for product against query. modelTokens
// and brand are the values extracted from the query by textnorm.
func (s *Scorer) Score(product catalog.ProductRecord, query string, modelTokens []string, brand string) Candidate {
	c := Candidate{ProductRecord: product}
	strongest := SignalNone
	fire := func(sig Signal, points float64) {
		c.Score += points
		if sig.Strength() > strongest.Strength() {
			strongest = sig
		}
	}

	name := product.Name
	nName := textnorm.Normalize(name)
	cName := strings.ReplaceAll(nName, " ", "")
	nQuery := textnorm.Normalize(query)
	cQuery := strings.ReplaceAll(nQuery, " ", "")

	if q := strings.ToLower(strings.TrimSpace(query)); q != "" && q == strings.ToLower(name) {
		fire(SignalExactName, s.cfg.ExactName)
	}

	if nQuery != "" && nQuery == nName {
		fire(SignalNormalizedName, s.cfg.NormalizedName)
	} else if ratio := containmentRatio(nQuery, nName, cQuery, cName); ratio > 0 {
		fire(SignalContainment, s.cfg.Containment*ratio)
	}

	// Spaced, hyphenated and concatenated spellings of one model number
	// share a compact form and count once.
	scored := make(map[string]struct{}, len(modelTokens))
	for _, tok := range modelTokens {
		nTok := textnorm.Normalize(tok)
		cTok := strings.ReplaceAll(nTok, " ", "")
		if cTok == "" {
			continue
		}
		if _, dup := scored[cTok]; dup {
			continue
		}
		scored[cTok] = struct{}{}
		if (nTok != "" && strings.Contains(nName, nTok)) || strings.Contains(cName, cTok) {
			fire(SignalModelToken, s.cfg.ModelToken)
			if len(cTok) <= 4 && boundedMatch(cName, cTok) {
				fire(SignalModelToken, s.cfg.ShortTokenBoundary)
			}
		}
	}

	if b := textnorm.Normalize(brand); b != "" && textnorm.ContainsWord(nName, b) {
		fire(SignalBrandToken, s.cfg.Brand)
	}

	nameWords := make(map[string]struct{})
	for _, w := range strings.Fields(nName) {
		nameWords[w] = struct{}{}
	}
	seen := make(map[string]struct{})
	for _, w := range strings.Fields(nQuery) {
		if textnorm.IsStopWord(w) {
			continue
		}
		if _, dup := seen[w]; dup {
			continue
		}
		seen[w] = struct{}{}
		if _, ok := nameWords[w]; ok {
			fire(SignalWordOverlap, s.cfg.WordOverlap)
		}
	}

	c.MatchedSignal = strongest
	return c
}

// containmentRatio is len(shorter)/len(longer) when one side contains the
// other in normalized or compact form, else 0.
func containmentRatio(nQuery, nName, cQuery, cName string) float64 {
	if nQuery == "" || nName == "" {
		return 0
	}
	pairs := [][2]string{{nQuery, nName}, {cQuery, cName}}
	for _, p := range pairs {
		shorter, longer := p[0], p[1]
		if len(shorter) > len(longer) {
			shorter, longer = longer, shorter
		}
		if shorter != "" && strings.Contains(longer, shorter) {
			return float64(len([]rune(shorter))) / float64(len([]rune(longer)))
		}
	}
	return 0
}

// boundedMatch reports whether tok occurs in s followed by the end of s or a
// non-digit, so "ff8" does not count as a hit inside "ff85".
func boundedMatch(s, tok string) bool {
	for from := 0; from < len(s); {
		i := strings.Index(s[from:], tok)
		if i < 0 {
			return false
		}
		end := from + i + len(tok)
		if end == len(s) || !unicode.IsDigit(rune(s[end])) {
			return true
		}
		from += i + 1
	}
	return false
}

// Rank scores every product and sorts the candidates: score descending,
// remote before local, stronger signal first, then name and URL ascending.
func (s *Scorer) Rank(products []catalog.ProductRecord, query string, modelTokens []string, brand string) []Candidate {
	out := make([]Candidate, 0, len(products))
	for _, p := range products {
		out = append(out, s.Score(p, query, modelTokens, brand))
	}
	sort.SliceStable(out, func(i, j int) bool {
		return Less(out[i], out[j])
	})
	return out
}

// Less is the ranking order.
func Less(a, b Candidate) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	if ra, rb := a.Source.Rank(), b.Source.Rank(); ra != rb {
		return ra < rb
	}
	if sa, sb := a.MatchedSignal.Strength(), b.MatchedSignal.Strength(); sa != sb {
		return sa > sb
	}
	if a.Name != b.Name {
		return a.Name < b.Name
	}
	return a.URL < b.URL
}
