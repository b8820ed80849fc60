package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"sales-assistant-be/pkg/textnorm"
)

// minContainmentRunes keeps brand-only queries ("embraco") from matching
// half the catalog through containment.
const minContainmentRunes = 5

var termCompactor = strings.NewReplacer(" ", "", "-", "")

// LocalProduct is one row of the static fallback catalog.
type LocalProduct struct {
	Name     string `json:"product_name"`
	Price    Price  `json:"price"`
	Status   string `json:"status"`
	URL      string `json:"url"`
	SKU      string `json:"sku,omitempty"`
	Category string `json:"category,omitempty"`
}

// Price accepts both JSON numbers and the string prices WooCommerce and
// spreadsheet exports use ("249.00", "249,00").
type Price float64

func (p *Price) UnmarshalJSON(data []byte) error {
	s := strings.Trim(strings.TrimSpace(string(data)), `"`)
	if s == "" || s == "null" {
		*p = 0
		return nil
	}
	v, err := parsePrice(s)
	if err != nil {
		return fmt.Errorf("invalid price %q: %w", s, err)
	}
	*p = Price(v)
	return nil
}

func parsePrice(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	if strings.Contains(s, ",") && !strings.Contains(s, ".") {
		s = strings.ReplaceAll(s, ",", ".")
	} else {
		s = strings.ReplaceAll(s, ",", "")
	}
	return strconv.ParseFloat(s, 64)
}

// LoadLocalFile reads a JSON array of LocalProduct.
func LoadLocalFile(path string) ([]LocalProduct, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read local catalog %s: %w", path, err)
	}

	var products []LocalProduct
	if err := json.Unmarshal(data, &products); err != nil {
		return nil, fmt.Errorf("failed to decode local catalog %s: %w", path, err)
	}
	return products, nil
}

type localEntry struct {
	record     ProductRecord
	normalized string
	compact    string
}

// Local is the preloaded fallback catalog. It is read-only after
// construction and safe for concurrent use.
type Local struct {
	entries []localEntry
}

func NewLocal(products []LocalProduct, currency string) *Local {
	entries := make([]localEntry, 0, len(products))
	for _, p := range products {
		if strings.TrimSpace(p.Name) == "" {
			continue
		}
		entries = append(entries, localEntry{
			record: ProductRecord{
				Name:        p.Name,
				Price:       float64(p.Price),
				Currency:    currency,
				StockStatus: NormalizeStockStatus(p.Status),
				URL:         p.URL,
				SKU:         p.SKU,
				Category:    p.Category,
				Source:      SourceLocal,
			},
			normalized: textnorm.Normalize(p.Name),
			compact:    textnorm.Compact(p.Name),
		})
	}
	return &Local{entries: entries}
}

func (l *Local) Len() int {
	return len(l.entries)
}

// Search returns local products for a free-text query. Strategies are tried
// in order and the first one that yields anything wins: exact normalized
// name, containment in either direction, then per-term overlap.
func (l *Local) Search(query string, limit int) []ProductRecord {
	nq := textnorm.Normalize(query)
	if nq == "" {
		return nil
	}
	cq := strings.ReplaceAll(nq, " ", "")

	var out []ProductRecord
	for _, e := range l.entries {
		if e.normalized == nq {
			out = append(out, e.record)
		}
	}
	if len(out) > 0 {
		return truncate(out, limit)
	}

	for _, e := range l.entries {
		if containsGuarded(e.normalized, nq) || containsGuarded(e.compact, cq) {
			out = append(out, e.record)
		}
	}
	if len(out) > 0 {
		return truncate(out, limit)
	}

	terms := textnorm.ContentWords(query)
	terms = append(terms, textnorm.ExtractModelTokens(query)...)
	if len(terms) == 0 {
		return nil
	}

	compactTerms := make([]string, len(terms))
	for i, t := range terms {
		compactTerms[i] = termCompactor.Replace(t)
	}

	type hit struct {
		record ProductRecord
		count  int
	}
	var hits []hit
	for _, e := range l.entries {
		count := 0
		for i, t := range terms {
			ct := compactTerms[i]
			if textnorm.ContainsWord(e.normalized, t) || (len(ct) >= 3 && strings.Contains(e.compact, ct)) {
				count++
			}
		}
		if count > 0 {
			hits = append(hits, hit{record: e.record, count: count})
		}
	}
	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].count > hits[j].count
	})
	for _, h := range hits {
		out = append(out, h.record)
	}
	return truncate(out, limit)
}

// containsGuarded reports containment in either direction when the shorter
// side is long enough to be meaningful.
func containsGuarded(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	shorter, longer := a, b
	if len(shorter) > len(longer) {
		shorter, longer = longer, shorter
	}
	if utf8.RuneCountInString(shorter) < minContainmentRunes {
		return false
	}
	return strings.Contains(longer, shorter)
}

// ByCategory lists products whose category field names the category, or,
// for rows without one, whose name carries a category keyword.
func (l *Local) ByCategory(c Category, limit int) []ProductRecord {
	want := textnorm.Normalize(c.Name)
	var out []ProductRecord
	for _, e := range l.entries {
		if e.record.Category != "" {
			if textnorm.Normalize(e.record.Category) == want {
				out = append(out, e.record)
			}
			continue
		}
		if c.MatchesName(e.record.Name) {
			out = append(out, e.record)
		}
	}
	return truncate(out, limit)
}

// ByPriceRange lists products priced inside the inclusive range, cheapest
// first and by name for equal prices.
func (l *Local) ByPriceRange(r PriceRange, limit int) []ProductRecord {
	var out []ProductRecord
	for _, e := range l.entries {
		if e.record.Price > 0 && r.Contains(e.record.Price) {
			out = append(out, e.record)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Price != out[j].Price {
			return out[i].Price < out[j].Price
		}
		return out[i].Name < out[j].Name
	})
	return truncate(out, limit)
}

func truncate(records []ProductRecord, limit int) []ProductRecord {
	if limit > 0 && len(records) > limit {
		return records[:limit]
	}
	return records
}
