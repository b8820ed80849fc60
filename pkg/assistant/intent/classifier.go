// Package intent sorts a chat message into one of the request kinds the
// assistant can answer and pulls out the signals each kind needs.
package intent

import (
	"regexp"
	"strconv"
	"strings"

	"sales-assistant-be/pkg/catalog"
	"sales-assistant-be/pkg/store"
	"sales-assistant-be/pkg/textnorm"
)

type Kind string

const (
	KindShowMore   Kind = "show_more"
	KindOrder      Kind = "order"
	KindPriceRange Kind = "price_range"
	KindCategory   Kind = "category"
	KindProduct    Kind = "product"
)

type Intent struct {
	Kind        Kind                `json:"kind"`
	Query       string              `json:"query,omitempty"`
	Category    *catalog.Category   `json:"category,omitempty"`
	PriceRange  *catalog.PriceRange `json:"price_range,omitempty"`
	OrderNumber string              `json:"order_number,omitempty"`
	Brand       string              `json:"brand,omitempty"`
	Features    []string            `json:"features,omitempty"`
	Topic       store.Topic         `json:"topic,omitempty"`
}

var (
	showMoreRules = []*regexp.Regexp{
		regexp.MustCompile(`\b(?:show|give me|see) (?:me )?more\b`),
		regexp.MustCompile(`\bmore (?:results|products|options)\b`),
		regexp.MustCompile(`\bnext (?:page|results|ones)\b`),
		regexp.MustCompile(`\b(?:mehr|weitere) (?:anzeigen|zeigen|ergebnisse|produkte)\b`),
		regexp.MustCompile(`\bzeig(?:e)? (?:mir )?mehr\b`),
		regexp.MustCompile(`\bdaha fazla (?:goster|urun|sonuc)\b`),
		regexp.MustCompile(`\bsonraki\b`),
		regexp.MustCompile(`^(?:more|mehr|weiter|weitere|next|devam)$`),
	}

	// "show me more details" asks about a product, not for the next page.
	detailRequestRules = []*regexp.Regexp{
		regexp.MustCompile(`\bmore (?:details?|info|infos|information|about)\b`),
		regexp.MustCompile(`\b(?:mehr|weitere) (?:details?|infos?|informationen|uber|dazu|davon)\b`),
		regexp.MustCompile(`\bdaha fazla (?:bilgi|detay|ayrinti)\b`),
	}

	// Run against folded text so '#' survives.
	orderNumberRules = []*regexp.Regexp{
		regexp.MustCompile(`#\s?(\d{4,})`),
		regexp.MustCompile(`\b(?:order|bestellung|auftrag|siparis|bestellnummer)\s*(?:nr\.?|no\.?|number|nummer|numarasi)?\s*:?\s*#?(\d{4,})\b`),
	}
	orderKeyword = regexp.MustCompile(`\b(?:order|orders|bestellung|bestellungen|auftrag|siparis|siparisim|siparisimi|siparisimin|lieferung|sendung|tracking|kargo)\b`)
	orderStatus  = regexp.MustCompile(`\b(?:status|where|when|wo|wann|track|delivery|shipped|geliefert|versandt|versand|lieferstatus|nerede|durum|durumu|ne zaman|teslimat|my|meine|meiner|diese|siparisim|siparisimi|siparisimin)\b`)

	currency = `(?:\s?(?:euro|eur|tl|lira))?`
	amount   = `(\d{1,3}(?:\.\d{3})+|\d+)`

	priceBetweenRules = []*regexp.Regexp{
		regexp.MustCompile(`\b(?:zwischen|von|between|from)\s` + amount + currency + `\s(?:bis|und|and|to)\s` + amount + currency + `\b`),
		regexp.MustCompile(`\b` + amount + currency + `\s(?:ile|ve)\s` + amount + currency + `\s(?:arasinda|arasi|arasindaki)\b`),
	}
	priceUnderRules = []*regexp.Regexp{
		regexp.MustCompile(`\b(?:unter|weniger als|bis zu|hochstens|maximal|max|under|less than|up to|below|cheaper than|at most)\s` + amount + currency + `\b`),
		regexp.MustCompile(`\b` + amount + currency + `\s(?:altinda|altindaki|alti|den ucuz)\b`),
	}
)

var topicRules = []struct {
	topic store.Topic
	rules []*regexp.Regexp
}{
	{store.TopicProductInfo, []*regexp.Regexp{
		regexp.MustCompile(`\b(?:preis|kosten|kostet|price|cost|fiyat)`),
		regexp.MustCompile(`\b(?:kompressor|compressor|kompresor)`),
		regexp.MustCompile(`\b(?:produkt|product|urun)`),
		regexp.MustCompile(`\b(?:modell|model|typ|type)\b`),
		regexp.MustCompile(`\b(?:embraco|danfoss|bitzer|secop|copeland|tecumseh)\b`),
	}},
	{store.TopicOrderStatus, []*regexp.Regexp{
		regexp.MustCompile(`\b(?:bestellung|auftrag|order|siparis)`),
		regexp.MustCompile(`\b(?:status|zustand|durum)\b`),
		regexp.MustCompile(`\b(?:lieferung|versand|delivery|shipping|teslimat)\b`),
	}},
	{store.TopicSalesInquiry, []*regexp.Regexp{
		regexp.MustCompile(`\b(?:empfehlen|empfehlung|recommend|oner|tavsiye)`),
		regexp.MustCompile(`\b(?:angebot|offer|teklif)`),
		regexp.MustCompile(`\b(?:suche|looking for|ariyorum)\b`),
		regexp.MustCompile(`\b(?:kaufen|buy|satin)\b`),
	}},
	{store.TopicSupport, []*regexp.Regexp{
		regexp.MustCompile(`\b(?:hilfe|help|yardim)`),
		regexp.MustCompile(`\b(?:problem|issue|sorun)`),
		regexp.MustCompile(`\b(?:kontakt|contact|iletisim)`),
		regexp.MustCompile(`\b(?:frage|question|soru)`),
	}},
}

// Classify sorts text into a Kind. Precedence: show-more, order, price
// range, category, product. A price or category phrase next to a model
// number ("NJ 9238 unter 400 Euro") is a product question; the phrase is
// cut from the query. Brand and features ride along on listings so they
// can narrow and rank them.
func Classify(text string) Intent {
	normalized := textnorm.Normalize(text)
	folded := textnorm.Fold(text)
	in := Intent{Kind: KindProduct, Query: strings.TrimSpace(text), Topic: DetectTopic(text)}

	if isShowMore(normalized) {
		in.Kind = KindShowMore
		in.Query = ""
		return in
	}

	for _, re := range orderNumberRules {
		if m := re.FindStringSubmatch(folded); m != nil {
			in.Kind = KindOrder
			in.OrderNumber = m[1]
			in.Query = ""
			in.Topic = store.TopicOrderStatus
			return in
		}
	}
	if orderKeyword.MatchString(normalized) && orderStatus.MatchString(normalized) {
		in.Kind = KindOrder
		in.Query = ""
		in.Topic = store.TopicOrderStatus
		return in
	}

	in.Features = catalog.ExtractFeatures(text)

	rest := normalized
	if r, phrase, ok := extractPriceRange(normalized); ok {
		in.PriceRange = &r
		rest = strings.Replace(rest, phrase, " ", 1)
	}
	if c, keyword, ok := extractCategory(rest); ok {
		in.Category = &c
		rest = removeWord(rest, keyword)
	}

	if in.PriceRange == nil && in.Category == nil {
		return in
	}

	rest = strings.Join(strings.Fields(rest), " ")
	if len(textnorm.ExtractModelTokens(rest)) > 0 {
		in.Kind = KindProduct
		in.Query = rest
		return in
	}

	in.Brand = textnorm.ExtractBrand(rest, catalog.KnownBrands)
	in.Query = ""
	if in.PriceRange != nil {
		in.Kind = KindPriceRange
	} else {
		in.Kind = KindCategory
	}
	return in
}

func isShowMore(normalized string) bool {
	for _, re := range detailRequestRules {
		if re.MatchString(normalized) {
			return false
		}
	}
	for _, re := range showMoreRules {
		if re.MatchString(normalized) {
			return true
		}
	}
	return false
}

// DetectTopic returns the first topic whose patterns occur in text, or
// TopicNone.
func DetectTopic(text string) store.Topic {
	normalized := textnorm.Normalize(text)
	for _, t := range topicRules {
		for _, re := range t.rules {
			if re.MatchString(normalized) {
				return t.topic
			}
		}
	}
	return store.TopicNone
}

// ExtractCategory finds the first category whose keyword occurs in text.
func ExtractCategory(text string) (catalog.Category, bool) {
	c, _, ok := extractCategory(textnorm.Normalize(text))
	return c, ok
}

func extractCategory(normalized string) (catalog.Category, string, bool) {
	for _, c := range catalog.Categories {
		for _, kw := range c.Keywords {
			if textnorm.ContainsWord(normalized, kw) {
				return c, kw, true
			}
		}
	}
	return catalog.Category{}, "", false
}

// ExtractPriceRange finds a price-range phrase in text.
func ExtractPriceRange(text string) (catalog.PriceRange, bool) {
	r, _, ok := extractPriceRange(textnorm.Normalize(text))
	return r, ok
}

func extractPriceRange(normalized string) (catalog.PriceRange, string, bool) {
	for _, re := range priceBetweenRules {
		if m := re.FindStringSubmatch(normalized); m != nil {
			lo, errLo := parseAmount(m[1])
			hi, errHi := parseAmount(m[2])
			if errLo != nil || errHi != nil {
				continue
			}
			if lo > hi {
				lo, hi = hi, lo
			}
			return catalog.PriceRange{Min: lo, Max: hi}, m[0], true
		}
	}
	for _, re := range priceUnderRules {
		if m := re.FindStringSubmatch(normalized); m != nil {
			hi, err := parseAmount(m[1])
			if err != nil {
				continue
			}
			return catalog.PriceRange{Min: 0, Max: hi}, m[0], true
		}
	}
	return catalog.PriceRange{}, "", false
}

// parseAmount reads whole currency units; "1.500" is fifteen hundred.
func parseAmount(s string) (int, error) {
	return strconv.Atoi(strings.ReplaceAll(s, ".", ""))
}

func removeWord(normalized, word string) string {
	padded := " " + normalized + " "
	padded = strings.Replace(padded, " "+word+" ", " ", 1)
	return strings.TrimSpace(padded)
}
