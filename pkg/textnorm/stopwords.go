package textnorm

// Function words in the supported languages (en, de, tr), in normalized
// form. They never count as a product-name overlap and never start a model
// token ("for 400", "bis 300").
var stopWords = map[string]struct{}{
	// en
	"a": {}, "an": {}, "and": {}, "are": {}, "at": {}, "be": {}, "by": {},
	"can": {}, "do": {}, "does": {}, "for": {}, "from": {}, "have": {},
	"how": {}, "i": {}, "in": {}, "is": {}, "it": {}, "me": {}, "my": {},
	"of": {}, "on": {}, "one": {}, "or": {}, "please": {}, "s": {},
	"than": {}, "that": {}, "the": {}, "this": {}, "to": {}, "up": {},
	"what": {}, "whats": {}, "which": {}, "with": {}, "you": {}, "your": {},
	"show": {}, "price": {}, "cost": {}, "need": {}, "want": {}, "about": {},
	// de
	"am": {}, "auf": {}, "bis": {}, "bitte": {}, "das": {}, "dem": {},
	"den": {}, "der": {}, "des": {}, "die": {}, "dieses": {}, "ein": {},
	"eine": {}, "einen": {}, "fur": {}, "haben": {}, "ich": {}, "im": {},
	"ist": {}, "mit": {}, "sie": {}, "und": {}, "von": {}, "was": {},
	"wie": {}, "zu": {}, "zum": {}, "zur": {}, "preis": {}, "kostet": {},
	"suche": {}, "brauche": {},
	// tr
	"bir": {}, "bu": {}, "icin": {}, "ile": {}, "mi": {}, "mu": {},
	"ne": {}, "o": {}, "var": {}, "ve": {}, "fiyat": {}, "fiyati": {},
}

// IsStopWord reports whether the normalized word is a function word.
func IsStopWord(word string) bool {
	_, ok := stopWords[word]
	return ok
}
