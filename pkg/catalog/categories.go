package catalog

import "sales-assistant-be/pkg/textnorm"

// Category is a shop category together with the keywords that select it in
// chat text.
type Category struct {
	ID       int      `json:"id"`
	Name     string   `json:"name"`
	Keywords []string `json:"keywords"`
}

// Signature is the result-set key for a category listing.
func (c Category) Signature() string {
	return "category:" + c.Name
}

// Categories lists the shop categories with their WooCommerce ids. Keywords
// are stored in normalized form. More specific categories come first so
// "halbhermetischer kompressor" is not classified as plain Kompressoren.
var Categories = []Category{
	{ID: 86, Name: "Halbhermetische Kompressoren", Keywords: []string{"halbhermetisch", "halbhermetische", "halbhermetischer", "semi hermetic", "semihermetic", "yari hermetik"}},
	{ID: 132, Name: "Kompressoren", Keywords: []string{"kompressor", "kompressoren", "compressor", "compressors", "kompresor", "kompresorler", "verdichter"}},
	{ID: 74, Name: "Kältesysteme", Keywords: []string{"kaltesystem", "kaltesysteme", "kalteanlage", "refrigeration system", "refrigeration systems", "sogutma sistemi", "verflussigungssatz", "condensing unit"}},
	{ID: 95, Name: "Expansionsventile", Keywords: []string{"expansionsventil", "expansionsventile", "expansion valve", "expansion valves", "genlesme valfi", "ventil", "valve"}},
	{ID: 161, Name: "Thermostat", Keywords: []string{"thermostat", "thermostate", "termostat", "regler", "controller"}},
	{ID: 94, Name: "Tiefkühlraumtür", Keywords: []string{"tiefkuhlraumtur", "kuhlraumtur", "freezer door", "cold room door", "soguk oda kapisi"}},
	{ID: 90, Name: "Kühlschränke", Keywords: []string{"kuhlschrank", "kuhlschranke", "fridge", "fridges", "refrigerator", "refrigerators", "buzdolabi"}},
	{ID: 93, Name: "Klimageräte-Einheiten", Keywords: []string{"klimagerat", "klimagerate", "klimaanlage", "air conditioner", "air conditioning", "klima"}},
}

// CategoryByName finds a category by its display or normalized name.
func CategoryByName(name string) (Category, bool) {
	n := textnorm.Normalize(name)
	for _, c := range Categories {
		if textnorm.Normalize(c.Name) == n {
			return c, true
		}
	}
	return Category{}, false
}

// MatchesName reports whether a product name carries one of the category's
// keywords as a whole word.
func (c Category) MatchesName(productName string) bool {
	n := textnorm.Normalize(productName)
	for _, kw := range c.Keywords {
		if textnorm.ContainsWord(n, kw) {
			return true
		}
	}
	return false
}

// KnownBrands are checked in order by the brand extractor.
var KnownBrands = []string{
	"embraco",
	"danfoss",
	"bitzer",
	"secop",
	"copeland",
	"tecumseh",
	"ebm papst",
	"ebm",
	"york",
}
