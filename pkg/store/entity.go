package store

import (
	"fmt"
	"time"

	"sales-assistant-be/pkg/catalog"
	"sales-assistant-be/pkg/textnorm"
)

type EntityKind string

const (
	EntityProduct    EntityKind = "product"
	EntityCategory   EntityKind = "category"
	EntityPriceRange EntityKind = "price_range"
	EntityOrder      EntityKind = "order"
	EntityFeature    EntityKind = "feature"
)

// Entity is a value of one of the tracked kinds. Range is set only for
// price ranges.
type Entity struct {
	Kind  EntityKind          `json:"kind"`
	Value string              `json:"value"`
	Range *catalog.PriceRange `json:"range,omitempty"`
}

func PriceRangeEntity(r catalog.PriceRange) Entity {
	return Entity{Kind: EntityPriceRange, Value: fmt.Sprintf("%d-%d", r.Min, r.Max), Range: &r}
}

type ProductMention struct {
	Name             string    `json:"name"`
	FirstMentionedAt time.Time `json:"first_mentioned_at"`
	LastMentionedAt  time.Time `json:"last_mentioned_at"`
}

// Entities keeps the last EntityCap values per kind. The most recent value
// is always the last element.
type Entities struct {
	Products    []ProductMention     `json:"products"`
	Categories  []string             `json:"categories"`
	PriceRanges []catalog.PriceRange `json:"price_ranges"`
	Orders      []string             `json:"orders"`
	Features    []string             `json:"features"`
}

func (e Entities) clone() Entities {
	return Entities{
		Products:    append([]ProductMention(nil), e.Products...),
		Categories:  append([]string(nil), e.Categories...),
		PriceRanges: append([]catalog.PriceRange(nil), e.PriceRanges...),
		Orders:      append([]string(nil), e.Orders...),
		Features:    append([]string(nil), e.Features...),
	}
}

// Add records an entity as the most recent of its kind. Re-recording a known
// value moves it to the end. Unknown kinds and empty values are ignored.
func (e *Entities) Add(ent Entity, at time.Time) bool {
	switch ent.Kind {
	case EntityProduct:
		key := textnorm.Normalize(ent.Value)
		if key == "" {
			return false
		}
		mention := ProductMention{Name: ent.Value, FirstMentionedAt: at, LastMentionedAt: at}
		for i, p := range e.Products {
			if textnorm.Normalize(p.Name) == key {
				mention.FirstMentionedAt = p.FirstMentionedAt
				e.Products = append(e.Products[:i], e.Products[i+1:]...)
				break
			}
		}
		e.Products = trimTail(append(e.Products, mention))
	case EntityCategory:
		if ent.Value == "" {
			return false
		}
		e.Categories = trimTail(moveToEnd(e.Categories, ent.Value, func(a, b string) bool {
			return textnorm.Normalize(a) == textnorm.Normalize(b)
		}))
	case EntityPriceRange:
		if ent.Range == nil {
			return false
		}
		e.PriceRanges = trimTail(moveToEnd(e.PriceRanges, *ent.Range, func(a, b catalog.PriceRange) bool {
			return a == b
		}))
	case EntityOrder:
		if ent.Value == "" {
			return false
		}
		e.Orders = trimTail(moveToEnd(e.Orders, ent.Value, func(a, b string) bool { return a == b }))
	case EntityFeature:
		if ent.Value == "" {
			return false
		}
		e.Features = trimTail(moveToEnd(e.Features, ent.Value, func(a, b string) bool { return a == b }))
	default:
		return false
	}
	return true
}

// Latest returns the most recent entity of kind.
func (e Entities) Latest(kind EntityKind) (Entity, bool) {
	switch kind {
	case EntityProduct:
		if n := len(e.Products); n > 0 {
			return Entity{Kind: kind, Value: e.Products[n-1].Name}, true
		}
	case EntityCategory:
		if n := len(e.Categories); n > 0 {
			return Entity{Kind: kind, Value: e.Categories[n-1]}, true
		}
	case EntityPriceRange:
		if n := len(e.PriceRanges); n > 0 {
			return PriceRangeEntity(e.PriceRanges[n-1]), true
		}
	case EntityOrder:
		if n := len(e.Orders); n > 0 {
			return Entity{Kind: kind, Value: e.Orders[n-1]}, true
		}
	case EntityFeature:
		if n := len(e.Features); n > 0 {
			return Entity{Kind: kind, Value: e.Features[n-1]}, true
		}
	}
	return Entity{}, false
}

// Recent returns up to n values of kind, oldest first.
func (e Entities) Recent(kind EntityKind, n int) []string {
	var all []string
	switch kind {
	case EntityProduct:
		for _, p := range e.Products {
			all = append(all, p.Name)
		}
	case EntityCategory:
		all = e.Categories
	case EntityPriceRange:
		for _, r := range e.PriceRanges {
			all = append(all, fmt.Sprintf("%d-%d", r.Min, r.Max))
		}
	case EntityOrder:
		all = e.Orders
	case EntityFeature:
		all = e.Features
	}
	if len(all) > n {
		all = all[len(all)-n:]
	}
	return append([]string(nil), all...)
}

func moveToEnd[T any](list []T, v T, equal func(a, b T) bool) []T {
	out := make([]T, 0, len(list)+1)
	for _, x := range list {
		if !equal(x, v) {
			out = append(out, x)
		}
	}
	return append(out, v)
}

func trimTail[T any](list []T) []T {
	if over := len(list) - EntityCap; over > 0 {
		return append(list[:0:0], list[over:]...)
	}
	return list
}
