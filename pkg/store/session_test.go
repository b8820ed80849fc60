package store

import (
	"fmt"
	"testing"
	"time"

	"sales-assistant-be/pkg/catalog"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2026, 5, 4, 9, 0, 0, 0, time.UTC)

func TestAppendMessageKeepsMostRecent(t *testing.T) {
	s := NewSession("u1", t0)
	for i := 0; i < MessageCap+7; i++ {
		s.AppendMessage(fmt.Sprintf("m%d", i), i%2 == 0, t0.Add(time.Duration(i)*time.Second))
	}

	require.Len(t, s.Messages, MessageCap)
	assert.Equal(t, "m7", s.Messages[0].Text)
	assert.Equal(t, fmt.Sprintf("m%d", MessageCap+6), s.Messages[MessageCap-1].Text)
	for i := 1; i < len(s.Messages); i++ {
		assert.True(t, s.Messages[i-1].At.Before(s.Messages[i].At))
	}
}

func TestEntitiesDedupAndTrim(t *testing.T) {
	var e Entities
	for i := 0; i < 7; i++ {
		e.Add(Entity{Kind: EntityProduct, Value: fmt.Sprintf("Product %d", i)}, t0.Add(time.Duration(i)*time.Minute))
	}
	require.Len(t, e.Products, EntityCap)
	assert.Equal(t, "Product 2", e.Products[0].Name)

	// Re-recording moves to the end and keeps the first mention time.
	e.Add(Entity{Kind: EntityProduct, Value: "product  3"}, t0.Add(time.Hour))
	require.Len(t, e.Products, EntityCap)
	last := e.Products[EntityCap-1]
	assert.Equal(t, "product  3", last.Name)
	assert.Equal(t, t0.Add(3*time.Minute), last.FirstMentionedAt)
	assert.Equal(t, t0.Add(time.Hour), last.LastMentionedAt)

	latest, ok := e.Latest(EntityProduct)
	require.True(t, ok)
	assert.Equal(t, "product  3", latest.Value)
}

func TestEntitiesOtherKinds(t *testing.T) {
	var e Entities
	assert.True(t, e.Add(Entity{Kind: EntityCategory, Value: "Kompressoren"}, t0))
	assert.True(t, e.Add(Entity{Kind: EntityCategory, Value: "Thermostat"}, t0))
	assert.True(t, e.Add(Entity{Kind: EntityCategory, Value: "kompressoren"}, t0))
	assert.Equal(t, []string{"Thermostat", "kompressoren"}, e.Categories)

	assert.True(t, e.Add(PriceRangeEntity(catalog.PriceRange{Min: 0, Max: 500}), t0))
	assert.True(t, e.Add(PriceRangeEntity(catalog.PriceRange{Min: 100, Max: 200}), t0))
	assert.True(t, e.Add(PriceRangeEntity(catalog.PriceRange{Min: 0, Max: 500}), t0))
	assert.Equal(t, []catalog.PriceRange{{Min: 100, Max: 200}, {Min: 0, Max: 500}}, e.PriceRanges)

	pr, ok := e.Latest(EntityPriceRange)
	require.True(t, ok)
	assert.Equal(t, "0-500", pr.Value)
	require.NotNil(t, pr.Range)
	assert.Equal(t, 500, pr.Range.Max)

	assert.True(t, e.Add(Entity{Kind: EntityOrder, Value: "1234"}, t0))
	assert.False(t, e.Add(Entity{Kind: EntityOrder, Value: ""}, t0))
	assert.False(t, e.Add(Entity{Kind: EntityPriceRange, Value: "x"}, t0))
	assert.False(t, e.Add(Entity{Kind: "colour", Value: "red"}, t0))

	assert.True(t, e.Add(Entity{Kind: EntityFeature, Value: "quiet"}, t0))
	assert.True(t, e.Add(Entity{Kind: EntityFeature, Value: "compact"}, t0))
	assert.True(t, e.Add(Entity{Kind: EntityFeature, Value: "quiet"}, t0))
	assert.Equal(t, []string{"compact", "quiet"}, e.Features)
	f, ok := e.Latest(EntityFeature)
	require.True(t, ok)
	assert.Equal(t, "quiet", f.Value)

	_, ok = Entities{}.Latest(EntityOrder)
	assert.False(t, ok)
}

func TestEntitiesRecent(t *testing.T) {
	var e Entities
	for _, name := range []string{"a", "b", "c", "d"} {
		e.Add(Entity{Kind: EntityProduct, Value: name}, t0)
	}
	assert.Equal(t, []string{"b", "c", "d"}, e.Recent(EntityProduct, 3))
	assert.Empty(t, e.Recent(EntityOrder, 3))
}

func TestCloneIsDeep(t *testing.T) {
	s := NewSession("u1", t0)
	s.AppendMessage("hi", true, t0)
	s.Entities.Add(Entity{Kind: EntityCategory, Value: "Thermostat"}, t0)
	s.StoreResultSet("category:Thermostat", []catalog.ProductRecord{{Name: "A"}})

	c := s.Clone()
	c.Messages[0].Text = "changed"
	c.Entities.Categories[0] = "changed"
	c.Pagination.Results[0].Name = "changed"

	assert.Equal(t, "hi", s.Messages[0].Text)
	assert.Equal(t, "Thermostat", s.Entities.Categories[0])
	assert.Equal(t, "A", s.Pagination.Results[0].Name)
}

func TestStoreResultSetRewinds(t *testing.T) {
	s := NewSession("u1", t0)
	s.Topic = TopicProductInfo
	s.StoreResultSet("category:Kompressoren", []catalog.ProductRecord{{Name: "A"}, {Name: "B"}})
	s.Pagination.Offset = 2

	s.StoreResultSet("price:0-500", []catalog.ProductRecord{{Name: "C"}})
	assert.Equal(t, "price:0-500", s.Pagination.QuerySignature)
	assert.Equal(t, 0, s.Pagination.Offset)
	assert.Equal(t, TopicProductInfo, s.Pagination.Topic)
	assert.Len(t, s.Pagination.Results, 1)
}

func TestExpired(t *testing.T) {
	s := NewSession("u1", t0)
	assert.False(t, s.Expired(t0.Add(48*time.Hour), 48*time.Hour))
	assert.True(t, s.Expired(t0.Add(48*time.Hour+time.Second), 48*time.Hour))
	assert.False(t, s.Expired(t0.Add(1000*time.Hour), 0))
}
