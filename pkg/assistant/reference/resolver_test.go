package reference

import (
	"context"
	"errors"
	"testing"
	"time"

	"sales-assistant-be/internal/repository/memory"
	"sales-assistant-be/pkg/assistant/session"
	"sales-assistant-be/pkg/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatch(t *testing.T) {
	tests := []struct {
		text  string
		kinds []store.EntityKind
		lang  string
	}{
		{"what's the price of that", []store.EntityKind{store.EntityProduct}, "en"},
		{"Tell me more", []store.EntityKind{store.EntityProduct}, "en"},
		{"Is that one in stock?", []store.EntityKind{store.EntityProduct}, "en"},
		{"Was kostet dieses Produkt?", []store.EntityKind{store.EntityProduct}, "de"},
		{"Der Preis für dieses?", []store.EntityKind{store.EntityProduct}, "de"},
		{"Bu ürün stokta mı?", []store.EntityKind{store.EntityProduct}, "tr"},
		{"show me more from this category", []store.EntityKind{store.EntityCategory}, "en"},
		{"Gibt es in dieser Kategorie etwas Günstigeres?", []store.EntityKind{store.EntityCategory}, "de"},
		{"bu kategoride başka ne var", []store.EntityKind{store.EntityCategory}, "tr"},
		{"where is my order", []store.EntityKind{store.EntityOrder}, "en"},
		{"Wann kommt meine Bestellung?", []store.EntityKind{store.EntityOrder}, "de"},
		{"siparişim nerede", []store.EntityKind{store.EntityOrder}, "tr"},
		{"Embraco NJ 9238", nil, ""},
		{"", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			hits := Match(tt.text)
			var kinds []store.EntityKind
			for _, h := range hits {
				kinds = append(kinds, h.Kind)
			}
			assert.Equal(t, tt.kinds, kinds)
			if tt.lang != "" {
				require.NotEmpty(t, hits)
				assert.Equal(t, tt.lang, hits[0].Language)
			}
		})
	}
}

func TestMatchGenericProductYieldsToSpecificKinds(t *testing.T) {
	// "for this" alone points at a product, but not inside "for this order".
	hits := Match("any news for this order?")
	require.Len(t, hits, 1)
	assert.Equal(t, store.EntityOrder, hits[0].Kind)
}

func TestMatchSeveralKinds(t *testing.T) {
	hits := Match("tell me more about this category")
	var kinds []store.EntityKind
	for _, h := range hits {
		kinds = append(kinds, h.Kind)
	}
	assert.ElementsMatch(t, []store.EntityKind{store.EntityProduct, store.EntityCategory}, kinds)
}

func TestResolveReturnsMostRecentEntity(t *testing.T) {
	ctx := context.Background()
	sessions := session.NewManager(memory.NewSessionRepository(time.Hour), session.DefaultConfig(), nil)
	r := NewResolver(sessions, nil)

	require.NoError(t, sessions.RecordEntity(ctx, "u1", store.Entity{Kind: store.EntityProduct, Value: "Danfoss TE 2"}))
	require.NoError(t, sessions.RecordEntity(ctx, "u1", store.Entity{Kind: store.EntityProduct, Value: "Embraco NJ 9238 GK"}))

	res := r.Resolve(ctx, "u1", "what's the price of that")
	e, ok := res.Get(store.EntityProduct)
	require.True(t, ok)
	assert.Equal(t, "Embraco NJ 9238 GK", e.Value)
}

func TestResolveDeclinesWithoutEntity(t *testing.T) {
	ctx := context.Background()
	sessions := session.NewManager(memory.NewSessionRepository(time.Hour), session.DefaultConfig(), nil)
	r := NewResolver(sessions, nil)

	res := r.Resolve(ctx, "u1", "what about my order?")
	assert.True(t, res.Empty())
	require.Len(t, res.Hits, 1)

	assert.True(t, r.Resolve(ctx, "u1", "Embraco NJ 9238").Empty())
}

type failingSessions struct{}

func (failingSessions) GetOrCreate(ctx context.Context, id string) (*store.Session, error) {
	return nil, errors.New("redis down")
}

func TestResolveSessionFailureDeclines(t *testing.T) {
	r := NewResolver(failingSessions{}, nil)
	assert.True(t, r.Resolve(context.Background(), "u1", "tell me more").Empty())
}
