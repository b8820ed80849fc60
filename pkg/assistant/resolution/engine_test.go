package resolution

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"sales-assistant-be/internal/repository/memory"
	"sales-assistant-be/pkg/assistant/pagination"
	"sales-assistant-be/pkg/assistant/scoring"
	"sales-assistant-be/pkg/assistant/session"
	"sales-assistant-be/pkg/catalog"
	"sales-assistant-be/pkg/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func localCatalog() *catalog.Local {
	products := []catalog.LocalProduct{
		{Name: "Embraco NJ 9238", Price: 689, Status: "instock", URL: "https://shop.example/nj9238", Category: "Kompressoren"},
		{Name: "Embraco NJ 9232 GK", Price: 640, Status: "instock", URL: "https://shop.example/nj9232gk", Category: "Kompressoren"},
		{Name: "Embraco NEK 6160 Z", Price: 249, Status: "outofstock", URL: "https://shop.example/nek6160z", Category: "Kompressoren"},
		{Name: "Danfoss TE 2 Expansionsventil", Price: 89, Status: "instock", URL: "https://shop.example/te2", Category: "Expansionsventile"},
		{Name: "Secop SC 18 G", Price: 2, Status: "instock", URL: "https://shop.example/sc18g-a"},
		{Name: "Secop SC 18 G", Price: 3, Status: "instock", URL: "https://shop.example/sc18g-b"},
	}
	for i := 1; i <= 9; i++ {
		products = append(products, catalog.LocalProduct{
			Name:     fmt.Sprintf("Bitzer Kompressor Serie %d", i),
			Price:    catalog.Price(1000 + i),
			Status:   "instock",
			URL:      fmt.Sprintf("https://shop.example/bitzer-%d", i),
			Category: "Kompressoren",
		})
	}
	return catalog.NewLocal(products, "EUR")
}

type fixture struct {
	engine   *Engine
	sessions *session.Manager
	pager    *pagination.Controller
}

func newFixture(t *testing.T, cat Catalog) fixture {
	t.Helper()
	sessions := session.NewManager(memory.NewSessionRepository(time.Hour), session.DefaultConfig(), nil)
	pager := pagination.NewController(sessions, 5)
	if cat == nil {
		cat = catalog.NewAdapter(nil, localCatalog(), nil)
	}
	engine := NewEngine(cat, scoring.NewScorer(scoring.DefaultConfig()), sessions, pager, DefaultConfig(), nil)
	return fixture{engine: engine, sessions: sessions, pager: pager}
}

func TestResolveConcatenatedModelNumber(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)

	res := f.engine.Resolve(ctx, "u1", "NJ9238", nil)
	require.Equal(t, OutcomeUniqueMatch, res.Outcome)
	require.NotNil(t, res.Match)
	assert.Equal(t, "Embraco NJ 9238", res.Match.Name)
	assert.Equal(t, catalog.SourceLocal, res.Match.Source)
	assert.Equal(t, []State{StateStart, StateTokenExtraction, StateCatalogLookup, StateScoring, StateOutcome}, res.Trace)

	s, err := f.sessions.GetOrCreate(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, store.TopicProductInfo, s.Topic)
	latest, ok := s.Entities.Latest(store.EntityProduct)
	require.True(t, ok)
	assert.Equal(t, "Embraco NJ 9238", latest.Value)
}

func TestResolveReferenceShortCircuitsTokenExtraction(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)

	ref := &store.Entity{Kind: store.EntityProduct, Value: "Embraco NJ 9238"}
	res := f.engine.Resolve(ctx, "u1", "what's the price of that", ref)

	require.Equal(t, OutcomeUniqueMatch, res.Outcome)
	assert.Equal(t, "Embraco NJ 9238", res.Match.Name)
	assert.Equal(t, 689.0, res.Match.Price)
	assert.NotContains(t, res.Trace, StateTokenExtraction)
	assert.Equal(t, StateCatalogLookup, res.Trace[1])
}

func TestResolveTextWinsOverReference(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)

	ref := &store.Entity{Kind: store.EntityProduct, Value: "Embraco NJ 9238"}
	res := f.engine.Resolve(ctx, "u1", "and the NEK 6160?", ref)

	require.Equal(t, OutcomeUniqueMatch, res.Outcome)
	assert.Equal(t, "Embraco NEK 6160 Z", res.Match.Name)
	assert.Contains(t, res.Trace, StateTokenExtraction)
}

func TestResolveDisambiguation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)

	res := f.engine.Resolve(ctx, "u1", "Secop SC 18", nil)
	require.Equal(t, OutcomeDisambiguation, res.Outcome)
	require.Len(t, res.Candidates, 2)
	assert.Nil(t, res.Match)
	// Equal scores fall back to URL order.
	assert.Equal(t, "https://shop.example/sc18g-a", res.Candidates[0].URL)

	s, err := f.sessions.GetOrCreate(ctx, "u1")
	require.NoError(t, err)
	latest, _ := s.Entities.Latest(store.EntityProduct)
	assert.Equal(t, res.Candidates[0].Name, latest.Value)
}

func TestResolveNoMatch(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)

	for _, text := range []string{"Tecumseh AE 4440", "hello there", "", "what's the price of that"} {
		res := f.engine.Resolve(ctx, "u1", text, nil)
		assert.Equal(t, OutcomeNoMatch, res.Outcome, text)
		assert.Nil(t, res.Match)
		assert.Empty(t, res.Candidates)
	}

	s, err := f.sessions.GetOrCreate(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, s.Entities.Products)
}

func TestResolveRemoteTimeoutFallsBackToNoMatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	remote := catalog.NewWooCommerceClient(catalog.WooCommerceConfig{BaseURL: srv.URL, Timeout: 30 * time.Millisecond})
	f := newFixture(t, catalog.NewAdapter(remote, localCatalog(), nil))

	res := f.engine.Resolve(context.Background(), "u1", "Tecumseh AE 4440", nil)
	assert.Equal(t, OutcomeNoMatch, res.Outcome)
}

type panickingCatalog struct{}

func (panickingCatalog) Search(ctx context.Context, query string, limit int) []catalog.ProductRecord {
	panic("index out of range")
}

func (panickingCatalog) SearchCategory(ctx context.Context, c catalog.Category, limit int) []catalog.ProductRecord {
	panic("index out of range")
}

func (panickingCatalog) SearchPriceRange(ctx context.Context, r catalog.PriceRange, limit int) []catalog.ProductRecord {
	panic("index out of range")
}

func TestPanicsBecomeNoMatch(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, panickingCatalog{})

	assert.Equal(t, OutcomeNoMatch, f.engine.Resolve(ctx, "u1", "NJ9238", nil).Outcome)

	c, _ := catalog.CategoryByName("Kompressoren")
	assert.Equal(t, OutcomeNoMatch, f.engine.ResolveCategory(ctx, "u1", c).Outcome)
	assert.Equal(t, OutcomeNoMatch, f.engine.ResolvePriceRange(ctx, "u1", catalog.PriceRange{Max: 10}).Outcome)
}

func TestResolveCategoryPaginates(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	c, ok := catalog.CategoryByName("Kompressoren")
	require.True(t, ok)

	res := f.engine.ResolveCategory(ctx, "u1", c)
	require.Equal(t, OutcomeDisambiguation, res.Outcome)
	require.NotNil(t, res.Page)
	assert.Equal(t, 12, res.Page.Total)
	assert.Equal(t, 0, res.Page.Start)
	assert.Equal(t, 5, res.Page.End)
	assert.Equal(t, 7, res.Page.Remaining)
	assert.Len(t, res.Candidates, 5)

	next, err := f.pager.Page(ctx, "u1", 5)
	require.NoError(t, err)
	assert.Equal(t, 5, next.Start)
	assert.Equal(t, 10, next.End)
	assert.Equal(t, 2, next.Remaining)

	s, err := f.sessions.GetOrCreate(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "category:Kompressoren", s.Pagination.QuerySignature)
	assert.Equal(t, []string{"Kompressoren"}, s.Entities.Categories)
	latest, _ := s.Entities.Latest(store.EntityProduct)
	assert.Equal(t, res.Candidates[0].Name, latest.Value)
}

func TestResolvePriceRangeOutcomes(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)

	none := f.engine.ResolvePriceRange(ctx, "u1", catalog.PriceRange{Min: 5000, Max: 6000})
	assert.Equal(t, OutcomeNoMatch, none.Outcome)

	one := f.engine.ResolvePriceRange(ctx, "u1", catalog.PriceRange{Min: 50, Max: 100})
	require.Equal(t, OutcomeUniqueMatch, one.Outcome)
	assert.Equal(t, "Danfoss TE 2 Expansionsventil", one.Match.Name)

	many := f.engine.ResolvePriceRange(ctx, "u1", catalog.PriceRange{Min: 0, Max: 700})
	require.Equal(t, OutcomeDisambiguation, many.Outcome)
	assert.Equal(t, 6, many.Page.Total)
	assert.Equal(t, 2.0, many.Candidates[0].Price)

	s, err := f.sessions.GetOrCreate(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "price:0-700", s.Pagination.QuerySignature)
	assert.Len(t, s.Entities.PriceRanges, 3)
}

func TestResolveExactNameBeatsShorterSibling(t *testing.T) {
	ctx := context.Background()
	siblings := catalog.NewLocal([]catalog.LocalProduct{
		{Name: "Embraco NJ 9238", Price: 689, Status: "instock", URL: "https://shop.example/nj9238"},
		{Name: "Embraco NJ 9238 GK", Price: 719, Status: "instock", URL: "https://shop.example/nj9238gk"},
		{Name: "Danfoss SC 15", Price: 310, Status: "instock", URL: "https://shop.example/sc15"},
		{Name: "Danfoss SC 15 CL", Price: 335, Status: "instock", URL: "https://shop.example/sc15cl"},
	}, "EUR")
	f := newFixture(t, catalog.NewAdapter(nil, siblings, nil))

	tests := []struct {
		text string
		want string
	}{
		{"Embraco NJ 9238 GK", "Embraco NJ 9238 GK"},
		{"Danfoss SC 15 CL", "Danfoss SC 15 CL"},
		{"Embraco NJ 9238", "Embraco NJ 9238"},
		{"Danfoss SC 15", "Danfoss SC 15"},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			for i := 0; i < 3; i++ {
				res := f.engine.Resolve(ctx, "u1", tt.text, nil)
				require.Equal(t, OutcomeUniqueMatch, res.Outcome)
				assert.Equal(t, tt.want, res.Match.Name)
			}
		})
	}
}

func TestMergeRecordsDeduplicates(t *testing.T) {
	a := catalog.ProductRecord{Name: "Embraco NJ 9238", URL: "https://shop.example/nj9238"}
	b := catalog.ProductRecord{Name: "Embraco NJ 9238 GK", URL: "https://shop.example/nj9238gk"}
	noURL := catalog.ProductRecord{Name: "Secop SC 18 G"}
	noURLDup := catalog.ProductRecord{Name: "secop sc-18 g"}

	got := mergeRecords([]catalog.ProductRecord{a, noURL}, []catalog.ProductRecord{b, a, noURLDup})
	assert.Equal(t, []catalog.ProductRecord{a, noURL, b}, got)
}

func TestResolveListingCombinesConstraints(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	kompressoren, ok := catalog.CategoryByName("Kompressoren")
	require.True(t, ok)

	res := f.engine.ResolveListing(ctx, "u1", Listing{
		Category:   &kompressoren,
		PriceRange: &catalog.PriceRange{Min: 0, Max: 300},
		Brand:      "Embraco",
	})
	require.Equal(t, OutcomeUniqueMatch, res.Outcome)
	assert.Equal(t, "Embraco NEK 6160 Z", res.Match.Name)
	assert.Equal(t, "category:Kompressoren|brand:embraco|price:0-300", res.Query)

	bitzer := f.engine.ResolveListing(ctx, "u2", Listing{Category: &kompressoren, Brand: "bitzer"})
	require.Equal(t, OutcomeDisambiguation, bitzer.Outcome)
	assert.Equal(t, 9, bitzer.Page.Total)
	for _, c := range bitzer.Candidates {
		assert.Contains(t, c.Name, "Bitzer")
	}

	s, err := f.sessions.GetOrCreate(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"Kompressoren"}, s.Entities.Categories)
	assert.Equal(t, []catalog.PriceRange{{Min: 0, Max: 300}}, s.Entities.PriceRanges)
	assert.Equal(t, "category:Kompressoren|brand:embraco|price:0-300", s.Pagination.QuerySignature)
}

func TestResolveListingRanksByFeatures(t *testing.T) {
	ctx := context.Background()
	fridges := catalog.NewLocal([]catalog.LocalProduct{
		{Name: "Kühlschrank Gastro 600L", Price: 900, Status: "instock", URL: "https://shop.example/gastro", Category: "Kühlschränke"},
		{Name: "Kühlschrank Klein 80L", Price: 350, Status: "instock", URL: "https://shop.example/klein", Category: "Kühlschränke"},
		{Name: "Mini Kühlschrank Compact 40L", Price: 300, Status: "instock", URL: "https://shop.example/mini", Category: "Kühlschränke"},
	}, "EUR")
	f := newFixture(t, catalog.NewAdapter(nil, fridges, nil))
	c, ok := catalog.CategoryByName("Kühlschränke")
	require.True(t, ok)

	res := f.engine.ResolveListing(ctx, "u1", Listing{Category: &c, Features: []string{"compact"}})
	require.Equal(t, OutcomeDisambiguation, res.Outcome)
	var names []string
	for _, cand := range res.Candidates {
		names = append(names, cand.Name)
	}
	assert.Equal(t, []string{"Mini Kühlschrank Compact 40L", "Kühlschrank Klein 80L", "Kühlschrank Gastro 600L"}, names)

	s, err := f.sessions.GetOrCreate(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"compact"}, s.Entities.Features)
}

func TestListingSignature(t *testing.T) {
	c, _ := catalog.CategoryByName("Thermostat")
	r := catalog.PriceRange{Min: 10, Max: 50}

	assert.Equal(t, "category:Thermostat", Listing{Category: &c}.Signature())
	assert.Equal(t, "price:10-50", Listing{PriceRange: &r}.Signature())
	assert.Equal(t, "category:Thermostat|price:10-50|features:compact,quiet",
		Listing{Category: &c, PriceRange: &r, Features: []string{"quiet", "compact"}}.Signature())
}

func TestResolveListingNeedsCategoryOrPrice(t *testing.T) {
	f := newFixture(t, nil)
	res := f.engine.ResolveListing(context.Background(), "u1", Listing{Brand: "embraco"})
	assert.Equal(t, OutcomeNoMatch, res.Outcome)
}
