// Package resolution turns a product question into one of three outcomes:
// a unique match, a short list to choose from, or no match.
package resolution

import (
	"context"
	"fmt"
	"runtime/debug"
	"sort"
	"strings"
	"time"

	"sales-assistant-be/internal/pkg/logger"
	"sales-assistant-be/pkg/assistant"
	"sales-assistant-be/pkg/assistant/pagination"
	"sales-assistant-be/pkg/assistant/scoring"
	"sales-assistant-be/pkg/catalog"
	"sales-assistant-be/pkg/store"
	"sales-assistant-be/pkg/textnorm"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const engineModule = "RESOLUTION"

type Outcome string

const (
	OutcomeUniqueMatch    Outcome = "UNIQUE_MATCH"
	OutcomeDisambiguation Outcome = "DISAMBIGUATION"
	OutcomeNoMatch        Outcome = "NO_MATCH"
)

type State string

const (
	StateStart           State = "START"
	StateTokenExtraction State = "TOKEN_EXTRACTION"
	StateCatalogLookup   State = "CATALOG_LOOKUP"
	StateScoring         State = "SCORING"
	StateOutcome         State = "OUTCOME"
)

type Config struct {
	UniqueScore   float64
	UniqueMargin  float64
	MinScore      float64
	MaxCandidates int
	SearchLimit   int
	ListingLimit  int
}

func DefaultConfig() Config {
	return Config{
		UniqueScore:   50,
		UniqueMargin:  10,
		MinScore:      15,
		MaxCandidates: 5,
		SearchLimit:   20,
		ListingLimit:  50,
	}
}

// Catalog is the lookup surface of catalog.Adapter.
type Catalog interface {
	Search(ctx context.Context, query string, limit int) []catalog.ProductRecord
	SearchCategory(ctx context.Context, c catalog.Category, limit int) []catalog.ProductRecord
	SearchPriceRange(ctx context.Context, r catalog.PriceRange, limit int) []catalog.ProductRecord
}

// Sessions is the part of the context store the engine writes to.
type Sessions interface {
	Update(ctx context.Context, id string, fn func(s *store.Session) error) (*store.Session, error)
}

// Result is what the caller sees: the outcome plus whatever backs it.
type Result struct {
	Outcome     Outcome             `json:"outcome"`
	Query       string              `json:"query,omitempty"`
	ModelTokens []string            `json:"model_tokens,omitempty"`
	Brand       string              `json:"brand,omitempty"`
	Match       *scoring.Candidate  `json:"match,omitempty"`
	Candidates  []scoring.Candidate `json:"candidates,omitempty"`
	Page        *pagination.Page    `json:"page,omitempty"`
	Trace       []State             `json:"trace,omitempty"`
}

type Engine struct {
	catalog     Catalog
	scorer      *scoring.Scorer
	sessions    Sessions
	pager       *pagination.Controller
	cfg         Config
	knownBrands []string
	logger      logger.ILogger
}

func NewEngine(
	cat Catalog,
	scorer *scoring.Scorer,
	sessions Sessions,
	pager *pagination.Controller,
	cfg Config,
	log logger.ILogger,
) *Engine {
	def := DefaultConfig()
	if cfg.UniqueScore <= 0 {
		cfg.UniqueScore = def.UniqueScore
	}
	if cfg.UniqueMargin <= 0 {
		cfg.UniqueMargin = def.UniqueMargin
	}
	if cfg.MinScore <= 0 {
		cfg.MinScore = def.MinScore
	}
	if cfg.MaxCandidates <= 0 {
		cfg.MaxCandidates = def.MaxCandidates
	}
	if cfg.SearchLimit <= 0 {
		cfg.SearchLimit = def.SearchLimit
	}
	if cfg.ListingLimit <= 0 {
		cfg.ListingLimit = def.ListingLimit
	}
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &Engine{
		catalog:     cat,
		scorer:      scorer,
		sessions:    sessions,
		pager:       pager,
		cfg:         cfg,
		knownBrands: catalog.KnownBrands,
		logger:      log,
	}
}

// run carries one product resolution through the state machine.
type run struct {
	text      string
	reference *store.Entity

	query       string
	lookup      string
	modelTokens []string
	brand       string
	records     []catalog.ProductRecord
	ranked      []scoring.Candidate
	trace       []State
}

// Resolve resolves free text to a product. reference is the product the
// message points back to, if any; it is used only when the text itself
// carries no model number or brand.
func (e *Engine) Resolve(ctx context.Context, sessionID, text string, reference *store.Entity) (res Result) {
	ctx, span := otel.Tracer("assistant.resolution").Start(ctx, "resolution.resolve")
	defer span.End()

	r := &run{text: text, reference: reference}
	defer func() {
		if p := recover(); p != nil {
			e.logger.Error(engineModule, "Resolution panicked", map[string]interface{}{
				"session_id": sessionID,
				"panic":      fmt.Sprint(p),
				"stack":      string(debug.Stack()),
			})
			span.SetStatus(codes.Error, "panic")
			res = Result{Outcome: OutcomeNoMatch, Query: r.query, Trace: append(r.trace, StateOutcome)}
		}
		span.SetAttributes(attribute.String("resolution.outcome", string(res.Outcome)))
	}()

	state := StateStart
	for state != StateOutcome {
		r.trace = append(r.trace, state)
		state = e.step(ctx, state, r)
	}
	r.trace = append(r.trace, StateOutcome)

	res = e.decide(r)
	if err := e.record(ctx, sessionID, res); err != nil {
		e.logger.Warn(engineModule, "Failed to record resolution in session", map[string]interface{}{
			"session_id": sessionID,
			"error":      err.Error(),
		})
	}
	return res
}

// step performs the work of one state and returns the next state.
func (e *Engine) step(ctx context.Context, state State, r *run) State {
	switch state {
	case StateStart:
		if r.reference != nil && r.reference.Kind == store.EntityProduct &&
			len(textnorm.ExtractModelTokens(r.text)) == 0 &&
			textnorm.ExtractBrand(r.text, e.knownBrands) == "" {
			r.query = r.reference.Value
			r.lookup = r.reference.Value
			r.modelTokens = textnorm.ExtractModelTokens(r.query)
			r.brand = textnorm.ExtractBrand(r.query, e.knownBrands)
			return StateCatalogLookup
		}
		return StateTokenExtraction

	case StateTokenExtraction:
		r.query = strings.TrimSpace(r.text)
		r.modelTokens = textnorm.ExtractModelTokens(r.text)
		r.brand = textnorm.ExtractBrand(r.text, e.knownBrands)
		r.lookup = lookupQuery(r.query, r.modelTokens, r.brand)
		return StateCatalogLookup

	case StateCatalogLookup:
		if r.lookup == "" {
			return StateOutcome
		}
		r.records = e.catalog.Search(ctx, r.lookup, e.cfg.SearchLimit)
		if r.query != "" && textnorm.Normalize(r.lookup) != textnorm.Normalize(r.query) {
			r.records = mergeRecords(r.records, e.catalog.Search(ctx, r.query, e.cfg.SearchLimit))
		}
		if len(r.records) == 0 {
			return StateOutcome
		}
		return StateScoring

	case StateScoring:
		r.ranked = e.scorer.Rank(r.records, r.query, r.modelTokens, r.brand)
		return StateOutcome
	}
	return StateOutcome
}

// lookupQuery narrows a chat sentence to what the catalog search can use:
// brand plus the first model token when there is one.
func lookupQuery(query string, tokens []string, brand string) string {
	if len(tokens) == 0 {
		return query
	}
	if brand != "" {
		return brand + " " + tokens[0]
	}
	return tokens[0]
}

// mergeRecords appends the records of extra not already in base, keyed by
// URL or, for records without one, by normalized name.
func mergeRecords(base, extra []catalog.ProductRecord) []catalog.ProductRecord {
	if len(extra) == 0 {
		return base
	}
	key := func(rec catalog.ProductRecord) string {
		if rec.URL != "" {
			return rec.URL
		}
		return "name:" + textnorm.Normalize(rec.Name)
	}
	seen := make(map[string]struct{}, len(base)+len(extra))
	out := make([]catalog.ProductRecord, 0, len(base)+len(extra))
	for _, list := range [][]catalog.ProductRecord{base, extra} {
		for _, rec := range list {
			k := key(rec)
			if _, dup := seen[k]; dup {
				continue
			}
			seen[k] = struct{}{}
			out = append(out, rec)
		}
	}
	return out
}

func (e *Engine) decide(r *run) Result {
	res := Result{
		Outcome:     OutcomeNoMatch,
		Query:       r.query,
		ModelTokens: r.modelTokens,
		Brand:       r.brand,
		Trace:       r.trace,
	}

	var eligible []scoring.Candidate
	for _, c := range r.ranked {
		if c.Score >= e.cfg.MinScore {
			eligible = append(eligible, c)
		}
	}
	if len(eligible) == 0 {
		e.logger.Debug(engineModule, "No candidate cleared the minimum score", map[string]interface{}{
			"query":      r.query,
			"candidates": len(r.ranked),
			"reason":     assistant.ErrNoCandidateFound.Error(),
		})
		return res
	}

	top := eligible[0]
	runnerUp := 0.0
	if len(r.ranked) > 1 {
		runnerUp = r.ranked[1].Score
	}
	if top.Score >= e.cfg.UniqueScore && top.Score-runnerUp >= e.cfg.UniqueMargin {
		res.Outcome = OutcomeUniqueMatch
		res.Match = &top
		res.Candidates = []scoring.Candidate{top}
		return res
	}

	if len(eligible) > e.cfg.MaxCandidates {
		eligible = eligible[:e.cfg.MaxCandidates]
	}
	res.Outcome = OutcomeDisambiguation
	res.Candidates = eligible
	e.logger.Debug(engineModule, "Query is ambiguous", map[string]interface{}{
		"query":      r.query,
		"candidates": len(eligible),
		"reason":     assistant.ErrAmbiguousQuery.Error(),
	})
	return res
}

// record writes matched names back as product entities, best match last so
// it becomes the most recent, and moves the topic to product info.
func (e *Engine) record(ctx context.Context, sessionID string, res Result) error {
	if res.Outcome == OutcomeNoMatch || e.sessions == nil {
		return nil
	}
	names := make([]string, 0, len(res.Candidates))
	for i := len(res.Candidates) - 1; i >= 0; i-- {
		names = append(names, res.Candidates[i].Name)
	}
	_, err := e.sessions.Update(ctx, sessionID, func(s *store.Session) error {
		now := time.Now()
		for _, n := range names {
			s.Entities.Add(store.Entity{Kind: store.EntityProduct, Value: n}, now)
		}
		s.Topic = store.TopicProductInfo
		return nil
	})
	return err
}

// Listing is a browse request. It needs a category or a price range; brand
// narrows it and features rank it.
type Listing struct {
	Category   *catalog.Category
	PriceRange *catalog.PriceRange
	Brand      string
	Features   []string
}

// Signature is the result-set key for the listing. A single constraint keeps
// its short form, "category:<name>" or "price:<min>-<max>".
func (l Listing) Signature() string {
	var parts []string
	if l.Category != nil {
		parts = append(parts, l.Category.Signature())
	}
	if b := textnorm.Normalize(l.Brand); b != "" {
		parts = append(parts, "brand:"+b)
	}
	if l.PriceRange != nil {
		parts = append(parts, PriceSignature(*l.PriceRange))
	}
	if len(l.Features) > 0 {
		fs := append([]string(nil), l.Features...)
		sort.Strings(fs)
		parts = append(parts, "features:"+strings.Join(fs, ","))
	}
	return strings.Join(parts, "|")
}

func (l Listing) entities() []store.Entity {
	var out []store.Entity
	if l.Category != nil {
		out = append(out, store.Entity{Kind: store.EntityCategory, Value: l.Category.Name})
	}
	if l.PriceRange != nil {
		out = append(out, store.PriceRangeEntity(*l.PriceRange))
	}
	for _, f := range l.Features {
		out = append(out, store.Entity{Kind: store.EntityFeature, Value: f})
	}
	return out
}

// narrow drops records outside the price range or brand. The category is
// enforced by the lookup itself.
func (l Listing) narrow(records []catalog.ProductRecord) []catalog.ProductRecord {
	brand := textnorm.Normalize(l.Brand)
	out := make([]catalog.ProductRecord, 0, len(records))
	for _, rec := range records {
		if l.PriceRange != nil && (rec.Price <= 0 || !l.PriceRange.Contains(rec.Price)) {
			continue
		}
		if brand != "" && !textnorm.ContainsWord(textnorm.Normalize(rec.Name), brand) {
			continue
		}
		out = append(out, rec)
	}
	if l.Category != nil && l.PriceRange != nil {
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].Price < out[j].Price
		})
	}
	if len(l.Features) > 0 {
		scores := make(map[string]int, len(out))
		for _, rec := range out {
			scores[rec.Name] = catalog.FeatureScore(rec.Name, l.Features)
		}
		sort.SliceStable(out, func(i, j int) bool {
			return scores[out[i].Name] > scores[out[j].Name]
		})
	}
	return out
}

// ResolveCategory lists a category and serves its first page.
func (e *Engine) ResolveCategory(ctx context.Context, sessionID string, c catalog.Category) Result {
	return e.ResolveListing(ctx, sessionID, Listing{Category: &c})
}

// ResolvePriceRange lists products within r and serves the first page.
func (e *Engine) ResolvePriceRange(ctx context.Context, sessionID string, r catalog.PriceRange) Result {
	return e.ResolveListing(ctx, sessionID, Listing{PriceRange: &r})
}

// ResolveListing lists the products that satisfy every constraint of l and
// serves the first page. The category, when set, drives the catalog lookup;
// otherwise the price range does.
func (e *Engine) ResolveListing(ctx context.Context, sessionID string, l Listing) Result {
	ctx, span := otel.Tracer("assistant.resolution").Start(ctx, "resolution.listing")
	defer span.End()

	signature := l.Signature()
	span.SetAttributes(attribute.String("resolution.signature", signature))

	if l.Category == nil && l.PriceRange == nil {
		return Result{Outcome: OutcomeNoMatch, Query: signature}
	}

	return e.resolveListing(ctx, sessionID, signature, l.entities(),
		func(ctx context.Context) []catalog.ProductRecord {
			var records []catalog.ProductRecord
			if l.Category != nil {
				records = e.catalog.SearchCategory(ctx, *l.Category, e.cfg.ListingLimit)
			} else {
				records = e.catalog.SearchPriceRange(ctx, *l.PriceRange, e.cfg.ListingLimit)
			}
			return l.narrow(records)
		})
}

// PriceSignature is the result-set key for a price listing.
func PriceSignature(r catalog.PriceRange) string {
	return fmt.Sprintf("price:%d-%d", r.Min, r.Max)
}

func (e *Engine) resolveListing(
	ctx context.Context,
	sessionID, signature string,
	entities []store.Entity,
	lookup func(context.Context) []catalog.ProductRecord,
) (res Result) {
	res = Result{Outcome: OutcomeNoMatch, Query: signature}
	defer func() {
		if p := recover(); p != nil {
			e.logger.Error(engineModule, "Listing panicked", map[string]interface{}{
				"session_id": sessionID,
				"signature":  signature,
				"panic":      fmt.Sprint(p),
			})
			res = Result{Outcome: OutcomeNoMatch, Query: signature}
		}
	}()

	records := lookup(ctx)

	_, err := e.sessions.Update(ctx, sessionID, func(s *store.Session) error {
		now := time.Now()
		for _, ent := range entities {
			s.Entities.Add(ent, now)
		}
		s.Topic = store.TopicProductInfo
		return nil
	})
	if err != nil {
		e.logger.Warn(engineModule, "Failed to record listing entity", map[string]interface{}{
			"session_id": sessionID,
			"error":      err.Error(),
		})
	}

	if len(records) == 0 {
		return res
	}

	page, err := e.pager.Store(ctx, sessionID, signature, records)
	if err != nil {
		e.logger.Warn(engineModule, "Failed to store result set", map[string]interface{}{
			"session_id": sessionID,
			"signature":  signature,
			"error":      err.Error(),
		})
		page = pagination.Page{
			Signature: signature,
			Items:     records[:min(len(records), e.pager.PageSize())],
			Total:     len(records),
		}
		page.End = len(page.Items)
		page.Remaining = page.Total - page.End
	}

	res.Page = &page
	res.Candidates = make([]scoring.Candidate, 0, len(page.Items))
	for _, item := range page.Items {
		res.Candidates = append(res.Candidates, scoring.Candidate{ProductRecord: item})
	}
	if len(records) == 1 {
		res.Outcome = OutcomeUniqueMatch
		res.Match = &res.Candidates[0]
	} else {
		res.Outcome = OutcomeDisambiguation
	}

	if err := e.record(ctx, sessionID, res); err != nil {
		e.logger.Warn(engineModule, "Failed to record listing in session", map[string]interface{}{
			"session_id": sessionID,
			"error":      err.Error(),
		})
	}
	return res
}
