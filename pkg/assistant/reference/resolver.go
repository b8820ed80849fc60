// Package reference resolves anaphoric phrases ("that one", "dieses
// Produkt", "bu kategori") to entities the user mentioned earlier.
package reference

import (
	"context"

	"sales-assistant-be/internal/pkg/logger"
	"sales-assistant-be/pkg/assistant"
	"sales-assistant-be/pkg/store"
	"sales-assistant-be/pkg/textnorm"
)

const resolverModule = "REFERENCE"

// Hit is one matched reference phrase.
type Hit struct {
	Kind     store.EntityKind `json:"kind"`
	Language string           `json:"language"`
	Phrase   string           `json:"phrase"`
}

// Resolution holds the entities a message refers back to, at most one per
// kind. Several kinds may resolve from one message; the caller chooses.
type Resolution struct {
	Hits     []Hit                             `json:"hits,omitempty"`
	Entities map[store.EntityKind]store.Entity `json:"entities,omitempty"`
}

func (r Resolution) Get(kind store.EntityKind) (store.Entity, bool) {
	e, ok := r.Entities[kind]
	return e, ok
}

func (r Resolution) Empty() bool {
	return len(r.Entities) == 0
}

// SessionReader is the part of the context store the resolver reads.
type SessionReader interface {
	GetOrCreate(ctx context.Context, id string) (*store.Session, error)
}

type Resolver struct {
	sessions SessionReader
	logger   logger.ILogger
}

func NewResolver(sessions SessionReader, log logger.ILogger) *Resolver {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &Resolver{sessions: sessions, logger: log}
}

// Match returns the reference phrases found in text, one hit per kind. A
// generic product phrase is ignored when a category or order phrase matched.
func Match(text string) []Hit {
	normalized := textnorm.Normalize(text)
	if normalized == "" {
		return nil
	}

	var hits []Hit
	seen := make(map[store.EntityKind]bool)
	var genericProduct *Hit
	specific := false

	for _, p := range patterns {
		if seen[p.kind] {
			continue
		}
		phrase := p.re.FindString(normalized)
		if phrase == "" {
			continue
		}
		hit := Hit{Kind: p.kind, Language: p.language, Phrase: phrase}
		if p.generic {
			if genericProduct == nil {
				genericProduct = &hit
			}
			continue
		}
		if p.kind != store.EntityProduct {
			specific = true
		}
		seen[p.kind] = true
		hits = append(hits, hit)
	}

	if genericProduct != nil && !seen[store.EntityProduct] && !specific {
		hits = append(hits, *genericProduct)
	}
	return hits
}

// Resolve maps the reference phrases in text to the most recent entity of
// each referenced kind in the session. A phrase whose kind has no recorded
// entity is dropped.
func (r *Resolver) Resolve(ctx context.Context, sessionID, text string) Resolution {
	hits := Match(text)
	if len(hits) == 0 {
		return Resolution{}
	}

	s, err := r.sessions.GetOrCreate(ctx, sessionID)
	if err != nil {
		r.logger.Warn(resolverModule, "Session unavailable, reference ignored", map[string]interface{}{
			"session_id": sessionID,
			"error":      err.Error(),
		})
		return Resolution{}
	}

	res := Resolution{Hits: hits}
	for _, h := range hits {
		e, ok := s.Entities.Latest(h.Kind)
		if !ok {
			r.logger.Debug(resolverModule, "Reference declined", map[string]interface{}{
				"session_id": sessionID,
				"kind":       string(h.Kind),
				"phrase":     h.Phrase,
				"reason":     assistant.ErrMalformedReference.Error(),
			})
			continue
		}
		if res.Entities == nil {
			res.Entities = make(map[store.EntityKind]store.Entity, len(hits))
		}
		res.Entities[h.Kind] = e
	}
	return res
}
