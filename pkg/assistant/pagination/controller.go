// Package pagination serves a stored result set page by page across
// messages ("show more").
package pagination

import (
	"context"

	"sales-assistant-be/pkg/catalog"
	"sales-assistant-be/pkg/store"
)

const DefaultPageSize = 5

// Page is one slice of the stored result set. Start is inclusive, End
// exclusive, both zero-based positions in the full set.
type Page struct {
	Signature string                  `json:"signature"`
	Items     []catalog.ProductRecord `json:"items"`
	Start     int                     `json:"start"`
	End       int                     `json:"end"`
	Total     int                     `json:"total"`
	Remaining int                     `json:"remaining"`
}

// Exhausted reports whether nothing is left to show after this page.
func (p Page) Exhausted() bool {
	return p.Remaining == 0
}

// SessionUpdater is the part of the context store pagination needs.
type SessionUpdater interface {
	Update(ctx context.Context, id string, fn func(s *store.Session) error) (*store.Session, error)
}

type Controller struct {
	sessions SessionUpdater
	pageSize int
}

func NewController(sessions SessionUpdater, pageSize int) *Controller {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Controller{sessions: sessions, pageSize: pageSize}
}

func (c *Controller) PageSize() int {
	return c.pageSize
}

// Store replaces the session's result set and returns its first page.
func (c *Controller) Store(ctx context.Context, sessionID, signature string, records []catalog.ProductRecord) (Page, error) {
	var page Page
	_, err := c.sessions.Update(ctx, sessionID, func(s *store.Session) error {
		s.StoreResultSet(signature, records)
		page = next(s, c.pageSize)
		return nil
	})
	return page, err
}

// Page returns the next page of the stored result set and advances the
// cursor. Once the set is exhausted it returns an empty page with
// Remaining 0. A topic change since the set was stored rewinds to the start.
func (c *Controller) Page(ctx context.Context, sessionID string, pageSize int) (Page, error) {
	if pageSize <= 0 {
		pageSize = c.pageSize
	}
	var page Page
	_, err := c.sessions.Update(ctx, sessionID, func(s *store.Session) error {
		page = next(s, pageSize)
		return nil
	})
	return page, err
}

func next(s *store.Session, size int) Page {
	p := &s.Pagination
	if p.Topic != s.Topic {
		p.Offset = 0
		p.Topic = s.Topic
	}

	total := len(p.Results)
	start := p.Offset
	if start > total {
		start = total
	}
	end := start + size
	if end > total {
		end = total
	}

	items := make([]catalog.ProductRecord, end-start)
	copy(items, p.Results[start:end])
	p.Offset = end

	return Page{
		Signature: p.QuerySignature,
		Items:     items,
		Start:     start,
		End:       end,
		Total:     total,
		Remaining: total - end,
	}
}
