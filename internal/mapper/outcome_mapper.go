package mapper

import (
	"sales-assistant-be/internal/dto"
	"sales-assistant-be/pkg/assistant/pagination"
	"sales-assistant-be/pkg/assistant/reference"
	"sales-assistant-be/pkg/assistant/resolution"
	"sales-assistant-be/pkg/assistant/scoring"
	"sales-assistant-be/pkg/catalog"
)

type OutcomeMapper struct{}

func NewOutcomeMapper() *OutcomeMapper {
	return &OutcomeMapper{}
}

func (m *OutcomeMapper) RecordToDTO(r catalog.ProductRecord) dto.ProductDTO {
	return dto.ProductDTO{
		ID:          r.ID,
		Name:        r.Name,
		Price:       r.Price,
		Currency:    r.Currency,
		StockStatus: string(r.StockStatus),
		URL:         r.URL,
		SKU:         r.SKU,
		Category:    r.Category,
		Source:      string(r.Source),
	}
}

func (m *OutcomeMapper) CandidateToDTO(c scoring.Candidate) dto.ProductDTO {
	out := m.RecordToDTO(c.ProductRecord)
	out.Score = c.Score
	if c.MatchedSignal != scoring.SignalNone {
		out.MatchedSignal = string(c.MatchedSignal)
	}
	return out
}

func (m *OutcomeMapper) PageToDTO(p *pagination.Page) *dto.PageDTO {
	if p == nil {
		return nil
	}
	return &dto.PageDTO{
		Signature: p.Signature,
		Start:     p.Start,
		End:       p.End,
		Total:     p.Total,
		Remaining: p.Remaining,
	}
}

// ApplyResult copies a resolution result into the outcome.
func (m *OutcomeMapper) ApplyResult(out *dto.Outcome, res resolution.Result) {
	out.Kind = string(res.Outcome)
	out.Query = res.Query
	if res.Match != nil {
		match := m.CandidateToDTO(*res.Match)
		out.Match = &match
	}
	if len(res.Candidates) > 0 {
		out.Candidates = make([]dto.ProductDTO, 0, len(res.Candidates))
		for _, c := range res.Candidates {
			out.Candidates = append(out.Candidates, m.CandidateToDTO(c))
		}
	}
	out.Page = m.PageToDTO(res.Page)
}

func (m *OutcomeMapper) OrderToDTO(o *catalog.OrderRecord) *dto.OrderDTO {
	if o == nil {
		return nil
	}
	items := make([]dto.OrderItemDTO, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, dto.OrderItemDTO{Name: it.Name, Quantity: it.Quantity, Total: it.Total})
	}
	return &dto.OrderDTO{
		ID:        o.ID,
		Number:    o.Number,
		Status:    o.Status,
		Total:     o.Total,
		Currency:  o.Currency,
		CreatedAt: o.CreatedAt,
		Items:     items,
	}
}

func (m *OutcomeMapper) OrdersToDTO(orders []catalog.OrderRecord) []dto.OrderDTO {
	out := make([]dto.OrderDTO, 0, len(orders))
	for i := range orders {
		out = append(out, *m.OrderToDTO(&orders[i]))
	}
	return out
}

func (m *OutcomeMapper) ReferencesToDTO(r reference.Resolution) []dto.ReferenceDTO {
	if len(r.Hits) == 0 {
		return nil
	}
	out := make([]dto.ReferenceDTO, 0, len(r.Hits))
	for _, h := range r.Hits {
		ref := dto.ReferenceDTO{Kind: string(h.Kind), Phrase: h.Phrase}
		if e, ok := r.Get(h.Kind); ok {
			ref.Value = e.Value
			ref.Resolved = true
		}
		out = append(out, ref)
	}
	return out
}
