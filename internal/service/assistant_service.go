package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"sales-assistant-be/internal/dto"
	"sales-assistant-be/internal/mapper"
	"sales-assistant-be/internal/pkg/logger"
	"sales-assistant-be/pkg/assistant"
	"sales-assistant-be/pkg/assistant/intent"
	"sales-assistant-be/pkg/assistant/language"
	"sales-assistant-be/pkg/assistant/pagination"
	"sales-assistant-be/pkg/assistant/reference"
	"sales-assistant-be/pkg/assistant/resolution"
	"sales-assistant-be/pkg/assistant/session"
	"sales-assistant-be/pkg/catalog"
	"sales-assistant-be/pkg/events"
	"sales-assistant-be/pkg/keylock"
	"sales-assistant-be/pkg/store"
	"sales-assistant-be/pkg/textnorm"

	"github.com/google/uuid"
)

const assistantModule = "ASSISTANT"

type IAssistantService interface {
	Process(ctx context.Context, req *dto.ProcessRequest) (*dto.Outcome, error)
	Summary(ctx context.Context, userID string) (*dto.SessionSummaryResponse, error)
	Reset(ctx context.Context, userID string) error
	OrdersByPhone(ctx context.Context, phone string) (*dto.OrdersByPhoneResponse, error)
}

// OrderCatalog is the order side of catalog.Adapter.
type OrderCatalog interface {
	GetOrder(ctx context.Context, id int) *catalog.OrderRecord
	GetOrdersByPhone(ctx context.Context, phone string) []catalog.OrderRecord
}

type assistantService struct {
	sessions  *session.Manager
	engine    *resolution.Engine
	pager     *pagination.Controller
	resolver  *reference.Resolver
	orders    OrderCatalog
	detector  language.Detector
	publisher events.Publisher
	locks     *keylock.Locker
	mapper    *mapper.OutcomeMapper
	logger    logger.ILogger
}

func NewAssistantService(
	sessions *session.Manager,
	engine *resolution.Engine,
	pager *pagination.Controller,
	resolver *reference.Resolver,
	orders OrderCatalog,
	detector language.Detector,
	publisher events.Publisher,
	log logger.ILogger,
) IAssistantService {
	if detector == nil {
		detector = language.NewKeywordDetector()
	}
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &assistantService{
		sessions:  sessions,
		engine:    engine,
		pager:     pager,
		resolver:  resolver,
		orders:    orders,
		detector:  detector,
		publisher: publisher,
		locks:     keylock.New(),
		mapper:    mapper.NewOutcomeMapper(),
		logger:    log,
	}
}

// Process handles one inbound message. Messages of the same user run one at
// a time in arrival order. The only errors are invalid input and a caller
// that gave up while waiting its turn; everything else ends in an outcome.
func (s *assistantService) Process(ctx context.Context, req *dto.ProcessRequest) (*dto.Outcome, error) {
	if req == nil || strings.TrimSpace(req.UserID) == "" {
		return nil, fmt.Errorf("%w: user id is required", assistant.ErrInvalidInput)
	}
	if strings.TrimSpace(req.Text) == "" {
		return nil, fmt.Errorf("%w: text is required", assistant.ErrInvalidInput)
	}

	var out *dto.Outcome
	err := s.locks.Do(ctx, req.UserID, func() error {
		out = s.process(ctx, req)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, out)
	return out, nil
}

func (s *assistantService) process(ctx context.Context, req *dto.ProcessRequest) *dto.Outcome {
	userID := req.UserID
	text := strings.TrimSpace(req.Text)
	lang := language.Resolve(s.detector, text, req.LanguageHint)
	in := intent.Classify(text)

	out := &dto.Outcome{
		ID:       uuid.NewString(),
		UserID:   userID,
		Kind:     string(resolution.OutcomeNoMatch),
		Intent:   string(in.Kind),
		Language: lang,
	}

	_, err := s.sessions.Update(ctx, userID, func(sess *store.Session) error {
		now := time.Now()
		sess.AppendMessage(text, true, now)
		for _, ent := range extractedEntities(in) {
			sess.Entities.Add(ent, now)
		}
		sess.Language = lang
		switch {
		case in.Topic != store.TopicNone:
			sess.Topic = in.Topic
		case sess.Topic == store.TopicNone:
			sess.Topic = store.TopicGeneral
		}
		return nil
	})
	if err != nil {
		s.logger.Warn(assistantModule, "Failed to record user message", map[string]interface{}{
			"user_id": userID,
			"error":   err.Error(),
		})
	}

	refs := s.resolver.Resolve(ctx, userID, text)
	out.References = s.mapper.ReferencesToDTO(refs)

	switch in.Kind {
	case intent.KindShowMore:
		s.showMore(ctx, userID, out)
	case intent.KindOrder:
		s.lookupOrder(ctx, userID, in.OrderNumber, refs, out)
	case intent.KindPriceRange, intent.KindCategory:
		s.mapper.ApplyResult(out, s.engine.ResolveListing(ctx, userID, resolution.Listing{
			Category:   in.Category,
			PriceRange: in.PriceRange,
			Brand:      in.Brand,
			Features:   in.Features,
		}))
	default:
		s.resolveProduct(ctx, userID, in, refs, out)
	}

	final, err := s.sessions.Update(ctx, userID, func(sess *store.Session) error {
		sess.AppendMessage(outcomeLine(out), false, time.Now())
		return nil
	})
	if err != nil {
		s.logger.Warn(assistantModule, "Failed to record outcome", map[string]interface{}{
			"user_id": userID,
			"error":   err.Error(),
		})
	} else {
		out.Topic = string(final.Topic)
	}

	s.logger.Info(assistantModule, "Message processed", map[string]interface{}{
		"user_id":  userID,
		"intent":   out.Intent,
		"outcome":  out.Kind,
		"language": lang,
	})
	return out
}

// extractedEntities lists what the message itself names: price range,
// category, order number, features and the model it mentions. A matched
// product recorded later in the turn becomes the more recent mention.
func extractedEntities(in intent.Intent) []store.Entity {
	var out []store.Entity
	if in.PriceRange != nil {
		out = append(out, store.PriceRangeEntity(*in.PriceRange))
	}
	if in.Category != nil {
		out = append(out, store.Entity{Kind: store.EntityCategory, Value: in.Category.Name})
	}
	if in.OrderNumber != "" {
		out = append(out, store.Entity{Kind: store.EntityOrder, Value: in.OrderNumber})
	}
	for _, f := range in.Features {
		out = append(out, store.Entity{Kind: store.EntityFeature, Value: f})
	}
	if in.Kind == intent.KindProduct {
		if tokens := textnorm.ExtractModelTokens(in.Query); len(tokens) > 0 {
			mention := tokens[0]
			if brand := textnorm.ExtractBrand(in.Query, catalog.KnownBrands); brand != "" {
				mention = brand + " " + mention
			}
			out = append(out, store.Entity{Kind: store.EntityProduct, Value: mention})
		}
	}
	return out
}

// resolveProduct runs the product path. A category reference without any
// model number or brand in the text lists that category instead.
func (s *assistantService) resolveProduct(ctx context.Context, userID string, in intent.Intent, refs reference.Resolution, out *dto.Outcome) {
	productRef, hasProduct := refs.Get(store.EntityProduct)
	categoryRef, hasCategory := refs.Get(store.EntityCategory)

	if !hasProduct && hasCategory &&
		len(textnorm.ExtractModelTokens(in.Query)) == 0 &&
		textnorm.ExtractBrand(in.Query, catalog.KnownBrands) == "" {
		if c, ok := catalog.CategoryByName(categoryRef.Value); ok {
			out.Intent = string(intent.KindCategory)
			s.mapper.ApplyResult(out, s.engine.ResolveCategory(ctx, userID, c))
			return
		}
	}

	var ref *store.Entity
	if hasProduct {
		ref = &productRef
	}
	s.mapper.ApplyResult(out, s.engine.Resolve(ctx, userID, in.Query, ref))
}

func (s *assistantService) showMore(ctx context.Context, userID string, out *dto.Outcome) {
	page, err := s.pager.Page(ctx, userID, 0)
	if err != nil {
		s.logger.Warn(assistantModule, "Failed to page result set", map[string]interface{}{
			"user_id": userID,
			"error":   err.Error(),
		})
		return
	}
	if page.Total == 0 {
		return
	}
	out.Page = s.mapper.PageToDTO(&page)
	out.Query = page.Signature
	if len(page.Items) == 0 {
		return
	}
	out.Kind = string(resolution.OutcomeDisambiguation)
	out.Candidates = make([]dto.ProductDTO, 0, len(page.Items))
	for _, item := range page.Items {
		out.Candidates = append(out.Candidates, s.mapper.RecordToDTO(item))
	}
}

// lookupOrder fetches the order named in the message, or the last order
// the user mentioned when the message refers back to one.
func (s *assistantService) lookupOrder(ctx context.Context, userID, number string, refs reference.Resolution, out *dto.Outcome) {
	if number == "" {
		if e, ok := refs.Get(store.EntityOrder); ok {
			number = e.Value
		}
	}
	if number == "" {
		return
	}
	out.Query = number

	if _, err := s.sessions.Update(ctx, userID, func(sess *store.Session) error {
		sess.Entities.Add(store.Entity{Kind: store.EntityOrder, Value: number}, time.Now())
		sess.Topic = store.TopicOrderStatus
		return nil
	}); err != nil {
		s.logger.Warn(assistantModule, "Failed to record order entity", map[string]interface{}{
			"user_id": userID,
			"error":   err.Error(),
		})
	}

	id, err := strconv.Atoi(number)
	if err != nil || s.orders == nil {
		return
	}
	if order := s.orders.GetOrder(ctx, id); order != nil {
		out.Kind = string(resolution.OutcomeUniqueMatch)
		out.Order = s.mapper.OrderToDTO(order)
	}
}

// outcomeLine is the assistant side of the exchange as kept in the session.
func outcomeLine(out *dto.Outcome) string {
	switch {
	case out.Order != nil:
		return fmt.Sprintf("[%s] order %s: %s", out.Kind, out.Order.Number, out.Order.Status)
	case out.Match != nil:
		return fmt.Sprintf("[%s] %s", out.Kind, out.Match.Name)
	case len(out.Candidates) > 0:
		names := make([]string, 0, len(out.Candidates))
		for _, c := range out.Candidates {
			names = append(names, c.Name)
		}
		line := fmt.Sprintf("[%s] %s", out.Kind, strings.Join(names, ", "))
		if out.Page != nil && out.Page.Remaining > 0 {
			line += fmt.Sprintf(" (+%d more)", out.Page.Remaining)
		}
		return line
	}
	return fmt.Sprintf("[%s]", out.Kind)
}

func (s *assistantService) publish(ctx context.Context, out *dto.Outcome) {
	if s.publisher == nil {
		return
	}
	ev := events.OutcomeEvent{
		OutcomeID:  out.ID,
		UserID:     out.UserID,
		Language:   out.Language,
		Intent:     out.Intent,
		Outcome:    out.Kind,
		Query:      out.Query,
		Topic:      out.Topic,
		Candidates: len(out.Candidates),
		OccurredAt: time.Now(),
	}
	if out.Match != nil {
		ev.Match = out.Match.Name
	}
	if err := s.publisher.Publish(ctx, ev); err != nil {
		s.logger.Warn(assistantModule, "Failed to publish outcome event", map[string]interface{}{
			"outcome_id": out.ID,
			"error":      err.Error(),
		})
	}
}

func (s *assistantService) Summary(ctx context.Context, userID string) (*dto.SessionSummaryResponse, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, fmt.Errorf("%w: user id is required", assistant.ErrInvalidInput)
	}
	summary, err := s.sessions.Summarize(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &dto.SessionSummaryResponse{UserID: userID, Summary: summary}, nil
}

// Reset waits for the user's in-flight message before dropping the session.
func (s *assistantService) Reset(ctx context.Context, userID string) error {
	if strings.TrimSpace(userID) == "" {
		return fmt.Errorf("%w: user id is required", assistant.ErrInvalidInput)
	}
	return s.locks.Do(ctx, userID, func() error {
		return s.sessions.Reset(ctx, userID)
	})
}

func (s *assistantService) OrdersByPhone(ctx context.Context, phone string) (*dto.OrdersByPhoneResponse, error) {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, phone)
	if len(digits) < 6 {
		return nil, fmt.Errorf("%w: phone number needs at least 6 digits", assistant.ErrInvalidInput)
	}

	var orders []catalog.OrderRecord
	if s.orders != nil {
		orders = s.orders.GetOrdersByPhone(ctx, phone)
	}
	return &dto.OrdersByPhoneResponse{Phone: phone, Orders: s.mapper.OrdersToDTO(orders)}, nil
}
