// Package store holds the per-user conversation state that survives between
// messages.
package store

import (
	"time"

	"sales-assistant-be/pkg/catalog"
)

const (
	// MessageCap bounds the message ring; the oldest entry is dropped first.
	MessageCap = 30
	// EntityCap bounds each entity list.
	EntityCap = 5
)

type Topic string

const (
	TopicNone         Topic = ""
	TopicProductInfo  Topic = "product_info"
	TopicOrderStatus  Topic = "order_status"
	TopicSalesInquiry Topic = "sales_inquiry"
	TopicSupport      Topic = "support"
	TopicGeneral      Topic = "general"
)

type Message struct {
	Text   string    `json:"text"`
	IsUser bool      `json:"is_user"`
	At     time.Time `json:"at"`
}

// Pagination is the cursor over the last listing shown to the user.
type Pagination struct {
	QuerySignature string                  `json:"query_signature"`
	Topic          Topic                   `json:"topic"`
	Offset         int                     `json:"offset"`
	Results        []catalog.ProductRecord `json:"results"`
}

// Session is one user's conversation state.
type Session struct {
	ID           string     `json:"id"`
	Language     string     `json:"language"`
	CreatedAt    time.Time  `json:"created_at"`
	LastActiveAt time.Time  `json:"last_active_at"`
	Topic        Topic      `json:"topic"`
	Messages     []Message  `json:"messages"`
	Entities     Entities   `json:"entities"`
	Pagination   Pagination `json:"pagination"`
}

func NewSession(id string, now time.Time) *Session {
	return &Session{
		ID:           id,
		CreatedAt:    now,
		LastActiveAt: now,
		Messages:     make([]Message, 0, 4),
	}
}

// Expired reports whether the session has been idle for longer than ttl.
func (s *Session) Expired(now time.Time, ttl time.Duration) bool {
	return ttl > 0 && now.Sub(s.LastActiveAt) > ttl
}

// AppendMessage adds a message to the ring, dropping the oldest entries
// beyond MessageCap.
func (s *Session) AppendMessage(text string, isUser bool, at time.Time) {
	s.Messages = append(s.Messages, Message{Text: text, IsUser: isUser, At: at})
	if over := len(s.Messages) - MessageCap; over > 0 {
		s.Messages = append(s.Messages[:0:0], s.Messages[over:]...)
	}
}

// StoreResultSet replaces the listing and rewinds the cursor. The session
// topic at this point is remembered so a later topic switch rewinds again.
func (s *Session) StoreResultSet(signature string, records []catalog.ProductRecord) {
	results := make([]catalog.ProductRecord, len(records))
	copy(results, records)
	s.Pagination = Pagination{
		QuerySignature: signature,
		Topic:          s.Topic,
		Offset:         0,
		Results:        results,
	}
}

// Clone returns a deep copy. Sessions handed out of the store are always
// clones so callers cannot mutate stored state.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	c := *s
	c.Messages = append([]Message(nil), s.Messages...)
	c.Entities = s.Entities.clone()
	c.Pagination.Results = append([]catalog.ProductRecord(nil), s.Pagination.Results...)
	return &c
}
