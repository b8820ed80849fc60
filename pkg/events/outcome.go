package events

import "time"

const TypeConversationOutcome = "conversation.outcome"

// OutcomeEvent is published once per processed chat message.
type OutcomeEvent struct {
	OutcomeID  string
	UserID     string
	Language   string
	Intent     string
	Outcome    string
	Query      string
	Topic      string
	Match      string
	Candidates int
	OccurredAt time.Time
}

func (e OutcomeEvent) EventType() string {
	return TypeConversationOutcome
}

func (e OutcomeEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"outcome_id": e.OutcomeID,
		"user_id":    e.UserID,
		"language":   e.Language,
		"intent":     e.Intent,
		"outcome":    e.Outcome,
		"query":      e.Query,
		"topic":      e.Topic,
		"match":      e.Match,
		"candidates": e.Candidates,
	}
}

func (e OutcomeEvent) Timestamp() time.Time {
	return e.OccurredAt
}

// OutcomeFromPayload reads back what Payload wrote. Numbers arrive as
// float64 after a JSON round trip.
func OutcomeFromPayload(e Event) OutcomeEvent {
	p := e.Payload()
	str := func(k string) string {
		s, _ := p[k].(string)
		return s
	}
	out := OutcomeEvent{
		OutcomeID:  str("outcome_id"),
		UserID:     str("user_id"),
		Language:   str("language"),
		Intent:     str("intent"),
		Outcome:    str("outcome"),
		Query:      str("query"),
		Topic:      str("topic"),
		Match:      str("match"),
		OccurredAt: e.Timestamp(),
	}
	switch n := p["candidates"].(type) {
	case float64:
		out.Candidates = int(n)
	case int:
		out.Candidates = n
	}
	return out
}
