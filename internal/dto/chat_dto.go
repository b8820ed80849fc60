package dto

import "time"

type ProcessRequest struct {
	UserID       string `json:"user_id" validate:"required,max=128"`
	Text         string `json:"text" validate:"required,max=2000"`
	LanguageHint string `json:"language_hint,omitempty" validate:"omitempty,len=2"`
}

// WsChatMessage is what a websocket client sends; the user id comes from
// the token.
type WsChatMessage struct {
	Text         string `json:"text" validate:"required,max=2000"`
	LanguageHint string `json:"language_hint,omitempty" validate:"omitempty,len=2"`
}

type ProductDTO struct {
	ID            int     `json:"id,omitempty"`
	Name          string  `json:"name"`
	Price         float64 `json:"price"`
	Currency      string  `json:"currency"`
	StockStatus   string  `json:"stock_status"`
	URL           string  `json:"url"`
	SKU           string  `json:"sku,omitempty"`
	Category      string  `json:"category,omitempty"`
	Source        string  `json:"source"`
	Score         float64 `json:"score,omitempty"`
	MatchedSignal string  `json:"matched_signal,omitempty"`
}

type PageDTO struct {
	Signature string `json:"signature"`
	Start     int    `json:"start"`
	End       int    `json:"end"`
	Total     int    `json:"total"`
	Remaining int    `json:"remaining"`
}

type OrderItemDTO struct {
	Name     string  `json:"name"`
	Quantity int     `json:"quantity"`
	Total    float64 `json:"total"`
}

type OrderDTO struct {
	ID        int            `json:"id"`
	Number    string         `json:"number"`
	Status    string         `json:"status"`
	Total     float64        `json:"total"`
	Currency  string         `json:"currency"`
	CreatedAt time.Time      `json:"created_at"`
	Items     []OrderItemDTO `json:"items"`
}

type ReferenceDTO struct {
	Kind     string `json:"kind"`
	Phrase   string `json:"phrase"`
	Value    string `json:"value,omitempty"`
	Resolved bool   `json:"resolved"`
}

// Outcome is the structured result of one chat message. Kind is one of
// UNIQUE_MATCH, DISAMBIGUATION or NO_MATCH.
type Outcome struct {
	ID         string         `json:"id"`
	UserID     string         `json:"user_id"`
	Kind       string         `json:"kind"`
	Intent     string         `json:"intent"`
	Language   string         `json:"language"`
	Topic      string         `json:"topic"`
	Query      string         `json:"query,omitempty"`
	Match      *ProductDTO    `json:"match,omitempty"`
	Candidates []ProductDTO   `json:"candidates,omitempty"`
	Page       *PageDTO       `json:"page,omitempty"`
	Order      *OrderDTO      `json:"order,omitempty"`
	Orders     []OrderDTO     `json:"orders,omitempty"`
	References []ReferenceDTO `json:"references,omitempty"`
}
