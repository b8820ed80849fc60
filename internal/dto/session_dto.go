package dto

type SessionSummaryResponse struct {
	UserID  string `json:"user_id"`
	Summary string `json:"summary"`
}

type OrdersByPhoneRequest struct {
	Phone string `query:"phone" validate:"required,min=6,max=32"`
}

type OrdersByPhoneResponse struct {
	Phone  string     `json:"phone"`
	Orders []OrderDTO `json:"orders"`
}
