package model

import "time"

type EmailKind string

const (
	EmailKindConcierge EmailKind = "concierge"
	EmailKindRestock   EmailKind = "restock"
)

// EmailDraft is the structured output requested from the text model.
type EmailDraft struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

type DraftRequest struct {
	Instruction  string `json:"instruction"`
	CustomerName string `json:"customer_name,omitempty"`
	OrderID      string `json:"order_id,omitempty"`
}

type SentEmail struct {
	ID      string    `json:"id"`
	To      string    `json:"to"`
	Subject string    `json:"subject"`
	Body    string    `json:"body"`
	Kind    EmailKind `json:"kind"`
	SentAt  time.Time `json:"sent_at"`
}
