package checkout

import "time"

// SubunitFactor converts whole currency units to the gateway's subunits.
const SubunitFactor = 100

const StatusSuccess = "success"

// Customer as reported by the gateway
type Customer struct {
	Email string `json:"email"`
}

// Transaction is the verified state of one payment
type Transaction struct {
	ID        int64      `json:"id"`
	Reference string     `json:"reference"`
	Status    string     `json:"status"`
	Amount    int64      `json:"amount"` // subunits
	Currency  string     `json:"currency"`
	PaidAt    *time.Time `json:"paid_at"`
	Channel   string     `json:"channel"`
	Customer  Customer   `json:"customer"`
}

// Successful reports whether the payment completed.
func (t *Transaction) Successful() bool {
	return t.Status == StatusSuccess
}

// Units returns the paid amount in whole currency units.
func (t *Transaction) Units() int64 {
	return t.Amount / SubunitFactor
}

// verifyResponse wraps every gateway reply
type verifyResponse struct {
	Status  bool         `json:"status"`
	Message string       `json:"message"`
	Data    *Transaction `json:"data"`
}

// PublicConfig is what the browser widget needs
type PublicConfig struct {
	PublishableKey string `json:"publishable_key"`
	Currency       string `json:"currency"`
}
