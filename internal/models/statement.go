package models

// Transaction is a single line item found in a card statement.
// All fields are raw text tokens; nothing is re-parsed into dates or numbers.
type Transaction struct {
	Date        string `json:"date"`
	Description string `json:"description"`
	Amount      string `json:"amount"` // "$" followed by the matched digits
}

// ParsedStatement holds the fields extracted from a statement's text.
// An empty string (or nil slice) means the field was not detected.
type ParsedStatement struct {
	Issuer         string        `json:"issuer,omitempty"`
	CardLast4      string        `json:"cardLast4,omitempty"`
	BillingCycle   string        `json:"billingCycle,omitempty"`
	PaymentDueDate string        `json:"paymentDueDate,omitempty"`
	TotalBalance   string        `json:"totalBalance,omitempty"`
	Transactions   []Transaction `json:"transactions,omitempty"`
}

// IsEmpty reports whether no field at all was detected.
func (s *ParsedStatement) IsEmpty() bool {
	return s.Issuer == "" && s.CardLast4 == "" && s.BillingCycle == "" &&
		s.PaymentDueDate == "" && s.TotalBalance == "" && len(s.Transactions) == 0
}
