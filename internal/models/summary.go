package models

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// Detection status labels shown alongside a parsed statement.
const (
	StatusComplete = "Complete Analysis"
	StatusPartial  = "Partial Analysis"
	StatusLimited  = "Limited Data"
)

// NotDetected is the display value of a field that was not found.
const NotDetected = "Not detected"

// FieldStatus is one row of the detection badge list.
type FieldStatus struct {
	Label    string `json:"label"`
	Value    string `json:"value"`
	Detected bool   `json:"detected"`
}

// Summary describes how much of a statement was recognised.
type Summary struct {
	Detected         int           `json:"detected"`
	TotalFields      int           `json:"totalFields"`
	CompletionRate   int           `json:"completionRate"` // percent, rounded
	Status           string        `json:"status"`
	TransactionCount int           `json:"transactionCount"`
	TransactionTotal string        `json:"transactionTotal"`
	Fields           []FieldStatus `json:"fields"`
}

// Fields returns the scalar fields in display order.
func (s *ParsedStatement) Fields() []FieldStatus {
	raw := []struct{ label, value string }{
		{"Card Issuer", s.Issuer},
		{"Card Last 4 Digits", s.CardLast4},
		{"Billing Cycle", s.BillingCycle},
		{"Payment Due Date", s.PaymentDueDate},
		{"Total Balance", s.TotalBalance},
	}

	fields := make([]FieldStatus, 0, len(raw))
	for _, r := range raw {
		f := FieldStatus{Label: r.label, Value: r.value, Detected: r.value != ""}
		if !f.Detected {
			f.Value = NotDetected
		}
		fields = append(fields, f)
	}
	return fields
}

// Summarize computes detection coverage for a parsed statement.
// The transaction total is informational; amounts that do not parse are skipped.
func Summarize(s *ParsedStatement) Summary {
	fields := s.Fields()

	detected := 0
	for _, f := range fields {
		if f.Detected {
			detected++
		}
	}
	rate := int(math.Round(float64(detected) * 100 / float64(len(fields))))

	sum := Summary{
		Detected:         detected,
		TotalFields:      len(fields),
		CompletionRate:   rate,
		TransactionCount: len(s.Transactions),
		TransactionTotal: "$" + TransactionTotal(s.Transactions).StringFixed(2),
		Fields:           fields,
	}

	switch {
	case rate == 100 && len(s.Transactions) > 0:
		sum.Status = StatusComplete
	case rate >= 60:
		sum.Status = StatusPartial
	default:
		sum.Status = StatusLimited
	}
	return sum
}

// TransactionTotal adds up the transaction amounts.
func TransactionTotal(txns []Transaction) decimal.Decimal {
	total := decimal.Zero
	for _, txn := range txns {
		amt, err := ParseAmount(txn.Amount)
		if err != nil {
			continue
		}
		total = total.Add(amt)
	}
	return total
}

// ParseAmount converts an amount token such as "$1,234.56" to a decimal.
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, ",", "")
	return decimal.NewFromString(s)
}
