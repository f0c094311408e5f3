package parser

import (
	"github.com/insightdelivered/card-statement-parser/internal/models"
)

// fieldExtractor fills one field of the statement. Extractors write disjoint
// fields, so their order does not change the result.
type fieldExtractor struct {
	name    string
	extract func(text string, st *models.ParsedStatement)
}

var extractors = []fieldExtractor{
	{"issuer", func(text string, st *models.ParsedStatement) {
		st.Issuer, _ = detectIssuer(text)
	}},
	{"cardLast4", func(text string, st *models.ParsedStatement) {
		st.CardLast4, _ = detectCardLast4(text)
	}},
	{"billingCycle", func(text string, st *models.ParsedStatement) {
		st.BillingCycle, _ = detectBillingCycle(text)
	}},
	{"paymentDueDate", func(text string, st *models.ParsedStatement) {
		st.PaymentDueDate, _ = detectDueDate(text)
	}},
	{"totalBalance", func(text string, st *models.ParsedStatement) {
		st.TotalBalance, _ = detectBalance(text)
	}},
	{"transactions", func(text string, st *models.ParsedStatement) {
		st.Transactions = detectTransactions(text)
	}},
}

// Parse extracts every supported field from already-extracted statement
// text. It never fails: text with no recognisable labels yields an empty
// statement. Parse keeps no state and is safe for concurrent use.
func Parse(text string) *models.ParsedStatement {
	text = Normalize(text)

	st := &models.ParsedStatement{}
	for _, e := range extractors {
		e.extract(text, st)
	}
	return st
}

// FieldNames lists the extracted fields in the order they are filled.
func FieldNames() []string {
	names := make([]string, len(extractors))
	for i, e := range extractors {
		names[i] = e.name
	}
	return names
}
