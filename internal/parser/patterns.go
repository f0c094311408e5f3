package parser

import (
	"regexp"
)

// monthName matches English month names, abbreviated or in full.
const monthName = `(?:Jan(?:uary)?|Feb(?:ruary)?|Mar(?:ch)?|Apr(?:il)?|May|Jun(?:e)?|Jul(?:y)?|Aug(?:ust)?|Sep(?:t(?:ember)?)?|Oct(?:ober)?|Nov(?:ember)?|Dec(?:ember)?)`

// Date notations shared by the billing cycle and due date families:
// 01/31/2025 or 1-31-25, Jan 31, 2025, and 31 Jan 2025.
const (
	numericDate  = `\d{1,2}[/-]\d{1,2}[/-]\d{2,4}`
	monthDayDate = monthName + `\s+\d{1,2},\s*\d{4}`
	dayMonthDate = `\d{1,2}\s+` + monthName + `\s+\d{4}`
)

const (
	cycleLabel   = `(?:billing\s*period|statement\s*period|cycle)[:\s]*`
	dueLabel     = `(?:payment\s*due|due\s*date|payment\s*due\s*date)[:\s]*`
	balanceLabel = `(?:total\s*balance|new\s*balance|balance\s*due|amount\s*due)[:\s]*`
	rangeJoin    = `\s*(?:to|-)\s*`
)

// notFollowedBy stands in for a (?!\d) lookahead, which RE2 lacks. It consumes
// one extra character after the capture group, never inside it.
const notFollowedBy = `(?:\D|$)`

// issuerPattern maps a known issuer's canonical name to its text pattern.
type issuerPattern struct {
	name string
	re   *regexp.Regexp
}

// knownIssuers is checked in order; the first hit wins.
var knownIssuers = []issuerPattern{
	{"American Express", regexp.MustCompile(`(?i)american\s*express|amex`)},
	{"Visa", regexp.MustCompile(`(?i)visa`)},
	{"Mastercard", regexp.MustCompile(`(?i)mastercard|master\s*card`)},
	{"Discover", regexp.MustCompile(`(?i)discover`)},
	{"Chase", regexp.MustCompile(`(?i)chase`)},
}

var (
	issuerLabelPattern = regexp.MustCompile(`(?i)(?:Card Issuer|Issuer)[:\s-]+([A-Za-z][A-Za-z0-9 &.-]+)`)
	bankHeaderPattern  = regexp.MustCompile(`([A-Z][A-Za-z &.-]+Bank)`)
)

var (
	// Account Number XXXX-XXXX-XXXX-1234, Card ending in 1234, Account: **** 1234
	cardNumberPattern = regexp.MustCompile(
		`(?i)(?:card|account)(?:\s*(?:no\.?|number|#))?\s*[:\s]*` +
			`(?:ending\s*in\s*|last\s*4\s*digits?\s*)?` +
			`(?:[X*\d]{4}[\s-]*){0,3}[X*]{0,4}[\s-]*` +
			`(\d{4})` + notFollowedBy,
	)
	cardFallbackPattern = regexp.MustCompile(
		`(?i)(?:card|account|ending\s*in|last\s*4)\D{0,50}?(\d{4})` + notFollowedBy,
	)
)

var (
	billingNumericPattern  = regexp.MustCompile(`(?i)` + cycleLabel + `(` + numericDate + `)` + rangeJoin + `(` + numericDate + `)`)
	billingMonthDayPattern = regexp.MustCompile(`(?i)` + cycleLabel + `(` + monthDayDate + `)` + rangeJoin + `(` + monthDayDate + `)`)
	billingDayMonthPattern = regexp.MustCompile(`(?i)` + cycleLabel + `(` + dayMonthDate + `)` + rangeJoin + `(` + dayMonthDate + `)`)
	dueNumericPattern      = regexp.MustCompile(`(?i)` + dueLabel + `(` + numericDate + `)`)
	dueMonthDayPattern     = regexp.MustCompile(`(?i)` + dueLabel + `(` + monthDayDate + `)`)
	dueDayMonthPattern     = regexp.MustCompile(`(?i)` + dueLabel + `(` + dayMonthDate + `)`)
)

var (
	// Any 2-5 letter word after the label reads as a currency code, so
	// "amount due by 02/15" gives "BY 02".
	balanceCurrencyPattern = regexp.MustCompile(
		`(?i)` + balanceLabel + `(?:([A-Z]{2,5}|INR|USD|AED|Rs\.?|CAD|EUR)\s*)?\$?([0-9,]+\.?\d{0,2})`,
	)
	balanceDollarPattern = regexp.MustCompile(`(?i)` + balanceLabel + `\$?([0-9,]+\.?\d{0,2})`)
)

var (
	transactionNumericPattern = regexp.MustCompile(`(\d{1,2}[/-]\d{1,2})\s+(.+?)\s+\$?([0-9,]+\.\d{2})`)
	transactionMonthPattern   = regexp.MustCompile(`(?i)(` + monthName + `\s+\d{1,2}(?:,\s*\d{4})?)\s+(.+?)\s+\$?([0-9,]+\.\d{2})`)
)
