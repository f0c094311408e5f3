package parser

import (
	"strings"
)

var issuerChain = func() []matcher {
	chain := make([]matcher, 0, len(knownIssuers)+2)
	for _, iss := range knownIssuers {
		chain = append(chain, present(iss.re, iss.name))
	}
	return append(chain, capture(issuerLabelPattern), capture(bankHeaderPattern))
}()

var cardChain = []matcher{
	capture(cardNumberPattern),
	capture(cardFallbackPattern),
}

// Date families are tried numeric, month-first, then day-first.
var billingCycleChain = []matcher{
	captureRange(billingNumericPattern),
	captureRange(billingMonthDayPattern),
	captureRange(billingDayMonthPattern),
}

var dueDateChain = []matcher{
	capture(dueNumericPattern),
	capture(dueMonthDayPattern),
	capture(dueDayMonthPattern),
}

var balanceChain = []matcher{
	currencyBalance,
	func(text string) (string, bool) {
		m := balanceDollarPattern.FindStringSubmatch(text)
		if m == nil {
			return "", false
		}
		return "$" + m[1], true
	},
}

// detectIssuer returns a canonical issuer name, or label/header text as a
// best effort. Incidental substrings ("visa" inside a word) are accepted.
func detectIssuer(text string) (string, bool) {
	return firstMatch(text, issuerChain)
}

// detectCardLast4 returns exactly four digits.
func detectCardLast4(text string) (string, bool) {
	return firstMatch(text, cardChain)
}

func detectBillingCycle(text string) (string, bool) {
	return firstMatch(text, billingCycleChain)
}

func detectDueDate(text string) (string, bool) {
	return firstMatch(text, dueDateChain)
}

func detectBalance(text string) (string, bool) {
	return firstMatch(text, balanceChain)
}

// currencyBalance renders "<CUR> <amount>" when a currency token precedes
// the amount, and "$<amount>" otherwise.
func currencyBalance(text string) (string, bool) {
	m := balanceCurrencyPattern.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	currency := strings.TrimSuffix(strings.ToUpper(m[1]), ".")
	if currency == "" {
		return "$" + m[2], true
	}
	return currency + " " + m[2], true
}
