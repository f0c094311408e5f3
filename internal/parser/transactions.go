package parser

import (
	"regexp"
	"strings"

	"github.com/insightdelivered/card-statement-parser/internal/models"
)

// transactionPasses run in this order over the whole text.
var transactionPasses = []*regexp.Regexp{
	transactionNumericPattern,
	transactionMonthPattern,
}

// detectTransactions concatenates every pass's matches in pass order, each
// pass in order of appearance. There is no deduplication: a line that fits
// both date notations is reported twice.
func detectTransactions(text string) []models.Transaction {
	var txns []models.Transaction
	for _, re := range transactionPasses {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			txns = append(txns, models.Transaction{
				Date:        m[1],
				Description: strings.TrimSpace(m[2]),
				Amount:      "$" + m[3],
			})
		}
	}
	return txns
}
