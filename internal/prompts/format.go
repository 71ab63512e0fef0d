// Package prompts builds the text sent to the language model and the text
// shown to the operator.
package prompts

import (
	"strings"

	"github.com/mitchellh/go-wordwrap"
	"github.com/shopspring/decimal"
)

// WrapWidth is the column at which screen text is wrapped.
const WrapWidth = 80

var hundred = decimal.NewFromInt(100)

// FormatProbability renders a 0..1 probability as a percentage rounded to two
// decimals, e.g. 0.6789 -> "67.89%". Whole percentages keep one decimal ("50.0%").
func FormatProbability(p float64) string {
	pct := decimal.NewFromFloat(p).Mul(hundred).Round(2)
	if pct.Equal(pct.Truncate(0)) {
		return pct.StringFixed(1) + "%"
	}
	return pct.String() + "%"
}

// Wrap wraps every paragraph of text at WrapWidth columns. Each paragraph ends
// with a newline.
func Wrap(text string) string {
	var b strings.Builder
	for _, paragraph := range strings.Split(text, "\n") {
		b.WriteString(wordwrap.WrapString(paragraph, WrapWidth))
		b.WriteByte('\n')
	}
	return b.String()
}
