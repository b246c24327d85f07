package csvimport

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	// priceNoise is anything that cannot be part of a number.
	priceNoise = regexp.MustCompile(`[^\d.,]`)

	// leadingNumber is the longest decimal literal at the start of the text.
	leadingNumber = regexp.MustCompile(`^(\d+(\.\d*)?|\.\d+)`)
)

// ParsePrice reads a price typed by a human into a spreadsheet cell.
//
// Every character other than digits, commas and periods is dropped, the
// first comma becomes a decimal point and the leading number is parsed.
// Text without a leading number yields zero.
//
//	"1 200,50 грн" -> 1200.5
//	"-"            -> 0
func ParsePrice(s string) decimal.Decimal {
	cleaned := priceNoise.ReplaceAllString(s, "")
	cleaned = strings.Replace(cleaned, ",", ".", 1)

	num := leadingNumber.FindString(cleaned)
	num = strings.TrimSuffix(num, ".")
	if num == "" {
		return decimal.Zero
	}
	if num[0] == '.' {
		num = "0" + num
	}

	d, err := decimal.NewFromString(num)
	if err != nil {
		return decimal.Zero
	}
	return d
}
