package dataset

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Raw prices arrive as strings with a currency marker, either a leading
// symbol ("$10.25") or a trailing code ("1.25 ETH"). A price without any
// marker violates the input contract and is never coerced.
var (
	reSymbolPrice = regexp.MustCompile(`^([$€£¥])\s*([0-9][0-9,]*(?:\.[0-9]+)?)$`)
	reCodePrice   = regexp.MustCompile(`^([0-9][0-9,]*(?:\.[0-9]+)?)\s*([A-Za-z]{2,6})$`)
)

// ParsePrice extracts the decimal amount from a currency-marked price
// string. The currency itself is discarded; only the magnitude feeds the
// label computation.
func ParsePrice(s string) (float64, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return 0, fmt.Errorf("%w: empty price", ErrPrecondition)
	}

	var amount string
	if m := reSymbolPrice.FindStringSubmatch(trimmed); m != nil {
		amount = m[2]
	} else if m := reCodePrice.FindStringSubmatch(trimmed); m != nil {
		amount = m[1]
	} else {
		return 0, fmt.Errorf("%w: price %q has no currency marker", ErrPrecondition, s)
	}

	amount = strings.ReplaceAll(amount, ",", "")
	f, err := strconv.ParseFloat(amount, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: price %q: %v", ErrPrecondition, s, err)
	}
	return f, nil
}
