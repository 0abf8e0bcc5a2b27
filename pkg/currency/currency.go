package currency

import (
	"fmt"
	"strings"

	"github.com/gocartshop/gocart-api/pkg/config"
	"github.com/shopspring/decimal"
)

// DefaultINRRate is the fixed USD to INR conversion applied to display
// prices when no rate is configured.
var DefaultINRRate = decimal.NewFromFloat(83.5)

// Converter turns catalog USD prices into INR display amounts.
type Converter struct {
	rate decimal.Decimal
}

// NewConverter parses the configured rate, falling back to the default when
// it is empty or malformed.
func NewConverter(cfg config.CurrencyConfig) *Converter {
	rate := DefaultINRRate
	if trimmed := strings.TrimSpace(cfg.INRRate); trimmed != "" {
		if parsed, err := decimal.NewFromString(trimmed); err == nil && parsed.IsPositive() {
			rate = parsed
		}
	}
	return &Converter{rate: rate}
}

// Rate returns the active conversion rate.
func (c *Converter) Rate() decimal.Decimal {
	return c.rate
}

// ToINR converts a USD amount into INR, rounded to paise.
func (c *Converter) ToINR(usd decimal.Decimal) decimal.Decimal {
	return usd.Mul(c.rate).Round(2)
}

// FormatINR renders an INR amount with the rupee symbol and Indian-style
// thousands grouping (12,34,567.89).
func (c *Converter) FormatINR(inr decimal.Decimal) string {
	grouped := groupIndian(inr.StringFixed(2))
	if strings.HasPrefix(grouped, "-") {
		return "-₹" + grouped[1:]
	}
	return "₹" + grouped
}

func groupIndian(fixed string) string {
	neg := strings.HasPrefix(fixed, "-")
	if neg {
		fixed = fixed[1:]
	}
	whole, frac, _ := strings.Cut(fixed, ".")

	var grouped string
	if len(whole) <= 3 {
		grouped = whole
	} else {
		head := whole[:len(whole)-3]
		tail := whole[len(whole)-3:]
		var parts []string
		for len(head) > 2 {
			parts = append([]string{head[len(head)-2:]}, parts...)
			head = head[:len(head)-2]
		}
		if head != "" {
			parts = append([]string{head}, parts...)
		}
		grouped = strings.Join(append(parts, tail), ",")
	}

	out := fmt.Sprintf("%s.%s", grouped, frac)
	if neg {
		out = "-" + out
	}
	return out
}
