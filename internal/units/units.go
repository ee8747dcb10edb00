// Package units converts between human-entered token amounts and the
// smallest-unit integers the chain works with, and holds the small string
// helpers the views share.
package units

import (
	"errors"
	"fmt"
	"math/big"
	"regexp"
	"strings"
)

// STXDecimals is the number of fraction digits in one STX (micro-STX).
const STXDecimals = 6

// fallback is returned by the formatters when input cannot be formatted.
const fallback = "0.00"

var (
	ErrInvalidAmount  = errors.New("invalid amount")
	ErrTooManyDecimal = errors.New("amount has more fraction digits than the token supports")
)

var (
	plainDecimal  = regexp.MustCompile(`^[0-9]+(\.[0-9]*)?$|^\.[0-9]+$`)
	// signedDecimal also admits a sign and grouping commas.
	signedDecimal = regexp.MustCompile(`^[-+]?([0-9][0-9,]*(\.[0-9]*)?|\.[0-9]+)$`)
	stacksAddr    = regexp.MustCompile(`^ST[0-9A-Z]{38}$|^S[0-9A-Z]{39}$`)
)

// FormatTokenAmount formats a decimal amount with exactly decimals fraction
// digits and en-US digit grouping, e.g. "1234.5" at 2 -> "1,234.50".
// Grouping commas in the input are accepted, so the function is idempotent on
// its own output. Negative decimals or input that is not a plain decimal
// (fractions like "1/3" and exponents included) yield "0.00".
func FormatTokenAmount(amount string, decimals int) string {
	amount = strings.TrimSpace(amount)
	if decimals < 0 || !signedDecimal.MatchString(amount) {
		return fallback
	}
	r, ok := new(big.Rat).SetString(strings.ReplaceAll(amount, ",", ""))
	if !ok {
		return fallback
	}
	return group(r.FloatString(decimals))
}

// FormatUnits formats a smallest-unit integer as a grouped decimal string,
// e.g. 1500000 at 6 -> "1.500000".
func FormatUnits(raw *big.Int, decimals int) string {
	if raw == nil || decimals < 0 {
		return fallback
	}
	r := new(big.Rat).SetFrac(raw, pow10(decimals))
	return group(r.FloatString(decimals))
}

// FormatMicroSTX formats a micro-STX balance string with six decimals.
// Anything but a non-negative base-10 integer is ErrInvalidAmount.
func FormatMicroSTX(micro string) (string, error) {
	n, ok := new(big.Int).SetString(strings.TrimSpace(micro), 10)
	if !ok || n.Sign() < 0 {
		return "", fmt.Errorf("%w: micro-STX %q", ErrInvalidAmount, micro)
	}
	return FormatUnits(n, STXDecimals), nil
}

// ParseUnits converts a human decimal string to smallest units using exact
// string arithmetic: "1.5" at 6 -> 1500000. Signs, exponents and more than
// decimals fraction digits are rejected.
func ParseUnits(s string, decimals int) (*big.Int, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if decimals < 0 || !plainDecimal.MatchString(s) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}

	whole, frac, _ := strings.Cut(s, ".")
	if len(frac) > decimals {
		// Trailing zeros beyond precision carry no value.
		trimmed := strings.TrimRight(frac[decimals:], "0")
		if trimmed != "" {
			return nil, fmt.Errorf("%w: %q allows %d", ErrTooManyDecimal, s, decimals)
		}
		frac = frac[:decimals]
	}
	frac += strings.Repeat("0", decimals-len(frac))

	n, ok := new(big.Int).SetString(whole+frac, 10)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	return n, nil
}

// IsValidAmount reports whether s is a plain decimal number greater than zero.
// Grouping commas are ignored, as in ParseUnits.
func IsValidAmount(s string) bool {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if !plainDecimal.MatchString(s) {
		return false
	}
	r, ok := new(big.Rat).SetString(s)
	return ok && r.Sign() > 0
}

// ValidateStacksAddress is a shape check only; it does not verify the
// c32check checksum.
func ValidateStacksAddress(addr string) bool {
	return stacksAddr.MatchString(addr)
}

// FormatAddress shortens addr to its first and last chars characters.
func FormatAddress(addr string, chars int) string {
	if addr == "" {
		return ""
	}
	if chars <= 0 || len(addr) <= 2*chars {
		return addr
	}
	return addr[:chars] + "..." + addr[len(addr)-chars:]
}

// TruncateText cuts s to max runes, appending "..." when it was cut.
func TruncateText(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max]) + "..."
}

func pow10(n int) *big.Int {
	return new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(n)), nil)
}

// group inserts thousands separators into the integer part of a decimal
// string produced by big.Rat.FloatString.
func group(s string) string {
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")
	whole, frac, hasFrac := strings.Cut(s, ".")

	var b strings.Builder
	for i, c := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(c)
	}
	out := b.String()
	if hasFrac {
		out += "." + frac
	}
	if neg && strings.Trim(out, "0.,") != "" {
		out = "-" + out
	}
	return out
}
