// Package money centralizes currency input sanitization, cent rounding and
// tolerance-based comparison. Every monetary comparison in the system
// (saldo vs. contagem física, total da venda vs. soma dos pagamentos) goes
// through Iguais so the 1-cent tolerance is applied uniformly.
package money

import (
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// ToleranciaCentavos is the default tolerance for monetary equality.
// Two amounts closer than 1 cent are considered equal.
const ToleranciaCentavos = 1

// Sanitize strips everything except digits, '.', ',' and '-' from a raw
// operator-typed value and normalizes a single decimal comma to a period.
// No numeric validation happens here.
func Sanitize(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if (r >= '0' && r <= '9') || r == '.' || r == ',' || r == '-' {
			b.WriteRune(r)
		}
	}
	s := b.String()
	if strings.Count(s, ",") == 1 {
		s = strings.Replace(s, ",", ".", 1)
	}
	return s
}

// RoundToCents parses a sanitized value and rounds it to the nearest cent,
// formatted with exactly two decimal digits. Returns "" when the input does
// not parse to a finite number. A small positive epsilon is applied before
// rounding to counteract binary floating-point representation error
// (e.g. 2.675*100 = 267.49999…).
func RoundToCents(raw string) string {
	v, err := strconv.ParseFloat(Sanitize(raw), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return ""
	}
	cents := math.Round(v*100 + math.Copysign(1e-6, v))
	return strconv.FormatFloat(cents/100, 'f', 2, 64)
}

// Parse converts a raw operator-typed value into a decimal rounded to cents.
func Parse(raw string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(Sanitize(raw))
	if err != nil {
		return decimal.Zero, err
	}
	return d.Round(2), nil
}

// Iguais reports whether two amounts are equal within toleranciaCentavos.
func Iguais(a, b decimal.Decimal, toleranciaCentavos int) bool {
	tol := decimal.New(int64(toleranciaCentavos), -2)
	return a.Sub(b).Abs().LessThan(tol)
}

// FloatsIguais is the float64 variant of Iguais, used at parsing edges
// before values are promoted to decimal.
func FloatsIguais(a, b float64, toleranciaCentavos int) bool {
	return math.Abs(a-b) < float64(toleranciaCentavos)/100
}

// NormalizarMetodo canonicalizes a free-text payment method name.
// Legacy data carries variants like "Dinheiro", " DINHEIRO " etc.
func NormalizarMetodo(metodo string) string {
	return strings.ToLower(strings.TrimSpace(metodo))
}

// EhDinheiro reports whether a payment method is physical cash.
// Only cash legs move money through the register drawer — card and PIX
// legs settle outside it.
func EhDinheiro(metodo string) bool {
	return NormalizarMetodo(metodo) == "dinheiro"
}
