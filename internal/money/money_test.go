package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitize(t *testing.T) {
	cases := map[string]string{
		"R$ 1.234,56": "1.234.56", // stray thousands dot survives; comma becomes period
		"150,00":      "150.00",
		"  90.5 ":     "90.5",
		"-12,30":      "-12.30",
		"abc":         "",
	}
	for in, want := range cases {
		assert.Equal(t, want, Sanitize(in), "input %q", in)
	}
}

func TestRoundToCents(t *testing.T) {
	assert.Equal(t, "150.00", RoundToCents("150"))
	assert.Equal(t, "90.50", RoundToCents("90,5"))
	assert.Equal(t, "2.68", RoundToCents("2.675")) // epsilon bias beats float drift
	assert.Equal(t, "-0.50", RoundToCents("-0,499999"))
	assert.Equal(t, "", RoundToCents("abc"))
	assert.Equal(t, "", RoundToCents(""))
}

func TestRoundToCentsIdempotente(t *testing.T) {
	for _, s := range []string{"0", "0.005", "123,456", "99.999", "-1,005", "250.004"} {
		once := RoundToCents(s)
		require.NotEmpty(t, once)
		assert.Equal(t, once, RoundToCents(once), "input %q", s)
	}
}

func TestIguaisTolerancia(t *testing.T) {
	a := decimal.NewFromFloat(250.00)
	b := decimal.NewFromFloat(250.004)
	assert.True(t, Iguais(a, b, ToleranciaCentavos))
	assert.True(t, Iguais(b, a, ToleranciaCentavos)) // symmetric

	c := decimal.NewFromFloat(250.01)
	assert.False(t, Iguais(a, c, ToleranciaCentavos))
	assert.False(t, Iguais(c, a, ToleranciaCentavos))
}

func TestFloatsIguais(t *testing.T) {
	assert.True(t, FloatsIguais(100.0, 100.009, 1))
	assert.False(t, FloatsIguais(100.0, 100.01, 1))
}

func TestEhDinheiro(t *testing.T) {
	assert.True(t, EhDinheiro("dinheiro"))
	assert.True(t, EhDinheiro("  Dinheiro "))
	assert.True(t, EhDinheiro("DINHEIRO"))
	assert.False(t, EhDinheiro("pix"))
	assert.False(t, EhDinheiro("cartao_credito"))
}
