package tokenizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenizer_IsDataRow(t *testing.T) {
	tok := New(0)

	tests := []struct {
		name string
		line string
		want bool
	}{
		{"data row", "00000001 Widget 10 2,50 25,00", true},
		{"leading spaces", "   00000001 Widget 10 2,50 25,00", true},
		{"nine digits", "123456789 Widget 1 1,00 1,00", true},
		{"seven digits", "1234567 Widget 1 1,00 1,00", false},
		{"header", "Código Descrição Saldo Preço Médio Total", false},
		{"blank", "", false},
		{"total line", "TOTAL GERAL 1.234,56", false},
		{"letter inside code", "0000A001 Widget 1 1,00 1,00", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tok.IsDataRow(tt.line))
		})
	}
}

func TestTokenizer_Tokenize(t *testing.T) {
	tok := New(DefaultCodeDigits)

	t.Run("splits standard row", func(t *testing.T) {
		f, err := tok.Tokenize("00000001 Widget 10 2,50 25,00")
		require.NoError(t, err)
		assert.Equal(t, Fields{
			Code:        "00000001",
			Description: "Widget",
			Quantity:    "10",
			UnitPrice:   "2,50",
			Total:       "25,00",
		}, f)
	})

	t.Run("keeps inner description spacing", func(t *testing.T) {
		f, err := tok.Tokenize("00012345  PARAFUSO  SEXT 1/2\"   1.250   0,35   437,50")
		require.NoError(t, err)
		assert.Equal(t, "00012345", f.Code)
		assert.Equal(t, "PARAFUSO  SEXT 1/2\"", f.Description)
		assert.Equal(t, "1.250", f.Quantity)
		assert.Equal(t, "0,35", f.UnitPrice)
		assert.Equal(t, "437,50", f.Total)
	})

	t.Run("code is always the first 8 characters", func(t *testing.T) {
		for _, line := range []string{
			"12345678 99999999 descrição com números 1 2,00 2,00",
			"12345678X-RAY 1 2,00 2,00",
			"123456789 extra digit 1 2,00 2,00",
		} {
			f, err := tok.Tokenize(line)
			require.NoError(t, err, line)
			assert.Equal(t, "12345678", f.Code, line)
		}
	})

	t.Run("empty description", func(t *testing.T) {
		f, err := tok.Tokenize("00000001 10 2,50 25,00")
		require.NoError(t, err)
		assert.Equal(t, "", f.Description)
	})

	t.Run("too few fields", func(t *testing.T) {
		_, err := tok.Tokenize("00000001 2,50 25,00")
		assert.ErrorIs(t, err, ErrMalformedLine)

		_, err = tok.Tokenize("00000001")
		assert.ErrorIs(t, err, ErrMalformedLine)
	})

	t.Run("not a data row", func(t *testing.T) {
		_, err := tok.Tokenize("Página 1 de 3")
		assert.ErrorIs(t, err, ErrMalformedLine)
	})

	t.Run("non-breaking space separator", func(t *testing.T) {
		f, err := tok.Tokenize("00000001 Widget 10\u00a02,50\u00a025,00")
		require.NoError(t, err)
		assert.Equal(t, "2,50", f.UnitPrice)
		assert.Equal(t, "10", f.Quantity)
	})
}

func TestTokenizer_CustomWidth(t *testing.T) {
	tok := New(6)

	f, err := tok.Tokenize("123456 Bolt 1 1,00 1,00")
	require.NoError(t, err)
	assert.Equal(t, "123456", f.Code)
	assert.Equal(t, "Bolt", f.Description)
}
