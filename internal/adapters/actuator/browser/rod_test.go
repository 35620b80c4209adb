package browser

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLabelPatternIsJavaScriptRegexLiteral(t *testing.T) {
	t.Parallel()

	tests := []struct {
		label string
		want  string
	}{
		{label: "Añadir al carrito", want: "/Añadir al carrito/i"},
		{label: "2x (oferta)", want: `/2x \(oferta\)/i`},
		{label: "Total $9.99", want: `/Total \$9\.99/i`},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, labelPattern(tt.label))
		assert.NotContains(t, labelPattern(tt.label), "(?i)")
	}
}
