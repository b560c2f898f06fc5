package textnorm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFold(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"BRGY. SANTO NIÑO", "brgy. santo nino"},
		{"Las Piñas", "las pinas"},
		{"Speeding", "speeding"},
		{"", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Fold(tt.in), tt.in)
	}
}

func TestCollapse(t *testing.T) {
	assert.Equal(t, "a b c", Collapse("  a \t b\n\nc "))
	assert.Equal(t, "", Collapse("   "))
}
