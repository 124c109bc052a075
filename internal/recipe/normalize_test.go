package recipe

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Red Onion", "red onion"},
		{"red onion", "red onion"},
		{"red  onion ", "red onion"},
		{"  EGG", "egg"},
		{"egg ", "egg"},
		{"\tOlive  Oil\n", "olive oil"},
		{"100% Juice", "100% juice"},
		{"sea_salt", "sea_salt"},
		{"", ""},
		{"   ", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Normalize(tt.in), "Normalize(%q)", tt.in)
	}
}

func TestNormalizeMergesVariants(t *testing.T) {
	variants := []string{"Egg", "egg ", " EGG", "eGg"}
	for _, v := range variants {
		assert.Equal(t, "egg", Normalize(v))
	}
}
