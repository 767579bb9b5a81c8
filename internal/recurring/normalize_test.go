package recurring

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name        string
		description string
		want        string
	}{
		{
			name:        "lowercases input",
			description: "NETFLIX.COM",
			want:        "netflixcom",
		},
		{
			name:        "replaces bank feed separators with spaces",
			description: "AMZN*Prime Video",
			want:        "amzn prime video",
		},
		{
			name:        "strips reference numbers of five or more digits",
			description: "DUKE ENERGY 48213975",
			want:        "duke energy",
		},
		{
			name:        "keeps short digit runs",
			description: "7 ELEVEN 2041",
			want:        "7 eleven 2041",
		},
		{
			name:        "removes punctuation",
			description: "SPOTIFY, INC.",
			want:        "spotify inc",
		},
		{
			name:        "collapses whitespace",
			description: "  CITY   OF    AUSTIN  ",
			want:        "city of austin",
		},
		{
			name:        "hash and at separators with trailing reference",
			description: "COMCAST#CABLE @ 991234567",
			want:        "comcast cable",
		},
		{
			name:        "empty input",
			description: "",
			want:        "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.description))
		})
	}
}

func TestPrefixKey(t *testing.T) {
	tests := []struct {
		name       string
		normalized string
		want       string
	}{
		{
			name:       "truncates to eight characters",
			normalized: "duke energy",
			want:       "duke ene",
		},
		{
			name:       "suffix variation yields the same prefix",
			normalized: "duke energy pmt",
			want:       "duke ene",
		},
		{
			name:       "short keys pass through",
			normalized: "hulu",
			want:       "hulu",
		},
		{
			name:       "trailing space inside the prefix is trimmed",
			normalized: "city of austin",
			want:       "city of",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PrefixKey(tt.normalized))
		})
	}
}
