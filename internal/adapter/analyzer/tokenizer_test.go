package analyzer

import (
	"reflect"
	"testing"
)

func TestTokenize(t *testing.T) {
	tok := NewTokenizer()

	tests := []struct {
		name string
		in   string
		want []string
	}{
		{
			name: "basic sentence",
			in:   "Photosynthesis converts light into chemical energy",
			want: []string{"photosynthesis", "converts", "light", "into", "chemical", "energy"},
		},
		{
			name: "stopwords removed",
			in:   "the cell is a unit of life",
			want: []string{"cell", "unit", "life"},
		},
		{
			name: "punctuation split",
			in:   "mitosis, meiosis; and cytokinesis.",
			want: []string{"mitosis", "meiosis", "cytokinesis"},
		},
		{
			name: "short tokens dropped",
			in:   "x y chlorophyll",
			want: []string{"chlorophyll"},
		},
		{
			name: "empty input",
			in:   "",
			want: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tok.Tokenize(tt.in)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Tokenize(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}
