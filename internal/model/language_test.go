package model

import (
	"reflect"
	"testing"
)

func TestLanguageFallbackCodes(t *testing.T) {
	tests := []struct {
		name      string
		code      string
		fallbacks string
		want      []string
	}{
		{
			name:      "empty configuration",
			code:      "en",
			fallbacks: "",
			want:      nil,
		},
		{
			name:      "single fallback",
			code:      "de",
			fallbacks: "en",
			want:      []string{"en"},
		},
		{
			name:      "chain with spaces",
			code:      "fr",
			fallbacks: "en, de ,es",
			want:      []string{"en", "de", "es"},
		},
		{
			name:      "own code filtered out",
			code:      "ru",
			fallbacks: "ru,en",
			want:      []string{"en"},
		},
		{
			name:      "empty segments skipped",
			code:      "nl",
			fallbacks: "en,,de,",
			want:      []string{"en", "de"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := &Language{Code: tt.code, Fallbacks: tt.fallbacks}
			if got := l.FallbackCodes(); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("FallbackCodes() = %v, want %v", got, tt.want)
			}
		})
	}
}
