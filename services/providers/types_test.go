package providers

import (
	"errors"
	"testing"
)

func TestResult_Found(t *testing.T) {
	tests := []struct {
		name     string
		result   Result
		expected bool
	}{
		{"lyrics", Result{Lyrics: "la la la", Provider: "x"}, true},
		{"miss", Miss("x"), false},
		{"exhausted", Exhausted(), false},
		{"empty lyrics", Result{Provider: "x"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.result.Found(); got != tt.expected {
				t.Errorf("Expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestMissAndExhausted(t *testing.T) {
	m := Miss("genius")
	if m.Lyrics != NotFound || m.Provider != "genius" || m.Synced {
		t.Errorf("Unexpected miss result: %+v", m)
	}

	e := Exhausted()
	if e.Lyrics != NotFound || e.Provider != NoResultProvider {
		t.Errorf("Unexpected exhausted result: %+v", e)
	}
}

func TestProviderError_Error(t *testing.T) {
	tests := []struct {
		name     string
		provider string
		message  string
		err      error
		expected string
	}{
		{
			name:     "With wrapped error",
			provider: "lrclib",
			message:  "request failed",
			err:      errors.New("connection refused"),
			expected: "lrclib: request failed: connection refused",
		},
		{
			name:     "Without wrapped error",
			provider: "genius",
			message:  "no hits",
			err:      nil,
			expected: "genius: no hits",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewProviderError(tt.provider, tt.message, tt.err)
			if err.Error() != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, err.Error())
			}
		})
	}
}

func TestProviderError_Unwrap(t *testing.T) {
	inner := errors.New("inner")
	err := NewProviderError("x", "outer", inner)

	if !errors.Is(err, inner) {
		t.Error("errors.Is should find the wrapped error")
	}

	var pe *ProviderError
	if !errors.As(error(err), &pe) || pe.Provider != "x" {
		t.Error("errors.As should find the ProviderError")
	}
}
