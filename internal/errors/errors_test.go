package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestGetSuggestion(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"not configured", ErrNotConfigured, "backend.url"},
		{"wrapped device", fmt.Errorf("send: %w", ErrDeviceNotFound), "lookout devices"},
		{"unauthorized text", errors.New("backend error 401: Invalid API key"), "backend.key"},
		{"rate limited", ErrRateLimited, "Too many requests"},
		{"network", errors.New("dial tcp: connection refused"), "internet connection"},
		{"server", errors.New("backend error 500"), "backend is having issues"},
		{"unknown", errors.New("something odd"), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := GetSuggestion(tt.err)
			if tt.want == "" {
				if got != "" {
					t.Errorf("GetSuggestion() = %q, want empty", got)
				}
				return
			}
			if !strings.Contains(got, tt.want) {
				t.Errorf("GetSuggestion() = %q, want it to contain %q", got, tt.want)
			}
		})
	}
}

func TestWithSuggestion(t *testing.T) {
	err := WithSuggestion(ErrTimeout, "retry later")

	if !errors.Is(err, ErrTimeout) {
		t.Error("errors.Is(err, ErrTimeout) = false, want true")
	}
	if got := GetSuggestion(err); got != "retry later" {
		t.Errorf("GetSuggestion() = %q, want %q", got, "retry later")
	}
}

func TestFormat(t *testing.T) {
	if Format(nil) != "" {
		t.Error("Format(nil) should be empty")
	}

	got := Format(ErrNoDeviceSelected)
	want := "Error: no device selected\n\nSuggestion: Select a device first"
	if got != want {
		t.Errorf("Format() = %q, want %q", got, want)
	}

	if got := Format(errors.New("odd")); got != "Error: odd" {
		t.Errorf("Format() = %q, want %q", got, "Error: odd")
	}
}
