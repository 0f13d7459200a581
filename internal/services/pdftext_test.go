package services

import (
	"os"
	"strings"
	"testing"
)

func TestExtractTextFromFixture(t *testing.T) {
	data, err := os.ReadFile("testdata/boletin.pdf")
	if err != nil {
		t.Fatalf("failed to read fixture: %v", err)
	}

	text := ExtractText(data)
	if text == "" {
		t.Fatal("ExtractText returned empty text for a valid document")
	}
	if !strings.Contains(strings.ToLower(text), "cfdi 4.0") {
		t.Fatalf("extracted text %q does not contain the fixture phrase", text)
	}
}

func TestExtractTextNeverFails(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{name: "not a pdf", data: []byte("definitely not a pdf")},
		{name: "truncated header", data: []byte("%PDF-1.4\n")},
		{name: "empty input", data: nil},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractText(tt.data); got != "" {
				t.Fatalf("ExtractText() = %q, want empty string for unreadable input", got)
			}
		})
	}
}
