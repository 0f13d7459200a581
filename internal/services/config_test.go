package services

import (
	"errors"
	"strings"
	"testing"
)

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("BOLETINES_BUCKET", "sat-archive")
	t.Setenv("EMAIL_SENDER", "monitor@example.com")
	t.Setenv("EMAIL_RECIPIENT", "inbox@example.com")
	t.Setenv("EMAIL_PASSWORD", "secret")

	config, err := ConfigFromEnv()
	if err != nil {
		t.Fatalf("ConfigFromEnv() error = %v", err)
	}
	if config.Bucket != "sat-archive" {
		t.Fatalf("config.Bucket = %q", config.Bucket)
	}
	if config.SourceURL == "" || config.MaxPDFsPerRun != 10 || len(config.Keywords) == 0 {
		t.Fatalf("fixed parameters not populated: %+v", config)
	}
}

func TestConfigFromEnvReportsAllMissing(t *testing.T) {
	t.Setenv("BOLETINES_BUCKET", "")
	t.Setenv("EMAIL_SENDER", "")
	t.Setenv("EMAIL_RECIPIENT", "inbox@example.com")
	t.Setenv("EMAIL_PASSWORD", "")

	_, err := ConfigFromEnv()
	var cfgErr *ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("error %v is not a *ConfigError", err)
	}
	for _, name := range []string{"BOLETINES_BUCKET", "EMAIL_PASSWORD", "EMAIL_SENDER"} {
		if !strings.Contains(err.Error(), name) {
			t.Fatalf("error %q does not name missing variable %s", err, name)
		}
	}
	if strings.Contains(err.Error(), "EMAIL_RECIPIENT") {
		t.Fatalf("error %q names a variable that was set", err)
	}
}

func TestDisplayName(t *testing.T) {
	tests := []struct {
		link string
		want string
	}{
		{"http://sat.example/boletin/x.pdf", "x.pdf"},
		{"http://sat.example/boletin/2026/informe.pdf", "informe.pdf"},
		{"http://sat.example/", fallbackName},
		{"http://sat.example", fallbackName},
	}
	for _, tt := range tests {
		if got := displayName(tt.link); got != tt.want {
			t.Fatalf("displayName(%q) = %q, want %q", tt.link, got, tt.want)
		}
	}
}
