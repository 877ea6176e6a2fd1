package config

import (
	"strings"
	"testing"
)

func TestValidationError_Error(t *testing.T) {
	err := ValidationError{
		Field:   "test.field",
		Value:   123,
		Message: "must be greater than zero",
	}

	expected := "test.field: must be greater than zero (got: 123)"
	if err.Error() != expected {
		t.Errorf("Error() = %q, want %q", err.Error(), expected)
	}
}

func TestValidationErrors_Error(t *testing.T) {
	t.Run("empty errors", func(t *testing.T) {
		var errs ValidationErrors
		if errs.Error() != "" {
			t.Errorf("Error() for empty = %q, want empty string", errs.Error())
		}
	})

	t.Run("single error", func(t *testing.T) {
		errs := ValidationErrors{
			{Field: "test.field", Value: 123, Message: "is invalid"},
		}
		expected := "test.field: is invalid (got: 123)"
		if errs.Error() != expected {
			t.Errorf("Error() = %q, want %q", errs.Error(), expected)
		}
	})

	t.Run("multiple errors", func(t *testing.T) {
		errs := ValidationErrors{
			{Field: "field1", Value: "bad", Message: "is invalid"},
			{Field: "field2", Value: -1, Message: "must be positive"},
		}
		result := errs.Error()
		if !strings.Contains(result, "2 validation errors") {
			t.Errorf("Error() should mention 2 errors: %s", result)
		}
		if !strings.Contains(result, "field1") || !strings.Contains(result, "field2") {
			t.Errorf("Error() should mention both fields: %s", result)
		}
	})
}

func TestConfig_Validate_DefaultConfig(t *testing.T) {
	cfg := Default()
	errs := cfg.Validate()
	if len(errs) != 0 {
		t.Errorf("Default config should be valid, got errors: %v", errs)
	}
}

// hasFieldError reports whether errs contains an error for field.
func hasFieldError(errs []ValidationError, field string) bool {
	for _, err := range errs {
		if err.Field == field {
			return true
		}
	}
	return false
}

func TestConfig_Validate_Resolver(t *testing.T) {
	tests := []struct {
		name      string
		modify    func(*Config)
		wantField string
	}{
		{"https base url", func(c *Config) { c.Resolver.BaseURL = "https://parse.example.com/api" }, ""},
		{"empty base url", func(c *Config) { c.Resolver.BaseURL = "" }, "resolver.base_url"},
		{"ftp base url", func(c *Config) { c.Resolver.BaseURL = "ftp://example.com" }, "resolver.base_url"},
		{"relative base url", func(c *Config) { c.Resolver.BaseURL = "/api" }, "resolver.base_url"},
		{"missing host", func(c *Config) { c.Resolver.BaseURL = "http://" }, "resolver.base_url"},
		{"zero timeout", func(c *Config) { c.Resolver.TimeoutSeconds = 0 }, "resolver.timeout_seconds"},
		{"negative timeout", func(c *Config) { c.Resolver.TimeoutSeconds = -5 }, "resolver.timeout_seconds"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)
			errs := cfg.Validate()

			if tt.wantField == "" {
				if len(errs) != 0 {
					t.Errorf("expected no errors, got %v", errs)
				}
				return
			}
			if !hasFieldError(errs, tt.wantField) {
				t.Errorf("expected error for %s, got %v", tt.wantField, errs)
			}
		})
	}
}

func TestConfig_Validate_Queue(t *testing.T) {
	tests := []struct {
		name      string
		interval  int
		ceiling   int
		wantField string
	}{
		{"defaults", 500, 90, ""},
		{"minimum interval", 10, 90, ""},
		{"interval too small", 9, 90, "queue.progress_interval_ms"},
		{"ceiling lower bound", 500, 1, ""},
		{"ceiling upper bound", 500, 99, ""},
		{"ceiling zero", 500, 0, "queue.progress_ceiling"},
		{"ceiling 100", 500, 100, "queue.progress_ceiling"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.Queue.ProgressIntervalMs = tt.interval
			cfg.Queue.ProgressCeiling = tt.ceiling
			errs := cfg.Validate()

			if tt.wantField == "" {
				if len(errs) != 0 {
					t.Errorf("expected no errors, got %v", errs)
				}
				return
			}
			if !hasFieldError(errs, tt.wantField) {
				t.Errorf("expected error for %s, got %v", tt.wantField, errs)
			}
		})
	}
}

func TestConfig_Validate_TUI(t *testing.T) {
	tests := []struct {
		width   int
		wantErr bool
	}{
		{MinURLWidth, false},
		{MaxURLWidth, false},
		{60, false},
		{MinURLWidth - 1, true},
		{MaxURLWidth + 1, true},
		{0, true},
	}

	for _, tt := range tests {
		cfg := Default()
		cfg.TUI.URLWidth = tt.width
		got := hasFieldError(cfg.Validate(), "tui.url_width")
		if got != tt.wantErr {
			t.Errorf("url_width %d: error = %v, want %v", tt.width, got, tt.wantErr)
		}
	}
}

func TestConfig_Validate_Logging(t *testing.T) {
	t.Run("valid log levels", func(t *testing.T) {
		for _, level := range []string{"debug", "info", "warn", "error", ""} {
			cfg := Default()
			cfg.Logging.Level = level
			if hasFieldError(cfg.Validate(), "logging.level") {
				t.Errorf("level %q should be valid", level)
			}
		}
	})

	t.Run("invalid log level", func(t *testing.T) {
		cfg := Default()
		cfg.Logging.Level = "invalid"
		if !hasFieldError(cfg.Validate(), "logging.level") {
			t.Error("expected error for invalid log level")
		}
	})

	t.Run("case sensitive log level", func(t *testing.T) {
		cfg := Default()
		cfg.Logging.Level = "INFO"
		if !hasFieldError(cfg.Validate(), "logging.level") {
			t.Error("expected error for uppercase log level")
		}
	})
}

func TestConfig_Validate_MultipleErrors(t *testing.T) {
	cfg := Default()
	cfg.Resolver.TimeoutSeconds = 0
	cfg.Queue.ProgressCeiling = 100
	cfg.Logging.Level = "loud"

	errs := cfg.Validate()
	if len(errs) != 3 {
		t.Errorf("expected 3 errors, got %d: %v", len(errs), errs)
	}
}

func TestValidLogLevels(t *testing.T) {
	levels := ValidLogLevels()
	expected := []string{"debug", "info", "warn", "error"}
	if len(levels) != len(expected) {
		t.Fatalf("ValidLogLevels() length = %d, want %d", len(levels), len(expected))
	}
	for i, level := range expected {
		if levels[i] != level {
			t.Errorf("ValidLogLevels()[%d] = %q, want %q", i, levels[i], level)
		}
	}
}
