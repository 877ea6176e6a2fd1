package config

import (
	"fmt"
	"net/url"
	"slices"
	"strings"
)

// ValidationError represents a single validation failure
type ValidationError struct {
	Field   string // The config field path (e.g., "resolver.timeout_seconds")
	Value   any    // The invalid value
	Message string // Human-readable error description
}

// Error implements the error interface for ValidationError
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface for ValidationErrors
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d validation errors:\n", len(e)))
	for i, err := range e {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return sb.String()
}

// ValidLogLevels returns the list of valid log levels
func ValidLogLevels() []string {
	return []string{"debug", "info", "warn", "error"}
}

// Bounds shared with the components that consume these settings.
const (
	MinProgressIntervalMs = 10
	MinURLWidth           = 20
	MaxURLWidth           = 200
)

// Validate checks the Config for invalid values and returns all validation errors found
func (c *Config) Validate() []ValidationError {
	var errors []ValidationError

	// Validate Resolver config
	errors = append(errors, c.validateResolver()...)

	// Validate Queue config
	errors = append(errors, c.validateQueue()...)

	// Validate TUI config
	errors = append(errors, c.validateTUI()...)

	// Validate Logging config
	errors = append(errors, c.validateLogging()...)

	return errors
}

// validateResolver validates the ResolverConfig
func (c *Config) validateResolver() []ValidationError {
	var errors []ValidationError

	u, err := url.Parse(c.Resolver.BaseURL)
	switch {
	case c.Resolver.BaseURL == "":
		errors = append(errors, ValidationError{
			Field:   "resolver.base_url",
			Value:   c.Resolver.BaseURL,
			Message: "must not be empty",
		})
	case err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "":
		errors = append(errors, ValidationError{
			Field:   "resolver.base_url",
			Value:   c.Resolver.BaseURL,
			Message: "must be an absolute http or https URL",
		})
	}

	if c.Resolver.TimeoutSeconds <= 0 {
		errors = append(errors, ValidationError{
			Field:   "resolver.timeout_seconds",
			Value:   c.Resolver.TimeoutSeconds,
			Message: "must be positive",
		})
	}

	return errors
}

// validateQueue validates the QueueConfig
func (c *Config) validateQueue() []ValidationError {
	var errors []ValidationError

	if c.Queue.ProgressIntervalMs < MinProgressIntervalMs {
		errors = append(errors, ValidationError{
			Field:   "queue.progress_interval_ms",
			Value:   c.Queue.ProgressIntervalMs,
			Message: fmt.Sprintf("must be at least %dms", MinProgressIntervalMs),
		})
	}

	// Simulated progress must stay below 100 so it never looks finished
	if c.Queue.ProgressCeiling < 1 || c.Queue.ProgressCeiling > 99 {
		errors = append(errors, ValidationError{
			Field:   "queue.progress_ceiling",
			Value:   c.Queue.ProgressCeiling,
			Message: "must be between 1 and 99",
		})
	}

	return errors
}

// validateTUI validates the TUIConfig
func (c *Config) validateTUI() []ValidationError {
	var errors []ValidationError

	if c.TUI.URLWidth < MinURLWidth {
		errors = append(errors, ValidationError{
			Field:   "tui.url_width",
			Value:   c.TUI.URLWidth,
			Message: fmt.Sprintf("must be at least %d columns", MinURLWidth),
		})
	}
	if c.TUI.URLWidth > MaxURLWidth {
		errors = append(errors, ValidationError{
			Field:   "tui.url_width",
			Value:   c.TUI.URLWidth,
			Message: fmt.Sprintf("exceeds maximum of %d columns", MaxURLWidth),
		})
	}

	return errors
}

// validateLogging validates the LoggingConfig
func (c *Config) validateLogging() []ValidationError {
	var errors []ValidationError

	if c.Logging.Level != "" && !slices.Contains(ValidLogLevels(), c.Logging.Level) {
		errors = append(errors, ValidationError{
			Field:   "logging.level",
			Value:   c.Logging.Level,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidLogLevels(), ", ")),
		})
	}

	return errors
}
