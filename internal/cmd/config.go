package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/Iron-Ham/vidparse/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or modify vidparse configuration",
	Long: `View or modify vidparse configuration.

Without arguments, displays the current configuration.
Use subcommands to modify settings or create a config file.`,
	RunE: runConfigShow,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE:  runConfigShow,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long: `Set a configuration value in the user's config file.

Keys use dot notation, e.g.:
  vidparse config set resolver.base_url https://parse.example.com/api
  vidparse config set queue.progress_interval_ms 250

Valid keys:
  resolver.base_url            - Parse service API root
  resolver.token               - Bearer token for the parse service
  resolver.timeout_seconds     - Per-link request timeout
  resolver.cache               - Reuse results for repeated links (true/false)
  queue.progress_interval_ms   - How often in-flight progress moves
  queue.progress_ceiling       - Highest simulated progress (1-99)
  tui.url_width                - Width of the link column
  logging.enabled              - Enable logging (true/false)
  logging.level                - debug, info, warn or error
  logging.dir                  - Directory for vidparse.log`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a default config file",
	Long:  `Create a default config file at ~/.config/vidparse/config.yaml with all available options.`,
	RunE:  runConfigInit,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show the config file path",
	RunE:  runConfigPath,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configPathCmd)
}

// configKeys maps every settable key to its value kind.
var configKeys = map[string]string{
	"resolver.base_url":          "string",
	"resolver.token":             "string",
	"resolver.timeout_seconds":   "int",
	"resolver.cache":             "bool",
	"queue.progress_interval_ms": "int",
	"queue.progress_ceiling":     "int",
	"tui.url_width":              "int",
	"logging.enabled":            "bool",
	"logging.level":              "string",
	"logging.dir":                "string",
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if cfg.Resolver.Token != "" {
		cfg.Resolver.Token = "********"
	}

	// Show where config is being read from
	if viper.ConfigFileUsed() != "" {
		_, _ = fmt.Fprintf(out, "# Config file: %s\n", viper.ConfigFileUsed())
	} else {
		_, _ = fmt.Fprintln(out, "# Config file: (none - using defaults)")
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to encode configuration: %w", err)
	}
	_, err = out.Write(data)
	return err
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	key := args[0]
	value := args[1]

	keyType, ok := configKeys[key]
	if !ok {
		return fmt.Errorf("unknown configuration key: %s\nRun 'vidparse config set --help' to see valid keys", key)
	}

	// Validate the value based on type
	var typedValue any
	switch keyType {
	case "string":
		typedValue = value
	case "bool":
		if value != "true" && value != "false" {
			return fmt.Errorf("invalid value for %s: expected true or false", key)
		}
		typedValue = value == "true"
	case "int":
		intVal, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid value for %s: expected integer", key)
		}
		typedValue = intVal
	}

	previous := viper.Get(key)
	viper.Set(key, typedValue)
	if _, err := config.Load(); err != nil {
		viper.Set(key, previous)
		return fmt.Errorf("invalid value for %s: %w", key, err)
	}

	// Ensure config directory exists
	configFile := cfgFile
	if configFile == "" {
		configFile = config.ConfigFile()
	}
	if err := os.MkdirAll(filepath.Dir(configFile), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := viper.WriteConfigAs(configFile); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "Set %s = %v\n", key, typedValue)
	_, _ = fmt.Fprintf(out, "Config saved to %s\n", configFile)
	return nil
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	configFile := cfgFile
	if configFile == "" {
		configFile = config.ConfigFile()
	}

	// Check if config file already exists
	if _, err := os.Stat(configFile); err == nil {
		return fmt.Errorf("config file already exists at %s\nUse 'vidparse config set' to modify values", configFile)
	}

	if err := os.MkdirAll(filepath.Dir(configFile), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(configFile, []byte(defaultConfigContent()), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "Created config file at %s\n", configFile)
	_, _ = fmt.Fprintln(out, "Edit this file to point vidparse at your parse service.")
	return nil
}

// defaultConfigContent renders the commented default config file.
func defaultConfigContent() string {
	d := config.Default()
	var b strings.Builder

	b.WriteString("# vidparse configuration\n\n")

	b.WriteString("# Parse service\n")
	b.WriteString("resolver:\n")
	b.WriteString("  # API root; links are posted to {base_url}/parse\n")
	fmt.Fprintf(&b, "  base_url: %s\n", d.Resolver.BaseURL)
	b.WriteString("  # Bearer token, if the service requires one\n")
	b.WriteString("  token: \"\"\n")
	b.WriteString("  # Per-link request timeout in seconds\n")
	fmt.Fprintf(&b, "  timeout_seconds: %d\n", d.Resolver.TimeoutSeconds)
	b.WriteString("  # Reuse results for links resolved earlier in the session\n")
	fmt.Fprintf(&b, "  cache: %t\n\n", d.Resolver.Cache)

	b.WriteString("# Progress shown while a link is being resolved\n")
	b.WriteString("queue:\n")
	b.WriteString("  # How often progress moves, in milliseconds\n")
	fmt.Fprintf(&b, "  progress_interval_ms: %d\n", d.Queue.ProgressIntervalMs)
	b.WriteString("  # Progress never passes this value before the result arrives (1-99)\n")
	fmt.Fprintf(&b, "  progress_ceiling: %d\n\n", d.Queue.ProgressCeiling)

	b.WriteString("# Interactive queue\n")
	b.WriteString("tui:\n")
	b.WriteString("  # Width of the link column\n")
	fmt.Fprintf(&b, "  url_width: %d\n\n", d.TUI.URLWidth)

	b.WriteString("# Logging\n")
	b.WriteString("logging:\n")
	fmt.Fprintf(&b, "  enabled: %t\n", d.Logging.Enabled)
	b.WriteString("  # debug, info, warn or error\n")
	fmt.Fprintf(&b, "  level: %s\n", d.Logging.Level)
	b.WriteString("  # Directory for vidparse.log; empty logs to stderr for 'run'\n")
	b.WriteString("  dir: \"\"\n")

	return b.String()
}

func runConfigPath(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	if viper.ConfigFileUsed() != "" {
		_, _ = fmt.Fprintf(out, "Active config: %s\n", viper.ConfigFileUsed())
	} else {
		_, _ = fmt.Fprintf(out, "Default path: %s (not created)\n", config.ConfigFile())
	}

	// Also show config search paths
	_, _ = fmt.Fprintln(out, "\nSearch paths:")
	_, _ = fmt.Fprintf(out, "  1. %s\n", config.ConfigFile())
	_, _ = fmt.Fprintln(out, "  2. $HOME/.config/vidparse/config.yaml")
	_, _ = fmt.Fprintln(out, "  3. ./config.yaml (current directory)")
	_, _ = fmt.Fprintln(out, "\nEnvironment variables: VIDPARSE_* (e.g., VIDPARSE_RESOLVER_BASE_URL)")
	return nil
}
