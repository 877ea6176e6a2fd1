package cmd

import (
	"strings"

	"github.com/Iron-Ham/vidparse/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// cfgFile holds the --config flag. It is read directly rather than through
// viper so a viper.Reset does not drop it.
var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "vidparse",
	Short: "Batch resolver for short-video share links",
	Long: `vidparse queues short-video share links (Douyin, Kuaishou, Xiaohongshu)
and resolves them one at a time against a parse service, tracking the status,
progress and result of every link.`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default is $HOME/.config/vidparse/config.yaml)")
	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
}

func initConfig() {
	// Set defaults first so they're available even without a config file
	config.SetDefaults()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(config.ConfigDir())
		viper.AddConfigPath("$HOME/.config/vidparse")
		viper.AddConfigPath(".")
	}

	viper.AutomaticEnv()
	viper.SetEnvPrefix("VIDPARSE")
	// Replace dots with underscores for nested keys in env vars
	// e.g., VIDPARSE_RESOLVER_BASE_URL for resolver.base_url
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read config file if it exists (ignore error if not found)
	_ = viper.ReadInConfig()
}
