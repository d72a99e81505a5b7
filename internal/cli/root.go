package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/ppiankov/factgate/internal/model"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile       string
	overridesFile string
	asOfFlag      string
	verbose       bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "factgate",
	Short: "Factgate - publish-readiness gate for AI work products",
	Long: `Factgate validates AI-generated structured documents before they
may be published.

Every factual claim must be traceable to a source and a verification date,
prose must obey the configured language constraints, and every number in
the text must be grounded in the work product's data.

Factgate is a gate, not an editor: it reports every violation it finds and
never modifies a document. Humans resolve findings, or suppress specific
errors with justified, time-bounded overrides.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Display the version number and build information for Factgate.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("factgate v0.2.1")
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.factgate/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&overridesFile, "overrides", "", "override log (JSONL) to apply")
	rootCmd.PersistentFlags().StringVar(&asOfFlag, "as-of", "", "validation timestamp for override expiry (YYYY-MM-DD or RFC3339, default: now)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	// Bind flags to viper
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	// Add subcommands
	rootCmd.AddCommand(versionCmd)
}

// initConfig reads in config file and ENV variables
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}

		// Search for config in home directory
		viper.AddConfigPath(home + "/.factgate")
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	// Read in environment variables that match FACTGATE_*
	viper.SetEnvPrefix("FACTGATE")
	viper.AutomaticEnv()

	// If a config file is found, read it in
	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// loadRuleConfig builds the rule set for this invocation: config file (flag
// or discovered), defaults otherwise, plus any override log.
func loadRuleConfig() (*model.RuleConfig, error) {
	var cfg *model.RuleConfig
	var err error

	switch {
	case cfgFile != "":
		cfg, err = model.LoadConfig(cfgFile)
	case viper.ConfigFileUsed() != "":
		cfg, err = model.LoadConfig(viper.ConfigFileUsed())
	default:
		cfg = model.DefaultConfig()
		err = cfg.Compile()
	}
	if err != nil {
		return nil, err
	}

	if overridesFile != "" {
		records, err := model.LoadOverrides(overridesFile)
		if err != nil {
			return nil, err
		}
		cfg.Overrides = append(cfg.Overrides, records...)
	}

	return cfg, nil
}

// parseAsOf resolves the --as-of flag; zero means "now" downstream.
func parseAsOf() (time.Time, error) {
	if asOfFlag == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, asOfFlag); err == nil {
		return t.UTC(), nil
	}
	t, err := time.ParseInLocation("2006-01-02", asOfFlag, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --as-of %q: expected YYYY-MM-DD or RFC3339", asOfFlag)
	}
	return t, nil
}
