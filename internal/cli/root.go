// Package cli implements the tracetab command-line interface.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/yairfalse/tracetab/pkg/catalog"
	"github.com/yairfalse/tracetab/pkg/tracefs"
	"github.com/yairfalse/tracetab/pkg/translation"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "tracetab",
	Short: "Translation tables for kernel trace events",
	Long: `tracetab reconciles a compiled-in event schema against the trace
event formats the running kernel reports under tracefs, and shows the
resulting translation table: which raw bytes map onto which output
fields, and how they convert.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.tracetab.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().String("tracefs-path", "", "tracefs mount root (default: autodetect)")
	rootCmd.PersistentFlags().String("catalog", "", "YAML catalog file (default: compiled-in catalog)")

	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	viper.BindPFlag("tracefs_path", rootCmd.PersistentFlags().Lookup("tracefs-path"))
	viper.BindPFlag("catalog", rootCmd.PersistentFlags().Lookup("catalog"))

	rootCmd.AddCommand(dumpCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(versionCmd)
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error getting home directory: %v\n", err)
			os.Exit(1)
		}

		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".tracetab")
	}

	viper.SetEnvPrefix("TRACETAB")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// newLogger builds the CLI logger; verbose switches to debug-level
// development output so silent event/field drops become visible.
func newLogger() (*zap.Logger, error) {
	if viper.GetBool("verbose") {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// newSource opens the tracefs mount from config or autodetection.
func newSource(logger *zap.Logger) (*tracefs.Tracefs, error) {
	if root := viper.GetString("tracefs_path"); root != "" {
		return tracefs.NewAt(root, logger), nil
	}
	return tracefs.New(logger)
}

// loadCatalog returns the configured YAML catalog, or the compiled-in
// default set.
func loadCatalog() ([]translation.Event, error) {
	if path := viper.GetString("catalog"); path != "" {
		return catalog.Load(path)
	}
	return catalog.Default(), nil
}

// buildTable wires source, catalog, and builder for the subcommands.
func buildTable(cmd *cobra.Command) (*translation.Table, []translation.Event, *tracefs.Tracefs, error) {
	logger, err := newLogger()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("creating logger: %w", err)
	}
	defer logger.Sync()

	source, err := newSource(logger)
	if err != nil {
		return nil, nil, nil, err
	}

	events, err := loadCatalog()
	if err != nil {
		return nil, nil, nil, err
	}

	builder, err := translation.NewBuilder(source, logger)
	if err != nil {
		return nil, nil, nil, err
	}

	table, err := builder.Build(cmd.Context(), events)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("building translation table: %w", err)
	}
	return table, events, source, nil
}
