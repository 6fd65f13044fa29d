// Package main provides the metagenome command-line tool.
package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Exit codes
const (
	ExitSuccess = 0
	ExitError   = 1
)

// Version information (set at build time)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const configName = ".metagenome"

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	opts := &rootOptions{buildLogger: newLogger}
	cmd := newRootCmd(opts)
	cmd.SetArgs(args)
	if err := execute(cmd, opts); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitError
	}
	return ExitSuccess
}

// execute runs cmd and flushes the logger whether or not it failed.
// Cobra skips post-run hooks after an error.
func execute(cmd *cobra.Command, opts *rootOptions) error {
	err := cmd.Execute()
	if opts.logger != nil {
		_ = opts.logger.Sync()
	}
	return err
}

// rootOptions holds the global flags shared by all commands.
type rootOptions struct {
	configFile  string
	verbose     bool
	buildLogger func(verbose bool) (*zap.Logger, error)
	logger      *zap.Logger
}

func newRootCmd(opts *rootOptions) *cobra.Command {
	if opts.buildLogger == nil {
		opts.buildLogger = newLogger
	}

	cmd := &cobra.Command{
		Use:   "metagenome",
		Short: "Synchronize genome coordinates on a shared meta-genome axis",
		Long: `metagenome loads the variant calls of several genomes against one
reference, aligns their coordinate streams on a meta-genome axis wide
enough for every insertion, and translates positions between the
reference, each genome and the meta-genome.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := initConfig(opts.configFile); err != nil {
				return err
			}
			logger, err := opts.buildLogger(opts.verbose)
			if err != nil {
				return fmt.Errorf("create logger: %w", err)
			}
			opts.logger = logger
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.configFile, "config", "", "config file (default ~/.metagenome.yaml)")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "verbose logging")
	cmd.PersistentFlags().String("db", "", "DuckDB database path (default ~/.metagenome/runs.duckdb)")
	_ = viper.BindPFlag("db.path", cmd.PersistentFlags().Lookup("db"))

	cmd.AddCommand(newSyncCmd(opts))
	cmd.AddCommand(newTranslateCmd(opts))
	cmd.AddCommand(newRecordsCmd(opts))
	cmd.AddCommand(newRunsCmd(opts))
	cmd.AddCommand(newConfigCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// initConfig loads the config file and METAGENOME_* environment overrides.
// A missing default config file is not an error.
func initConfig(path string) error {
	viper.SetDefault("reference.name", "reference")
	viper.SetDefault("sync.workers", 0)
	viper.SetDefault("db.path", defaultDBPath())

	viper.SetEnvPrefix("METAGENOME")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if path != "" {
		viper.SetConfigFile(path)
		if err := viper.ReadInConfig(); err != nil {
			return fmt.Errorf("read config %s: %w", path, err)
		}
		return nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return nil
	}
	viper.AddConfigPath(home)
	viper.SetConfigName(configName)
	viper.SetConfigType("yaml")
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("read config: %w", err)
		}
	}
	return nil
}

func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "metagenome.duckdb"
	}
	return filepath.Join(home, ".metagenome", "runs.duckdb")
}

// newLogger creates a console logger on stderr. Verbose mode enables
// debug output.
func newLogger(verbose bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	cfg.OutputPaths = []string{"stderr"}
	cfg.DisableStacktrace = true
	if verbose {
		cfg = zap.NewDevelopmentConfig()
		cfg.OutputPaths = []string{"stderr"}
	}
	return cfg.Build()
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "metagenome version %s (%s) built %s\n", version, commit, date)
		},
	}
}
