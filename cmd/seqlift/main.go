// Package main provides the seqlift command-line tool.
package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Exit codes
const (
	ExitSuccess = 0
	ExitError   = 1
	ExitUsage   = 2
)

// Version information (set at build time)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// logger is replaced with a configured logger before any command runs.
var logger = zap.NewNop()

// usageError marks errors caused by invalid command-line usage.
type usageError struct {
	err error
}

func (e usageError) Error() string { return e.err.Error() }
func (e usageError) Unwrap() error { return e.err }

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	root := newRootCmd()
	root.SetArgs(args)

	err := root.Execute()
	logger.Sync()
	if err == nil {
		return ExitSuccess
	}

	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	var uerr usageError
	if errors.As(err, &uerr) {
		return ExitUsage
	}
	return ExitError
}

func newRootCmd() *cobra.Command {
	var (
		cfgFile string
		verbose bool
	)

	cmd := &cobra.Command{
		Use:   "seqlift",
		Short: "Pair sequences and lift coordinates between them",
		Long: `seqlift pairs query sequences with their best-matching targets (trying
both strands) and lifts annotation coordinates from one sequence onto another
through a global alignment.`,
		Example: `  # Pair two assemblies and write coords.json plus alignment reports
  seqlift match -o out/ assembly_a.fasta assembly_b.fasta

  # Lift a feature table from a reference contig onto an alternative contig
  seqlift transfer --ref ref.fasta --alt alt.fasta -o lifted.tsv features.tsv`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       fmt.Sprintf("%s (%s) built %s", version, commit, date),
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := initConfig(cfgFile); err != nil {
				return err
			}
			level := viper.GetString("log.level")
			if verbose {
				level = "debug"
			}
			l, err := newLogger(level)
			if err != nil {
				return usageError{err}
			}
			logger = l
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (default: ~/.seqlift.yaml)")
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	cmd.SetFlagErrorFunc(func(c *cobra.Command, err error) error {
		return usageError{err}
	})

	cmd.AddCommand(newMatchCmd())
	cmd.AddCommand(newTransferCmd())
	cmd.AddCommand(newRunsCmd())
	cmd.AddCommand(newConfigCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "seqlift version %s (%s) built %s\n", version, commit, date)
		},
	}
}

// initConfig loads .env, the config file and SEQLIFT_ environment variables.
func initConfig(cfgFile string) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Warning: could not load .env file: %v\n", err)
	}

	setDefaults(viper.GetViper())
	viper.SetEnvPrefix("SEQLIFT")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil
		}
		viper.SetConfigFile(filepath.Join(home, ".seqlift.yaml"))
	}

	if err := viper.ReadInConfig(); err != nil {
		if cfgFile != "" {
			return usageError{fmt.Errorf("reading config %s: %w", cfgFile, err)}
		}
		// A missing default config file is not an error.
		if !errors.Is(err, os.ErrNotExist) {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return fmt.Errorf("reading config: %w", err)
			}
		}
	}
	return nil
}
