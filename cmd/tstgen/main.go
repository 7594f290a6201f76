package main

import (
	"fmt"
	"os"

	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// config holds defaults taken from TSTGEN_* environment variables; flags override them.
type config struct {
	DataDir   string `envconfig:"DATA_DIR" default:"."`
	Out       string `envconfig:"OUT" default:"out.tst"`
	Normalize bool   `envconfig:"NORMALIZE"`
	Verbose   bool   `envconfig:"VERBOSE"`
}

func newLogger(verbose bool) (*zap.SugaredLogger, error) {
	var (
		logger *zap.Logger
		err    error
	)
	if verbose {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		return nil, err
	}
	return logger.Sugar(), nil
}

func newRootCmd(cfg *config) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "tstgen",
		Short: "tstgen writes labeled datasets as TS_tensors files",
		Long: `tstgen converts a local idx dataset (MNIST layout) into a TS_tensors
			container holding train_inputs, train_labels, test_inputs and test_labels,
			and inspects existing containers.`,
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().BoolVarP(&cfg.Verbose, "verbose", "v", cfg.Verbose, "Enable debug logging")

	rootCmd.AddCommand(newBuildCmd(cfg), newInspectCmd(cfg))
	return rootCmd
}

func loadConfig() (config, error) {
	var cfg config
	if err := envconfig.Process("tstgen", &cfg); err != nil {
		return cfg, errors.Wrap(err, "reading TSTGEN_* environment")
	}
	return cfg, nil
}

func main() {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		envconfig.Usage("tstgen", &cfg)
		os.Exit(2)
	}
	if err := newRootCmd(&cfg).Execute(); err != nil {
		os.Exit(1)
	}
}
