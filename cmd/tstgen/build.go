package main

import (
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/sw965/tst/dataset"
	"github.com/sw965/tst/tensorset"
)

func newBuildCmd(cfg *config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Encode an idx dataset directory into a TS_tensors file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(cfg)
		},
	}
	cmd.Flags().StringVarP(&cfg.DataDir, "data_dir", "d", cfg.DataDir, "Directory holding the four idx files")
	cmd.Flags().StringVarP(&cfg.Out, "out", "o", cfg.Out, "Path of the TS_tensors file to write")
	cmd.Flags().BoolVarP(&cfg.Normalize, "norm", "n", cfg.Normalize, "Scale each input split by its maximum value")
	return cmd
}

func runBuild(cfg *config) error {
	log, err := newLogger(cfg.Verbose)
	if err != nil {
		return err
	}
	defer log.Sync()

	loader := &dataset.Loader{Dir: cfg.DataDir, Files: dataset.MNISTFiles, Logger: log}
	d, err := loader.Load()
	if err != nil {
		log.Errorw("Failed to load dataset", "dir", cfg.DataDir, "error", err)
		return err
	}

	tensors, err := d.Tensors(dataset.Options{Normalize: cfg.Normalize})
	if err != nil {
		log.Errorw("Failed to prepare tensors", "error", err)
		return err
	}

	if err := tensorset.WriteFile(cfg.Out, tensors); err != nil {
		log.Errorw("Failed to write tensor set", "path", cfg.Out, "error", err)
		return errors.Wrapf(err, "failed to write %s", cfg.Out)
	}
	log.Infow("Wrote tensor set", "path", cfg.Out, "tensors", len(tensors), "bytes", tensorset.EncodedSize(tensors))
	return nil
}
