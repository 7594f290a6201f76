package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/sw965/tst/blas32/vector"
	"github.com/sw965/tst/tensorset"
	"gonum.org/v1/gonum/blas/blas32"
)

func newInspectCmd(cfg *config) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect FILE",
		Short: "Print the tensor directory of a TS_tensors file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log, err := newLogger(cfg.Verbose)
			if err != nil {
				return err
			}
			defer log.Sync()

			log.Debugw("Decoding tensor set", "path", args[0])
			records, err := tensorset.ReadFile(args[0])
			if err != nil {
				log.Errorw("Failed to decode tensor set", "path", args[0], "error", err)
				return err
			}
			return printRecords(cmd.OutOrStdout(), records)
		},
	}
}

func printRecords(w io.Writer, records []tensorset.Record) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tELEM_SIZE\tRESERVED\tCOUNT\tMAX")
	for _, r := range records {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%g\n", r.Name, r.Dims.ElemSize, r.Dims.Reserved, r.Dims.Count, vector.Max(blas32.Vector{N: len(r.Data), Inc: 1, Data: r.Data}))
	}
	return tw.Flush()
}
