package cli

import (
	"fmt"

	"github.com/kolah/oaslice/internal/config"
	"github.com/kolah/oaslice/internal/slicer"
	"github.com/spf13/cobra"
)

func newClosureCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "closure",
		Short: "Print the schemas reachable from the operations under a path prefix",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			prefix, _ := cmd.Flags().GetString("prefix")

			cfg, err := config.Load(cmd, nil)
			if err != nil {
				return err
			}

			result, err := loadSource(cmd, cfg)
			if err != nil {
				return err
			}

			res, err := slicer.Extract(result.Document, slicer.Options{
				Prefix: prefix,
				Logger: newLogger(cmd),
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, name := range res.Names {
				fmt.Fprintln(out, name)
			}
			for _, name := range res.Dangling {
				fmt.Fprintf(out, "%s (undefined)\n", name)
			}
			cmd.PrintErrf("%d paths, %d schemas, %d undefined\n", res.Paths, res.Schemas, len(res.Dangling))
			return nil
		},
	}

	cmd.Flags().StringP("prefix", "p", "", "Path prefix selecting the operations")
	cmd.MarkFlagRequired("prefix")

	return cmd
}
