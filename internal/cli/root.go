package cli

import (
	"github.com/kolah/oaslice/internal/config"
	"github.com/spf13/cobra"
)

func RootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "oaslice",
		Short: "Slice a composite OpenAPI document into self-contained subsets",
		Long: "Without a subcommand, oaslice loads the source document and writes every\n" +
			"configured subset: the operations under its path prefix, the schemas they\n" +
			"reach through $ref and the tags they use.",
		Version:       "1.0.0",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,

		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cmd, nil)
			if err != nil {
				return err
			}
			return run(cmd, cfg)
		},
	}

	config.BindCommonFlags(root)
	root.AddCommand(
		newExtractCmd(),
		newClosureCmd(),
	)

	return root
}
