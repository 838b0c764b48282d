package cli

import (
	"github.com/kolah/oaslice/internal/config"
	"github.com/spf13/cobra"
)

func newExtractCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Extract a single subset given on the command line",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cmd, subsetFromFlags(cmd))
			if err != nil {
				return err
			}
			return run(cmd, cfg)
		},
	}

	flags := cmd.Flags()
	flags.StringP("prefix", "p", "", "Path prefix selecting the operations")
	flags.String("title", "", "info.title of the extracted document")
	flags.String("description", "", "info.description of the extracted document")
	flags.String("api-version", "", "info.version of the extracted document")
	flags.String("name", "", "Subset name (default: the API version)")
	flags.String("output", "", "Output file, relative to the output directory (default: openapi-<version>.yaml)")
	flags.String("embed-package", "", "Also write a Go file embedding the document in this package")

	cmd.MarkFlagRequired("prefix")
	cmd.MarkFlagRequired("title")
	cmd.MarkFlagRequired("api-version")

	return cmd
}

func subsetFromFlags(cmd *cobra.Command) *config.Subset {
	flags := cmd.Flags()
	s := &config.Subset{}
	s.Prefix, _ = flags.GetString("prefix")
	s.Title, _ = flags.GetString("title")
	s.Description, _ = flags.GetString("description")
	s.Version, _ = flags.GetString("api-version")
	s.Name, _ = flags.GetString("name")
	s.Output, _ = flags.GetString("output")
	s.Embed.Package, _ = flags.GetString("embed-package")
	return s
}
