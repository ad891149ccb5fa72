package cmd

import (
	"github.com/spf13/cobra"

	"github.com/spaghettifunk/contentbuild/content/config"
	"github.com/spaghettifunk/contentbuild/content/pipeline"
)

func newShadersCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "shaders",
		Short: "Compile shaders only, leaving the generated code and manifest alone",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.withConfig(func(cfg *config.Config) error {
				popts := opts.pipelineOptions()
				popts.ShadersOnly = true
				res, err := pipeline.Run(cmd.Context(), cfg, popts)
				if err != nil {
					return exitError(err)
				}
				return exitError(res.Err())
			})
		},
	}
}
