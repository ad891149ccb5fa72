package cmd

import (
	"github.com/spf13/cobra"

	"github.com/spaghettifunk/contentbuild/content/config"
	"github.com/spaghettifunk/contentbuild/content/pipeline"
	"github.com/spaghettifunk/contentbuild/engine/core"
)

func newWatchCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Rebuild content whenever the content roots change",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.withConfig(func(cfg *config.Config) error {
				// fail fast instead of logging the same error on every rebuild
				if !opts.skipShaders && !cfg.Shaders.Skip {
					if _, err := cfg.ToolchainDir(); err != nil {
						return exitError(err)
					}
				}
				core.LogInfo("watching %v", cfg.Paths.ContentRoots)
				err := pipeline.Watch(cmd.Context(), cfg, opts.pipelineOptions(), func(res *pipeline.Result, err error) {
					if err != nil {
						core.LogError("build failed: %v", err)
						return
					}
					if err := res.Err(); err != nil {
						core.LogWarn("build finished with errors: %v", err)
					}
				})
				return exitError(err)
			})
		},
	}
}
