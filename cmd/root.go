// Package cmd contains the contentbuild command line.
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	"github.com/spaghettifunk/contentbuild/content/config"
	"github.com/spaghettifunk/contentbuild/content/pipeline"
	"github.com/spaghettifunk/contentbuild/engine/core"
)

// Version is set via -ldflags.
var Version = "dev"

type rootOptions struct {
	workDir     string
	compat      bool
	cfgFile     string
	logLevel    string
	skipShaders bool
}

// NewRootCmd builds the command tree. Running it without a subcommand builds the content.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "contentbuild",
		Short: "Build game content",
		Long: `contentbuild compiles shaders, generates the Go content accessors and writes the
content manifest read by the runtime asset manager.

Every run wipes the build output and processes all content from scratch.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.withConfig(func(cfg *config.Config) error {
				res, err := pipeline.Run(cmd.Context(), cfg, opts.pipelineOptions())
				if err != nil {
					return exitError(err)
				}
				return exitError(res.Err())
			})
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&opts.workDir, "cd", "", "change to `DIR` before building")
	pf.BoolVarP(&opts.compat, "compat", "x", false, "accepted for compatibility, has no effect")
	_ = pf.MarkHidden("compat")
	pf.StringVar(&opts.cfgFile, "config", "", "config file (default is "+config.DefaultFile+" in the working directory)")
	pf.StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn, error")
	pf.BoolVar(&opts.skipShaders, "skip-shaders", false, "do not invoke the shader compiler")

	rootCmd.AddCommand(newWatchCmd(opts))
	rootCmd.AddCommand(newClassifyCmd(opts))
	rootCmd.AddCommand(newShadersCmd(opts))
	return rootCmd
}

// Execute runs the CLI and exits with the code matching the outcome.
func Execute() {
	if err := fang.Execute(
		context.Background(),
		NewRootCmd(),
		fang.WithVersion(Version),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		os.Exit(int(ExitCodeOf(err)))
	}
}

// pipelineOptions maps the global flags. Compiler output is streamed at debug level.
func (o *rootOptions) pipelineOptions() pipeline.Options {
	return pipeline.Options{SkipShaders: o.skipShaders, Stream: core.DebugEnabled()}
}

// withConfig changes directory, loads configuration and the environment, and restores
// the working directory when fn returns.
func (o *rootOptions) withConfig(fn func(cfg *config.Config) error) error {
	if o.workDir != "" {
		prev, err := os.Getwd()
		if err != nil {
			return exitError(err)
		}
		if err := os.Chdir(o.workDir); err != nil {
			return exitError(fmt.Errorf("--cd: %w", err))
		}
		defer func() {
			if err := os.Chdir(prev); err != nil {
				core.LogError("cannot restore working directory %s: %v", prev, err)
			}
		}()
	}

	cfg, err := config.Load(o.cfgFile, o.cfgFile != "")
	if err != nil {
		return exitError(err)
	}

	level := cfg.Log.Level
	if o.logLevel != "" {
		level = o.logLevel
	}
	if level != "" {
		if err := core.SetLogLevel(level); err != nil {
			return exitError(fmt.Errorf("%w: log level: %v", core.ErrInvalidConfig, err))
		}
	}

	cfg.LoadEnv()
	return fn(cfg)
}
