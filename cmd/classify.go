package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/spaghettifunk/contentbuild/content/classify"
	"github.com/spaghettifunk/contentbuild/content/config"
	"github.com/spaghettifunk/contentbuild/content/registry"
)

func newClassifyCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "classify PATH...",
		Short: "Show how paths would be classified, without building",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withConfig(func(cfg *config.Config) error {
				classOpts, err := cfg.ClassifierOptions()
				if err != nil {
					return exitError(err)
				}
				classifier, err := classify.New(classOpts)
				if err != nil {
					return exitError(err)
				}

				b := registry.NewBuilder(classifier, cfg.Resolver.RootTokens)
				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "ID\tPATH\tNAMESPACE\tTYPE\tACCESSOR\tLOOKUP")
				for _, p := range args {
					d := b.Add(p)
					fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n", d.ID, d.SourcePath, d.Namespace, d.Type, d.ClassName, d.LookupPath)
				}
				return tw.Flush()
			})
		},
	}
}
