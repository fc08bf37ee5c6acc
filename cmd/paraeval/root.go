package main

import (
	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigPath string
}

// NewRootCommand creates the root command for the paraeval CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "paraeval",
		Short: "Human evaluation of LLM paraphrases",
		Long: `paraeval serves a web tool in which reviewers compare source abstracts
with model paraphrases and record rubric scores in per-reviewer ledgers.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "", "path to YAML config (default $PARAEVAL_CONFIG)")

	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewLedgerCommand(opts))
	cmd.AddCommand(NewHashPasswordCommand())
	cmd.AddCommand(NewCheckCommand(opts))

	return cmd
}
