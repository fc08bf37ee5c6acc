package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"paraeval/internal/adapter/csvstore"
	"paraeval/internal/adapter/postgres"
	"paraeval/internal/config"
	"paraeval/internal/domain"
)

// LedgerOptions holds flags for ledger show.
type LedgerOptions struct {
	User   string
	Model  string
	Format string
}

// NewLedgerCommand creates the ledger command group.
func NewLedgerCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ledger",
		Short: "Inspect score ledgers",
	}
	cmd.AddCommand(newLedgerShowCommand(rootOpts))
	return cmd
}

func newLedgerShowCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &LedgerOptions{}
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print one reviewer's scores for one model",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(rootOpts.ConfigPath)
			if err != nil {
				return err
			}
			if _, ok := cfg.Models.Lookup(opts.Model); !ok {
				return fmt.Errorf("%q: %w (known: %v)", opts.Model, domain.ErrUnknownModel, cfg.Models.Names())
			}

			var repo domain.ScoreRepository
			if cfg.Storage.Backend == config.BackendPostgres {
				db, err := postgres.Open(cfg.Storage.DatabaseURL)
				if err != nil {
					return fmt.Errorf("db open: %w", err)
				}
				defer func() { _ = db.Close() }()
				repo = db
			} else {
				repo = csvstore.NewLedgerStore(cfg.ResultsPath())
			}

			rows, err := repo.ListScores(cmd.Context(), domain.LedgerKey{Username: opts.User, Model: opts.Model})
			if err != nil {
				return err
			}
			return printLedger(cmd, rows, opts.Format)
		},
	}
	cmd.Flags().StringVarP(&opts.User, "user", "u", "", "reviewer username")
	cmd.Flags().StringVarP(&opts.Model, "model", "m", "", "model display name")
	cmd.Flags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	_ = cmd.MarkFlagRequired("user")
	_ = cmd.MarkFlagRequired("model")
	return cmd
}

func printLedger(cmd *cobra.Command, rows []domain.ScoreRecord, format string) error {
	switch format {
	case "json":
		if rows == nil {
			rows = []domain.ScoreRecord{}
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(rows)
	case "text":
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "TITLE\tSEMANTIC\tSYNTACTIC\tFLUENCY\tOVERALL")
		for _, r := range rows {
			fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%d\n", r.Title, r.Semantic, r.Syntactic, r.Fluency, r.Overall)
		}
		return tw.Flush()
	default:
		return fmt.Errorf("invalid format %q: must be json or text", format)
	}
}
