package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"paraeval/internal/adapter/csvstore"
	"paraeval/internal/config"
	"paraeval/internal/domain"
)

// NewCheckCommand creates the check command.
func NewCheckCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Load every table and report row counts and alignment",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(rootOpts.ConfigPath)
			if err != nil {
				return err
			}
			return runCheck(cmd, cfg)
		},
	}
}

func runCheck(cmd *cobra.Command, cfg *config.Config) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	users, err := csvstore.LoadUsers(cfg.UsersPath())
	if err != nil {
		return err
	}
	n, err := users.Count(ctx)
	if err != nil {
		return fmt.Errorf("count users: %w", err)
	}
	fmt.Fprintf(out, "users: %d\n", n)

	corpus := csvstore.NewCorpusStore(cfg.DataDir, cfg.InputFile)
	sources, err := corpus.Sources(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "input: %d rows\n", len(sources))

	counts := make([]int, len(cfg.Models))
	errs := make([]error, len(cfg.Models))
	var g errgroup.Group
	for i, m := range cfg.Models {
		g.Go(func() error {
			rows, err := corpus.Candidates(ctx, m)
			counts[i], errs[i] = len(rows), err
			return nil
		})
	}
	_ = g.Wait()

	var problems []error
	for i, m := range cfg.Models {
		switch {
		case errs[i] != nil:
			fmt.Fprintf(out, "%s: %v\n", m.Name, errs[i])
			problems = append(problems, errs[i])
		case counts[i] != len(sources):
			fmt.Fprintf(out, "%s: %d rows, MISALIGNED\n", m.Name, counts[i])
			problems = append(problems, fmt.Errorf("%s: %w", m.Name, domain.ErrCorpusMisaligned))
		default:
			fmt.Fprintf(out, "%s: %d rows, ok\n", m.Name, counts[i])
		}
	}
	if cfg.Storage.Backend == config.BackendCSV {
		ledgers := csvstore.NewLedgerStore(cfg.ResultsPath())
		if err := ledgers.CheckKeys(ledgerKeys(users.Usernames(), cfg.Models)); err != nil {
			fmt.Fprintf(out, "ledgers: %v\n", err)
			problems = append(problems, err)
		} else {
			fmt.Fprintln(out, "ledgers: ok")
		}
	}
	return errors.Join(problems...)
}

// ledgerKeys lists every (user, model) pair that can own a ledger.
func ledgerKeys(usernames []string, models domain.Models) []domain.LedgerKey {
	keys := make([]domain.LedgerKey, 0, len(usernames)*len(models))
	for _, u := range usernames {
		for _, m := range models {
			keys = append(keys, domain.LedgerKey{Username: u, Model: m.Name})
		}
	}
	return keys
}
