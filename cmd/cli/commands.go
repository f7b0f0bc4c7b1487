package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/iho/pocketledger/internal/adapter/http/dto"
	"github.com/iho/pocketledger/internal/domain"
	"github.com/iho/pocketledger/internal/infrastructure/config"
	"github.com/iho/pocketledger/internal/infrastructure/logger"
	"github.com/iho/pocketledger/internal/infrastructure/postgres"
)

var errInconsistent = errors.New("ledger is inconsistent")

func walletsCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wallets",
		Short: "Wallet operations",
	}

	var includeArchived bool
	list := &cobra.Command{
		Use:   "list",
		Short: "List wallets with their balances",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "/api/v1/wallets"
			if includeArchived {
				path += "?include_archived=true"
			}

			var resp struct {
				Wallets []*dto.WalletResponse `json:"wallets"`
			}
			if _, err := newAPIClient(opts).get(cmd.Context(), path, &resp); err != nil {
				return err
			}

			total := domain.ZeroMoney
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tKIND\tBALANCE\tARCHIVED")
			for _, w := range resp.Wallets {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%t\n", w.ID, truncate(w.Name, 24), w.Kind, w.CurrentBalance.Display(opts.currency), w.Archived)
				if !w.Archived {
					total = total.Add(w.CurrentBalance)
				}
			}
			fmt.Fprintf(tw, "\t\t\t%s\t\n", total.Display(opts.currency))
			return tw.Flush()
		},
	}
	list.Flags().BoolVar(&includeArchived, "archived", false, "Include archived wallets")

	reconcile := &cobra.Command{
		Use:   "reconcile <wallet-id>",
		Short: "Compare a wallet's balance with its entries",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var resp dto.ReconciliationResponse
			if _, err := newAPIClient(opts).get(cmd.Context(), "/api/v1/wallets/"+args[0]+"/reconcile", &resp); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Recorded:   %s\n", resp.RecordedBalance.Display(opts.currency))
			fmt.Fprintf(out, "Calculated: %s\n", resp.CalculatedBalance.Display(opts.currency))
			if !resp.IsReconciled {
				fmt.Fprintf(out, "Difference: %s\n", resp.Difference.Display(opts.currency))
				return errInconsistent
			}
			fmt.Fprintln(out, "Reconciled")
			return nil
		},
	}

	cmd.AddCommand(list, reconcile)
	return cmd
}

func loansCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "loans",
		Short: "Loan operations",
	}

	stats := &cobra.Command{
		Use:   "stats",
		Short: "Summarize open loans",
		RunE: func(cmd *cobra.Command, args []string) error {
			var resp domain.LoanStats
			if _, err := newAPIClient(opts).get(cmd.Context(), "/api/v1/loans/stats", &resp); err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "KIND\tOPEN\tOUTSTANDING")
			fmt.Fprintf(tw, "you owe\t%d\t%s\n", resp.YouOwe.Count, resp.YouOwe.TotalAmount.Display(opts.currency))
			fmt.Fprintf(tw, "owed to you\t%d\t%s\n", resp.OwedToYou.Count, resp.OwedToYou.TotalAmount.Display(opts.currency))
			fmt.Fprintf(tw, "total loans\t%d\t\n", resp.TotalLoans)
			return tw.Flush()
		},
	}

	cmd.AddCommand(stats)
	return cmd
}

func ledgerCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ledger",
		Short: "Ledger operations",
	}

	var asJSON bool
	consistency := &cobra.Command{
		Use:   "consistency",
		Short: "Check ledger consistency",
		RunE: func(cmd *cobra.Command, args []string) error {
			var report domain.ConsistencyReport
			if _, err := newAPIClient(opts).get(cmd.Context(), "/api/v1/ledger/consistency", &report, http.StatusConflict); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				if err := printJSON(out, report); err != nil {
					return err
				}
			} else {
				printReport(out, &report, opts.currency)
			}
			if !report.Consistent {
				return errInconsistent
			}
			return nil
		},
	}
	consistency.Flags().BoolVar(&asJSON, "json", false, "Print the raw report")

	cmd.AddCommand(consistency)
	return cmd
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations using DATABASE_URL and MIGRATIONS_PATH",
	}

	migrator := func() (*postgres.Migrator, error) {
		cfg, err := config.Load()
		if err != nil {
			return nil, fmt.Errorf("load configuration: %w", err)
		}
		log := logger.NewWithWriter(logger.Config{Level: cfg.LogLevel, Format: "console", Service: "pocketledger-cli"}, cmd.ErrOrStderr())
		return postgres.NewMigrator(cfg.DatabaseURL, cfg.MigrationsPath, log), nil
	}

	up := &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := migrator()
			if err != nil {
				return err
			}
			return m.Up()
		},
	}

	down := &cobra.Command{
		Use:   "down",
		Short: "Roll back all migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := migrator()
			if err != nil {
				return err
			}
			return m.Down()
		},
	}

	version := &cobra.Command{
		Use:   "version",
		Short: "Print the current schema version",
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := migrator()
			if err != nil {
				return err
			}
			v, dirty, err := m.Version()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "version %d (dirty: %t)\n", v, dirty)
			return nil
		},
	}

	cmd.AddCommand(up, down, version)
	return cmd
}

func printReport(out io.Writer, report *domain.ConsistencyReport, currency string) {
	if report.Consistent {
		fmt.Fprintln(out, "Consistency check PASSED")
		return
	}

	fmt.Fprintln(out, "Consistency check FAILED")
	for _, w := range report.Wallets {
		fmt.Fprintf(out, "  wallet %s: recorded %s, entries %s\n", w.WalletID, w.Recorded.Display(currency), w.Computed.Display(currency))
	}
	for _, l := range report.Loans {
		fmt.Fprintf(out, "  loan %s: outstanding %s, expected %s (%s)\n", l.LoanID, l.Outstanding.Display(currency), l.Expected.Display(currency), l.Status)
	}
}

func printJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
