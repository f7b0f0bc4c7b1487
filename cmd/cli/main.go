package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
)

var bcryptGenerate = bcrypt.GenerateFromPassword

type options struct {
	baseURL  string
	timeout  time.Duration
	token    string
	owner    string
	currency string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:           "pocketledger-cli",
		Short:         "PocketLedger CLI tool",
		Long:          `A command line interface for interacting with the PocketLedger API.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.baseURL, "url", envOr("POCKETLEDGER_URL", "http://localhost:8080"), "Base URL of the PocketLedger API")
	flags.DurationVar(&opts.timeout, "timeout", 10*time.Second, "Request timeout")
	flags.StringVar(&opts.token, "token", os.Getenv("POCKETLEDGER_TOKEN"), "Bearer token")
	flags.StringVar(&opts.owner, "owner", os.Getenv("POCKETLEDGER_OWNER"), "Owner id, for servers running without authentication")
	flags.StringVar(&opts.currency, "currency", envOr("CURRENCY", "USD"), "Currency used to display amounts")

	rootCmd.AddCommand(
		walletsCmd(opts),
		loansCmd(opts),
		ledgerCmd(opts),
		migrateCmd(),
		hashPasswordCmd(),
	)

	return rootCmd
}

func hashPasswordCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-password <password>",
		Short: "Print a bcrypt hash for seeding users",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hash, err := bcryptGenerate([]byte(args[0]), bcrypt.DefaultCost)
			if err != nil {
				return fmt.Errorf("hash password: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(hash))
			return nil
		},
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}
