package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/SscSPs/ledger_engine/internal/apperrors"
	portssvc "github.com/SscSPs/ledger_engine/internal/core/ports/services"
	"github.com/SscSPs/ledger_engine/internal/logging"
	"github.com/SscSPs/ledger_engine/internal/platform/config"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

// Process exit codes, by error kind.
const (
	ExitOK        = 0
	ExitFailure   = 1
	ExitRejected  = 2
	ExitRetryable = 3
	ExitNotFound  = 4
)

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "ledger",
		Short: "Operate an account ledger: transfers, reversals, card payments and history",
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		newMigrateCommand(),
		newAccountCommand(),
		newBalanceCommand(),
		newTransferCommand(),
		newReverseCommand(),
		newMovementCommand("deposit", "Credit an account from outside the ledger", depositFn),
		newMovementCommand("withdraw", "Debit an account to outside the ledger", withdrawFn),
		newMovementCommand("fee", "Charge a fee to an account", feeFn),
		newCardCommand(),
		newHistoryCommand(),
		newTxnCommand(),
	)

	return rootCmd
}

// ExitCode maps an error returned by Execute to a process exit code.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case apperrors.IsNotFound(err):
		return ExitNotFound
	case apperrors.IsRetryable(err):
		return ExitRetryable
	case apperrors.IsClientError(err):
		return ExitRejected
	default:
		return ExitFailure
	}
}

type ledgerFunc func(ctx context.Context, svc *portssvc.ServiceContainer) (any, error)

// runLedger loads config, opens the configured store and prints fn's result as JSON.
func runLedger(cmd *cobra.Command, fn ledgerFunc) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := logging.New(cmd.ErrOrStderr(), cfg.LogLevel)
	ctx := logging.WithOperation(cmd.Context(), logger, cmd.CommandPath())

	svc, closeStore, err := openServices(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	result, err := fn(ctx, svc)
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), result)
}

// present converts a service result into its JSON response shape.
func present[T, R any](v *T, err error, toResponse func(*T) R) (any, error) {
	if err != nil {
		return nil, err
	}
	return toResponse(v), nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func parseAmount(flag, value string) (decimal.Decimal, error) {
	if value == "" {
		return decimal.Zero, apperrors.NewAppError(apperrors.ErrValidation, fmt.Sprintf("--%s is required", flag), nil)
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, apperrors.NewAppError(apperrors.ErrValidation, fmt.Sprintf("--%s: %q is not a decimal", flag, value), err)
	}
	return d, nil
}

func parseOptionalAmount(flag, value string) (*decimal.Decimal, error) {
	if value == "" {
		return nil, nil
	}
	d, err := parseAmount(flag, value)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// Execute runs the root command and returns the exit code.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	root := NewRootCommand()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
	}
	return ExitCode(err)
}
