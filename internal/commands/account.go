package commands

import (
	"context"

	"github.com/SscSPs/ledger_engine/internal/core/domain"
	portssvc "github.com/SscSPs/ledger_engine/internal/core/ports/services"
	"github.com/SscSPs/ledger_engine/internal/dto"
	"github.com/spf13/cobra"
)

func newAccountCommand() *cobra.Command {
	accountCmd := &cobra.Command{
		Use:   "account",
		Short: "Open and inspect accounts",
	}
	accountCmd.AddCommand(
		newAccountOpenCommand(),
		newAccountShowCommand(),
		newAccountStatusCommand(),
	)
	return accountCmd
}

func newAccountOpenCommand() *cobra.Command {
	var req dto.OpenAccountRequest
	var deposit string

	cmd := &cobra.Command{
		Use:   "open",
		Short: "Open an account, optionally with an initial deposit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			initial, err := parseOptionalAmount("deposit", deposit)
			if err != nil {
				return err
			}
			req.InitialDeposit = initial
			return runLedger(cmd, func(ctx context.Context, svc *portssvc.ServiceContainer) (any, error) {
				acc, err := svc.Provisioning.OpenAccount(ctx, req)
				return present(acc, err, dto.ToAccountResponse)
			})
		},
	}

	cmd.Flags().StringVar(&req.HolderID, "holder", "", "account holder id")
	cmd.Flags().StringVar(&req.CurrencyCode, "currency", "", "ISO 4217 currency code")
	cmd.Flags().StringVar(&req.AccountNumber, "number", "", "12 digit account number (generated when empty)")
	cmd.Flags().StringVar(&deposit, "deposit", "", "initial deposit amount")
	_ = cmd.MarkFlagRequired("holder")
	_ = cmd.MarkFlagRequired("currency")

	return cmd
}

func newAccountShowCommand() *cobra.Command {
	var byNumber bool

	cmd := &cobra.Command{
		Use:   "show <account-id>",
		Short: "Show an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLedger(cmd, func(ctx context.Context, svc *portssvc.ServiceContainer) (any, error) {
				lookup := svc.Ledger.GetAccount
				if byNumber {
					lookup = svc.Ledger.GetAccountByNumber
				}
				acc, err := lookup(ctx, args[0])
				return present(acc, err, dto.ToAccountResponse)
			})
		},
	}

	cmd.Flags().BoolVar(&byNumber, "by-number", false, "treat the argument as an account number")

	return cmd
}

func newAccountStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status <account-id> <active|frozen|closed>",
		Short: "Change an account's status",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLedger(cmd, func(ctx context.Context, svc *portssvc.ServiceContainer) (any, error) {
				acc, err := svc.Ledger.ChangeAccountStatus(ctx, args[0], domain.AccountStatus(args[1]))
				return present(acc, err, dto.ToAccountResponse)
			})
		},
	}
}

func newBalanceCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "balance <account-id>",
		Short: "Show an account balance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLedger(cmd, func(ctx context.Context, svc *portssvc.ServiceContainer) (any, error) {
				balance, err := svc.Ledger.GetBalance(ctx, args[0])
				return present(balance, err, dto.ToMoneyResponse)
			})
		},
	}
}
