package commands

import (
	"context"

	portssvc "github.com/SscSPs/ledger_engine/internal/core/ports/services"
	"github.com/SscSPs/ledger_engine/internal/dto"
	"github.com/spf13/cobra"
)

func newTransferCommand() *cobra.Command {
	var req dto.TransferRequest
	var amountStr string

	cmd := &cobra.Command{
		Use:   "transfer",
		Short: "Move funds from one account to another",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := parseAmount("amount", amountStr)
			if err != nil {
				return err
			}
			req.Amount = amount
			return runLedger(cmd, func(ctx context.Context, svc *portssvc.ServiceContainer) (any, error) {
				txn, err := svc.Ledger.Transfer(ctx, req)
				return present(txn, err, dto.ToTransactionResponse)
			})
		},
	}

	cmd.Flags().StringVar(&req.SourceAccountID, "from", "", "source account id")
	cmd.Flags().StringVar(&req.DestinationAccountNumber, "to", "", "destination account number")
	cmd.Flags().StringVar(&amountStr, "amount", "", "amount to move")
	cmd.Flags().StringVar(&req.CurrencyCode, "currency", "", "currency of the amount")
	cmd.Flags().StringVar(&req.Description, "description", "", "free-form description")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")
	_ = cmd.MarkFlagRequired("amount")
	_ = cmd.MarkFlagRequired("currency")

	return cmd
}

func newReverseCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "reverse <transaction-id>",
		Short: "Reverse a completed transfer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLedger(cmd, func(ctx context.Context, svc *portssvc.ServiceContainer) (any, error) {
				txn, err := svc.Ledger.Reverse(ctx, args[0])
				return present(txn, err, dto.ToTransactionResponse)
			})
		},
	}
}

type movementFunc func(ctx context.Context, svc portssvc.MovementSvc, req dto.MovementRequest) (any, error)

func depositFn(ctx context.Context, svc portssvc.MovementSvc, req dto.MovementRequest) (any, error) {
	txn, err := svc.Deposit(ctx, req)
	return present(txn, err, dto.ToTransactionResponse)
}

func withdrawFn(ctx context.Context, svc portssvc.MovementSvc, req dto.MovementRequest) (any, error) {
	txn, err := svc.Withdraw(ctx, req)
	return present(txn, err, dto.ToTransactionResponse)
}

func feeFn(ctx context.Context, svc portssvc.MovementSvc, req dto.MovementRequest) (any, error) {
	txn, err := svc.ChargeFee(ctx, req)
	return present(txn, err, dto.ToTransactionResponse)
}

func newMovementCommand(use, short string, fn movementFunc) *cobra.Command {
	var req dto.MovementRequest
	var amountStr string

	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := parseAmount("amount", amountStr)
			if err != nil {
				return err
			}
			req.Amount = amount
			return runLedger(cmd, func(ctx context.Context, svc *portssvc.ServiceContainer) (any, error) {
				return fn(ctx, svc.Ledger, req)
			})
		},
	}

	cmd.Flags().StringVar(&req.AccountID, "account", "", "account id")
	cmd.Flags().StringVar(&amountStr, "amount", "", "amount")
	cmd.Flags().StringVar(&req.CurrencyCode, "currency", "", "currency of the amount")
	cmd.Flags().StringVar(&req.Description, "description", "", "free-form description")
	_ = cmd.MarkFlagRequired("account")
	_ = cmd.MarkFlagRequired("amount")
	_ = cmd.MarkFlagRequired("currency")

	return cmd
}
