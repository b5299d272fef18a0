package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/SscSPs/ledger_engine/internal/apperrors"
	"github.com/SscSPs/ledger_engine/internal/core/domain"
	portssvc "github.com/SscSPs/ledger_engine/internal/core/ports/services"
	"github.com/SscSPs/ledger_engine/internal/dto"
	"github.com/spf13/cobra"
)

func newCardCommand() *cobra.Command {
	cardCmd := &cobra.Command{
		Use:   "card",
		Short: "Register cards and run card payments",
	}
	cardCmd.AddCommand(
		newCardAddCommand(),
		newCardAuthorizeCommand(),
		newCardPayCommand(),
		newCardSpendingCommand(),
		newCardStatusCommand("activate", "Activate an inactive card", domain.InstrumentActive),
		newCardStatusCommand("block", "Block a card for good", domain.InstrumentBlocked),
		newCardLimitCommand(),
	)
	return cardCmd
}

func newCardAddCommand() *cobra.Command {
	var req dto.RegisterInstrumentRequest
	var limit, expires string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Bind a card to an account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dailyLimit, err := parseOptionalAmount("limit", limit)
			if err != nil {
				return err
			}
			req.DailyLimit = dailyLimit
			if expires != "" {
				at, err := time.Parse(time.RFC3339, expires)
				if err != nil {
					return apperrors.NewAppError(apperrors.ErrValidation, fmt.Sprintf("--expires: %q is not RFC 3339", expires), err)
				}
				req.ExpiresAt = &at
			}
			return runLedger(cmd, func(ctx context.Context, svc *portssvc.ServiceContainer) (any, error) {
				inst, err := svc.Provisioning.RegisterInstrument(ctx, req)
				return present(inst, err, dto.ToInstrumentResponse)
			})
		},
	}

	cmd.Flags().StringVar(&req.AccountID, "account", "", "account id the card debits")
	cmd.Flags().StringVar(&req.InstrumentID, "id", "", "card id (generated when empty)")
	cmd.Flags().StringVar(&req.Status, "status", "", "inactive, active, blocked or expired (default inactive)")
	cmd.Flags().StringVar(&limit, "limit", "", "daily spend limit (default 1000.00)")
	cmd.Flags().StringVar(&expires, "expires", "", "expiry time, RFC 3339")
	_ = cmd.MarkFlagRequired("account")

	return cmd
}

func newCardAuthorizeCommand() *cobra.Command {
	var amountStr, limitStr string

	cmd := &cobra.Command{
		Use:   "authorize <card-id>",
		Short: "Check whether a payment would fit today's limit without moving funds",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := parseAmount("amount", amountStr)
			if err != nil {
				return err
			}
			limit, err := parseOptionalAmount("limit", limitStr)
			if err != nil {
				return err
			}
			return runLedger(cmd, func(ctx context.Context, svc *portssvc.ServiceContainer) (any, error) {
				if limit == nil {
					window, err := svc.Ledger.DailySpending(ctx, args[0])
					if err != nil {
						return nil, err
					}
					limit = &window.Limit
				}
				auth, err := svc.Ledger.Authorize(ctx, args[0], amount, *limit)
				return present(auth, err, dto.ToAuthorizationResponse)
			})
		},
	}

	cmd.Flags().StringVar(&amountStr, "amount", "", "payment amount")
	cmd.Flags().StringVar(&limitStr, "limit", "", "limit to check against (default the card's daily limit)")
	_ = cmd.MarkFlagRequired("amount")

	return cmd
}

func newCardPayCommand() *cobra.Command {
	var req dto.CardPaymentRequest
	var amountStr string

	cmd := &cobra.Command{
		Use:   "pay <card-id>",
		Short: "Pay with a card, debiting its account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := parseAmount("amount", amountStr)
			if err != nil {
				return err
			}
			req.InstrumentID = args[0]
			req.Amount = amount
			return runLedger(cmd, func(ctx context.Context, svc *portssvc.ServiceContainer) (any, error) {
				txn, err := svc.Ledger.PayWithCard(ctx, req)
				return present(txn, err, dto.ToTransactionResponse)
			})
		},
	}

	cmd.Flags().StringVar(&amountStr, "amount", "", "payment amount")
	cmd.Flags().StringVar(&req.CurrencyCode, "currency", "", "payment currency (default the account currency)")
	cmd.Flags().StringVar(&req.MerchantName, "merchant", "", "merchant name")
	cmd.Flags().StringVar(&req.Description, "description", "", "free-form description")
	_ = cmd.MarkFlagRequired("amount")

	return cmd
}

func newCardSpendingCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "spending <card-id>",
		Short: "Show today's spend against the daily limit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLedger(cmd, func(ctx context.Context, svc *portssvc.ServiceContainer) (any, error) {
				spend, err := svc.Ledger.DailySpending(ctx, args[0])
				return present(spend, err, dto.ToDailySpendResponse)
			})
		},
	}
}

func newCardStatusCommand(use, short string, status domain.InstrumentStatus) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <card-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLedger(cmd, func(ctx context.Context, svc *portssvc.ServiceContainer) (any, error) {
				inst, err := svc.Provisioning.ChangeInstrumentStatus(ctx, args[0], status)
				return present(inst, err, dto.ToInstrumentResponse)
			})
		},
	}
}

func newCardLimitCommand() *cobra.Command {
	var limitStr string

	cmd := &cobra.Command{
		Use:   "limit <card-id>",
		Short: "Change a card's daily spend limit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			limit, err := parseAmount("limit", limitStr)
			if err != nil {
				return err
			}
			return runLedger(cmd, func(ctx context.Context, svc *portssvc.ServiceContainer) (any, error) {
				inst, err := svc.Provisioning.UpdateDailyLimit(ctx, args[0], limit)
				return present(inst, err, dto.ToInstrumentResponse)
			})
		},
	}

	cmd.Flags().StringVar(&limitStr, "limit", "", "new daily spend limit")
	_ = cmd.MarkFlagRequired("limit")

	return cmd
}
