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

type historyFlags struct {
	from, to string
	txType   string
	min, max string
	limit    int
	offset   int
	cursor   string
	all      bool
}

func (f historyFlags) filter() (domain.HistoryFilter, error) {
	var filter domain.HistoryFilter

	for _, bound := range []struct {
		flag  string
		value string
		dst   **time.Time
	}{
		{"from", f.from, &filter.From},
		{"to", f.to, &filter.To},
	} {
		if bound.value == "" {
			continue
		}
		at, err := time.Parse(time.RFC3339, bound.value)
		if err != nil {
			return filter, apperrors.NewAppError(apperrors.ErrValidation, fmt.Sprintf("--%s: %q is not RFC 3339", bound.flag, bound.value), err)
		}
		*bound.dst = &at
	}

	if f.txType != "" {
		t, err := domain.ParseTransactionType(f.txType)
		if err != nil {
			return filter, apperrors.NewAppError(apperrors.ErrValidation, "--type", err)
		}
		filter.Type = &t
	}

	var err error
	if filter.MinAmount, err = parseOptionalAmount("min", f.min); err != nil {
		return filter, err
	}
	if filter.MaxAmount, err = parseOptionalAmount("max", f.max); err != nil {
		return filter, err
	}
	return filter, nil
}

func newHistoryCommand() *cobra.Command {
	var flags historyFlags

	cmd := &cobra.Command{
		Use:   "history <account-id>",
		Short: "List an account's transactions, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			filter, err := flags.filter()
			if err != nil {
				return err
			}
			return runLedger(cmd, func(ctx context.Context, svc *portssvc.ServiceContainer) (any, error) {
				if !flags.all {
					page := domain.Page{Limit: flags.limit, Offset: flags.offset, Cursor: flags.cursor}
					result, err := svc.Ledger.History(ctx, args[0], filter, page)
					return present(result, err, dto.ToHistoryPageResponse)
				}

				txs := []domain.Transaction{}
				for tx, err := range svc.Ledger.HistorySeq(ctx, args[0], filter, flags.limit) {
					if err != nil {
						return nil, err
					}
					txs = append(txs, tx)
				}
				return dto.ToHistoryPageResponse(&domain.HistoryPage{Transactions: txs}), nil
			})
		},
	}

	cmd.Flags().StringVar(&flags.from, "from", "", "earliest creation time, RFC 3339")
	cmd.Flags().StringVar(&flags.to, "to", "", "latest creation time, RFC 3339")
	cmd.Flags().StringVar(&flags.txType, "type", "", "transfer, deposit, withdrawal, card_payment or fee")
	cmd.Flags().StringVar(&flags.min, "min", "", "minimum amount")
	cmd.Flags().StringVar(&flags.max, "max", "", "maximum amount")
	cmd.Flags().IntVar(&flags.limit, "limit", domain.DefaultHistoryLimit, "page size")
	cmd.Flags().IntVar(&flags.offset, "offset", 0, "rows to skip (ignored with --cursor)")
	cmd.Flags().StringVar(&flags.cursor, "cursor", "", "nextCursor from a previous page")
	cmd.Flags().BoolVar(&flags.all, "all", false, "walk every page")

	return cmd
}

func newTxnCommand() *cobra.Command {
	txnCmd := &cobra.Command{
		Use:   "txn",
		Short: "Inspect transactions",
	}
	txnCmd.AddCommand(&cobra.Command{
		Use:   "show <transaction-id>",
		Short: "Show a transaction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLedger(cmd, func(ctx context.Context, svc *portssvc.ServiceContainer) (any, error) {
				txn, err := svc.Ledger.GetTransaction(ctx, args[0])
				return present(txn, err, dto.ToTransactionResponse)
			})
		},
	})
	return txnCmd
}
