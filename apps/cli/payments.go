package main

import (
	"context"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/trezcool/edupay/core/payment"
)

func (cli *commandLine) paymentsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "payments",
		Short: "List the payments known to the backend",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cli.listPayments(cmd.Context())
		},
	}
}

func (cli *commandLine) listPayments(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cli.println(payment.LoadingText)

	listing := cli.payments.List(ctx)
	if listing.State == payment.StateFailed {
		cli.println(errStyle.Render(listing.Error))
		return errors.New(listing.Error)
	}
	cli.println(renderTable(payment.Headers, payment.Rows(listing.Payments)))
	return nil
}
