package main

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/trezcool/edupay/core/dashboard"
)

func (cli *commandLine) dashboardCmd() *cobra.Command {
	var (
		currency string
		read     []int
	)
	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Show the account summary",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cli.showDashboard(cmd.Context(), strings.ToUpper(currency), read)
		},
	}
	cmd.Flags().StringVar(&currency, "currency", "USD", "display currency, USD or TZS")
	cmd.Flags().IntSliceVar(&read, "read", nil, "notification ids to mark as read")
	return cmd
}

func (cli *commandLine) showDashboard(ctx context.Context, currency string, read []int) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if currency != "USD" && currency != "TZS" {
		return errors.Errorf("unsupported currency %q, want USD or TZS", currency)
	}

	cli.println("Loading dashboard...")
	sum, err := cli.dashboard.Load(ctx)
	if err != nil {
		return errors.Wrap(err, "loading dashboard")
	}
	for _, id := range read {
		if sum, err = sum.MarkAsRead(id); err != nil {
			return errors.Wrapf(err, "notification %d", id)
		}
	}
	money := func(amount float64) string { return dashboard.FormatCurrency(amount, currency) }

	cli.println(titleStyle.Render("Balance") + "     " + money(sum.Balance))
	cli.println(titleStyle.Render("Total paid") + "  " + money(sum.TotalPaid()))

	cli.println()
	cli.println(titleStyle.Render("Recent payments"))
	rows := make([][]string, 0, len(sum.RecentPayments))
	for _, p := range sum.RecentPayments {
		rows = append(rows, []string{p.Course, money(p.Amount), p.Date, p.Status})
	}
	cli.println(renderTable([]string{"Course", "Amount", "Date", "Status"}, rows))

	cli.println()
	cli.println(titleStyle.Render("Upcoming payments"))
	rows = make([][]string, 0, len(sum.UpcomingPayments))
	for _, p := range sum.UpcomingPayments {
		rows = append(rows, []string{p.Course, money(p.Amount), p.DueDate})
	}
	cli.println(renderTable([]string{"Course", "Amount", "Due date"}, rows))

	cli.println()
	cli.println(titleStyle.Render("Notifications"))
	for _, n := range sum.Notifications {
		mark := " "
		if !n.Read {
			mark = "•"
		}
		cli.printf("%s [%d] %s (%s)\n", mark, n.ID, n.Message, n.Time)
	}
	return nil
}
