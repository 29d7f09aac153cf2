package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/trezcool/edupay/core/dashboard"
	"github.com/trezcool/edupay/core/form"
	"github.com/trezcool/edupay/core/payment"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")

	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	titleStyle  = lipgloss.NewStyle().Bold(true)
	errStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

type commandLine struct {
	forms     *form.Service
	payments  *payment.Service
	dashboard *dashboard.Service
	out       io.Writer
	stdin     int
}

func (cli *commandLine) run(args []string) error {
	root := &cobra.Command{
		Use:           "edupay",
		Short:         "Fill in school payment forms and browse payments",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_ = cmd.Help()
			return errHelp
		},
	}
	root.SetOut(cli.out)
	root.SetErr(cli.out)
	root.AddCommand(cli.submitCmd(), cli.paymentsCmd(), cli.dashboardCmd())
	root.SetArgs(args[1:])
	return root.Execute()
}

func (cli *commandLine) printf(format string, a ...interface{}) {
	_, _ = fmt.Fprintf(cli.out, format, a...)
}

func (cli *commandLine) println(a ...interface{}) {
	_, _ = fmt.Fprintln(cli.out, a...)
}

func renderTable(headers []string, rows [][]string) string {
	return table.New().
		Border(lipgloss.NormalBorder()).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Headers(headers...).
		Rows(rows...).
		Render()
}

func kindNames() string {
	names := make([]string, 0, len(form.Kinds))
	for _, k := range form.Kinds {
		names = append(names, string(k))
	}
	return strings.Join(names, ", ")
}
