package client

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"budget/internal/core"
)

const displayDate = "2 Jan 2006"

// RenderSummary writes the income, expense and balance cards.
func RenderSummary(w io.Writer, s core.Summary) error {
	tw := tabwriter.NewWriter(w, 0, 0, 3, ' ', 0)
	fmt.Fprintln(tw, "INCOME\tEXPENSE\tBALANCE")
	fmt.Fprintf(tw, "$%s\t$%s\t%s\n", core.FormatAmount(s.Income), core.FormatAmount(s.Expense), signedDollars(s.Balance))
	return tw.Flush()
}

// RenderList writes items in the order given, one row per record.
func RenderList(w io.Writer, items []core.Transaction) error {
	if len(items) == 0 {
		_, err := fmt.Fprintln(w, "No transactions yet.")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tDATE\tDESCRIPTION\tCATEGORY\tAMOUNT")
	for _, t := range items {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", t.ID, formatDate(t.Date), t.Text, t.Category, itemAmount(t))
	}
	return tw.Flush()
}

// itemAmount shows + for income and - for everything else, zero included.
func itemAmount(t core.Transaction) string {
	if t.IsIncome() {
		return "+$" + core.FormatAmount(t.Amount)
	}
	return "-$" + core.FormatAmount(t.Amount)
}

func signedDollars(v float64) string {
	if v < 0 {
		return "-$" + core.FormatAmount(v)
	}
	return "$" + core.FormatAmount(v)
}

func formatDate(s string) string {
	d, err := time.Parse(core.DateLayout, s)
	if err != nil {
		return s
	}
	return d.Format(displayDate)
}
