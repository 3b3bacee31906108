package main

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/dukerupert/listwise/internal/domain"
	"github.com/dukerupert/listwise/internal/state"
	"github.com/dukerupert/listwise/internal/stats"
)

func money(v float64) string {
	return fmt.Sprintf("%.2f", v)
}

func renderLists(w io.Writer, lists []domain.ShoppingList) {
	if len(lists) == 0 {
		fmt.Fprintln(w, "No lists")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tSTATUS\tITEMS\tTOTAL\tBUDGET")
	for _, l := range lists {
		name := l.Name
		if l.IsPinned {
			name = "* " + name
		}
		budget := "-"
		if l.ListBudget != nil {
			budget = fmt.Sprintf("%s (%.0f%%)", money(*l.ListBudget), stats.BudgetUsage(l))
		}
		status := string(l.Status)
		if status == "" {
			status = string(domain.StatusActive)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\t%s\n", l.ID, name, status, len(l.Items), money(stats.ListTotal(l)), budget)
	}
	tw.Flush()
}

func renderList(w io.Writer, l domain.ShoppingList, hidePurchased bool) {
	fmt.Fprintf(w, "%s  [%s]\n", l.Name, l.Category)
	groups := stats.GroupItems(l, hidePurchased)
	if len(groups) == 0 {
		fmt.Fprintln(w, "  (no items)")
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, g := range groups {
		fmt.Fprintf(tw, "%s\n", g.Category)
		for _, it := range g.Items {
			mark := "[ ]"
			if it.IsPurchased {
				mark = "[x]"
			}
			fmt.Fprintf(tw, "  %s %s\t%d x %s\t%s\t%s\n", mark, it.Name, it.Quantity, money(it.UnitPrice), money(it.Total()), it.ID)
		}
	}
	tw.Flush()

	fmt.Fprintf(w, "Total: %s", money(stats.ListTotal(l)))
	if left, ok := stats.Remaining(l); ok {
		fmt.Fprintf(w, "  Budget: %s  Used: %.2f%%  Left: %s", money(*l.ListBudget), stats.BudgetUsage(l), money(left))
	}
	fmt.Fprintln(w)
}

// renderMonth prints the current month's budget against completed spend.
func renderMonth(w io.Writer, st state.State, now time.Time) {
	year, month := domain.Period(now)
	spent := stats.MonthSpent(st.Lists, year, month, now.Location())
	b := stats.BudgetFor(st.Budgets, year, month)
	if b == nil {
		fmt.Fprintf(w, "\n%04d-%02d spent: %s (no budget set)\n", year, month, money(spent))
		return
	}
	fmt.Fprintf(w, "\n%04d-%02d spent: %s of %s\n", year, month, money(spent), money(b.Amount))
}

func renderStats(w io.Writer, lists []domain.ShoppingList) {
	d := stats.Summarize(lists)
	fmt.Fprintf(w, "Total spent:        %s\n", money(d.TotalSpent))
	fmt.Fprintf(w, "Completed lists:    %d\n", d.CompletedLists)
	fmt.Fprintf(w, "Most purchased:     %s\n", d.MostPurchasedItem)
	fmt.Fprintf(w, "Top category:       %s\n", d.TopSpendingCategory)

	done := stats.Completed(lists)
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	if cats := stats.CategorySpending(done); len(cats) > 0 {
		fmt.Fprintln(tw, "\nCATEGORY\tSPENT")
		for _, c := range cats {
			fmt.Fprintf(tw, "%s\t%s\n", c.Category, money(c.Total))
		}
	}
	if months := stats.MonthlySpending(done, time.Local); len(months) > 0 {
		fmt.Fprintln(tw, "\nMONTH\tSPENT")
		for _, m := range months {
			fmt.Fprintf(tw, "%s\t%s\n", m.Month, money(m.Total))
		}
	}
	if products := stats.ProductDetails(done); len(products) > 0 {
		fmt.Fprintln(tw, "\nPRODUCT\tQTY\tSPENT\tAVG PRICE")
		for _, p := range products {
			fmt.Fprintf(tw, "%s\t%d\t%s\t%s\n", p.Name, p.Quantity, money(p.TotalSpent), money(p.AveragePrice))
		}
	}
	tw.Flush()
}
