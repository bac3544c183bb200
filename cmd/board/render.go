package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/Nixie-Tech-LLC/masjid/internal/model"
	"github.com/Nixie-Tech-LLC/masjid/internal/notify"
	"github.com/Nixie-Tech-LLC/masjid/internal/state"
)

type boardFrame struct {
	Page   model.BoardPage
	Status state.Status
	Note   notify.Notification
	Now    time.Time
}

func renderBoard(w io.Writer, f boardFrame) {
	fmt.Fprintf(w, "%s  %s\n", f.Page.Date, f.Now.Format("15:04:05"))
	switch {
	case f.Status.Degraded:
		fmt.Fprintln(w, "(offline: showing built-in schedule)")
	case f.Status.Stale:
		fmt.Fprintf(w, "(last synced %s)\n", f.Status.LastSyncedAt.Format("15:04"))
	}
	fmt.Fprintln(w)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, p := range f.Page.Prayers {
		marker := " "
		if f.Page.Next != nil && f.Page.Next.Prayer.ID == p.ID {
			marker = ">"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", marker, p.Name, p.Time)
	}
	tw.Flush()

	if f.Page.Next != nil {
		fmt.Fprintf(w, "\nNext: %s in %s\n", f.Page.Next.Prayer.Name, countdown(f.Page.Next.Remaining))
	}

	if len(f.Page.Events) > 0 {
		fmt.Fprintln(w, "\nUpcoming")
		tw = tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		for _, e := range f.Page.Events {
			fmt.Fprintf(tw, "  %s\t%s\t%s\n", e.Date, e.Time, e.Title)
		}
		tw.Flush()
	}

	fmt.Fprintf(w, "\nBalance: %s\n", rupiah(f.Page.Finance.Balance))

	if f.Note.Message != "" {
		fmt.Fprintf(w, "\n[%s] %s\n", f.Note.Kind, f.Note.Message)
	}
}

// countdown renders a duration as HH:MM:SS, rounding up to the next second.
func countdown(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	secs := int64((d + time.Second - 1) / time.Second)
	return fmt.Sprintf("%02d:%02d:%02d", secs/3600, secs%3600/60, secs%60)
}

// rupiah formats whole units with dot thousands separators: Rp 2.500.000.
func rupiah(m model.Money) string {
	units := int64(m) / 100
	sign := ""
	if units < 0 {
		sign = "-"
		units = -units
	}
	digits := fmt.Sprintf("%d", units)
	var b strings.Builder
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	return sign + "Rp " + b.String()
}

func renderPrayers(w io.Writer, prayers []model.PrayerTime) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tTIME\tACTIVE")
	for _, p := range prayers {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%t\n", p.ID, p.Name, p.Time, p.IsActive)
	}
	tw.Flush()
}

func renderEvents(w io.Writer, events []model.Event) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tDATE\tTIME\tTITLE\tIMAGE")
	for _, e := range events {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", e.ID, e.Date, e.Time, e.Title, e.ImageURL)
	}
	tw.Flush()
}

func renderTransactions(w io.Writer, txs []model.Transaction, summary model.FinanceSummary) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tDATE\tTYPE\tAMOUNT\tTITLE")
	for _, t := range txs {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", t.ID, t.Date, t.Type, rupiah(t.Amount), t.Title)
	}
	tw.Flush()
	fmt.Fprintf(w, "\nIncome:  %s\nExpense: %s\nBalance: %s\n",
		rupiah(summary.Income), rupiah(summary.Expense), rupiah(summary.Balance))
}
