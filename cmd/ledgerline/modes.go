package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"ledgerline/internal/core"
	"ledgerline/internal/modes"
)

func newRefreshCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Re-evaluate every mode and record the changes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ref, err := a.refTime()
			if err != nil {
				return err
			}
			unlocked, err := a.backend.Modes.RefreshAt(a.ctx(cmd), a.userID, ref)
			if err != nil {
				return err
			}
			if len(unlocked) == 0 {
				fmt.Fprintln(a.out, "No modes newly unlocked.")
				return nil
			}
			for _, rec := range unlocked {
				fmt.Fprintf(a.out, "%s %s unlocked!\n", rec.Icon, rec.Name.DisplayName())
			}
			return nil
		},
	}
}

func newEvaluateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "evaluate",
		Short: "Show what every mode would be right now without saving anything",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ref, err := a.refTime()
			if err != nil {
				return err
			}
			eval, err := a.backend.Modes.EvaluateAt(a.ctx(cmd), a.userID, ref)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "MODE\tUNLOCKED\tPROGRESS\tNOTES")
			for _, r := range eval.Results {
				fmt.Fprintf(w, "%s %s\t%s\t%d%%\t%s\n", r.Icon, r.Name, yesNo(r.Unlocked), r.Progress, r.Notes)
			}
			return w.Flush()
		},
	}
}

func newStatusCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "List the stored state of every mode",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			recs, err := a.backend.Modes.Status(a.ctx(cmd), a.userID)
			if err != nil {
				return err
			}
			if len(recs) == 0 {
				fmt.Fprintln(a.out, "No modes yet, run `ledgerline refresh` first.")
				return nil
			}
			w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "MODE\tUNLOCKED\tPROGRESS\tTRIGGERED")
			for _, rec := range recs {
				triggered := "-"
				if rec.TriggeredOn != nil {
					triggered = humanize.Time(*rec.TriggeredOn)
				}
				fmt.Fprintf(w, "%s %s\t%s\t%d%%\t%s\n", rec.Icon, rec.Name.DisplayName(), yesNo(rec.IsUnlocked), rec.Progress, triggered)
			}
			return w.Flush()
		},
	}
}

func newHistoryCmd(a *app) *cobra.Command {
	var mode string
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show mode history, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			evs, err := a.backend.Modes.EventsFor(a.ctx(cmd), a.userID, mode)
			if err != nil {
				return err
			}
			if len(evs) == 0 {
				fmt.Fprintln(a.out, "No history.")
				return nil
			}
			printEvents(a, evs)
			return nil
		},
	}
	cmd.Flags().StringVarP(&mode, "mode", "m", "", "only show this mode")
	return cmd
}

func newDashboardCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard <mode>",
		Short: "Show the record, current evaluation, history and tips of one mode",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := a.backend.Modes.Dashboard(a.ctx(cmd), a.userID, args[0])
			if err != nil {
				return err
			}
			if d == nil {
				fmt.Fprintf(a.out, "No data for %q.\n", args[0])
				return nil
			}

			rec := d.Record
			fmt.Fprintf(a.out, "%s %s\n%s\n\n", rec.Icon, rec.Name.DisplayName(), rec.Description)
			fmt.Fprintf(a.out, "Stored:  %s, %d%%\n", lockState(rec.IsUnlocked), rec.Progress)
			fmt.Fprintf(a.out, "Current: %s, %d%% (%s)\n", lockState(d.Current.Unlocked), d.Current.Progress, d.Current.Notes)
			if rec.TriggeredOn != nil {
				fmt.Fprintf(a.out, "Last unlocked %s\n", humanize.Time(*rec.TriggeredOn))
			}
			if len(d.Progress) > 0 {
				fmt.Fprintf(a.out, "\nProgress changes: %s\n", humanize.Comma(int64(len(d.Progress))))
			}
			if len(d.History) > 0 {
				fmt.Fprintln(a.out, "\nHistory:")
				printEvents(a, d.History)
			}
			if len(d.Tips) > 0 {
				fmt.Fprintln(a.out, "\nTips:")
				for _, tip := range d.Tips {
					fmt.Fprintf(a.out, "  - %s\n", tip)
				}
			}
			return nil
		},
	}
}

func newTipsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:         "tips <mode>",
		Short:       "Show advice for a mode",
		Args:        cobra.ExactArgs(1),
		Annotations: map[string]string{skipBackend: "true"},
		RunE: func(_ *cobra.Command, args []string) error {
			tips := modes.Tips(args[0])
			if len(tips) == 0 {
				fmt.Fprintf(a.out, "No tips for %q.\n", args[0])
				return nil
			}
			for _, tip := range tips {
				fmt.Fprintf(a.out, "- %s\n", tip)
			}
			return nil
		},
	}
}

func printEvents(a *app, evs []core.HistoryEvent) {
	w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "WHEN\tMODE\tCHANGE\tPROGRESS\tDETAILS")
	for _, ev := range evs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d%%\t%s\n",
			ev.Timestamp.Format(time.DateTime), ev.Mode, ev.StatusChange, ev.Progress, ev.Details)
	}
	_ = w.Flush()
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func lockState(unlocked bool) string {
	if unlocked {
		return "unlocked"
	}
	return "locked"
}
