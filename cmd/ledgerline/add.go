package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"ledgerline/internal/core"
)

func newAddCmd(a *app) *cobra.Command {
	var (
		amount      string
		direction   string
		date        string
		category    int64
		description string
		undated     bool
	)
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record a transaction and refresh modes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			amt, err := core.ParseAmount(amount)
			if err != nil {
				return fmt.Errorf("amount %q: %w", amount, err)
			}
			dir, err := core.ParseDirection(direction)
			if err != nil {
				return fmt.Errorf("direction %q: %w", direction, err)
			}

			tx := core.Transaction{
				UserID:      a.userID,
				Amount:      amt,
				Direction:   dir,
				Description: description,
			}
			if category > 0 {
				tx.CategoryID = &category
			}
			if !undated {
				on, err := a.refTime()
				if date != "" {
					on, err = parseTime(date, a.cfg.Location())
				}
				if err != nil {
					return err
				}
				tx.Date = &on
			}

			saved, unlocked, err := a.backend.Transactions.AddTransaction(a.ctx(cmd), tx)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Recorded %s %s (#%d)\n", saved.Direction, core.FormatMoney(saved.Amount), saved.ID)
			for _, rec := range unlocked {
				fmt.Fprintf(a.out, "%s %s unlocked!\n", rec.Icon, rec.Name.DisplayName())
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&amount, "amount", "a", "", "amount, e.g. 12.50 or 12,50")
	cmd.Flags().StringVarP(&direction, "direction", "d", "expense", "income or expense")
	cmd.Flags().StringVar(&date, "date", "", "transaction date (YYYY-MM-DD or RFC3339), defaults to --at or now")
	cmd.Flags().Int64Var(&category, "category", 0, "category id")
	cmd.Flags().StringVar(&description, "desc", "", "description")
	cmd.Flags().BoolVar(&undated, "undated", false, "store the transaction without a date")
	_ = cmd.MarkFlagRequired("amount")
	return cmd
}
