package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"ledgerline/internal/backend"
	"ledgerline/internal/cli"
	"ledgerline/internal/config"
	"ledgerline/internal/log"
)

// skipBackend marks commands that run without opening the store.
const skipBackend = "skip-backend"

type app struct {
	out     io.Writer
	cfg     *config.Config
	logger  *log.Logger
	backend *backend.Backend

	userID int64
	at     string
}

func newRootCmd(out io.Writer) *cobra.Command {
	a := &app{out: out}

	root := &cobra.Command{
		Use:   "ledgerline",
		Short: "Financial mode tracking over your transactions",
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := cli.LoadConfig()
			if err != nil {
				return err
			}
			a.cfg = cfg
			a.logger, err = cli.SetupLogger(cfg.LogLevel, os.Stderr, log.ComponentCLI)
			if err != nil {
				return err
			}
			if cmd.Annotations[skipBackend] == "true" {
				return nil
			}
			opts := backend.Options{}
			if a.at != "" {
				ref, err := a.refTime()
				if err != nil {
					return err
				}
				opts.Clock = func() time.Time { return ref }
			}
			a.backend, err = backend.New(cmd.Context(), cfg, opts)
			return err
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			if a.backend == nil {
				return nil
			}
			return a.backend.Cleanup()
		},
	}
	root.SetOut(out)
	root.PersistentFlags().Int64VarP(&a.userID, "user", "u", 1, "user id")
	root.PersistentFlags().StringVar(&a.at, "at", "", "reference time (YYYY-MM-DD or RFC3339), defaults to now")

	root.AddCommand(
		newRefreshCmd(a),
		newEvaluateCmd(a),
		newStatusCmd(a),
		newHistoryCmd(a),
		newDashboardCmd(a),
		newTipsCmd(a),
		newAddCmd(a),
	)
	return root
}

// refTime resolves --at in the evaluation time zone.
func (a *app) refTime() (time.Time, error) {
	if a.at == "" {
		return time.Now().In(a.cfg.Location()), nil
	}
	return parseTime(a.at, a.cfg.Location())
}

func parseTime(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.In(loc), nil
	}
	t, err := time.ParseInLocation(time.DateOnly, s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time %q: want YYYY-MM-DD or RFC3339", s)
	}
	return t, nil
}

func (a *app) ctx(cmd *cobra.Command) context.Context {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return log.WithContext(ctx, a.logger)
}
