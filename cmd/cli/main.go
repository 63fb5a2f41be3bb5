package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/bandhq/backline/internal/config"
	"github.com/bandhq/backline/pkg/core/calendar"
	"github.com/bandhq/backline/pkg/core/state"
	"github.com/bandhq/backline/pkg/db"
	"github.com/bandhq/backline/pkg/eventcache"
	"github.com/bandhq/backline/pkg/postgres"
	"github.com/bandhq/backline/pkg/utils/logging"
)

// App holds the application dependencies
type App struct {
	cfg        *config.Config
	store      *postgres.DB
	controller *state.Controller
	logger     *zap.Logger
	ctx        context.Context
}

var (
	env string
	app *App
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "backline",
		Short: "Backline CLI - Band calendar and availability",
		Long:  `A CLI tool for viewing a band's calendar of gigs, rehearsals and member block-outs, and managing the underlying events.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initApp()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if app != nil && app.logger != nil {
				app.logger.Sync()
			}
			if app != nil && app.store != nil {
				app.store.Close()
			}
		},
	}

	rootCmd.PersistentFlags().StringVarP(&env, "env", "e", "", "Environment (required: test, prod, etc.)")
	rootCmd.MarkPersistentFlagRequired("env")

	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(showCalendarCmd())
	rootCmd.AddCommand(listBlockOutsCmd())
	rootCmd.AddCommand(listMembersCmd())
	rootCmd.AddCommand(addGigCmd())
	rootCmd.AddCommand(addRehearsalCmd())
	rootCmd.AddCommand(addBlockOutCmd())
	rootCmd.AddCommand(removeEventCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// initApp sets up logger, config, database, and the calendar controller
func initApp() error {
	var err error
	app = &App{
		ctx: context.Background(),
	}

	app.logger, err = logging.InitLogger(env)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	app.logger.Info("Starting application", zap.String("environment", env))

	app.logger.Info("Loading configuration")
	app.cfg, err = config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	app.logger.Debug("Configuration loaded successfully")

	app.logger.Info("Connecting to database")
	app.store, err = postgres.NewDB(app.ctx, app.cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	app.logger.Debug("Database connection established")

	cache := eventcache.New(time.Duration(app.cfg.CacheTTLMinutes)*time.Minute, nil)
	app.controller = state.NewController(app.store, app.store, cache, app.logger, state.Options{
		HorizonMonths: app.cfg.RecurrenceHorizonMonths,
	})

	return nil
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.store.RunMigrations(app.ctx); err != nil {
				return fmt.Errorf("failed to run migrations: %w", err)
			}
			fmt.Println("Migrations applied.")
			return nil
		},
	}
}

func showCalendarCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "showCalendar <band_id>",
		Short: "Show a band's calendar for a month",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			bandID := args[0]
			monthFlag, _ := cmd.Flags().GetString("month")

			if err := app.controller.SetBand(app.ctx, bandID); err != nil {
				return err
			}

			if monthFlag != "" {
				t, err := time.Parse("2006-01", monthFlag)
				if err != nil {
					return fmt.Errorf("month must be YYYY-MM: %w", err)
				}
				app.controller.SelectMonth(t.Year(), t.Month())
			}

			printMonth(app.controller)
			return nil
		},
	}

	cmd.Flags().String("month", "", "Month to show as YYYY-MM (defaults to the current month)")

	return cmd
}

func listBlockOutsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "listBlockOuts <band_id>",
		Short: "List a band's block-outs grouped into spans",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.controller.SetBand(app.ctx, args[0]); err != nil {
				return err
			}

			spans := app.controller.Spans()
			if len(spans) == 0 {
				fmt.Println("No block-outs.")
				return nil
			}

			fmt.Printf("\nFound %d block-out spans:\n\n", len(spans))
			for _, s := range spans {
				dates := string(calendar.DayKeyFor(s.Start))
				if calendar.DayKeyFor(s.End) != calendar.DayKeyFor(s.Start) {
					dates = fmt.Sprintf("%s to %s", dates, calendar.DayKeyFor(s.End))
				}
				reason := s.Reason
				if reason == "" {
					reason = "(no reason)"
				}
				fmt.Printf("- %s: %s - %s\n", s.MemberName, dates, reason)
			}
			fmt.Println()

			return nil
		},
	}
}

func listMembersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "listMembers <band_id>",
		Short: "List a band's members",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			members, err := app.store.ListMembers(app.ctx, args[0])
			if err != nil {
				return fmt.Errorf("failed to list members: %w", err)
			}

			fmt.Printf("\nFound %d members:\n\n", len(members))
			for _, m := range members {
				fmt.Printf("- %s (%s) - %s\n", m.DisplayName, m.ID, m.Role)
			}
			fmt.Println()

			return nil
		},
	}
}

func addGigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "addGig <band_id> <date>",
		Short: "Add a gig on the given date (YYYY-MM-DD)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			date, err := parseDate(args[1])
			if err != nil {
				return err
			}
			startTime, _ := cmd.Flags().GetString("time")
			title, _ := cmd.Flags().GetString("title")
			venue, _ := cmd.Flags().GetString("venue")

			gig := &db.Gig{
				ID:        uuid.New().String(),
				BandID:    args[0],
				Title:     title,
				Venue:     venue,
				Date:      date,
				StartTime: startTime,
			}
			if err := app.store.InsertGig(app.ctx, gig); err != nil {
				return err
			}
			app.controller.InvalidateBand(gig.BandID)

			fmt.Printf("Gig created: %s on %s\n", gig.ID, calendar.DayKeyFor(gig.Date))
			return nil
		},
	}

	cmd.Flags().String("time", "", "Start time as HH:MM")
	cmd.Flags().String("title", "", "Gig title")
	cmd.Flags().String("venue", "", "Venue name")

	return cmd
}

func addRehearsalCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "addRehearsal <band_id> <date>",
		Short: "Add a rehearsal on the given date (YYYY-MM-DD)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			date, err := parseDate(args[1])
			if err != nil {
				return err
			}
			startTime, _ := cmd.Flags().GetString("time")
			location, _ := cmd.Flags().GetString("location")
			setlistID, _ := cmd.Flags().GetString("setlist")
			repeat, _ := cmd.Flags().GetString("repeat")
			if repeat == "" {
				useDefault, _ := cmd.Flags().GetBool("weekly")
				if useDefault {
					repeat = app.cfg.DefaultRehearsalRule
				}
			}

			rehearsal := &db.Rehearsal{
				ID:         uuid.New().String(),
				BandID:     args[0],
				Location:   location,
				Date:       date,
				StartTime:  startTime,
				SetlistID:  setlistID,
				Recurrence: repeat,
			}
			if err := app.store.InsertRehearsal(app.ctx, rehearsal); err != nil {
				return err
			}
			app.controller.InvalidateBand(rehearsal.BandID)

			fmt.Printf("Rehearsal created: %s on %s\n", rehearsal.ID, calendar.DayKeyFor(rehearsal.Date))
			return nil
		},
	}

	cmd.Flags().String("time", "", "Start time as HH:MM")
	cmd.Flags().String("location", "", "Rehearsal location")
	cmd.Flags().String("setlist", "", "Setlist id to practice")
	cmd.Flags().String("repeat", "", "Recurrence rule (RRULE syntax)")
	cmd.Flags().Bool("weekly", false, "Use the configured default rehearsal rule")

	return cmd
}

func addBlockOutCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "addBlockOut <band_id> <member_id> <start_date> [end_date]",
		Short: "Block out one day or an inclusive date range for a member",
		Args:  cobra.RangeArgs(3, 4),
		RunE: func(cmd *cobra.Command, args []string) error {
			bandID, memberID := args[0], args[1]
			start, err := parseDate(args[2])
			if err != nil {
				return err
			}
			end := start
			if len(args) > 3 {
				if end, err = parseDate(args[3]); err != nil {
					return err
				}
			}
			if end.Before(start) {
				return fmt.Errorf("end date %s is before start date %s", args[3], args[2])
			}
			reason, _ := cmd.Flags().GetString("reason")

			// One record per covered day; the calendar groups them back into
			// a span on read.
			var blockOuts []db.BlockOut
			endKey := calendar.DayKeyFor(end)
			for d := start; ; d = d.AddDate(0, 0, 1) {
				blockOuts = append(blockOuts, db.BlockOut{
					ID:       uuid.New().String(),
					MemberID: memberID,
					BandID:   bandID,
					Date:     d,
					Reason:   reason,
				})
				if calendar.DayKeyFor(d) == endKey {
					break
				}
			}

			if err := app.store.InsertBlockOuts(app.ctx, blockOuts); err != nil {
				return err
			}
			app.controller.InvalidateBand(bandID)

			fmt.Printf("Blocked out %d day(s) for member %s\n", len(blockOuts), memberID)
			return nil
		},
	}

	cmd.Flags().String("reason", "", "Free-text reason for the block-out")

	return cmd
}

func removeEventCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "removeEvent <band_id> <kind> <id>",
		Short: "Remove a gig, rehearsal or blockout record by id",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			bandID, kind, id := args[0], args[1], args[2]

			var err error
			switch kind {
			case "gig":
				err = app.store.DeleteGig(app.ctx, id)
			case "rehearsal":
				err = app.store.DeleteRehearsal(app.ctx, id)
			case "blockout":
				err = app.store.DeleteBlockOut(app.ctx, id)
			default:
				return fmt.Errorf("unknown event kind %q (want gig, rehearsal or blockout)", kind)
			}
			if err != nil {
				return err
			}
			app.controller.InvalidateBand(bandID)

			fmt.Printf("Removed %s %s\n", kind, id)
			return nil
		},
	}
}

func parseDate(s string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("date must be YYYY-MM-DD: %w", err)
	}
	return t, nil
}

// printMonth renders the selected month as a grid with per-day marker
// letters (G gig, R rehearsal, B block-out) followed by the month's events.
func printMonth(controller *state.Controller) {
	month := controller.SelectedMonth()
	first := time.Date(month.Year, month.Month, 1, 12, 0, 0, 0, time.Local)

	fmt.Printf("\n%s %d\n", month.Month, month.Year)
	fmt.Println(" Su  Mo  Tu  We  Th  Fr  Sa")

	var line strings.Builder
	line.WriteString(strings.Repeat("    ", int(first.Weekday())))
	for d := first; d.Month() == month.Month; d = d.AddDate(0, 0, 1) {
		markers, _ := controller.MarkersFor(calendar.DayKeyFor(d))
		line.WriteString(fmt.Sprintf("%3d%s", d.Day(), markerFlag(markers)))
		if d.Weekday() == time.Saturday {
			fmt.Println(line.String())
			line.Reset()
		}
	}
	if line.Len() > 0 {
		fmt.Println(line.String())
	}

	events := controller.EventsInSelectedMonth()
	if len(events) == 0 {
		fmt.Println("\nNo events this month.")
		return
	}

	fmt.Printf("\n%d event(s):\n", len(events))
	for _, ev := range events {
		when := string(ev.DayKey())
		if ev.StartTime != "" {
			when = fmt.Sprintf("%s %s", when, ev.StartTime)
		}
		label := ev.Title
		if ev.IsBlockOut() && ev.Span != nil {
			label = fmt.Sprintf("%s unavailable", ev.Span.MemberName)
			if ev.Span.Reason != "" {
				label = fmt.Sprintf("%s (%s)", label, ev.Span.Reason)
			}
		}
		fmt.Printf("  %-11s %-10s %s\n", when, ev.Kind, label)
	}
	fmt.Println()
}

func markerFlag(m calendar.DayMarkers) string {
	switch {
	case m.Gig:
		return "G"
	case m.Rehearsal:
		return "R"
	case m.BlockOut:
		return "B"
	default:
		return " "
	}
}
