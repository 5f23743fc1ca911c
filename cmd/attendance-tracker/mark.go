package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
	"github.com/username/attendance-tracker/internal/calendar"
	"github.com/username/attendance-tracker/pkg/dateutil"
	"go.uber.org/zap"
)

func markCmd() *cobra.Command {
	var fromStr string
	var toStr string

	cmd := &cobra.Command{
		Use:   "mark [DATE]",
		Short: "Toggle attendance for a day, or mark a range present",
		Long: "Toggle attendance for DATE (default: today). With --from and --to every day " +
			"in the range is marked present, Sundays and holidays included. " +
			"Dates may also be given as today, yesterday or tomorrow.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			if fromStr != "" || toStr != "" {
				if fromStr == "" || toStr == "" {
					return fmt.Errorf("both --from and --to must be specified")
				}
				if len(args) > 0 {
					return fmt.Errorf("DATE cannot be combined with --from/--to")
				}
				from, err := resolveDate(fromStr)
				if err != nil {
					return err
				}
				to, err := resolveDate(toStr)
				if err != nil {
					return err
				}

				a, err := initializeApp()
				if err != nil {
					return err
				}
				defer a.Close()

				record, added, err := a.repo.MarkAttendanceRange(cmd.Context(), from, to)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "✅ Marked %d new day(s) present (%s .. %s)\n", added, from, to)
				if summary := currentSummary(a, record, dateutil.Today()); summary != "" {
					fmt.Fprintf(out, "   %s\n", summary)
				}
				return nil
			}

			dateArg := ""
			if len(args) > 0 {
				dateArg = args[0]
			}
			date, err := resolveDate(dateArg)
			if err != nil {
				return err
			}

			a, err := initializeApp()
			if err != nil {
				return err
			}
			defer a.Close()

			record, attended, err := a.repo.ToggleAttendance(cmd.Context(), date)
			if err != nil {
				return err
			}
			if attended {
				fmt.Fprintf(out, "✅ %s marked present\n", date)
			} else {
				fmt.Fprintf(out, "↩️  %s unmarked\n", date)
			}
			if record.IsHoliday(date) {
				fmt.Fprintf(out, "   note: %s is a holiday\n", date)
			}
			if summary := currentSummary(a, record, dateutil.Today()); summary != "" {
				fmt.Fprintf(out, "   %s\n", summary)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&fromStr, "from", "", "Range start date")
	cmd.Flags().StringVar(&toStr, "to", "", "Range end date (inclusive)")

	return cmd
}

func holidayCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "holiday",
		Short: "Manage holidays",
	}

	cmd.AddCommand(holidayAddCmd())
	cmd.AddCommand(holidayRemoveCmd())
	cmd.AddCommand(holidayListCmd())
	cmd.AddCommand(holidayImportCmd())

	return cmd
}

func holidayAddCmd() *cobra.Command {
	var toStr string

	cmd := &cobra.Command{
		Use:   "add DATE",
		Short: "Declare a holiday, or a range with --to",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			from, err := resolveDate(args[0])
			if err != nil {
				return err
			}
			to := from
			if toStr != "" {
				if to, err = resolveDate(toStr); err != nil {
					return err
				}
			}

			a, err := initializeApp()
			if err != nil {
				return err
			}
			defer a.Close()

			_, added, err := a.repo.AddHolidayRange(cmd.Context(), from, to)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "🏖  Added %d holiday(s) (%s .. %s)\n", added, from, to)
			return nil
		},
	}

	cmd.Flags().StringVar(&toStr, "to", "", "Range end date (inclusive)")

	return cmd
}

func holidayRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove DATE",
		Short: "Remove a holiday",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			date, err := resolveDate(args[0])
			if err != nil {
				return err
			}

			a, err := initializeApp()
			if err != nil {
				return err
			}
			defer a.Close()

			_, removed, err := a.repo.RemoveHoliday(cmd.Context(), date)
			if err != nil {
				return err
			}
			if !removed {
				fmt.Fprintf(cmd.OutOrStdout(), "%s is not a holiday\n", date)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed holiday %s\n", date)
			return nil
		},
	}
}

func holidayListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List holidays",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := initializeApp()
			if err != nil {
				return err
			}
			defer a.Close()

			record := a.repo.Load(cmd.Context())
			out := cmd.OutOrStdout()

			if len(record.Holidays) == 0 {
				fmt.Fprintln(out, "No holidays declared")
				return nil
			}

			holidays := append([]string{}, record.Holidays...)
			sort.Strings(holidays)
			for _, date := range holidays {
				weekday, err := dateutil.Weekday(date)
				if err != nil {
					fmt.Fprintf(out, "  %s  (invalid)\n", date)
					continue
				}
				fmt.Fprintf(out, "  %s  %s\n", date, weekday.String()[:3])
			}
			fmt.Fprintf(out, "\n%d holiday(s)\n", len(holidays))
			return nil
		},
	}
}

func holidayImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import [FILE]",
		Short: "Import holidays from a file",
		Long: "Import holidays from FILE (default: storage.holidays_file). " +
			"Each line is 'YYYY-MM-DD [note]' or 'YYYY-MM-DD..YYYY-MM-DD [note]'; '#' starts a comment.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := initializeApp()
			if err != nil {
				return err
			}
			defer a.Close()

			path := a.cfg.Storage.HolidaysFile
			if len(args) > 0 {
				path = args[0]
			}
			if path == "" {
				return fmt.Errorf("no holiday file given and storage.holidays_file is not set")
			}

			file := calendar.NewFileCalendar(path, logger)
			if err := file.Load(); err != nil {
				return err
			}

			_, added, err := a.repo.ImportHolidays(cmd.Context(), file.Dates())
			if err != nil {
				return err
			}

			logger.Info("Holidays imported",
				zap.String("file", path),
				zap.Int("read", len(file.Holidays())),
				zap.Int("added", added))

			out := cmd.OutOrStdout()
			for _, h := range file.Holidays() {
				if h.Note != "" {
					fmt.Fprintf(out, "  %s  %s\n", h.Date, h.Note)
				} else {
					fmt.Fprintf(out, "  %s\n", h.Date)
				}
			}
			fmt.Fprintf(out, "🏖  Imported %d new holiday(s) from %s (%d read)\n", added, path, len(file.Holidays()))
			return nil
		},
	}
}
