package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/username/attendance-tracker/internal/attendance"
	"github.com/username/attendance-tracker/internal/daemon"
	"go.uber.org/zap"
)

func initCmd() *cobra.Command {
	var profile attendance.Profile
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a fresh attendance record",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := initializeApp()
			if err != nil {
				return err
			}
			defer a.Close()

			onboarded, err := a.repo.IsOnboarded(cmd.Context())
			if err != nil {
				return err
			}
			if onboarded && !force {
				return fmt.Errorf("already initialized; use --force to start over")
			}

			record, err := a.repo.Initialize(cmd.Context(), profile)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "👋 Welcome, %s!\n", record.UserName)
			for _, phase := range record.Phases {
				fmt.Fprintf(out, "   %-16s %s .. %s\n", phase.Name, phase.Start, phase.End)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&profile.UserName, "name", "", "Your name (required)")
	cmd.Flags().StringVar(&profile.ProjectTitle, "project", "", "Project title")
	cmd.Flags().StringVar(&profile.GuideName, "guide", "", "Guide name")
	cmd.Flags().StringVar(&profile.CabinNo, "cabin", "", "Cabin number")
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing record")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func profileCmd() *cobra.Command {
	var project, guide, cabin string

	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Show or update project details",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := initializeApp()
			if err != nil {
				return err
			}
			defer a.Close()

			ctx := cmd.Context()
			record := a.repo.Load(ctx)

			flags := cmd.Flags()
			if flags.Changed("project") || flags.Changed("guide") || flags.Changed("cabin") {
				if !flags.Changed("project") {
					project = record.ProjectTitle
				}
				if !flags.Changed("guide") {
					guide = record.GuideName
				}
				if !flags.Changed("cabin") {
					cabin = record.CabinNo
				}
				if record, err = a.repo.UpdateProfile(ctx, project, guide, cabin); err != nil {
					return err
				}
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Name:    %s\n", record.UserName)
			fmt.Fprintf(out, "Project: %s\n", record.ProjectTitle)
			fmt.Fprintf(out, "Guide:   %s\n", record.GuideName)
			fmt.Fprintf(out, "Cabin:   %s\n", record.CabinNo)
			return nil
		},
	}

	cmd.Flags().StringVar(&project, "project", "", "Project title")
	cmd.Flags().StringVar(&guide, "guide", "", "Guide name")
	cmd.Flags().StringVar(&cabin, "cabin", "", "Cabin number")

	return cmd
}

func resetCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete all attendance data",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if !yes && !confirm(cmd.InOrStdin(), out, "This deletes all attendance data. Type 'yes' to continue: ") {
				fmt.Fprintln(out, "Aborted")
				return nil
			}

			a, err := initializeApp()
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.repo.Reset(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(out, "🗑  All data deleted")
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")

	return cmd
}

func confirm(in io.Reader, out io.Writer, prompt string) bool {
	fmt.Fprint(out, prompt)
	answer, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && answer == "" {
		return false
	}
	return strings.EqualFold(strings.TrimSpace(answer), "yes")
}

func remindCmd() *cobra.Command {
	var test bool

	cmd := &cobra.Command{
		Use:   "remind",
		Short: "Run the daily reminder daemon",
		Long:  "Remind to mark attendance on configured weekdays at reminder.daily_time. --test sends one reminder now.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := initializeApp()
			if err != nil {
				return err
			}
			defer a.Close()

			hour, minute := a.cfg.Reminder.GetDailyTime()
			notifier := daemon.MultiNotifier(
				daemon.NewLogNotifier(logger),
				&consoleNotifier{out: cmd.OutOrStdout()},
			)
			d := daemon.NewDaemon(a.repo, a.calculator, notifier, daemon.Options{
				DailyHour:     hour,
				DailyMinute:   minute,
				Weekdays:      a.cfg.Reminder.GetWeekdays(),
				CheckInterval: a.cfg.Reminder.GetCheckInterval(),
				SystemTray:    a.cfg.Reminder.SystemTray,
			}, logger)

			if test {
				_, err := d.RemindNow(cmd.Context())
				return err
			}

			logger.Info("Starting reminder daemon", zap.Bool("system_tray", a.cfg.Reminder.SystemTray))
			return d.Start()
		},
	}

	cmd.Flags().BoolVar(&test, "test", false, "Send one reminder immediately and exit")

	return cmd
}

// consoleNotifier prints notifications for the foreground daemon
type consoleNotifier struct {
	out io.Writer
}

func (cn *consoleNotifier) Notify(ctx context.Context, n daemon.Notification) error {
	_, err := fmt.Fprintf(cn.out, "🔔 %s (%s)\n%s\n", n.Title, n.At.Format("2006-01-02 15:04"), n.Body)
	return err
}
