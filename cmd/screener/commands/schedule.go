package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/nse-screener/internal/scheduler"
	"github.com/wonny/nse-screener/internal/scheduler/jobs"
)

var (
	scheduleCron     string
	scheduleOutDir   string
	scheduleTimezone string
	scheduleRunNow   bool
	scheduleSell     bool
)

// scheduleCmd runs screens on a cron schedule until interrupted
var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Run the screen on a cron schedule",
	Long: `Start a long-running process that screens on a cron schedule and
writes <INDEX>_<mode>_<YYYYMMDD_HHMM>.csv into --out-dir.

The cron expression has five fields (minute hour day month weekday) or
is a descriptor such as @daily. Times are evaluated in --tz.

Press Ctrl+C to stop.`,
	RunE: runSchedule,
}

func init() {
	rootCmd.AddCommand(scheduleCmd)

	scheduleCmd.Flags().StringVar(&scheduleCron, "cron", "30 16 * * 1-5", "cron expression")
	scheduleCmd.Flags().StringVar(&scheduleOutDir, "out-dir", "results", "directory for dated CSV files")
	scheduleCmd.Flags().StringVar(&scheduleTimezone, "tz", "Asia/Kolkata", "time zone for the schedule")
	scheduleCmd.Flags().BoolVar(&scheduleRunNow, "run-now", false, "run once immediately before waiting for the schedule")
	scheduleCmd.Flags().BoolVar(&scheduleSell, "sell", false, "schedule the sell-side review instead of the buy screen")
}

func runSchedule(cmd *cobra.Command, args []string) error {
	if err := scheduler.ValidateSchedule(scheduleCron); err != nil {
		return err
	}
	loc, err := time.LoadLocation(scheduleTimezone)
	if err != nil {
		return fmt.Errorf("load time zone: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	cfg := a.screen
	if err := a.validate(cfg); err != nil {
		return err
	}

	runner := a.runner(cfg, resolveMode(!scheduleSell, scheduleSell))
	job := jobs.NewScreenJob(runner, cfg.Universe.Name, scheduleCron, scheduleOutDir, a.logger)

	sched := scheduler.New(a.logger, scheduler.WithLocation(loc))
	if err := sched.AddJob(job); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if scheduleRunNow {
		result, err := sched.RunJob(ctx, job.Name())
		if err != nil {
			return err
		}
		if !result.Success {
			PrintWarning(out, fmt.Sprintf("Initial run failed: %s", result.Error))
		}
	}

	sched.Start()
	next, _ := sched.Next(job.Name())

	PrintDoubleSeparator(out)
	PrintKeyValue(out, "Job", job.Name(), 10)
	PrintKeyValue(out, "Schedule", fmt.Sprintf("%s (%s)", scheduleCron, loc), 10)
	PrintKeyValue(out, "Next run", next.Format(time.RFC1123), 10)
	PrintKeyValue(out, "Output", scheduleOutDir, 10)
	PrintDoubleSeparator(out)
	fmt.Fprintln(out, "Press Ctrl+C to stop")

	<-ctx.Done()
	sched.Stop()

	for name, st := range sched.GetJobStats() {
		a.logger.WithFields(map[string]interface{}{
			"job":          name,
			"total_runs":   st.TotalRuns,
			"success_rate": st.SuccessRate,
		}).Info("Scheduler summary")
	}

	return nil
}
