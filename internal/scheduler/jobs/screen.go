package jobs

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/wonny/nse-screener/internal/export"
	"github.com/wonny/nse-screener/internal/selection"
	"github.com/wonny/nse-screener/pkg/logger"
)

// Screener runs one screen
type Screener interface {
	Screen(ctx context.Context) (*selection.Result, error)
	Mode() selection.Mode
}

// ScreenJob runs a screen and writes a dated CSV per run
type ScreenJob struct {
	screener Screener
	index    string
	schedule string
	outDir   string
	now      func() time.Time
	logger   *logger.Logger
}

// NewScreenJob creates a new screen job
func NewScreenJob(screener Screener, index, schedule, outDir string, log *logger.Logger) *ScreenJob {
	return &ScreenJob{
		screener: screener,
		index:    index,
		schedule: schedule,
		outDir:   outDir,
		now:      time.Now,
		logger:   log,
	}
}

// Name returns the job name
func (j *ScreenJob) Name() string {
	return fmt.Sprintf("screen_%s_%s", j.index, j.screener.Mode())
}

// Schedule returns the cron schedule
func (j *ScreenJob) Schedule() string {
	return j.schedule
}

// OutputPath returns the CSV path for a run started at t
func (j *ScreenJob) OutputPath(t time.Time) string {
	name := fmt.Sprintf("%s_%s_%s.csv", j.index, j.screener.Mode(), t.Format("20060102_1504"))
	return filepath.Join(j.outDir, name)
}

// Run executes the screen and exports the result
func (j *ScreenJob) Run(ctx context.Context) error {
	started := j.now()
	j.logger.WithField("job", j.Name()).Info("Starting scheduled screen")

	res, err := j.screener.Screen(ctx)
	if err != nil {
		return fmt.Errorf("screen: %w", err)
	}

	path := j.OutputPath(started)
	if err := export.WriteFiles(path, res); err != nil {
		return fmt.Errorf("export: %w", err)
	}

	j.logger.WithFields(map[string]interface{}{
		"run_id": res.RunID.String(),
		"rows":   len(res.Rows),
		"path":   path,
	}).Info("Scheduled screen written")

	return nil
}
