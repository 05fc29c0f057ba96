package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/feedwire-hq/feedharvest/internal/config"
	"github.com/feedwire-hq/feedharvest/internal/dataset"
	"github.com/feedwire-hq/feedharvest/internal/fetch"
	"github.com/feedwire-hq/feedharvest/internal/harvest"
	"github.com/feedwire-hq/feedharvest/internal/logger"
	"github.com/feedwire-hq/feedharvest/internal/weekly"
	"github.com/feedwire-hq/feedharvest/pkg/fetchcache"
	"github.com/feedwire-hq/feedharvest/pkg/httpclient"
	"github.com/feedwire-hq/feedharvest/pkg/notify"
	"github.com/feedwire-hq/feedharvest/pkg/sources"
)

var cfgFile string

func main() {
	root := &cobra.Command{
		Use:   "feedharvest",
		Short: "Harvest syndication feeds into dated CSV datasets",
	}
	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file path")
	root.AddCommand(newDailyCmd(), newWeeklyCmd())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newDailyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "daily",
		Short: "Harvest yesterday's articles into a daily dataset file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDaily(cmd.Context())
		},
	}
}

func newWeeklyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "weekly",
		Short: "Aggregate last week's daily files into a weekly rollup",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runWeekly(cmd.Context())
		},
	}
}

func runDaily(ctx context.Context) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	log := logger.MustNew(cfg.LogLevel)

	reg, err := sources.Load(cfg.SourcesFile)
	if err != nil {
		return fmt.Errorf("load sources: %w", err)
	}

	cache, err := fetchcache.Open(cfg.CachePath)
	if err != nil {
		log.WarnObj("feed cache unavailable, fetching unconditionally", "cache_open_error", map[string]any{
			"path":  cfg.CachePath,
			"error": err.Error(),
		})
		cache = nil
	}
	defer cache.Close()

	run := harvest.NewRun(time.Now())
	if day, ok := cfg.TargetDay(); ok {
		run = harvest.NewRunForDay(run.Now, day)
	}

	client := httpclient.NewRestyClient(cfg.HTTPTimeout())
	fetcher := fetch.New(client, cache, func() time.Time { return run.Now }, log)
	articles := harvest.New(fetcher, log).HarvestDay(ctx, reg.Enabled(), run)

	outPath := dataset.DailyPath(cfg.OutputDir, run.TargetDay)
	if err := dataset.Write(outPath, articles); err != nil {
		return fmt.Errorf("write daily dataset: %w", err)
	}

	log.InfoObj("daily harvest complete", "daily_done", map[string]any{
		"records":     len(articles),
		"output_path": outPath,
		"target_day":  run.TargetDay.Format("2006-01-02"),
	})

	sendNotifications(ctx, cfg, log, notify.RunEvent{
		Kind:        "daily",
		Date:        run.TargetDay.Format("2006-01-02"),
		Records:     len(articles),
		OutputPath:  outPath,
		GeneratedAt: run.Now,
	})
	return nil
}

func runWeekly(ctx context.Context) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	log := logger.MustNew(cfg.LogLevel)

	now := time.Now().UTC()
	win := weekly.LastWeek(now)

	res, err := weekly.New(cfg.OutputDir, log).Run(win)
	if err != nil {
		return err
	}

	log.InfoObj("weekly aggregation complete", "weekly_done", map[string]any{
		"records":     res.Records,
		"input_files": res.FileCount,
		"output_path": res.OutputPath,
		"week_monday": win.Monday.Format("2006-01-02"),
		"week_sunday": win.Sunday.Format("2006-01-02"),
	})

	year, week := win.ISO()
	sendNotifications(ctx, cfg, log, notify.RunEvent{
		Kind:        "weekly",
		ISOYear:     year,
		ISOWeek:     week,
		Records:     res.Records,
		FileCount:   res.FileCount,
		OutputPath:  res.OutputPath,
		GeneratedAt: now,
	})
	return nil
}

// sendNotifications delivers the run event to configured sinks, if any.
// Notification problems never fail the run.
func sendNotifications(ctx context.Context, cfg config.Config, log logger.Logger, evt notify.RunEvent) {
	if cfg.NotifiersFile == "" {
		return
	}

	sinksCfg, err := notify.LoadSinks(cfg.NotifiersFile)
	if err != nil {
		log.WarnObj("notifiers config unusable", "notify_config_error", map[string]any{
			"path":  cfg.NotifiersFile,
			"error": err.Error(),
		})
		return
	}

	sinks, err := notify.BuildAll(ctx, notify.DefaultRegistry(), sinksCfg, log)
	if err != nil {
		log.WarnObj("notifier construction failed", "notify_build_error", map[string]any{
			"error": err.Error(),
		})
		return
	}

	notify.NotifyAll(ctx, sinks, evt, log)
}
