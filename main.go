package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Hitojaa/skinport-trader/internal/repo"
	"github.com/Hitojaa/skinport-trader/internal/schedule"
	"github.com/Hitojaa/skinport-trader/internal/service/monitor"
	"github.com/Hitojaa/skinport-trader/internal/service/strategy"
	"github.com/Hitojaa/skinport-trader/ioc"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

func initViper() {

	// --config=./config/xxx.yaml
	file := pflag.String("config", "./config/config.yaml", "specify config file")
	pflag.Parse()

	viper.SetConfigFile(*file)
	err := viper.ReadInConfig()
	if err != nil {
		panic(fmt.Errorf("fatal error config file: %s \n", err))
	}
}

func main() {
	initViper()

	db := ioc.InitDB()
	if err := repo.InitTables(db); err != nil {
		panic(err)
	}
	itemRepo := repo.NewItemRepo(db)
	tickRepo := repo.NewTickRepo(db)
	signalRepo := repo.NewSignalRepo(db)

	gate := ioc.InitRateGate()
	skinportSvc := ioc.InitSkinportService(gate)

	analyzer := strategy.NewRuleBasedEngine(ioc.InitThresholds())
	alertGate := ioc.InitAlertGate()

	var scannerOpts []monitor.Option
	notifier := ioc.InitNotifier()
	if notifier != nil {
		scannerOpts = append(scannerOpts, monitor.WithNotifier(notifier))
	}
	scanner := monitor.NewScanner(analyzer, skinportSvc, alertGate,
		itemRepo, tickRepo, signalRepo, scannerOpts...)

	scanInterval := viper.GetDuration("collector.scan_interval")
	if scanInterval <= 0 {
		scanInterval = time.Hour
	}
	scanTask := monitor.NewScanTask(scanner, skinportSvc, monitor.WorkingSetConfig{
		MaxItems:    viper.GetInt("collector.max_items_per_scan"),
		MinQuantity: viper.GetInt("collector.min_item_quantity"),
		MaxPrice:    ioc.InitWorkingSetMaxPrice(),
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if notifier != nil {
		if err := notifier.NotifyText(ctx, "skinport tracker started"); err != nil {
			slog.Error("startup notification failed", "error", err)
		}
	}

	if tracked := viper.GetStringSlice("collector.tracked_items"); len(tracked) > 0 {
		trackerTask := monitor.NewTrackerTask(scanner, skinportSvc, tracked)
		go func() {
			if err := schedule.NewRunner(trackerTask, scanInterval).Run(ctx); err != nil &&
				!errors.Is(err, context.Canceled) {
				slog.Error("tracker runner stopped", "error", err)
			}
		}()
	}

	if notifier != nil {
		summaryTask := monitor.NewSummaryTask(scanner, signalRepo, notifier)
		go func() {
			if err := schedule.NewRunner(summaryTask, 24*time.Hour).Run(ctx); err != nil &&
				!errors.Is(err, context.Canceled) {
				slog.Error("summary runner stopped", "error", err)
			}
		}()
	}

	if err := schedule.NewRunner(scanTask, scanInterval).Run(ctx); err != nil &&
		!errors.Is(err, context.Canceled) {
		panic(err)
	}
	slog.Info("shutting down")
}
