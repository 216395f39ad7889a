package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"cooprunq/internal/event"
	"cooprunq/internal/job"
	"cooprunq/internal/logging"
	"cooprunq/internal/sched"
)

var (
	flagConfig    string
	flagCSV       string
	flagSleepers  int
	flagRounds    int
	flagSleepMS   uint
	flagTimeoutUS uint
	flagLogLevel  string
	flagLogFormat string
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "ticksched",
		Short:        "Cooperative tick scheduler demo",
		Long:         "ticksched runs sleeper tasks and an event handshake on a cooperative, single-context scheduler.",
		RunE:         runDemo,
		SilenceUsage: true,
	}

	root.Flags().StringVar(&flagConfig, "config", "config.yml", "YAML config file")
	root.Flags().StringVar(&flagCSV, "csv", "", "Write a CSV trace of task events to this file")
	root.Flags().IntVar(&flagSleepers, "sleepers", 3, "Number of sleeper tasks")
	root.Flags().IntVar(&flagRounds, "rounds", 5, "Sleep rounds per sleeper")
	root.Flags().UintVar(&flagSleepMS, "sleep-ms", 10, "Milliseconds per sleep round")
	root.Flags().UintVar(&flagTimeoutUS, "timeout-us", 500000, "Timeout of the event waiter in microseconds")
	root.Flags().StringVar(&flagLogLevel, "log-level", "", "Log level (debug, info, warn, error); overrides config")
	root.Flags().StringVar(&flagLogFormat, "log-format", "", "Log format (text, json); overrides config")

	return root
}

func runDemo(cmd *cobra.Command, args []string) error {
	cfg := sched.Load(flagConfig)
	if flagLogLevel != "" {
		cfg.LogLevel = flagLogLevel
	}
	if flagLogFormat != "" {
		cfg.LogFormat = flagLogFormat
	}
	logger := logging.NewLogger(logging.ParseLevel(cfg.LogLevel), cfg.LogFormat)
	logger.Info("loaded config", "config", fmt.Sprintf("%+v", cfg))

	s := sched.New(cfg, sched.WithLogger(logger))
	defer s.Close()

	if flagCSV != "" {
		if err := s.EnableCSVLogging(flagCSV); err != nil {
			return err
		}
	}

	switches := 0
	s.RegisterTaskSwitchHandler(func(t *sched.Task) { switches++ })
	s.RegisterTaskTerminationHandler(func(t *sched.Task) {
		logger.Info("task terminated", "task", t.Name(), "id", t.ID())
	})

	ev := event.New(s, false)
	var res job.WaitResult

	// Hold everything back until the whole workload is registered.
	s.SuspendNewTasks()
	for i := 0; i < flagSleepers; i++ {
		s.Spawn(fmt.Sprintf("sleeper-%d", i), job.Sleeper(flagRounds, flagSleepMS))
	}
	s.Spawn("waiter", job.Waiter(ev, flagTimeoutUS, &res, logger))
	s.Spawn("signaler", job.Signaler(ev, flagSleepMS*uint(flagRounds)))
	s.ResumeNewTasks()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	if err := s.Run(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Warn("interrupted", "live_tasks", s.LiveTasks())
			return nil
		}
		return err
	}
	ev.Close()

	logger.Info("all tasks finished",
		"switches", switches,
		"waiter_timed_out", res.TimedOut,
		"waiter_signalled", res.Signalled)
	return nil
}
