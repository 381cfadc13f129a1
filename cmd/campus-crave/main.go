package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"campus-crave/internal/app/api"
	"campus-crave/internal/app/bootstrap"
	"campus-crave/internal/app/dashboard"
	"campus-crave/internal/app/monitor"
	"campus-crave/internal/common/logger"
	"campus-crave/internal/config"
	"campus-crave/internal/tui"
)

const dashboardLog = "campus-crave.log"

func main() {
	mode := flag.String("mode", "", "api | dashboard | sync-monitor")
	cfgPath := flag.String("config", "", "config file (default: ./config.yaml when present)")
	port := flag.Int("port", 0, "api: http port, overrides http.port")
	openQuery := flag.String("open", "view=app", `dashboard: launch query, e.g. "view=app&email=chef@campus.edu"`)
	tab := flag.String("tab", "", "instance id stamped on published changes (random when empty)")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	logFile := cfg.Log.File
	if logFile == "" && *mode == "dashboard" {
		logFile = dashboardLog
	}
	var sink io.Writer = os.Stdout
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "open log file: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		sink = f
	}
	logger.Configure(sink, cfg.Log.Level)

	lg := logger.New("bootstrap")
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var run func(context.Context, *bootstrap.Runtime) error
	switch *mode {
	case "api":
		run = func(ctx context.Context, rt *bootstrap.Runtime) error { return api.Run(ctx, rt, *port) }
	case "dashboard":
		launch, err := tui.ParseLaunch(*openQuery)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(2)
		}
		run = func(ctx context.Context, rt *bootstrap.Runtime) error { return dashboard.Run(ctx, rt, launch) }
	case "sync-monitor":
		run = func(ctx context.Context, rt *bootstrap.Runtime) error { return monitor.New(rt.Sync).Run(ctx) }
	default:
		fmt.Fprintln(os.Stderr, "--mode is required: api | dashboard | sync-monitor")
		os.Exit(2)
	}

	rt, err := bootstrap.Open(ctx, cfg, *tab)
	if err != nil {
		lg.Error("fatal", err, map[string]any{"mode": *mode})
		os.Exit(1)
	}
	defer rt.Close()

	if err := run(ctx, rt); err != nil && ctx.Err() == nil {
		lg.Error("fatal", err, map[string]any{"mode": *mode})
		rt.Close()
		os.Exit(1)
	}
}
