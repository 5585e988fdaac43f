package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/go-echarts/statsview"
	"github.com/go-echarts/statsview/viewer"
	"github.com/oomph-ac/ofly"
	"github.com/oomph-ac/ofly/settings"
	"github.com/oomph-ac/ofly/trace"
	"github.com/oomph-ac/ofly/world"
	"github.com/sirupsen/logrus"
)

// The following program replays a JSON-lines movement trace and prints every event of the detection as a
// JSON line.
func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: ./replay <trace.jsonl> [config.toml|config.yaml]")
		return
	}
	configPath := "ofly.toml"
	if len(os.Args) > 2 {
		configPath = os.Args[2]
	}

	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{
		TimestampFormat: "2006-01-02 15:04:05",
		FullTimestamp:   true,
	})
	log.SetOutput(os.Stderr)

	if dsn := os.Getenv("SENTRY_DSN"); dsn != "" {
		if err := sentry.Init(sentry.ClientOptions{Dsn: dsn}); err != nil {
			log.Fatalf("sentry init: %v", err)
		}
		defer sentry.Flush(time.Second * 5)
	}

	if os.Getenv("PPROF_ENABLED") != "" {
		// set configurations before calling `statsview.New()` method
		viewer.SetConfiguration(viewer.WithTheme(viewer.ThemeWesteros), viewer.WithAddr("localhost:8080"))

		mgr := statsview.New()
		go mgr.Start()
		defer mgr.Stop()
	}

	conf, err := settings.LoadOrCreate(configPath)
	if err != nil {
		log.Fatalf("error reading config: %v", err)
	}
	if level, err := logrus.ParseLevel(conf.StringOr(settings.KindOfly, "log-level", "info")); err == nil {
		log.SetLevel(level)
	}

	w := world.New(log)
	o, err := ofly.New(ofly.Config{Log: log, Settings: conf, Blocks: w})
	if err != nil {
		log.Fatalf("error starting ofly: %v", err)
	}
	events := trace.NewEventWriter(os.Stdout)
	o.Manager().Listen(events)

	f, err := os.Open(os.Args[1])
	if err != nil {
		log.Fatalf("error opening trace: %v", err)
	}
	defer f.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	r := trace.NewReplayer(o, w)
	start := time.Now()
	lines, err := r.Replay(ctx, f)
	o.Close()
	if err != nil {
		log.Errorf("replay stopped: %v", err)
	}
	if err := events.Err(); err != nil {
		log.Errorf("error writing events: %v", err)
	}

	stats := r.Stats()
	log.Infof("replayed %d lines (%d moves, %d cancelled) in %v", lines, stats.Moves, stats.Cancelled, time.Since(start))
}
