package main

// Run maintenance jobs on their schedules:
//   go run ./cmd/worker
// Run a single job once and exit:
//   go run ./cmd/worker -run analytics.purge

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"workspace-backend/internal/bootstrap"
	"workspace-backend/internal/jobs"
	"workspace-backend/internal/shared/config"
	"workspace-backend/internal/shared/telemetry"
)

const shutdownTimeout = 30 * time.Second

func main() {
	once := flag.String("run", "", "run the named job once and exit")
	flag.Parse()

	cfg := config.Load()
	telemetry.Configure(telemetry.Options{Level: cfg.LogLevel, Format: cfg.LogFormat})

	app, err := bootstrap.Build(cfg)
	if err != nil {
		log.Fatalf("bootstrap build: %v", err)
	}

	sched, err := jobs.NewScheduler(app.Jobs()...)
	if err != nil {
		log.Fatalf("scheduler: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	runErr := serve(ctx, sched, *once)
	stop()

	closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	app.Close(closeCtx)
	cancel()

	if runErr != nil {
		log.Fatalf("worker: %v", runErr)
	}
}

// serve runs one job when once is set, otherwise it schedules every job until ctx ends.
func serve(ctx context.Context, sched *jobs.Scheduler, once string) error {
	if name := strings.TrimSpace(once); name != "" {
		return sched.RunNow(ctx, name)
	}
	names := make([]string, 0, len(sched.Jobs()))
	for _, job := range sched.Jobs() {
		names = append(names, job.Name+"="+job.Schedule)
	}
	telemetry.Info("worker.started", map[string]any{"jobs": strings.Join(names, ",")})

	sched.Start()
	<-ctx.Done()
	sched.Stop()
	return nil
}
