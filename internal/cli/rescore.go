package cli

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lighthouse-hq/lighthouse/internal/config"
	"github.com/lighthouse-hq/lighthouse/internal/format"
	"github.com/lighthouse-hq/lighthouse/internal/watcher"
)

func runRescore(args []string) error {
	fs := flag.NewFlagSet("rescore", flag.ContinueOnError)
	force := fs.Bool("force", false, "rescore even if a recent score exists")
	wait := fs.Bool("wait", false, "wait for the refreshed score and print it")
	if err := fs.Parse(args); err != nil {
		return UsageError{Message: err.Error()}
	}
	if fs.NArg() != 1 {
		return UsageError{Message: "rescore requires exactly 1 argument: <site-id>"}
	}
	siteID := fs.Arg(0)

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	client := newClient(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	w := watcher.New(client, siteID, watcher.Options{
		Notify: func(m string) { fmt.Fprintln(os.Stderr, m) },
	})
	w.TriggerRescore(ctx, *force)

	snap := w.Snapshot()
	if snap.Error != "" {
		return fmt.Errorf("rescore: %s", snap.Error)
	}
	if !*wait {
		return nil
	}

	// The watcher schedules its own follow-up fetch at the backend's ETA
	// plus buffer; poll the snapshot until that fetch lands.
	fmt.Fprintln(os.Stderr, "waiting for the refreshed score...")
	deadline := time.Now().Add(5 * time.Minute)
	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			snap := w.Snapshot()
			if snap.Report != nil {
				format.Report(os.Stdout, snap.Report)
				return nil
			}
			if time.Now().After(deadline) {
				return fmt.Errorf("gave up waiting for the refreshed score")
			}
		}
	}
}
