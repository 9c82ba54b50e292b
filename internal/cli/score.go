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

func runScore(args []string) error {
	fs := flag.NewFlagSet("score", flag.ContinueOnError)
	withPages := fs.Bool("pages", false, "also fetch per-page score summaries")
	watch := fs.Int("watch", 0, "poll for updates every N seconds until interrupted")
	output := fs.String("output", "human", "output format: human or json")
	if err := fs.Parse(args); err != nil {
		return UsageError{Message: err.Error()}
	}
	if fs.NArg() != 1 {
		return UsageError{Message: "score requires exactly 1 argument: <site-id>"}
	}
	siteID := fs.Arg(0)

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	client := newClient(cfg)

	opts := watcher.Options{
		FetchPageScores: *withPages,
		Notify:          func(m string) { fmt.Fprintln(os.Stderr, m) },
	}
	if *watch > 0 {
		opts.PollInterval = time.Duration(*watch) * time.Second
	}
	w := watcher.New(client, siteID, opts)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	w.Refresh(ctx)
	if err := printScore(w, *withPages, *output); err != nil {
		return err
	}
	if *watch <= 0 {
		return nil
	}

	w.Start(ctx)
	ticker := time.NewTicker(opts.PollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := printScore(w, *withPages, *output); err != nil {
				return err
			}
		}
	}
}

func printScore(w *watcher.SiteWatcher, withPages bool, output string) error {
	snap := w.Snapshot()
	if snap.Error != "" {
		return fmt.Errorf("load score: %s", snap.Error)
	}
	if snap.Report == nil {
		return fmt.Errorf("no stored score for this site yet")
	}
	if output == "json" {
		return format.JSON(os.Stdout, snap.Report)
	}
	format.Report(os.Stdout, snap.Report)
	if withPages {
		fmt.Fprintln(os.Stdout, "\nPages:")
		format.PageScores(os.Stdout, snap.PageScores)
	}
	return nil
}

func runPages(args []string) error {
	fs := flag.NewFlagSet("pages", flag.ContinueOnError)
	output := fs.String("output", "human", "output format: human or json")
	if err := fs.Parse(args); err != nil {
		return UsageError{Message: err.Error()}
	}
	if fs.NArg() != 1 {
		return UsageError{Message: "pages requires exactly 1 argument: <site-id>"}
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	client := newClient(cfg)

	res := client.GetPageScores(context.Background(), fs.Arg(0))
	pages, ok := res.Data()
	if !ok {
		apiErr, _ := res.Error()
		return fmt.Errorf("load page scores: %s", apiErr.Message)
	}
	if *output == "json" {
		return format.JSON(os.Stdout, pages)
	}
	format.PageScores(os.Stdout, pages)
	return nil
}
