package cli

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/briandowns/spinner"

	"github.com/lighthouse-hq/lighthouse/internal/api"
	"github.com/lighthouse-hq/lighthouse/internal/config"
	"github.com/lighthouse-hq/lighthouse/internal/format"
	"github.com/lighthouse-hq/lighthouse/internal/report"
	"github.com/lighthouse-hq/lighthouse/internal/result"
	"github.com/lighthouse-hq/lighthouse/internal/tui"
)

func runScan(args []string) error {
	fs := flag.NewFlagSet("scan", flag.ContinueOnError)
	category := fs.String("category", "", "site category profile (e.g. ecommerce, saas)")
	plain := fs.Bool("plain", false, "print results instead of the interactive screen")
	output := fs.String("output", "human", "output format: human or json")
	if err := fs.Parse(args); err != nil {
		return UsageError{Message: err.Error()}
	}
	if fs.NArg() > 1 {
		return UsageError{Message: "scan takes at most one URL"}
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if *category == "" {
		*category = cfg.SiteCategory
	}
	client := newClient(cfg)

	url := ""
	if fs.NArg() == 1 {
		url = fs.Arg(0)
	}

	if !*plain && *output == "human" {
		return tui.Start(client, url, *category)
	}
	if url == "" {
		return UsageError{Message: "a URL is required with --plain or --output json"}
	}
	return plainScan(client, url, *category, *output)
}

func plainScan(client *api.Client, url, category, output string) error {
	req := api.ScanRequest{URL: url}
	if category != "" {
		req.Options = &api.ScanOptions{SiteCategory: category}
	}

	var spin *spinner.Spinner
	if output == "human" {
		spin = spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(os.Stderr))
		spin.Suffix = " Scanning " + url + " (10-60 seconds)..."
		spin.Start()
	}
	res := client.ScanForAIReadiness(context.Background(), req)
	if spin != nil {
		spin.Stop()
	}

	return result.Match(res,
		func(rep *report.Report) error {
			if missing := rep.Validate(); len(missing) > 0 {
				return fmt.Errorf("received invalid report structure from server (missing %v)", missing)
			}
			if output == "json" {
				return format.JSON(os.Stdout, rep)
			}
			format.Report(os.Stdout, rep)
			return nil
		},
		func(apiErr *api.APIError) error {
			if apiErr.Code == api.CodeRateLimitExceeded {
				return fmt.Errorf("%s (upgrade at lighthouse.app/pricing)", apiErr.Message)
			}
			return fmt.Errorf("scan failed: %s", apiErr.Message)
		},
	)
}
