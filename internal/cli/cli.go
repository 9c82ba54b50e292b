// Package cli dispatches the lighthouse commands. The interactive scan
// experience lives in internal/tui; everything here is the plain-terminal
// surface.
package cli

import (
	"fmt"
	"os"

	"github.com/lighthouse-hq/lighthouse/internal/api"
	"github.com/lighthouse-hq/lighthouse/internal/config"
)

type UsageError struct {
	Message string
}

func (e UsageError) Error() string { return e.Message }

func Usage() string {
	return `lighthouse: AI readiness diagnostics for your websites

Usage:
  lighthouse scan [url] [--category <profile>] [--plain] [--output human|json]
  lighthouse score <site-id> [--pages] [--watch <seconds>] [--output human|json]
  lighthouse pages <site-id> [--output human|json]
  lighthouse rescore <site-id> [--force] [--wait]
  lighthouse auth login --token <token>
  lighthouse auth logout
  lighthouse auth status

Without a URL, scan opens the interactive screen. Site-scoped commands
need a token: run "lighthouse auth login" or set LIGHTHOUSE_TOKEN.
`
}

func Run(args []string) error {
	if len(args) == 0 {
		return UsageError{Message: "missing command"}
	}

	switch args[0] {
	case "help", "-h", "--help":
		fmt.Fprintln(os.Stdout, Usage())
		return nil
	case "scan":
		return runScan(args[1:])
	case "score":
		return runScore(args[1:])
	case "pages":
		return runPages(args[1:])
	case "rescore":
		return runRescore(args[1:])
	case "auth":
		return runAuth(args[1:])
	default:
		return UsageError{Message: fmt.Sprintf("unknown command: %q", args[0])}
	}
}

// tokenSource adapts a resolved config to the API client.
type tokenSource struct {
	cfg config.ResolvedConfig
}

func (t tokenSource) Token() (string, bool) { return t.cfg.TokenValue() }

// newClient builds the API client for the loaded config. A 401 anywhere
// forces a logout: the stored token is cleared so the next command
// re-prompts for login.
func newClient(cfg config.ResolvedConfig) *api.Client {
	return api.New(cfg.APIBase, tokenSource{cfg: cfg},
		api.WithSessionExpiredHandler(func() {
			fmt.Fprintln(os.Stderr, "session expired; run \"lighthouse auth login\" to sign in again")
			if err := config.SetToken(""); err != nil {
				fmt.Fprintf(os.Stderr, "clear stored token: %v\n", err)
			}
		}),
	)
}
