package cli

import (
	"flag"
	"fmt"
	"os"

	"github.com/lighthouse-hq/lighthouse/internal/config"
)

func runAuth(args []string) error {
	if len(args) == 0 {
		return UsageError{Message: "auth requires a subcommand: login, logout, or status"}
	}

	switch args[0] {
	case "login":
		fs := flag.NewFlagSet("auth login", flag.ContinueOnError)
		token := fs.String("token", "", "API token from your Lighthouse account settings")
		if err := fs.Parse(args[1:]); err != nil {
			return UsageError{Message: err.Error()}
		}
		if *token == "" {
			return UsageError{Message: "auth login requires --token"}
		}
		if err := config.SetToken(*token); err != nil {
			return fmt.Errorf("store token: %w", err)
		}
		fmt.Fprintln(os.Stdout, "token stored")
		return nil

	case "logout":
		if err := config.SetToken(""); err != nil {
			return fmt.Errorf("clear token: %w", err)
		}
		fmt.Fprintln(os.Stdout, "token cleared")
		return nil

	case "status":
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		if _, ok := cfg.TokenValue(); ok {
			fmt.Fprintln(os.Stdout, "authenticated")
		} else {
			fmt.Fprintln(os.Stdout, "not authenticated")
		}
		return nil

	default:
		return UsageError{Message: fmt.Sprintf("unknown auth subcommand: %q", args[0])}
	}
}
