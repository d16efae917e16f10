package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

const defaultServer = "http://localhost:5000"

// globalOptions are shared by every subcommand.
type globalOptions struct {
	server string
	token  string
}

func main() {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:           "filekeep",
		Short:         "Push local files and folders to a filekeep server",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&opts.server, "server", envOr("FILEKEEP_SERVER", defaultServer), "server base URL")
	rootCmd.PersistentFlags().StringVar(&opts.token, "token", os.Getenv("FILEKEEP_TOKEN"), "session token (X-Token)")

	rootCmd.AddCommand(loginCmd(opts))
	rootCmd.AddCommand(logoutCmd(opts))
	rootCmd.AddCommand(pushCmd(opts))
	rootCmd.AddCommand(lsCmd(opts))
	rootCmd.AddCommand(visibilityCmd(opts, "publish", true))
	rootCmd.AddCommand(visibilityCmd(opts, "unpublish", false))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
