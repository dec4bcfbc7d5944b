// Command gazelle runs the Gazelle demo service and inspects its routes.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := defaultOptions()

	rootCmd := &cobra.Command{
		Use:   "gazelle",
		Short: "Gazelle routing and hook composition demo service",
		Long: `Gazelle serves a small demo API on top of the Gazelle router.

Every request runs through the client_ip, trace, logging, cors, ratelimit
and metrics plugins; /me and /api/* additionally require a JWT issued by
POST /login.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	opts.bind(rootCmd)

	rootCmd.AddCommand(
		serveCmd(opts),
		routesCmd(opts),
	)
	return rootCmd
}
