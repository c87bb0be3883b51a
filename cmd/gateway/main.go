// Command gateway runs the rate-limit gateway as a standalone reverse
// proxy, or validates a configuration file without starting one.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:   "gateway",
		Short: "Rate-limiting reverse proxy",
	}

	root.AddCommand(newServeCmd())
	root.AddCommand(newValidateCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
