package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ratelimitgw/gateway/internal/config"
)

func newValidateCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "validate-config",
		Short: "Load and validate a configuration file without starting the proxy",
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := config.Load(configPath)
			if err != nil {
				return err
			}

			_, invalid := settings.WhitelistIPs()
			for _, raw := range invalid {
				fmt.Printf("warning: ip_whitelist entry %q does not parse as an IP\n", raw)
			}

			fmt.Printf("%s: ok (%d limiter(s), %d whitelisted IP(s))\n",
				configPath, len(settings.RateLimiter.Limiters), len(settings.RateLimiter.IPWhitelist))
			return nil
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "config.yaml", "path to the YAML configuration file")
	return cmd
}
