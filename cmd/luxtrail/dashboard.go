package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"luxtrail/internal/dashboard"
)

var (
	dashboardOut        string
	dashboardConfigPath string
)

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Render the Grafana dashboard",
	Long:  "dashboard renders a Grafana dashboard for the GreptimeDB tables. GREPTIMEDB_DATASOURCE_UID must be set.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(dashboardConfigPath, "")
		if err != nil {
			return err
		}
		if err := dashboard.Render(dashboardOut, dashboard.DefaultData(cfg.Tracker.RadiusM)); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "dashboards written to %s\n", dashboardOut)
		return nil
	},
}

func init() {
	dashboardCmd.Flags().StringVar(&dashboardOut, "out", "build", "Output directory")
	dashboardCmd.Flags().StringVar(&dashboardConfigPath, "config", "", "Path to tracker configuration YAML")
}
