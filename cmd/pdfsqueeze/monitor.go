package main

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/fyrsmithlabs/pdfsqueeze/internal/monitor"
)

var (
	// monitor command flags
	monEndpoint string
	monInterval time.Duration
)

func init() {
	rootCmd.AddCommand(monitorCmd)

	monitorCmd.Flags().StringVar(&monEndpoint, "endpoint", "", "pdfsqueezed base URL (default from config)")
	monitorCmd.Flags().DurationVar(&monInterval, "interval", 0, "refresh interval (default from config)")
}

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Live dashboard for a running pdfsqueezed",
	Long: `Open a terminal dashboard showing throughput, token savings, and
retention for a running pdfsqueezed daemon.

Examples:
  # Monitor the local daemon
  pdfsqueeze monitor

  # Monitor a remote daemon with a slower refresh
  pdfsqueeze monitor --endpoint http://10.0.0.5:8419 --interval 5s`,
	RunE: runMonitor,
}

func runMonitor(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	endpoint := cfg.Monitor.Endpoint
	if monEndpoint != "" {
		endpoint = monEndpoint
	}
	interval := cfg.Monitor.RefreshInterval.Duration()
	if monInterval > 0 {
		interval = monInterval
	}

	p := tea.NewProgram(monitor.NewModel(endpoint, interval), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("monitor failed: %w", err)
	}

	return nil
}
