package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"gonetids/internal/config"
)

type runFlags struct {
	configPath string
	iface      string
	readFile   string
	filter     string
	verbose    bool
	workers    int
	dashboard  bool
	htmlReport string
}

func newRootCommand() *cobra.Command {
	var flags runFlags

	rootCmd := &cobra.Command{
		Use:           "gonetids",
		Short:         "Detect SYN floods, ARP poisoning and blacklisted HTTP hosts in captured traffic",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, &flags)
			if err != nil {
				return err
			}
			return runMonitor(cmd.Context(), cfg)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "", "Configuration file path")
	rootCmd.Flags().StringVarP(&flags.iface, "interface", "i", "", "Network interface to capture from (e.g., eth0, wlan0)")
	rootCmd.Flags().StringVarP(&flags.readFile, "read", "r", "", "Read frames from a pcap or pcapng file instead of an interface")
	rootCmd.Flags().StringVarP(&flags.filter, "filter", "f", "", "BPF filter for live capture")
	rootCmd.Flags().BoolVarP(&flags.verbose, "verbose", "v", false, "Dump decoded headers of every frame")
	rootCmd.Flags().IntVarP(&flags.workers, "workers", "w", 0, "Number of analysis workers (default: number of CPUs)")
	rootCmd.Flags().BoolVar(&flags.dashboard, "dashboard", false, "Show a live dashboard while capturing")
	rootCmd.Flags().StringVar(&flags.htmlReport, "html-report", "", "Also write the final report as HTML to this path")

	rootCmd.AddCommand(newConfigCommand())
	rootCmd.AddCommand(newSelftestCommand(&flags))

	return rootCmd
}

// loadConfig reads the config file and layers explicitly set flags on top.
func loadConfig(cmd *cobra.Command, flags *runFlags) (*config.Config, error) {
	cfg, _, err := config.Load(flags.configPath)
	if err != nil {
		return nil, err
	}

	fs := cmd.Flags()
	if fs.Changed("interface") {
		cfg.Capture.Interface = flags.iface
		cfg.Capture.ReadFile = ""
	}
	if fs.Changed("read") {
		cfg.Capture.ReadFile = flags.readFile
		cfg.Capture.Interface = ""
	}
	if fs.Changed("filter") {
		cfg.Capture.BPFFilter = flags.filter
	}
	if fs.Changed("verbose") {
		cfg.Analysis.Verbose = flags.verbose
	}
	if fs.Changed("workers") {
		cfg.Analysis.Workers = flags.workers
	}
	if fs.Changed("dashboard") {
		cfg.UI.Dashboard = flags.dashboard
	}
	if fs.Changed("html-report") {
		cfg.Report.HTMLPath = flags.htmlReport
	}

	cfg.Normalize()
	return cfg, nil
}

func newConfigCommand() *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the configuration file",
	}

	configCmd.AddCommand(&cobra.Command{
		Use:   "init [path]",
		Short: "Write a sample configuration file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "gonetids.toml"
			if len(args) == 1 {
				path = args[0]
			}
			if err := config.CreateSample(path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote sample configuration to %s\n", path)
			return nil
		},
	})

	return configCmd
}
