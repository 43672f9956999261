package main

import (
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	configPath string
	verbose    bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "geosonde",
		Short: "Borehole heat exchanger sizing for ground-source heat pumps",
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			if verbose {
				log.SetLevel(log.DebugLevel)
			}
		},
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "geosonde.ini", "solver settings file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	rootCmd.AddCommand(sizeCmd())
	rootCmd.AddCommand(hydraulicsCmd())
	rootCmd.AddCommand(pumpsCmd())
	rootCmd.AddCommand(validateCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func sizeCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "size [project-dir]",
		Short: "Size the borehole field and run the full design pipeline",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return runSize(args[0], output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "directory for CSV reports")
	return cmd
}

func hydraulicsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hydraulics [project-dir]",
		Short: "Solve the circuit pressure drop at the configured field geometry",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return runHydraulics(args[0])
		},
	}
}

func pumpsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pumps [project-dir]",
		Short: "Rank catalogue circulators against the hydraulic design point",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return runPumps(args[0])
		},
	}
}

func validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [project-dir]",
		Short: "Check a project against the parameter ranges without solving",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return runValidate(args[0])
		},
	}
}
