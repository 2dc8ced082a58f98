package main

import (
	"log"
	"os"

	"dayplanner/internal/config"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	configPath string
	verbose    bool
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "dayplanner",
		Short:        "Hour-by-hour personal day planner",
		Long:         "dayplanner serves a web calendar where each day is split into hourly slots from 4:00 to 22:00.",
		SilenceUsage: true,
		RunE:         runServe,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (default $DAYPLANNER_CONFIG or "+config.DefaultPath+")")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log debug output")

	root.AddCommand(newServeCmd())
	root.AddCommand(newUserCmd())
	return root
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadFile(config.Path(configPath))
	if err != nil {
		return nil, err
	}
	if verbose {
		cfg.Verbose = true
	}
	return cfg, nil
}
