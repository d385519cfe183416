package main

import (
	"os"

	"portal/internal/config"
	"portal/internal/logger"

	"github.com/spf13/cobra"
)

// @title           Intranet Portal API
// @version         1.0
// @description     Request workflow and company ledger for the intranet portal.
// @host            localhost:8080
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

var envFile string

var rootCmd = &cobra.Command{
	Use:           "api",
	Short:         "Intranet portal request workflow and company ledger",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "configs/.env", "dotenv file loaded before reading the environment")
	rootCmd.AddCommand(serveCmd, reconcileCmd, tokenCmd)
}

// loadConfig reads configuration and initializes logging from it.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(envFile)
	if err != nil {
		return nil, err
	}
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	return cfg, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		logger.Error("command failed", "error", err)
		os.Exit(1)
	}
}
