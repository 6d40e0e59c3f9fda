package main

import (
	"fmt"
	"os"

	"github.com/Sarbjeetmaan/backend/config"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var Version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:          "storefront",
		Short:        "Storefront backend: catalog, carts, orders and online payments",
		Version:      Version,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func setupLogger(level string) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stdout)
	logger.SetFormatter(&logrus.JSONFormatter{})

	logLevel, err := logrus.ParseLevel(level)
	if err != nil {
		logLevel = logrus.InfoLevel
		logger.Warnf("Invalid LOG_LEVEL '%s', using default: %s", level, logLevel.String())
	}
	logger.SetLevel(logLevel)
	return logger
}

// bootstrap loads configuration with a provisional logger, then rebuilds it at the configured level.
func bootstrap() (*config.Config, *logrus.Logger, error) {
	cfg, err := config.LoadConfig(setupLogger("info"))
	if err != nil {
		return nil, nil, err
	}
	logger := setupLogger(cfg.LogLevel)
	logger.Infof("Log level set to: %s", logger.GetLevel().String())
	return cfg, logger, nil
}
