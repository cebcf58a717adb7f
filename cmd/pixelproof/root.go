package main

import (
	"strings"

	"github.com/gofiber/fiber/v2/log"
	"github.com/spf13/cobra"

	"github.com/ManuelReschke/PixelProof/internal/pkg/env"
)

func newRootCommand() *cobra.Command {
	var envFile string

	rootCmd := &cobra.Command{
		Use:           "pixelproof",
		Short:         "Image authenticity verification",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var files []string
			if envFile != "" {
				files = []string{envFile}
			}
			if err := env.SetupEnvFile(files...); err != nil {
				return err
			}

			// JSON results go to stdout, logs to stderr
			log.SetOutput(cmd.ErrOrStderr())
			log.SetLevel(parseLogLevel(env.GetEnv("LOG_LEVEL", "info")))
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "Path to a .env file (default: search .env upwards)")

	rootCmd.AddCommand(newVerifyCommand())
	rootCmd.AddCommand(newProcessQueueCommand())
	rootCmd.AddCommand(newEnqueueCommand())
	rootCmd.AddCommand(newReclaimCommand())
	rootCmd.AddCommand(newStatsCommand())
	rootCmd.AddCommand(newSettingsCommand())
	rootCmd.AddCommand(newStatusCommand())

	return rootCmd
}

func parseLogLevel(value string) log.Level {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "trace":
		return log.LevelTrace
	case "debug":
		return log.LevelDebug
	case "warn", "warning":
		return log.LevelWarn
	case "error":
		return log.LevelError
	default:
		return log.LevelInfo
	}
}
