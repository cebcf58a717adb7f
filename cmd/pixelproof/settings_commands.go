package main

import (
	"github.com/spf13/cobra"
)

func newSettingsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Inspect and change authenticity settings",
	}
	cmd.AddCommand(newSettingsListCommand())
	cmd.AddCommand(newSettingsSetCommand())
	return cmd
}

func newSettingsListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored settings and the thresholds in effect",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := openApplication(cmd.Context())
			if err != nil {
				return err
			}
			defer app.Close()

			settings, err := app.service.ListSettings(cmd.Context())
			if err != nil {
				return err
			}
			return writeJSON(cmd, map[string]any{
				"settings":   settings,
				"thresholds": app.service.Thresholds(),
			})
		},
	}
}

func newSettingsSetCommand() *cobra.Command {
	var by uint

	cmd := &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Change a setting; running workers pick it up on restart",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := openApplication(cmd.Context())
			if err != nil {
				return err
			}
			defer app.Close()

			var adminID *uint
			if by > 0 {
				adminID = &by
			}
			setting, err := app.service.UpdateSetting(cmd.Context(), args[0], args[1], adminID)
			if err != nil {
				return err
			}
			return writeJSON(cmd, setting)
		},
	}

	cmd.Flags().UintVar(&by, "by", 0, "Admin user id recorded in the audit log")
	return cmd
}
