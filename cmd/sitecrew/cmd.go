package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rongwang/sitecrew-server/internal/models"
)

func SetupCommands(a *App) *cobra.Command {
	// root command
	rootCmd := &cobra.Command{
		Use:           "sitecrew",
		Short:         "Crew time tracking from the command line",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			a.out = cmd.OutOrStdout()
			return a.Open(cmd.Context())
		},
	}

	var userID string

	completeUsers := func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		if err := a.Open(cmd.Context()); err != nil {
			return nil, cobra.ShellCompDirectiveError
		}
		users, err := a.repo.ListUsers(cmd.Context(), "")
		if err != nil {
			return nil, cobra.ShellCompDirectiveError
		}
		ids := make([]string, 0, len(users))
		for _, u := range users {
			ids = append(ids, u.ID+"\t"+u.Name)
		}
		return ids, cobra.ShellCompDirectiveNoFileComp
	}

	// command for applying migrations only
	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), "Database is up to date")
			return nil
		},
	}

	var projectID string
	var lat, lng float64

	// command for starting a shift
	clockInCmd := &cobra.Command{
		Use:   "clock-in",
		Short: "Start tracking time on a project",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.ClockIn(cmd.Context(), userID, projectID, flagLocation(cmd, lat, lng))
		},
	}
	clockInCmd.Flags().StringVarP(&projectID, "project", "p", "", "project id")
	_ = clockInCmd.MarkFlagRequired("project")

	// command for ending a shift
	clockOutCmd := &cobra.Command{
		Use:   "clock-out",
		Short: "Stop tracking time",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.ClockOut(cmd.Context(), userID, flagLocation(cmd, lat, lng))
		},
	}

	for _, c := range []*cobra.Command{clockInCmd, clockOutCmd} {
		c.Flags().Float64Var(&lat, "lat", 0, "latitude of the site")
		c.Flags().Float64Var(&lng, "lng", 0, "longitude of the site")
		c.MarkFlagsRequiredTogether("lat", "lng")
	}

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show whether the crew member is clocked in",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.Status(cmd.Context(), userID)
		},
	}

	var limit int
	logsCmd := &cobra.Command{
		Use:   "logs",
		Short: "List recent time logs",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.Logs(cmd.Context(), userID, limit)
		},
	}
	logsCmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of logs to show, 0 for all")

	for _, c := range []*cobra.Command{clockInCmd, clockOutCmd, statusCmd, logsCmd} {
		c.Flags().StringVarP(&userID, "user", "u", "", "crew member id")
		_ = c.MarkFlagRequired("user")
		_ = c.RegisterFlagCompletionFunc("user", completeUsers)
	}

	// add commands
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(clockInCmd)
	rootCmd.AddCommand(clockOutCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(logsCmd)

	return rootCmd
}

// flagLocation returns the --lat/--lng pair when both were given
func flagLocation(cmd *cobra.Command, lat, lng float64) *models.Location {
	if !cmd.Flags().Changed("lat") || !cmd.Flags().Changed("lng") {
		return nil
	}
	return &models.Location{Lat: lat, Lng: lng}
}
