package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"

	"alcyxob/fitness-coach/internal/app"
	"alcyxob/fitness-coach/internal/config"
	"alcyxob/fitness-coach/internal/scheduler"
	"alcyxob/fitness-coach/internal/service"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type rootOptions struct {
	configDir string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:           "coachctl",
		Short:         "Operate the fitness coach plan engine from the command line",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
				return fmt.Errorf("read .env: %w", err)
			}
			return nil
		},
	}
	root.PersistentFlags().StringVar(&opts.configDir, "config", ".", "directory holding config.yaml")

	root.AddCommand(
		newGenerateCmd(opts),
		newRegenerateExerciseCmd(opts),
		newRegenerateMealCmd(opts),
		newScheduleCmd(opts),
		newSeedCmd(opts),
		newNightlyCmd(opts),
	)
	return root
}

// withApp loads config, wires the application and hands it to fn.
func withApp(ctx context.Context, opts *rootOptions, fn func(*app.App) error) error {
	cfg, err := config.LoadConfig(opts.configDir)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	a, err := app.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(a)
}

func parseID(flag, hex string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("--%s: invalid id %q", flag, hex)
	}
	return id, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newGenerateCmd(opts *rootOptions) *cobra.Command {
	var userHex, date string
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate and commit the daily plan for a user and date",
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := parseID("user", userHex)
			if err != nil {
				return err
			}
			return withApp(cmd.Context(), opts, func(a *app.App) error {
				plan, err := a.Services.Coach.GenerateDailyPlan(cmd.Context(), userID, date)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), plan)
			})
		},
	}
	cmd.Flags().StringVar(&userHex, "user", "", "user id (hex)")
	cmd.Flags().StringVar(&date, "date", "", "plan date, YYYY-MM-DD")
	_ = cmd.MarkFlagRequired("user")
	_ = cmd.MarkFlagRequired("date")
	return cmd
}

func newRegenerateExerciseCmd(opts *rootOptions) *cobra.Command {
	var userHex, sessionHex, setHex string
	cmd := &cobra.Command{
		Use:   "regenerate-exercise",
		Short: "Swap the exercise behind one planned set",
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := parseID("user", userHex)
			if err != nil {
				return err
			}
			sessionID, err := parseID("session", sessionHex)
			if err != nil {
				return err
			}
			setID, err := parseID("set", setHex)
			if err != nil {
				return err
			}
			return withApp(cmd.Context(), opts, func(a *app.App) error {
				ex, err := a.Services.Coach.RegenerateSingleExercise(cmd.Context(), userID, sessionID, setID)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), ex)
			})
		},
	}
	cmd.Flags().StringVar(&userHex, "user", "", "user id (hex)")
	cmd.Flags().StringVar(&sessionHex, "session", "", "workout session id (hex)")
	cmd.Flags().StringVar(&setHex, "set", "", "exercise set id (hex)")
	for _, f := range []string{"user", "session", "set"} {
		_ = cmd.MarkFlagRequired(f)
	}
	return cmd
}

func newRegenerateMealCmd(opts *rootOptions) *cobra.Command {
	var userHex, mealHex string
	cmd := &cobra.Command{
		Use:   "regenerate-meal",
		Short: "Replace one planned meal with a similar-calorie alternative",
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := parseID("user", userHex)
			if err != nil {
				return err
			}
			mealID, err := parseID("meal", mealHex)
			if err != nil {
				return err
			}
			return withApp(cmd.Context(), opts, func(a *app.App) error {
				meal, err := a.Services.Coach.RegenerateSingleMeal(cmd.Context(), userID, mealID)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), meal)
			})
		},
	}
	cmd.Flags().StringVar(&userHex, "user", "", "user id (hex)")
	cmd.Flags().StringVar(&mealHex, "meal", "", "daily meal id (hex)")
	_ = cmd.MarkFlagRequired("user")
	_ = cmd.MarkFlagRequired("meal")
	return cmd
}

func newScheduleCmd(opts *rootOptions) *cobra.Command {
	var userHex string
	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Print the weekly split for a user's active goal",
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := parseID("user", userHex)
			if err != nil {
				return err
			}
			return withApp(cmd.Context(), opts, func(a *app.App) error {
				week, err := a.Services.Coach.GetWeeklySchedule(cmd.Context(), userID)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), week)
			})
		},
	}
	cmd.Flags().StringVar(&userHex, "user", "", "user id (hex)")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func newSeedCmd(opts *rootOptions) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load exercises and meals from a catalog JSON file",
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog, err := readCatalog(file)
			if err != nil {
				return err
			}
			return withApp(cmd.Context(), opts, func(a *app.App) error {
				report, err := a.Services.Catalog.Seed(cmd.Context(), catalog)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), report)
			})
		},
	}
	cmd.Flags().StringVar(&file, "file", "catalog.json", "catalog file")
	return cmd
}

func readCatalog(path string) (service.Catalog, error) {
	var catalog service.Catalog
	raw, err := os.ReadFile(path)
	if err != nil {
		return catalog, err
	}
	if err := json.Unmarshal(raw, &catalog); err != nil {
		return catalog, fmt.Errorf("parse %s: %w", path, err)
	}
	return catalog, nil
}

func newNightlyCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "nightly",
		Short: "Run tomorrow's plan generation once for every active user",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), opts, func(a *app.App) error {
				n, err := scheduler.FromConfig(a.Config.Scheduler, a.Goals, a.Services.Coach)
				if err != nil {
					return err
				}
				report, err := n.RunOnce(cmd.Context())
				if err != nil {
					return err
				}
				log.Printf("INFO: nightly run for %s finished", report.Date)
				return printJSON(cmd.OutOrStdout(), report)
			})
		},
	}
}
