// ABOUTME: CLI commands to record health data the coach reads
// ABOUTME: Subcommands for meals, water, habits, reminders and daily tracking
package commands

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/harper/nutricoach/internal/app"
	"github.com/harper/nutricoach/internal/models"
)

var (
	mealType     string
	mealCalories float64
	mealProtein  float64
	mealCarbs    float64
	mealFat      float64

	habitPending  bool
	habitCalories float64

	reminderDue  string
	reminderTime string

	dayDate     string
	dayWater    int
	daySleep    float64
	daySymptoms []string
)

// NewLogCmd creates the log command group
func NewLogCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "log",
		Short: "Record meals, water, habits, reminders and daily tracking",
		Long: `Record the health data the coach reads when answering.

Examples:
  nutricoach log meal "oatmeal with berries" --type breakfast --calories 320
  nutricoach log water 500
  nutricoach log habit "30 minute walk" --calories 120
  nutricoach log reminder "refill prescription" --due 2026-03-10 --time 08:00
  nutricoach log done <reminder-id>
  nutricoach log day --water 6 --sleep 7.5 --symptom headache`,
	}

	cmd.AddCommand(newLogMealCmd(), newLogWaterCmd(), newLogHabitCmd(), newLogReminderCmd(), newLogDoneCmd(), newLogDayCmd())
	return cmd
}

// withUser opens the app and resolves the user for a log subcommand
func withUser(cmd *cobra.Command, fn func(a *app.App, user string) error) error {
	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	user, err := requireUser(a)
	if err != nil {
		return err
	}
	return fn(a, user)
}

func confirm(cmd *cobra.Command, format string, args ...interface{}) {
	if !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "✓ "+format+"\n", args...)
	}
}

func newLogMealCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "meal <description>",
		Short: "Log a meal",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withUser(cmd, func(a *app.App, user string) error {
				entry := &models.DietEntry{
					UserID:      user,
					Type:        models.EntryMeal,
					MealType:    strings.ToLower(mealType),
					Description: strings.TrimSpace(strings.Join(args, " ")),
				}
				flags := cmd.Flags()
				if flags.Changed("calories") || flags.Changed("protein") || flags.Changed("carbs") || flags.Changed("fat") {
					entry.Nutrition = &models.Nutrition{Calories: mealCalories, Protein: mealProtein, Carbs: mealCarbs, Fat: mealFat}
				}
				if err := entry.Validate(); err != nil {
					return err
				}
				if err := a.Store.AddDietEntry(cmd.Context(), entry); err != nil {
					return err
				}
				confirm(cmd, "Logged meal %s", entry.ID)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&mealType, "type", "", "Meal type: breakfast, lunch, dinner or snack")
	cmd.Flags().Float64Var(&mealCalories, "calories", 0, "Calories (kcal)")
	cmd.Flags().Float64Var(&mealProtein, "protein", 0, "Protein (g)")
	cmd.Flags().Float64Var(&mealCarbs, "carbs", 0, "Carbohydrates (g)")
	cmd.Flags().Float64Var(&mealFat, "fat", 0, "Fat (g)")
	return cmd
}

func newLogWaterCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "water [ml]",
		Short: "Log water intake (default 250 ml)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ml := 250
			if len(args) == 1 {
				n, err := strconv.Atoi(args[0])
				if err != nil {
					return fmt.Errorf("water volume must be a number of ml: %w", err)
				}
				ml = n
			}
			return withUser(cmd, func(a *app.App, user string) error {
				entry := &models.DietEntry{UserID: user, Type: models.EntryWater, WaterML: ml}
				if err := entry.Validate(); err != nil {
					return err
				}
				if err := a.Store.AddDietEntry(cmd.Context(), entry); err != nil {
					return err
				}
				confirm(cmd, "Logged %d ml of water", ml)
				return nil
			})
		},
	}
}

func newLogHabitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "habit <description>",
		Short: "Log a habit or activity",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withUser(cmd, func(a *app.App, user string) error {
				habit := &models.Habit{
					UserID:      user,
					Description: strings.TrimSpace(strings.Join(args, " ")),
					Completed:   !habitPending,
				}
				if cmd.Flags().Changed("calories") {
					burned := habitCalories
					habit.CaloriesBurned = &burned
				}
				if err := a.Store.AddHabit(cmd.Context(), habit); err != nil {
					return err
				}
				confirm(cmd, "Logged habit %s", habit.ID)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&habitPending, "pending", false, "Record the habit as not yet completed")
	cmd.Flags().Float64Var(&habitCalories, "calories", 0, "Calories burned")
	return cmd
}

func newLogReminderCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reminder <title>",
		Short: "Add a reminder",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withUser(cmd, func(a *app.App, user string) error {
				due := reminderDue
				if due == "" {
					loc, err := a.Config.Location()
					if err != nil {
						return err
					}
					due = time.Now().In(loc).Format(models.DateLayout)
				}
				reminder := &models.Reminder{
					UserID:  user,
					Title:   strings.TrimSpace(strings.Join(args, " ")),
					DueDate: due,
					DueTime: reminderTime,
				}
				if err := a.Store.AddReminder(cmd.Context(), reminder); err != nil {
					return err
				}
				confirm(cmd, "Added reminder %s due %s", reminder.ID, reminder.DueDate)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&reminderDue, "due", "", "Due date YYYY-MM-DD (default today)")
	cmd.Flags().StringVar(&reminderTime, "time", "", "Due time HH:MM")
	return cmd
}

func newLogDoneCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "done <reminder-id>",
		Short: "Mark a reminder completed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withUser(cmd, func(a *app.App, user string) error {
				if err := a.Store.CompleteReminder(cmd.Context(), user, args[0]); err != nil {
					return fmt.Errorf("completing reminder %s: %w", args[0], err)
				}
				confirm(cmd, "Completed reminder %s", args[0])
				return nil
			})
		},
	}
}

func newLogDayCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "day",
		Short: "Update today's water glasses, sleep and symptoms",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withUser(cmd, func(a *app.App, user string) error {
				date := dayDate
				if date == "" {
					loc, err := a.Config.Location()
					if err != nil {
						return err
					}
					date = time.Now().In(loc).Format(models.DateLayout)
				}

				tracking, err := a.Store.GetDailyTracking(cmd.Context(), user, date)
				if err != nil {
					return err
				}
				if tracking == nil {
					tracking = &models.DailyTracking{UserID: user, Date: date}
				}

				flags := cmd.Flags()
				if flags.Changed("water") {
					tracking.WaterGlasses = dayWater
				}
				if flags.Changed("sleep") {
					tracking.SleepHours = daySleep
				}
				if flags.Changed("symptom") {
					tracking.Symptoms = daySymptoms
				}

				if err := a.Store.SaveDailyTracking(cmd.Context(), tracking); err != nil {
					return err
				}
				confirm(cmd, "Updated tracking for %s", date)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&dayDate, "date", "", "Date YYYY-MM-DD (default today)")
	cmd.Flags().IntVar(&dayWater, "water", 0, "Glasses of water")
	cmd.Flags().Float64Var(&daySleep, "sleep", 0, "Hours of sleep")
	cmd.Flags().StringSliceVar(&daySymptoms, "symptom", []string{}, "Symptoms (repeat or comma-separate)")
	return cmd
}
