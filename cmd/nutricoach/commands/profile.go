// ABOUTME: CLI command to view and update the health profile and body metrics
// ABOUTME: This is the background the coach reads for @profile and @health
package commands

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/harper/nutricoach/internal/app"
	"github.com/harper/nutricoach/internal/models"
)

var (
	profileDiet        string
	profileAllergies   string
	profileConditions  []string
	profileMedications string
	profileHeight      float64
	profileWeight      float64
	profileGoal        string
	profileActivity    string
)

// profileView is the combined JSON shape for profile show
type profileView struct {
	Profile *models.Profile       `json:"profile"`
	Metrics *models.HealthMetrics `json:"health_metrics"`
}

// NewProfileCmd creates profile command
func NewProfileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "View and manage your health profile",
		Long: `View and manage your health profile.

The profile stores diet, allergies, conditions, medications and body
metrics that the coach uses to personalize answers.

Examples:
  nutricoach profile
  nutricoach profile --format json
  nutricoach profile set --diet vegetarian --allergies peanuts
  nutricoach profile set --condition "type 2 diabetes" --weight 82.5`,
		Args: cobra.NoArgs,
		RunE: runProfileShow,
	}

	setCmd := &cobra.Command{
		Use:   "set",
		Short: "Update profile fields",
		Long: `Update profile fields. Only the flags you pass are changed.

Pass --allergies "" or --medications "" to clear them.`,
		Args: cobra.NoArgs,
		RunE: runProfileSet,
	}

	setCmd.Flags().StringVar(&profileDiet, "diet", "", "Diet type (e.g. vegetarian, keto)")
	setCmd.Flags().StringVar(&profileAllergies, "allergies", "", "Allergy details")
	setCmd.Flags().StringArrayVar(&profileConditions, "condition", nil, "Add a medical condition (can be repeated)")
	setCmd.Flags().StringVar(&profileMedications, "medications", "", "Medication details")
	setCmd.Flags().Float64Var(&profileHeight, "height", 0, "Height in cm")
	setCmd.Flags().Float64Var(&profileWeight, "weight", 0, "Weight in kg")
	setCmd.Flags().StringVar(&profileGoal, "goal", "", "Health goal")
	setCmd.Flags().StringVar(&profileActivity, "activity", "", "Activity level")

	cmd.AddCommand(setCmd)

	return cmd
}

func runProfileShow(cmd *cobra.Command, args []string) error {
	return withUser(cmd, func(a *app.App, user string) error {
		ctx := cmd.Context()
		profile, err := a.Store.GetProfile(ctx, user)
		if err != nil {
			return fmt.Errorf("getting profile: %w", err)
		}
		metrics, err := a.Store.GetHealthMetrics(ctx, user)
		if err != nil {
			return fmt.Errorf("getting health metrics: %w", err)
		}

		if wantJSON() {
			return printJSON(cmd.OutOrStdout(), profileView{Profile: profile, Metrics: metrics})
		}

		if profile == nil && metrics == nil {
			if !quiet {
				fmt.Fprintf(cmd.OutOrStdout(), "No profile found. Create one with: nutricoach profile set --diet vegetarian\n")
			}
			return nil
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintf(w, "FIELD\tVALUE\n")
		fmt.Fprintf(w, "-----\t-----\n")

		if profile != nil {
			fmt.Fprintf(w, "Diet\t%s\n", orNotSet(profile.DietType))
			allergies := "none"
			if profile.HasAllergies {
				allergies = orNotSet(profile.AllergyDetails)
			}
			fmt.Fprintf(w, "Allergies\t%s\n", truncate(allergies, 60))
			conditions := "(none)"
			if len(profile.MedicalConditions) > 0 {
				conditions = strings.Join(profile.MedicalConditions, ", ")
			}
			fmt.Fprintf(w, "Conditions\t%s\n", truncate(conditions, 60))
			medications := "none"
			if profile.TakesMedications {
				medications = orNotSet(profile.MedicationDetails)
			}
			fmt.Fprintf(w, "Medications\t%s\n", truncate(medications, 60))
		}

		if metrics != nil {
			if metrics.HeightCm > 0 {
				fmt.Fprintf(w, "Height\t%g cm\n", metrics.HeightCm)
			}
			if metrics.WeightKg > 0 {
				fmt.Fprintf(w, "Weight\t%g kg\n", metrics.WeightKg)
			}
			if bmi := metrics.BMI(); bmi > 0 {
				fmt.Fprintf(w, "BMI\t%.1f\n", bmi)
			}
			fmt.Fprintf(w, "Goal\t%s\n", orNotSet(metrics.Goal))
			fmt.Fprintf(w, "Activity\t%s\n", orNotSet(metrics.ActivityLevel))
		}

		return w.Flush()
	})
}

func runProfileSet(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()
	profileChanged := flags.Changed("diet") || flags.Changed("allergies") || flags.Changed("condition") || flags.Changed("medications")
	metricsChanged := flags.Changed("height") || flags.Changed("weight") || flags.Changed("goal") || flags.Changed("activity")
	if !profileChanged && !metricsChanged {
		return fmt.Errorf("nothing to update: pass at least one flag (see --help)")
	}

	return withUser(cmd, func(a *app.App, user string) error {
		ctx := cmd.Context()

		if profileChanged {
			profile, err := a.Store.GetProfile(ctx, user)
			if err != nil {
				return fmt.Errorf("getting profile: %w", err)
			}
			if profile == nil {
				profile = &models.Profile{UserID: user}
			}
			if flags.Changed("diet") {
				profile.DietType = strings.TrimSpace(profileDiet)
			}
			if flags.Changed("allergies") {
				profile.AllergyDetails = strings.TrimSpace(profileAllergies)
				profile.HasAllergies = profile.AllergyDetails != ""
			}
			for _, c := range profileConditions {
				profile.AddCondition(c)
			}
			if flags.Changed("medications") {
				profile.MedicationDetails = strings.TrimSpace(profileMedications)
				profile.TakesMedications = profile.MedicationDetails != ""
			}
			if err := a.Store.SaveProfile(ctx, profile); err != nil {
				return fmt.Errorf("saving profile: %w", err)
			}
		}

		if metricsChanged {
			metrics, err := a.Store.GetHealthMetrics(ctx, user)
			if err != nil {
				return fmt.Errorf("getting health metrics: %w", err)
			}
			if metrics == nil {
				metrics = &models.HealthMetrics{UserID: user}
			}
			if flags.Changed("height") {
				metrics.HeightCm = profileHeight
			}
			if flags.Changed("weight") {
				metrics.WeightKg = profileWeight
			}
			if flags.Changed("goal") {
				metrics.Goal = strings.TrimSpace(profileGoal)
			}
			if flags.Changed("activity") {
				metrics.ActivityLevel = strings.TrimSpace(profileActivity)
			}
			if err := a.Store.SaveHealthMetrics(ctx, metrics); err != nil {
				return fmt.Errorf("saving health metrics: %w", err)
			}
		}

		confirm(cmd, "Profile updated")
		return nil
	})
}

func orNotSet(s string) string {
	if s == "" {
		return "(not set)"
	}
	return s
}
