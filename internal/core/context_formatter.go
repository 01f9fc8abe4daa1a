// ABOUTME: FormatContext renders a UserHealthContext as plain text lines for prompts
// ABOUTME: Deterministic; absent data produces no line, all-empty input a fixed sentence
package core

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/harper/nutricoach/internal/models"
)

// NoDataContext is returned when the user has no health data in the requested slices
const NoDataContext = "No health data is available for this user yet."

const (
	maxFormattedMeals     = 5
	maxFormattedHabits    = 3
	maxFormattedReminders = 3
)

// FormatContext renders health data one concept per line
func FormatContext(hc *models.UserHealthContext) string {
	if hc.IsEmpty() {
		return NoDataContext
	}

	var lines []string
	add := func(format string, args ...interface{}) {
		lines = append(lines, fmt.Sprintf(format, args...))
	}

	if p := hc.Profile; p != nil {
		if p.DietType != "" {
			add("Diet type: %s", p.DietType)
		}
		if p.HasAllergies {
			add("Allergies: %s", orUnspecified(p.AllergyDetails))
		}
		if len(p.MedicalConditions) > 0 {
			add("Medical conditions: %s", strings.Join(p.MedicalConditions, ", "))
		}
		if p.TakesMedications {
			add("Medications: %s", orUnspecified(p.MedicationDetails))
		}
	}

	if m := hc.HealthMetrics; m != nil {
		var parts []string
		if m.HeightCm > 0 {
			parts = append(parts, "Height: "+formatNumber(m.HeightCm)+" cm")
		}
		if m.WeightKg > 0 {
			parts = append(parts, "Weight: "+formatNumber(m.WeightKg)+" kg")
		}
		if len(parts) > 0 {
			lines = append(lines, strings.Join(parts, ", "))
		}
		if m.Goal != "" {
			add("Goal: %s", m.Goal)
		}
		if m.ActivityLevel != "" {
			add("Activity level: %s", m.ActivityLevel)
		}
	}

	if d := hc.DailyTracking; d != nil {
		add("Today: %d glasses of water, %s hours of sleep", d.WaterGlasses, formatNumber(d.SleepHours))
		if len(d.Symptoms) > 0 {
			add("Symptoms today: %s", strings.Join(d.Symptoms, ", "))
		}
	}

	var meals []string
	for _, e := range hc.DietEntries {
		if e.Type != models.EntryMeal {
			continue
		}
		meals = append(meals, formatMeal(e))
		if len(meals) == maxFormattedMeals {
			break
		}
	}
	if len(meals) > 0 {
		lines = append(lines, "Recent meals:")
		lines = append(lines, meals...)
	}

	var habits []string
	for _, h := range hc.Habits {
		if !h.Completed {
			continue
		}
		habits = append(habits, "- "+h.Description)
		if len(habits) == maxFormattedHabits {
			break
		}
	}
	if len(habits) > 0 {
		lines = append(lines, "Completed habits:")
		lines = append(lines, habits...)
	}

	if len(hc.Reminders) > 0 {
		lines = append(lines, "Upcoming reminders:")
		for i, r := range hc.Reminders {
			if i == maxFormattedReminders {
				break
			}
			due := r.DueDate
			if r.DueTime != "" {
				due += " " + r.DueTime
			}
			add("- %s (due %s)", r.Title, due)
		}
	}

	if len(lines) == 0 {
		return NoDataContext
	}
	return strings.Join(lines, "\n")
}

func formatMeal(e models.DietEntry) string {
	var sb strings.Builder
	sb.WriteString("- ")
	if e.MealType != "" {
		sb.WriteString(e.MealType)
		sb.WriteString(": ")
	}
	sb.WriteString(e.Description)
	if e.Nutrition != nil && e.Nutrition.Calories > 0 {
		sb.WriteString(" (")
		sb.WriteString(formatNumber(e.Nutrition.Calories))
		sb.WriteString(" kcal)")
	}
	return sb.String()
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func orUnspecified(s string) string {
	if strings.TrimSpace(s) == "" {
		return "yes (details not provided)"
	}
	return s
}
