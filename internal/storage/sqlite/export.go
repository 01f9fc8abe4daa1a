// ABOUTME: Export of one user's health data and conversations
// ABOUTME: Supports YAML and Markdown export formats
package sqlite

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/harper/nutricoach/internal/models"
)

const (
	exportVersion      = "1.0"
	exportEntryLimit   = 10000
	exportConversation = 1000
)

// ExportData represents the complete exportable data for one user
type ExportData struct {
	Version       string                `yaml:"version" json:"version"`
	ExportedAt    string                `yaml:"exported_at" json:"exported_at"`
	Tool          string                `yaml:"tool" json:"tool"`
	UserID        string                `yaml:"user_id" json:"user_id"`
	Profile       *models.Profile       `yaml:"profile,omitempty" json:"profile,omitempty"`
	HealthMetrics *models.HealthMetrics `yaml:"health_metrics,omitempty" json:"health_metrics,omitempty"`
	DietEntries   []ExportEntry         `yaml:"diet_entries,omitempty" json:"diet_entries,omitempty"`
	Habits        []ExportHabit         `yaml:"habits,omitempty" json:"habits,omitempty"`
	Reminders     []models.Reminder     `yaml:"reminders,omitempty" json:"reminders,omitempty"`
	Conversations []ExportConversation  `yaml:"conversations,omitempty" json:"conversations,omitempty"`
}

// ExportEntry represents a meal or water log for export
type ExportEntry struct {
	Type        string            `yaml:"type" json:"type"`
	MealType    string            `yaml:"meal_type,omitempty" json:"meal_type,omitempty"`
	Description string            `yaml:"description,omitempty" json:"description,omitempty"`
	WaterML     int               `yaml:"water_ml,omitempty" json:"water_ml,omitempty"`
	Nutrition   *models.Nutrition `yaml:"nutrition,omitempty" json:"nutrition,omitempty"`
	LoggedAt    string            `yaml:"logged_at" json:"logged_at"`
}

// ExportHabit represents a habit log for export
type ExportHabit struct {
	Description    string   `yaml:"description" json:"description"`
	Completed      bool     `yaml:"completed" json:"completed"`
	CaloriesBurned *float64 `yaml:"calories_burned,omitempty" json:"calories_burned,omitempty"`
	LoggedAt       string   `yaml:"logged_at" json:"logged_at"`
}

// ExportConversation represents a conversation with its messages
type ExportConversation struct {
	ID       string          `yaml:"id" json:"id"`
	Title    string          `yaml:"title" json:"title"`
	Messages []ExportMessage `yaml:"messages" json:"messages"`
}

// ExportMessage represents one chat row for export
type ExportMessage struct {
	Sender    string `yaml:"sender" json:"sender"`
	Content   string `yaml:"content" json:"content"`
	Timestamp string `yaml:"timestamp" json:"timestamp"`
}

// Export gathers everything stored for userID. Only open reminders are included.
func (s *Storage) Export(ctx context.Context, userID string) (*ExportData, error) {
	if userID == "" {
		return nil, fmt.Errorf("user ID cannot be empty")
	}

	data := &ExportData{
		Version:    exportVersion,
		ExportedAt: time.Now().Format(time.RFC3339),
		Tool:       "nutricoach",
		UserID:     userID,
	}

	var err error
	if data.Profile, err = s.GetProfile(ctx, userID); err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	if data.HealthMetrics, err = s.GetHealthMetrics(ctx, userID); err != nil {
		return nil, fmt.Errorf("failed to get health metrics: %w", err)
	}

	epoch := time.Unix(0, 0)
	entries, err := s.ListDietEntries(ctx, userID, epoch, exportEntryLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to list diet entries: %w", err)
	}
	for _, e := range entries {
		data.DietEntries = append(data.DietEntries, ExportEntry{
			Type:        string(e.Type),
			MealType:    e.MealType,
			Description: e.Description,
			WaterML:     e.WaterML,
			Nutrition:   e.Nutrition,
			LoggedAt:    e.LoggedAt.Format(time.RFC3339),
		})
	}

	habits, err := s.ListHabits(ctx, userID, epoch)
	if err != nil {
		return nil, fmt.Errorf("failed to list habits: %w", err)
	}
	for _, h := range habits {
		data.Habits = append(data.Habits, ExportHabit{
			Description:    h.Description,
			Completed:      h.Completed,
			CaloriesBurned: h.CaloriesBurned,
			LoggedAt:       h.LoggedAt.Format(time.RFC3339),
		})
	}

	if data.Reminders, err = s.ListUpcomingReminders(ctx, userID, ""); err != nil {
		return nil, fmt.Errorf("failed to list reminders: %w", err)
	}

	convs, err := s.ListRecentConversations(ctx, userID, exportConversation)
	if err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}
	for _, c := range convs {
		msgs, err := s.ListMessages(ctx, userID, c.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to list messages for %s: %w", c.ID, err)
		}
		conv := ExportConversation{ID: c.ID, Title: c.Title, Messages: make([]ExportMessage, 0, len(msgs))}
		for _, m := range msgs {
			conv.Messages = append(conv.Messages, ExportMessage{
				Sender:    string(m.Sender),
				Content:   m.Content,
				Timestamp: m.CreatedAt.Format(time.RFC3339),
			})
		}
		data.Conversations = append(data.Conversations, conv)
	}

	return data, nil
}

// ExportToYAML exports a user's data to a YAML file
func (s *Storage) ExportToYAML(ctx context.Context, userID, outputPath string) error {
	return s.exportToFile(ctx, userID, outputPath, WriteYAML)
}

// ExportToMarkdown exports a user's data to a Markdown file
func (s *Storage) ExportToMarkdown(ctx context.Context, userID, outputPath string) error {
	return s.exportToFile(ctx, userID, outputPath, WriteMarkdown)
}

func (s *Storage) exportToFile(ctx context.Context, userID, outputPath string, write func(io.Writer, *ExportData) error) error {
	data, err := s.Export(ctx, userID)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	file, err := os.Create(outputPath) // #nosec G304
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	return write(file, data)
}

// WriteYAML encodes export data as YAML
func WriteYAML(w io.Writer, data *ExportData) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(data); err != nil {
		return fmt.Errorf("failed to encode YAML: %w", err)
	}
	return encoder.Close()
}

// WriteMarkdown renders export data as a readable Markdown document
func WriteMarkdown(w io.Writer, data *ExportData) error {
	_, _ = fmt.Fprintf(w, "# NutriCoach Export - %s\n\n", data.UserID)
	_, _ = fmt.Fprintf(w, "Generated: %s\n\n", data.ExportedAt)

	if p := data.Profile; p != nil {
		_, _ = fmt.Fprintln(w, "## Profile")
		_, _ = fmt.Fprintln(w)
		if p.DietType != "" {
			_, _ = fmt.Fprintf(w, "- **Diet:** %s\n", p.DietType)
		}
		if p.HasAllergies {
			_, _ = fmt.Fprintf(w, "- **Allergies:** %s\n", p.AllergyDetails)
		}
		if len(p.MedicalConditions) > 0 {
			_, _ = fmt.Fprintf(w, "- **Conditions:** %s\n", strings.Join(p.MedicalConditions, ", "))
		}
		if p.TakesMedications {
			_, _ = fmt.Fprintf(w, "- **Medications:** %s\n", p.MedicationDetails)
		}
		_, _ = fmt.Fprintln(w)
	}

	if m := data.HealthMetrics; m != nil {
		_, _ = fmt.Fprintln(w, "## Health Metrics")
		_, _ = fmt.Fprintln(w)
		if m.HeightCm > 0 {
			_, _ = fmt.Fprintf(w, "- **Height:** %g cm\n", m.HeightCm)
		}
		if m.WeightKg > 0 {
			_, _ = fmt.Fprintf(w, "- **Weight:** %g kg\n", m.WeightKg)
		}
		if m.Goal != "" {
			_, _ = fmt.Fprintf(w, "- **Goal:** %s\n", m.Goal)
		}
		if m.ActivityLevel != "" {
			_, _ = fmt.Fprintf(w, "- **Activity:** %s\n", m.ActivityLevel)
		}
		_, _ = fmt.Fprintln(w)
	}

	if len(data.DietEntries) > 0 {
		_, _ = fmt.Fprintln(w, "## Diet Log")
		_, _ = fmt.Fprintln(w)
		_, _ = fmt.Fprintln(w, "| Logged | Type | Details |")
		_, _ = fmt.Fprintln(w, "|--------|------|---------|")
		for _, e := range data.DietEntries {
			details := e.Description
			if e.Type == string(models.EntryWater) {
				details = fmt.Sprintf("%d ml", e.WaterML)
			} else if e.MealType != "" {
				details = e.MealType + ": " + details
			}
			_, _ = fmt.Fprintf(w, "| %s | %s | %s |\n", e.LoggedAt, e.Type, details)
		}
		_, _ = fmt.Fprintln(w)
	}

	if len(data.Habits) > 0 {
		_, _ = fmt.Fprintln(w, "## Habits")
		_, _ = fmt.Fprintln(w)
		for _, h := range data.Habits {
			mark := " "
			if h.Completed {
				mark = "x"
			}
			_, _ = fmt.Fprintf(w, "- [%s] %s (%s)\n", mark, h.Description, h.LoggedAt)
		}
		_, _ = fmt.Fprintln(w)
	}

	if len(data.Reminders) > 0 {
		_, _ = fmt.Fprintln(w, "## Open Reminders")
		_, _ = fmt.Fprintln(w)
		for _, r := range data.Reminders {
			due := r.DueDate
			if r.DueTime != "" {
				due += " " + r.DueTime
			}
			_, _ = fmt.Fprintf(w, "- %s (due %s)\n", r.Title, due)
		}
		_, _ = fmt.Fprintln(w)
	}

	if len(data.Conversations) > 0 {
		_, _ = fmt.Fprintln(w, "## Conversations")
		_, _ = fmt.Fprintln(w)
		for _, c := range data.Conversations {
			_, _ = fmt.Fprintf(w, "### %s\n\n", c.Title)
			for _, m := range c.Messages {
				who := "User"
				if m.Sender == string(models.SenderCoach) {
					who = "Coach"
				}
				_, _ = fmt.Fprintf(w, "**%s:** %s\n\n", who, m.Content)
			}
			_, _ = fmt.Fprintln(w, "---")
			_, _ = fmt.Fprintln(w)
		}
	}

	return nil
}
