// ABOUTME: Keyword-to-topic data used for implicit topic detection
// ABOUTME: Built-in defaults plus an optional YAML override file
package core

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/harper/nutricoach/internal/models"
	"gopkg.in/yaml.v3"
)

// KeywordMap maps each topic to the words and phrases that imply it.
// Lists may overlap; a word listed under two topics selects both.
type KeywordMap map[models.TopicScope][]string

// DefaultKeywords returns the built-in keyword map. A fresh copy is returned.
func DefaultKeywords() KeywordMap {
	return KeywordMap{
		models.TopicProfile: {
			"diet", "vegan", "vegetarian", "pescatarian", "keto", "gluten", "lactose",
			"allergy", "allergies", "allergic", "intolerance", "medication", "medications",
			"medicine", "condition", "conditions", "diabetes", "diabetic", "restriction", "restrictions",
		},
		models.TopicHealth: {
			"weight", "bmi", "goal", "goals", "height", "activity", "fitness",
			"lose", "gain", "muscle", "metabolism", "body",
		},
		models.TopicToday: {
			"today", "tonight", "water", "hydration", "hydrated", "sleep", "slept",
			"tired", "symptom", "symptoms", "headache", "energy", "feeling",
		},
		models.TopicMeals: {
			"meal", "meals", "food", "foods", "eat", "ate", "eating", "breakfast", "lunch",
			"dinner", "snack", "snacks", "calorie", "calories", "protein", "carbs", "fat",
			"nutrition", "recipe",
		},
		models.TopicHabits: {
			"habit", "habits", "exercise", "workout", "workouts", "walk", "walking", "run",
			"running", "steps", "gym", "routine", "yoga",
		},
		models.TopicReminders: {
			"reminder", "reminders", "remind", "schedule", "appointment", "appointments",
			"upcoming", "due", "todo",
		},
	}
}

// LoadKeywordMap reads a YAML document of topic name to keyword list.
// Topics present in the file replace the default list; absent topics keep it.
//
//	meals: [meal, food, breakfast]
//	health: [weight, bmi]
func LoadKeywordMap(path string) (KeywordMap, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read keyword file: %w", err)
	}
	return ParseKeywordMap(data)
}

// ParseKeywordMap merges a YAML keyword document over the defaults
func ParseKeywordMap(data []byte) (KeywordMap, error) {
	var raw map[string][]string
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse keyword file: %w", err)
	}

	keywords := DefaultKeywords()

	names := make([]string, 0, len(raw))
	for name := range raw {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		topic, ok := models.ParseTopic(name)
		if !ok {
			return nil, fmt.Errorf("keyword file: unknown topic %q", name)
		}
		var words []string
		for _, w := range raw[name] {
			if w = strings.ToLower(strings.TrimSpace(w)); w != "" {
				words = append(words, w)
			}
		}
		keywords[topic] = words
	}

	return keywords, nil
}
