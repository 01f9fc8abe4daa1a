// ABOUTME: Labeled queries for the topic-detection benchmark
// ABOUTME: Built-in set plus loading of custom sets from YAML
package topics

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/harper/nutricoach/internal/models"
)

// Case is one labeled query. Expected is the topic set a careful reader
// would fetch; an empty list means every topic.
type Case struct {
	ID       string   `yaml:"id" json:"id"`
	Query    string   `yaml:"query" json:"query"`
	Expected []string `yaml:"expected" json:"expected"`
}

// ExpectedTopics parses Expected, widening an empty list to all topics
func (c Case) ExpectedTopics() ([]models.TopicScope, error) {
	if len(c.Expected) == 0 {
		return models.AllTopics(), nil
	}
	parsed := models.ParseTopics(c.Expected)
	if len(parsed) != len(c.Expected) {
		return nil, fmt.Errorf("case %s: unknown or duplicate topic in %v", c.ID, c.Expected)
	}
	return parsed, nil
}

// DefaultCases returns the built-in labeled set
func DefaultCases() []Case {
	return []Case{
		{ID: "breakfast", Query: "What should I eat for breakfast?", Expected: []string{"meals"}},
		{ID: "mention-health", Query: "@health how am I doing?", Expected: []string{"health"}},
		{ID: "vegetarian-protein", Query: "I'm vegetarian, is tofu enough protein?", Expected: []string{"profile", "meals"}},
		{ID: "water-today", Query: "How much water should I drink today?", Expected: []string{"today"}},
		{ID: "step-goal", Query: "Did I hit my step goal this week?", Expected: []string{"habits", "health"}},
		{ID: "appointments", Query: "Any appointments coming up?", Expected: []string{"reminders"}},
		{ID: "headache", Query: "I have a headache and slept badly", Expected: []string{"today"}},
		{ID: "keto-weight", Query: "Can I lose weight while eating keto?", Expected: []string{"profile", "health", "meals"}},
		{ID: "greeting", Query: "hello", Expected: nil},
		{ID: "two-mentions", Query: "@meals @reminders what's next", Expected: []string{"meals", "reminders"}},
		{ID: "medication", Query: "Is my medication affecting my appetite?", Expected: []string{"profile"}},
		{ID: "post-workout", Query: "Suggest a post-workout snack", Expected: []string{"meals", "habits"}},
		{ID: "run-calories", Query: "How many calories did I burn on my run?", Expected: []string{"meals", "habits"}},
		{ID: "bmi", Query: "What's my BMI?", Expected: []string{"health"}},
		{ID: "tired", Query: "I feel tired all the time", Expected: []string{"today"}},
		{ID: "remind-groceries", Query: "Remind me to buy groceries", Expected: []string{"reminders"}},
		{ID: "yoga-diabetes", Query: "Is yoga good for my diabetes?", Expected: []string{"profile", "habits"}},
		{ID: "dinner-tonight", Query: "Plan my dinner for tonight", Expected: []string{"meals"}},
		{ID: "mention-profile", Query: "@profile", Expected: []string{"profile"}},
		{ID: "allergic-lunch", Query: "Am I allergic to anything in my lunch?", Expected: []string{"profile", "meals"}},
		{ID: "hydration", Query: "How is my hydration trending?", Expected: []string{"today"}},
		{ID: "muscle", Query: "Build muscle fast", Expected: []string{"health"}},
		{ID: "fiber", Query: "What are good sources of fiber", Expected: []string{"meals"}},
		{ID: "unknown-mention", Query: "@weather tell me something", Expected: nil},
		{ID: "gym-routine", Query: "Should I change my gym routine?", Expected: []string{"habits"}},
		{ID: "gluten-recipe", Query: "Give me a gluten free recipe", Expected: []string{"profile", "meals"}},
	}
}

// LoadCases reads a YAML list of cases:
//
//   - id: breakfast
//     query: What should I eat for breakfast?
//     expected: [meals]
func LoadCases(path string) ([]Case, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read cases: %w", err)
	}
	var cases []Case
	if err := yaml.Unmarshal(data, &cases); err != nil {
		return nil, fmt.Errorf("parse cases: %w", err)
	}
	for i, c := range cases {
		if c.ID == "" {
			return nil, fmt.Errorf("case %d: missing id", i)
		}
		if _, err := c.ExpectedTopics(); err != nil {
			return nil, err
		}
	}
	return cases, nil
}
