// ABOUTME: TopicScope names the slices of personal health data the coach may read
// ABOUTME: Fixed six-value enum with parsing, validation and canonical ordering
package models

import "strings"

// TopicScope represents one category of health data attached to a query
type TopicScope string

const (
	// TopicProfile - diet type, allergies, conditions, medications
	TopicProfile TopicScope = "profile"

	// TopicHealth - height, weight, goal, activity level
	TopicHealth TopicScope = "health"

	// TopicToday - today's water, sleep and symptoms
	TopicToday TopicScope = "today"

	// TopicMeals - diet entries from the last 7 days
	TopicMeals TopicScope = "meals"

	// TopicHabits - habits from the last 7 days
	TopicHabits TopicScope = "habits"

	// TopicReminders - incomplete reminders due today or later
	TopicReminders TopicScope = "reminders"
)

// AllTopics returns the full topic set in canonical order.
// A fresh slice is returned so callers may modify it.
func AllTopics() []TopicScope {
	return []TopicScope{
		TopicProfile,
		TopicHealth,
		TopicToday,
		TopicMeals,
		TopicHabits,
		TopicReminders,
	}
}

// IsValid reports whether the topic is one of the six known scopes
func (t TopicScope) IsValid() bool {
	switch t {
	case TopicProfile, TopicHealth, TopicToday, TopicMeals, TopicHabits, TopicReminders:
		return true
	}
	return false
}

// ParseTopic converts a case-insensitive name (with or without a leading @) to a TopicScope
func ParseTopic(name string) (TopicScope, bool) {
	name = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(name), "@")))
	t := TopicScope(name)
	if !t.IsValid() {
		return "", false
	}
	return t, true
}

// ParseTopics parses names, dropping unknown ones and duplicates while keeping first-seen order
func ParseTopics(names []string) []TopicScope {
	seen := make(map[TopicScope]bool, len(names))
	topics := make([]TopicScope, 0, len(names))
	for _, name := range names {
		t, ok := ParseTopic(name)
		if !ok || seen[t] {
			continue
		}
		seen[t] = true
		topics = append(topics, t)
	}
	return topics
}

// TopicStrings converts topics to plain strings (for JSON and logging)
func TopicStrings(topics []TopicScope) []string {
	out := make([]string, len(topics))
	for i, t := range topics {
		out[i] = string(t)
	}
	return out
}

// TopicSet is a set view over a topic list
type TopicSet map[TopicScope]bool

// NewTopicSet builds a set; an empty list means every topic
func NewTopicSet(topics []TopicScope) TopicSet {
	if len(topics) == 0 {
		topics = AllTopics()
	}
	set := make(TopicSet, len(topics))
	for _, t := range topics {
		set[t] = true
	}
	return set
}

// Has reports whether the topic is in the set
func (s TopicSet) Has(t TopicScope) bool {
	return s[t]
}
