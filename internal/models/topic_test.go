// ABOUTME: Tests for TopicScope parsing and set helpers
// ABOUTME: Verifies case-insensitive parsing, dedup and canonical ordering
package models

import "testing"

func TestTopicScope_IsValid(t *testing.T) {
	tests := []struct {
		name  string
		topic TopicScope
		want  bool
	}{
		{"profile", TopicProfile, true},
		{"health", TopicHealth, true},
		{"today", TopicToday, true},
		{"meals", TopicMeals, true},
		{"habits", TopicHabits, true},
		{"reminders", TopicReminders, true},
		{"empty string", TopicScope(""), false},
		{"singular", TopicScope("meal"), false},
		{"upper case", TopicScope("MEALS"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.topic.IsValid(); got != tt.want {
				t.Errorf("IsValid() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAllTopics(t *testing.T) {
	all := AllTopics()
	if len(all) != 6 {
		t.Fatalf("AllTopics() returned %d topics, want 6", len(all))
	}
	want := []TopicScope{TopicProfile, TopicHealth, TopicToday, TopicMeals, TopicHabits, TopicReminders}
	for i := range want {
		if all[i] != want[i] {
			t.Errorf("AllTopics()[%d] = %q, want %q", i, all[i], want[i])
		}
	}

	// Mutating the result must not leak into later calls
	all[0] = "changed"
	if AllTopics()[0] != TopicProfile {
		t.Error("AllTopics() returned a shared slice")
	}
}

func TestParseTopic(t *testing.T) {
	tests := []struct {
		in     string
		want   TopicScope
		wantOK bool
	}{
		{"meals", TopicMeals, true},
		{"@Meals", TopicMeals, true},
		{"  HEALTH ", TopicHealth, true},
		{"@unknown", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseTopic(tt.in)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("ParseTopic(%q) = (%q, %v), want (%q, %v)", tt.in, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestParseTopics_DedupKeepsOrder(t *testing.T) {
	got := ParseTopics([]string{"habits", "bogus", "@meals", "HABITS", "meals"})
	want := []TopicScope{TopicHabits, TopicMeals}
	if len(got) != len(want) {
		t.Fatalf("ParseTopics() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("ParseTopics()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestNewTopicSet_EmptyMeansAll(t *testing.T) {
	set := NewTopicSet(nil)
	for _, topic := range AllTopics() {
		if !set.Has(topic) {
			t.Errorf("empty topic list should include %q", topic)
		}
	}

	set = NewTopicSet([]TopicScope{TopicMeals})
	if !set.Has(TopicMeals) || set.Has(TopicHealth) {
		t.Errorf("NewTopicSet([meals]) = %v", set)
	}
}

func TestTopicStrings(t *testing.T) {
	got := TopicStrings([]TopicScope{TopicToday, TopicReminders})
	if len(got) != 2 || got[0] != "today" || got[1] != "reminders" {
		t.Errorf("TopicStrings() = %v", got)
	}
}
