// ABOUTME: End-to-end tests driving the CLI against a temporary database
// ABOUTME: No API key is set, so the coach answers with its fallback message
package commands

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/harper/nutricoach/internal/core"
)

// setupEnv points the CLI at a fresh database and a keyless provider
func setupEnv(t *testing.T, user string) {
	t.Helper()
	t.Setenv("NUTRICOACH_DB", filepath.Join(t.TempDir(), "coach.db"))
	t.Setenv("NUTRICOACH_USER", user)
	t.Setenv("NUTRICOACH_LLM_PROVIDER", "openai")
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("NUTRICOACH_TOOLCALL_DELAY", "0s")
	t.Setenv("NUTRICOACH_TIMEZONE", "UTC")
	t.Setenv("NUTRICOACH_KEYWORDS_FILE", "")
}

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := run(t, "", args...)
	if err != nil {
		t.Fatalf("%v: %v", args, err)
	}
	return out
}

func TestProfileSetAndShow(t *testing.T) {
	setupEnv(t, "alice")

	if _, err := run(t, "", "profile", "set"); err == nil {
		t.Error("profile set without flags should fail")
	}

	mustRun(t, "profile", "set", "--diet", "vegetarian", "--allergies", "peanuts", "--condition", "anemia", "--weight", "80", "--height", "180")
	mustRun(t, "profile", "set", "--condition", "ANEMIA", "--goal", "build muscle")

	out := mustRun(t, "profile", "--format", "json")
	var view profileView
	if err := json.Unmarshal([]byte(out), &view); err != nil {
		t.Fatalf("decoding profile JSON: %v\n%s", err, out)
	}
	if view.Profile == nil || view.Profile.DietType != "vegetarian" {
		t.Fatalf("profile = %+v, want vegetarian diet", view.Profile)
	}
	if !view.Profile.HasAllergies || view.Profile.AllergyDetails != "peanuts" {
		t.Errorf("allergies = %v %q", view.Profile.HasAllergies, view.Profile.AllergyDetails)
	}
	if len(view.Profile.MedicalConditions) != 1 {
		t.Errorf("conditions = %v, want one entry", view.Profile.MedicalConditions)
	}
	if view.Metrics == nil || view.Metrics.WeightKg != 80 || view.Metrics.Goal != "build muscle" {
		t.Errorf("metrics = %+v", view.Metrics)
	}

	exported := mustRun(t, "export", "--as", "markdown")
	if !strings.Contains(exported, "- **Diet:** vegetarian") {
		t.Errorf("markdown export missing diet:\n%s", exported)
	}
	if _, err := run(t, "", "export", "--as", "pdf"); err == nil {
		t.Error("unknown export format should fail")
	}

	text := mustRun(t, "profile")
	if !strings.Contains(text, "BMI") || !strings.Contains(text, "24.7") {
		t.Errorf("profile table missing BMI:\n%s", text)
	}
}

func TestLogCommands(t *testing.T) {
	setupEnv(t, "alice")

	if out := mustRun(t, "log", "meal", "oatmeal", "with", "berries", "--type", "Breakfast", "--calories", "320"); !strings.Contains(out, "Logged meal") {
		t.Errorf("meal output = %q", out)
	}
	if out := mustRun(t, "log", "water"); !strings.Contains(out, "250 ml") {
		t.Errorf("water output = %q", out)
	}
	if _, err := run(t, "", "log", "water", "lots"); err == nil {
		t.Error("non-numeric water volume should fail")
	}
	if _, err := run(t, "", "log", "water", "0"); err == nil {
		t.Error("zero water volume should fail")
	}
	mustRun(t, "log", "habit", "30 minute walk", "--calories", "120")
	mustRun(t, "log", "reminder", "refill prescription", "--due", "2099-01-01", "--time", "08:00")
	mustRun(t, "log", "day", "--water", "6", "--sleep", "7.5", "--symptom", "headache")

	out := mustRun(t, "--format", "json", "ask", "--topics", "meals,habits,reminders,today", "summarize my day")
	var result core.QueryResult
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("decoding ask JSON: %v\n%s", err, out)
	}
	for _, want := range []string{"oatmeal with berries", "30 minute walk", "refill prescription", "headache"} {
		if !strings.Contains(result.ContextUsed, want) {
			t.Errorf("context missing %q:\n%s", want, result.ContextUsed)
		}
	}
}

func TestAskHistoryShowDelete(t *testing.T) {
	setupEnv(t, "alice")

	out := mustRun(t, "--format", "json", "ask", "@meals what should I eat?")
	var result core.QueryResult
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("decoding ask JSON: %v\n%s", err, out)
	}
	if result.Response != core.FallbackMessage {
		t.Errorf("response = %q, want fallback without an API key", result.Response)
	}
	if !result.Persisted || result.ConversationID == "" {
		t.Fatalf("turn not persisted: %+v", result)
	}

	// follow-up read from stdin continues the same conversation
	if _, err := run(t, "and for dinner?", "-q", "ask", "-c", result.ConversationID); err != nil {
		t.Fatalf("follow-up: %v", err)
	}

	history := mustRun(t, "history")
	if !strings.Contains(history, result.ConversationID) {
		t.Errorf("history missing conversation %s:\n%s", result.ConversationID, history)
	}

	show := mustRun(t, "show", result.ConversationID)
	for _, want := range []string{"@meals what should I eat?", "and for dinner?"} {
		if !strings.Contains(show, want) {
			t.Errorf("show missing %q:\n%s", want, show)
		}
	}

	del := mustRun(t, "delete", result.ConversationID)
	if !strings.Contains(del, "(4 messages)") {
		t.Errorf("delete output = %q", del)
	}
	if _, err := run(t, "", "show", result.ConversationID); err == nil {
		t.Error("showing a deleted conversation should fail")
	}
}

func TestAskRequiresUser(t *testing.T) {
	setupEnv(t, "")

	_, err := run(t, "", "ask", "hello")
	if err == nil || !strings.Contains(err.Error(), "NUTRICOACH_USER") {
		t.Errorf("err = %v, want missing user error", err)
	}

	if _, err := run(t, "", "--user", "bob", "-q", "ask", "hello"); err != nil {
		t.Errorf("--user should satisfy the user requirement: %v", err)
	}
}

func TestSessionCreate(t *testing.T) {
	setupEnv(t, "alice")

	out := mustRun(t, "session", "create")
	token := strings.TrimSpace(out)
	if token == "" || strings.Contains(token, " ") {
		t.Fatalf("token output = %q", out)
	}

	if got := mustRun(t, "session", "revoke", token); !strings.Contains(got, "Revoked") {
		t.Errorf("revoke output = %q", got)
	}
}
